package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spektr-org/portemission/engine"
)

// RedisStore persists datasets as JSON record arrays.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps client. Entries expire after ttl; zero keeps them.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// DialRedis connects to addr and checks the connection.
func DialRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis %s: %w", addr, err)
	}
	return client, nil
}

// Get loads the dataset under key. A missing key is (empty, false, nil).
func (s *RedisStore) Get(ctx context.Context, key string) (engine.Dataset, bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return engine.Dataset{}, false, nil
	}
	if err != nil {
		return engine.Dataset{}, false, err
	}
	var ds engine.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return engine.Dataset{}, false, fmt.Errorf("decode snapshot %s: %w", key, err)
	}
	return ds, true, nil
}

// Put stores ds under key.
func (s *RedisStore) Put(ctx context.Context, key string, ds engine.Dataset) error {
	data, err := json.Marshal(ds)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, s.ttl).Err()
}

// Delete drops key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
