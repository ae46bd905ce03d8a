package snapshot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/portemission/engine"
	"github.com/spektr-org/portemission/synth"
)

var anchor = time.Date(2025, 3, 30, 0, 0, 0, 0, time.UTC)

func params() Params {
	return Params{Rows: 80, Seed: 42, Anchor: anchor, Profile: synth.DefaultProfile()}
}

// ============================================================================
// KEY
// ============================================================================

func TestKeyCoversEveryInput(t *testing.T) {
	base := Key(params())
	assert.True(t, strings.HasPrefix(base, KeyPrefix))
	assert.Equal(t, base, Key(params()))

	variants := map[string]func(*Params){
		"rows":    func(p *Params) { p.Rows++ },
		"seed":    func(p *Params) { p.Seed++ },
		"anchor":  func(p *Params) { p.Anchor = p.Anchor.AddDate(0, 0, 1) },
		"profile": func(p *Params) { p.Profile.FlipRate = 0.2 },
		"allow":   func(p *Params) { p.Allow = []int{9100001} },
	}
	for name, mutate := range variants {
		p := params()
		mutate(&p)
		assert.NotEqual(t, base, Key(p), name)
	}
}

func TestKeyNormalizesAnchorAndAllow(t *testing.T) {
	a := params()
	b := params()
	b.Anchor = anchor.Add(17 * time.Hour)
	assert.Equal(t, Key(a), Key(b), "same day")

	a.Allow = []int{3, 1, 2}
	b.Allow = []int{1, 2, 3}
	assert.Equal(t, Key(a), Key(b))
	assert.Equal(t, []int{3, 1, 2}, a.Allow, "caller slice untouched")
}

// ============================================================================
// CACHE
// ============================================================================

type counter struct {
	mu         sync.Mutex
	hits, miss int
}

func (c *counter) Hit()  { c.mu.Lock(); c.hits++; c.mu.Unlock() }
func (c *counter) Miss() { c.mu.Lock(); c.miss++; c.mu.Unlock() }

func TestCacheTTL(t *testing.T) {
	obs := &counter{}
	c := NewCache[int](time.Minute, obs)
	now := anchor
	c.now = func() time.Time { return now }

	c.Put("a", 1)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	now = now.Add(time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())

	_, ok = c.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, 1, obs.hits)
	assert.Equal(t, 2, obs.miss)
}

func TestCacheNoTTLAndDelete(t *testing.T) {
	c := NewCache[string](0, nil)
	c.Put("k", "v")
	c.now = func() time.Time { return anchor.AddDate(10, 0, 0) }
	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	c.Delete("k")
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestCacheConcurrent(t *testing.T) {
	c := NewCache[int](time.Hour, nil)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Put("shared", i)
			c.Get("shared")
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, c.Len())
}

// ============================================================================
// LOADER
// ============================================================================

type memStore struct {
	data    map[string]engine.Dataset
	gets    int
	puts    int
	failGet bool
}

func newMemStore() *memStore { return &memStore{data: map[string]engine.Dataset{}} }

func (s *memStore) Get(_ context.Context, key string) (engine.Dataset, bool, error) {
	s.gets++
	if s.failGet {
		return engine.Dataset{}, false, errors.New("store down")
	}
	ds, ok := s.data[key]
	return ds, ok, nil
}

func (s *memStore) Put(_ context.Context, key string, ds engine.Dataset) error {
	s.puts++
	s.data[key] = ds
	return nil
}

func TestLoaderTiers(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	var generated int
	l := NewLoader(NewCache[engine.Dataset](time.Hour, nil),
		WithStore(store),
		WithGenerateHook(func(time.Duration) { generated++ }),
	)

	ds, src, err := l.Load(ctx, params())
	require.NoError(t, err)
	assert.Equal(t, SourceSynth, src)
	assert.Equal(t, 80, ds.Len())
	assert.Equal(t, 1, generated)
	assert.Equal(t, 1, store.puts)

	again, src, err := l.Load(ctx, params())
	require.NoError(t, err)
	assert.Equal(t, SourceMemory, src)
	assert.Equal(t, ds.Records(), again.Records())

	// A fresh process sharing the store skips synthesis.
	cold := NewLoader(NewCache[engine.Dataset](time.Hour, nil), WithStore(store))
	fromStore, src, err := cold.Load(ctx, params())
	require.NoError(t, err)
	assert.Equal(t, SourceStore, src)
	assert.Equal(t, ds.Records(), fromStore.Records())
}

func TestLoaderMatchesGenerate(t *testing.T) {
	l := NewLoader(NewCache[engine.Dataset](0, nil))
	ds, _, err := l.Load(context.Background(), params())
	require.NoError(t, err)

	direct, err := synth.Generate(80, 42, synth.WithAnchor(anchor))
	require.NoError(t, err)
	assert.Equal(t, direct.Records(), ds.Records())
}

func TestLoaderStoreFailureFallsBack(t *testing.T) {
	store := newMemStore()
	store.failGet = true
	l := NewLoader(NewCache[engine.Dataset](0, nil), WithStore(store))

	_, src, err := l.Load(context.Background(), params())
	require.NoError(t, err)
	assert.Equal(t, SourceSynth, src)
	assert.Equal(t, 1, store.gets)
}

func TestLoaderAllowList(t *testing.T) {
	p := params()
	full, _, err := NewLoader(NewCache[engine.Dataset](0, nil)).Load(context.Background(), p)
	require.NoError(t, err)

	imo := full.At(0).IMONumber
	p.Allow = []int{imo}
	ds, _, err := NewLoader(NewCache[engine.Dataset](0, nil)).Load(context.Background(), p)
	require.NoError(t, err)
	require.GreaterOrEqual(t, ds.Len(), 1)
	for _, r := range ds.Records() {
		assert.Equal(t, imo, r.IMONumber)
	}
}

func TestLoaderRejectsBadParams(t *testing.T) {
	p := params()
	p.Rows = 0
	_, _, err := NewLoader(NewCache[engine.Dataset](0, nil)).Load(context.Background(), p)
	assert.ErrorIs(t, err, engine.ErrInvalidArgument)
}

// ============================================================================
// REDIS STORE
// ============================================================================

func TestRedisStoreUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	store := NewRedisStore(client, time.Minute)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "k")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, store.Put(ctx, "k", engine.Dataset{}))

	l := NewLoader(NewCache[engine.Dataset](0, nil), WithStore(store))
	_, src, err := l.Load(ctx, params())
	require.NoError(t, err)
	assert.Equal(t, SourceSynth, src)
}

func TestDialRedisFails(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := DialRedis(ctx, "127.0.0.1:1", "", 0)
	assert.Error(t, err)
}
