package snapshot

import (
	"context"
	"log"
	"time"

	"github.com/spektr-org/portemission/engine"
	"github.com/spektr-org/portemission/helpers"
	"github.com/spektr-org/portemission/synth"
)

// ============================================================================
// LOADER — memory → store → synthesizer
// ============================================================================

// Store is a shared snapshot store. RedisStore implements it.
type Store interface {
	Get(ctx context.Context, key string) (engine.Dataset, bool, error)
	Put(ctx context.Context, key string, ds engine.Dataset) error
}

// Source names the tier a snapshot came from.
type Source string

const (
	SourceMemory Source = "memory"
	SourceStore  Source = "store"
	SourceSynth  Source = "synth"
)

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithStore adds a shared store behind the memory tier.
func WithStore(s Store) LoaderOption {
	return func(l *Loader) {
		l.store = s
	}
}

// WithGenerateHook is called with the duration of every synthesis.
func WithGenerateHook(fn func(time.Duration)) LoaderOption {
	return func(l *Loader) {
		l.onGenerate = fn
	}
}

// Loader resolves snapshot params to a dataset. Store failures are logged
// and treated as misses; only synthesis errors reach the caller.
type Loader struct {
	memory     *Cache[engine.Dataset]
	store      Store
	onGenerate func(time.Duration)
}

// NewLoader creates a loader over the given memory tier.
func NewLoader(memory *Cache[engine.Dataset], opts ...LoaderOption) *Loader {
	l := &Loader{memory: memory}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the snapshot for p and the tier that served it.
func (l *Loader) Load(ctx context.Context, p Params) (engine.Dataset, Source, error) {
	key := Key(p)

	if ds, ok := l.memory.Get(key); ok {
		return ds, SourceMemory, nil
	}

	if l.store != nil {
		ds, ok, err := l.store.Get(ctx, key)
		switch {
		case err != nil:
			log.Printf("⚠️  snapshot: store get %s: %v", key, err)
		case ok:
			l.memory.Put(key, ds)
			return ds, SourceStore, nil
		}
	}

	start := time.Now()
	ds, err := synth.Generate(p.Rows, p.Seed, synth.WithAnchor(p.Anchor), synth.WithProfile(p.Profile))
	if err != nil {
		return engine.Dataset{}, "", err
	}
	ds, err = helpers.NewAllowList(p.Allow...).Filter(ds)
	if err != nil {
		return engine.Dataset{}, "", err
	}
	elapsed := time.Since(start)
	if l.onGenerate != nil {
		l.onGenerate(elapsed)
	}
	log.Printf("🧪 snapshot: generated %d rows (seed=%d) in %s", ds.Len(), p.Seed, elapsed)

	l.memory.Put(key, ds)
	if l.store != nil {
		if err := l.store.Put(ctx, key, ds); err != nil {
			log.Printf("⚠️  snapshot: store put %s: %v", key, err)
		}
	}
	return ds, SourceSynth, nil
}
