package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/toon-cache/tcache/config"
	"github.com/ZanzyTHEbar/toon-cache/tcache/db"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, local LocalCache) *Service {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "cache_test.db")
	// One pooled connection keeps concurrent test writers off SQLite
	// file-lock contention without changing layer semantics
	mgr, err := db.NewManager(config.StoreConfig{URL: "file:" + dbPath, MaxOpenConns: 1}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Close() })

	if local == nil {
		local = &noOpCache{}
	}
	return NewService(mgr, local, 60, zerolog.Nop())
}

func countRows(t *testing.T, svc *Service) int {
	t.Helper()

	conn, err := svc.store.Conn(context.Background())
	require.NoError(t, err)

	var count int
	err = conn.QueryRow("SELECT COUNT(*) FROM cartoon_cache").Scan(&count)
	require.NoError(t, err)
	return count
}

func TestLookupMissReturnsAbsence(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	url, ok, err := svc.Lookup(ctx, "a cat", "cartoon", "u2")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, url)
}

func TestStoreThenLookup(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	err := svc.Store(ctx, "a cat", "https://x/1.png", "cartoon", "u1")
	require.NoError(t, err)

	url, ok, err := svc.Lookup(ctx, "a cat", "cartoon", "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "https://x/1.png", url)

	// A different user never stored this prompt
	_, ok, err = svc.Lookup(ctx, "a cat", "cartoon", "u2")
	require.NoError(t, err)
	assert.False(t, ok)

	// Same user, different style
	_, ok, err = svc.Lookup(ctx, "a cat", "sketch", "u1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLookupIsExactMatch(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	require.NoError(t, svc.Store(ctx, "A Cat", "https://x/1.png", "cartoon", "u1"))

	// No normalization, trimming, or case folding
	_, ok, err := svc.Lookup(ctx, "a cat", "cartoon", "u1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = svc.Lookup(ctx, " A Cat", "cartoon", "u1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = svc.Lookup(ctx, "A Cat", "cartoon", "u1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAnonymousEntriesAreIsolated(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	require.NoError(t, svc.StoreAnonymous(ctx, "a cat", "https://x/anon.png", "cartoon"))
	require.NoError(t, svc.Store(ctx, "a cat", "https://x/owned.png", "cartoon", "u1"))

	// Empty userID matches only ownerless rows
	url, ok, err := svc.Lookup(ctx, "a cat", "cartoon", "")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "https://x/anon.png", url)

	url, ok, err = svc.Lookup(ctx, "a cat", "cartoon", "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "https://x/owned.png", url)
}

func TestStoreRequiresOwner(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	err := svc.Store(ctx, "a cat", "https://x/1.png", "cartoon", "")
	assert.ErrorIs(t, err, ErrMissingOwner)
	assert.Equal(t, 0, countRows(t, svc))
}

func TestDuplicateStoresBothPersist(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	require.NoError(t, svc.Store(ctx, "a cat", "https://x/1.png", "cartoon", "u1"))
	require.NoError(t, svc.Store(ctx, "a cat", "https://x/1.png", "cartoon", "u1"))

	// No dedup on write: identical stores leave two rows
	assert.Equal(t, 2, countRows(t, svc))

	url, ok, err := svc.Lookup(ctx, "a cat", "cartoon", "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "https://x/1.png", url)
}

func TestConcurrentStoresAllPersist(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	const writers = 8
	p := pool.New().WithErrors()
	for i := 0; i < writers; i++ {
		p.Go(func() error {
			return svc.Store(ctx, "a cat", "https://x/1.png", "cartoon", "u1")
		})
	}
	require.NoError(t, p.Wait())

	// No mutual exclusion across writers: every store lands a row
	assert.Equal(t, writers, countRows(t, svc))
}

func TestLookupReturnsNewestEntry(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	conn, err := svc.store.Conn(ctx)
	require.NoError(t, err)

	_, err = conn.ExecContext(ctx, insertQuery, "u1", "a cat", "cartoon", "https://x/old.png", "2024-01-01T00:00:00Z")
	require.NoError(t, err)
	_, err = conn.ExecContext(ctx, insertQuery, "u1", "a cat", "cartoon", "https://x/new.png", "2024-06-01T00:00:00Z")
	require.NoError(t, err)

	url, ok, err := svc.Lookup(ctx, "a cat", "cartoon", "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "https://x/new.png", url)
}

func TestLookupMemoizesPositiveHits(t *testing.T) {
	svc := newTestService(t, NewLRUCache(16))
	ctx := context.Background()

	require.NoError(t, svc.Store(ctx, "a cat", "https://x/1.png", "cartoon", "u1"))

	url, ok, err := svc.Lookup(ctx, "a cat", "cartoon", "u1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "https://x/1.png", url)

	// Remove the row behind the layer's back; the memoized hit survives
	conn, err := svc.store.Conn(ctx)
	require.NoError(t, err)
	_, err = conn.ExecContext(ctx, "DELETE FROM cartoon_cache")
	require.NoError(t, err)

	url, ok, err = svc.Lookup(ctx, "a cat", "cartoon", "u1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://x/1.png", url)

	// Misses are never memoized
	_, ok, err = svc.Lookup(ctx, "a dog", "cartoon", "u1")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = svc.Lookup(ctx, "a dog", "cartoon", "u1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFactoryFailsFastOnBadConfig(t *testing.T) {
	f := NewFactory(&config.Config{}, zerolog.Nop())
	_, err := f.CreateService()
	assert.ErrorIs(t, err, db.ErrMissingStoreURL)
}

func TestFactorySelectsLocalCache(t *testing.T) {
	cfg := &config.Config{
		Store: config.StoreConfig{URL: "file:factory_test.db"},
		Cache: config.CacheConfig{LocalEnabled: false},
	}
	f := NewFactory(cfg, zerolog.Nop())
	assert.IsType(t, &noOpCache{}, f.createLocalCache())

	cfg.Cache.LocalEnabled = true
	cfg.Cache.LocalCapacity = 8
	assert.IsType(t, &LRUCache{}, f.createLocalCache())
}

func TestFactoryClampsZeroLocalCapacity(t *testing.T) {
	cfg := &config.Config{
		Store: config.StoreConfig{URL: "file:factory_test.db"},
		Cache: config.CacheConfig{LocalEnabled: true, LocalCapacity: 0},
	}
	f := NewFactory(cfg, zerolog.Nop())

	local := f.createLocalCache()
	require.IsType(t, &LRUCache{}, local)
	assert.Equal(t, defaultLocalCapacity, local.(*LRUCache).capacity)

	// A zero-capacity LRU would evict each entry as it is inserted
	ctx := context.Background()
	require.NoError(t, local.Set(ctx, "k", []byte("v"), 60))
	value, ok := local.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), value)
}
