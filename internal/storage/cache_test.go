package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestCache(t *testing.T) *Cache {
	t.Helper()
	cache, err := NewCache(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

func TestCache_PutAndGet(t *testing.T) {
	cache := setupTestCache(t)

	info := TMDBInfo{ID: 209867, Name: "葬送的芙莉莲", Date: "2023-09-29"}
	require.NoError(t, cache.Put(TMDBBucket, "frieren", info))

	var got TMDBInfo
	assert.True(t, cache.Get(TMDBBucket, "frieren", time.Hour, &got))
	assert.Equal(t, info, got)

	assert.False(t, cache.Get(BangumiBucket, "frieren", time.Hour, &got), "buckets are separate")
	assert.False(t, cache.Get(TMDBBucket, "missing", time.Hour, &got))
}

func TestCache_Expiry(t *testing.T) {
	cache := setupTestCache(t)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	require.NoError(t, cache.Put(BangumiBucket, "400602", map[string]int{"id": 400602}))

	now = now.Add(2 * time.Hour)
	var got map[string]int
	assert.False(t, cache.Get(BangumiBucket, "400602", time.Hour, &got), "entry older than maxAge")
	assert.True(t, cache.Get(BangumiBucket, "400602", 0, &got), "zero maxAge never expires")
	assert.Equal(t, 400602, got["id"])
}

func TestCache_UnknownBucket(t *testing.T) {
	cache := setupTestCache(t)
	assert.Error(t, cache.Put([]byte("nope"), "k", "v"))
}
