package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/anirss/internal/storage"
)

func sub(url, title, tmdbName, subgroup string) *storage.Subscription {
	s := storage.NewSubscription()
	s.URL = url
	s.Title = title
	s.ThemoviedbName = tmdbName
	s.Subgroup = subgroup
	return s
}

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := NewIndex(
		sub("https://mikanani.me/RSS/Bangumi?bangumiId=3141&subgroupid=583", "葬送的芙莉莲", "Frieren: Beyond Journey's End", "ANi"),
		sub("https://mikanani.me/RSS/Bangumi?bangumiId=3200&subgroupid=382", "药屋少女的呢喃", "The Apothecary Diaries", "喵萌奶茶屋"),
		sub("https://example.com/other.xml", "Dungeon Meshi", "", storage.UnknownSubgroup),
	)
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestSearchMinLength(t *testing.T) {
	idx := newTestIndex(t)

	for _, q := range []string{"", "a", "   ", "芙"} {
		results, err := idx.Search(q, 10)
		assert.NoError(t, err)
		assert.NotNil(t, results)
		assert.Empty(t, results, "short queries should return empty results")
	}
}

func TestSearchMatches(t *testing.T) {
	idx := newTestIndex(t)

	tests := []struct {
		name  string
		query string
		url   string
	}{
		{"cjk title fragment", "芙莉莲", "https://mikanani.me/RSS/Bangumi?bangumiId=3141&subgroupid=583"},
		{"tmdb name", "apothecary", "https://mikanani.me/RSS/Bangumi?bangumiId=3200&subgroupid=382"},
		{"prefix", "dunge", "https://example.com/other.xml"},
		{"subgroup", "喵萌", "https://mikanani.me/RSS/Bangumi?bangumiId=3200&subgroupid=382"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := idx.Search(tt.query, 10)
			require.NoError(t, err)
			require.NotEmpty(t, results)
			assert.Equal(t, tt.url, results[0].URL)
		})
	}
}

func TestIndexReplaceAndRemove(t *testing.T) {
	idx := newTestIndex(t)

	updated := sub("https://example.com/other.xml", "迷宫饭", "Delicious in Dungeon", storage.UnknownSubgroup)
	require.NoError(t, idx.Index(updated))
	require.NoError(t, idx.Index(updated))

	results, err := idx.Search("delicious", 10)
	require.NoError(t, err)
	require.Len(t, results, 1, "reindexing a URL replaces its document")
	assert.Equal(t, "迷宫饭", results[0].Title)

	require.NoError(t, idx.Remove("https://example.com/other.xml"))
	results, err = idx.Search("delicious", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"frieren", "beyond", "journey", "end"}, tokenize("Frieren: Beyond Journey's End"))
	assert.Equal(t, []string{"葬送的芙莉莲", "s2"}, tokenize("葬送的芙莉莲 S2"))
	assert.Empty(t, tokenize("a b c"))
}
