package bangumi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/anirss/internal/storage"
)

const frierenSubject = `{
	"id": 400602,
	"name": "葬送のフリーレン",
	"name_cn": "葬送的芙莉莲",
	"date": "2023-09-29",
	"platform": "TV",
	"eps": 28,
	"total_episodes": 28,
	"images": {"large": "https://lain.bgm.tv/pic/cover/l/13/c5/400602_ZI8Y9.jpg"},
	"rating": {"score": 9.1}
}`

func newTestServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v0/subjects/400602", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "anirss-test", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(frierenSubject))
	})
	mux.HandleFunc("/v0/search/subjects", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []int{subjectTypeAnime}, req.Filter.Type)

		w.Header().Set("Content-Type", "application/json")
		if req.Keyword != "葬送的芙莉莲" {
			_, _ = w.Write([]byte(`{"total":0,"data":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"total":1,"data":[` + frierenSubject + `]}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestLookupBySubjectURL(t *testing.T) {
	var hits atomic.Int32
	server := newTestServer(t, &hits)
	client := NewClient(server.URL, WithUserAgent("anirss-test"))

	sub := storage.NewSubscription()
	sub.BgmURL = "https://bgm.tv/subject/400602"

	subject, err := client.Lookup(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, int64(400602), subject.ID)
	assert.Equal(t, "葬送的芙莉莲", subject.DisplayName())
}

func TestLookupBySearchStripsSeason(t *testing.T) {
	var hits atomic.Int32
	server := newTestServer(t, &hits)
	client := NewClient(server.URL, WithUserAgent("anirss-test"))

	sub := storage.NewSubscription()
	sub.Title = "葬送的芙莉莲 第二季"

	subject, err := client.Lookup(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, int64(400602), subject.ID)
}

func TestLookupNotFound(t *testing.T) {
	var hits atomic.Int32
	server := newTestServer(t, &hits)
	client := NewClient(server.URL, WithUserAgent("anirss-test"))

	sub := storage.NewSubscription()
	sub.Title = "nothing matches"
	_, err := client.Lookup(context.Background(), sub)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = client.Lookup(context.Background(), storage.NewSubscription())
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = client.Get(context.Background(), 1)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLookupHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	_, err := NewClient(server.URL).Get(context.Background(), 400602)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestLookupUsesCache(t *testing.T) {
	var hits atomic.Int32
	server := newTestServer(t, &hits)

	cache, err := storage.NewCache(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })

	client := NewClient(server.URL, WithUserAgent("anirss-test"), WithCache(cache, time.Hour))
	for i := 0; i < 3; i++ {
		subject, err := client.Get(context.Background(), 400602)
		require.NoError(t, err)
		assert.Equal(t, "葬送的芙莉莲", subject.NameCN)
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestSubjectID(t *testing.T) {
	id, ok := SubjectID("https://bgm.tv/subject/400602")
	assert.True(t, ok)
	assert.Equal(t, int64(400602), id)

	id, ok = SubjectID("https://bangumi.tv/subject/12?foo=bar")
	assert.True(t, ok)
	assert.Equal(t, int64(12), id)

	_, ok = SubjectID("https://bgm.tv/person/1")
	assert.False(t, ok)
	_, ok = SubjectID("")
	assert.False(t, ok)
}

func TestName(t *testing.T) {
	subject := &Subject{ID: 1, Name: "葬送のフリーレン 第2期", NameCN: "葬送的芙莉莲 第二季", Date: "2026-01-09"}
	tmdb := &storage.TMDBInfo{ID: 209867, Name: "葬送的芙莉莲"}

	tests := []struct {
		name   string
		client *Client
		tmdb   *storage.TMDBInfo
		want   string
	}{
		{"plain", NewClient(""), tmdb, "葬送的芙莉莲"},
		{"year", NewClient("", WithNaming(true, false)), tmdb, "葬送的芙莉莲 (2026)"},
		{"tmdb id", NewClient("", WithNaming(false, true)), tmdb, "葬送的芙莉莲 [tmdbid=209867]"},
		{"both", NewClient("", WithNaming(true, true)), tmdb, "葬送的芙莉莲 (2026) [tmdbid=209867]"},
		{"tmdb id without match", NewClient("", WithNaming(false, true)), nil, "葬送的芙莉莲"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.client.Name(subject, tt.tmdb))
		})
	}

	assert.Equal(t, "", NewClient("").Name(nil, nil))
	assert.Equal(t, "Frieren", NewClient("").Name(&Subject{Name: "Frieren"}, nil))
}

func TestApply(t *testing.T) {
	var subject Subject
	require.NoError(t, json.Unmarshal([]byte(frierenSubject), &subject))
	subject.NameCN = "葬送的芙莉莲 第二季"

	sub := storage.NewSubscription()
	Apply(&subject, sub)

	assert.Equal(t, "葬送的芙莉莲 第二季", sub.Title)
	assert.Equal(t, 2, sub.SeasonNumber())
	assert.Equal(t, 2023, sub.Year)
	assert.Equal(t, 9, sub.Month)
	assert.Equal(t, 5, sub.Week)
	assert.Equal(t, 9.1, sub.Score)
	assert.Equal(t, 28, sub.TotalEpisodes)
	assert.Equal(t, "https://lain.bgm.tv/pic/cover/l/13/c5/400602_ZI8Y9.jpg", sub.Image)
	assert.Equal(t, "https://bgm.tv/subject/400602", sub.BgmURL)
	assert.False(t, sub.Ova)
}

func TestApplyDetectsOvaByName(t *testing.T) {
	tests := []struct {
		name    string
		subject Subject
		ova     bool
	}{
		{"chinese movie marker", Subject{NameCN: "葬送的芙莉莲 剧场版", Platform: "TV"}, true},
		{"japanese movie marker", Subject{Name: "劇場版 葬送のフリーレン", Platform: "TV"}, true},
		{"ova in name", Subject{Name: "Show OVA", Platform: "TV"}, true},
		{"movie in name", Subject{Name: "Show Movie", Platform: "TV"}, true},
		{"oad platform", Subject{Name: "Show", Platform: "OAD"}, true},
		{"tv series", Subject{Name: "Novamente", NameCN: "葬送的芙莉莲", Platform: "TV"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := storage.NewSubscription()
			Apply(&tt.subject, sub)
			assert.Equal(t, tt.ova, sub.Ova)
		})
	}
}

func TestApplyKeepsProviderTitle(t *testing.T) {
	sub := storage.NewSubscription()
	sub.Title = "Mikan title"
	Apply(&Subject{ID: 5, NameCN: "剧场版", Platform: "剧场版", Eps: 1}, sub)

	assert.Equal(t, "Mikan title", sub.Title)
	assert.Equal(t, 1, sub.SeasonNumber())
	assert.Equal(t, 1, sub.TotalEpisodes)
	assert.True(t, sub.Ova)

	Apply(nil, sub)
	Apply(&Subject{}, nil)
}
