package mikan

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/anirss/internal/config"
	"github.com/pders01/anirss/internal/feed"
	"github.com/pders01/anirss/internal/storage"
)

func TestSubgroupAndBangumiID(t *testing.T) {
	tests := []struct {
		url       string
		bangumiID string
		subgroup  string
	}{
		{"https://mikanani.me/RSS/Bangumi?bangumiId=3800&subgroupid=583", "3800", "583"},
		{"https://mikanani.me/RSS/Bangumi?bangumiId=3800", "3800", ""},
		{"  https://mikanani.me/RSS/Bangumi?subgroupId=12&bangumiid=7  ", "7", "12"},
		{"https://example.com/feed.xml", "", ""},
		{"::not a url", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.bangumiID, BangumiID(tt.url))
			assert.Equal(t, tt.subgroup, SubgroupID(tt.url))
		})
	}
}

func newMikanServer(t *testing.T) *httptest.Server {
	t.Helper()
	page, err := os.ReadFile("testdata/bangumi.html")
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Home/Bangumi/3800" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(page)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestParse(t *testing.T) {
	server := newMikanServer(t)
	client := NewClient(server.URL, feed.NewFetcher(config.TestConfig()))

	tests := []struct {
		name       string
		subgroupID string
		want       string
	}{
		{"linked group", "583", "ANi"},
		{"second group", "382", "喵萌奶茶屋"},
		{"unlinked group", "1230", "生肉/不明字幕"},
		{"unknown group", "999", storage.UnknownSubgroup},
		{"no group", "", storage.UnknownSubgroup},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := storage.NewSubscription()
			sub.URL = server.URL + "/RSS/Bangumi?bangumiId=3800&subgroupid=" + tt.subgroupID

			require.NoError(t, client.Parse(context.Background(), sub, tt.subgroupID))

			assert.Equal(t, tt.want, sub.Subgroup)
			assert.Equal(t, "葬送的芙莉莲 第二季", sub.Title)
			assert.Equal(t, 2, sub.SeasonNumber())
			assert.Equal(t, "3800", sub.BangumiID)
			assert.Equal(t, "https://bgm.tv/subject/498931", sub.BgmURL)
			assert.Equal(t, server.URL+"/images/Bangumi/202601/a1b2c3d4.jpg", sub.Image)
		})
	}
}

func TestParseFailures(t *testing.T) {
	server := newMikanServer(t)
	client := NewClient(server.URL, feed.NewFetcher(config.TestConfig()))

	sub := storage.NewSubscription()
	sub.URL = server.URL + "/RSS/Bangumi?subgroupid=583"
	assert.ErrorIs(t, client.Parse(context.Background(), sub, "583"), ErrNoBangumiID)

	sub.URL = server.URL + "/RSS/Bangumi?bangumiId=1"
	err := client.Parse(context.Background(), sub, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, feed.ErrBadStatus)
}

func TestNewClientDefaultHost(t *testing.T) {
	c := NewClient("", nil)
	assert.Equal(t, "https://mikanani.me/Home/Bangumi/3141", c.PageURL("3141"))
}
