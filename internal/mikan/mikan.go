// Package mikan reads show metadata from mikanani.me bangumi pages.
package mikan

import (
	"bytes"
	"context"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"

	"github.com/pders01/anirss/internal/bangumi"
	"github.com/pders01/anirss/internal/storage"
)

const (
	DefaultHost = "https://mikanani.me"

	pageTimeout = 20 * time.Second
)

// ErrNoBangumiID is returned for feed URLs that do not name a show.
var ErrNoBangumiID = errors.New("feed url has no bangumiId")

var backgroundURL = regexp.MustCompile(`url\(['"]?([^'")]+)['"]?\)`)

// Getter fetches a page body. feed.Fetcher satisfies it.
type Getter interface {
	Get(ctx context.Context, rawURL string, timeout time.Duration) ([]byte, error)
}

type Client struct {
	host   string
	getter Getter
}

func NewClient(host string, getter Getter) *Client {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	if host == "" {
		host = DefaultHost
	}
	return &Client{host: host, getter: getter}
}

// SubgroupID returns the subgroupid query parameter of a Mikan feed URL.
func SubgroupID(feedURL string) string {
	return queryParam(feedURL, "subgroupid")
}

// BangumiID returns the bangumiId query parameter of a Mikan feed URL.
func BangumiID(feedURL string) string {
	return queryParam(feedURL, "bangumiId")
}

func queryParam(rawURL, name string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	for key, values := range u.Query() {
		if strings.EqualFold(key, name) && len(values) > 0 {
			return strings.TrimSpace(values[0])
		}
	}
	return ""
}

// PageURL is the bangumi page for a Mikan show id.
func (c *Client) PageURL(bangumiID string) string {
	return c.host + "/Home/Bangumi/" + url.PathEscape(bangumiID)
}

// Parse fills sub from the Mikan page of the show its URL points at: title,
// season, bgm.tv link, poster image and the name of subgroupID.
func (c *Client) Parse(ctx context.Context, sub *storage.Subscription, subgroupID string) error {
	bangumiID := BangumiID(sub.URL)
	if bangumiID == "" {
		return ErrNoBangumiID
	}
	sub.BangumiID = bangumiID

	body, err := c.getter.Get(ctx, c.PageURL(bangumiID), pageTimeout)
	if err != nil {
		return errors.Wrap(err, "fetch mikan page")
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "parse mikan page")
	}

	title := strings.TrimSpace(doc.Find(".bangumi-title").First().Text())
	if title == "" {
		return errors.New("mikan page has no title")
	}
	sub.Title = title
	if season, ok := bangumi.ParseSeason(title); ok {
		sub.Season = storage.IntPtr(season)
	}

	doc.Find(".bangumi-info a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if _, ok := bangumi.SubjectID(href); ok {
			sub.BgmURL = strings.TrimSpace(href)
			return false
		}
		return true
	})

	if style, ok := doc.Find(".bangumi-poster").First().Attr("style"); ok {
		if m := backgroundURL.FindStringSubmatch(style); m != nil {
			sub.Image = c.absolute(m[1])
		}
	}

	sub.Subgroup = storage.UnknownSubgroup
	if subgroupID != "" {
		doc.Find(".subgroup-text").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if id, _ := s.Attr("id"); id != subgroupID {
				return true
			}
			name := strings.TrimSpace(s.Find("a").First().Text())
			if name == "" {
				name = strings.TrimSpace(s.Contents().First().Text())
			}
			if name != "" {
				sub.Subgroup = name
			}
			return false
		})
	}
	return nil
}

// absolute resolves a page-relative link against the host and drops the
// resize query Mikan appends to poster URLs.
func (c *Client) absolute(ref string) string {
	base, err := url.Parse(c.host + "/")
	if err != nil {
		return ref
	}
	u, err := base.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ref
	}
	u.RawQuery = ""
	return u.String()
}
