package feed

import (
	"bytes"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/pkg/errors"

	"github.com/pders01/anirss/internal/storage"
)

// Item is one downloadable release in a subscription feed.
type Item struct {
	Title      string
	TorrentURL string
	InfoHash   string
	Size       int64
	Episode    float64
	Published  time.Time
}

type Parser struct {
	parser        *gofeed.Parser
	globalExclude []string
}

// NewParser builds a parser that applies globalExclude to subscriptions
// with GlobalExclude set.
func NewParser(globalExclude []string) *Parser {
	return &Parser{
		parser:        gofeed.NewParser(),
		globalExclude: append([]string(nil), globalExclude...),
	}
}

// Items parses a feed body into the releases that survive the
// subscription's exclusion rules and carry an episode number.
func (p *Parser) Items(sub *storage.Subscription, body []byte) ([]Item, error) {
	feed, err := p.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "parsing feed")
	}

	lists := [][]string{sub.Exclude}
	if sub.GlobalExclude {
		lists = append(lists, p.globalExclude)
	}
	matcher := NewMatcher(lists...)

	items := make([]Item, 0, len(feed.Items))
	for _, fi := range feed.Items {
		title := strings.TrimSpace(fi.Title)
		if title == "" || matcher.Match(title) {
			continue
		}

		ep, ok := ParseEpisode(title)
		if !ok {
			continue
		}

		item := Item{
			Title:   title,
			Episode: ep,
		}
		item.TorrentURL, item.Size = torrentOf(fi)
		item.InfoHash = infoHash(item.TorrentURL)
		if fi.PublishedParsed != nil {
			item.Published = *fi.PublishedParsed
		}

		items = append(items, item)
	}

	return items, nil
}

// MinEpisode returns the lowest episode number across items.
func MinEpisode(items []Item) (float64, bool) {
	if len(items) == 0 {
		return 0, false
	}
	lowest := items[0].Episode
	for _, it := range items[1:] {
		if it.Episode < lowest {
			lowest = it.Episode
		}
	}
	return lowest, true
}

func torrentOf(fi *gofeed.Item) (string, int64) {
	for _, enc := range fi.Enclosures {
		if enc.URL == "" {
			continue
		}
		size, _ := strconv.ParseInt(enc.Length, 10, 64)
		if enc.Type == "application/x-bittorrent" || strings.HasSuffix(enc.URL, ".torrent") {
			return enc.URL, size
		}
	}
	if len(fi.Enclosures) > 0 && fi.Enclosures[0].URL != "" {
		size, _ := strconv.ParseInt(fi.Enclosures[0].Length, 10, 64)
		return fi.Enclosures[0].URL, size
	}
	return fi.Link, 0
}

var infoHashRegex = regexp.MustCompile(`^[0-9a-fA-F]{40}$`)

func infoHash(torrentURL string) string {
	if strings.HasPrefix(torrentURL, "magnet:") {
		if i := strings.Index(torrentURL, "btih:"); i >= 0 {
			h := torrentURL[i+len("btih:"):]
			if j := strings.IndexByte(h, '&'); j >= 0 {
				h = h[:j]
			}
			return strings.ToLower(h)
		}
		return ""
	}
	base := strings.TrimSuffix(path.Base(torrentURL), ".torrent")
	if infoHashRegex.MatchString(base) {
		return strings.ToLower(base)
	}
	return ""
}
