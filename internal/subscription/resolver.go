// Package subscription turns a feed URL into a stored subscription.
package subscription

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/pders01/anirss/internal/bangumi"
	"github.com/pders01/anirss/internal/config"
	"github.com/pders01/anirss/internal/debuglog"
	"github.com/pders01/anirss/internal/feed"
	"github.com/pders01/anirss/internal/mikan"
	"github.com/pders01/anirss/internal/provider"
	"github.com/pders01/anirss/internal/storage"
	"github.com/pders01/anirss/internal/textutil"
	"github.com/pders01/anirss/internal/validation"
)

// Providers dispatches to the source that describes a subscription type.
// *provider.Registry satisfies it.
type Providers interface {
	Populate(ctx context.Context, req provider.Request, sub *storage.Subscription) (provider.Provider, error)
}

// Catalog finds the catalog entry for a subscription and names it.
// *bangumi.Client satisfies it.
type Catalog interface {
	Lookup(ctx context.Context, sub *storage.Subscription) (*bangumi.Subject, error)
	Name(subject *bangumi.Subject, tmdb *storage.TMDBInfo) string
}

// TitleSource returns an alternative title, or "" when it has none.
// *tmdb.Client satisfies it.
type TitleSource interface {
	Name(ctx context.Context, sub *storage.Subscription) string
}

// FeedGetter fetches a feed body. *feed.Fetcher satisfies it.
type FeedGetter interface {
	Get(ctx context.Context, rawURL string, timeout time.Duration) ([]byte, error)
}

// ItemParser turns a feed body into releases. *feed.Parser satisfies it.
type ItemParser interface {
	Items(sub *storage.Subscription, body []byte) ([]feed.Item, error)
}

// PathResolver lists candidate download folders, preferred first.
type PathResolver interface {
	Paths(sub *storage.Subscription) []string
}

// CoverSaver caches a cover image and returns its local name.
type CoverSaver interface {
	Save(ctx context.Context, coverURL string, overwrite bool) string
}

// Indexer keeps a search index current.
type Indexer interface {
	Index(subs ...*storage.Subscription) error
}

// Deps are the collaborators of a Resolver. Titles, Covers and Index are
// optional.
type Deps struct {
	Providers Providers
	Catalog   Catalog
	Titles    TitleSource
	Fetcher   FeedGetter
	Parser    ItemParser
	Paths     PathResolver
	Store     *storage.Store
	Covers    CoverSaver
	Index     Indexer
}

type Resolver struct {
	cfg  config.SubscriptionConfig
	deps Deps

	// addMu makes the duplicate check and the append in Add atomic.
	addMu sync.Mutex
}

func NewResolver(cfg config.SubscriptionConfig, deps Deps) *Resolver {
	return &Resolver{cfg: cfg, deps: deps}
}

// Resolve builds a complete, unsaved subscription for url. typ selects the
// provider and defaults to mikan; bgmURL is used by providers that cannot
// find the catalog entry themselves.
func (r *Resolver) Resolve(ctx context.Context, url, typ, bgmURL string) (*storage.Subscription, error) {
	typ = strings.TrimSpace(typ)
	if typ == "" {
		typ = storage.TypeMikan
	}

	sub := storage.NewSubscription()
	sub.URL = strings.TrimSpace(url)
	sub.BangumiFeedID = mikan.SubgroupID(sub.URL)
	sub.BangumiID = mikan.BangumiID(sub.URL)

	req := provider.Request{
		URL:        sub.URL,
		Type:       typ,
		SubgroupID: sub.BangumiFeedID,
		BgmURL:     strings.TrimSpace(bgmURL),
	}
	p, err := r.deps.Providers.Populate(ctx, req, sub)
	if err != nil {
		name := typ
		if p != nil {
			name = p.Name()
		}
		return nil, &ProviderError{Provider: name, Err: err}
	}

	subject, err := r.deps.Catalog.Lookup(ctx, sub)
	if err != nil {
		return nil, errors.Wrap(err, "looking up catalog entry")
	}
	bangumi.Apply(subject, sub)

	themoviedbName := ""
	if r.deps.Titles != nil {
		themoviedbName = r.deps.Titles.Name(ctx, sub)
	}

	var title string
	if r.cfg.TMDB && strings.TrimSpace(themoviedbName) != "" {
		title = themoviedbName
	} else {
		title = r.deps.Catalog.Name(subject, sub.TMDB)
	}

	if r.cfg.ImportExclude {
		sub.Exclude = feed.MergeExclude(r.cfg.Exclude, sub.Exclude)
	}

	sub.Title = textutil.CleanTitle(title)
	sub.DownloadNew = r.cfg.DownloadNew
	sub.GlobalExclude = r.cfg.EnabledExclude
	sub.Type = typ
	sub.ThemoviedbName = themoviedbName

	if paths := r.deps.Paths.Paths(sub); len(paths) > 0 {
		abs, err := filepath.Abs(paths[0])
		if err != nil {
			return nil, errors.Wrap(err, "resolving download path")
		}
		sub.DownloadPath = abs
	}

	debuglog.WithFields(map[string]any{
		"url":      sub.URL,
		"title":    sub.Title,
		"season":   sub.SeasonNumber(),
		"subgroup": sub.Subgroup,
	}).Debugf("resolved subscription")

	if sub.Ova {
		return sub, nil
	}

	if r.cfg.Offset {
		if err := r.inferOffset(ctx, sub); err != nil {
			return nil, err
		}
	}
	return sub, nil
}

// inferOffset samples the live feed so the earliest release published maps
// to episode 1.
func (r *Resolver) inferOffset(ctx context.Context, sub *storage.Subscription) error {
	body, err := r.deps.Fetcher.Get(ctx, sub.URL, r.cfg.RSSTimeoutDuration())
	if err != nil {
		return errors.Wrap(err, "sampling feed for episode offset")
	}
	items, err := r.deps.Parser.Items(sub, body)
	if err != nil {
		return errors.Wrap(err, "parsing feed for episode offset")
	}
	lowest, ok := feed.MinEpisode(items)
	if !ok {
		debuglog.Debugf("no episodes in %s, offset left at %d", sub.URL, sub.EpisodeOffset())
		return nil
	}
	offset := int(-(lowest - 1))
	debuglog.Debugf("inferred episode offset %d for %s", offset, sub.URL)
	sub.Offset = storage.IntPtr(offset)
	return nil
}

// Add resolves url, validates the result and stores it. A URL that is
// already subscribed fails with ErrDuplicate. A failed disk sync is logged
// and does not fail the call.
func (r *Resolver) Add(ctx context.Context, url, typ, bgmURL string) (*storage.Subscription, error) {
	if _, ok := r.deps.Store.Find(url); ok {
		return nil, errors.Wrap(ErrDuplicate, strings.TrimSpace(url))
	}

	sub, err := r.Resolve(ctx, url, typ, bgmURL)
	if err != nil {
		return nil, err
	}
	if err := validation.Subscription(sub); err != nil {
		return nil, err
	}
	if r.deps.Covers != nil {
		sub.Cover = r.deps.Covers.Save(ctx, sub.Image, false)
	}

	r.addMu.Lock()
	if _, ok := r.deps.Store.Find(sub.URL); ok {
		r.addMu.Unlock()
		return nil, errors.Wrap(ErrDuplicate, sub.URL)
	}
	r.deps.Store.Add(sub)
	r.addMu.Unlock()

	if res := r.deps.Store.Sync(); !res.OK() {
		debuglog.Warnf("subscription %s added but not persisted: %v", sub.URL, res.Err)
	}
	if r.deps.Index != nil {
		if err := r.deps.Index.Index(sub); err != nil {
			debuglog.Warnf("indexing %s: %v", sub.URL, err)
		}
	}
	return sub, nil
}
