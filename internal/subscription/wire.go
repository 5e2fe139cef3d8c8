package subscription

import (
	"github.com/pders01/anirss/internal/bangumi"
	"github.com/pders01/anirss/internal/config"
	"github.com/pders01/anirss/internal/cover"
	"github.com/pders01/anirss/internal/download"
	"github.com/pders01/anirss/internal/feed"
	"github.com/pders01/anirss/internal/mikan"
	"github.com/pders01/anirss/internal/provider"
	"github.com/pders01/anirss/internal/storage"
	"github.com/pders01/anirss/internal/tmdb"
)

// Build wires a Resolver against the real Mikan, Bangumi and TMDB services.
// cache and index may be nil. TMDB is skipped when no API key is set.
func Build(cfg *config.Config, store *storage.Store, cache *storage.Cache, index Indexer) *Resolver {
	fetcher := feed.NewFetcher(cfg)

	bgmOpts := []bangumi.Option{
		bangumi.WithHTTPClient(fetcher.Client()),
		bangumi.WithUserAgent(cfg.Feed.UserAgent),
		bangumi.WithNaming(cfg.Subscription.TitleYear, cfg.Subscription.TMDBID),
	}
	var tmdbOpts []tmdb.Option
	tmdbOpts = append(tmdbOpts, tmdb.WithHTTPClient(fetcher.Client()))
	if cache != nil {
		bgmOpts = append(bgmOpts, bangumi.WithCache(cache, cfg.Providers.CacheTTL))
		tmdbOpts = append(tmdbOpts, tmdb.WithCache(cache, cfg.Providers.CacheTTL))
	}

	deps := Deps{
		Providers: provider.NewRegistry(
			provider.NewMikan(mikan.NewClient(cfg.Providers.MikanHost, fetcher)),
			provider.NewOther(),
		),
		Catalog: bangumi.NewClient(cfg.Providers.BangumiAPI, bgmOpts...),
		Fetcher: fetcher,
		Parser:  feed.NewParser(cfg.Subscription.Exclude),
		Paths:   download.NewPathResolver(cfg.Download),
		Store:   store,
		Covers:  cover.New(cfg.FilesDir(), fetcher),
	}
	if client, err := tmdb.New(cfg.Providers.TMDBAPIKey, cfg.Providers.TMDBAPI, cfg.Providers.TMDBLanguage, tmdbOpts...); err == nil {
		deps.Titles = client
	}
	if index != nil {
		deps.Index = index
	}
	return NewResolver(cfg.Subscription, deps)
}
