package main

import (
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/pders01/anirss/internal/config"
	"github.com/pders01/anirss/internal/debuglog"
	"github.com/pders01/anirss/internal/search"
	"github.com/pders01/anirss/internal/storage"
	"github.com/pders01/anirss/internal/subscription"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	sessionOnce sync.Once
	session     *session
	sessionErr  error
}

// session holds everything a command that touches subscriptions needs.
type session struct {
	cfg      *config.Config
	store    *storage.Store
	cache    *storage.Cache
	index    *search.Index
	resolver *subscription.Resolver
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		level := cfg.Log.Level
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			level = *c.logLevelFlag
		}
		if err := debuglog.Setup(debuglog.ParseLogLevel(level), cfg.Log.File); err != nil {
			c.configErr = errors.Wrap(err, "setting up logging")
			return
		}
		debuglog.Debugf("config loaded (storage %s, log level %s)", cfg.Storage.ConfigDir, debuglog.GetLevel())
		c.config = cfg
	})
	return c.config, c.configErr
}

// open loads the subscription document, the provider cache and the search
// index once per invocation.
func (c *commandContext) open() (*session, error) {
	c.sessionOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.sessionErr = err
			return
		}

		store, err := storage.Open(cfg.AniFile())
		if err != nil {
			c.sessionErr = errors.Wrap(err, "loading subscriptions")
			return
		}

		cache, err := storage.NewCache(cfg.CacheFile())
		if err != nil {
			// Lookups still work, just uncached.
			debuglog.Warnf("provider cache unavailable: %v", err)
			cache = nil
		}

		index, err := search.NewIndex(store.All()...)
		if err != nil {
			if cache != nil {
				cache.Close()
			}
			c.sessionErr = errors.Wrap(err, "building search index")
			return
		}

		c.session = &session{
			cfg:      cfg,
			store:    store,
			cache:    cache,
			index:    index,
			resolver: subscription.Build(cfg, store, cache, index),
		}
	})
	return c.session, c.sessionErr
}

// close is safe to call more than once.
func (c *commandContext) close() {
	if c.session != nil {
		if c.session.cache != nil {
			c.session.cache.Close()
		}
		c.session.index.Close()
		c.session = nil
	}
	debuglog.Close()
}
