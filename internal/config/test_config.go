package config

import "time"

// TestConfig returns a config suitable for testing. Network-backed features
// are off; tests enable what they exercise.
func TestConfig() *Config {
	cfg := Default()
	cfg.Storage.ConfigDir = ""
	cfg.Feed = FeedConfig{
		HTTPTimeout: 5 * time.Second,
		UserAgent:   "anirss-test/1.0",
	}
	cfg.Subscription.Exclude = []string{}
	cfg.Subscription.RSSTimeout = 5
	cfg.Providers.CacheTTL = time.Minute
	cfg.Log = LogConfig{Level: "off"}
	return cfg
}
