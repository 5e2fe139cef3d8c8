package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Config struct {
	Storage      StorageConfig      `mapstructure:"storage" toml:"storage"`
	Feed         FeedConfig         `mapstructure:"feed" toml:"feed"`
	Subscription SubscriptionConfig `mapstructure:"subscription" toml:"subscription"`
	Download     DownloadConfig     `mapstructure:"download" toml:"download"`
	Providers    ProvidersConfig    `mapstructure:"providers" toml:"providers"`
	Log          LogConfig          `mapstructure:"log" toml:"log"`
}

type StorageConfig struct {
	ConfigDir string `mapstructure:"config_dir" toml:"config_dir"`
}

type FeedConfig struct {
	HTTPTimeout time.Duration `mapstructure:"http_timeout" toml:"http_timeout"`
	UserAgent   string        `mapstructure:"user_agent" toml:"user_agent"`
}

// SubscriptionConfig holds the global switches copied onto every newly
// resolved subscription.
type SubscriptionConfig struct {
	DownloadNew    bool     `mapstructure:"download_new" toml:"download_new"`
	TMDB           bool     `mapstructure:"tmdb" toml:"tmdb"`
	EnabledExclude bool     `mapstructure:"enabled_exclude" toml:"enabled_exclude"`
	ImportExclude  bool     `mapstructure:"import_exclude" toml:"import_exclude"`
	Exclude        []string `mapstructure:"exclude" toml:"exclude"`
	Offset         bool     `mapstructure:"offset" toml:"offset"`
	RSSTimeout     int      `mapstructure:"rss_timeout" toml:"rss_timeout"`
	TitleYear      bool     `mapstructure:"title_year" toml:"title_year"`
	TMDBID         bool     `mapstructure:"tmdb_id" toml:"tmdb_id"`
}

type DownloadConfig struct {
	PathTemplate    string `mapstructure:"path_template" toml:"path_template"`
	OvaPathTemplate string `mapstructure:"ova_path_template" toml:"ova_path_template"`
	SeasonFormat    string `mapstructure:"season_format" toml:"season_format"`
}

type ProvidersConfig struct {
	MikanHost    string        `mapstructure:"mikan_host" toml:"mikan_host"`
	BangumiAPI   string        `mapstructure:"bangumi_api" toml:"bangumi_api"`
	TMDBAPI      string        `mapstructure:"tmdb_api" toml:"tmdb_api"`
	TMDBAPIKey   string        `mapstructure:"tmdb_api_key" toml:"tmdb_api_key"`
	TMDBLanguage string        `mapstructure:"tmdb_language" toml:"tmdb_language"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl" toml:"cache_ttl"`
}

type LogConfig struct {
	Level string `mapstructure:"level" toml:"level"`
	File  string `mapstructure:"file" toml:"file"`
}

// RSSTimeoutDuration returns the offset-inference fetch timeout.
func (c SubscriptionConfig) RSSTimeoutDuration() time.Duration {
	if c.RSSTimeout <= 0 {
		return 20 * time.Second
	}
	return time.Duration(c.RSSTimeout) * time.Second
}

// AniFile is the path of the persisted subscription document.
func (c *Config) AniFile() string {
	return filepath.Join(c.Storage.ConfigDir, "ani.json")
}

// FilesDir holds cached cover images.
func (c *Config) FilesDir() string {
	return filepath.Join(c.Storage.ConfigDir, "files")
}

// CacheFile is the path of the provider lookup cache.
func (c *Config) CacheFile() string {
	return filepath.Join(c.Storage.ConfigDir, "cache.db")
}

// Default returns the built-in configuration.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Storage: StorageConfig{
			ConfigDir: filepath.Join(homeDir, ".config", "anirss"),
		},
		Feed: FeedConfig{
			HTTPTimeout: 30 * time.Second,
			UserAgent:   "anirss/1.0 (https://github.com/pders01/anirss)",
		},
		Subscription: SubscriptionConfig{
			DownloadNew:    false,
			TMDB:           false,
			EnabledExclude: true,
			ImportExclude:  false,
			Exclude:        []string{"720[Pp]", `\d-\d`, "合集", "特别篇"},
			Offset:         false,
			RSSTimeout:     20,
			TitleYear:      false,
			TMDBID:         false,
		},
		Download: DownloadConfig{
			PathTemplate:    "/Media/番剧/${letter}/${title}/Season ${season}",
			OvaPathTemplate: "/Media/剧场版/${letter}/${title}",
			SeasonFormat:    "%d",
		},
		Providers: ProvidersConfig{
			MikanHost:    "https://mikanani.me",
			BangumiAPI:   "https://api.bgm.tv",
			TMDBAPI:      "https://api.themoviedb.org/3",
			TMDBLanguage: "zh-CN",
			CacheTTL:     24 * time.Hour,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v, Default())

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		homeDir, _ := os.UserHomeDir()
		configDir := filepath.Join(homeDir, ".config", "anirss")

		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("ANIRSS")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "reading config")
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	expandPaths(&config)

	return &config, nil
}

// setDefaults registers every leaf key so a partial config file only
// overrides the keys it names.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("storage.config_dir", cfg.Storage.ConfigDir)

	v.SetDefault("feed.http_timeout", cfg.Feed.HTTPTimeout)
	v.SetDefault("feed.user_agent", cfg.Feed.UserAgent)

	v.SetDefault("subscription.download_new", cfg.Subscription.DownloadNew)
	v.SetDefault("subscription.tmdb", cfg.Subscription.TMDB)
	v.SetDefault("subscription.enabled_exclude", cfg.Subscription.EnabledExclude)
	v.SetDefault("subscription.import_exclude", cfg.Subscription.ImportExclude)
	v.SetDefault("subscription.exclude", cfg.Subscription.Exclude)
	v.SetDefault("subscription.offset", cfg.Subscription.Offset)
	v.SetDefault("subscription.rss_timeout", cfg.Subscription.RSSTimeout)
	v.SetDefault("subscription.title_year", cfg.Subscription.TitleYear)
	v.SetDefault("subscription.tmdb_id", cfg.Subscription.TMDBID)

	v.SetDefault("download.path_template", cfg.Download.PathTemplate)
	v.SetDefault("download.ova_path_template", cfg.Download.OvaPathTemplate)
	v.SetDefault("download.season_format", cfg.Download.SeasonFormat)

	v.SetDefault("providers.mikan_host", cfg.Providers.MikanHost)
	v.SetDefault("providers.bangumi_api", cfg.Providers.BangumiAPI)
	v.SetDefault("providers.tmdb_api", cfg.Providers.TMDBAPI)
	v.SetDefault("providers.tmdb_api_key", cfg.Providers.TMDBAPIKey)
	v.SetDefault("providers.tmdb_language", cfg.Providers.TMDBLanguage)
	v.SetDefault("providers.cache_ttl", cfg.Providers.CacheTTL)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.file", cfg.Log.File)
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.Storage.ConfigDir = expandPath(cfg.Storage.ConfigDir)
	cfg.Log.File = expandPath(cfg.Log.File)
}

// fileConfig mirrors Config with durations rendered as strings so the
// generated TOML stays readable.
type fileConfig struct {
	Storage      StorageConfig      `toml:"storage"`
	Feed         map[string]any     `toml:"feed"`
	Subscription SubscriptionConfig `toml:"subscription"`
	Download     DownloadConfig     `toml:"download"`
	Providers    map[string]any     `toml:"providers"`
	Log          LogConfig          `toml:"log"`
}

func Save(config *Config, path string) error {
	out := fileConfig{
		Storage: config.Storage,
		Feed: map[string]any{
			"http_timeout": config.Feed.HTTPTimeout.String(),
			"user_agent":   config.Feed.UserAgent,
		},
		Subscription: config.Subscription,
		Download:     config.Download,
		Providers: map[string]any{
			"mikan_host":    config.Providers.MikanHost,
			"bangumi_api":   config.Providers.BangumiAPI,
			"tmdb_api":      config.Providers.TMDBAPI,
			"tmdb_api_key":  config.Providers.TMDBAPIKey,
			"tmdb_language": config.Providers.TMDBLanguage,
			"cache_ttl":     config.Providers.CacheTTL.String(),
		},
		Log: config.Log,
	}

	data, err := toml.Marshal(out)
	if err != nil {
		return errors.Wrap(err, "encoding config")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "creating config directory")
	}

	return os.WriteFile(path, data, 0o644)
}

func GenerateDefaultConfig(path string) error {
	return Save(Default(), path)
}
