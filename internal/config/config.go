package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Feeds     FeedsConfig     `yaml:"feeds" mapstructure:"feeds"`
	Jobs      JobsConfig      `yaml:"jobs" mapstructure:"jobs"`
	Scoring   ScoringConfig   `yaml:"scoring" mapstructure:"scoring"`
	Dedupe    DedupeConfig    `yaml:"dedupe" mapstructure:"dedupe"`
	Email     EmailConfig     `yaml:"email" mapstructure:"email"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the SQLite backend.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// AnthropicConfig holds labeling-oracle API settings.
type AnthropicConfig struct {
	Key             string `yaml:"key" mapstructure:"key"`
	Model           string `yaml:"model" mapstructure:"model"`
	MaxTokens       int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
	CallTimeoutSecs int    `yaml:"call_timeout_secs" mapstructure:"call_timeout_secs"`
}

// FeedsConfig configures RSS evidence collection.
type FeedsConfig struct {
	URLs            []string `yaml:"urls" mapstructure:"urls"`
	WindowDays      int      `yaml:"window_days" mapstructure:"window_days"`
	MaxPerFeed      int      `yaml:"max_per_feed" mapstructure:"max_per_feed"`
	FetchTimeout    int      `yaml:"fetch_timeout_secs" mapstructure:"fetch_timeout_secs"`
	FailureDisable  int      `yaml:"failure_disable_threshold" mapstructure:"failure_disable_threshold"`
	HealthStatePath string   `yaml:"health_state_path" mapstructure:"health_state_path"`
}

// JobsConfig configures job-posting collection via SerpAPI.
type JobsConfig struct {
	SerpAPIKey  string   `yaml:"serpapi_key" mapstructure:"serpapi_key"`
	Queries     []string `yaml:"queries" mapstructure:"queries"`
	MaxPerQuery int      `yaml:"max_per_query" mapstructure:"max_per_query"`
	MaxAgeDays  int      `yaml:"max_age_days" mapstructure:"max_age_days"`
	RatePerSec  float64  `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// ScoringConfig points at the keyword rule tables.
type ScoringConfig struct {
	// RulesPath is an optional YAML file overriding the built-in keyword
	// tables.
	RulesPath string `yaml:"rules_path" mapstructure:"rules_path"`
}

// DedupeConfig configures lead suppression windows.
type DedupeConfig struct {
	WindowDays int `yaml:"window_days" mapstructure:"window_days"`
}

// EmailConfig configures digest delivery over SMTP.
type EmailConfig struct {
	Enabled  bool     `yaml:"enabled" mapstructure:"enabled"`
	Host     string   `yaml:"host" mapstructure:"host"`
	Port     int      `yaml:"port" mapstructure:"port"`
	Username string   `yaml:"username" mapstructure:"username"`
	Password string   `yaml:"password" mapstructure:"password"`
	From     string   `yaml:"from" mapstructure:"from"`
	To       []string `yaml:"to" mapstructure:"to"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.path", "leadgen.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("anthropic.call_timeout_secs", 45)
	v.SetDefault("feeds.urls", []string{
		"https://www.insidehighered.com/rss.xml",
		"https://www.highereddive.com/feeds/news/",
		"https://edscoop.com/feed/",
		"https://campustechnology.com/rss-feeds/all-articles.aspx",
	})
	v.SetDefault("feeds.window_days", 7)
	v.SetDefault("feeds.max_per_feed", 25)
	v.SetDefault("feeds.fetch_timeout_secs", 20)
	v.SetDefault("feeds.failure_disable_threshold", 5)
	v.SetDefault("feeds.health_state_path", "feed_health.json")
	v.SetDefault("jobs.queries", []string{
		"university CIO",
		"higher education IT director",
		"university ERP implementation",
		"college cybersecurity director",
	})
	v.SetDefault("jobs.max_per_query", 10)
	v.SetDefault("jobs.max_age_days", 30)
	v.SetDefault("jobs.rate_per_sec", 1.0)
	v.SetDefault("dedupe.window_days", 180)
	v.SetDefault("email.port", 587)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
