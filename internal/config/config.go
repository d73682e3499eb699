// Package config loads and validates crawler configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Site     SiteConfig     `mapstructure:"site"`
	Crawler  CrawlerConfig  `mapstructure:"crawler"`
	Render   RenderConfig   `mapstructure:"render"`
	Proxy    ProxyConfig    `mapstructure:"proxy"`
	DB       DBConfig       `mapstructure:"db"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// SiteConfig identifies the target classifieds site.
type SiteConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// CrawlerConfig governs the fetch pipeline behavior.
type CrawlerConfig struct {
	UserAgent               string        `mapstructure:"user_agent"`
	Timeout                 time.Duration `mapstructure:"timeout"`
	FetchDelay              time.Duration `mapstructure:"fetch_delay"`
	CategoryDelay           time.Duration `mapstructure:"category_delay"`
	MaxCategoriesPerSession int           `mapstructure:"max_categories_per_session"`
	RespectRobots           bool          `mapstructure:"respect_robots"`
	DebugDump               bool          `mapstructure:"debug_dump"`
	DebugDumpDir            string        `mapstructure:"debug_dump_dir"`
}

// RenderConfig configures the headless rendering subsystem.
type RenderConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Timeout     time.Duration `mapstructure:"timeout"`
	SettleDelay time.Duration `mapstructure:"settle_delay"`
}

// ProxyConfig configures the egress proxy pool.
type ProxyConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	List    []string `mapstructure:"list"`
	HTTP    string   `mapstructure:"http"`
	HTTPS   string   `mapstructure:"https"`
	SOCKS   string   `mapstructure:"socks"`
	Rotate  bool     `mapstructure:"rotate"`
}

// DBConfig controls access to the relational database.
type DBConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

// TelegramConfig holds the notification channel credentials.
type TelegramConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Token   string `mapstructure:"token"`
	ChatID  int64  `mapstructure:"chat_id"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DOSKI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("site.base_url", "https://www.doski.ru")
	v.SetDefault("crawler.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	v.SetDefault("crawler.timeout", "10s")
	v.SetDefault("crawler.fetch_delay", "2s")
	v.SetDefault("crawler.category_delay", "5s")
	v.SetDefault("crawler.max_categories_per_session", 5)
	v.SetDefault("crawler.respect_robots", true)
	v.SetDefault("crawler.debug_dump", false)
	v.SetDefault("crawler.debug_dump_dir", "data/debug")
	v.SetDefault("render.enabled", true)
	v.SetDefault("render.timeout", "20s")
	v.SetDefault("render.settle_delay", "3s")
	v.SetDefault("proxy.enabled", false)
	v.SetDefault("proxy.rotate", false)
	v.SetDefault("db.enabled", false)
	v.SetDefault("telegram.enabled", false)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", ":9090")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Site.BaseURL == "" {
		return fmt.Errorf("site.base_url must be set")
	}
	if !strings.HasPrefix(c.Site.BaseURL, "http://") && !strings.HasPrefix(c.Site.BaseURL, "https://") {
		return fmt.Errorf("site.base_url must be an absolute http(s) URL")
	}
	if c.Crawler.UserAgent == "" {
		return fmt.Errorf("crawler.user_agent must be set")
	}
	if c.Crawler.Timeout <= 0 {
		return fmt.Errorf("crawler.timeout must be > 0")
	}
	if c.Crawler.FetchDelay < 0 {
		return fmt.Errorf("crawler.fetch_delay must be >= 0")
	}
	if c.Crawler.MaxCategoriesPerSession <= 0 {
		return fmt.Errorf("crawler.max_categories_per_session must be > 0")
	}
	if c.Render.Enabled && c.Render.Timeout <= 0 {
		return fmt.Errorf("render.timeout must be > 0 when rendering is enabled")
	}
	if c.DB.Enabled && c.DB.DSN == "" {
		return fmt.Errorf("db.dsn must be set when db is enabled")
	}
	if c.Telegram.Enabled && (c.Telegram.Token == "" || c.Telegram.ChatID == 0) {
		return fmt.Errorf("telegram.token and telegram.chat_id must be set when telegram is enabled")
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr must be set when metrics are enabled")
	}
	return nil
}
