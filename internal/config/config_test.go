package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "https://www.doski.ru", cfg.Site.BaseURL)
	require.Equal(t, 2*time.Second, cfg.Crawler.FetchDelay)
	require.Equal(t, 3*time.Second, cfg.Render.SettleDelay)
	require.Equal(t, 5, cfg.Crawler.MaxCategoriesPerSession)
	require.True(t, cfg.Crawler.RespectRobots)
	require.False(t, cfg.Proxy.Enabled)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
site:
  base_url: https://boards.example.com
crawler:
  fetch_delay: 500ms
  max_categories_per_session: 2
proxy:
  enabled: true
  rotate: true
  list:
    - http://p1.example.com:8080
    - socks5://p2.example.com:1080
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://boards.example.com", cfg.Site.BaseURL)
	require.Equal(t, 500*time.Millisecond, cfg.Crawler.FetchDelay)
	require.Equal(t, 2, cfg.Crawler.MaxCategoriesPerSession)
	require.True(t, cfg.Proxy.Rotate)
	require.Len(t, cfg.Proxy.List, 2)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing base url",
			mutate:  func(c *Config) { c.Site.BaseURL = "" },
			wantErr: "site.base_url",
		},
		{
			name:    "relative base url",
			mutate:  func(c *Config) { c.Site.BaseURL = "www.doski.ru" },
			wantErr: "site.base_url",
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Crawler.Timeout = 0 },
			wantErr: "crawler.timeout",
		},
		{
			name:    "db enabled without dsn",
			mutate:  func(c *Config) { c.DB.Enabled = true },
			wantErr: "db.dsn",
		},
		{
			name:    "telegram enabled without token",
			mutate:  func(c *Config) { c.Telegram.Enabled = true },
			wantErr: "telegram.token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
