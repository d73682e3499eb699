package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/boardwatch/doski-crawler/internal/config"
)

func baseConfig() config.Config {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}
	cfg.Logging.Development = false
	return cfg
}

func TestNewAppWithDefaults(t *testing.T) {
	a, err := New(context.Background(), baseConfig())
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.Logger())
	require.NotNil(t, a.Store())
	require.NotNil(t, a.Notifier())

	// Memory store starts empty.
	count, err := a.Store().TotalCount(context.Background())
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestNewAppTelegramFailureIsFatal(t *testing.T) {
	cfg := baseConfig()
	cfg.Telegram.Enabled = true
	cfg.Telegram.Token = "not-a-real-token"
	cfg.Telegram.ChatID = 1

	_, err := New(context.Background(), cfg)
	require.Error(t, err)
}
