package cmd

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/boardwatch/doski-crawler/internal/config"
	"github.com/boardwatch/doski-crawler/internal/notify"
	"github.com/boardwatch/doski-crawler/internal/scraper"
	"github.com/boardwatch/doski-crawler/internal/storage"
)

type stubApp struct {
	cfg    config.Config
	logger *zap.Logger
	store  storage.Store
	hub    *notify.Hub
}

func (a *stubApp) Close()                { _ = a.hub.Close(context.Background()) }
func (a *stubApp) Config() config.Config { return a.cfg }
func (a *stubApp) Logger() *zap.Logger   { return a.logger }
func (a *stubApp) Store() storage.Store  { return a.store }
func (a *stubApp) Notifier() *notify.Hub { return a.hub }

func withStubApp(t *testing.T, store storage.Store) {
	t.Helper()
	orig := newApp
	t.Cleanup(func() { newApp = orig })
	newApp = func(_ context.Context, cfg config.Config) (App, error) {
		return &stubApp{
			cfg:    cfg,
			logger: zap.NewNop(),
			store:  store,
			hub:    notify.NewHub(notify.Config{}, notify.NewRecordingSink()),
		}, nil
	}
}

func TestStatsCommandPrintsTotals(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.SaveListing(context.Background(), scraper.Listing{
		ID:       "prodam-divan-12345",
		Title:    "Продам диван",
		ParsedAt: time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
	}))
	withStubApp(t, store)

	root := newRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs([]string{"stats"})

	require.NoError(t, root.Execute())
	require.Contains(t, buf.String(), "Total listings: 1")
	require.Contains(t, buf.String(), "2026-08-20")
}

func TestStatsCommandEmptyStore(t *testing.T) {
	withStubApp(t, storage.NewMemoryStore())

	root := newRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs([]string{"stats"})

	require.NoError(t, root.Execute())
	require.Contains(t, buf.String(), "Total listings: 0")
	require.Contains(t, buf.String(), "never")
}
