package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRobotsGateEnforcesDisallow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/robots.txt", r.URL.Path)
		_, _ = w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
	}))
	defer srv.Close()

	gate := NewRobotsGate(context.Background(), true, srv.URL, "test-agent", zap.NewNop())
	require.True(t, gate.Allowed(srv.URL+"/listings/"))
	require.False(t, gate.Allowed(srv.URL+"/private/page"))
}

func TestRobotsGatePermitsAllOnLoadFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	srv.Close() // connection refused from here on

	gate := NewRobotsGate(context.Background(), true, srv.URL, "test-agent", zap.NewNop())
	require.True(t, gate.Allowed(srv.URL+"/anything"))
}

func TestRobotsGateDisabledAllowsEverything(t *testing.T) {
	gate := NewRobotsGate(context.Background(), false, "https://unreachable.invalid", "test-agent", zap.NewNop())
	require.True(t, gate.Allowed("https://unreachable.invalid/whatever"))
}

func TestRobotsGateUsesSpecificAgentGroup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("User-agent: *\nDisallow:\n\nUser-agent: strict-bot\nDisallow: /\n"))
	}))
	defer srv.Close()

	gate := NewRobotsGate(context.Background(), true, srv.URL, "strict-bot", zap.NewNop())
	require.False(t, gate.Allowed(srv.URL+"/listings/"))
}
