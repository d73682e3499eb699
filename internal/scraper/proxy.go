package scraper

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	xproxy "golang.org/x/net/proxy"
)

// ProxySettings captures the proxy pool configuration.
type ProxySettings struct {
	Enabled bool
	List    []string
	HTTP    string
	HTTPS   string
	SOCKS   string
	Rotate  bool
}

// ProxyRotator holds the ordered proxy pool, the current index, and the
// egress transport. All fetches go through Transport(); when no proxy
// is active the transport dials direct. The target site serves broken
// certificates, so TLS verification is disabled on every transport.
type ProxyRotator struct {
	mu        sync.Mutex
	proxies   []string
	index     int
	active    *url.URL
	transport *http.Transport
	logger    *zap.Logger
}

// NewProxyRotator populates the pool from configuration: an explicit
// list wins, otherwise the HTTP, HTTPS, and SOCKS entries are composed
// in that order. With proxying disabled the pool stays empty and all
// fetches go direct.
func NewProxyRotator(cfg ProxySettings, logger *zap.Logger) *ProxyRotator {
	r := &ProxyRotator{logger: logger}
	r.transport = directTransport()

	if !cfg.Enabled {
		logger.Info("Proxy disabled")
		return r
	}

	if len(cfg.List) > 0 {
		r.proxies = append(r.proxies, cfg.List...)
	} else {
		for _, p := range []string{cfg.HTTP, cfg.HTTPS, cfg.SOCKS} {
			if p != "" {
				r.proxies = append(r.proxies, p)
			}
		}
	}

	if len(r.proxies) == 0 {
		logger.Warn("Proxy enabled but no proxy URLs provided")
		return r
	}

	if err := r.Activate(r.proxies[0]); err != nil {
		logger.Error("Failed to activate initial proxy", zap.String("proxy", r.proxies[0]), zap.Error(err))
	}
	logger.Info("Proxy configured", zap.Int("count", len(r.proxies)))
	return r
}

// Size returns the number of proxies in the pool.
func (r *ProxyRotator) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.proxies)
}

// Active returns the currently active proxy URL, or "" when fetches go
// direct.
func (r *ProxyRotator) Active() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == nil {
		return ""
	}
	return r.active.String()
}

// Transport returns the egress transport for the active proxy.
func (r *ProxyRotator) Transport() *http.Transport {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.transport
}

// Activate installs the proxy as the current egress. SOCKS proxies need
// a SOCKS-capable dialer; when the scheme is unsupported the previous
// proxy (or direct connection) stays in effect.
func (r *ProxyRotator) Activate(rawProxy string) error {
	u, err := url.Parse(rawProxy)
	if err != nil {
		return fmt.Errorf("parse proxy url %s: %w", rawProxy, err)
	}

	t := directTransport()
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		t.Proxy = http.ProxyURL(u)
	case "socks5", "socks5h":
		dialer, err := xproxy.FromURL(u, xproxy.Direct)
		if err != nil {
			return fmt.Errorf("socks proxy %s: %w", rawProxy, err)
		}
		ctxDialer, ok := dialer.(xproxy.ContextDialer)
		if !ok {
			return fmt.Errorf("socks proxy %s: dialer lacks context support", rawProxy)
		}
		t.DialContext = ctxDialer.DialContext
	default:
		return fmt.Errorf("unsupported proxy scheme %q in %s", u.Scheme, rawProxy)
	}

	r.mu.Lock()
	r.active = u
	r.transport = t
	r.mu.Unlock()

	r.logger.Info("Proxy set", zap.String("proxy", u.Redacted()), zap.String("scheme", u.Scheme))
	return nil
}

// Rotate advances the pool index circularly and activates the new
// entry. It is a no-op returning false when the pool has fewer than two
// entries or activation fails.
func (r *ProxyRotator) Rotate() bool {
	r.mu.Lock()
	if len(r.proxies) <= 1 {
		r.mu.Unlock()
		return false
	}
	r.index = (r.index + 1) % len(r.proxies)
	next := r.proxies[r.index]
	position, total := r.index+1, len(r.proxies)
	r.mu.Unlock()

	if err := r.Activate(next); err != nil {
		r.logger.Error("Failed to activate proxy", zap.String("proxy", next), zap.Error(err))
		return false
	}
	r.logger.Info("Rotated proxy", zap.Int("position", position), zap.Int("total", total))
	return true
}

// Suspend clears the active proxy so fetches go direct, returning the
// previous proxy URL for a later Restore.
func (r *ProxyRotator) Suspend() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := ""
	if r.active != nil {
		prev = r.active.String()
	}
	r.active = nil
	r.transport = directTransport()
	return prev
}

// Restore re-activates a proxy previously returned by Suspend.
func (r *ProxyRotator) Restore(prev string) {
	if prev == "" {
		return
	}
	if err := r.Activate(prev); err != nil {
		r.logger.Error("Failed to restore proxy", zap.String("proxy", prev), zap.Error(err))
	}
}

func directTransport() *http.Transport {
	return &http.Transport{
		// The target site presents an invalid certificate chain.
		TLSClientConfig:       &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
		MaxIdleConns:          16,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ForceAttemptHTTP2:     true,
		ResponseHeaderTimeout: 30 * time.Second,
	}
}
