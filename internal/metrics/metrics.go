// Package metrics exposes Prometheus collectors for the crawler.
package metrics

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	fetchesTotal         *prometheus.CounterVec
	proxyRotationsTotal  prometheus.Counter
	rendersTotal         *prometheus.CounterVec
	listingsTotal        *prometheus.CounterVec
	categoriesTotal      *prometheus.CounterVec
	fetchDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		fetchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_fetches_total",
				Help: "Total number of fetch attempts, labeled by site and outcome.",
			},
			[]string{"site", "outcome"},
		)

		proxyRotationsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "crawler_proxy_rotations_total",
				Help: "Total number of proxy rotations triggered by transport faults.",
			},
		)

		rendersTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_renders_total",
				Help: "Total number of headless render calls, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		listingsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_listings_total",
				Help: "Total number of listings extracted, labeled by site.",
			},
			[]string{"site"},
		)

		categoriesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_categories_total",
				Help: "Total number of categories processed, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		fetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crawler_fetch_duration_seconds",
				Help:    "Histogram of fetch latencies, labeled by site.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"site"},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveFetch records one fetch attempt and its latency.
func ObserveFetch(site, outcome string, duration time.Duration) {
	Init()
	sanitized := SanitizeSite(site)
	fetchesTotal.WithLabelValues(sanitized, outcome).Inc()
	fetchDurationSeconds.WithLabelValues(sanitized).Observe(duration.Seconds())
}

// ObserveProxyRotation increments the rotation counter.
func ObserveProxyRotation() {
	Init()
	proxyRotationsTotal.Inc()
}

// ObserveRender records one headless render call.
func ObserveRender(outcome string) {
	Init()
	rendersTotal.WithLabelValues(outcome).Inc()
}

// ObserveListings adds extracted listings to the counter.
func ObserveListings(site string, count int) {
	Init()
	if count > 0 {
		listingsTotal.WithLabelValues(SanitizeSite(site)).Add(float64(count))
	}
}

// ObserveCategory increments the category counter for the given outcome.
func ObserveCategory(outcome string) {
	Init()
	categoriesTotal.WithLabelValues(outcome).Inc()
}
