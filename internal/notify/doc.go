// Package notify provides the non-blocking notification hub the crawl
// pipeline reports through. Messages are queued on a background
// goroutine and fanned out to pluggable sinks such as Telegram or the
// structured log; the pipeline never waits on delivery.
package notify
