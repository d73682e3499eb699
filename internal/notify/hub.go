package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Config controls buffering for the Hub.
//   - BufferSize: size of the internal channel (default 256).
//   - SinkTimeout: per-sink timeout while delivering (default 10s).
//   - Logger: optional structured logger used for warnings.
type Config struct {
	BufferSize  int
	SinkTimeout time.Duration
	Logger      *zap.Logger
}

const (
	defaultBufferSize  = 256
	defaultSinkTimeout = 10 * time.Second
)

// Hub queues notification messages and fans them out to registered
// sinks in order. It is safe for concurrent use and never blocks
// callers; when the buffer is full messages are dropped with a warning.
type Hub struct {
	cfg      Config
	sinks    []Sink
	messages chan Message
	stopCh   chan struct{}
	doneCh   chan struct{}
	logger   *zap.Logger
	dropped  atomic.Int64
	closed   atomic.Bool

	closeOnce sync.Once
}

// NewHub initializes a Hub and starts the background delivery
// goroutine using the supplied sinks. The returned Hub is immediately
// ready to accept messages.
func NewHub(cfg Config, sinks ...Sink) *Hub {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = defaultBufferSize
	}
	if cfg.SinkTimeout <= 0 {
		cfg.SinkTimeout = defaultSinkTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		cfg:      cfg,
		sinks:    append([]Sink(nil), sinks...),
		messages: make(chan Message, cfg.BufferSize),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		logger:   logger,
	}
	go h.run()
	return h
}

// Send enqueues a plain-text notification.
func (h *Hub) Send(text string) {
	h.emit(Message{Text: text, At: time.Now().UTC()})
}

// SendHTML enqueues an HTML-formatted notification.
func (h *Hub) SendHTML(text string) {
	h.emit(Message{Text: text, HTML: true, At: time.Now().UTC()})
}

func (h *Hub) emit(msg Message) {
	if h == nil || h.closed.Load() || msg.Text == "" {
		return
	}
	select {
	case h.messages <- msg:
	default:
		if n := h.dropped.Add(1); n == 1 || n%100 == 0 {
			h.logger.Warn("Notifications dropped due to backpressure", zap.Int64("dropped", n))
		}
	}
}

// Close drains queued messages, closes sinks, and blocks until the
// background goroutine exits. Safe to call multiple times.
func (h *Hub) Close(ctx context.Context) error {
	if h == nil {
		return nil
	}
	h.closeOnce.Do(func() {
		h.closed.Store(true)
		close(h.stopCh)
	})
	select {
	case <-h.doneCh:
	case <-ctx.Done():
		return fmt.Errorf("notify hub close: %w", ctx.Err())
	}
	var errs []error
	for _, sink := range h.sinks {
		if err := sink.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *Hub) run() {
	defer close(h.doneCh)
	for {
		select {
		case msg := <-h.messages:
			h.deliver(msg)
		case <-h.stopCh:
			for {
				select {
				case msg := <-h.messages:
					h.deliver(msg)
				default:
					return
				}
			}
		}
	}
}

func (h *Hub) deliver(msg Message) {
	for _, sink := range h.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), h.cfg.SinkTimeout)
		if err := sink.Deliver(ctx, msg); err != nil {
			h.logger.Warn("Notification delivery failed", zap.Error(err))
		}
		cancel()
	}
}
