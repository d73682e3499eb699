package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogSink writes notifications to the structured log. It is the
// default destination when Telegram is not configured.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink returns a sink logging at info level.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Deliver implements Sink.
func (s *LogSink) Deliver(_ context.Context, msg Message) error {
	s.logger.Info("Notification", zap.String("text", msg.Text), zap.Bool("html", msg.HTML))
	return nil
}

// Close implements Sink.
func (s *LogSink) Close(context.Context) error { return nil }
