package notify

import (
	"context"
	"time"
)

// Message is a single notification. HTML marks Telegram-style HTML
// formatting; plain sinks may ignore it.
type Message struct {
	Text string
	HTML bool
	At   time.Time
}

// Sink delivers messages to one destination. Implementations must be
// safe for repeated calls and honor ctx deadlines.
type Sink interface {
	Deliver(ctx context.Context, msg Message) error
	Close(ctx context.Context) error
}
