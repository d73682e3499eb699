package notify

import (
	"context"
	"sync"
)

// RecordingSink captures delivered messages for assertions in tests.
type RecordingSink struct {
	mu       sync.Mutex
	messages []Message
}

// NewRecordingSink returns an empty recording sink.
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

// Deliver implements Sink.
func (s *RecordingSink) Deliver(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	return nil
}

// Close implements Sink.
func (s *RecordingSink) Close(context.Context) error { return nil }

// Messages returns a copy of everything delivered so far.
func (s *RecordingSink) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.messages...)
}
