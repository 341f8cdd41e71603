package authgate

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AuditEvent is a structured record of one authentication-relevant outcome.
type AuditEvent struct {
	EventID   string            `json:"event_id"`
	Timestamp time.Time         `json:"timestamp"`
	EventType string            `json:"event_type"`
	Username  string            `json:"username,omitempty"`
	IP        string            `json:"ip,omitempty"`
	UserAgent string            `json:"user_agent,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
// Emit is called from a single dispatcher goroutine; sinks do not need to be
// re-entrant but must not block indefinitely.
type AuditSink interface {
	Emit(ctx context.Context, event AuditEvent)
}

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, AuditEvent) {}

// ChannelSink is a buffered channel-based [AuditSink] for in-process consumers.
type ChannelSink struct {
	events chan AuditEvent
}

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan AuditEvent, buffer),
	}
}

func (s *ChannelSink) Emit(ctx context.Context, event AuditEvent) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

// Events returns the channel audit events are delivered on.
func (s *ChannelSink) Events() <-chan AuditEvent {
	return s.events
}

// JSONWriterSink is an [AuditSink] that writes newline-delimited JSON events
// to an [io.Writer].
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

func (s *JSONWriterSink) Emit(ctx context.Context, event AuditEvent) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}

func newAuditEvent(eventType string) AuditEvent {
	return AuditEvent{
		EventID:   uuid.NewString(),
		Timestamp: time.Now(),
		EventType: eventType,
	}
}
