package email

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// NoopSender accepts every message without delivering it. Used when no mail
// provider is configured; accepted messages are kept so they can be inspected.
type NoopSender struct {
	mu     sync.Mutex
	outbox []SendRequest
}

// NewNoopSender returns an empty NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send logs req and keeps it in the outbox.
func (s *NoopSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	id := "noop-" + uuid.NewString()

	s.mu.Lock()
	s.outbox = append(s.outbox, req)
	s.mu.Unlock()

	slog.Info("email_not_sent", "provider", "noop", "message_id", id, "to", req.To, "subject", req.Subject)
	return SendResult{MessageID: id, SentAt: time.Now()}, nil
}

// Outbox returns a copy of every accepted message, oldest first.
func (s *NoopSender) Outbox() []SendRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SendRequest(nil), s.outbox...)
}

// Verify always succeeds but warns that confirmations are not delivered.
func (s *NoopSender) Verify(_ context.Context) error {
	slog.Warn("email_not_configured", "provider", "noop")
	return nil
}
