package email

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"
)

// NoopSender stands in for a provider when no API key is configured.
// Messages are logged and kept in memory; nothing leaves the process.
type NoopSender struct {
	mu   sync.Mutex
	sent []SendRequest
}

func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send applies the same validation as a real provider so that bad
// requests surface in development too.
// POST: on success req is retained and the id is "noop-<n>"
func (s *NoopSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	if err := req.Validate(); err != nil {
		return SendResult{}, err
	}
	s.mu.Lock()
	s.sent = append(s.sent, req)
	n := len(s.sent)
	s.mu.Unlock()

	slog.Info("email_provider", "provider", "noop", "event", "sent", "kind", req.Kind, "recipients", len(req.To), "subject", req.Subject)
	return SendResult{MessageID: "noop-" + strconv.Itoa(n), SentAt: time.Now()}, nil
}

// Sent returns a copy of what has been sent so far.
func (s *NoopSender) Sent() []SendRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SendRequest(nil), s.sent...)
}
