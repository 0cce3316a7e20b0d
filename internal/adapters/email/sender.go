// Package email delivers transactional mail (welcome notes, payslips) and
// renders their markdown bodies.
package email

import (
	"context"
	"errors"
	"strings"
	"time"

	"gymbios/internal/domain/outbox"
)

// SendRequest is one message handed to a provider.
type SendRequest struct {
	To      []string
	From    string // empty uses the sender default
	Subject string
	HTML    string
	ReplyTo string // empty uses the sender default
	Kind    string // welcome, payslip; for logs only
}

var (
	ErrNoRecipients = errors.New("email has no recipients")
	ErrNoSubject    = errors.New("email has no subject")
)

// FromPayload turns a stored outbox payload into a request.
func FromPayload(p outbox.EmailPayload) SendRequest {
	return SendRequest{To: p.To, Subject: p.Subject, HTML: p.HTML, Kind: p.Kind}
}

// Validate rejects requests no provider would accept.
func (r SendRequest) Validate() error {
	if len(r.To) == 0 || strings.TrimSpace(r.To[0]) == "" {
		return ErrNoRecipients
	}
	if strings.TrimSpace(r.Subject) == "" {
		return ErrNoSubject
	}
	return nil
}

// SendResult is the provider's acknowledgement.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers one message. Implementations must be safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}
