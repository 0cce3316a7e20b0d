package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/resend/resend-go/v2"
)

// ResendSender delivers through the Resend HTTP API.
type ResendSender struct {
	client  *resend.Client
	from    string
	replyTo string
	now     func() time.Time
}

// NewResendSender builds a sender with default From and Reply-To addresses.
// PRE: apiKey is a Resend key; from is a valid sender address
func NewResendSender(apiKey, from, replyTo string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey), from: from, replyTo: replyTo, now: time.Now}
}

// Send posts req to Resend.
// POST: on success the returned MessageID is Resend's email id
func (s *ResendSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	if err := req.Validate(); err != nil {
		return SendResult{}, fmt.Errorf("resend: %w", err)
	}
	sent, err := s.client.Emails.SendWithContext(ctx, s.params(req))
	if err != nil {
		slog.Error("email_provider", "provider", "resend", "event", "send_failed", "kind", req.Kind, "recipients", len(req.To), "error", err.Error())
		return SendResult{}, fmt.Errorf("resend: %w", err)
	}
	slog.Info("email_provider", "provider", "resend", "event", "sent", "kind", req.Kind, "recipients", len(req.To), "message_id", sent.Id)
	return SendResult{MessageID: sent.Id, SentAt: s.now()}, nil
}

func (s *ResendSender) params(req SendRequest) *resend.SendEmailRequest {
	p := &resend.SendEmailRequest{
		From:    orDefault(req.From, s.from),
		To:      req.To,
		Subject: req.Subject,
		Html:    req.HTML,
	}
	if rt := orDefault(req.ReplyTo, s.replyTo); rt != "" {
		p.ReplyTo = rt
	}
	return p
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
