package orchestrators

import (
	"context"
	"log/slog"
	"time"

	emailAdapter "gymbios/internal/adapters/email"
	"gymbios/internal/domain/outbox"
)

// Delivery outcomes reported by deliverEmail.
const (
	DeliverySent    = "sent"
	DeliveryQueued  = "queued"
	DeliveryFailed  = "failed"
	DeliverySkipped = "skipped"
)

// OutboxWriter stores emails that could not be sent right away.
type OutboxWriter interface {
	Save(ctx context.Context, e outbox.Entry) error
}

// NotifyDeps holds what a mutation needs to email someone.
// A nil Sender queues every email for the outbox worker.
type NotifyDeps struct {
	Sender     emailAdapter.Sender
	Outbox     OutboxWriter
	GenerateID func() string
	Now        func() time.Time
}

// deliverEmail sends immediately and falls back to the outbox on failure.
// Email problems never fail the calling mutation; the outcome is returned for logging and tests.
// POST: Returns DeliverySent, DeliveryQueued, DeliveryFailed or DeliverySkipped
func deliverEmail(ctx context.Context, deps NotifyDeps, p outbox.EmailPayload) string {
	if len(p.To) == 0 || p.To[0] == "" {
		return DeliverySkipped
	}
	if deps.Sender != nil {
		res, err := deps.Sender.Send(ctx, emailAdapter.FromPayload(p))
		if err == nil {
			slog.Info("email_event", "event", "email_sent", "kind", p.Kind, "message_id", res.MessageID)
			return DeliverySent
		}
		slog.Warn("email_event", "event", "email_send_failed", "kind", p.Kind, "error", err.Error())
	}
	if deps.Outbox == nil {
		return DeliveryFailed
	}
	entry, err := outbox.NewEmailEntry(deps.GenerateID(), p, deps.Now())
	if err == nil {
		err = deps.Outbox.Save(ctx, entry)
	}
	if err != nil {
		slog.Error("email_event", "event", "email_queue_failed", "kind", p.Kind, "error", err.Error())
		return DeliveryFailed
	}
	slog.Info("email_event", "event", "email_queued", "kind", p.Kind, "entry_id", entry.ID)
	return DeliveryQueued
}

// renderEmail builds an email payload from a markdown body.
func renderEmail(kind, to, subject, markdown string) (outbox.EmailPayload, error) {
	html, err := emailAdapter.RenderMarkdown(markdown)
	if err != nil {
		return outbox.EmailPayload{}, err
	}
	return outbox.EmailPayload{To: []string{to}, Subject: subject, HTML: html, Kind: kind}, nil
}
