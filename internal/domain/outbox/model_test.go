package outbox_test

import (
	"errors"
	"testing"
	"time"

	"gymbios/internal/domain/outbox"
)

// TestEntryLifecycle walks an email entry through attempts to failure and reset.
func TestEntryLifecycle(t *testing.T) {
	now := time.Date(2024, 10, 1, 9, 0, 0, 0, time.UTC)
	e, err := outbox.NewEmailEntry("ob-1", outbox.EmailPayload{
		To: []string{"asha@example.com"}, Subject: "Welcome", HTML: "<p>hi</p>", Kind: "welcome",
	}, now)
	if err != nil {
		t.Fatalf("NewEmailEntry: %v", err)
	}
	if err := e.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	p, err := e.DecodeEmail()
	if err != nil || p.Subject != "Welcome" || p.To[0] != "asha@example.com" {
		t.Fatalf("DecodeEmail = %+v, %v", p, err)
	}

	e.MaxAttempts = 2
	for i := 0; i < 2; i++ {
		if !e.CanRetry() {
			t.Fatalf("attempt %d: expected retryable", i)
		}
		e.MarkAttempt(now)
		e.MarkFailed(errors.New("smtp down"))
	}
	if e.Status != outbox.StatusFailed || !e.IsTerminal() || e.CanRetry() {
		t.Fatalf("expected terminal failure, got status=%s attempts=%d", e.Status, e.Attempts)
	}

	if err := e.ResetForRetry(); err != nil {
		t.Fatalf("ResetForRetry: %v", err)
	}
	if !e.CanRetry() || e.Attempts != 0 {
		t.Error("reset entry should be retryable")
	}

	e.MarkAttempt(now)
	e.MarkSuccess("msg-123")
	if !e.IsTerminal() || e.ExternalID != "msg-123" || e.ErrorMessage != "" {
		t.Errorf("after success: %+v", e)
	}
	if err := e.ResetForRetry(); !errors.Is(err, outbox.ErrNotRetryable) {
		t.Errorf("reset on done = %v", err)
	}
}

// TestBackoff verifies exponential delay and due calculation.
func TestBackoff(t *testing.T) {
	base, max := 30*time.Second, 10*time.Minute
	e := outbox.Entry{Attempts: 2}
	if got := e.NextRetryDelay(base, max); got != 2*time.Minute {
		t.Errorf("delay = %v, want 2m", got)
	}
	e.Attempts = 10
	if got := e.NextRetryDelay(base, max); got != max {
		t.Errorf("delay = %v, want cap", got)
	}

	last := time.Date(2024, 10, 1, 9, 0, 0, 0, time.UTC)
	e = outbox.Entry{Attempts: 1, LastAttemptedAt: last}
	if e.IsDue(last.Add(59*time.Second), base, max) {
		t.Error("should not be due before 60s")
	}
	if !e.IsDue(last.Add(60*time.Second), base, max) {
		t.Error("should be due at 60s")
	}
	if !(&outbox.Entry{}).IsDue(last, base, max) {
		t.Error("fresh entry should be due")
	}
}
