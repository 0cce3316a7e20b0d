package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"gymbios/internal/domain/audit"
)

// Actor identifies who performed a mutation, for the audit trail.
type Actor struct {
	AccountID string
	Email     string
	Role      string
	IPAddress string
	UserAgent string
}

// AuditRecorder persists audit events.
type AuditRecorder interface {
	Save(ctx context.Context, event audit.Event) error
}

// auditEntry describes one mutation to record.
type auditEntry struct {
	Category     audit.Category
	Action       audit.Action
	ResourceType string
	ResourceID   string
	Description  string
	Severity     audit.Severity
}

// recordAudit appends an event to the trail. A nil recorder records nothing.
// Audit failures are logged and never fail the mutation that triggered them.
func recordAudit(ctx context.Context, rec AuditRecorder, actor Actor, now time.Time, e auditEntry) {
	if rec == nil {
		return
	}
	who := audit.Actor{ID: actor.AccountID, Email: actor.Email, Role: actor.Role, IPAddress: actor.IPAddress, UserAgent: actor.UserAgent}
	ev := audit.New(uuid.NewString(), now, who, e.Category, e.Action).On(e.ResourceType, e.ResourceID)
	ev.Description = e.Description
	if e.Severity != "" {
		ev = ev.Escalate(e.Severity)
	}
	if err := rec.Save(ctx, ev); err != nil {
		slog.Warn("audit_write_failed", "resource_type", e.ResourceType, "resource_id", e.ResourceID, "error", err.Error())
	}
}

// RecordExport notes a data export (a report download) on the audit trail.
func RecordExport(ctx context.Context, rec AuditRecorder, actor Actor, now time.Time, resourceType, description string) {
	recordAudit(ctx, rec, actor, now, auditEntry{
		Category:     audit.CategorySecurity,
		Action:       audit.ActionExport,
		ResourceType: resourceType,
		Description:  description,
	})
}
