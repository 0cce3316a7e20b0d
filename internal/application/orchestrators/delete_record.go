package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gymbios/internal/domain/audit"
)

// Deleter is implemented by every store that supports removal.
type Deleter interface {
	Delete(ctx context.Context, id string) error
}

// DeleteRecordInput names the record to remove.
type DeleteRecordInput struct {
	ResourceType string
	ID           string
	Category     audit.Category
	Actor        Actor
}

// DeleteRecordDeps holds dependencies for DeleteRecord.
type DeleteRecordDeps struct {
	Store Deleter
	Audit AuditRecorder
	Now   func() time.Time
}

// ExecuteDeleteRecord removes a record and audits the removal.
// Deleting purchases, vouchers and sales does not move stock; those records are history.
// PRE: ID is non-empty
// POST: Record removed or storage.ErrNotFound returned
func ExecuteDeleteRecord(ctx context.Context, input DeleteRecordInput, deps DeleteRecordDeps) error {
	if input.ID == "" {
		return invalid(errors.New("id is required"))
	}
	if err := deps.Store.Delete(ctx, input.ID); err != nil {
		return err
	}
	slog.Info("record_deleted", "resource_type", input.ResourceType, "id", input.ID)
	recordAudit(ctx, deps.Audit, input.Actor, deps.Now(), auditEntry{
		Category:     input.Category,
		Action:       audit.ActionDelete,
		ResourceType: input.ResourceType,
		ResourceID:   input.ID,
		Severity:     audit.SeverityWarning,
	})
	return nil
}
