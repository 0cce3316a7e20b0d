package outbox

import (
	"context"

	domain "gymbios/internal/domain/outbox"
)

// Store defines outbox entry persistence.
type Store interface {
	// GetByID retrieves an outbox entry by its ID.
	// POST: Returns the entry or storage.ErrNotFound
	GetByID(ctx context.Context, id string) (domain.Entry, error)

	// Save persists an outbox entry (insert or update).
	// PRE: entry has been validated
	Save(ctx context.Context, e domain.Entry) error

	// ListPending returns entries waiting for delivery (pending or retrying).
	// PRE: limit > 0
	// POST: Returns up to limit entries, oldest first
	ListPending(ctx context.Context, limit int) ([]domain.Entry, error)

	// List returns entries in any state, newest first; status "" matches all.
	List(ctx context.Context, status string, limit int) ([]domain.Entry, error)

	// Delete removes an outbox entry.
	Delete(ctx context.Context, id string) error
}

var _ Store = (*SQLiteStore)(nil)
