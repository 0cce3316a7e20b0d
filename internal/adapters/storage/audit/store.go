package audit

import (
	"context"

	domain "gymbios/internal/domain/audit"
)

// Store is the append-only audit trail. Events are never updated or deleted.
type Store interface {
	// Save appends e.
	// PRE: e.Validate() == nil
	Save(ctx context.Context, e domain.Event) error
	// List returns at most limit events matching f, newest first.
	List(ctx context.Context, f Filter, limit int) ([]domain.Event, error)
	GetByID(ctx context.Context, id string) (domain.Event, error)
}

// Filter narrows List. Zero fields match everything.
type Filter struct {
	Category     domain.Category
	Action       domain.Action
	MinSeverity  domain.Severity
	ActorID      string
	ResourceType string
	ResourceID   string
	FromDate     string // YYYY-MM-DD, inclusive
	ToDate       string // YYYY-MM-DD, inclusive
}

var _ Store = (*SQLiteStore)(nil)
