package plan

import (
	"context"

	domain "gymbios/internal/domain/plan"
)

// Store persists membership plans.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Plan, error)
	Save(ctx context.Context, value domain.Plan) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, activeOnly bool) ([]domain.Plan, error)
}

var _ Store = (*SQLiteStore)(nil)
