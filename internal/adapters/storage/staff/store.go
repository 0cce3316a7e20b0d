package staff

import (
	"context"

	domain "gymbios/internal/domain/staff"
)

// Store persists Staff state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Staff, error)
	Save(ctx context.Context, value domain.Staff) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Staff, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ListFilter carries filtering parameters for List and Count.
type ListFilter struct {
	Limit  int
	Offset int
	Status string
	Role   string
	Search string
}

var _ Store = (*SQLiteStore)(nil)
