package interest

import (
	"context"

	domain "gymbios/internal/domain/interest"
)

// Store persists prospective-member leads.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Interest, error)
	Save(ctx context.Context, value domain.Interest) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Interest, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ListFilter carries filtering parameters for List and Count.
type ListFilter struct {
	Limit  int
	Offset int
	Status string
	Search string
}

var _ Store = (*SQLiteStore)(nil)
