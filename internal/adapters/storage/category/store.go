package category

import (
	"context"

	domain "gymbios/internal/domain/category"
)

// Store persists product categories.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Category, error)
	Save(ctx context.Context, value domain.Category) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Category, error)
}

var _ Store = (*SQLiteStore)(nil)
