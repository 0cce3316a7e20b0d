package purchase

import (
	"context"

	domain "gymbios/internal/domain/purchase"
)

// Store persists completed purchases.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Purchase, error)
	Save(ctx context.Context, value domain.Purchase) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Purchase, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ListFilter carries filtering parameters for List and Count.
type ListFilter struct {
	Limit    int
	Offset   int
	Search   string // invoice number or supplier
	FromDate string
	ToDate   string
}

var _ Store = (*SQLiteStore)(nil)
