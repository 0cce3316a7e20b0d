package wastage

import (
	"context"

	domain "gymbios/internal/domain/wastage"
)

// Store persists wastage and return vouchers.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Voucher, error)
	Save(ctx context.Context, value domain.Voucher) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Voucher, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ListFilter carries filtering parameters for List and Count.
type ListFilter struct {
	Limit  int
	Offset int
	Type   string
	Search string // voucher number or reason
}

var _ Store = (*SQLiteStore)(nil)
