package pos

import (
	"context"

	domain "gymbios/internal/domain/pos"
)

// Store persists counter sales.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Sale, error)
	Save(ctx context.Context, value domain.Sale) error
	List(ctx context.Context, filter ListFilter) ([]domain.Sale, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ListFilter carries filtering parameters for List and Count.
type ListFilter struct {
	Limit    int
	Offset   int
	MemberID string
	Day      string // YYYY-MM-DD
}

var _ Store = (*SQLiteStore)(nil)
