package member

import (
	"context"

	domain "gymbios/internal/domain/member"
)

// Store persists Member state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Member, error)
	Save(ctx context.Context, value domain.Member) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Member, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ListFilter carries filtering parameters for List and Count.
type ListFilter struct {
	Limit   int
	Offset  int
	Status  string
	PlanID  string
	Search  string // name, email or phone substring
	Sort    string // name, join_date, expiry_date, status
	SortDir string // asc, desc
}

var _ Store = (*SQLiteStore)(nil)
