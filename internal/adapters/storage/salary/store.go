package salary

import (
	"context"

	domain "gymbios/internal/domain/salary"
)

// Store persists salary payments.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Payment, error)

	// Save inserts a payment.
	// POST: storage.ErrDuplicate when the staff member is already paid for that month
	Save(ctx context.Context, value domain.Payment) error
	List(ctx context.Context, filter ListFilter) ([]domain.Payment, error)
	Count(ctx context.Context, filter ListFilter) (int, error)

	// LastPaidMonths maps staff ID to the latest month paid.
	LastPaidMonths(ctx context.Context) (map[string]string, error)
}

// ListFilter carries filtering parameters for List and Count.
type ListFilter struct {
	Limit   int
	Offset  int
	StaffID string
	Month   string
}

var _ Store = (*SQLiteStore)(nil)
