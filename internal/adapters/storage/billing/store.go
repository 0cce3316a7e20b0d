package billing

import (
	"context"

	"github.com/shopspring/decimal"

	domain "gymbios/internal/domain/billing"
)

// Store persists membership bills.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Bill, error)
	Save(ctx context.Context, value domain.Bill) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Bill, error)
	Count(ctx context.Context, filter ListFilter) (int, error)

	// ApplyPayment is a compare-and-swap on the paid amount.
	ApplyPayment(ctx context.Context, b domain.Bill, prevPaid decimal.Decimal) error
}

// ListFilter carries filtering parameters for List and Count.
type ListFilter struct {
	Limit    int
	Offset   int
	MemberID string
	Status   string
	Month    string // YYYY-MM, matched against bill_date
	Search   string // bill number or member name
}

var _ Store = (*SQLiteStore)(nil)
