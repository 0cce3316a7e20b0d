package projections

import (
	"context"

	billingStore "gymbios/internal/adapters/storage/billing"
	interestStore "gymbios/internal/adapters/storage/interest"
	memberStore "gymbios/internal/adapters/storage/member"
	productStore "gymbios/internal/adapters/storage/product"
	salaryStore "gymbios/internal/adapters/storage/salary"
	staffStore "gymbios/internal/adapters/storage/staff"
	streamStore "gymbios/internal/adapters/storage/stream"
	"gymbios/internal/domain/billing"
	"gymbios/internal/domain/category"
	"gymbios/internal/domain/member"
	"gymbios/internal/domain/plan"
	"gymbios/internal/domain/product"
	"gymbios/internal/domain/salary"
	"gymbios/internal/domain/staff"
	"gymbios/internal/domain/stream"
)

// MemberStore interface for member queries.
type MemberStore interface {
	List(ctx context.Context, filter memberStore.ListFilter) ([]member.Member, error)
	Count(ctx context.Context, filter memberStore.ListFilter) (int, error)
}

// BillStore interface for bill queries.
type BillStore interface {
	List(ctx context.Context, filter billingStore.ListFilter) ([]billing.Bill, error)
}

// PlanStore interface for plan queries.
type PlanStore interface {
	List(ctx context.Context, activeOnly bool) ([]plan.Plan, error)
}

// ProductStore interface for inventory queries.
type ProductStore interface {
	List(ctx context.Context, filter productStore.ListFilter) ([]product.Product, error)
	ListLowStock(ctx context.Context) ([]product.Product, error)
}

// CategoryStore interface for category queries.
type CategoryStore interface {
	List(ctx context.Context) ([]category.Category, error)
}

// StreamStore interface for stream queries.
type StreamStore interface {
	List(ctx context.Context, filter streamStore.ListFilter) ([]stream.Stream, error)
}

// InterestStore interface for lead queries.
type InterestStore interface {
	Count(ctx context.Context, filter interestStore.ListFilter) (int, error)
}

// StaffStore interface for staff queries.
type StaffStore interface {
	List(ctx context.Context, filter staffStore.ListFilter) ([]staff.Staff, error)
}

// SalaryStore interface for salary payment queries.
type SalaryStore interface {
	List(ctx context.Context, filter salaryStore.ListFilter) ([]salary.Payment, error)
	LastPaidMonths(ctx context.Context) (map[string]string, error)
}
