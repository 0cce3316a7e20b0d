package purchaseorder

import (
	"context"

	domain "gymbios/internal/domain/purchaseorder"
)

// Store persists purchase orders.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.PurchaseOrder, error)
	Save(ctx context.Context, value domain.PurchaseOrder) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.PurchaseOrder, error)
	Count(ctx context.Context, filter ListFilter) (int, error)

	// ClaimReceipt atomically marks an open order received.
	ClaimReceipt(ctx context.Context, id, purchaseID string) error
	// ReleaseReceipt reverts a claim whose purchase failed.
	ReleaseReceipt(ctx context.Context, id, purchaseID, status string) error
}

// ListFilter carries filtering parameters for List and Count.
type ListFilter struct {
	Limit  int
	Offset int
	Status string
	Search string // po number or supplier
}

var _ Store = (*SQLiteStore)(nil)
