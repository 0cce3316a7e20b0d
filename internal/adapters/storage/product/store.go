package product

import (
	"context"

	domain "gymbios/internal/domain/product"
)

// Store persists products and their stock levels.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Product, error)
	Save(ctx context.Context, value domain.Product) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Product, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
	ListLowStock(ctx context.Context) ([]domain.Product, error)

	// ApplyMovements adds each delta (negative to remove) to its product's stock.
	// POST: either every delta is applied or none is; domain.ErrInsufficientStock
	// if any stock would go below zero
	ApplyMovements(ctx context.Context, deltas map[string]int) error
}

// ListFilter carries filtering parameters for List and Count.
type ListFilter struct {
	Limit      int
	Offset     int
	CategoryID string
	Search     string // name or sku
	InStock    bool
}

var _ Store = (*SQLiteStore)(nil)
