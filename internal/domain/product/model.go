package product

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Domain errors
var (
	ErrEmptyName         = errors.New("product name cannot be empty")
	ErrNegativePrice     = errors.New("product prices cannot be negative")
	ErrNegativeStock     = errors.New("product stock cannot be negative")
	ErrNegativeReorder   = errors.New("reorder level cannot be negative")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Product is an item the gym stocks and sells (supplements, apparel, consumables).
type Product struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	CategoryID   string          `json:"category_id"`
	SKU          string          `json:"sku"`
	Unit         string          `json:"unit"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SalePrice    decimal.Decimal `json:"sale_price"`
	Stock        int             `json:"stock"`
	ReorderLevel int             `json:"reorder_level"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Validate checks if the Product has valid data.
// PRE: Product struct is populated
// POST: Returns nil if valid, error otherwise
// INVARIANT: Stock is never negative
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if p.CostPrice.IsNegative() || p.SalePrice.IsNegative() {
		return ErrNegativePrice
	}
	if p.Stock < 0 {
		return ErrNegativeStock
	}
	if p.ReorderLevel < 0 {
		return ErrNegativeReorder
	}
	return nil
}

// IsLowStock reports whether stock has fallen to or below the reorder level.
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.ReorderLevel
}

// StockValue is stock valued at cost price.
func (p *Product) StockValue() decimal.Decimal {
	return p.CostPrice.Mul(decimal.NewFromInt(int64(p.Stock)))
}
