package purchase

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"gymbios/internal/domain/dates"
	"gymbios/internal/domain/lineitem"
)

// Domain errors
var (
	ErrEmptySupplier    = errors.New("supplier cannot be empty")
	ErrInvalidDate      = errors.New("purchase date must be YYYY-MM-DD")
	ErrInvalidTax       = errors.New("tax percent must be between 0 and 100")
	ErrNegativeDiscount = errors.New("discount cannot be negative")
	ErrNegativeTotal    = errors.New("discount cannot exceed subtotal plus tax")
)

var hundred = decimal.NewFromInt(100)

// Purchase is a completed stock purchase from a supplier.
type Purchase struct {
	ID              string          `json:"id"`
	InvoiceNo       string          `json:"invoice_no"`
	Supplier        string          `json:"supplier"`
	PurchaseDate    string          `json:"purchase_date"`
	Items           []lineitem.Item `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	TaxPercent      decimal.Decimal `json:"tax_percent"`
	Tax             decimal.Decimal `json:"tax"`
	Discount        decimal.Decimal `json:"discount"`
	Total           decimal.Decimal `json:"total"`
	PurchaseOrderID string          `json:"purchase_order_id,omitempty"`
	Notes           string          `json:"notes"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ComputeTotals derives subtotal, tax and total from the lines.
// POST: Subtotal = sum(items); Tax = Subtotal * TaxPercent / 100; Total = Subtotal + Tax - Discount
func (p *Purchase) ComputeTotals() {
	p.Items = lineitem.Normalize(p.Items)
	p.Subtotal = lineitem.Total(p.Items)
	p.Tax = p.Subtotal.Mul(p.TaxPercent).Div(hundred).Round(2)
	p.Total = p.Subtotal.Add(p.Tax).Sub(p.Discount)
}

// Validate checks if the Purchase has valid data.
// PRE: ComputeTotals has been called
// POST: Returns nil if valid, error otherwise
func (p *Purchase) Validate() error {
	if strings.TrimSpace(p.Supplier) == "" {
		return ErrEmptySupplier
	}
	if !dates.Valid(p.PurchaseDate) {
		return ErrInvalidDate
	}
	if p.TaxPercent.IsNegative() || p.TaxPercent.GreaterThan(hundred) {
		return ErrInvalidTax
	}
	if p.Discount.IsNegative() {
		return ErrNegativeDiscount
	}
	if err := lineitem.Validate(p.Items); err != nil {
		return err
	}
	if p.Total.IsNegative() {
		return ErrNegativeTotal
	}
	return nil
}
