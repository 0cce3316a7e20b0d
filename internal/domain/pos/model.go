package pos

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"gymbios/internal/domain/lineitem"
)

// Payment modes accepted at the counter.
const (
	ModeCash = "cash"
	ModeCard = "card"
	ModeUPI  = "upi"
)

// Domain errors
var (
	ErrInvalidMode      = errors.New("payment mode must be cash, card or upi")
	ErrNegativeDiscount = errors.New("discount cannot be negative")
	ErrDiscountTooLarge = errors.New("discount cannot exceed subtotal")
	ErrUnlinkedItem     = errors.New("every sale line must reference a product")
)

// Sale is a counter sale of stocked products.
type Sale struct {
	ID           string          `json:"id"`
	ReceiptNo    string          `json:"receipt_no"`
	MemberID     string          `json:"member_id,omitempty"`
	CustomerName string          `json:"customer_name"`
	Items        []lineitem.Item `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Discount     decimal.Decimal `json:"discount"`
	Total        decimal.Decimal `json:"total"`
	PaymentMode  string          `json:"payment_mode"`
	SoldAt       time.Time       `json:"sold_at"`
}

// ComputeTotals derives subtotal and total from the lines.
// POST: Total = sum(items) - Discount
func (s *Sale) ComputeTotals() {
	s.Items = lineitem.Normalize(s.Items)
	s.Subtotal = lineitem.Total(s.Items)
	s.Total = s.Subtotal.Sub(s.Discount)
}

// Validate checks if the Sale has valid data.
// PRE: ComputeTotals has been called
func (s *Sale) Validate() error {
	if err := lineitem.Validate(s.Items); err != nil {
		return err
	}
	for _, it := range s.Items {
		if it.ProductID == "" {
			return ErrUnlinkedItem
		}
	}
	switch s.PaymentMode {
	case ModeCash, ModeCard, ModeUPI:
	default:
		return ErrInvalidMode
	}
	if s.Discount.IsNegative() {
		return ErrNegativeDiscount
	}
	if s.Discount.GreaterThan(s.Subtotal) {
		return ErrDiscountTooLarge
	}
	return nil
}
