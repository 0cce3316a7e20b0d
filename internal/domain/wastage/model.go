package wastage

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"gymbios/internal/domain/dates"
	"gymbios/internal/domain/lineitem"
)

// Voucher types
const (
	TypeWastage = "wastage"
	TypeReturn  = "return"
)

// Domain errors
var (
	ErrInvalidType = errors.New("voucher type must be 'wastage' or 'return'")
	ErrEmptyReason = errors.New("reason cannot be empty")
	ErrInvalidDate = errors.New("voucher date must be YYYY-MM-DD")
)

// Voucher records stock written off (wastage) or sent back to a supplier (return).
type Voucher struct {
	ID          string          `json:"id"`
	VoucherNo   string          `json:"voucher_no"`
	Type        string          `json:"type"`
	Reason      string          `json:"reason"`
	Location    string          `json:"location"`
	VoucherDate string          `json:"voucher_date"`
	Items       []lineitem.Item `json:"products"`
	Total       decimal.Decimal `json:"total"`
	Notes       string          `json:"notes"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ComputeTotals recomputes the line subtotals and voucher total.
func (v *Voucher) ComputeTotals() {
	v.Items = lineitem.Normalize(v.Items)
	v.Total = lineitem.Total(v.Items)
}

// Validate checks if the Voucher has valid data.
// PRE: Voucher struct is populated
// POST: Returns nil if valid, error otherwise
func (v *Voucher) Validate() error {
	if v.Type != TypeWastage && v.Type != TypeReturn {
		return ErrInvalidType
	}
	if strings.TrimSpace(v.Reason) == "" {
		return ErrEmptyReason
	}
	if !dates.Valid(v.VoucherDate) {
		return ErrInvalidDate
	}
	return lineitem.Validate(v.Items)
}
