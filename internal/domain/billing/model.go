package billing

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"gymbios/internal/domain/dates"
)

// Payment modes
const (
	ModeCash = "cash"
	ModeCard = "card"
	ModeUPI  = "upi"
	ModeBank = "bank"
)

// Status constants, derived from the paid amount.
const (
	StatusPaid    = "paid"
	StatusPartial = "partial"
	StatusPending = "pending"
)

// Domain errors
var (
	ErrNoMember         = errors.New("bill needs a member id or member name")
	ErrNegativeAmount   = errors.New("amount cannot be negative")
	ErrNegativeDiscount = errors.New("discount cannot be negative")
	ErrDiscountTooLarge = errors.New("discount cannot exceed amount")
	ErrInvalidTax       = errors.New("tax percent must be between 0 and 100")
	ErrInvalidMode      = errors.New("payment mode must be cash, card, upi or bank")
	ErrInvalidDate      = errors.New("bill date must be YYYY-MM-DD")
	ErrOverpaid         = errors.New("paid amount cannot exceed total")
	ErrInvalidPayment   = errors.New("payment must be greater than zero")
)

var hundred = decimal.NewFromInt(100)

// Bill is a membership or service invoice raised against a member.
// MemberID may be empty for legacy bills that only carry the member's name.
type Bill struct {
	ID          string          `json:"id"`
	BillNo      string          `json:"bill_no"`
	MemberID    string          `json:"member_id"`
	MemberName  string          `json:"member_name"`
	PlanID      string          `json:"plan_id"`
	PlanName    string          `json:"plan_name"`
	Amount      decimal.Decimal `json:"amount"`
	Discount    decimal.Decimal `json:"discount"`
	TaxPercent  decimal.Decimal `json:"tax_percent"`
	Tax         decimal.Decimal `json:"tax"`
	Total       decimal.Decimal `json:"total"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
	PaymentMode string          `json:"payment_mode"`
	Status      string          `json:"status"`
	BillDate    string          `json:"bill_date"`
	Notes       string          `json:"notes"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ComputeTotals derives tax, total and status.
// POST: Tax = (Amount - Discount) * TaxPercent / 100; Total = Amount - Discount + Tax
func (b *Bill) ComputeTotals() {
	net := b.Amount.Sub(b.Discount)
	b.Tax = net.Mul(b.TaxPercent).Div(hundred).Round(2)
	b.Total = net.Add(b.Tax)
	b.Status = b.deriveStatus()
}

func (b *Bill) deriveStatus() string {
	switch {
	case b.PaidAmount.IsZero() && b.Total.IsPositive():
		return StatusPending
	case b.PaidAmount.LessThan(b.Total):
		return StatusPartial
	default:
		return StatusPaid
	}
}

// Validate checks if the Bill has valid data.
// PRE: ComputeTotals has been called
// POST: Returns nil if valid, error otherwise
func (b *Bill) Validate() error {
	if strings.TrimSpace(b.MemberID) == "" && strings.TrimSpace(b.MemberName) == "" {
		return ErrNoMember
	}
	if b.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	if b.Discount.IsNegative() {
		return ErrNegativeDiscount
	}
	if b.Discount.GreaterThan(b.Amount) {
		return ErrDiscountTooLarge
	}
	if b.TaxPercent.IsNegative() || b.TaxPercent.GreaterThan(hundred) {
		return ErrInvalidTax
	}
	switch b.PaymentMode {
	case ModeCash, ModeCard, ModeUPI, ModeBank:
	default:
		return ErrInvalidMode
	}
	if !dates.Valid(b.BillDate) {
		return ErrInvalidDate
	}
	if b.PaidAmount.IsNegative() || b.PaidAmount.GreaterThan(b.Total) {
		return ErrOverpaid
	}
	return nil
}

// RecordPayment adds a payment against the outstanding balance.
// PRE: amount > 0
// POST: PaidAmount increased, Status re-derived
func (b *Bill) RecordPayment(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidPayment
	}
	if b.PaidAmount.Add(amount).GreaterThan(b.Total) {
		return ErrOverpaid
	}
	b.PaidAmount = b.PaidAmount.Add(amount)
	b.Status = b.deriveStatus()
	return nil
}

// Balance is the amount still owed.
func (b *Bill) Balance() decimal.Decimal {
	return b.Total.Sub(b.PaidAmount)
}
