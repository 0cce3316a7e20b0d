package salary

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
	ModeBank = "bank"
	ModeUPI  = "upi"
)

// Domain errors
var (
	ErrEmptyStaff        = errors.New("salary payment requires a staff member")
	ErrInvalidMonth      = errors.New("month must be YYYY-MM")
	ErrNegativeComponent = errors.New("salary components cannot be negative")
	ErrNegativeNet       = errors.New("deductions cannot exceed base salary plus bonus")
	ErrInvalidMode       = errors.New("payment mode must be cash, bank or upi")
)

// Payment is one month's salary paid to a staff member.
type Payment struct {
	ID          string          `json:"id"`
	StaffID     string          `json:"staff_id"`
	StaffName   string          `json:"staff_name"`
	Month       string          `json:"month"`
	BaseSalary  decimal.Decimal `json:"base_salary"`
	Bonus       decimal.Decimal `json:"bonus"`
	Deductions  decimal.Decimal `json:"deductions"`
	NetAmount   decimal.Decimal `json:"net_amount"`
	PaymentMode string          `json:"payment_mode"`
	PaidAt      time.Time       `json:"paid_at"`
	Notes       string          `json:"notes"`
}

// ComputeTotals derives the net amount.
// POST: NetAmount = BaseSalary + Bonus - Deductions
func (p *Payment) ComputeTotals() {
	p.NetAmount = p.BaseSalary.Add(p.Bonus).Sub(p.Deductions)
}

// Validate checks if the Payment has valid data.
// PRE: ComputeTotals has been called
// POST: Returns nil if valid, error otherwise
func (p *Payment) Validate() error {
	if strings.TrimSpace(p.StaffID) == "" {
		return ErrEmptyStaff
	}
	if _, err := time.Parse(dates.MonthLayout, p.Month); err != nil {
		return ErrInvalidMonth
	}
	if p.BaseSalary.IsNegative() || p.Bonus.IsNegative() || p.Deductions.IsNegative() {
		return ErrNegativeComponent
	}
	if p.NetAmount.IsNegative() {
		return ErrNegativeNet
	}
	switch p.PaymentMode {
	case ModeCash, ModeBank, ModeUPI:
	default:
		return ErrInvalidMode
	}
	return nil
}
