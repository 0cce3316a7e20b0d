package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"gymbios/internal/adapters/storage"
	"gymbios/internal/domain/audit"
	"gymbios/internal/domain/dates"
	"gymbios/internal/domain/salary"
	"gymbios/internal/domain/staff"
)

// SalaryStoreForPay defines the store interface needed by PaySalary.
type SalaryStoreForPay interface {
	// Save inserts a payment; storage.ErrDuplicate when the month is already paid.
	Save(ctx context.Context, p salary.Payment) error
}

// PaySalaryInput carries one month's pay for one employee.
// A zero BaseSalary means the salary on the staff record.
type PaySalaryInput struct {
	StaffID     string
	Month       string
	BaseSalary  decimal.Decimal
	Bonus       decimal.Decimal
	Deductions  decimal.Decimal
	PaymentMode string
	Notes       string
	Actor       Actor
}

// PaySalaryDeps holds dependencies for PaySalary.
type PaySalaryDeps struct {
	SalaryStore SalaryStoreForPay
	StaffStore  StaffLookup
	Audit       AuditRecorder
	Notify      NotifyDeps
	GenerateID  func() string
	Now         func() time.Time
}

// ErrAlreadyPaid is returned for a second payment in the same month.
var ErrAlreadyPaid = errors.New("salary already paid for this month")

// ExecutePaySalary pays an employee for a month and emails the payslip.
// PRE: StaffID names an active employee
// POST: payment saved with NetAmount = base + bonus - deductions; payslip sent or queued
// INVARIANT: at most one payment per staff member per month
func ExecutePaySalary(ctx context.Context, input PaySalaryInput, deps PaySalaryDeps) (salary.Payment, error) {
	now := deps.Now()
	if input.StaffID == "" {
		return salary.Payment{}, invalid(salary.ErrEmptyStaff)
	}
	emp, err := deps.StaffStore.GetByID(ctx, input.StaffID)
	if err != nil {
		return salary.Payment{}, err
	}
	if !emp.IsActive() {
		return salary.Payment{}, invalid(fmt.Errorf("%s is not on the active payroll", emp.Name))
	}

	month := strings.TrimSpace(input.Month)
	if month == "" {
		month = now.Format(dates.MonthLayout)
	}
	base := input.BaseSalary
	if base.IsZero() {
		base = emp.Salary
	}
	p := salary.Payment{
		ID:          deps.GenerateID(),
		StaffID:     emp.ID,
		StaffName:   emp.Name,
		Month:       month,
		BaseSalary:  base,
		Bonus:       input.Bonus,
		Deductions:  input.Deductions,
		PaymentMode: input.PaymentMode,
		PaidAt:      now,
		Notes:       input.Notes,
	}
	if p.PaymentMode == "" {
		p.PaymentMode = salary.ModeBank
	}
	p.ComputeTotals()
	if err := p.Validate(); err != nil {
		return salary.Payment{}, invalid(err)
	}

	if err := deps.SalaryStore.Save(ctx, p); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return salary.Payment{}, conflict(ErrAlreadyPaid)
		}
		return salary.Payment{}, fmt.Errorf("save salary payment: %w", err)
	}

	slog.Info("salary_event", "event", "salary_paid", "staff_id", emp.ID, "month", p.Month, "net", p.NetAmount.String())
	recordAudit(ctx, deps.Audit, input.Actor, now, auditEntry{
		Category:     audit.CategoryStaff,
		Action:       audit.ActionPay,
		ResourceType: "salary_payment",
		ResourceID:   p.ID,
		Description:  emp.Name + " " + p.Month + " " + p.NetAmount.StringFixed(2),
	})

	if emp.Email != "" {
		sendPayslip(ctx, deps.Notify, emp, p)
	}
	return p, nil
}

func sendPayslip(ctx context.Context, deps NotifyDeps, emp staff.Staff, p salary.Payment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Payslip for %s\n\n", p.Month)
	fmt.Fprintf(&b, "Hi %s, your salary has been paid by %s.\n\n", emp.Name, p.PaymentMode)
	b.WriteString("| | Amount |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Base salary | %s |\n", p.BaseSalary.StringFixed(2))
	fmt.Fprintf(&b, "| Bonus | %s |\n", p.Bonus.StringFixed(2))
	fmt.Fprintf(&b, "| Deductions | %s |\n", p.Deductions.StringFixed(2))
	fmt.Fprintf(&b, "\n**Net paid: %s**\n", p.NetAmount.StringFixed(2))

	payload, err := renderEmail("payslip", emp.Email, "Payslip "+p.Month, b.String())
	if err != nil {
		slog.Error("email_event", "event", "email_render_failed", "kind", "payslip", "error", err.Error())
		return DeliveryFailed
	}
	return deliverEmail(ctx, deps, payload)
}
