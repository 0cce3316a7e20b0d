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
	"gymbios/internal/domain/billing"
	"gymbios/internal/domain/dates"
	"gymbios/internal/domain/member"
)

// BillStore defines the store interface needed by the billing orchestrators.
type BillStore interface {
	GetByID(ctx context.Context, id string) (billing.Bill, error)
	Save(ctx context.Context, b billing.Bill) error
	ApplyPayment(ctx context.Context, b billing.Bill, prevPaid decimal.Decimal) error
}

// paymentAttempts bounds the re-reads when concurrent payments race on one bill.
const paymentAttempts = 3

// MemberStoreForBilling looks up and renews the billed member.
type MemberStoreForBilling interface {
	GetByID(ctx context.Context, id string) (member.Member, error)
	Save(ctx context.Context, m member.Member) error
}

// SaveBillInput carries input for raising (empty ID) or correcting a bill.
type SaveBillInput struct {
	Bill  billing.Bill
	Actor Actor
}

// BillingDeps holds dependencies for the billing orchestrators.
type BillingDeps struct {
	BillStore   BillStore
	MemberStore MemberStoreForBilling
	PlanStore   PlanLookup
	Audit       AuditRecorder
	GenerateID  func() string
	Now         func() time.Time
}

// ExecuteCreateBill raises a bill against a member.
// Member and plan names are filled from their records; when the bill is for a plan
// the member's expiry is extended by the plan duration from the later of today
// and the current expiry, and the member becomes active.
// PRE: MemberID or MemberName set
// POST: Tax, Total and Status derived server-side
func ExecuteCreateBill(ctx context.Context, input SaveBillInput, deps BillingDeps) (billing.Bill, error) {
	now := deps.Now()
	b := input.Bill
	b.ID = deps.GenerateID()
	b.CreatedAt = now
	if strings.TrimSpace(b.BillNo) == "" {
		b.BillNo = documentNumber("BILL", now, b.ID)
	}
	if b.BillDate == "" {
		b.BillDate = dates.Today(now)
	}
	if b.PaymentMode == "" {
		b.PaymentMode = billing.ModeCash
	}

	var m member.Member
	if b.MemberID != "" {
		var err error
		m, err = deps.MemberStore.GetByID(ctx, b.MemberID)
		if err != nil {
			return billing.Bill{}, invalid(fmt.Errorf("member %s: %w", b.MemberID, err))
		}
		b.MemberName = m.Name
		if b.PlanID == "" {
			b.PlanID = m.PlanID
		}
	}

	months := 0
	if b.PlanID != "" {
		p, err := deps.PlanStore.GetByID(ctx, b.PlanID)
		if err != nil {
			return billing.Bill{}, invalid(fmt.Errorf("plan %s: %w", b.PlanID, err))
		}
		b.PlanName = p.Name
		if b.Amount.IsZero() {
			b.Amount = p.Price
		}
		months = p.DurationMonths
	}

	b.ComputeTotals()
	if err := b.Validate(); err != nil {
		return billing.Bill{}, invalid(err)
	}
	if err := deps.BillStore.Save(ctx, b); err != nil {
		return billing.Bill{}, fmt.Errorf("save bill: %w", err)
	}

	if m.ID != "" && months > 0 {
		// The bill stands even when the renewal cannot be written.
		if err := renewMember(ctx, deps.MemberStore, m, b, now, months); err != nil {
			slog.Error("billing_event", "event", "member_renewal_failed", "member_id", m.ID, "bill_id", b.ID, "error", err.Error())
		}
	}

	slog.Info("billing_event", "event", "bill_created", "bill_id", b.ID, "member_id", b.MemberID, "total", b.Total.String(), "status", b.Status)
	recordAudit(ctx, deps.Audit, input.Actor, now, auditEntry{
		Category:     audit.CategoryBilling,
		Action:       audit.ActionCreate,
		ResourceType: "bill",
		ResourceID:   b.ID,
		Description:  b.BillNo + " " + b.MemberName + " " + b.Total.StringFixed(2),
	})
	return b, nil
}

// renewMember records the billed plan on the member and extends its expiry.
func renewMember(ctx context.Context, store MemberStoreForBilling, m member.Member, b billing.Bill, now time.Time, months int) error {
	m.PlanID = b.PlanID
	m.MembershipPlan = b.PlanName
	if err := m.Renew(now, months); err != nil {
		return fmt.Errorf("renew member: %w", err)
	}
	if err := store.Save(ctx, m); err != nil {
		return fmt.Errorf("save member: %w", err)
	}
	return nil
}

// ExecuteUpdateBill corrects an existing bill's amounts and details.
// The member link, bill number and creation time are kept; renewal is not repeated.
// POST: totals and status re-derived
func ExecuteUpdateBill(ctx context.Context, input SaveBillInput, deps BillingDeps) (billing.Bill, error) {
	existing, err := deps.BillStore.GetByID(ctx, input.Bill.ID)
	if err != nil {
		return billing.Bill{}, err
	}
	b := input.Bill
	b.BillNo = existing.BillNo
	b.CreatedAt = existing.CreatedAt
	b.MemberID = existing.MemberID
	if existing.MemberID != "" {
		b.MemberName = existing.MemberName
	}
	if b.PlanID == "" {
		b.PlanID, b.PlanName = existing.PlanID, existing.PlanName
	} else if b.PlanID != existing.PlanID && deps.PlanStore != nil {
		p, err := deps.PlanStore.GetByID(ctx, b.PlanID)
		if err != nil {
			return billing.Bill{}, invalid(fmt.Errorf("plan %s: %w", b.PlanID, err))
		}
		b.PlanName = p.Name
	} else {
		b.PlanName = existing.PlanName
	}
	if b.BillDate == "" {
		b.BillDate = existing.BillDate
	}
	if b.PaymentMode == "" {
		b.PaymentMode = existing.PaymentMode
	}

	b.ComputeTotals()
	if err := b.Validate(); err != nil {
		return billing.Bill{}, invalid(err)
	}
	if err := deps.BillStore.Save(ctx, b); err != nil {
		return billing.Bill{}, fmt.Errorf("save bill: %w", err)
	}
	recordAudit(ctx, deps.Audit, input.Actor, deps.Now(), auditEntry{
		Category:     audit.CategoryBilling,
		Action:       audit.ActionUpdate,
		ResourceType: "bill",
		ResourceID:   b.ID,
		Description:  b.BillNo,
	})
	return b, nil
}

// RecordBillPaymentInput carries a payment against a bill.
type RecordBillPaymentInput struct {
	BillID      string
	Amount      decimal.Decimal
	PaymentMode string
	Actor       Actor
}

// ExecuteRecordBillPayment adds a payment to a bill. The write is conditional on the
// paid amount it was computed from; a concurrent payment forces a re-read, so the
// overpayment check always sees every earlier payment.
// PRE: Amount > 0 and no more than the outstanding balance
// POST: PaidAmount increased and Status re-derived
func ExecuteRecordBillPayment(ctx context.Context, input RecordBillPaymentInput, deps BillingDeps) (billing.Bill, error) {
	var b billing.Bill
	for attempt := 1; ; attempt++ {
		var err error
		b, err = deps.BillStore.GetByID(ctx, input.BillID)
		if err != nil {
			return billing.Bill{}, err
		}
		prevPaid := b.PaidAmount
		if err := b.RecordPayment(input.Amount); err != nil {
			if errors.Is(err, billing.ErrOverpaid) {
				return billing.Bill{}, conflict(err)
			}
			return billing.Bill{}, invalid(err)
		}
		if input.PaymentMode != "" {
			b.PaymentMode = input.PaymentMode
			if err := b.Validate(); err != nil {
				return billing.Bill{}, invalid(err)
			}
		}
		err = deps.BillStore.ApplyPayment(ctx, b, prevPaid)
		if err == nil {
			break
		}
		if !errors.Is(err, storage.ErrStale) {
			return billing.Bill{}, fmt.Errorf("save bill payment: %w", err)
		}
		if attempt == paymentAttempts {
			return billing.Bill{}, conflict(err)
		}
		slog.Warn("billing_event", "event", "bill_payment_retry", "bill_id", input.BillID, "attempt", attempt)
	}

	slog.Info("billing_event", "event", "bill_payment", "bill_id", b.ID, "amount", input.Amount.String(), "status", b.Status)
	recordAudit(ctx, deps.Audit, input.Actor, deps.Now(), auditEntry{
		Category:     audit.CategoryBilling,
		Action:       audit.ActionPay,
		ResourceType: "bill",
		ResourceID:   b.ID,
		Description:  "payment " + input.Amount.StringFixed(2) + " on " + b.BillNo,
	})
	return b, nil
}
