package billing_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"gymbios/internal/domain/billing"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// TestComputeTotals_DerivesStatus verifies totals and the paid/partial/pending status.
func TestComputeTotals_DerivesStatus(t *testing.T) {
	tests := []struct {
		name       string
		paid       string
		wantStatus string
	}{
		{"unpaid", "0", billing.StatusPending},
		{"part paid", "1000", billing.StatusPartial},
		{"fully paid", "2360", billing.StatusPaid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := billing.Bill{
				MemberName:  "Asha",
				Amount:      d("2500"),
				Discount:    d("500"),
				TaxPercent:  d("18"),
				PaidAmount:  d(tt.paid),
				PaymentMode: billing.ModeUPI,
				BillDate:    "2024-06-01",
			}
			b.ComputeTotals()
			if !b.Total.Equal(d("2360")) {
				t.Fatalf("total = %s, want 2360", b.Total)
			}
			if b.Status != tt.wantStatus {
				t.Errorf("status = %s, want %s", b.Status, tt.wantStatus)
			}
			if err := b.Validate(); err != nil {
				t.Errorf("Validate: %v", err)
			}
		})
	}
}

// TestRecordPayment verifies payments accumulate and cannot overpay.
func TestRecordPayment(t *testing.T) {
	b := billing.Bill{MemberID: "m1", Amount: d("1000"), PaymentMode: billing.ModeCash, BillDate: "2024-06-01"}
	b.ComputeTotals()

	if err := b.RecordPayment(d("400")); err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if b.Status != billing.StatusPartial || !b.Balance().Equal(d("600")) {
		t.Errorf("after partial: status=%s balance=%s", b.Status, b.Balance())
	}
	if err := b.RecordPayment(d("601")); !errors.Is(err, billing.ErrOverpaid) {
		t.Errorf("overpay err = %v", err)
	}
	if err := b.RecordPayment(decimal.Zero); !errors.Is(err, billing.ErrInvalidPayment) {
		t.Errorf("zero payment err = %v", err)
	}
	if err := b.RecordPayment(d("600")); err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if b.Status != billing.StatusPaid {
		t.Errorf("status = %s, want paid", b.Status)
	}
}

// TestValidate_MemberReference verifies a bill needs an id or a name.
func TestValidate_MemberReference(t *testing.T) {
	b := billing.Bill{Amount: d("10"), PaymentMode: billing.ModeCash, BillDate: "2024-06-01"}
	b.ComputeTotals()
	if err := b.Validate(); !errors.Is(err, billing.ErrNoMember) {
		t.Errorf("Validate() = %v, want ErrNoMember", err)
	}
	b.Discount = d("20")
	b.MemberName = "Legacy Name"
	b.ComputeTotals()
	if err := b.Validate(); !errors.Is(err, billing.ErrDiscountTooLarge) {
		t.Errorf("Validate() = %v, want ErrDiscountTooLarge", err)
	}
}
