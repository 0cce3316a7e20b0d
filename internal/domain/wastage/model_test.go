package wastage_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"gymbios/internal/domain/lineitem"
	"gymbios/internal/domain/wastage"
)

// TestVoucher covers voucher validation and totals.
func TestVoucher(t *testing.T) {
	v := wastage.Voucher{
		Type:        wastage.TypeReturn,
		Reason:      "Damaged in transit",
		Location:    "Main store",
		VoucherDate: "2024-09-10",
		Items:       []lineitem.Item{{ProductID: "gloves", Quantity: 2, UnitPrice: decimal.NewFromInt(450)}},
	}
	v.ComputeTotals()
	if !v.Total.Equal(decimal.NewFromInt(900)) {
		t.Errorf("total = %s, want 900", v.Total)
	}
	if err := v.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	v.Type = "theft"
	if err := v.Validate(); !errors.Is(err, wastage.ErrInvalidType) {
		t.Errorf("Validate() = %v, want ErrInvalidType", err)
	}
	v.Type = wastage.TypeWastage
	v.Reason = " "
	if err := v.Validate(); !errors.Is(err, wastage.ErrEmptyReason) {
		t.Errorf("Validate() = %v, want ErrEmptyReason", err)
	}
}
