package projections

import (
	"context"
	"testing"

	"gymbios/internal/domain/salary"
	"gymbios/internal/domain/staff"
)

func salaryDeps() SalaryDeps {
	return SalaryDeps{
		StaffStore: &mockStaffStore{staff: []staff.Staff{
			{ID: "st-2", Name: "Zoe", Role: staff.RoleReceptionist, Salary: d("18000"), Status: staff.StatusActive},
			{ID: "st-1", Name: "Ravi", Role: staff.RoleTrainer, Salary: d("30000"), Status: staff.StatusActive},
			{ID: "st-3", Name: "Gone", Role: staff.RoleCleaner, Status: staff.StatusInactive},
		}},
		SalaryStore: &mockSalaryStore{payments: []salary.Payment{
			{ID: "p-4", StaffID: "st-1", StaffName: "Ravi", Month: "2026-03", NetAmount: d("31000")},
			{ID: "p-3", StaffID: "st-2", StaffName: "Zoe", Month: "2026-02", NetAmount: d("18000")},
			{ID: "p-2", StaffID: "st-1", StaffName: "Ravi", Month: "2026-02", NetAmount: d("30000")},
			{ID: "p-1", StaffID: "st-3", StaffName: "Gone", Month: "2026-01", NetAmount: d("12000")},
		}},
		Now: fixedNow,
	}
}

func TestQuerySalaryEmployees(t *testing.T) {
	got, err := QuerySalaryEmployees(context.Background(), salaryDeps())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Ravi" || got[1].Name != "Zoe" {
		t.Fatalf("expected active staff by name, got %+v", got)
	}
	if got[0].LastPaidMonth != "2026-03" || !got[0].PaidThisMonth {
		t.Errorf("Ravi should be paid for March: %+v", got[0])
	}
	if got[1].LastPaidMonth != "2026-02" || got[1].PaidThisMonth {
		t.Errorf("Zoe should be due for March: %+v", got[1])
	}
}

func TestQuerySalarySummary(t *testing.T) {
	s, err := QuerySalarySummary(context.Background(), SalarySummaryQuery{}, salaryDeps())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.GrandTotal.Equal(d("91000")) {
		t.Errorf("grand total = %s", s.GrandTotal)
	}
	if len(s.Months) != 3 || s.Months[0].Month != "2026-03" || s.Months[1].Payments != 2 || !s.Months[1].Total.Equal(d("48000")) {
		t.Errorf("unexpected months %+v", s.Months)
	}
	if len(s.Staff) != 3 || s.Staff[0].StaffID != "st-1" || !s.Staff[0].Total.Equal(d("61000")) || s.Staff[0].LastMonth != "2026-03" {
		t.Errorf("unexpected staff totals %+v", s.Staff)
	}

	one, _ := QuerySalarySummary(context.Background(), SalarySummaryQuery{Month: "2026-02"}, salaryDeps())
	if len(one.Months) != 1 || !one.GrandTotal.Equal(d("48000")) {
		t.Errorf("month filter ignored: %+v", one)
	}
}

func TestQueryRecentSalaryPayments(t *testing.T) {
	got, err := QueryRecentSalaryPayments(context.Background(), 2, salaryDeps())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "p-4" {
		t.Errorf("unexpected recent payments %+v", got)
	}
	empty, _ := QueryRecentSalaryPayments(context.Background(), 0, SalaryDeps{SalaryStore: &mockSalaryStore{}})
	if empty == nil {
		t.Error("expected an empty slice, not nil")
	}
}
