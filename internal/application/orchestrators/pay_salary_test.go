package orchestrators

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gymbios/internal/domain/salary"
	"gymbios/internal/domain/staff"
)

func newSalaryFixture() (PaySalaryDeps, *mockSalaryStore, *stubSender, *mockOutboxStore) {
	store := &mockSalaryStore{}
	sender := &stubSender{}
	ob := newMockOutboxStore()
	return PaySalaryDeps{
		SalaryStore: store,
		StaffStore: newMockStaffStore(
			staff.Staff{ID: "st-1", Name: "Ravi", Email: "ravi@gymbios.app", Role: staff.RoleTrainer, Salary: d("30000"), Status: staff.StatusActive},
			staff.Staff{ID: "st-2", Name: "Old", Role: staff.RoleCleaner, Salary: d("12000"), Status: staff.StatusInactive},
		),
		Audit:      &mockAudit{},
		Notify:     NotifyDeps{Sender: sender, Outbox: ob, GenerateID: idSeq("obx"), Now: fixedNow},
		GenerateID: idSeq("pay"),
		Now:        fixedNow,
	}, store, sender, ob
}

func TestExecutePaySalary(t *testing.T) {
	deps, store, sender, _ := newSalaryFixture()
	p, err := ExecutePaySalary(context.Background(), PaySalaryInput{
		StaffID: "st-1", Month: "2026-02", Bonus: d("2500"), Deductions: d("1200"),
	}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.BaseSalary.Equal(d("30000")) || !p.NetAmount.Equal(d("31300")) {
		t.Errorf("unexpected amounts base=%s net=%s", p.BaseSalary, p.NetAmount)
	}
	if p.StaffName != "Ravi" || p.PaymentMode != salary.ModeBank {
		t.Errorf("unexpected defaults %+v", p)
	}
	if len(store.payments) != 1 {
		t.Fatal("expected payment persisted")
	}
	if len(sender.sent) != 1 || !strings.Contains(sender.sent[0].HTML, "31300.00") {
		t.Errorf("expected payslip with net amount, got %+v", sender.sent)
	}

	_, err = ExecutePaySalary(context.Background(), PaySalaryInput{StaffID: "st-1", Month: "2026-02"}, deps)
	if !errors.Is(err, ErrConflict) || !errors.Is(err, ErrAlreadyPaid) {
		t.Errorf("expected second payment conflict, got %v", err)
	}
}

func TestExecutePaySalary_DefaultsToCurrentMonth(t *testing.T) {
	deps, _, _, _ := newSalaryFixture()
	p, err := ExecutePaySalary(context.Background(), PaySalaryInput{StaffID: "st-1"}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Month != "2026-03" {
		t.Errorf("expected 2026-03, got %s", p.Month)
	}
}

func TestExecutePaySalary_Rejections(t *testing.T) {
	deps, _, _, _ := newSalaryFixture()
	var inv *InvalidInputError

	if _, err := ExecutePaySalary(context.Background(), PaySalaryInput{StaffID: "st-2", Month: "2026-02"}, deps); !errors.As(err, &inv) {
		t.Errorf("expected invalid input for inactive staff, got %v", err)
	}
	_, err := ExecutePaySalary(context.Background(), PaySalaryInput{StaffID: "st-1", Month: "2026-02", Deductions: d("40000")}, deps)
	if !errors.Is(err, salary.ErrNegativeNet) {
		t.Errorf("expected ErrNegativeNet, got %v", err)
	}
	if _, err := ExecutePaySalary(context.Background(), PaySalaryInput{StaffID: "st-1", Month: "Feb"}, deps); !errors.Is(err, salary.ErrInvalidMonth) {
		t.Errorf("expected ErrInvalidMonth, got %v", err)
	}
}

func TestExecutePaySalary_PayslipQueuedOnSendFailure(t *testing.T) {
	deps, store, sender, ob := newSalaryFixture()
	sender.err = errBoom
	if _, err := ExecutePaySalary(context.Background(), PaySalaryInput{StaffID: "st-1", Month: "2026-02"}, deps); err != nil {
		t.Fatalf("email failure must not fail the payment: %v", err)
	}
	if len(store.payments) != 1 || len(ob.entries) != 1 {
		t.Errorf("expected payment saved and payslip queued, got %d / %d", len(store.payments), len(ob.entries))
	}
}
