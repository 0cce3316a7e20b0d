package orchestrators

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"gymbios/internal/domain/category"
	"gymbios/internal/domain/interest"
	"gymbios/internal/domain/plan"
	"gymbios/internal/domain/product"
	"gymbios/internal/domain/staff"
)

func TestExecuteSaveCategory_UniqueName(t *testing.T) {
	store := &mockCategoryStore{cats: map[string]category.Category{}}
	deps := SaveCategoryDeps{CategoryStore: store, GenerateID: idSeq("cat"), Now: fixedNow}

	if _, err := ExecuteSaveCategory(context.Background(), SaveCategoryInput{Category: category.Category{Name: "Supplements"}}, deps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := ExecuteSaveCategory(context.Background(), SaveCategoryInput{Category: category.Category{Name: " supplements "}}, deps)
	if !errors.Is(err, ErrConflict) || !errors.Is(err, ErrCategoryExists) {
		t.Errorf("expected conflict, got %v", err)
	}
	_, err = ExecuteSaveCategory(context.Background(), SaveCategoryInput{Category: category.Category{Name: ""}}, deps)
	if !errors.Is(err, category.ErrEmptyName) {
		t.Errorf("expected ErrEmptyName, got %v", err)
	}
}

func TestExecuteSaveProduct_UpdateKeepsStock(t *testing.T) {
	products := newMockProductStore()
	cats := &mockCategoryStore{cats: map[string]category.Category{"cat-1": {ID: "cat-1", Name: "Drinks"}}}
	deps := SaveProductDeps{ProductStore: products, CategoryStore: cats, GenerateID: idSeq("prd"), Now: fixedNow}

	p, err := ExecuteSaveProduct(context.Background(), SaveProductInput{Product: product.Product{
		Name: "Electrolyte", CategoryID: "cat-1", SalePrice: decimal.NewFromInt(80), Stock: 24, ReorderLevel: 6,
	}}, deps)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Stock != 24 {
		t.Fatalf("expected opening stock 24, got %d", p.Stock)
	}

	p.Stock = 999
	p.SalePrice = decimal.NewFromInt(90)
	updated, err := ExecuteSaveProduct(context.Background(), SaveProductInput{Product: p}, deps)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Stock != 24 {
		t.Errorf("update must not overwrite stock, got %d", updated.Stock)
	}
	if !updated.SalePrice.Equal(decimal.NewFromInt(90)) {
		t.Errorf("expected new price, got %s", updated.SalePrice)
	}

	_, err = ExecuteSaveProduct(context.Background(), SaveProductInput{Product: product.Product{Name: "Orphan", CategoryID: "nope"}}, deps)
	var inv *InvalidInputError
	if !errors.As(err, &inv) {
		t.Errorf("expected invalid input for unknown category, got %v", err)
	}
}

func TestExecuteSavePlan(t *testing.T) {
	store := newMockPlanStore()
	deps := SavePlanDeps{PlanStore: store, GenerateID: fixedID, Now: fixedNow}
	p, err := ExecuteSavePlan(context.Background(), SavePlanInput{Plan: plan.Plan{Name: "Monthly", DurationMonths: 1, Price: decimal.NewFromInt(1500)}}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != "test-id-001" {
		t.Errorf("expected generated id, got %s", p.ID)
	}
	_, err = ExecuteSavePlan(context.Background(), SavePlanInput{Plan: plan.Plan{Name: "Broken", DurationMonths: 0}}, deps)
	if !errors.Is(err, plan.ErrInvalidDuration) {
		t.Errorf("expected ErrInvalidDuration, got %v", err)
	}
}

func TestExecuteSaveStaff_Defaults(t *testing.T) {
	store := newMockStaffStore()
	s, err := ExecuteSaveStaff(context.Background(), SaveStaffInput{Staff: staff.Staff{
		Name: "Ravi", Role: staff.RoleTrainer, Salary: decimal.NewFromInt(30000),
	}}, SaveStaffDeps{StaffStore: store, GenerateID: fixedID, Now: fixedNow})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Status != staff.StatusActive || s.JoinDate != "2026-03-01" {
		t.Errorf("unexpected defaults %+v", s)
	}
}

func TestExecuteSaveInterest(t *testing.T) {
	store := &mockInterestStore{items: map[string]interest.Interest{}}
	deps := SaveInterestDeps{InterestStore: store, GenerateID: fixedID, Now: fixedNow}
	i, err := ExecuteSaveInterest(context.Background(), SaveInterestInput{Interest: interest.Interest{
		Name: "Lead", Phone: "0210000000", Source: interest.SourceWalkIn,
	}}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if i.Status != interest.StatusNew {
		t.Errorf("expected new lead, got %s", i.Status)
	}

	i.Status = interest.StatusContacted
	i.FollowUpDate = "2026-03-05"
	if _, err := ExecuteSaveInterest(context.Background(), SaveInterestInput{Interest: i}, deps); err != nil {
		t.Fatalf("update: %v", err)
	}
	if store.items[i.ID].Status != interest.StatusContacted {
		t.Errorf("expected contacted, got %s", store.items[i.ID].Status)
	}

	_, err = ExecuteSaveInterest(context.Background(), SaveInterestInput{Interest: interest.Interest{Name: "No Contact"}}, deps)
	if !errors.Is(err, interest.ErrNoContact) {
		t.Errorf("expected ErrNoContact, got %v", err)
	}
}

type mockInterestStore struct {
	items map[string]interest.Interest
}

func (m *mockInterestStore) GetByID(_ context.Context, id string) (interest.Interest, error) {
	i, ok := m.items[id]
	if !ok {
		return interest.Interest{}, notFound("interest")
	}
	return i, nil
}

func (m *mockInterestStore) Save(_ context.Context, i interest.Interest) error {
	m.items[i.ID] = i
	return nil
}
