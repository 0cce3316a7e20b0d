package orchestrators

import (
	"context"
	"testing"

	"gymbios/internal/domain/category"
	"gymbios/internal/domain/plan"
)

type demoStores struct {
	plans      *mockPlanStore
	categories *mockCategoryStore
	products   *mockProductStore
	staff      *mockStaffStore
	members    *mockMemberStore
}

func newDemoDeps(existing ...plan.Plan) (demoStores, DemoSeedDeps) {
	s := demoStores{
		plans:      newMockPlanStore(existing...),
		categories: &mockCategoryStore{cats: map[string]category.Category{}},
		products:   newMockProductStore(),
		staff:      newMockStaffStore(),
		members:    newMockMemberStore(),
	}
	return s, DemoSeedDeps{
		PlanStore:     s.plans,
		CategoryStore: s.categories,
		ProductStore:  s.products,
		StaffStore:    s.staff,
		MemberStore:   s.members,
		GenerateID:    idSeq("demo"),
		Now:           fixedNow,
	}
}

func TestExecuteSeedDemo_FillsEmptyDatabase(t *testing.T) {
	s, deps := newDemoDeps()
	if err := ExecuteSeedDemo(context.Background(), deps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.plans.plans) != 4 || len(s.categories.cats) != 3 || len(s.products.products) != 4 {
		t.Errorf("plans=%d categories=%d products=%d", len(s.plans.plans), len(s.categories.cats), len(s.products.products))
	}
	if len(s.staff.staff) != 3 || len(s.members.members) != 6 {
		t.Errorf("staff=%d members=%d", len(s.staff.staff), len(s.members.members))
	}

	var current, lapsed int
	for _, m := range s.members.members {
		switch {
		case m.ExpiryDate == "":
			t.Errorf("%s has no expiry", m.Name)
		case m.ExpiryDate < "2026-03-01":
			lapsed++
		default:
			current++
		}
	}
	if current == 0 || lapsed == 0 {
		t.Errorf("want a mix of current and lapsed members, got current=%d lapsed=%d", current, lapsed)
	}

	low := 0
	for _, p := range s.products.products {
		if p.Stock <= p.ReorderLevel {
			low++
		}
	}
	if low == 0 {
		t.Error("no product starts at or below its reorder level")
	}
}

func TestExecuteSeedDemo_SkipsWhenPlansExist(t *testing.T) {
	s, deps := newDemoDeps(plan.Plan{ID: "p-1", Name: "Custom", DurationMonths: 1, Active: true})
	if err := ExecuteSeedDemo(context.Background(), deps); err != nil {
		t.Fatal(err)
	}
	if len(s.plans.plans) != 1 || len(s.members.members) != 0 || len(s.products.products) != 0 {
		t.Error("seed wrote into a database that already had plans")
	}
}
