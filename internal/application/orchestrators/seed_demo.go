package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"gymbios/internal/domain/category"
	"gymbios/internal/domain/dates"
	"gymbios/internal/domain/member"
	"gymbios/internal/domain/plan"
	"gymbios/internal/domain/product"
	"gymbios/internal/domain/staff"
)

// DemoSeedDeps holds the stores filled by ExecuteSeedDemo.
type DemoSeedDeps struct {
	PlanStore interface {
		PlanStoreForSave
		List(ctx context.Context, activeOnly bool) ([]plan.Plan, error)
	}
	CategoryStore CategoryStoreForSave
	ProductStore  ProductStoreForSave
	StaffStore    StaffStoreForSave
	MemberStore   MemberStoreForSave
	GenerateID    func() string
	Now           func() time.Time
}

var seedActor = Actor{Email: "system", Role: "system"}

// ExecuteSeedDemo fills an empty development database with a small gym:
// plans, a stocked shop, staff and members at every point of their membership.
// It is idempotent and does nothing once any plan exists.
// PRE: Database is migrated
// POST: Demo records exist; no emails are sent and no audit events are written
func ExecuteSeedDemo(ctx context.Context, deps DemoSeedDeps) error {
	existing, err := deps.PlanStore.List(ctx, false)
	if err != nil {
		return fmt.Errorf("seed_demo: list plans: %w", err)
	}
	if len(existing) > 0 {
		slog.Info("seed_event", "event", "demo_skip", "reason", "already_seeded")
		return nil
	}
	now := deps.Now()

	planDeps := SavePlanDeps{PlanStore: deps.PlanStore, GenerateID: deps.GenerateID, Now: deps.Now}
	plans := map[string]plan.Plan{}
	for _, p := range []plan.Plan{
		{Name: "Monthly", DurationMonths: 1, Price: decimal.NewFromInt(1500), Active: true},
		{Name: "Quarterly", DurationMonths: 3, Price: decimal.NewFromInt(4000), Active: true},
		{Name: "Annual", DurationMonths: 12, Price: decimal.NewFromInt(14000), Active: true,
			Description: "Best value. Includes a **free** fitness assessment."},
		{Name: "Student (legacy)", DurationMonths: 1, Price: decimal.NewFromInt(900), Active: false},
	} {
		saved, err := ExecuteSavePlan(ctx, SavePlanInput{Plan: p, Actor: seedActor}, planDeps)
		if err != nil {
			return fmt.Errorf("seed_demo: plan %s: %w", p.Name, err)
		}
		plans[saved.Name] = saved
	}

	catDeps := SaveCategoryDeps{CategoryStore: deps.CategoryStore, GenerateID: deps.GenerateID, Now: deps.Now}
	categories := map[string]string{}
	for _, name := range []string{"Supplements", "Apparel", "Drinks"} {
		c, err := ExecuteSaveCategory(ctx, SaveCategoryInput{Category: category.Category{Name: name}, Actor: seedActor}, catDeps)
		if err != nil {
			return fmt.Errorf("seed_demo: category %s: %w", name, err)
		}
		categories[name] = c.ID
	}

	productDeps := SaveProductDeps{ProductStore: deps.ProductStore, CategoryStore: deps.CategoryStore, GenerateID: deps.GenerateID, Now: deps.Now}
	for _, p := range []product.Product{
		{Name: "Whey Protein 1kg", CategoryID: categories["Supplements"], SKU: "SUP-WHEY-1", Unit: "jar",
			CostPrice: decimal.NewFromInt(1800), SalePrice: decimal.NewFromInt(2400), Stock: 12, ReorderLevel: 4},
		{Name: "Creatine 250g", CategoryID: categories["Supplements"], SKU: "SUP-CRE-250", Unit: "jar",
			CostPrice: decimal.NewFromInt(600), SalePrice: decimal.NewFromInt(850), Stock: 3, ReorderLevel: 5},
		{Name: "Gym T-shirt", CategoryID: categories["Apparel"], SKU: "APP-TEE", Unit: "pcs",
			CostPrice: decimal.NewFromInt(250), SalePrice: decimal.NewFromInt(499), Stock: 30, ReorderLevel: 10},
		{Name: "Electrolyte Drink", CategoryID: categories["Drinks"], SKU: "DRK-ELEC", Unit: "bottle",
			CostPrice: decimal.NewFromInt(35), SalePrice: decimal.NewFromInt(60), Stock: 0, ReorderLevel: 24},
	} {
		if _, err := ExecuteSaveProduct(ctx, SaveProductInput{Product: p, Actor: seedActor}, productDeps); err != nil {
			return fmt.Errorf("seed_demo: product %s: %w", p.Name, err)
		}
	}

	staffDeps := SaveStaffDeps{StaffStore: deps.StaffStore, GenerateID: deps.GenerateID, Now: deps.Now}
	for _, s := range []staff.Staff{
		{Name: "Vikram Singh", Role: staff.RoleTrainer, Phone: "9810000001", Salary: decimal.NewFromInt(28000)},
		{Name: "Meera Iyer", Role: staff.RoleTrainer, Phone: "9810000002", Salary: decimal.NewFromInt(26000)},
		{Name: "Rohan Das", Role: staff.RoleReceptionist, Phone: "9810000003", Salary: decimal.NewFromInt(18000)},
	} {
		s.JoinDate = dates.Today(now.AddDate(-1, 0, 0))
		s.Status = staff.StatusActive
		if _, err := ExecuteSaveStaff(ctx, SaveStaffInput{Staff: s, Actor: seedActor}, staffDeps); err != nil {
			return fmt.Errorf("seed_demo: staff %s: %w", s.Name, err)
		}
	}

	// Join dates are relative to now so the dashboard shows active, expiring and expired members.
	memberDeps := SaveMemberDeps{MemberStore: deps.MemberStore, PlanStore: deps.PlanStore, GenerateID: deps.GenerateID, Now: deps.Now}
	for _, m := range []struct {
		name, phone, email, plan string
		joinedDaysAgo            int
	}{
		{"Asha Rao", "9800000001", "asha@example.com", "Annual", 40},
		{"Ben Okafor", "9800000002", "", "Monthly", 27},
		{"Chitra Nair", "9800000003", "chitra@example.com", "Quarterly", 100},
		{"Dev Malhotra", "9800000004", "", "Monthly", 45},
		{"Esha Kapoor", "9800000005", "esha@example.com", "Quarterly", 10},
		{"Farhan Ali", "9800000006", "", "Annual", 400},
	} {
		in := member.Member{
			Name:     m.name,
			Phone:    m.phone,
			Email:    m.email,
			PlanID:   plans[m.plan].ID,
			JoinDate: dates.Today(now.AddDate(0, 0, -m.joinedDaysAgo)),
		}
		if _, err := ExecuteSaveMember(ctx, SaveMemberInput{Member: in, Actor: seedActor}, memberDeps); err != nil {
			return fmt.Errorf("seed_demo: member %s: %w", m.name, err)
		}
	}

	slog.Info("seed_event", "event", "demo_seeded", "plans", len(plans), "categories", len(categories))
	return nil
}
