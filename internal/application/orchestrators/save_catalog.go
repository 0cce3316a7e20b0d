package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gymbios/internal/adapters/storage"
	"gymbios/internal/domain/audit"
	"gymbios/internal/domain/category"
	"gymbios/internal/domain/plan"
	"gymbios/internal/domain/product"
)

// --- Plans ---

// PlanStoreForSave defines the store interface needed by SavePlan.
type PlanStoreForSave interface {
	GetByID(ctx context.Context, id string) (plan.Plan, error)
	Save(ctx context.Context, p plan.Plan) error
}

// SavePlanInput carries input for creating (empty ID) or replacing a plan.
type SavePlanInput struct {
	Plan  plan.Plan
	Actor Actor
}

// SavePlanDeps holds dependencies for SavePlan.
type SavePlanDeps struct {
	PlanStore  PlanStoreForSave
	Audit      AuditRecorder
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteSavePlan creates or updates a membership plan.
// PRE: Plan.Name set, DurationMonths >= 1
// POST: Plan persisted
func ExecuteSavePlan(ctx context.Context, input SavePlanInput, deps SavePlanDeps) (plan.Plan, error) {
	now := deps.Now()
	p := input.Plan
	p.Name = strings.TrimSpace(p.Name)
	creating := p.ID == ""
	if creating {
		p.ID = deps.GenerateID()
		p.CreatedAt = now
	} else {
		existing, err := deps.PlanStore.GetByID(ctx, p.ID)
		if err != nil {
			return plan.Plan{}, err
		}
		p.CreatedAt = existing.CreatedAt
	}
	if err := p.Validate(); err != nil {
		return plan.Plan{}, invalid(err)
	}
	if err := deps.PlanStore.Save(ctx, p); err != nil {
		return plan.Plan{}, fmt.Errorf("save plan: %w", err)
	}
	recordAudit(ctx, deps.Audit, input.Actor, now, auditEntry{
		Category:     audit.CategoryBilling,
		Action:       createOrUpdate(creating),
		ResourceType: "plan",
		ResourceID:   p.ID,
		Description:  p.Name,
	})
	return p, nil
}

// --- Categories ---

// CategoryStoreForSave defines the store interface needed by SaveCategory.
type CategoryStoreForSave interface {
	GetByID(ctx context.Context, id string) (category.Category, error)
	Save(ctx context.Context, c category.Category) error
}

// SaveCategoryInput carries input for creating (empty ID) or replacing a category.
type SaveCategoryInput struct {
	Category category.Category
	Actor    Actor
}

// SaveCategoryDeps holds dependencies for SaveCategory.
type SaveCategoryDeps struct {
	CategoryStore CategoryStoreForSave
	Audit         AuditRecorder
	GenerateID    func() string
	Now           func() time.Time
}

// ErrCategoryExists is returned when another category already has the name.
var ErrCategoryExists = errors.New("a category with this name already exists")

// ExecuteSaveCategory creates or updates a product category.
// INVARIANT: Category names are unique, ignoring case
func ExecuteSaveCategory(ctx context.Context, input SaveCategoryInput, deps SaveCategoryDeps) (category.Category, error) {
	now := deps.Now()
	c := input.Category
	c.Name = strings.TrimSpace(c.Name)
	creating := c.ID == ""
	if creating {
		c.ID = deps.GenerateID()
		c.CreatedAt = now
	} else {
		existing, err := deps.CategoryStore.GetByID(ctx, c.ID)
		if err != nil {
			return category.Category{}, err
		}
		c.CreatedAt = existing.CreatedAt
	}
	if err := c.Validate(); err != nil {
		return category.Category{}, invalid(err)
	}
	if err := deps.CategoryStore.Save(ctx, c); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return category.Category{}, conflict(ErrCategoryExists)
		}
		return category.Category{}, fmt.Errorf("save category: %w", err)
	}
	recordAudit(ctx, deps.Audit, input.Actor, now, auditEntry{
		Category:     audit.CategoryInventory,
		Action:       createOrUpdate(creating),
		ResourceType: "category",
		ResourceID:   c.ID,
		Description:  c.Name,
	})
	return c, nil
}

// --- Products ---

// ProductStoreForSave defines the store interface needed by SaveProduct.
type ProductStoreForSave interface {
	GetByID(ctx context.Context, id string) (product.Product, error)
	Save(ctx context.Context, p product.Product) error
}

// CategoryLookup resolves a category by ID.
type CategoryLookup interface {
	GetByID(ctx context.Context, id string) (category.Category, error)
}

// SaveProductInput carries input for creating (empty ID) or replacing a product.
type SaveProductInput struct {
	Product product.Product
	Actor   Actor
}

// SaveProductDeps holds dependencies for SaveProduct.
type SaveProductDeps struct {
	ProductStore  ProductStoreForSave
	CategoryStore CategoryLookup
	Audit         AuditRecorder
	GenerateID    func() string
	Now           func() time.Time
}

// ExecuteSaveProduct creates or updates a product.
// Opening stock is taken on create only; an update keeps the stored level,
// which afterwards changes only through purchases, vouchers and sales.
// PRE: Product.Name set; CategoryID, when set, names an existing category
// POST: Product persisted
func ExecuteSaveProduct(ctx context.Context, input SaveProductInput, deps SaveProductDeps) (product.Product, error) {
	now := deps.Now()
	p := input.Product
	p.Name = strings.TrimSpace(p.Name)
	p.SKU = strings.TrimSpace(p.SKU)
	creating := p.ID == ""
	if creating {
		p.ID = deps.GenerateID()
		p.CreatedAt = now
	} else {
		existing, err := deps.ProductStore.GetByID(ctx, p.ID)
		if err != nil {
			return product.Product{}, err
		}
		p.CreatedAt = existing.CreatedAt
		p.Stock = existing.Stock
	}
	if err := p.Validate(); err != nil {
		return product.Product{}, invalid(err)
	}
	if p.CategoryID != "" && deps.CategoryStore != nil {
		if _, err := deps.CategoryStore.GetByID(ctx, p.CategoryID); err != nil {
			return product.Product{}, invalid(fmt.Errorf("category %s: %w", p.CategoryID, err))
		}
	}
	if err := deps.ProductStore.Save(ctx, p); err != nil {
		return product.Product{}, fmt.Errorf("save product: %w", err)
	}
	recordAudit(ctx, deps.Audit, input.Actor, now, auditEntry{
		Category:     audit.CategoryInventory,
		Action:       createOrUpdate(creating),
		ResourceType: "product",
		ResourceID:   p.ID,
		Description:  p.Name,
	})
	return p, nil
}

func createOrUpdate(creating bool) audit.Action {
	if creating {
		return audit.ActionCreate
	}
	return audit.ActionUpdate
}
