package web

import (
	"net/http"

	productStore "gymbios/internal/adapters/storage/product"
	"gymbios/internal/application/listutil"
	"gymbios/internal/application/orchestrators"
	"gymbios/internal/domain/audit"
	"gymbios/internal/domain/category"
	"gymbios/internal/domain/plan"
	"gymbios/internal/domain/product"
)

// saveStatus answers 201 for a create (no {id} in the path) and 200 for an update.
func saveStatus(r *http.Request) int {
	if r.PathValue("id") == "" {
		return http.StatusCreated
	}
	return http.StatusOK
}

// --- Plans ---

// handleListPlans handles GET /api/plans. ?active=true hides retired plans.
func handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := stores.PlanStore.List(r.Context(), r.URL.Query().Get("active") == "true")
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listutil.Whole(plans))
}

// handleGetPlan handles GET /api/plans/{id}
func handleGetPlan(w http.ResponseWriter, r *http.Request) {
	p, err := stores.PlanStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleSavePlan handles POST /api/plans and PUT /api/plans/{id}
func handleSavePlan(w http.ResponseWriter, r *http.Request) {
	var p plan.Plan
	if !decodeOrReject(w, r, &p) {
		return
	}
	p.ID = r.PathValue("id")
	saved, err := orchestrators.ExecuteSavePlan(r.Context(), orchestrators.SavePlanInput{
		Plan:  p,
		Actor: actor(r),
	}, orchestrators.SavePlanDeps{
		PlanStore:  stores.PlanStore,
		Audit:      stores.AuditStore,
		GenerateID: generateID,
		Now:        timeNow,
	})
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, saveStatus(r), saved)
}

// handleDeletePlan handles DELETE /api/plans/{id}
func handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	deleteRecord(w, r, "plan", audit.CategoryBilling, stores.PlanStore)
}

// --- Categories ---

// handleListCategories handles GET /api/categories
func handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := stores.CategoryStore.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listutil.Whole(categories))
}

// handleGetCategory handles GET /api/categories/{id}
func handleGetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := stores.CategoryStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// handleSaveCategory handles POST /api/categories and PUT /api/categories/{id}
func handleSaveCategory(w http.ResponseWriter, r *http.Request) {
	var c category.Category
	if !decodeOrReject(w, r, &c) {
		return
	}
	c.ID = r.PathValue("id")
	saved, err := orchestrators.ExecuteSaveCategory(r.Context(), orchestrators.SaveCategoryInput{
		Category: c,
		Actor:    actor(r),
	}, orchestrators.SaveCategoryDeps{
		CategoryStore: stores.CategoryStore,
		Audit:         stores.AuditStore,
		GenerateID:    generateID,
		Now:           timeNow,
	})
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, saveStatus(r), saved)
}

// handleDeleteCategory handles DELETE /api/categories/{id}
func handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	deleteRecord(w, r, "category", audit.CategoryInventory, stores.CategoryStore)
}

// --- Products ---

// handleListProducts handles GET /products
// Filters: category_id, in_stock=true, q (name or sku).
func handleListProducts(w http.ResponseWriter, r *http.Request) {
	q := parseList(r, nil, "category_id", "in_stock")
	filter := productStore.ListFilter{
		CategoryID: q.filter("category_id"),
		InStock:    q.filter("in_stock") == "true",
		Search:     q.Search,
	}
	total, err := stores.ProductStore.Count(r.Context(), filter)
	if err != nil {
		internalError(w, err)
		return
	}
	page := q.page(total)
	filter.Limit, filter.Offset = page.PerPage, page.Offset()
	products, err := stores.ProductStore.List(r.Context(), filter)
	if err != nil {
		internalError(w, err)
		return
	}
	writeList(w, products, page)
}

// handleLowStock handles GET /products/low-stock
func handleLowStock(w http.ResponseWriter, r *http.Request) {
	products, err := stores.ProductStore.ListLowStock(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listutil.Whole(products))
}

// handleGetProduct handles GET /products/{id}
func handleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := stores.ProductStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleSaveProduct handles POST /products and PUT /products/{id}
func handleSaveProduct(w http.ResponseWriter, r *http.Request) {
	var p product.Product
	if !decodeOrReject(w, r, &p) {
		return
	}
	p.ID = r.PathValue("id")
	saved, err := orchestrators.ExecuteSaveProduct(r.Context(), orchestrators.SaveProductInput{
		Product: p,
		Actor:   actor(r),
	}, orchestrators.SaveProductDeps{
		ProductStore:  stores.ProductStore,
		CategoryStore: stores.CategoryStore,
		Audit:         stores.AuditStore,
		GenerateID:    generateID,
		Now:           timeNow,
	})
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, saveStatus(r), saved)
}

// handleDeleteProduct handles DELETE /products/{id}
func handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	deleteRecord(w, r, "product", audit.CategoryInventory, stores.ProductStore)
}
