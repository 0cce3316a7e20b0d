package web

import (
	"net/http"

	"gymbios/internal/adapters/storage"
	posStore "gymbios/internal/adapters/storage/pos"
	productStore "gymbios/internal/adapters/storage/product"
	"gymbios/internal/application/listutil"
	"gymbios/internal/application/orchestrators"
	"gymbios/internal/domain/pos"
)

// handlePOSProducts handles GET /api/pos/products: every product with stock, for the till.
func handlePOSProducts(w http.ResponseWriter, r *http.Request) {
	products, err := stores.ProductStore.List(r.Context(), productStore.ListFilter{
		Limit:      storage.NoLimit,
		InStock:    true,
		CategoryID: r.URL.Query().Get("category_id"),
		Search:     r.URL.Query().Get("q"),
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listutil.Whole(products))
}

// handleListSales handles GET /api/pos/sales
// Filters: member_id, day (YYYY-MM-DD).
func handleListSales(w http.ResponseWriter, r *http.Request) {
	q := parseList(r, nil, "member_id", "day")
	filter := posStore.ListFilter{MemberID: q.filter("member_id"), Day: q.filter("day")}
	total, err := stores.SaleStore.Count(r.Context(), filter)
	if err != nil {
		internalError(w, err)
		return
	}
	page := q.page(total)
	filter.Limit, filter.Offset = page.PerPage, page.Offset()
	sales, err := stores.SaleStore.List(r.Context(), filter)
	if err != nil {
		internalError(w, err)
		return
	}
	writeList(w, sales, page)
}

// handleGetSale handles GET /api/pos/sales/{id}
func handleGetSale(w http.ResponseWriter, r *http.Request) {
	s, err := stores.SaleStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// handleCreateSale handles POST /api/pos/sales. Stock is taken from every sold product.
func handleCreateSale(w http.ResponseWriter, r *http.Request) {
	var s pos.Sale
	if !decodeOrReject(w, r, &s) {
		return
	}
	saved, err := orchestrators.ExecuteCreateSale(r.Context(), orchestrators.CreateSaleInput{
		Sale:  s,
		Actor: actor(r),
	}, orchestrators.CreateSaleDeps{
		SaleStore:    stores.SaleStore,
		ProductStore: stores.ProductStore,
		MemberStore:  stores.MemberStore,
		Audit:        stores.AuditStore,
		GenerateID:   generateID,
		Now:          timeNow,
	})
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}
