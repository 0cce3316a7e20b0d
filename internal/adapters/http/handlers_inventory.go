package web

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	purchaseStore "gymbios/internal/adapters/storage/purchase"
	purchaseOrderStore "gymbios/internal/adapters/storage/purchaseorder"
	wastageStore "gymbios/internal/adapters/storage/wastage"
	"gymbios/internal/application/orchestrators"
	"gymbios/internal/domain/audit"
	"gymbios/internal/domain/purchase"
	"gymbios/internal/domain/purchaseorder"
	"gymbios/internal/domain/wastage"
)

func purchaseOrderDeps() orchestrators.PurchaseOrderDeps {
	return orchestrators.PurchaseOrderDeps{
		OrderStore:    stores.PurchaseOrderStore,
		PurchaseStore: stores.PurchaseStore,
		ProductStore:  stores.ProductStore,
		Audit:         stores.AuditStore,
		GenerateID:    generateID,
		Now:           timeNow,
	}
}

// --- Purchase orders ---

// handleListPurchaseOrders handles GET /purchase-orders
func handleListPurchaseOrders(w http.ResponseWriter, r *http.Request) {
	q := parseList(r, nil, "status")
	filter := purchaseOrderStore.ListFilter{Status: q.filter("status"), Search: q.Search}
	total, err := stores.PurchaseOrderStore.Count(r.Context(), filter)
	if err != nil {
		internalError(w, err)
		return
	}
	page := q.page(total)
	filter.Limit, filter.Offset = page.PerPage, page.Offset()
	orders, err := stores.PurchaseOrderStore.List(r.Context(), filter)
	if err != nil {
		internalError(w, err)
		return
	}
	writeList(w, orders, page)
}

// handleGetPurchaseOrder handles GET /purchase-orders/{id}
func handleGetPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	po, err := stores.PurchaseOrderStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, po)
}

// handleSavePurchaseOrder handles POST /purchase-orders and PUT /purchase-orders/{id}
func handleSavePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	var po purchaseorder.PurchaseOrder
	if !decodeOrReject(w, r, &po) {
		return
	}
	po.ID = r.PathValue("id")
	saved, err := orchestrators.ExecuteSavePurchaseOrder(r.Context(), orchestrators.SavePurchaseOrderInput{
		Order: po,
		Actor: actor(r),
	}, purchaseOrderDeps())
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, saveStatus(r), saved)
}

// handleDeletePurchaseOrder handles DELETE /purchase-orders/{id}
func handleDeletePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	deleteRecord(w, r, "purchase_order", audit.CategoryInventory, stores.PurchaseOrderStore)
}

// handleTransitionPurchaseOrder handles POST /purchase-orders/{id}/approve and /cancel.
// The transition is the last path segment.
func handleTransitionPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	transition := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	po, err := orchestrators.ExecuteTransitionPurchaseOrder(r.Context(), orchestrators.TransitionPurchaseOrderInput{
		OrderID:    r.PathValue("id"),
		Transition: transition,
		Actor:      actor(r),
	}, purchaseOrderDeps())
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, po)
}

type receiveRequest struct {
	InvoiceNo    string          `json:"invoice_no"`
	PurchaseDate string          `json:"purchase_date"`
	TaxPercent   decimal.Decimal `json:"tax_percent"`
	Discount     decimal.Decimal `json:"discount"`
}

// handleReceivePurchaseOrder handles POST /purchase-orders/{id}/receive.
// An empty body receives the order with no tax or discount.
func handleReceivePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	var req receiveRequest
	if r.ContentLength != 0 && !decodeOrReject(w, r, &req) {
		return
	}
	result, err := orchestrators.ExecuteReceivePurchaseOrder(r.Context(), orchestrators.ReceivePurchaseOrderInput{
		OrderID:      r.PathValue("id"),
		InvoiceNo:    req.InvoiceNo,
		PurchaseDate: req.PurchaseDate,
		TaxPercent:   req.TaxPercent,
		Discount:     req.Discount,
		Actor:        actor(r),
	}, purchaseOrderDeps())
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// --- Purchases ---

// handleListPurchases handles GET /purchases. ?from and ?to bound the purchase date.
func handleListPurchases(w http.ResponseWriter, r *http.Request) {
	q := parseList(r, nil, "from", "to")
	filter := purchaseStore.ListFilter{Search: q.Search, FromDate: q.filter("from"), ToDate: q.filter("to")}
	total, err := stores.PurchaseStore.Count(r.Context(), filter)
	if err != nil {
		internalError(w, err)
		return
	}
	page := q.page(total)
	filter.Limit, filter.Offset = page.PerPage, page.Offset()
	purchases, err := stores.PurchaseStore.List(r.Context(), filter)
	if err != nil {
		internalError(w, err)
		return
	}
	writeList(w, purchases, page)
}

// handleGetPurchase handles GET /purchases/{id}
func handleGetPurchase(w http.ResponseWriter, r *http.Request) {
	p, err := stores.PurchaseStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleCreatePurchase handles POST /purchases
func handleCreatePurchase(w http.ResponseWriter, r *http.Request) {
	var p purchase.Purchase
	if !decodeOrReject(w, r, &p) {
		return
	}
	saved, err := orchestrators.ExecuteCreatePurchase(r.Context(), orchestrators.CreatePurchaseInput{
		Purchase: p,
		Actor:    actor(r),
	}, orchestrators.CreatePurchaseDeps{
		PurchaseStore: stores.PurchaseStore,
		ProductStore:  stores.ProductStore,
		Audit:         stores.AuditStore,
		GenerateID:    generateID,
		Now:           timeNow,
	})
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// handleDeletePurchase handles DELETE /purchases/{id}. Stock is left as is.
func handleDeletePurchase(w http.ResponseWriter, r *http.Request) {
	deleteRecord(w, r, "purchase", audit.CategoryInventory, stores.PurchaseStore)
}

// --- Wastage and return vouchers ---

// handleListVouchers handles GET /wastage-return. ?type is wastage or return.
func handleListVouchers(w http.ResponseWriter, r *http.Request) {
	q := parseList(r, nil, "type")
	filter := wastageStore.ListFilter{Type: q.filter("type"), Search: q.Search}
	total, err := stores.WastageStore.Count(r.Context(), filter)
	if err != nil {
		internalError(w, err)
		return
	}
	page := q.page(total)
	filter.Limit, filter.Offset = page.PerPage, page.Offset()
	vouchers, err := stores.WastageStore.List(r.Context(), filter)
	if err != nil {
		internalError(w, err)
		return
	}
	writeList(w, vouchers, page)
}

// handleGetVoucher handles GET /wastage-return/{id}
func handleGetVoucher(w http.ResponseWriter, r *http.Request) {
	v, err := stores.WastageStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// handleCreateVoucher handles POST /wastage-return
func handleCreateVoucher(w http.ResponseWriter, r *http.Request) {
	var v wastage.Voucher
	if !decodeOrReject(w, r, &v) {
		return
	}
	saved, err := orchestrators.ExecuteCreateVoucher(r.Context(), orchestrators.CreateVoucherInput{
		Voucher: v,
		Actor:   actor(r),
	}, orchestrators.CreateVoucherDeps{
		VoucherStore: stores.WastageStore,
		ProductStore: stores.ProductStore,
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

// handleDeleteVoucher handles DELETE /wastage-return/{id}
func handleDeleteVoucher(w http.ResponseWriter, r *http.Request) {
	deleteRecord(w, r, "voucher", audit.CategoryInventory, stores.WastageStore)
}
