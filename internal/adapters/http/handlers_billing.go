package web

import (
	"net/http"

	"github.com/shopspring/decimal"

	billingStore "gymbios/internal/adapters/storage/billing"
	"gymbios/internal/application/orchestrators"
	"gymbios/internal/domain/audit"
	"gymbios/internal/domain/billing"
)

func billingDeps() orchestrators.BillingDeps {
	return orchestrators.BillingDeps{
		BillStore:   stores.BillStore,
		MemberStore: stores.MemberStore,
		PlanStore:   stores.PlanStore,
		Audit:       stores.AuditStore,
		GenerateID:  generateID,
		Now:         timeNow,
	}
}

// handleListBills handles GET /api/billing/bills
// Filters: member_id, status, month (YYYY-MM), q.
func handleListBills(w http.ResponseWriter, r *http.Request) {
	q := parseList(r, nil, "member_id", "status", "month")
	filter := billingStore.ListFilter{
		MemberID: q.filter("member_id"),
		Status:   q.filter("status"),
		Month:    q.filter("month"),
		Search:   q.Search,
	}
	total, err := stores.BillStore.Count(r.Context(), filter)
	if err != nil {
		internalError(w, err)
		return
	}
	page := q.page(total)
	filter.Limit, filter.Offset = page.PerPage, page.Offset()
	bills, err := stores.BillStore.List(r.Context(), filter)
	if err != nil {
		internalError(w, err)
		return
	}
	writeList(w, bills, page)
}

// handleGetBill handles GET /api/billing/bills/{id}
func handleGetBill(w http.ResponseWriter, r *http.Request) {
	b, err := stores.BillStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// handleCreateBill handles POST /api/billing/bills.
// A bill linked to a member on a plan also renews the membership.
func handleCreateBill(w http.ResponseWriter, r *http.Request) {
	var b billing.Bill
	if !decodeOrReject(w, r, &b) {
		return
	}
	b.ID = ""
	saved, err := orchestrators.ExecuteCreateBill(r.Context(), orchestrators.SaveBillInput{
		Bill:  b,
		Actor: actor(r),
	}, billingDeps())
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// handleUpdateBill handles PUT /api/billing/bills/{id}
func handleUpdateBill(w http.ResponseWriter, r *http.Request) {
	var b billing.Bill
	if !decodeOrReject(w, r, &b) {
		return
	}
	b.ID = r.PathValue("id")
	saved, err := orchestrators.ExecuteUpdateBill(r.Context(), orchestrators.SaveBillInput{
		Bill:  b,
		Actor: actor(r),
	}, billingDeps())
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// handleDeleteBill handles DELETE /api/billing/bills/{id}
func handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	deleteRecord(w, r, "bill", audit.CategoryBilling, stores.BillStore)
}

// handleRecordPayment handles POST /api/billing/bills/{id}/payments
func handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount      decimal.Decimal `json:"amount"`
		PaymentMode string          `json:"payment_mode"`
	}
	if !decodeOrReject(w, r, &req) {
		return
	}
	b, err := orchestrators.ExecuteRecordBillPayment(r.Context(), orchestrators.RecordBillPaymentInput{
		BillID:      r.PathValue("id"),
		Amount:      req.Amount,
		PaymentMode: req.PaymentMode,
		Actor:       actor(r),
	}, billingDeps())
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}
