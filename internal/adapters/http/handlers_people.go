package web

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	interestStore "gymbios/internal/adapters/storage/interest"
	salaryStore "gymbios/internal/adapters/storage/salary"
	staffStore "gymbios/internal/adapters/storage/staff"
	"gymbios/internal/application/listutil"
	"gymbios/internal/application/orchestrators"
	"gymbios/internal/application/projections"
	"gymbios/internal/domain/audit"
	"gymbios/internal/domain/interest"
	"gymbios/internal/domain/staff"
)

// --- Staff ---

// handleListStaff handles GET /api/staff
// Filters: status, role, q.
func handleListStaff(w http.ResponseWriter, r *http.Request) {
	q := parseList(r, nil, "status", "role")
	filter := staffStore.ListFilter{Status: q.filter("status"), Role: q.filter("role"), Search: q.Search}
	total, err := stores.StaffStore.Count(r.Context(), filter)
	if err != nil {
		internalError(w, err)
		return
	}
	page := q.page(total)
	filter.Limit, filter.Offset = page.PerPage, page.Offset()
	employees, err := stores.StaffStore.List(r.Context(), filter)
	if err != nil {
		internalError(w, err)
		return
	}
	writeList(w, employees, page)
}

// handleGetStaff handles GET /api/staff/{id}
func handleGetStaff(w http.ResponseWriter, r *http.Request) {
	s, err := stores.StaffStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// handleSaveStaff handles POST /api/staff and PUT /api/staff/{id}
func handleSaveStaff(w http.ResponseWriter, r *http.Request) {
	var s staff.Staff
	if !decodeOrReject(w, r, &s) {
		return
	}
	s.ID = r.PathValue("id")
	saved, err := orchestrators.ExecuteSaveStaff(r.Context(), orchestrators.SaveStaffInput{
		Staff: s,
		Actor: actor(r),
	}, orchestrators.SaveStaffDeps{
		StaffStore: stores.StaffStore,
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

// handleDeleteStaff handles DELETE /api/staff/{id}
func handleDeleteStaff(w http.ResponseWriter, r *http.Request) {
	deleteRecord(w, r, "staff", audit.CategoryStaff, stores.StaffStore)
}

// --- Salary ---

func salaryDeps() projections.SalaryDeps {
	return projections.SalaryDeps{StaffStore: stores.StaffStore, SalaryStore: stores.SalaryStore, Now: timeNow}
}

// handleSalaryEmployees handles GET /salary/employees
func handleSalaryEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := projections.QuerySalaryEmployees(r.Context(), salaryDeps())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listutil.Whole(employees))
}

// handleListSalaryPayments handles GET /salary/payments
// Filters: staff_id, month (YYYY-MM).
func handleListSalaryPayments(w http.ResponseWriter, r *http.Request) {
	q := parseList(r, nil, "staff_id", "month")
	filter := salaryStore.ListFilter{StaffID: q.filter("staff_id"), Month: q.filter("month")}
	total, err := stores.SalaryStore.Count(r.Context(), filter)
	if err != nil {
		internalError(w, err)
		return
	}
	page := q.page(total)
	filter.Limit, filter.Offset = page.PerPage, page.Offset()
	payments, err := stores.SalaryStore.List(r.Context(), filter)
	if err != nil {
		internalError(w, err)
		return
	}
	writeList(w, payments, page)
}

type paySalaryRequest struct {
	StaffID     string          `json:"staff_id"`
	Month       string          `json:"month"`
	BaseSalary  decimal.Decimal `json:"base_salary"`
	Bonus       decimal.Decimal `json:"bonus"`
	Deductions  decimal.Decimal `json:"deductions"`
	PaymentMode string          `json:"payment_mode"`
	Notes       string          `json:"notes"`
}

// handlePaySalary handles POST /salary/payments.
// A zero base_salary falls back to the employee's recorded salary.
func handlePaySalary(w http.ResponseWriter, r *http.Request) {
	var req paySalaryRequest
	if !decodeOrReject(w, r, &req) {
		return
	}
	p, err := orchestrators.ExecutePaySalary(r.Context(), orchestrators.PaySalaryInput{
		StaffID:     req.StaffID,
		Month:       req.Month,
		BaseSalary:  req.BaseSalary,
		Bonus:       req.Bonus,
		Deductions:  req.Deductions,
		PaymentMode: req.PaymentMode,
		Notes:       req.Notes,
		Actor:       actor(r),
	}, orchestrators.PaySalaryDeps{
		SalaryStore: stores.SalaryStore,
		StaffStore:  stores.StaffStore,
		Audit:       stores.AuditStore,
		Notify:      notifyDeps(),
		GenerateID:  generateID,
		Now:         timeNow,
	})
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// handleRecentSalaryPayments handles GET /salary/payments/recent?limit=N
func handleRecentSalaryPayments(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 {
		limit = projections.DefaultRecentPayments
	}
	payments, err := projections.QueryRecentSalaryPayments(r.Context(), limit, salaryDeps())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listutil.Whole(payments))
}

// handleSalarySummary handles GET /salary/summary?staff_id=&month=
func handleSalarySummary(w http.ResponseWriter, r *http.Request) {
	summary, err := projections.QuerySalarySummary(r.Context(), projections.SalarySummaryQuery{
		StaffID: r.URL.Query().Get("staff_id"),
		Month:   r.URL.Query().Get("month"),
	}, salaryDeps())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// --- Interests ---

// handleListInterests handles GET /api/interests
func handleListInterests(w http.ResponseWriter, r *http.Request) {
	q := parseList(r, nil, "status")
	filter := interestStore.ListFilter{Status: q.filter("status"), Search: q.Search}
	total, err := stores.InterestStore.Count(r.Context(), filter)
	if err != nil {
		internalError(w, err)
		return
	}
	page := q.page(total)
	filter.Limit, filter.Offset = page.PerPage, page.Offset()
	interests, err := stores.InterestStore.List(r.Context(), filter)
	if err != nil {
		internalError(w, err)
		return
	}
	writeList(w, interests, page)
}

// handleGetInterest handles GET /api/interests/{id}
func handleGetInterest(w http.ResponseWriter, r *http.Request) {
	i, err := stores.InterestStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, i)
}

// handleSaveInterest handles POST /api/interests and PUT /api/interests/{id}
func handleSaveInterest(w http.ResponseWriter, r *http.Request) {
	var i interest.Interest
	if !decodeOrReject(w, r, &i) {
		return
	}
	i.ID = r.PathValue("id")
	saved, err := orchestrators.ExecuteSaveInterest(r.Context(), orchestrators.SaveInterestInput{
		Interest: i,
		Actor:    actor(r),
	}, orchestrators.SaveInterestDeps{
		InterestStore: stores.InterestStore,
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

// handleDeleteInterest handles DELETE /api/interests/{id}
func handleDeleteInterest(w http.ResponseWriter, r *http.Request) {
	deleteRecord(w, r, "interest", audit.CategoryEngage, stores.InterestStore)
}
