package web

import (
	"bytes"
	"net/http"

	"gymbios/internal/adapters/export"
	"gymbios/internal/application/orchestrators"
	"gymbios/internal/application/projections"
	"gymbios/internal/domain/dates"
)

func communityReport(r *http.Request) (projections.CommunityReportResult, error) {
	return projections.QueryCommunityReport(r.Context(), projections.CommunityReportDeps{
		MemberStore: stores.MemberStore,
		BillStore:   stores.BillStore,
		PlanStore:   stores.PlanStore,
		Now:         timeNow,
	})
}

func dashboard(r *http.Request) (projections.DashboardResult, error) {
	return projections.QueryGetDashboard(r.Context(), projections.GetDashboardDeps{
		MemberStore:   stores.MemberStore,
		BillStore:     stores.BillStore,
		ProductStore:  stores.ProductStore,
		StreamStore:   stores.StreamStore,
		InterestStore: stores.InterestStore,
		Now:           timeNow,
	})
}

// handleCommunityReport handles GET /api/community-reports
func handleCommunityReport(w http.ResponseWriter, r *http.Request) {
	report, err := communityReport(r)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleCommunityReportPage handles GET /reports/community
func handleCommunityReportPage(w http.ResponseWriter, r *http.Request) {
	report, err := communityReport(r)
	if err != nil {
		internalError(w, err)
		return
	}
	renderTemplate(w, r, http.StatusOK, "community_report.html", report)
}

// handleCommunityReportExport handles GET /api/community-reports/export.
// The workbook has a Transactions, a Months and a Summary sheet.
func handleCommunityReportExport(w http.ResponseWriter, r *http.Request) {
	report, err := communityReport(r)
	if err != nil {
		internalError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, communityReportSheets(report)...); err != nil {
		internalError(w, err)
		return
	}
	orchestrators.RecordExport(r.Context(), stores.AuditStore, actor(r), timeNow(), "community_report",
		"community report xlsx")

	filename := "community-report-" + dates.Today(report.GeneratedAt) + ".xlsx"
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func communityReportSheets(report projections.CommunityReportResult) []export.Sheet {
	rows := make([][]any, 0, len(report.Rows))
	for _, row := range report.Rows {
		rows = append(rows, []any{
			row.Index, row.Date, row.MemberName, row.Phone, row.Email, row.PlanName, row.BillNo,
			row.Amount.InexactFloat64(), row.PaidAmount.InexactFloat64(), row.Status, row.Note,
		})
	}
	months := make([][]any, 0, len(report.Months))
	for _, m := range report.Months {
		months = append(months, []any{m.Month, m.Revenue.InexactFloat64(), m.BillCount, m.NewMembers})
	}
	s := report.Summary
	return []export.Sheet{
		{
			Name:   "Transactions",
			Header: []string{"#", "Date", "Member", "Phone", "Email", "Plan", "Bill No", "Amount", "Paid", "Status", "Note"},
			Rows:   rows,
			Widths: []float64{6, 12, 24, 16, 28, 18, 16, 12, 12, 10, 28},
		},
		{
			Name:   "Months",
			Header: []string{"Month", "Revenue", "Bills", "New members"},
			Rows:   months,
			Widths: []float64{10, 14, 8, 14},
		},
		{
			Name:   "Summary",
			Header: []string{"Metric", "Value"},
			Rows: [][]any{
				{"Total members", s.TotalMembers},
				{"Active members", s.ActiveMembers},
				{"Billed members", s.BilledMembers},
				{"Unbilled members", s.UnbilledMembers},
				{"Total revenue", s.TotalRevenue.InexactFloat64()},
				{"Average revenue", s.AverageRevenue.InexactFloat64()},
			},
			Widths: []float64{20, 14},
		},
	}
}

// handleDashboard handles GET /api/dashboard
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	result, err := dashboard(r)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleDashboardPage handles GET /dashboard
func handleDashboardPage(w http.ResponseWriter, r *http.Request) {
	result, err := dashboard(r)
	if err != nil {
		internalError(w, err)
		return
	}
	renderTemplate(w, r, http.StatusOK, "dashboard.html", result)
}

// handleStockReport handles GET /api/reports/stock?category_id=
func handleStockReport(w http.ResponseWriter, r *http.Request) {
	report, err := projections.QueryStockReport(r.Context(), r.URL.Query().Get("category_id"),
		projections.StockReportDeps{ProductStore: stores.ProductStore, CategoryStore: stores.CategoryStore})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
