package web

import (
	"net/http"

	"gymbios/internal/adapters/http/middleware"
	"gymbios/internal/domain/account"
)

var (
	anyRole        = account.AllRoles
	adminOrManager = account.ManagerRoles
	adminOnly      = account.AdminRoles
)

// route registers h behind RequireRole for the given roles.
func route(mux *http.ServeMux, pattern string, h http.HandlerFunc, roles []string) {
	mux.Handle(pattern, middleware.RequireRole(roles...)(h))
}

// registerRoutes wires every endpoint group. Patterns use method matching,
// so a wrong method answers 405 from the mux itself.
func registerRoutes(mux *http.ServeMux) {
	// Auth and pages
	mux.HandleFunc("POST /api/auth/login", handleAPILogin)
	mux.HandleFunc("GET /login", handleLoginPage)
	mux.HandleFunc("POST /login", handleLoginForm)
	mux.HandleFunc("POST /logout", handleLogout)
	route(mux, "POST /api/auth/logout", handleAPILogout, anyRole)
	route(mux, "GET /api/auth/me", handleMe, anyRole)
	route(mux, "POST /api/auth/password", handleChangePassword, anyRole)
	route(mux, "GET /{$}", handleHome, anyRole)
	route(mux, "GET /dashboard", handleDashboardPage, anyRole)
	route(mux, "GET /reports/community", handleCommunityReportPage, adminOrManager)

	// Accounts
	route(mux, "GET /api/accounts", handleListAccounts, adminOnly)
	route(mux, "POST /api/accounts", handleCreateAccount, adminOnly)

	// Members
	route(mux, "GET /api/members", handleListMembers, anyRole)
	route(mux, "POST /api/members", handleCreateMember, anyRole)
	route(mux, "POST /api/members/import", handleImportMembers, adminOrManager)
	route(mux, "GET /api/members/{id}", handleGetMember, anyRole)
	route(mux, "PUT /api/members/{id}", handleUpdateMember, anyRole)
	route(mux, "DELETE /api/members/{id}", handleDeleteMember, anyRole)

	// Plans
	route(mux, "GET /api/plans", handleListPlans, anyRole)
	route(mux, "POST /api/plans", handleSavePlan, adminOrManager)
	route(mux, "GET /api/plans/{id}", handleGetPlan, anyRole)
	route(mux, "PUT /api/plans/{id}", handleSavePlan, adminOrManager)
	route(mux, "DELETE /api/plans/{id}", handleDeletePlan, adminOrManager)

	// Categories
	route(mux, "GET /api/categories", handleListCategories, anyRole)
	route(mux, "POST /api/categories", handleSaveCategory, anyRole)
	route(mux, "GET /api/categories/{id}", handleGetCategory, anyRole)
	route(mux, "PUT /api/categories/{id}", handleSaveCategory, anyRole)
	route(mux, "DELETE /api/categories/{id}", handleDeleteCategory, anyRole)

	// Products
	route(mux, "GET /products", handleListProducts, anyRole)
	route(mux, "POST /products", handleSaveProduct, anyRole)
	route(mux, "GET /products/low-stock", handleLowStock, anyRole)
	route(mux, "GET /products/{id}", handleGetProduct, anyRole)
	route(mux, "PUT /products/{id}", handleSaveProduct, anyRole)
	route(mux, "DELETE /products/{id}", handleDeleteProduct, anyRole)

	// Purchase orders
	route(mux, "GET /purchase-orders", handleListPurchaseOrders, adminOrManager)
	route(mux, "POST /purchase-orders", handleSavePurchaseOrder, adminOrManager)
	route(mux, "GET /purchase-orders/{id}", handleGetPurchaseOrder, adminOrManager)
	route(mux, "PUT /purchase-orders/{id}", handleSavePurchaseOrder, adminOrManager)
	route(mux, "DELETE /purchase-orders/{id}", handleDeletePurchaseOrder, adminOrManager)
	route(mux, "POST /purchase-orders/{id}/approve", handleTransitionPurchaseOrder, adminOrManager)
	route(mux, "POST /purchase-orders/{id}/cancel", handleTransitionPurchaseOrder, adminOrManager)
	route(mux, "POST /purchase-orders/{id}/receive", handleReceivePurchaseOrder, adminOrManager)

	// Purchases
	route(mux, "GET /purchases", handleListPurchases, adminOrManager)
	route(mux, "POST /purchases", handleCreatePurchase, adminOrManager)
	route(mux, "GET /purchases/{id}", handleGetPurchase, adminOrManager)
	route(mux, "DELETE /purchases/{id}", handleDeletePurchase, adminOrManager)

	// Wastage and return vouchers
	route(mux, "GET /wastage-return", handleListVouchers, adminOrManager)
	route(mux, "POST /wastage-return", handleCreateVoucher, adminOrManager)
	route(mux, "GET /wastage-return/{id}", handleGetVoucher, adminOrManager)
	route(mux, "DELETE /wastage-return/{id}", handleDeleteVoucher, adminOrManager)

	// Billing
	route(mux, "GET /api/billing/bills", handleListBills, anyRole)
	route(mux, "POST /api/billing/bills", handleCreateBill, anyRole)
	route(mux, "GET /api/billing/bills/{id}", handleGetBill, anyRole)
	route(mux, "PUT /api/billing/bills/{id}", handleUpdateBill, anyRole)
	route(mux, "DELETE /api/billing/bills/{id}", handleDeleteBill, anyRole)
	route(mux, "POST /api/billing/bills/{id}/payments", handleRecordPayment, anyRole)

	// Streams and bookings
	route(mux, "GET /streams", handleListStreams, anyRole)
	route(mux, "POST /streams", handleSaveStream, anyRole)
	route(mux, "GET /streams/{id}", handleGetStream, anyRole)
	route(mux, "PUT /streams/{id}", handleSaveStream, anyRole)
	route(mux, "DELETE /streams/{id}", handleDeleteStream, anyRole)
	route(mux, "GET /streams/{id}/bookings", handleListBookings, anyRole)
	route(mux, "POST /streams/{id}/bookings", handleBookStream, anyRole)
	route(mux, "POST /bookings/{id}/cancel", handleCancelBooking, anyRole)

	// Referrals and reward rules
	route(mux, "GET /api/referrals", handleListReferrals, anyRole)
	route(mux, "POST /api/referrals", handleSaveReferral, anyRole)
	route(mux, "GET /api/referrals/{id}", handleGetReferral, anyRole)
	route(mux, "PUT /api/referrals/{id}", handleSaveReferral, anyRole)
	route(mux, "DELETE /api/referrals/{id}", handleDeleteReferral, anyRole)
	route(mux, "POST /api/referrals/{id}/convert", handleConvertReferral, anyRole)
	route(mux, "GET /api/reward-rules", handleListRewardRules, anyRole)
	route(mux, "POST /api/reward-rules", handleSaveRewardRule, adminOrManager)
	route(mux, "PUT /api/reward-rules/{id}", handleSaveRewardRule, adminOrManager)
	route(mux, "DELETE /api/reward-rules/{id}", handleDeleteRewardRule, adminOrManager)

	// Salary
	route(mux, "GET /salary/employees", handleSalaryEmployees, adminOnly)
	route(mux, "GET /salary/payments", handleListSalaryPayments, adminOnly)
	route(mux, "POST /salary/payments", handlePaySalary, adminOnly)
	route(mux, "GET /salary/payments/recent", handleRecentSalaryPayments, adminOnly)
	route(mux, "GET /salary/summary", handleSalarySummary, adminOnly)

	// Staff
	route(mux, "GET /api/staff", handleListStaff, adminOnly)
	route(mux, "POST /api/staff", handleSaveStaff, adminOnly)
	route(mux, "GET /api/staff/{id}", handleGetStaff, adminOnly)
	route(mux, "PUT /api/staff/{id}", handleSaveStaff, adminOnly)
	route(mux, "DELETE /api/staff/{id}", handleDeleteStaff, adminOnly)

	// Reports
	route(mux, "GET /api/community-reports", handleCommunityReport, adminOrManager)
	route(mux, "GET /api/community-reports/export", handleCommunityReportExport, adminOrManager)
	route(mux, "GET /api/dashboard", handleDashboard, anyRole)
	route(mux, "GET /api/reports/stock", handleStockReport, adminOrManager)

	// Interests
	route(mux, "GET /api/interests", handleListInterests, anyRole)
	route(mux, "POST /api/interests", handleSaveInterest, anyRole)
	route(mux, "GET /api/interests/{id}", handleGetInterest, anyRole)
	route(mux, "PUT /api/interests/{id}", handleSaveInterest, anyRole)
	route(mux, "DELETE /api/interests/{id}", handleDeleteInterest, anyRole)

	// Point of sale
	route(mux, "GET /api/pos/products", handlePOSProducts, anyRole)
	route(mux, "GET /api/pos/sales", handleListSales, anyRole)
	route(mux, "POST /api/pos/sales", handleCreateSale, anyRole)
	route(mux, "GET /api/pos/sales/{id}", handleGetSale, anyRole)

	route(mux, "GET /api/menu", handleMenu, anyRole)

	// Admin
	route(mux, "GET /api/admin/audit", handleAdminAudit, adminOnly)
	route(mux, "GET /api/admin/outbox", handleAdminOutbox, adminOnly)
	route(mux, "POST /api/admin/outbox/{id}/retry", handleAdminOutboxRetry, adminOnly)
	route(mux, "POST /api/admin/outbox/{id}/abandon", handleAdminOutboxAbandon, adminOnly)
	route(mux, "GET /api/admin/perf", handleAdminPerf, adminOnly)
}
