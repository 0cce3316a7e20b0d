package apiclient

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"gymbios/internal/adapters/http/perf"
	"gymbios/internal/application/orchestrators"
	"gymbios/internal/application/projections"
	"gymbios/internal/domain/audit"
	"gymbios/internal/domain/billing"
	"gymbios/internal/domain/member"
	"gymbios/internal/domain/outbox"
	"gymbios/internal/domain/plan"
	"gymbios/internal/domain/pos"
	"gymbios/internal/domain/product"
	"gymbios/internal/domain/purchaseorder"
	"gymbios/internal/domain/referral"
	"gymbios/internal/domain/salary"
	"gymbios/internal/domain/stream"
)

// LoginResponse is the body of POST /api/auth/login.
type LoginResponse struct {
	Token                  string `json:"token"`
	AccountID              string `json:"account_id"`
	Email                  string `json:"email"`
	Role                   string `json:"role"`
	PasswordChangeRequired bool   `json:"password_change_required"`
}

// Login exchanges credentials for a token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	var resp LoginResponse
	err := c.post(ctx, "/api/auth/login", map[string]string{"email": email, "password": password}, &resp)
	if err == nil {
		c.Token = resp.Token
	}
	return resp, err
}

// Me returns the account behind the current token.
func (c *Client) Me(ctx context.Context) (map[string]string, error) {
	var me map[string]string
	err := c.get(ctx, "/api/auth/me", nil, &me)
	return me, err
}

// Logout ends the session behind the current token.
func (c *Client) Logout(ctx context.Context) error {
	return c.post(ctx, "/api/auth/logout", nil, nil)
}

// --- Members ---

// ListMembers passes query through: page, per_page, q, status, plan_id, sort, dir.
func (c *Client) ListMembers(ctx context.Context, query url.Values) (Page[projections.MemberRow], error) {
	return list[projections.MemberRow](ctx, c, "/api/members", query)
}

func (c *Client) GetMember(ctx context.Context, id string) (member.Member, error) {
	var m member.Member
	err := c.get(ctx, "/api/members/"+escape(id), nil, &m)
	return m, err
}

// SaveMember creates m when it has no ID and updates it otherwise.
func (c *Client) SaveMember(ctx context.Context, m member.Member) (member.Member, error) {
	var saved member.Member
	if m.ID == "" {
		err := c.post(ctx, "/api/members", m, &saved)
		return saved, err
	}
	err := c.put(ctx, "/api/members/"+escape(m.ID), m, &saved)
	return saved, err
}

// ImportMembers uploads a member CSV. dryRun validates without writing; update
// overwrites members matched by email or phone instead of skipping them.
func (c *Client) ImportMembers(ctx context.Context, csv io.Reader, dryRun, update bool) (orchestrators.ImportMembersResult, error) {
	var result orchestrators.ImportMembersResult
	query := url.Values{
		"dry_run": {strconv.FormatBool(dryRun)},
		"update":  {strconv.FormatBool(update)},
	}
	resp, err := c.send(ctx, http.MethodPost, "/api/members/import", query, csv, "text/csv")
	if err != nil {
		return result, err
	}
	err = decodeBody(resp, http.MethodPost, "/api/members/import", &result)
	return result, err
}

func (c *Client) DeleteMember(ctx context.Context, id string) error {
	return c.delete(ctx, "/api/members/"+escape(id))
}

// --- Catalog ---

func (c *Client) ListPlans(ctx context.Context, activeOnly bool) ([]plan.Plan, error) {
	query := url.Values{}
	if activeOnly {
		query.Set("active", "true")
	}
	p, err := list[plan.Plan](ctx, c, "/api/plans", query)
	return p.Items, err
}

func (c *Client) ListProducts(ctx context.Context, query url.Values) (Page[product.Product], error) {
	return list[product.Product](ctx, c, "/products", query)
}

func (c *Client) LowStock(ctx context.Context) ([]product.Product, error) {
	p, err := list[product.Product](ctx, c, "/products/low-stock", nil)
	return p.Items, err
}

// --- Inventory ---

func (c *Client) ListPurchaseOrders(ctx context.Context, query url.Values) (Page[purchaseorder.PurchaseOrder], error) {
	return list[purchaseorder.PurchaseOrder](ctx, c, "/purchase-orders", query)
}

// TransitionPurchaseOrder posts to /purchase-orders/{id}/{transition}: approve or cancel.
func (c *Client) TransitionPurchaseOrder(ctx context.Context, id, transition string) (purchaseorder.PurchaseOrder, error) {
	var po purchaseorder.PurchaseOrder
	err := c.post(ctx, "/purchase-orders/"+escape(id)+"/"+escape(transition), nil, &po)
	return po, err
}

// ReceivePurchaseOrder books the order's goods into stock as a purchase.
func (c *Client) ReceivePurchaseOrder(ctx context.Context, id, invoiceNo string) (orchestrators.ReceivePurchaseOrderResult, error) {
	var result orchestrators.ReceivePurchaseOrderResult
	var body any
	if invoiceNo != "" {
		body = map[string]string{"invoice_no": invoiceNo}
	}
	err := c.post(ctx, "/purchase-orders/"+escape(id)+"/receive", body, &result)
	return result, err
}

// --- Billing ---

func (c *Client) ListBills(ctx context.Context, query url.Values) (Page[billing.Bill], error) {
	return list[billing.Bill](ctx, c, "/api/billing/bills", query)
}

func (c *Client) CreateBill(ctx context.Context, b billing.Bill) (billing.Bill, error) {
	var saved billing.Bill
	err := c.post(ctx, "/api/billing/bills", b, &saved)
	return saved, err
}

func (c *Client) RecordPayment(ctx context.Context, billID string, amount decimal.Decimal, mode string) (billing.Bill, error) {
	var b billing.Bill
	err := c.post(ctx, "/api/billing/bills/"+escape(billID)+"/payments", map[string]any{
		"amount":       amount,
		"payment_mode": mode,
	}, &b)
	return b, err
}

// --- Point of sale ---

func (c *Client) CreateSale(ctx context.Context, s pos.Sale) (pos.Sale, error) {
	var saved pos.Sale
	err := c.post(ctx, "/api/pos/sales", s, &saved)
	return saved, err
}

// --- Streams and referrals ---

func (c *Client) ListStreams(ctx context.Context, query url.Values) (Page[stream.Stream], error) {
	return list[stream.Stream](ctx, c, "/streams", query)
}

func (c *Client) BookStream(ctx context.Context, streamID, memberID string) (stream.Booking, error) {
	var b stream.Booking
	err := c.post(ctx, "/streams/"+escape(streamID)+"/bookings", map[string]string{"member_id": memberID}, &b)
	return b, err
}

func (c *Client) ListReferrals(ctx context.Context, query url.Values) (Page[referral.Referral], error) {
	return list[referral.Referral](ctx, c, "/api/referrals", query)
}

// ConvertReferral records that the referred person joined as memberID.
func (c *Client) ConvertReferral(ctx context.Context, id, memberID string) (orchestrators.ConvertReferralResult, error) {
	var result orchestrators.ConvertReferralResult
	err := c.post(ctx, "/api/referrals/"+escape(id)+"/convert", map[string]string{"member_id": memberID}, &result)
	return result, err
}

// --- Salary ---

func (c *Client) SalaryEmployees(ctx context.Context) ([]projections.SalaryEmployee, error) {
	p, err := list[projections.SalaryEmployee](ctx, c, "/salary/employees", nil)
	return p.Items, err
}

func (c *Client) SalarySummary(ctx context.Context, staffID, month string) (projections.SalarySummary, error) {
	query := url.Values{}
	if staffID != "" {
		query.Set("staff_id", staffID)
	}
	if month != "" {
		query.Set("month", month)
	}
	var s projections.SalarySummary
	err := c.get(ctx, "/salary/summary", query, &s)
	return s, err
}

func (c *Client) RecentSalaryPayments(ctx context.Context, limit int) ([]salary.Payment, error) {
	p, err := list[salary.Payment](ctx, c, "/salary/payments/recent", url.Values{"limit": {strconv.Itoa(limit)}})
	return p.Items, err
}

// --- Reports ---

func (c *Client) Dashboard(ctx context.Context) (projections.DashboardResult, error) {
	var d projections.DashboardResult
	err := c.get(ctx, "/api/dashboard", nil, &d)
	return d, err
}

func (c *Client) CommunityReport(ctx context.Context) (projections.CommunityReportResult, error) {
	var r projections.CommunityReportResult
	err := c.get(ctx, "/api/community-reports", nil, &r)
	return r, err
}

func (c *Client) StockReport(ctx context.Context, categoryID string) (projections.StockReport, error) {
	query := url.Values{}
	if categoryID != "" {
		query.Set("category_id", categoryID)
	}
	var r projections.StockReport
	err := c.get(ctx, "/api/reports/stock", query, &r)
	return r, err
}

// --- Admin ---

// ListAudit passes query through: category, action, actor_id, resource_type, resource_id, from, to, limit.
func (c *Client) ListAudit(ctx context.Context, query url.Values) ([]audit.Event, error) {
	p, err := list[audit.Event](ctx, c, "/api/admin/audit", query)
	return p.Items, err
}

// ListOutbox lists entries in status; "" means failed and "all" means every status.
func (c *Client) ListOutbox(ctx context.Context, status string) ([]outbox.Entry, error) {
	query := url.Values{}
	if status != "" {
		query.Set("status", status)
	}
	p, err := list[outbox.Entry](ctx, c, "/api/admin/outbox", query)
	return p.Items, err
}

func (c *Client) RetryOutbox(ctx context.Context, id string) (outbox.Entry, error) {
	var e outbox.Entry
	err := c.post(ctx, "/api/admin/outbox/"+escape(id)+"/retry", nil, &e)
	return e, err
}

func (c *Client) AbandonOutbox(ctx context.Context, id string) error {
	return c.post(ctx, "/api/admin/outbox/"+escape(id)+"/abandon", nil, nil)
}

func (c *Client) Perf(ctx context.Context, minutes, top int) (perf.Snapshot, error) {
	var s perf.Snapshot
	err := c.get(ctx, "/api/admin/perf", url.Values{
		"minutes": {strconv.Itoa(minutes)},
		"top":     {strconv.Itoa(top)},
	}, &s)
	return s, err
}
