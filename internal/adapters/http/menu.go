package web

import (
	"net/http"
	"slices"

	"gymbios/internal/adapters/http/middleware"
)

// MenuItem is one sidebar link. Roles lists who may see it; empty means everyone.
type MenuItem struct {
	Label string   `json:"label"`
	Path  string   `json:"path"`
	Icon  string   `json:"icon"`
	Roles []string `json:"-"`
}

// MenuSection groups sidebar links under a heading.
type MenuSection struct {
	Title string     `json:"title"`
	Items []MenuItem `json:"items"`
}

// Menu is the full sidebar. Paths name dashboard routes, not API endpoints.
var Menu = []MenuSection{
	{Title: "Overview", Items: []MenuItem{
		{Label: "Dashboard", Path: "/dashboard", Icon: "home"},
		{Label: "Community report", Path: "/reports/community", Icon: "chart", Roles: adminOrManager},
		{Label: "Stock report", Path: "/reports/stock", Icon: "boxes", Roles: adminOrManager},
	}},
	{Title: "Members", Items: []MenuItem{
		{Label: "Members", Path: "/members", Icon: "users"},
		{Label: "Plans", Path: "/plans", Icon: "tag"},
		{Label: "Billing", Path: "/billing", Icon: "receipt"},
		{Label: "Referrals", Path: "/referrals", Icon: "gift"},
		{Label: "Reward rules", Path: "/reward-rules", Icon: "star", Roles: adminOrManager},
		{Label: "Interests", Path: "/interests", Icon: "inbox"},
	}},
	{Title: "Training", Items: []MenuItem{
		{Label: "Streams", Path: "/streams", Icon: "video"},
	}},
	{Title: "Inventory", Items: []MenuItem{
		{Label: "Point of sale", Path: "/pos", Icon: "cart"},
		{Label: "Products", Path: "/products", Icon: "box"},
		{Label: "Categories", Path: "/categories", Icon: "folder"},
		{Label: "Purchase orders", Path: "/purchase-orders", Icon: "clipboard", Roles: adminOrManager},
		{Label: "Purchases", Path: "/purchases", Icon: "truck", Roles: adminOrManager},
		{Label: "Wastage & returns", Path: "/wastage-return", Icon: "trash", Roles: adminOrManager},
	}},
	{Title: "Staff", Items: []MenuItem{
		{Label: "Staff", Path: "/staff", Icon: "id-card", Roles: adminOnly},
		{Label: "Salary", Path: "/salary", Icon: "wallet", Roles: adminOnly},
		{Label: "Accounts", Path: "/accounts", Icon: "key", Roles: adminOnly},
	}},
	{Title: "Admin", Items: []MenuItem{
		{Label: "Audit log", Path: "/admin/audit", Icon: "list", Roles: adminOnly},
		{Label: "Email outbox", Path: "/admin/outbox", Icon: "mail", Roles: adminOnly},
		{Label: "Performance", Path: "/admin/perf", Icon: "gauge", Roles: adminOnly},
	}},
}

// MenuFor returns the sections visible to role, dropping sections left empty.
func MenuFor(role string) []MenuSection {
	out := make([]MenuSection, 0, len(Menu))
	for _, section := range Menu {
		var items []MenuItem
		for _, item := range section.Items {
			if len(item.Roles) == 0 || slices.Contains(item.Roles, role) {
				items = append(items, item)
			}
		}
		if len(items) > 0 {
			out = append(out, MenuSection{Title: section.Title, Items: items})
		}
	}
	return out
}

// handleMenu handles GET /api/menu
func handleMenu(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	writeJSON(w, http.StatusOK, MenuFor(sess.Role))
}
