package projections

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"gymbios/internal/adapters/storage"
	billingStore "gymbios/internal/adapters/storage/billing"
	interestStore "gymbios/internal/adapters/storage/interest"
	memberStore "gymbios/internal/adapters/storage/member"
	streamStore "gymbios/internal/adapters/storage/stream"
	"gymbios/internal/domain/dates"
	"gymbios/internal/domain/interest"
	"gymbios/internal/domain/stream"
)

// ExpiryWindowDays is how far ahead the dashboard looks for lapsing memberships.
const ExpiryWindowDays = 7

// UpcomingStreamDays is how far ahead the dashboard lists scheduled streams.
const UpcomingStreamDays = 7

// GetDashboardDeps holds dependencies for the dashboard projection.
type GetDashboardDeps struct {
	MemberStore   MemberStore
	BillStore     BillStore
	ProductStore  ProductStore
	StreamStore   StreamStore
	InterestStore InterestStore
	Now           func() time.Time
}

// DashboardResult carries the home-page cards.
type DashboardResult struct {
	TotalMembers     int             `json:"total_members"`
	ActiveMembers    int             `json:"active_members"`
	ExpiringSoon     int             `json:"expiring_soon"`
	RevenueThisMonth decimal.Decimal `json:"revenue_this_month"`
	BillsThisMonth   int             `json:"bills_this_month"`
	LowStockCount    int             `json:"low_stock_count"`
	UpcomingStreams  []stream.Stream `json:"upcoming_streams"`
	NewInterests     int             `json:"new_interests"`
	Warnings         []string        `json:"warnings,omitempty"`
}

// QueryGetDashboard aggregates the dashboard cards.
// Each source is read concurrently; a failed source leaves its cards at zero.
// PRE: deps stores are non-nil
// POST: Warnings names every source that failed
func QueryGetDashboard(ctx context.Context, deps GetDashboardDeps) (DashboardResult, error) {
	now := deps.Now()
	result := DashboardResult{RevenueThisMonth: decimal.Zero, UpcomingStreams: []stream.Stream{}}

	result.Warnings = loadSources(ctx, "dashboard",
		source{name: "members", load: func(ctx context.Context) error {
			members, err := deps.MemberStore.List(ctx, memberStore.ListFilter{Limit: storage.NoLimit})
			if err != nil {
				return err
			}
			result.TotalMembers = len(members)
			for _, m := range members {
				if !m.IsActive() {
					continue
				}
				result.ActiveMembers++
				if m.ExpiresWithin(now, ExpiryWindowDays) {
					result.ExpiringSoon++
				}
			}
			return nil
		}},
		source{name: "bills", load: func(ctx context.Context) error {
			bills, err := deps.BillStore.List(ctx, billingStore.ListFilter{Month: now.Format(dates.MonthLayout), Limit: storage.NoLimit})
			if err != nil {
				return err
			}
			revenue := decimal.Zero
			for _, b := range bills {
				revenue = revenue.Add(b.Total)
			}
			result.RevenueThisMonth = revenue
			result.BillsThisMonth = len(bills)
			return nil
		}},
		source{name: "products", load: func(ctx context.Context) error {
			low, err := deps.ProductStore.ListLowStock(ctx)
			result.LowStockCount = len(low)
			return err
		}},
		source{name: "streams", load: func(ctx context.Context) error {
			streams, err := deps.StreamStore.List(ctx, streamStore.ListFilter{
				Status: stream.StatusScheduled,
				From:   now,
				To:     now.AddDate(0, 0, UpcomingStreamDays),
			})
			if err != nil {
				return err
			}
			if streams != nil {
				result.UpcomingStreams = streams
			}
			return nil
		}},
		source{name: "interests", load: func(ctx context.Context) (err error) {
			result.NewInterests, err = deps.InterestStore.Count(ctx, interestStore.ListFilter{Status: interest.StatusNew})
			return err
		}},
	)
	return result, nil
}
