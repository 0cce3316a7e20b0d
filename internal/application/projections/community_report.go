package projections

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"gymbios/internal/adapters/storage"
	billingStore "gymbios/internal/adapters/storage/billing"
	memberStore "gymbios/internal/adapters/storage/member"
	"gymbios/internal/domain/billing"
	"gymbios/internal/domain/dates"
	"gymbios/internal/domain/member"
	"gymbios/internal/domain/plan"
)

// Report row kinds.
const (
	RowBilled    = "billed"
	RowNewMember = "new_member"
)

// NewMemberNote describes a member row that has no bill yet.
const NewMemberNote = "new member, no bill yet"

// ReportRow is one transaction line of the community report.
type ReportRow struct {
	Index      int             `json:"index"`
	Kind       string          `json:"kind"`
	Date       string          `json:"date"`
	MemberID   string          `json:"member_id"`
	MemberName string          `json:"member_name"`
	Phone      string          `json:"phone"`
	Email      string          `json:"email"`
	PlanName   string          `json:"plan_name"`
	BillID     string          `json:"bill_id,omitempty"`
	BillNo     string          `json:"bill_no,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	PaidAmount decimal.Decimal `json:"paid_amount"`
	Status     string          `json:"status"`
	Note       string          `json:"note,omitempty"`
}

// MonthlyAggregate summarizes one YYYY-MM of the report.
type MonthlyAggregate struct {
	Month      string          `json:"month"`
	Revenue    decimal.Decimal `json:"revenue"`
	BillCount  int             `json:"bill_count"`
	NewMembers int             `json:"new_members"`
}

// ReportSummary carries the summary cards.
type ReportSummary struct {
	TotalMembers    int             `json:"total_members"`
	ActiveMembers   int             `json:"active_members"`
	BilledMembers   int             `json:"billed_members"`
	UnbilledMembers int             `json:"unbilled_members"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	AverageRevenue  decimal.Decimal `json:"average_revenue"`
}

// CommunityReportResult carries the joined rows and their aggregates.
type CommunityReportResult struct {
	Rows        []ReportRow        `json:"rows"`
	Months      []MonthlyAggregate `json:"months"`
	Summary     ReportSummary      `json:"summary"`
	Warnings    []string           `json:"warnings,omitempty"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// CommunityReportDeps holds dependencies for QueryCommunityReport.
type CommunityReportDeps struct {
	MemberStore MemberStore
	BillStore   BillStore
	PlanStore   PlanStore
	Now         func() time.Time
}

// QueryCommunityReport joins members, bills and plans into transaction rows.
// The three collections are fetched concurrently; a failed fetch degrades to
// an empty collection and is listed in Warnings.
// PRE: deps stores are non-nil
// POST: len(Rows) = members + bills - members matched by at least one bill
// INVARIANT: rows are date-descending and indexed 1..N
func QueryCommunityReport(ctx context.Context, deps CommunityReportDeps) (CommunityReportResult, error) {
	var (
		members []member.Member
		bills   []billing.Bill
		plans   []plan.Plan
	)
	warnings := loadSources(ctx, "community",
		source{name: "members", load: func(ctx context.Context) (err error) {
			members, err = deps.MemberStore.List(ctx, memberStore.ListFilter{Limit: storage.NoLimit})
			return err
		}},
		source{name: "bills", load: func(ctx context.Context) (err error) {
			bills, err = deps.BillStore.List(ctx, billingStore.ListFilter{Limit: storage.NoLimit})
			return err
		}},
		source{name: "plans", load: func(ctx context.Context) (err error) {
			plans, err = deps.PlanStore.List(ctx, false)
			return err
		}},
	)

	result := BuildCommunityReport(members, bills, plans)
	result.Warnings = warnings
	if deps.Now != nil {
		result.GeneratedAt = deps.Now()
	}
	return result, nil
}

// BuildCommunityReport performs the row join on already-fetched collections.
func BuildCommunityReport(members []member.Member, bills []billing.Bill, plans []plan.Plan) CommunityReportResult {
	idx := newReportIndex(members, plans)
	billed := make(map[string]bool)
	rows := make([]ReportRow, 0, len(members)+len(bills))

	for _, b := range bills {
		row := ReportRow{
			Kind:       RowBilled,
			Date:       billDate(b),
			MemberName: b.MemberName,
			PlanName:   b.PlanName,
			BillID:     b.ID,
			BillNo:     b.BillNo,
			Amount:     b.Total,
			PaidAmount: b.PaidAmount,
			Status:     b.Status,
		}
		if m, ok := idx.member(b.MemberID, b.MemberName); ok {
			billed[m.ID] = true
			row.MemberID = m.ID
			row.MemberName = m.Name
			row.Phone = m.Phone
			row.Email = m.Email
			if row.PlanName == "" {
				row.PlanName = idx.planName(m)
			}
		}
		rows = append(rows, row)
	}

	for _, m := range members {
		if billed[m.ID] {
			continue
		}
		rows = append(rows, ReportRow{
			Kind:       RowNewMember,
			Date:       dates.Normalize(m.JoinDate),
			MemberID:   m.ID,
			MemberName: m.Name,
			Phone:      m.Phone,
			Email:      m.Email,
			PlanName:   idx.planName(m),
			Amount:     idx.planPrice(m),
			PaidAmount: decimal.Zero,
			Status:     m.Status,
			Note:       NewMemberNote,
		})
	}

	sortRows(rows)
	for i := range rows {
		rows[i].Index = i + 1
	}

	return CommunityReportResult{
		Rows:    rows,
		Months:  monthlyAggregates(rows, members),
		Summary: summarize(members, rows, len(billed)),
	}
}

// reportIndex resolves members and plans by ID, then by normalized name.
type reportIndex struct {
	membersByID   map[string]member.Member
	membersByName map[string]member.Member
	plansByID     map[string]plan.Plan
	plansByName   map[string]plan.Plan
}

func newReportIndex(members []member.Member, plans []plan.Plan) reportIndex {
	idx := reportIndex{
		membersByID:   make(map[string]member.Member, len(members)),
		membersByName: make(map[string]member.Member, len(members)),
		plansByID:     make(map[string]plan.Plan, len(plans)),
		plansByName:   make(map[string]plan.Plan, len(plans)),
	}
	for _, m := range members {
		idx.membersByID[m.ID] = m
		key := member.NormalizedName(m.Name)
		// First member wins a shared name.
		if _, dup := idx.membersByName[key]; !dup && key != "" {
			idx.membersByName[key] = m
		}
	}
	for _, p := range plans {
		idx.plansByID[p.ID] = p
		if key := member.NormalizedName(p.Name); key != "" {
			idx.plansByName[key] = p
		}
	}
	return idx
}

func (idx reportIndex) member(id, name string) (member.Member, bool) {
	if id != "" {
		if m, ok := idx.membersByID[id]; ok {
			return m, true
		}
	}
	m, ok := idx.membersByName[member.NormalizedName(name)]
	return m, ok
}

func (idx reportIndex) plan(m member.Member) (plan.Plan, bool) {
	if m.PlanID != "" {
		if p, ok := idx.plansByID[m.PlanID]; ok {
			return p, true
		}
	}
	p, ok := idx.plansByName[member.NormalizedName(m.MembershipPlan)]
	return p, ok
}

func (idx reportIndex) planName(m member.Member) string {
	if p, ok := idx.plan(m); ok {
		return p.Name
	}
	return m.MembershipPlan
}

func (idx reportIndex) planPrice(m member.Member) decimal.Decimal {
	if p, ok := idx.plan(m); ok {
		return p.Price
	}
	return decimal.Zero
}

func billDate(b billing.Bill) string {
	if d := dates.Normalize(b.BillDate); d != "" {
		return d
	}
	if !b.CreatedAt.IsZero() {
		return b.CreatedAt.Format(dates.Layout)
	}
	return ""
}

// sortRows orders by date descending; billed rows precede new-member rows on
// the same day, then names ascending.
func sortRows(rows []ReportRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Date != b.Date {
			return a.Date > b.Date
		}
		if a.Kind != b.Kind {
			return a.Kind == RowBilled
		}
		return member.NormalizedName(a.MemberName) < member.NormalizedName(b.MemberName)
	})
}

func monthlyAggregates(rows []ReportRow, members []member.Member) []MonthlyAggregate {
	byMonth := make(map[string]*MonthlyAggregate)
	get := func(month string) *MonthlyAggregate {
		agg, ok := byMonth[month]
		if !ok {
			agg = &MonthlyAggregate{Month: month, Revenue: decimal.Zero}
			byMonth[month] = agg
		}
		return agg
	}
	for _, r := range rows {
		month := dates.Month(r.Date)
		if month == "" {
			continue
		}
		agg := get(month)
		if r.Kind == RowBilled {
			agg.Revenue = agg.Revenue.Add(r.Amount)
			agg.BillCount++
		}
	}
	for _, m := range members {
		if month := dates.Month(m.JoinDate); month != "" {
			get(month).NewMembers++
		}
	}

	out := make([]MonthlyAggregate, 0, len(byMonth))
	for _, agg := range byMonth {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

func summarize(members []member.Member, rows []ReportRow, billedMembers int) ReportSummary {
	s := ReportSummary{
		TotalMembers:    len(members),
		BilledMembers:   billedMembers,
		UnbilledMembers: len(members) - billedMembers,
		TotalRevenue:    decimal.Zero,
		AverageRevenue:  decimal.Zero,
	}
	for _, m := range members {
		if m.IsActive() {
			s.ActiveMembers++
		}
	}
	for _, r := range rows {
		if r.Kind == RowBilled {
			s.TotalRevenue = s.TotalRevenue.Add(r.Amount)
		}
	}
	if billedMembers > 0 {
		s.AverageRevenue = s.TotalRevenue.Div(decimal.NewFromInt(int64(billedMembers))).Round(2)
	}
	return s
}
