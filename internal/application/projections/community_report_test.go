package projections

import (
	"context"
	"strings"
	"testing"

	"gymbios/internal/domain/billing"
	"gymbios/internal/domain/member"
	"gymbios/internal/domain/plan"
)

func reportPlans() []plan.Plan {
	return []plan.Plan{
		{ID: "p-month", Name: "Monthly", DurationMonths: 1, Price: d("1500")},
		{ID: "p-year", Name: "Annual", DurationMonths: 12, Price: d("15000")},
	}
}

func reportMembers() []member.Member {
	return []member.Member{
		{ID: "m-1", Name: "Asha Rao", Phone: "1", PlanID: "p-month", JoinDate: "2026-01-05", Status: member.StatusActive},
		{ID: "m-2", Name: "Ben Okafor", Phone: "2", MembershipPlan: "annual", JoinDate: "2026-02-11", Status: member.StatusActive},
		{ID: "m-3", Name: "Chen Li", Phone: "3", JoinDate: "2026-02-20", Status: member.StatusInactive},
		{ID: "m-4", Name: "Dana Kerr", Phone: "4", PlanID: "p-year", JoinDate: "2026-03-02", Status: member.StatusActive},
	}
}

func reportBills() []billing.Bill {
	return []billing.Bill{
		{ID: "b-1", BillNo: "BILL-1", MemberID: "m-1", MemberName: "Asha Rao", PlanName: "Monthly", Total: d("1500"), PaidAmount: d("1500"), Status: billing.StatusPaid, BillDate: "2026-01-05"},
		{ID: "b-2", BillNo: "BILL-2", MemberID: "m-1", MemberName: "Asha Rao", Total: d("1500"), Status: billing.StatusPending, BillDate: "2026-02-05"},
		// Legacy bill carrying only a differently-cased name.
		{ID: "b-3", BillNo: "BILL-3", MemberName: "  ben OKAFOR ", Total: d("15000"), PaidAmount: d("5000"), Status: billing.StatusPartial, BillDate: "2026-02-11"},
		// Bill for someone who is no longer a member.
		{ID: "b-4", BillNo: "BILL-4", MemberName: "Former Member", Total: d("800"), Status: billing.StatusPaid, BillDate: "2026-02-20"},
	}
}

func TestBuildCommunityReport_RowJoin(t *testing.T) {
	members := reportMembers()
	bills := reportBills()
	res := BuildCommunityReport(members, bills, reportPlans())

	// 4 members + 4 bills - 2 matched members (Asha, Ben)
	if len(res.Rows) != 6 {
		t.Fatalf("expected 6 rows, got %d", len(res.Rows))
	}
	for i, r := range res.Rows {
		if r.Index != i+1 {
			t.Errorf("row %d has index %d", i, r.Index)
		}
		if i > 0 && res.Rows[i-1].Date < r.Date {
			t.Errorf("rows not date-descending at %d: %s before %s", i, res.Rows[i-1].Date, r.Date)
		}
	}

	byBill := map[string]ReportRow{}
	byMember := map[string]ReportRow{}
	for _, r := range res.Rows {
		if r.Kind == RowBilled {
			byBill[r.BillID] = r
		} else {
			byMember[r.MemberID] = r
		}
	}
	if got := byBill["b-3"]; got.MemberID != "m-2" || got.MemberName != "Ben Okafor" || got.PlanName != "Annual" {
		t.Errorf("name fallback failed: %+v", got)
	}
	if got := byBill["b-2"]; got.PlanName != "Monthly" {
		t.Errorf("expected plan name from member's plan, got %q", got.PlanName)
	}
	if got := byBill["b-4"]; got.MemberID != "" || got.MemberName != "Former Member" {
		t.Errorf("unmatched bill should keep its own name: %+v", got)
	}
	if _, ok := byMember["m-1"]; ok {
		t.Error("billed member must not get a new-member row")
	}
	if got := byMember["m-4"]; !got.Amount.Equal(d("15000")) || got.Note != NewMemberNote || got.Date != "2026-03-02" {
		t.Errorf("unexpected new member row %+v", got)
	}
	if got := byMember["m-3"]; !got.Amount.IsZero() {
		t.Errorf("member without a plan should be priced 0, got %s", got.Amount)
	}
}

func TestBuildCommunityReport_TieOrdering(t *testing.T) {
	res := BuildCommunityReport(reportMembers(), reportBills(), reportPlans())
	// 2026-02-20 carries both bill b-4 and new member Chen Li.
	var sameDay []ReportRow
	for _, r := range res.Rows {
		if r.Date == "2026-02-20" {
			sameDay = append(sameDay, r)
		}
	}
	if len(sameDay) != 2 || sameDay[0].Kind != RowBilled || sameDay[1].Kind != RowNewMember {
		t.Errorf("billed rows should precede new-member rows on a tie: %+v", sameDay)
	}
}

func TestBuildCommunityReport_IDPreferredOverName(t *testing.T) {
	members := []member.Member{
		{ID: "m-1", Name: "Sam", Phone: "1", JoinDate: "2026-01-01", Status: member.StatusActive},
		{ID: "m-2", Name: "Sam", Phone: "2", JoinDate: "2026-01-02", Status: member.StatusActive},
	}
	bills := []billing.Bill{{ID: "b-1", MemberID: "m-2", MemberName: "Sam", Total: d("100"), BillDate: "2026-01-03"}}
	res := BuildCommunityReport(members, bills, nil)
	if res.Rows[0].MemberID != "m-2" {
		t.Errorf("expected bill matched by ID to m-2, got %s", res.Rows[0].MemberID)
	}
	if res.Summary.BilledMembers != 1 || len(res.Rows) != 2 {
		t.Errorf("expected one billed member and two rows, got %+v", res.Summary)
	}
}

func TestBuildCommunityReport_Aggregates(t *testing.T) {
	res := BuildCommunityReport(reportMembers(), reportBills(), reportPlans())

	want := map[string]MonthlyAggregate{
		"2026-01": {Revenue: d("1500"), BillCount: 1, NewMembers: 1},
		"2026-02": {Revenue: d("17300"), BillCount: 3, NewMembers: 2},
		"2026-03": {Revenue: d("0"), BillCount: 0, NewMembers: 1},
	}
	if len(res.Months) != 3 {
		t.Fatalf("expected 3 months, got %+v", res.Months)
	}
	for i, m := range res.Months {
		if i > 0 && res.Months[i-1].Month >= m.Month {
			t.Errorf("months not ascending: %+v", res.Months)
		}
		w := want[m.Month]
		if !m.Revenue.Equal(w.Revenue) || m.BillCount != w.BillCount || m.NewMembers != w.NewMembers {
			t.Errorf("%s: got %+v, want %+v", m.Month, m, w)
		}
	}

	s := res.Summary
	if s.TotalMembers != 4 || s.ActiveMembers != 3 || s.BilledMembers != 2 || s.UnbilledMembers != 2 {
		t.Errorf("unexpected member counts %+v", s)
	}
	if !s.TotalRevenue.Equal(d("18800")) || !s.AverageRevenue.Equal(d("9400")) {
		t.Errorf("unexpected revenue %s / %s", s.TotalRevenue, s.AverageRevenue)
	}
}

func TestQueryCommunityReport_DegradesOnSourceFailure(t *testing.T) {
	deps := CommunityReportDeps{
		MemberStore: &mockMemberStore{members: reportMembers()},
		BillStore:   &mockBillStore{err: errUnavailable},
		PlanStore:   &mockPlanStore{plans: reportPlans()},
		Now:         fixedNow,
	}
	res, err := QueryCommunityReport(context.Background(), deps)
	if err != nil {
		t.Fatalf("report must not fail: %v", err)
	}
	if len(res.Warnings) != 1 || !strings.HasPrefix(res.Warnings[0], "bills unavailable") {
		t.Errorf("expected one bills warning, got %v", res.Warnings)
	}
	if len(res.Rows) != 4 {
		t.Errorf("expected every member as a new-member row, got %d", len(res.Rows))
	}
	if !res.GeneratedAt.Equal(fixedTime) {
		t.Errorf("unexpected GeneratedAt %v", res.GeneratedAt)
	}
}

func TestQueryCommunityReport_Empty(t *testing.T) {
	res, err := QueryCommunityReport(context.Background(), CommunityReportDeps{
		MemberStore: &mockMemberStore{},
		BillStore:   &mockBillStore{},
		PlanStore:   &mockPlanStore{},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Rows) != 0 || len(res.Months) != 0 || !res.Summary.AverageRevenue.IsZero() {
		t.Errorf("expected empty report, got %+v", res)
	}
}
