package projections

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	billingStore "gymbios/internal/adapters/storage/billing"
	interestStore "gymbios/internal/adapters/storage/interest"
	memberStore "gymbios/internal/adapters/storage/member"
	productStore "gymbios/internal/adapters/storage/product"
	salaryStore "gymbios/internal/adapters/storage/salary"
	staffStore "gymbios/internal/adapters/storage/staff"
	streamStore "gymbios/internal/adapters/storage/stream"
	"gymbios/internal/domain/billing"
	"gymbios/internal/domain/category"
	"gymbios/internal/domain/member"
	"gymbios/internal/domain/plan"
	"gymbios/internal/domain/product"
	"gymbios/internal/domain/salary"
	"gymbios/internal/domain/staff"
	"gymbios/internal/domain/stream"
)

var fixedTime = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

var errUnavailable = errors.New("database is locked")

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type mockMemberStore struct {
	members []member.Member
	err     error
}

func (m *mockMemberStore) List(_ context.Context, filter memberStore.ListFilter) ([]member.Member, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []member.Member
	for _, mem := range m.members {
		if filter.Status != "" && mem.Status != filter.Status {
			continue
		}
		out = append(out, mem)
	}
	if filter.Limit > 0 {
		start := min(filter.Offset, len(out))
		end := min(start+filter.Limit, len(out))
		out = out[start:end]
	}
	return out, nil
}

func (m *mockMemberStore) Count(_ context.Context, filter memberStore.ListFilter) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	n := 0
	for _, mem := range m.members {
		if filter.Status == "" || mem.Status == filter.Status {
			n++
		}
	}
	return n, nil
}

type mockBillStore struct {
	bills []billing.Bill
	err   error
}

func (m *mockBillStore) List(_ context.Context, filter billingStore.ListFilter) ([]billing.Bill, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []billing.Bill
	for _, b := range m.bills {
		if filter.Month != "" && (len(b.BillDate) < 7 || b.BillDate[:7] != filter.Month) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

type mockPlanStore struct {
	plans []plan.Plan
	err   error
}

func (m *mockPlanStore) List(_ context.Context, _ bool) ([]plan.Plan, error) {
	return m.plans, m.err
}

type mockProductStore struct {
	products []product.Product
	err      error
}

func (m *mockProductStore) List(_ context.Context, filter productStore.ListFilter) ([]product.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []product.Product
	for _, p := range m.products {
		if filter.CategoryID == "" || p.CategoryID == filter.CategoryID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProductStore) ListLowStock(_ context.Context) ([]product.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []product.Product
	for _, p := range m.products {
		if p.IsLowStock() {
			out = append(out, p)
		}
	}
	return out, nil
}

type mockCategoryStore struct {
	categories []category.Category
}

func (m *mockCategoryStore) List(context.Context) ([]category.Category, error) {
	return m.categories, nil
}

type mockStreamStore struct {
	streams []stream.Stream
	err     error
}

func (m *mockStreamStore) List(_ context.Context, filter streamStore.ListFilter) ([]stream.Stream, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []stream.Stream
	for _, s := range m.streams {
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if !filter.From.IsZero() && s.ScheduledAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !s.ScheduledAt.Before(filter.To) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

type mockInterestStore struct {
	byStatus map[string]int
}

func (m *mockInterestStore) Count(_ context.Context, filter interestStore.ListFilter) (int, error) {
	return m.byStatus[filter.Status], nil
}

type mockStaffStore struct {
	staff []staff.Staff
}

func (m *mockStaffStore) List(_ context.Context, filter staffStore.ListFilter) ([]staff.Staff, error) {
	var out []staff.Staff
	for _, s := range m.staff {
		if filter.Status == "" || s.Status == filter.Status {
			out = append(out, s)
		}
	}
	return out, nil
}

type mockSalaryStore struct {
	payments []salary.Payment
}

func (m *mockSalaryStore) List(_ context.Context, filter salaryStore.ListFilter) ([]salary.Payment, error) {
	var out []salary.Payment
	for _, p := range m.payments {
		if filter.StaffID != "" && p.StaffID != filter.StaffID {
			continue
		}
		if filter.Month != "" && p.Month != filter.Month {
			continue
		}
		out = append(out, p)
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *mockSalaryStore) LastPaidMonths(context.Context) (map[string]string, error) {
	out := make(map[string]string)
	for _, p := range m.payments {
		if p.Month > out[p.StaffID] {
			out[p.StaffID] = p.Month
		}
	}
	return out, nil
}
