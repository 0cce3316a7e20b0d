package projections

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"gymbios/internal/adapters/storage"
	salaryStore "gymbios/internal/adapters/storage/salary"
	staffStore "gymbios/internal/adapters/storage/staff"
	"gymbios/internal/domain/dates"
	"gymbios/internal/domain/salary"
	"gymbios/internal/domain/staff"
)

// SalaryDeps holds dependencies for the salary projections.
type SalaryDeps struct {
	StaffStore  StaffStore
	SalaryStore SalaryStore
	Now         func() time.Time
}

// SalaryEmployee is an active employee with their payroll position.
type SalaryEmployee struct {
	StaffID       string          `json:"staff_id"`
	Name          string          `json:"name"`
	Role          string          `json:"role"`
	Salary        decimal.Decimal `json:"salary"`
	LastPaidMonth string          `json:"last_paid_month"`
	PaidThisMonth bool            `json:"paid_this_month"`
}

// QuerySalaryEmployees lists active staff with salary and last paid month.
// POST: employees ordered by name
func QuerySalaryEmployees(ctx context.Context, deps SalaryDeps) ([]SalaryEmployee, error) {
	employees, err := deps.StaffStore.List(ctx, staffStore.ListFilter{Status: staff.StatusActive, Limit: storage.NoLimit})
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	lastPaid, err := deps.SalaryStore.LastPaidMonths(ctx)
	if err != nil {
		return nil, fmt.Errorf("last paid months: %w", err)
	}
	current := deps.Now().Format(dates.MonthLayout)

	out := make([]SalaryEmployee, 0, len(employees))
	for _, e := range employees {
		month := lastPaid[e.ID]
		out = append(out, SalaryEmployee{
			StaffID:       e.ID,
			Name:          e.Name,
			Role:          e.Role,
			Salary:        e.Salary,
			LastPaidMonth: month,
			PaidThisMonth: month == current,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// SalaryMonthTotal is the payroll total of one month.
type SalaryMonthTotal struct {
	Month    string          `json:"month"`
	Payments int             `json:"payments"`
	Total    decimal.Decimal `json:"total"`
}

// SalaryStaffTotal is the payroll total of one employee.
type SalaryStaffTotal struct {
	StaffID   string          `json:"staff_id"`
	StaffName string          `json:"staff_name"`
	Payments  int             `json:"payments"`
	Total     decimal.Decimal `json:"total"`
	LastMonth string          `json:"last_month"`
}

// SalarySummary groups payments by month and by employee.
type SalarySummary struct {
	Months     []SalaryMonthTotal `json:"months"`
	Staff      []SalaryStaffTotal `json:"staff"`
	GrandTotal decimal.Decimal    `json:"grand_total"`
}

// SalarySummaryQuery narrows the summary to one employee or one month.
type SalarySummaryQuery struct {
	StaffID string
	Month   string
}

// QuerySalarySummary totals net pay by month (newest first) and by employee (largest first).
func QuerySalarySummary(ctx context.Context, query SalarySummaryQuery, deps SalaryDeps) (SalarySummary, error) {
	payments, err := deps.SalaryStore.List(ctx, salaryStore.ListFilter{StaffID: query.StaffID, Month: query.Month, Limit: storage.NoLimit})
	if err != nil {
		return SalarySummary{}, fmt.Errorf("list salary payments: %w", err)
	}
	return summarizeSalaries(payments), nil
}

func summarizeSalaries(payments []salary.Payment) SalarySummary {
	byMonth := make(map[string]*SalaryMonthTotal)
	byStaff := make(map[string]*SalaryStaffTotal)
	grand := decimal.Zero
	for _, p := range payments {
		grand = grand.Add(p.NetAmount)

		m, ok := byMonth[p.Month]
		if !ok {
			m = &SalaryMonthTotal{Month: p.Month, Total: decimal.Zero}
			byMonth[p.Month] = m
		}
		m.Payments++
		m.Total = m.Total.Add(p.NetAmount)

		s, ok := byStaff[p.StaffID]
		if !ok {
			s = &SalaryStaffTotal{StaffID: p.StaffID, StaffName: p.StaffName, Total: decimal.Zero}
			byStaff[p.StaffID] = s
		}
		s.Payments++
		s.Total = s.Total.Add(p.NetAmount)
		if p.Month > s.LastMonth {
			s.LastMonth = p.Month
		}
	}

	summary := SalarySummary{
		Months:     make([]SalaryMonthTotal, 0, len(byMonth)),
		Staff:      make([]SalaryStaffTotal, 0, len(byStaff)),
		GrandTotal: grand,
	}
	for _, m := range byMonth {
		summary.Months = append(summary.Months, *m)
	}
	for _, s := range byStaff {
		summary.Staff = append(summary.Staff, *s)
	}
	sort.Slice(summary.Months, func(i, j int) bool { return summary.Months[i].Month > summary.Months[j].Month })
	sort.Slice(summary.Staff, func(i, j int) bool {
		if c := summary.Staff[i].Total.Cmp(summary.Staff[j].Total); c != 0 {
			return c > 0
		}
		return summary.Staff[i].StaffName < summary.Staff[j].StaffName
	})
	return summary
}

// DefaultRecentPayments is the page size of the recent payments feed.
const DefaultRecentPayments = 10

// QueryRecentSalaryPayments returns the latest payments, most recent first.
func QueryRecentSalaryPayments(ctx context.Context, limit int, deps SalaryDeps) ([]salary.Payment, error) {
	if limit <= 0 {
		limit = DefaultRecentPayments
	}
	payments, err := deps.SalaryStore.List(ctx, salaryStore.ListFilter{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("list salary payments: %w", err)
	}
	if payments == nil {
		payments = []salary.Payment{}
	}
	return payments, nil
}
