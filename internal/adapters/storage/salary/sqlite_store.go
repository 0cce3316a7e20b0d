package salary

import (
	"context"
	"database/sql"

	"gymbios/internal/adapters/storage"
	domain "gymbios/internal/domain/salary"
)

const paymentColumns = "id, staff_id, staff_name, month, base_salary, bonus, deductions, net_amount, payment_mode, paid_at, notes"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new salary store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Payment by ID.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Payment, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+paymentColumns+" FROM salary_payment WHERE id = ?", id)
	p, err := scanPayment(row.Scan)
	return p, storage.NotFound("salary payment", err)
}

// Save inserts a Payment. Payments are never edited once made.
// INVARIANT: at most one payment per (staff_id, month)
func (s *SQLiteStore) Save(ctx context.Context, p domain.Payment) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO salary_payment (`+paymentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.StaffID, p.StaffName, p.Month, p.BaseSalary, p.Bonus, p.Deductions, p.NetAmount,
		p.PaymentMode, storage.FormatTime(p.PaidAt), p.Notes,
	)
	return storage.Constraint("salary payment", err)
}

func listWhereClause(filter ListFilter) (string, []any) {
	where := " WHERE 1=1"
	var args []any
	if filter.StaffID != "" {
		where += " AND staff_id = ?"
		args = append(args, filter.StaffID)
	}
	if filter.Month != "" {
		where += " AND month = ?"
		args = append(args, filter.Month)
	}
	return where, args
}

// List returns payments, most recently paid first.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Payment, error) {
	where, args := listWhereClause(filter)
	limit, offset := storage.Paging(filter.Limit, filter.Offset)
	args = append(args, limit, offset)
	rows, err := s.db.QueryContext(ctx, "SELECT "+paymentColumns+" FROM salary_payment"+where+" ORDER BY paid_at DESC LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Count returns the number of payments matching the filter.
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := listWhereClause(filter)
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM salary_payment"+where, args...).Scan(&n)
	return n, err
}

// LastPaidMonths maps each paid staff member to their latest month.
func (s *SQLiteStore) LastPaidMonths(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT staff_id, MAX(month) FROM salary_payment GROUP BY staff_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var staffID, month string
		if err := rows.Scan(&staffID, &month); err != nil {
			return nil, err
		}
		out[staffID] = month
	}
	return out, rows.Err()
}

func scanPayment(scan func(dest ...any) error) (domain.Payment, error) {
	var p domain.Payment
	var paidAt sql.NullString
	if err := scan(&p.ID, &p.StaffID, &p.StaffName, &p.Month, &p.BaseSalary, &p.Bonus, &p.Deductions,
		&p.NetAmount, &p.PaymentMode, &paidAt, &p.Notes); err != nil {
		return domain.Payment{}, err
	}
	p.PaidAt = storage.ParseTime(paidAt)
	return p, nil
}
