package billing

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"gymbios/internal/adapters/storage"
	domain "gymbios/internal/domain/billing"
)

const billColumns = "id, bill_no, member_id, member_name, plan_id, plan_name, amount, discount, tax_percent, tax, total, paid_amount, payment_mode, status, bill_date, notes, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new bill store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Bill by ID.
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Bill, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+billColumns+" FROM bill WHERE id = ?", id)
	b, err := scanBill(row.Scan)
	return b, storage.NotFound("bill", err)
}

// Save persists a Bill (insert or update).
// PRE: ComputeTotals and Validate have been called
func (s *SQLiteStore) Save(ctx context.Context, b domain.Bill) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bill (`+billColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   member_id=excluded.member_id, member_name=excluded.member_name, plan_id=excluded.plan_id,
		   plan_name=excluded.plan_name, amount=excluded.amount, discount=excluded.discount,
		   tax_percent=excluded.tax_percent, tax=excluded.tax, total=excluded.total,
		   paid_amount=excluded.paid_amount, payment_mode=excluded.payment_mode, status=excluded.status,
		   bill_date=excluded.bill_date, notes=excluded.notes`,
		b.ID, b.BillNo, b.MemberID, b.MemberName, b.PlanID, b.PlanName, b.Amount, b.Discount,
		b.TaxPercent, b.Tax, b.Total, b.PaidAmount, b.PaymentMode, b.Status, b.BillDate, b.Notes,
		storage.FormatTime(b.CreatedAt),
	)
	return storage.Constraint("bill", err)
}

// ApplyPayment writes b's payment fields only while the stored paid amount
// still equals prevPaid, so two payments read from the same state cannot both land.
// POST: storage.ErrNotFound, or storage.ErrStale when another payment landed first
func (s *SQLiteStore) ApplyPayment(ctx context.Context, b domain.Bill, prevPaid decimal.Decimal) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE bill SET paid_amount = ?, payment_mode = ?, status = ? WHERE id = ? AND paid_amount = ?",
		b.PaidAmount, b.PaymentMode, b.Status, b.ID, prevPaid)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return nil
	}
	if _, err := s.GetByID(ctx, b.ID); err != nil {
		return err
	}
	return storage.ErrStale
}

// Delete removes a Bill.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM bill WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.NotFound("bill", sql.ErrNoRows)
	}
	return nil
}

func listWhereClause(filter ListFilter) (string, []any) {
	where := " WHERE 1=1"
	var args []any
	if filter.MemberID != "" {
		where += " AND member_id = ?"
		args = append(args, filter.MemberID)
	}
	if filter.Status != "" {
		where += " AND status = ?"
		args = append(args, filter.Status)
	}
	if filter.Month != "" {
		where += " AND substr(bill_date, 1, 7) = ?"
		args = append(args, filter.Month)
	}
	if filter.Search != "" {
		where += " AND (bill_no LIKE ? OR member_name LIKE ?)"
		term := "%" + filter.Search + "%"
		args = append(args, term, term)
	}
	return where, args
}

// List returns bills, newest first.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Bill, error) {
	where, args := listWhereClause(filter)
	limit, offset := storage.Paging(filter.Limit, filter.Offset)
	args = append(args, limit, offset)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+billColumns+" FROM bill"+where+" ORDER BY bill_date DESC, created_at DESC LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Bill
	for rows.Next() {
		b, err := scanBill(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Count returns the number of bills matching the filter.
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := listWhereClause(filter)
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM bill"+where, args...).Scan(&n)
	return n, err
}

func scanBill(scan func(dest ...any) error) (domain.Bill, error) {
	var b domain.Bill
	var createdAt sql.NullString
	if err := scan(&b.ID, &b.BillNo, &b.MemberID, &b.MemberName, &b.PlanID, &b.PlanName, &b.Amount,
		&b.Discount, &b.TaxPercent, &b.Tax, &b.Total, &b.PaidAmount, &b.PaymentMode, &b.Status,
		&b.BillDate, &b.Notes, &createdAt); err != nil {
		return domain.Bill{}, err
	}
	b.CreatedAt = storage.ParseTime(createdAt)
	return b, nil
}
