package wastage

import (
	"context"
	"database/sql"

	"gymbios/internal/adapters/storage"
	"gymbios/internal/domain/lineitem"
	domain "gymbios/internal/domain/wastage"
)

const voucherColumns = "id, voucher_no, type, reason, location, voucher_date, items_json, total, notes, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new voucher store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Voucher by ID.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Voucher, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+voucherColumns+" FROM wastage_voucher WHERE id = ?", id)
	v, err := scanVoucher(row.Scan)
	return v, storage.NotFound("voucher", err)
}

// Save persists a Voucher (insert or update).
func (s *SQLiteStore) Save(ctx context.Context, v domain.Voucher) error {
	items, err := lineitem.Encode(v.Items)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO wastage_voucher (`+voucherColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   type=excluded.type, reason=excluded.reason, location=excluded.location,
		   voucher_date=excluded.voucher_date, items_json=excluded.items_json, total=excluded.total,
		   notes=excluded.notes`,
		v.ID, v.VoucherNo, v.Type, v.Reason, v.Location, v.VoucherDate, items, v.Total, v.Notes,
		storage.FormatTime(v.CreatedAt),
	)
	return storage.Constraint("voucher", err)
}

// Delete removes a Voucher. Stock is not restored.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM wastage_voucher WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.NotFound("voucher", sql.ErrNoRows)
	}
	return nil
}

func listWhereClause(filter ListFilter) (string, []any) {
	where := " WHERE 1=1"
	var args []any
	if filter.Type != "" {
		where += " AND type = ?"
		args = append(args, filter.Type)
	}
	if filter.Search != "" {
		where += " AND (voucher_no LIKE ? OR reason LIKE ?)"
		term := "%" + filter.Search + "%"
		args = append(args, term, term)
	}
	return where, args
}

// List returns vouchers, newest first.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Voucher, error) {
	where, args := listWhereClause(filter)
	limit, offset := storage.Paging(filter.Limit, filter.Offset)
	args = append(args, limit, offset)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+voucherColumns+" FROM wastage_voucher"+where+" ORDER BY voucher_date DESC, created_at DESC LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Voucher
	for rows.Next() {
		v, err := scanVoucher(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Count returns the number of vouchers matching the filter.
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := listWhereClause(filter)
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM wastage_voucher"+where, args...).Scan(&n)
	return n, err
}

func scanVoucher(scan func(dest ...any) error) (domain.Voucher, error) {
	var v domain.Voucher
	var items string
	var createdAt sql.NullString
	if err := scan(&v.ID, &v.VoucherNo, &v.Type, &v.Reason, &v.Location, &v.VoucherDate, &items,
		&v.Total, &v.Notes, &createdAt); err != nil {
		return domain.Voucher{}, err
	}
	decoded, err := lineitem.Decode(items)
	if err != nil {
		return domain.Voucher{}, err
	}
	v.Items = decoded
	v.CreatedAt = storage.ParseTime(createdAt)
	return v, nil
}
