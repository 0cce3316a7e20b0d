package pos

import (
	"context"
	"database/sql"

	"gymbios/internal/adapters/storage"
	"gymbios/internal/domain/lineitem"
	domain "gymbios/internal/domain/pos"
)

const saleColumns = "id, receipt_no, member_id, customer_name, items_json, subtotal, discount, total, payment_mode, sold_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new sale store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Sale by ID.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Sale, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+saleColumns+" FROM pos_sale WHERE id = ?", id)
	sale, err := scanSale(row.Scan)
	return sale, storage.NotFound("sale", err)
}

// Save persists a Sale. Sales are immutable once recorded.
func (s *SQLiteStore) Save(ctx context.Context, sale domain.Sale) error {
	items, err := lineitem.Encode(sale.Items)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO pos_sale (`+saleColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sale.ID, sale.ReceiptNo, sale.MemberID, sale.CustomerName, items, sale.Subtotal, sale.Discount,
		sale.Total, sale.PaymentMode, storage.FormatTime(sale.SoldAt),
	)
	return storage.Constraint("sale", err)
}

func listWhereClause(filter ListFilter) (string, []any) {
	where := " WHERE 1=1"
	var args []any
	if filter.MemberID != "" {
		where += " AND member_id = ?"
		args = append(args, filter.MemberID)
	}
	if filter.Day != "" {
		where += " AND substr(sold_at, 1, 10) = ?"
		args = append(args, filter.Day)
	}
	return where, args
}

// List returns sales, newest first.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Sale, error) {
	where, args := listWhereClause(filter)
	limit, offset := storage.Paging(filter.Limit, filter.Offset)
	args = append(args, limit, offset)
	rows, err := s.db.QueryContext(ctx, "SELECT "+saleColumns+" FROM pos_sale"+where+" ORDER BY sold_at DESC LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Sale
	for rows.Next() {
		sale, err := scanSale(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, sale)
	}
	return out, rows.Err()
}

// Count returns the number of sales matching the filter.
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := listWhereClause(filter)
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM pos_sale"+where, args...).Scan(&n)
	return n, err
}

func scanSale(scan func(dest ...any) error) (domain.Sale, error) {
	var sale domain.Sale
	var items string
	var soldAt sql.NullString
	if err := scan(&sale.ID, &sale.ReceiptNo, &sale.MemberID, &sale.CustomerName, &items, &sale.Subtotal,
		&sale.Discount, &sale.Total, &sale.PaymentMode, &soldAt); err != nil {
		return domain.Sale{}, err
	}
	decoded, err := lineitem.Decode(items)
	if err != nil {
		return domain.Sale{}, err
	}
	sale.Items = decoded
	sale.SoldAt = storage.ParseTime(soldAt)
	return sale, nil
}
