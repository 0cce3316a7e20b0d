package purchase

import (
	"context"
	"database/sql"

	"gymbios/internal/adapters/storage"
	"gymbios/internal/domain/lineitem"
	domain "gymbios/internal/domain/purchase"
)

const purchaseColumns = "id, invoice_no, supplier, purchase_date, items_json, subtotal, tax_percent, tax, discount, total, purchase_order_id, notes, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new purchase store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Purchase by ID.
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Purchase, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+purchaseColumns+" FROM purchase WHERE id = ?", id)
	p, err := scanPurchase(row.Scan)
	return p, storage.NotFound("purchase", err)
}

// Save persists a Purchase (insert or update).
// PRE: ComputeTotals and Validate have been called
func (s *SQLiteStore) Save(ctx context.Context, p domain.Purchase) error {
	items, err := lineitem.Encode(p.Items)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO purchase (`+purchaseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   invoice_no=excluded.invoice_no, supplier=excluded.supplier, purchase_date=excluded.purchase_date,
		   items_json=excluded.items_json, subtotal=excluded.subtotal, tax_percent=excluded.tax_percent,
		   tax=excluded.tax, discount=excluded.discount, total=excluded.total,
		   purchase_order_id=excluded.purchase_order_id, notes=excluded.notes`,
		p.ID, p.InvoiceNo, p.Supplier, p.PurchaseDate, items, p.Subtotal, p.TaxPercent, p.Tax,
		p.Discount, p.Total, p.PurchaseOrderID, p.Notes, storage.FormatTime(p.CreatedAt),
	)
	return err
}

// Delete removes a Purchase. Stock is not reversed.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM purchase WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.NotFound("purchase", sql.ErrNoRows)
	}
	return nil
}

func listWhereClause(filter ListFilter) (string, []any) {
	where := " WHERE 1=1"
	var args []any
	if filter.Search != "" {
		where += " AND (invoice_no LIKE ? OR supplier LIKE ?)"
		term := "%" + filter.Search + "%"
		args = append(args, term, term)
	}
	if filter.FromDate != "" {
		where += " AND purchase_date >= ?"
		args = append(args, filter.FromDate)
	}
	if filter.ToDate != "" {
		where += " AND purchase_date <= ?"
		args = append(args, filter.ToDate)
	}
	return where, args
}

// List returns purchases, newest first.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Purchase, error) {
	where, args := listWhereClause(filter)
	limit, offset := storage.Paging(filter.Limit, filter.Offset)
	args = append(args, limit, offset)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+purchaseColumns+" FROM purchase"+where+" ORDER BY purchase_date DESC, created_at DESC LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Count returns the number of purchases matching the filter.
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := listWhereClause(filter)
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM purchase"+where, args...).Scan(&n)
	return n, err
}

func scanPurchase(scan func(dest ...any) error) (domain.Purchase, error) {
	var p domain.Purchase
	var items string
	var createdAt sql.NullString
	if err := scan(&p.ID, &p.InvoiceNo, &p.Supplier, &p.PurchaseDate, &items, &p.Subtotal, &p.TaxPercent,
		&p.Tax, &p.Discount, &p.Total, &p.PurchaseOrderID, &p.Notes, &createdAt); err != nil {
		return domain.Purchase{}, err
	}
	decoded, err := lineitem.Decode(items)
	if err != nil {
		return domain.Purchase{}, err
	}
	p.Items = decoded
	p.CreatedAt = storage.ParseTime(createdAt)
	return p, nil
}
