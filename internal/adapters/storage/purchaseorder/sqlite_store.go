package purchaseorder

import (
	"context"
	"database/sql"

	"gymbios/internal/adapters/storage"
	"gymbios/internal/domain/lineitem"
	domain "gymbios/internal/domain/purchaseorder"
)

const poColumns = "id, po_number, supplier, order_date, expected_date, status, items_json, total, notes, purchase_id, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new purchase order store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a PurchaseOrder by ID.
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.PurchaseOrder, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+poColumns+" FROM purchase_order WHERE id = ?", id)
	po, err := scanOrder(row.Scan)
	return po, storage.NotFound("purchase order", err)
}

// Save persists a PurchaseOrder (insert or update). An update only applies
// while the stored order is still open, so a stale edit cannot overwrite a
// received or cancelled order.
// PRE: ComputeTotals and Validate have been called
// POST: domain.ErrInvalidTransition when the stored order is closed
func (s *SQLiteStore) Save(ctx context.Context, po domain.PurchaseOrder) error {
	items, err := lineitem.Encode(po.Items)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO purchase_order (`+poColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   supplier=excluded.supplier, order_date=excluded.order_date, expected_date=excluded.expected_date,
		   status=excluded.status, items_json=excluded.items_json, total=excluded.total,
		   notes=excluded.notes, purchase_id=excluded.purchase_id
		 WHERE purchase_order.status IN (?, ?)`,
		po.ID, po.PONumber, po.Supplier, po.OrderDate, po.ExpectedDate, po.Status, items, po.Total,
		po.Notes, po.PurchaseID, storage.FormatTime(po.CreatedAt),
		domain.StatusPending, domain.StatusApproved,
	)
	if err != nil {
		return storage.Constraint("purchase order", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

// ClaimReceipt moves an open order to received and links it to purchaseID in a
// single conditional update. Of several concurrent claims exactly one succeeds.
// POST: storage.ErrNotFound, or domain.ErrInvalidTransition when the order is
// no longer pending or approved
func (s *SQLiteStore) ClaimReceipt(ctx context.Context, id, purchaseID string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE purchase_order SET status = ?, purchase_id = ? WHERE id = ? AND status IN (?, ?)",
		domain.StatusReceived, purchaseID, id, domain.StatusPending, domain.StatusApproved)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return nil
	}
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return domain.ErrInvalidTransition
}

// ReleaseReceipt undoes a ClaimReceipt whose purchase could not be recorded,
// restoring status. It only touches the order while it still carries purchaseID.
func (s *SQLiteStore) ReleaseReceipt(ctx context.Context, id, purchaseID, status string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE purchase_order SET status = ?, purchase_id = '' WHERE id = ? AND purchase_id = ? AND status = ?",
		status, id, purchaseID, domain.StatusReceived)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.NotFound("purchase order receipt", sql.ErrNoRows)
	}
	return nil
}

// Delete removes a PurchaseOrder.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM purchase_order WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.NotFound("purchase order", sql.ErrNoRows)
	}
	return nil
}

func listWhereClause(filter ListFilter) (string, []any) {
	where := " WHERE 1=1"
	var args []any
	if filter.Status != "" {
		where += " AND status = ?"
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		where += " AND (po_number LIKE ? OR supplier LIKE ?)"
		term := "%" + filter.Search + "%"
		args = append(args, term, term)
	}
	return where, args
}

// List returns orders, newest first.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.PurchaseOrder, error) {
	where, args := listWhereClause(filter)
	limit, offset := storage.Paging(filter.Limit, filter.Offset)
	args = append(args, limit, offset)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+poColumns+" FROM purchase_order"+where+" ORDER BY order_date DESC, created_at DESC LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PurchaseOrder
	for rows.Next() {
		po, err := scanOrder(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, po)
	}
	return out, rows.Err()
}

// Count returns the number of orders matching the filter.
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := listWhereClause(filter)
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM purchase_order"+where, args...).Scan(&n)
	return n, err
}

func scanOrder(scan func(dest ...any) error) (domain.PurchaseOrder, error) {
	var po domain.PurchaseOrder
	var items string
	var createdAt sql.NullString
	if err := scan(&po.ID, &po.PONumber, &po.Supplier, &po.OrderDate, &po.ExpectedDate, &po.Status,
		&items, &po.Total, &po.Notes, &po.PurchaseID, &createdAt); err != nil {
		return domain.PurchaseOrder{}, err
	}
	decoded, err := lineitem.Decode(items)
	if err != nil {
		return domain.PurchaseOrder{}, err
	}
	po.Items = decoded
	po.CreatedAt = storage.ParseTime(createdAt)
	return po, nil
}
