package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"gymbios/internal/adapters/storage"
	domain "gymbios/internal/domain/product"
)

const productColumns = "id, name, category_id, sku, unit, cost_price, sale_price, stock, reorder_level, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new product store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Product by ID.
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Product, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM product WHERE id = ?", id)
	p, err := scanProduct(row.Scan)
	return p, storage.NotFound("product", err)
}

// Save persists a Product (insert or update). Stock is only written on insert;
// later changes go through ApplyMovements.
// PRE: entity has been validated
func (s *SQLiteStore) Save(ctx context.Context, p domain.Product) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO product (`+productColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, category_id=excluded.category_id, sku=excluded.sku, unit=excluded.unit,
		   cost_price=excluded.cost_price, sale_price=excluded.sale_price,
		   reorder_level=excluded.reorder_level`,
		p.ID, p.Name, p.CategoryID, p.SKU, p.Unit, p.CostPrice, p.SalePrice, p.Stock, p.ReorderLevel,
		storage.FormatTime(p.CreatedAt),
	)
	return err
}

// Delete removes a Product.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM product WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.NotFound("product", sql.ErrNoRows)
	}
	return nil
}

func listWhereClause(filter ListFilter) (string, []any) {
	where := " WHERE 1=1"
	var args []any
	if filter.CategoryID != "" {
		where += " AND category_id = ?"
		args = append(args, filter.CategoryID)
	}
	if filter.Search != "" {
		where += " AND (name LIKE ? OR sku LIKE ?)"
		term := "%" + filter.Search + "%"
		args = append(args, term, term)
	}
	if filter.InStock {
		where += " AND stock > 0"
	}
	return where, args
}

// List returns products ordered by name.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Product, error) {
	where, args := listWhereClause(filter)
	limit, offset := storage.Paging(filter.Limit, filter.Offset)
	args = append(args, limit, offset)
	return s.query(ctx, "SELECT "+productColumns+" FROM product"+where+" ORDER BY name COLLATE NOCASE LIMIT ? OFFSET ?", args...)
}

// Count returns the number of products matching the filter.
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := listWhereClause(filter)
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM product"+where, args...).Scan(&n)
	return n, err
}

// ListLowStock returns products at or below their reorder level, emptiest first.
func (s *SQLiteStore) ListLowStock(ctx context.Context) ([]domain.Product, error) {
	return s.query(ctx, "SELECT "+productColumns+" FROM product WHERE stock <= reorder_level ORDER BY stock, name")
}

// ApplyMovements runs every adjustment in one transaction, in product ID order.
// A failure rolls back the adjustments already made.
func (s *SQLiteStore) ApplyMovements(ctx context.Context, deltas map[string]int) error {
	ids := make([]string, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return storage.InTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, id := range ids {
			if err := adjust(ctx, tx, id, deltas[id]); err != nil {
				return err
			}
		}
		return nil
	})
}

// adjust is a single conditional update so stock never goes negative.
// POST: stock += delta, or ErrInsufficientStock / storage.ErrNotFound with no change
func adjust(ctx context.Context, tx *sql.Tx, id string, delta int) error {
	if delta == 0 {
		return nil
	}
	res, err := tx.ExecContext(ctx,
		"UPDATE product SET stock = stock + ? WHERE id = ? AND stock + ? >= 0", delta, id, delta)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return nil
	}

	var stock int
	err = tx.QueryRowContext(ctx, "SELECT stock FROM product WHERE id = ?", id).Scan(&stock)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.NotFound("product "+id, err)
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("product %s has %d, needs %d: %w", id, stock, -delta, domain.ErrInsufficientStock)
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanProduct(scan func(dest ...any) error) (domain.Product, error) {
	var p domain.Product
	var createdAt sql.NullString
	if err := scan(&p.ID, &p.Name, &p.CategoryID, &p.SKU, &p.Unit, &p.CostPrice, &p.SalePrice,
		&p.Stock, &p.ReorderLevel, &createdAt); err != nil {
		return domain.Product{}, err
	}
	p.CreatedAt = storage.ParseTime(createdAt)
	return p, nil
}
