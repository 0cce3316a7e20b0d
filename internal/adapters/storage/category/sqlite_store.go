package category

import (
	"context"
	"database/sql"

	"gymbios/internal/adapters/storage"
	domain "gymbios/internal/domain/category"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new category store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Category by ID.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Category, error) {
	var c domain.Category
	var createdAt sql.NullString
	err := s.db.QueryRowContext(ctx, "SELECT id, name, description, created_at FROM category WHERE id = ?", id).
		Scan(&c.ID, &c.Name, &c.Description, &createdAt)
	if err != nil {
		return domain.Category{}, storage.NotFound("category", err)
	}
	c.CreatedAt = storage.ParseTime(createdAt)
	return c, nil
}

// Save persists a Category. Names are unique regardless of case.
// POST: storage.ErrDuplicate when the name is taken
func (s *SQLiteStore) Save(ctx context.Context, c domain.Category) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO category (id, name, description, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name=excluded.name, description=excluded.description`,
		c.ID, c.Name, c.Description, storage.FormatTime(c.CreatedAt))
	return storage.Constraint("category", err)
}

// Delete removes a Category.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM category WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.NotFound("category", sql.ErrNoRows)
	}
	return nil
}

// List returns all categories ordered by name.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, description, created_at FROM category ORDER BY name COLLATE NOCASE")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		var c domain.Category
		var createdAt sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &createdAt); err != nil {
			return nil, err
		}
		c.CreatedAt = storage.ParseTime(createdAt)
		out = append(out, c)
	}
	return out, rows.Err()
}
