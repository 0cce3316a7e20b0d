package plan

import (
	"context"
	"database/sql"

	"gymbios/internal/adapters/storage"
	domain "gymbios/internal/domain/plan"
)

const planColumns = "id, name, duration_months, price, description, active, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new plan store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Plan by ID.
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Plan, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+planColumns+" FROM plan WHERE id = ?", id)
	p, err := scanPlan(row.Scan)
	return p, storage.NotFound("plan", err)
}

// Save persists a Plan (insert or update).
func (s *SQLiteStore) Save(ctx context.Context, p domain.Plan) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO plan (`+planColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, duration_months=excluded.duration_months, price=excluded.price,
		   description=excluded.description, active=excluded.active`,
		p.ID, p.Name, p.DurationMonths, p.Price, p.Description, storage.BoolInt(p.Active),
		storage.FormatTime(p.CreatedAt),
	)
	return err
}

// Delete removes a Plan. Members keep the plan name they were given.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM plan WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.NotFound("plan", sql.ErrNoRows)
	}
	return nil
}

// List returns plans ordered by duration then name.
func (s *SQLiteStore) List(ctx context.Context, activeOnly bool) ([]domain.Plan, error) {
	query := "SELECT " + planColumns + " FROM plan"
	if activeOnly {
		query += " WHERE active = 1"
	}
	query += " ORDER BY duration_months, name"
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Plan
	for rows.Next() {
		p, err := scanPlan(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPlan(scan func(dest ...any) error) (domain.Plan, error) {
	var p domain.Plan
	var active int
	var createdAt sql.NullString
	if err := scan(&p.ID, &p.Name, &p.DurationMonths, &p.Price, &p.Description, &active, &createdAt); err != nil {
		return domain.Plan{}, err
	}
	p.Active = active == 1
	p.CreatedAt = storage.ParseTime(createdAt)
	return p, nil
}
