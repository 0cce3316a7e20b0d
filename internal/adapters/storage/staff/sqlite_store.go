package staff

import (
	"context"
	"database/sql"

	"gymbios/internal/adapters/storage"
	domain "gymbios/internal/domain/staff"
)

const staffColumns = "id, name, email, phone, role, salary, join_date, status, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new staff store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a staff member by ID.
// PRE: id is non-empty
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Staff, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+staffColumns+" FROM staff WHERE id = ?", id)
	st, err := scanStaff(row.Scan)
	return st, storage.NotFound("staff", err)
}

// Save persists a staff member (insert or update).
// PRE: entity has been validated
func (s *SQLiteStore) Save(ctx context.Context, st domain.Staff) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO staff (`+staffColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, email=excluded.email, phone=excluded.phone, role=excluded.role,
		   salary=excluded.salary, join_date=excluded.join_date, status=excluded.status`,
		st.ID, st.Name, st.Email, st.Phone, st.Role, st.Salary, st.JoinDate, st.Status,
		storage.FormatTime(st.CreatedAt),
	)
	return err
}

// Delete removes a staff member.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM staff WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.NotFound("staff", sql.ErrNoRows)
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
	if filter.Role != "" {
		where += " AND role = ?"
		args = append(args, filter.Role)
	}
	if filter.Search != "" {
		where += " AND (name LIKE ? OR email LIKE ? OR phone LIKE ?)"
		term := "%" + filter.Search + "%"
		args = append(args, term, term, term)
	}
	return where, args
}

// List returns staff ordered by name.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Staff, error) {
	where, args := listWhereClause(filter)
	limit, offset := storage.Paging(filter.Limit, filter.Offset)
	args = append(args, limit, offset)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+staffColumns+" FROM staff"+where+" ORDER BY name COLLATE NOCASE LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Staff
	for rows.Next() {
		st, err := scanStaff(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// Count returns the number of staff matching the filter.
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := listWhereClause(filter)
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM staff"+where, args...).Scan(&n)
	return n, err
}

func scanStaff(scan func(dest ...any) error) (domain.Staff, error) {
	var st domain.Staff
	var createdAt sql.NullString
	if err := scan(&st.ID, &st.Name, &st.Email, &st.Phone, &st.Role, &st.Salary, &st.JoinDate,
		&st.Status, &createdAt); err != nil {
		return domain.Staff{}, err
	}
	st.CreatedAt = storage.ParseTime(createdAt)
	return st, nil
}
