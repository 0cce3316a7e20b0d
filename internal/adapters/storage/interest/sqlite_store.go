package interest

import (
	"context"
	"database/sql"

	"gymbios/internal/adapters/storage"
	domain "gymbios/internal/domain/interest"
)

const interestColumns = "id, name, phone, email, interested_in, source, status, follow_up_date, notes, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new interest store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an Interest by ID.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Interest, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+interestColumns+" FROM interest WHERE id = ?", id)
	i, err := scanInterest(row.Scan)
	return i, storage.NotFound("interest", err)
}

// Save persists an Interest (insert or update).
func (s *SQLiteStore) Save(ctx context.Context, i domain.Interest) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO interest (`+interestColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, phone=excluded.phone, email=excluded.email,
		   interested_in=excluded.interested_in, source=excluded.source, status=excluded.status,
		   follow_up_date=excluded.follow_up_date, notes=excluded.notes`,
		i.ID, i.Name, i.Phone, i.Email, i.InterestedIn, i.Source, i.Status, i.FollowUpDate, i.Notes,
		storage.FormatTime(i.CreatedAt),
	)
	return err
}

// Delete removes an Interest.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM interest WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.NotFound("interest", sql.ErrNoRows)
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
		where += " AND (name LIKE ? OR phone LIKE ? OR email LIKE ?)"
		term := "%" + filter.Search + "%"
		args = append(args, term, term, term)
	}
	return where, args
}

// List returns leads, newest first.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Interest, error) {
	where, args := listWhereClause(filter)
	limit, offset := storage.Paging(filter.Limit, filter.Offset)
	args = append(args, limit, offset)
	rows, err := s.db.QueryContext(ctx, "SELECT "+interestColumns+" FROM interest"+where+" ORDER BY created_at DESC LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Interest
	for rows.Next() {
		i, err := scanInterest(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

// Count returns the number of leads matching the filter.
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := listWhereClause(filter)
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM interest"+where, args...).Scan(&n)
	return n, err
}

func scanInterest(scan func(dest ...any) error) (domain.Interest, error) {
	var i domain.Interest
	var createdAt sql.NullString
	if err := scan(&i.ID, &i.Name, &i.Phone, &i.Email, &i.InterestedIn, &i.Source, &i.Status,
		&i.FollowUpDate, &i.Notes, &createdAt); err != nil {
		return domain.Interest{}, err
	}
	i.CreatedAt = storage.ParseTime(createdAt)
	return i, nil
}
