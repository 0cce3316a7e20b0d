package account

import (
	"context"
	"database/sql"
	"strings"

	"gymbios/internal/adapters/storage"
	domain "gymbios/internal/domain/account"
)

const accountColumns = "id, email, password_hash, role, staff_id, created_at, failed_logins, locked_until, password_change_required"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new account store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an Account by its ID.
// PRE: id is non-empty
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM account WHERE id = ?", id)
	a, err := scanAccount(row.Scan)
	return a, storage.NotFound("account", err)
}

// GetByEmail retrieves an Account by email, case-insensitively.
// PRE: email is non-empty
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM account WHERE email = ? COLLATE NOCASE",
		strings.TrimSpace(email))
	a, err := scanAccount(row.Scan)
	return a, storage.NotFound("account", err)
}

// Save persists an Account (insert or update).
// PRE: entity has been validated
// POST: Entity is persisted; duplicate email gives storage.ErrDuplicate
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Account) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO account (`+accountColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   email=excluded.email, password_hash=excluded.password_hash, role=excluded.role,
		   staff_id=excluded.staff_id, failed_logins=excluded.failed_logins,
		   locked_until=excluded.locked_until, password_change_required=excluded.password_change_required`,
		entity.ID, entity.Email, entity.PasswordHash, entity.Role, entity.StaffID,
		storage.FormatTime(entity.CreatedAt), entity.FailedLogins, storage.FormatTime(entity.LockedUntil),
		storage.BoolInt(entity.PasswordChangeRequired),
	)
	return storage.Constraint("account", err)
}

// Delete removes an Account.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM account WHERE id = ?", id)
	return err
}

// List returns accounts ordered by email.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Account, error) {
	query := "SELECT " + accountColumns + " FROM account WHERE 1=1"
	var args []any
	if filter.Role != "" {
		query += " AND role = ?"
		args = append(args, filter.Role)
	}
	limit, offset := storage.Paging(filter.Limit, filter.Offset)
	query += " ORDER BY email LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Count returns the number of accounts.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM account").Scan(&n)
	return n, err
}

func scanAccount(scan func(dest ...any) error) (domain.Account, error) {
	var a domain.Account
	var createdAt, lockedUntil sql.NullString
	var mustChange int
	err := scan(&a.ID, &a.Email, &a.PasswordHash, &a.Role, &a.StaffID, &createdAt,
		&a.FailedLogins, &lockedUntil, &mustChange)
	if err != nil {
		return domain.Account{}, err
	}
	a.CreatedAt = storage.ParseTime(createdAt)
	a.LockedUntil = storage.ParseTime(lockedUntil)
	a.PasswordChangeRequired = mustChange == 1
	return a, nil
}
