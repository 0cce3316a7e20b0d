package member

import (
	"context"
	"database/sql"

	"gymbios/internal/adapters/storage"
	domain "gymbios/internal/domain/member"
)

const memberColumns = "id, name, email, phone, gender, address, plan_id, membership_plan, join_date, expiry_date, status, referral_code, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new member store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Member by its ID.
// PRE: id is non-empty
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Member, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+memberColumns+" FROM member WHERE id = ?", id)
	m, err := scanMember(row.Scan)
	return m, storage.NotFound("member", err)
}

// Save persists a Member (insert or update).
// PRE: entity has been validated
// POST: Entity is persisted
func (s *SQLiteStore) Save(ctx context.Context, m domain.Member) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO member (`+memberColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, email=excluded.email, phone=excluded.phone, gender=excluded.gender,
		   address=excluded.address, plan_id=excluded.plan_id, membership_plan=excluded.membership_plan,
		   join_date=excluded.join_date, expiry_date=excluded.expiry_date, status=excluded.status,
		   referral_code=excluded.referral_code`,
		m.ID, m.Name, m.Email, m.Phone, m.Gender, m.Address, m.PlanID, m.MembershipPlan,
		m.JoinDate, m.ExpiryDate, m.Status, m.ReferralCode, storage.FormatTime(m.CreatedAt),
	)
	return err
}

// Delete removes a Member.
// PRE: id is non-empty
// POST: storage.ErrNotFound when no row matched
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM member WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.NotFound("member", sql.ErrNoRows)
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
	if filter.PlanID != "" {
		where += " AND plan_id = ?"
		args = append(args, filter.PlanID)
	}
	if filter.Search != "" {
		where += " AND (name LIKE ? OR email LIKE ? OR phone LIKE ?)"
		term := "%" + filter.Search + "%"
		args = append(args, term, term, term)
	}
	return where, args
}

// sortClause returns a safe ORDER BY clause. Only allowed columns are accepted.
func sortClause(filter ListFilter) string {
	allowed := map[string]string{
		"name":        "name COLLATE NOCASE",
		"join_date":   "join_date",
		"expiry_date": "expiry_date",
		"status":      "status",
	}
	col, ok := allowed[filter.Sort]
	if !ok {
		return " ORDER BY join_date DESC, name COLLATE NOCASE"
	}
	dir := "ASC"
	if filter.SortDir == "desc" {
		dir = "DESC"
	}
	return " ORDER BY " + col + " " + dir + ", id"
}

// List retrieves Members matching the filter.
// PRE: filter has valid parameters
// POST: Returns matching entities in sort order
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Member, error) {
	where, args := listWhereClause(filter)
	limit, offset := storage.Paging(filter.Limit, filter.Offset)
	query := "SELECT " + memberColumns + " FROM member" + where + sortClause(filter) + " LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Member
	for rows.Next() {
		m, err := scanMember(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, m)
	}
	return results, rows.Err()
}

// Count returns the number of Members matching the filter, ignoring paging.
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := listWhereClause(filter)
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM member"+where, args...).Scan(&n)
	return n, err
}

func scanMember(scan func(dest ...any) error) (domain.Member, error) {
	var m domain.Member
	var createdAt sql.NullString
	err := scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Gender, &m.Address, &m.PlanID,
		&m.MembershipPlan, &m.JoinDate, &m.ExpiryDate, &m.Status, &m.ReferralCode, &createdAt)
	if err != nil {
		return domain.Member{}, err
	}
	m.CreatedAt = storage.ParseTime(createdAt)
	return m, nil
}
