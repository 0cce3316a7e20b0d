package referral

import (
	"context"
	"database/sql"

	"gymbios/internal/adapters/storage"
	domain "gymbios/internal/domain/referral"
)

const (
	referralColumns = "id, referrer_id, referrer_name, referee_name, referee_phone, referee_email, referee_member_id, status, reward_points, reward_note, created_at, converted_at"
	ruleColumns     = "id, name, referrals_required, reward_type, reward_value, active, created_at"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new referral store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Referral by ID.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Referral, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+referralColumns+" FROM referral WHERE id = ?", id)
	r, err := scanReferral(row.Scan)
	return r, storage.NotFound("referral", err)
}

// Save persists a Referral (insert or update).
func (s *SQLiteStore) Save(ctx context.Context, r domain.Referral) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO referral (`+referralColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   referrer_id=excluded.referrer_id, referrer_name=excluded.referrer_name,
		   referee_name=excluded.referee_name, referee_phone=excluded.referee_phone,
		   referee_email=excluded.referee_email, referee_member_id=excluded.referee_member_id,
		   status=excluded.status, reward_points=excluded.reward_points, reward_note=excluded.reward_note,
		   converted_at=excluded.converted_at`,
		r.ID, r.ReferrerID, r.ReferrerName, r.RefereeName, r.RefereePhone, r.RefereeEmail,
		r.RefereeMemberID, r.Status, r.RewardPoints, r.RewardNote,
		storage.FormatTime(r.CreatedAt), storage.FormatTime(r.ConvertedAt),
	)
	return err
}

// Delete removes a Referral.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM referral WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.NotFound("referral", sql.ErrNoRows)
	}
	return nil
}

func listWhereClause(filter ListFilter) (string, []any) {
	where := " WHERE 1=1"
	var args []any
	if filter.ReferrerID != "" {
		where += " AND referrer_id = ?"
		args = append(args, filter.ReferrerID)
	}
	if filter.Status != "" {
		where += " AND status = ?"
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		where += " AND (referee_name LIKE ? OR referrer_name LIKE ?)"
		term := "%" + filter.Search + "%"
		args = append(args, term, term)
	}
	return where, args
}

// List returns referrals, newest first.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Referral, error) {
	where, args := listWhereClause(filter)
	limit, offset := storage.Paging(filter.Limit, filter.Offset)
	args = append(args, limit, offset)
	rows, err := s.db.QueryContext(ctx, "SELECT "+referralColumns+" FROM referral"+where+" ORDER BY created_at DESC LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Referral
	for rows.Next() {
		r, err := scanReferral(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Count returns the number of referrals matching the filter.
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := listWhereClause(filter)
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM referral"+where, args...).Scan(&n)
	return n, err
}

// CountConverted returns how many of a referrer's referrals became members.
func (s *SQLiteStore) CountConverted(ctx context.Context, referrerID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM referral WHERE referrer_id = ? AND status IN ('joined', 'rewarded')", referrerID).Scan(&n)
	return n, err
}

// GetRule retrieves a RewardRule by ID.
func (s *SQLiteStore) GetRule(ctx context.Context, id string) (domain.RewardRule, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+ruleColumns+" FROM reward_rule WHERE id = ?", id)
	r, err := scanRule(row.Scan)
	return r, storage.NotFound("reward rule", err)
}

// SaveRule persists a RewardRule (insert or update).
func (s *SQLiteStore) SaveRule(ctx context.Context, r domain.RewardRule) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reward_rule (`+ruleColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, referrals_required=excluded.referrals_required,
		   reward_type=excluded.reward_type, reward_value=excluded.reward_value, active=excluded.active`,
		r.ID, r.Name, r.ReferralsRequired, r.RewardType, r.RewardValue, storage.BoolInt(r.Active),
		storage.FormatTime(r.CreatedAt),
	)
	return err
}

// DeleteRule removes a RewardRule.
func (s *SQLiteStore) DeleteRule(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM reward_rule WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.NotFound("reward rule", sql.ErrNoRows)
	}
	return nil
}

// ListRules returns rules ordered by threshold.
func (s *SQLiteStore) ListRules(ctx context.Context, activeOnly bool) ([]domain.RewardRule, error) {
	query := "SELECT " + ruleColumns + " FROM reward_rule"
	if activeOnly {
		query += " WHERE active = 1"
	}
	query += " ORDER BY referrals_required, name"
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RewardRule
	for rows.Next() {
		r, err := scanRule(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanReferral(scan func(dest ...any) error) (domain.Referral, error) {
	var r domain.Referral
	var createdAt, convertedAt sql.NullString
	if err := scan(&r.ID, &r.ReferrerID, &r.ReferrerName, &r.RefereeName, &r.RefereePhone, &r.RefereeEmail,
		&r.RefereeMemberID, &r.Status, &r.RewardPoints, &r.RewardNote, &createdAt, &convertedAt); err != nil {
		return domain.Referral{}, err
	}
	r.CreatedAt = storage.ParseTime(createdAt)
	r.ConvertedAt = storage.ParseTime(convertedAt)
	return r, nil
}

func scanRule(scan func(dest ...any) error) (domain.RewardRule, error) {
	var r domain.RewardRule
	var active int
	var createdAt sql.NullString
	if err := scan(&r.ID, &r.Name, &r.ReferralsRequired, &r.RewardType, &r.RewardValue, &active, &createdAt); err != nil {
		return domain.RewardRule{}, err
	}
	r.Active = active == 1
	r.CreatedAt = storage.ParseTime(createdAt)
	return r, nil
}
