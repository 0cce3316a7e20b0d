package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"gymbios/internal/adapters/storage"
	domain "gymbios/internal/domain/audit"
)

const eventColumns = "id, timestamp, category, action, severity, actor_id, actor_email, actor_role, resource_id, resource_type, description, ip_address, user_agent"

// SQLiteStore keeps the trail in the audit_event table.
type SQLiteStore struct {
	db storage.SQLDB
}

func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save validates and appends e. Reusing an id is a storage.ErrDuplicate.
func (s *SQLiteStore) Save(ctx context.Context, e domain.Event) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("audit save: %w", err)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_event (`+eventColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, storage.FormatTime(e.Timestamp), e.Category, e.Action, e.Severity,
		e.ActorID, e.ActorEmail, e.ActorRole, e.ResourceID, e.ResourceType, e.Description,
		e.IPAddress, e.UserAgent)
	return storage.Constraint("audit event", err)
}

// where renders f as a SQL condition with its arguments.
func (f Filter) where() (string, []any) {
	var conds []string
	var args []any
	eq := func(col, v string) {
		if v != "" {
			conds = append(conds, col+" = ?")
			args = append(args, v)
		}
	}
	eq("category", string(f.Category))
	eq("action", string(f.Action))
	eq("actor_id", f.ActorID)
	eq("resource_type", f.ResourceType)
	eq("resource_id", f.ResourceID)
	if f.FromDate != "" {
		conds = append(conds, "substr(timestamp, 1, 10) >= ?")
		args = append(args, f.FromDate)
	}
	if f.ToDate != "" {
		conds = append(conds, "substr(timestamp, 1, 10) <= ?")
		args = append(args, f.ToDate)
	}
	if sevs := f.MinSeverity.AtLeast(); f.MinSeverity != "" && len(sevs) > 0 {
		conds = append(conds, "severity IN (?"+strings.Repeat(", ?", len(sevs)-1)+")")
		for _, sv := range sevs {
			args = append(args, string(sv))
		}
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns matching events, newest first. Ties on timestamp break by id.
func (s *SQLiteStore) List(ctx context.Context, f Filter, limit int) ([]domain.Event, error) {
	where, args := f.where()
	limit, _ = storage.Paging(limit, 0)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+eventColumns+" FROM audit_event"+where+" ORDER BY timestamp DESC, id DESC LIMIT ?",
		append(args, limit)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Event, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+eventColumns+" FROM audit_event WHERE id = ?", id)
	e, err := scanEvent(row.Scan)
	return e, storage.NotFound("audit event", err)
}

func scanEvent(scan func(dest ...any) error) (domain.Event, error) {
	var e domain.Event
	var ts sql.NullString
	if err := scan(&e.ID, &ts, &e.Category, &e.Action, &e.Severity, &e.ActorID, &e.ActorEmail,
		&e.ActorRole, &e.ResourceID, &e.ResourceType, &e.Description, &e.IPAddress, &e.UserAgent); err != nil {
		return domain.Event{}, err
	}
	e.Timestamp = storage.ParseTime(ts)
	return e, nil
}
