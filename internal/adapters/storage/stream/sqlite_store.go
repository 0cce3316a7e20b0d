package stream

import (
	"context"
	"database/sql"

	"gymbios/internal/adapters/storage"
	domain "gymbios/internal/domain/stream"
)

const (
	streamColumns  = "id, title, description, trainer_id, trainer_name, category, scheduled_at, duration_minutes, capacity, url, status, created_at"
	bookingColumns = "id, stream_id, member_id, member_name, status, booked_at"
	activeStatuses = "('booked', 'attended')"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new stream store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Stream by ID.
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Stream, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+streamColumns+" FROM stream WHERE id = ?", id)
	st, err := scanStream(row.Scan)
	return st, storage.NotFound("stream", err)
}

// Save persists a Stream (insert or update).
func (s *SQLiteStore) Save(ctx context.Context, st domain.Stream) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO stream (`+streamColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title=excluded.title, description=excluded.description, trainer_id=excluded.trainer_id,
		   trainer_name=excluded.trainer_name, category=excluded.category, scheduled_at=excluded.scheduled_at,
		   duration_minutes=excluded.duration_minutes, capacity=excluded.capacity, url=excluded.url,
		   status=excluded.status`,
		st.ID, st.Title, st.Description, st.TrainerID, st.TrainerName, st.Category,
		storage.FormatTime(st.ScheduledAt), st.DurationMinutes, st.Capacity, st.URL, st.Status,
		storage.FormatTime(st.CreatedAt),
	)
	return err
}

// Delete removes a Stream and, by cascade, its bookings.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM stream WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.NotFound("stream", sql.ErrNoRows)
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
	if filter.TrainerID != "" {
		where += " AND trainer_id = ?"
		args = append(args, filter.TrainerID)
	}
	if !filter.From.IsZero() {
		where += " AND scheduled_at >= ?"
		args = append(args, storage.FormatTime(filter.From))
	}
	if !filter.To.IsZero() {
		where += " AND scheduled_at < ?"
		args = append(args, storage.FormatTime(filter.To))
	}
	return where, args
}

// List returns streams in schedule order.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Stream, error) {
	where, args := listWhereClause(filter)
	limit, offset := storage.Paging(filter.Limit, filter.Offset)
	args = append(args, limit, offset)
	rows, err := s.db.QueryContext(ctx, "SELECT "+streamColumns+" FROM stream"+where+" ORDER BY scheduled_at LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Stream
	for rows.Next() {
		st, err := scanStream(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// Count returns the number of streams matching the filter.
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := listWhereClause(filter)
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM stream"+where, args...).Scan(&n)
	return n, err
}

// GetBooking retrieves a Booking by ID.
func (s *SQLiteStore) GetBooking(ctx context.Context, id string) (domain.Booking, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+bookingColumns+" FROM booking WHERE id = ?", id)
	b, err := scanBooking(row.Scan)
	return b, storage.NotFound("booking", err)
}

// SaveBooking persists a status change on an existing booking, or inserts it.
func (s *SQLiteStore) SaveBooking(ctx context.Context, b domain.Booking) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO booking (`+bookingColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET status=excluded.status, member_name=excluded.member_name`,
		b.ID, b.StreamID, b.MemberID, b.MemberName, b.Status, storage.FormatTime(b.BookedAt))
	return err
}

// ListBookings returns every booking for a stream in booking order.
func (s *SQLiteStore) ListBookings(ctx context.Context, streamID string) ([]domain.Booking, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+bookingColumns+" FROM booking WHERE stream_id = ? ORDER BY booked_at", streamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// CountActiveBookings returns the number of seats held on a stream.
func (s *SQLiteStore) CountActiveBookings(ctx context.Context, streamID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM booking WHERE stream_id = ? AND status IN "+activeStatuses, streamID).Scan(&n)
	return n, err
}

// BookSeat checks duplicate and capacity inside the INSERT so concurrent bookings cannot overfill.
// PRE: capacity >= 0; 0 means unlimited
func (s *SQLiteStore) BookSeat(ctx context.Context, b domain.Booking, capacity int) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO booking (`+bookingColumns+`)
		 SELECT ?, ?, ?, ?, ?, ?
		 WHERE NOT EXISTS (
		     SELECT 1 FROM booking WHERE stream_id = ? AND member_id = ? AND status IN `+activeStatuses+`)
		   AND (? = 0 OR (SELECT COUNT(*) FROM booking WHERE stream_id = ? AND status IN `+activeStatuses+`) < ?)`,
		b.ID, b.StreamID, b.MemberID, b.MemberName, b.Status, storage.FormatTime(b.BookedAt),
		b.StreamID, b.MemberID,
		capacity, b.StreamID, capacity,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return nil
	}

	var dup int
	err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM booking WHERE stream_id = ? AND member_id = ? AND status IN "+activeStatuses,
		b.StreamID, b.MemberID).Scan(&dup)
	if err != nil {
		return err
	}
	if dup > 0 {
		return domain.ErrAlreadyBooked
	}
	return domain.ErrStreamFull
}

func scanStream(scan func(dest ...any) error) (domain.Stream, error) {
	var st domain.Stream
	var scheduledAt, createdAt sql.NullString
	if err := scan(&st.ID, &st.Title, &st.Description, &st.TrainerID, &st.TrainerName, &st.Category,
		&scheduledAt, &st.DurationMinutes, &st.Capacity, &st.URL, &st.Status, &createdAt); err != nil {
		return domain.Stream{}, err
	}
	st.ScheduledAt = storage.ParseTime(scheduledAt)
	st.CreatedAt = storage.ParseTime(createdAt)
	return st, nil
}

func scanBooking(scan func(dest ...any) error) (domain.Booking, error) {
	var b domain.Booking
	var bookedAt sql.NullString
	if err := scan(&b.ID, &b.StreamID, &b.MemberID, &b.MemberName, &b.Status, &bookedAt); err != nil {
		return domain.Booking{}, err
	}
	b.BookedAt = storage.ParseTime(bookedAt)
	return b, nil
}
