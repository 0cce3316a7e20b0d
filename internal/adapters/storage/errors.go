package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned by every store when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a UNIQUE constraint rejects a write.
var ErrDuplicate = errors.New("duplicate record")

// ErrStale is returned by conditional writes when the row changed since it was read.
var ErrStale = errors.New("record changed concurrently")

// TimeLayout is the on-disk format for timestamps. Fixed width, always UTC,
// so stored values compare correctly as strings.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// NotFound maps sql.ErrNoRows to ErrNotFound, naming the entity.
// POST: errors.Is(result, ErrNotFound) when err is sql.ErrNoRows
func NotFound(entity string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %w", entity, ErrNotFound)
	}
	return err
}

// Constraint maps SQLite UNIQUE violations to ErrDuplicate.
func Constraint(entity string, err error) error {
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%s: %w", entity, ErrDuplicate)
	}
	return err
}

// FormatTime renders t for storage; the zero time is stored as NULL.
func FormatTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(TimeLayout)
}

// ParseTime reads a stored timestamp; NULL and empty give the zero time.
func ParseTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(TimeLayout, s.String)
	if err != nil {
		t, err = time.Parse(time.RFC3339Nano, s.String)
		if err != nil {
			return time.Time{}
		}
	}
	return t
}

// BoolInt converts a bool to SQLite's integer representation.
func BoolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// NoLimit asks a List method for every matching row.
const NoLimit = -1

// Paging applies the default limit used by List methods.
// A zero limit means 1000; a negative limit means no limit.
func Paging(limit, offset int) (int, int) {
	switch {
	case limit < 0:
		limit = NoLimit
	case limit == 0:
		limit = 1000
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
