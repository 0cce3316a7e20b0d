package storage

import (
	"database/sql"
	"errors"
	"testing"
	"time"
)

func TestNotFound(t *testing.T) {
	err := NotFound("member", sql.ErrNoRows)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("NotFound(sql.ErrNoRows) = %v, want ErrNotFound", err)
	}
	other := errors.New("disk full")
	if NotFound("member", other) != other {
		t.Error("other errors should pass through")
	}
	if NotFound("member", nil) != nil {
		t.Error("nil should stay nil")
	}
}

func TestTimeRoundTrip(t *testing.T) {
	in := time.Date(2024, 3, 9, 18, 45, 12, 500, time.FixedZone("IST", 19800))
	stored := FormatTime(in).(string)
	out := ParseTime(sql.NullString{String: stored, Valid: true})
	if !out.Equal(in) {
		t.Errorf("round trip = %v, want %v", out, in)
	}
	if FormatTime(time.Time{}) != nil {
		t.Error("zero time should be stored as NULL")
	}
	if !ParseTime(sql.NullString{}).IsZero() {
		t.Error("NULL should parse to zero time")
	}

	// fixed width keeps lexical order equal to time order
	a := FormatTime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)).(string)
	b := FormatTime(time.Date(2024, 1, 1, 0, 0, 0, 5e8, time.UTC)).(string)
	if !(a < b) {
		t.Errorf("%s should sort before %s", a, b)
	}
}

func TestPaging(t *testing.T) {
	tests := []struct {
		limit, offset         int
		wantLimit, wantOffset int
	}{
		{0, 0, 1000, 0},
		{20, 40, 20, 40},
		{NoLimit, 0, -1, 0},
		{10, -5, 10, 0},
	}
	for _, tt := range tests {
		l, o := Paging(tt.limit, tt.offset)
		if l != tt.wantLimit || o != tt.wantOffset {
			t.Errorf("Paging(%d, %d) = %d, %d", tt.limit, tt.offset, l, o)
		}
	}
}
