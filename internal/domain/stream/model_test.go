package stream_test

import (
	"testing"
	"time"

	"gymbios/internal/domain/stream"
)

// TestHasSeat verifies capacity handling, with zero meaning unlimited.
func TestHasSeat(t *testing.T) {
	s := stream.Stream{Capacity: 2}
	if !s.HasSeat(1) || s.HasSeat(2) {
		t.Error("capacity 2 mishandled")
	}
	s.Capacity = 0
	if !s.HasSeat(1000) {
		t.Error("capacity 0 should be unlimited")
	}
}

// TestValidate covers required stream metadata.
func TestValidate(t *testing.T) {
	s := stream.Stream{
		Title:           "Morning HIIT",
		Status:          stream.StatusScheduled,
		ScheduledAt:     time.Date(2024, 7, 1, 6, 30, 0, 0, time.UTC),
		DurationMinutes: 45,
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got := s.EndsAt(); !got.Equal(time.Date(2024, 7, 1, 7, 15, 0, 0, time.UTC)) {
		t.Errorf("EndsAt = %v", got)
	}
	s.Status = "paused"
	if err := s.Validate(); err != stream.ErrInvalidStatus {
		t.Errorf("Validate() = %v, want ErrInvalidStatus", err)
	}
	s.Status = stream.StatusEnded
	if s.IsBookable() {
		t.Error("ended stream should not be bookable")
	}
}

// TestBookingCancel verifies only booked seats can be released.
func TestBookingCancel(t *testing.T) {
	b := stream.Booking{Status: stream.BookingBooked}
	if err := b.Cancel(); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if b.IsActive() {
		t.Error("cancelled booking should not be active")
	}
	if err := b.Cancel(); err != stream.ErrNotCancellable {
		t.Errorf("second cancel = %v", err)
	}
}
