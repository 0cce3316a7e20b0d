package stream

import (
	"errors"
	"strings"
	"time"
)

// Stream status constants
const (
	StatusScheduled = "scheduled"
	StatusLive      = "live"
	StatusEnded     = "ended"
	StatusCancelled = "cancelled"
)

// Booking status constants
const (
	BookingBooked    = "booked"
	BookingCancelled = "cancelled"
	BookingAttended  = "attended"
)

// Domain errors
var (
	ErrEmptyTitle       = errors.New("stream title cannot be empty")
	ErrInvalidStatus    = errors.New("invalid stream status")
	ErrInvalidDuration  = errors.New("duration must be greater than zero")
	ErrNegativeCapacity = errors.New("capacity cannot be negative")
	ErrNoSchedule       = errors.New("scheduled_at is required")
	ErrNotBookable      = errors.New("stream is not open for booking")
	ErrStreamFull       = errors.New("stream is fully booked")
	ErrAlreadyBooked    = errors.New("member already has a booking for this stream")
	ErrNotCancellable   = errors.New("only active bookings can be cancelled")
	ErrEmptyMember      = errors.New("booking requires a member")
)

// Stream is the metadata of a live or recorded training session.
type Stream struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	TrainerID       string    `json:"trainer_id"`
	TrainerName     string    `json:"trainer_name"`
	Category        string    `json:"category"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Capacity        int       `json:"capacity"`
	URL             string    `json:"url"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

// Validate checks if the Stream has valid data.
// PRE: Stream struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Stream) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return ErrEmptyTitle
	}
	switch s.Status {
	case StatusScheduled, StatusLive, StatusEnded, StatusCancelled:
	default:
		return ErrInvalidStatus
	}
	if s.ScheduledAt.IsZero() {
		return ErrNoSchedule
	}
	if s.DurationMinutes <= 0 {
		return ErrInvalidDuration
	}
	if s.Capacity < 0 {
		return ErrNegativeCapacity
	}
	return nil
}

// IsBookable reports whether members may still book a seat.
func (s *Stream) IsBookable() bool {
	return s.Status == StatusScheduled || s.Status == StatusLive
}

// HasSeat reports whether another active booking fits. Capacity 0 means unlimited.
func (s *Stream) HasSeat(activeBookings int) bool {
	return s.Capacity == 0 || activeBookings < s.Capacity
}

// EndsAt returns the scheduled end time.
func (s *Stream) EndsAt() time.Time {
	return s.ScheduledAt.Add(time.Duration(s.DurationMinutes) * time.Minute)
}

// Booking reserves a member's seat on a stream.
type Booking struct {
	ID         string    `json:"id"`
	StreamID   string    `json:"stream_id"`
	MemberID   string    `json:"member_id"`
	MemberName string    `json:"member_name"`
	Status     string    `json:"status"`
	BookedAt   time.Time `json:"booked_at"`
}

// IsActive reports whether the booking holds a seat.
func (b *Booking) IsActive() bool {
	return b.Status == BookingBooked || b.Status == BookingAttended
}

// Cancel releases the seat.
// PRE: booking is active
// POST: Status is cancelled
func (b *Booking) Cancel() error {
	if b.Status != BookingBooked {
		return ErrNotCancellable
	}
	b.Status = BookingCancelled
	return nil
}
