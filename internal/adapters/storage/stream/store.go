package stream

import (
	"context"
	"time"

	domain "gymbios/internal/domain/stream"
)

// Store persists streams and their bookings.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Stream, error)
	Save(ctx context.Context, value domain.Stream) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Stream, error)
	Count(ctx context.Context, filter ListFilter) (int, error)

	GetBooking(ctx context.Context, id string) (domain.Booking, error)
	SaveBooking(ctx context.Context, b domain.Booking) error
	ListBookings(ctx context.Context, streamID string) ([]domain.Booking, error)
	CountActiveBookings(ctx context.Context, streamID string) (int, error)

	// BookSeat inserts b only if the member has no active booking and a seat is free.
	// POST: domain.ErrAlreadyBooked or domain.ErrStreamFull with nothing written
	BookSeat(ctx context.Context, b domain.Booking, capacity int) error
}

// ListFilter carries filtering parameters for List and Count.
type ListFilter struct {
	Limit     int
	Offset    int
	Status    string
	TrainerID string
	From      time.Time
	To        time.Time
}

var _ Store = (*SQLiteStore)(nil)
