package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gymbios/internal/domain/audit"
	"gymbios/internal/domain/staff"
	"gymbios/internal/domain/stream"
)

// StreamStore defines the store interface needed by the stream orchestrators.
type StreamStore interface {
	GetByID(ctx context.Context, id string) (stream.Stream, error)
	Save(ctx context.Context, s stream.Stream) error
	GetBooking(ctx context.Context, id string) (stream.Booking, error)
	SaveBooking(ctx context.Context, b stream.Booking) error
	// BookSeat inserts b only if the member has no active booking and a seat is free.
	BookSeat(ctx context.Context, b stream.Booking, capacity int) error
}

// StaffLookup resolves an employee by ID.
type StaffLookup interface {
	GetByID(ctx context.Context, id string) (staff.Staff, error)
}

// StreamDeps holds dependencies for the stream orchestrators.
type StreamDeps struct {
	StreamStore StreamStore
	StaffStore  StaffLookup
	MemberStore MemberLookup
	Audit       AuditRecorder
	GenerateID  func() string
	Now         func() time.Time
}

// SaveStreamInput carries input for scheduling (empty ID) or editing a stream.
type SaveStreamInput struct {
	Stream stream.Stream
	Actor  Actor
}

// ExecuteSaveStream creates or updates a training stream.
// PRE: Title and ScheduledAt set
// POST: TrainerName filled from the staff record when TrainerID is set
func ExecuteSaveStream(ctx context.Context, input SaveStreamInput, deps StreamDeps) (stream.Stream, error) {
	now := deps.Now()
	s := input.Stream
	s.Title = strings.TrimSpace(s.Title)
	creating := s.ID == ""
	if creating {
		s.ID = deps.GenerateID()
		s.CreatedAt = now
		if s.Status == "" {
			s.Status = stream.StatusScheduled
		}
	} else {
		existing, err := deps.StreamStore.GetByID(ctx, s.ID)
		if err != nil {
			return stream.Stream{}, err
		}
		s.CreatedAt = existing.CreatedAt
		if s.Status == "" {
			s.Status = existing.Status
		}
	}
	if s.DurationMinutes == 0 {
		s.DurationMinutes = 60
	}
	if s.TrainerID != "" && deps.StaffStore != nil {
		trainer, err := deps.StaffStore.GetByID(ctx, s.TrainerID)
		if err != nil {
			return stream.Stream{}, invalid(fmt.Errorf("trainer %s: %w", s.TrainerID, err))
		}
		s.TrainerName = trainer.Name
	}
	if err := s.Validate(); err != nil {
		return stream.Stream{}, invalid(err)
	}
	if err := deps.StreamStore.Save(ctx, s); err != nil {
		return stream.Stream{}, fmt.Errorf("save stream: %w", err)
	}
	recordAudit(ctx, deps.Audit, input.Actor, now, auditEntry{
		Category:     audit.CategoryEngage,
		Action:       createOrUpdate(creating),
		ResourceType: "stream",
		ResourceID:   s.ID,
		Description:  s.Title,
	})
	return s, nil
}

// BookStreamInput carries a seat request.
type BookStreamInput struct {
	StreamID string
	MemberID string
	Actor    Actor
}

// ExecuteBookStream reserves a seat for a member.
// PRE: stream is scheduled or live
// POST: an active booking exists; ErrConflict wraps stream.ErrAlreadyBooked,
// stream.ErrStreamFull or stream.ErrNotBookable otherwise
// INVARIANT: active bookings never exceed a non-zero capacity
func ExecuteBookStream(ctx context.Context, input BookStreamInput, deps StreamDeps) (stream.Booking, error) {
	if input.MemberID == "" {
		return stream.Booking{}, invalid(stream.ErrEmptyMember)
	}
	s, err := deps.StreamStore.GetByID(ctx, input.StreamID)
	if err != nil {
		return stream.Booking{}, err
	}
	if !s.IsBookable() {
		return stream.Booking{}, conflict(stream.ErrNotBookable)
	}
	m, err := deps.MemberStore.GetByID(ctx, input.MemberID)
	if err != nil {
		return stream.Booking{}, invalid(fmt.Errorf("member %s: %w", input.MemberID, err))
	}

	b := stream.Booking{
		ID:         deps.GenerateID(),
		StreamID:   s.ID,
		MemberID:   m.ID,
		MemberName: m.Name,
		Status:     stream.BookingBooked,
		BookedAt:   deps.Now(),
	}
	if err := deps.StreamStore.BookSeat(ctx, b, s.Capacity); err != nil {
		if errors.Is(err, stream.ErrAlreadyBooked) || errors.Is(err, stream.ErrStreamFull) {
			slog.Info("stream_event", "event", "booking_rejected", "stream_id", s.ID, "member_id", m.ID, "reason", err.Error())
			return stream.Booking{}, conflict(err)
		}
		return stream.Booking{}, fmt.Errorf("book seat: %w", err)
	}

	slog.Info("stream_event", "event", "booking_created", "stream_id", s.ID, "member_id", m.ID)
	recordAudit(ctx, deps.Audit, input.Actor, b.BookedAt, auditEntry{
		Category:     audit.CategoryEngage,
		Action:       audit.ActionCreate,
		ResourceType: "booking",
		ResourceID:   b.ID,
		Description:  m.Name + " booked " + s.Title,
	})
	return b, nil
}

// CancelBookingInput names the booking to release.
type CancelBookingInput struct {
	BookingID string
	Actor     Actor
}

// ExecuteCancelBooking releases a booked seat.
// POST: booking cancelled; the seat is free for another member
func ExecuteCancelBooking(ctx context.Context, input CancelBookingInput, deps StreamDeps) (stream.Booking, error) {
	b, err := deps.StreamStore.GetBooking(ctx, input.BookingID)
	if err != nil {
		return stream.Booking{}, err
	}
	if err := b.Cancel(); err != nil {
		return stream.Booking{}, conflict(err)
	}
	if err := deps.StreamStore.SaveBooking(ctx, b); err != nil {
		return stream.Booking{}, fmt.Errorf("save booking: %w", err)
	}
	slog.Info("stream_event", "event", "booking_cancelled", "stream_id", b.StreamID, "booking_id", b.ID)
	recordAudit(ctx, deps.Audit, input.Actor, deps.Now(), auditEntry{
		Category:     audit.CategoryEngage,
		Action:       audit.ActionCancel,
		ResourceType: "booking",
		ResourceID:   b.ID,
		Description:  b.MemberName,
	})
	return b, nil
}
