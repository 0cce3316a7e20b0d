package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"gymbios/internal/domain/member"
	"gymbios/internal/domain/staff"
	"gymbios/internal/domain/stream"
)

func newStreamDeps(streams *mockStreamStore) StreamDeps {
	return StreamDeps{
		StreamStore: streams,
		StaffStore:  newMockStaffStore(staff.Staff{ID: "coach-1", Name: "Ravi", Role: staff.RoleTrainer, Status: staff.StatusActive}),
		MemberStore: newMockMemberStore(
			member.Member{ID: "m-1", Name: "Asha"},
			member.Member{ID: "m-2", Name: "Ben"},
			member.Member{ID: "m-3", Name: "Chen"},
		),
		Audit:      &mockAudit{},
		GenerateID: idSeq("bk"),
		Now:        fixedNow,
	}
}

func TestExecuteSaveStream(t *testing.T) {
	streams := newMockStreamStore()
	deps := newStreamDeps(streams)
	s, err := ExecuteSaveStream(context.Background(), SaveStreamInput{Stream: stream.Stream{
		Title:       "Morning HIIT",
		TrainerID:   "coach-1",
		TrainerName: "stale",
		ScheduledAt: fixedTime.Add(24 * time.Hour),
		Capacity:    2,
	}}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.TrainerName != "Ravi" || s.Status != stream.StatusScheduled || s.DurationMinutes != 60 {
		t.Errorf("unexpected stream %+v", s)
	}

	_, err = ExecuteSaveStream(context.Background(), SaveStreamInput{Stream: stream.Stream{Title: "No time"}}, deps)
	if !errors.Is(err, stream.ErrNoSchedule) {
		t.Errorf("expected ErrNoSchedule, got %v", err)
	}
}

func TestExecuteBookStream_CapacityAndDuplicates(t *testing.T) {
	streams := newMockStreamStore(stream.Stream{ID: "s-1", Title: "HIIT", Status: stream.StatusScheduled, Capacity: 2, DurationMinutes: 45, ScheduledAt: fixedTime})
	deps := newStreamDeps(streams)
	ctx := context.Background()

	first, err := ExecuteBookStream(ctx, BookStreamInput{StreamID: "s-1", MemberID: "m-1"}, deps)
	if err != nil {
		t.Fatalf("first booking: %v", err)
	}
	if first.MemberName != "Asha" || first.Status != stream.BookingBooked {
		t.Errorf("unexpected booking %+v", first)
	}

	_, err = ExecuteBookStream(ctx, BookStreamInput{StreamID: "s-1", MemberID: "m-1"}, deps)
	if !errors.Is(err, ErrConflict) || !errors.Is(err, stream.ErrAlreadyBooked) {
		t.Errorf("expected duplicate conflict, got %v", err)
	}

	if _, err := ExecuteBookStream(ctx, BookStreamInput{StreamID: "s-1", MemberID: "m-2"}, deps); err != nil {
		t.Fatalf("second booking: %v", err)
	}
	_, err = ExecuteBookStream(ctx, BookStreamInput{StreamID: "s-1", MemberID: "m-3"}, deps)
	if !errors.Is(err, stream.ErrStreamFull) {
		t.Errorf("expected ErrStreamFull, got %v", err)
	}

	if _, err := ExecuteCancelBooking(ctx, CancelBookingInput{BookingID: first.ID}, deps); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := ExecuteBookStream(ctx, BookStreamInput{StreamID: "s-1", MemberID: "m-3"}, deps); err != nil {
		t.Errorf("cancelled seat should be free again: %v", err)
	}
	if _, err := ExecuteCancelBooking(ctx, CancelBookingInput{BookingID: first.ID}, deps); !errors.Is(err, stream.ErrNotCancellable) {
		t.Errorf("expected ErrNotCancellable, got %v", err)
	}
}

func TestExecuteBookStream_Rejections(t *testing.T) {
	streams := newMockStreamStore(
		stream.Stream{ID: "ended", Title: "Old", Status: stream.StatusEnded},
		stream.Stream{ID: "open", Title: "Open", Status: stream.StatusLive},
	)
	deps := newStreamDeps(streams)
	ctx := context.Background()

	if _, err := ExecuteBookStream(ctx, BookStreamInput{StreamID: "ended", MemberID: "m-1"}, deps); !errors.Is(err, stream.ErrNotBookable) {
		t.Errorf("expected ErrNotBookable, got %v", err)
	}
	var inv *InvalidInputError
	if _, err := ExecuteBookStream(ctx, BookStreamInput{StreamID: "open", MemberID: "ghost"}, deps); !errors.As(err, &inv) {
		t.Errorf("expected invalid input for unknown member, got %v", err)
	}
	if _, err := ExecuteBookStream(ctx, BookStreamInput{StreamID: "open"}, deps); !errors.Is(err, stream.ErrEmptyMember) {
		t.Errorf("expected ErrEmptyMember, got %v", err)
	}
}
