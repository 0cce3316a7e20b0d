package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gymbios/internal/domain/audit"
	"gymbios/internal/domain/dates"
	"gymbios/internal/domain/interest"
	"gymbios/internal/domain/staff"
)

// --- Staff ---

// StaffStoreForSave defines the store interface needed by SaveStaff.
type StaffStoreForSave interface {
	GetByID(ctx context.Context, id string) (staff.Staff, error)
	Save(ctx context.Context, s staff.Staff) error
}

// SaveStaffInput carries input for creating (empty ID) or replacing a staff record.
type SaveStaffInput struct {
	Staff staff.Staff
	Actor Actor
}

// SaveStaffDeps holds dependencies for SaveStaff.
type SaveStaffDeps struct {
	StaffStore StaffStoreForSave
	Audit      AuditRecorder
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteSaveStaff creates or updates an employee.
// POST: Staff persisted; new staff default to active and join today
func ExecuteSaveStaff(ctx context.Context, input SaveStaffInput, deps SaveStaffDeps) (staff.Staff, error) {
	now := deps.Now()
	s := input.Staff
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(s.Email)
	creating := s.ID == ""
	if creating {
		s.ID = deps.GenerateID()
		s.CreatedAt = now
		if s.Status == "" {
			s.Status = staff.StatusActive
		}
		if s.JoinDate == "" {
			s.JoinDate = dates.Today(now)
		}
	} else {
		existing, err := deps.StaffStore.GetByID(ctx, s.ID)
		if err != nil {
			return staff.Staff{}, err
		}
		s.CreatedAt = existing.CreatedAt
		if s.Status == "" {
			s.Status = existing.Status
		}
	}
	if err := s.Validate(); err != nil {
		return staff.Staff{}, invalid(err)
	}
	if err := deps.StaffStore.Save(ctx, s); err != nil {
		return staff.Staff{}, fmt.Errorf("save staff: %w", err)
	}
	slog.Info("staff_event", "event", "staff_saved", "staff_id", s.ID, "created", creating)
	recordAudit(ctx, deps.Audit, input.Actor, now, auditEntry{
		Category:     audit.CategoryStaff,
		Action:       createOrUpdate(creating),
		ResourceType: "staff",
		ResourceID:   s.ID,
		Description:  s.Name + " (" + s.Role + ")",
	})
	return s, nil
}

// --- Interests ---

// InterestStoreForSave defines the store interface needed by SaveInterest.
type InterestStoreForSave interface {
	GetByID(ctx context.Context, id string) (interest.Interest, error)
	Save(ctx context.Context, i interest.Interest) error
}

// SaveInterestInput carries input for creating (empty ID) or replacing a lead.
type SaveInterestInput struct {
	Interest interest.Interest
	Actor    Actor
}

// SaveInterestDeps holds dependencies for SaveInterest.
type SaveInterestDeps struct {
	InterestStore InterestStoreForSave
	Audit         AuditRecorder
	GenerateID    func() string
	Now           func() time.Time
}

// ExecuteSaveInterest creates or updates a prospective-member lead.
func ExecuteSaveInterest(ctx context.Context, input SaveInterestInput, deps SaveInterestDeps) (interest.Interest, error) {
	now := deps.Now()
	i := input.Interest
	i.Name = strings.TrimSpace(i.Name)
	creating := i.ID == ""
	if creating {
		i.ID = deps.GenerateID()
		i.CreatedAt = now
		if i.Status == "" {
			i.Status = interest.StatusNew
		}
	} else {
		existing, err := deps.InterestStore.GetByID(ctx, i.ID)
		if err != nil {
			return interest.Interest{}, err
		}
		i.CreatedAt = existing.CreatedAt
		if i.Status == "" {
			i.Status = existing.Status
		}
	}
	if err := i.Validate(); err != nil {
		return interest.Interest{}, invalid(err)
	}
	if err := deps.InterestStore.Save(ctx, i); err != nil {
		return interest.Interest{}, fmt.Errorf("save interest: %w", err)
	}
	recordAudit(ctx, deps.Audit, input.Actor, now, auditEntry{
		Category:     audit.CategoryEngage,
		Action:       createOrUpdate(creating),
		ResourceType: "interest",
		ResourceID:   i.ID,
		Description:  i.Name,
	})
	return i, nil
}
