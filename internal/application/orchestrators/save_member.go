package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gymbios/internal/domain/audit"
	"gymbios/internal/domain/dates"
	"gymbios/internal/domain/member"
	"gymbios/internal/domain/plan"
)

// MemberStoreForSave defines the store interface needed by SaveMember.
type MemberStoreForSave interface {
	GetByID(ctx context.Context, id string) (member.Member, error)
	Save(ctx context.Context, m member.Member) error
}

// PlanLookup resolves a membership plan by ID.
type PlanLookup interface {
	GetByID(ctx context.Context, id string) (plan.Plan, error)
}

// SaveMemberInput carries input for creating (empty ID) or replacing a member.
type SaveMemberInput struct {
	Member member.Member
	Actor  Actor
}

// SaveMemberDeps holds dependencies for SaveMember.
type SaveMemberDeps struct {
	MemberStore MemberStoreForSave
	PlanStore   PlanLookup
	Audit       AuditRecorder
	Notify      NotifyDeps
	GenerateID  func() string
	Now         func() time.Time
}

// ExecuteSaveMember creates or updates a member.
// PRE: Member.Name set; Member.ID empty for a new member
// POST: Member persisted with plan name resolved; new members with an email get a welcome email
// INVARIANT: CreatedAt and ReferralCode never change after creation
func ExecuteSaveMember(ctx context.Context, input SaveMemberInput, deps SaveMemberDeps) (member.Member, error) {
	now := deps.Now()
	m := input.Member
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.TrimSpace(m.Email)
	m.Phone = strings.TrimSpace(m.Phone)
	m.JoinDate = dates.Normalize(m.JoinDate)
	if input.Member.ExpiryDate != "" {
		m.ExpiryDate = dates.Normalize(m.ExpiryDate)
		if m.ExpiryDate == "" {
			return member.Member{}, invalid(member.ErrInvalidExpiry)
		}
	}
	if input.Member.JoinDate != "" && m.JoinDate == "" {
		return member.Member{}, invalid(member.ErrInvalidJoin)
	}

	creating := m.ID == ""
	if creating {
		m.ID = deps.GenerateID()
		m.CreatedAt = now
		m.ReferralCode = referralCode(m.ID)
		if m.JoinDate == "" {
			m.JoinDate = dates.Today(now)
		}
		if m.Status == "" {
			m.Status = member.StatusActive
		}
	} else {
		existing, err := deps.MemberStore.GetByID(ctx, m.ID)
		if err != nil {
			return member.Member{}, err
		}
		m.CreatedAt = existing.CreatedAt
		m.ReferralCode = existing.ReferralCode
		if m.JoinDate == "" {
			m.JoinDate = existing.JoinDate
		}
		if m.Status == "" {
			m.Status = existing.Status
		}
	}

	if m.PlanID != "" && deps.PlanStore != nil {
		p, err := deps.PlanStore.GetByID(ctx, m.PlanID)
		if err != nil {
			return member.Member{}, invalid(fmt.Errorf("plan %s: %w", m.PlanID, err))
		}
		m.MembershipPlan = p.Name
		if creating && m.ExpiryDate == "" {
			if join, err := dates.Parse(m.JoinDate); err == nil {
				m.ExpiryDate = join.AddDate(0, p.DurationMonths, 0).Format(dates.Layout)
			}
		}
	}

	if err := m.Validate(); err != nil {
		return member.Member{}, invalid(err)
	}
	if err := deps.MemberStore.Save(ctx, m); err != nil {
		return member.Member{}, fmt.Errorf("save member: %w", err)
	}

	action := audit.ActionUpdate
	if creating {
		action = audit.ActionCreate
	}
	slog.Info("member_event", "event", "member_saved", "member_id", m.ID, "created", creating)
	recordAudit(ctx, deps.Audit, input.Actor, now, auditEntry{
		Category:     audit.CategoryMember,
		Action:       action,
		ResourceType: "member",
		ResourceID:   m.ID,
		Description:  m.Name,
	})

	if creating && m.Email != "" {
		sendWelcome(ctx, deps.Notify, m)
	}
	return m, nil
}

// referralCode derives a short shareable code from the member ID.
func referralCode(id string) string {
	code := strings.ToUpper(strings.ReplaceAll(id, "-", ""))
	if len(code) > 8 {
		code = code[:8]
	}
	return "GB" + code
}

func sendWelcome(ctx context.Context, deps NotifyDeps, m member.Member) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Welcome to the gym, %s\n\n", m.Name)
	if m.MembershipPlan != "" {
		fmt.Fprintf(&b, "Your **%s** membership starts on %s", m.MembershipPlan, m.JoinDate)
		if m.ExpiryDate != "" {
			fmt.Fprintf(&b, " and runs until %s", m.ExpiryDate)
		}
		b.WriteString(".\n\n")
	}
	fmt.Fprintf(&b, "Share your referral code **%s** with friends to earn rewards.\n", m.ReferralCode)

	p, err := renderEmail("welcome", m.Email, "Welcome to the gym", b.String())
	if err != nil {
		slog.Error("email_event", "event", "email_render_failed", "kind", "welcome", "error", err.Error())
		return DeliveryFailed
	}
	return deliverEmail(ctx, deps, p)
}
