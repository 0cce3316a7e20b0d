package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gymbios/internal/domain/audit"
	"gymbios/internal/domain/referral"
)

// ReferralStore defines the store interface needed by the referral orchestrators.
type ReferralStore interface {
	GetByID(ctx context.Context, id string) (referral.Referral, error)
	Save(ctx context.Context, r referral.Referral) error
	CountConverted(ctx context.Context, referrerID string) (int, error)
	GetRule(ctx context.Context, id string) (referral.RewardRule, error)
	SaveRule(ctx context.Context, rule referral.RewardRule) error
	ListRules(ctx context.Context, activeOnly bool) ([]referral.RewardRule, error)
}

// ReferralDeps holds dependencies for the referral orchestrators.
type ReferralDeps struct {
	ReferralStore ReferralStore
	MemberStore   MemberLookup
	Audit         AuditRecorder
	GenerateID    func() string
	Now           func() time.Time
}

// SaveReferralInput carries input for creating (empty ID) or editing a referral.
type SaveReferralInput struct {
	Referral referral.Referral
	Actor    Actor
}

// ExecuteSaveReferral creates or updates a referral.
// Conversion state and rewards are owned by ExecuteConvertReferral and survive edits.
// PRE: ReferrerID names an existing member
// POST: ReferrerName filled from the member record
func ExecuteSaveReferral(ctx context.Context, input SaveReferralInput, deps ReferralDeps) (referral.Referral, error) {
	now := deps.Now()
	r := input.Referral
	r.RefereeName = strings.TrimSpace(r.RefereeName)
	creating := r.ID == ""
	if creating {
		r.ID = deps.GenerateID()
		r.CreatedAt = now
		r.Status = referral.StatusPending
		r.RefereeMemberID = ""
		r.RewardPoints = 0
		r.RewardNote = ""
		r.ConvertedAt = time.Time{}
	} else {
		existing, err := deps.ReferralStore.GetByID(ctx, r.ID)
		if err != nil {
			return referral.Referral{}, err
		}
		r.CreatedAt = existing.CreatedAt
		r.RefereeMemberID = existing.RefereeMemberID
		r.RewardPoints = existing.RewardPoints
		r.RewardNote = existing.RewardNote
		r.ConvertedAt = existing.ConvertedAt
		switch {
		case r.Status == "":
			r.Status = existing.Status
		case existing.IsConverted() && r.Status != existing.Status:
			return referral.Referral{}, conflict(referral.ErrNotPending)
		case !existing.IsConverted() && r.Status != referral.StatusPending && r.Status != referral.StatusRejected:
			return referral.Referral{}, invalid(fmt.Errorf("use convert to mark a referral %s", r.Status))
		}
	}

	if r.ReferrerID != "" && deps.MemberStore != nil {
		m, err := deps.MemberStore.GetByID(ctx, r.ReferrerID)
		if err != nil {
			return referral.Referral{}, invalid(fmt.Errorf("referrer %s: %w", r.ReferrerID, err))
		}
		r.ReferrerName = m.Name
	}
	if err := r.Validate(); err != nil {
		return referral.Referral{}, invalid(err)
	}
	if err := deps.ReferralStore.Save(ctx, r); err != nil {
		return referral.Referral{}, fmt.Errorf("save referral: %w", err)
	}
	recordAudit(ctx, deps.Audit, input.Actor, now, auditEntry{
		Category:     audit.CategoryEngage,
		Action:       createOrUpdate(creating),
		ResourceType: "referral",
		ResourceID:   r.ID,
		Description:  r.ReferrerName + " referred " + r.RefereeName,
	})
	return r, nil
}

// ConvertReferralInput links a referral to the member account the referee joined with.
type ConvertReferralInput struct {
	ReferralID string
	MemberID   string
	Actor      Actor
}

// ConvertReferralResult reports the converted referral and the rules it triggered.
type ConvertReferralResult struct {
	Referral       referral.Referral     `json:"referral"`
	AppliedRules   []referral.RewardRule `json:"applied_rules"`
	ConvertedCount int                   `json:"converted_count"`
}

// ExecuteConvertReferral marks a pending referral joined and evaluates the reward rules.
// Every active rule whose threshold divides the referrer's converted count applies.
// PRE: referral is pending; MemberID names an existing member
// POST: Status joined, or rewarded when at least one rule applied
func ExecuteConvertReferral(ctx context.Context, input ConvertReferralInput, deps ReferralDeps) (ConvertReferralResult, error) {
	now := deps.Now()
	r, err := deps.ReferralStore.GetByID(ctx, input.ReferralID)
	if err != nil {
		return ConvertReferralResult{}, err
	}
	if input.MemberID == "" {
		return ConvertReferralResult{}, invalid(fmt.Errorf("member id is required"))
	}
	if _, err := deps.MemberStore.GetByID(ctx, input.MemberID); err != nil {
		return ConvertReferralResult{}, invalid(fmt.Errorf("member %s: %w", input.MemberID, err))
	}
	if err := r.Convert(input.MemberID, now); err != nil {
		return ConvertReferralResult{}, conflict(err)
	}

	prior, err := deps.ReferralStore.CountConverted(ctx, r.ReferrerID)
	if err != nil {
		return ConvertReferralResult{}, fmt.Errorf("count converted referrals: %w", err)
	}
	count := prior + 1
	rules, err := deps.ReferralStore.ListRules(ctx, true)
	if err != nil {
		return ConvertReferralResult{}, fmt.Errorf("list reward rules: %w", err)
	}
	applied := r.ApplyRewards(rules, count)

	if err := deps.ReferralStore.Save(ctx, r); err != nil {
		return ConvertReferralResult{}, fmt.Errorf("save referral: %w", err)
	}

	slog.Info("referral_event", "event", "referral_converted", "referral_id", r.ID, "referrer_id", r.ReferrerID, "converted_count", count, "rules_applied", len(applied))
	recordAudit(ctx, deps.Audit, input.Actor, now, auditEntry{
		Category:     audit.CategoryEngage,
		Action:       audit.ActionUpdate,
		ResourceType: "referral",
		ResourceID:   r.ID,
		Description:  fmt.Sprintf("converted; %d rule(s) applied", len(applied)),
	})
	return ConvertReferralResult{Referral: r, AppliedRules: applied, ConvertedCount: count}, nil
}

// SaveRewardRuleInput carries input for creating (empty ID) or editing a reward rule.
type SaveRewardRuleInput struct {
	Rule  referral.RewardRule
	Actor Actor
}

// ExecuteSaveRewardRule creates or updates a reward rule.
func ExecuteSaveRewardRule(ctx context.Context, input SaveRewardRuleInput, deps ReferralDeps) (referral.RewardRule, error) {
	now := deps.Now()
	rule := input.Rule
	rule.Name = strings.TrimSpace(rule.Name)
	creating := rule.ID == ""
	if creating {
		rule.ID = deps.GenerateID()
		rule.CreatedAt = now
	} else {
		existing, err := deps.ReferralStore.GetRule(ctx, rule.ID)
		if err != nil {
			return referral.RewardRule{}, err
		}
		rule.CreatedAt = existing.CreatedAt
	}
	if err := rule.Validate(); err != nil {
		return referral.RewardRule{}, invalid(err)
	}
	if err := deps.ReferralStore.SaveRule(ctx, rule); err != nil {
		return referral.RewardRule{}, fmt.Errorf("save reward rule: %w", err)
	}
	recordAudit(ctx, deps.Audit, input.Actor, now, auditEntry{
		Category:     audit.CategoryEngage,
		Action:       createOrUpdate(creating),
		ResourceType: "reward_rule",
		ResourceID:   rule.ID,
		Description:  rule.Name,
	})
	return rule, nil
}
