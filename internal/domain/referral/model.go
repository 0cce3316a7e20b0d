package referral

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Referral status constants
const (
	StatusPending  = "pending"
	StatusJoined   = "joined"
	StatusRewarded = "rewarded"
	StatusRejected = "rejected"
)

// Reward types
const (
	RewardPoints   = "points"
	RewardDiscount = "discount"
	RewardFreeDays = "free_days"
)

// Domain errors
var (
	ErrEmptyReferee      = errors.New("referee name cannot be empty")
	ErrNoRefereeContact  = errors.New("referee needs a phone number or an email")
	ErrEmptyReferrer     = errors.New("referrer cannot be empty")
	ErrInvalidStatus     = errors.New("invalid referral status")
	ErrNotPending        = errors.New("only pending referrals can be converted")
	ErrEmptyRuleName     = errors.New("rule name cannot be empty")
	ErrInvalidThreshold  = errors.New("referrals required must be at least one")
	ErrInvalidRewardType = errors.New("reward type must be points, discount or free_days")
	ErrNegativeReward    = errors.New("reward value cannot be negative")
)

// Referral records a member bringing in a prospective member.
type Referral struct {
	ID              string    `json:"id"`
	ReferrerID      string    `json:"referrer_id"`
	ReferrerName    string    `json:"referrer_name"`
	RefereeName     string    `json:"referee_name"`
	RefereePhone    string    `json:"referee_phone"`
	RefereeEmail    string    `json:"referee_email"`
	RefereeMemberID string    `json:"referee_member_id,omitempty"`
	Status          string    `json:"status"`
	RewardPoints    int       `json:"reward_points"`
	RewardNote      string    `json:"reward_note"`
	CreatedAt       time.Time `json:"created_at"`
	ConvertedAt     time.Time `json:"converted_at"`
}

// Validate checks if the Referral has valid data.
// PRE: Referral struct is populated
// POST: Returns nil if valid, error otherwise
func (r *Referral) Validate() error {
	if strings.TrimSpace(r.ReferrerID) == "" {
		return ErrEmptyReferrer
	}
	if strings.TrimSpace(r.RefereeName) == "" {
		return ErrEmptyReferee
	}
	if strings.TrimSpace(r.RefereePhone) == "" && strings.TrimSpace(r.RefereeEmail) == "" {
		return ErrNoRefereeContact
	}
	switch r.Status {
	case StatusPending, StatusJoined, StatusRewarded, StatusRejected:
	default:
		return ErrInvalidStatus
	}
	return nil
}

// IsConverted reports whether the referee became a member.
func (r *Referral) IsConverted() bool {
	return r.Status == StatusJoined || r.Status == StatusRewarded
}

// Convert links the referee's new membership.
// PRE: Status is pending
// POST: Status is joined, RefereeMemberID and ConvertedAt are set
func (r *Referral) Convert(memberID string, now time.Time) error {
	if r.Status != StatusPending {
		return ErrNotPending
	}
	r.Status = StatusJoined
	r.RefereeMemberID = memberID
	r.ConvertedAt = now
	return nil
}

// ApplyRewards applies every rule triggered at the referrer's convertedCount.
// Points rules add to RewardPoints; other types are described in RewardNote.
// POST: Status is rewarded if at least one rule applied
func (r *Referral) ApplyRewards(rules []RewardRule, convertedCount int) []RewardRule {
	var applied []RewardRule
	var notes []string
	for _, rule := range rules {
		if !rule.Triggers(convertedCount) {
			continue
		}
		applied = append(applied, rule)
		switch rule.RewardType {
		case RewardPoints:
			r.RewardPoints += int(rule.RewardValue.IntPart())
		case RewardDiscount:
			notes = append(notes, rule.Name+": "+rule.RewardValue.String()+"% discount")
		case RewardFreeDays:
			notes = append(notes, rule.Name+": "+rule.RewardValue.String()+" free days")
		}
	}
	if len(notes) > 0 {
		r.RewardNote = strings.Join(notes, "; ")
	}
	if len(applied) > 0 {
		r.Status = StatusRewarded
	}
	return applied
}

// RewardRule grants a reward every time a referrer reaches a multiple of ReferralsRequired.
type RewardRule struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	ReferralsRequired int             `json:"referrals_required"`
	RewardType        string          `json:"reward_type"`
	RewardValue       decimal.Decimal `json:"reward_value"`
	Active            bool            `json:"active"`
	CreatedAt         time.Time       `json:"created_at"`
}

// Validate checks if the RewardRule has valid data.
func (rr *RewardRule) Validate() error {
	if strings.TrimSpace(rr.Name) == "" {
		return ErrEmptyRuleName
	}
	if rr.ReferralsRequired < 1 {
		return ErrInvalidThreshold
	}
	switch rr.RewardType {
	case RewardPoints, RewardDiscount, RewardFreeDays:
	default:
		return ErrInvalidRewardType
	}
	if rr.RewardValue.IsNegative() {
		return ErrNegativeReward
	}
	return nil
}

// Triggers reports whether the rule fires at the given converted-referral count.
func (rr *RewardRule) Triggers(convertedCount int) bool {
	return rr.Active && convertedCount > 0 && convertedCount%rr.ReferralsRequired == 0
}
