package member

import (
	"errors"
	"strings"
	"time"

	"gymbios/internal/domain/dates"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength = 100
)

// Business rule constants
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusExpired  = "expired"

	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// Domain errors
var (
	ErrEmptyName      = errors.New("member name cannot be empty")
	ErrNameTooLong    = errors.New("member name cannot exceed 100 characters")
	ErrInvalidEmail   = errors.New("member email must be valid")
	ErrNoContact      = errors.New("member needs a phone number or an email")
	ErrInvalidStatus  = errors.New("status must be 'active', 'inactive', or 'expired'")
	ErrInvalidGender  = errors.New("gender must be 'male', 'female', or 'other'")
	ErrInvalidJoin    = errors.New("join date must be YYYY-MM-DD")
	ErrInvalidExpiry  = errors.New("expiry date must be YYYY-MM-DD")
	ErrInvalidMonths  = errors.New("renewal must be at least one month")
	ErrAlreadyActive  = errors.New("member is already active")
	ErrAlreadyExpired = errors.New("member is already expired")
)

// Member is a gym member.
type Member struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Gender         string    `json:"gender"`
	Address        string    `json:"address"`
	PlanID         string    `json:"plan_id"`
	MembershipPlan string    `json:"membership_plan"`
	JoinDate       string    `json:"join_date"`
	ExpiryDate     string    `json:"expiry_date"`
	Status         string    `json:"status"`
	ReferralCode   string    `json:"referral_code"`
	CreatedAt      time.Time `json:"created_at"`
}

// Validate checks if the Member has valid data.
// PRE: Member struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: Name must not be empty; a phone or an email must be present
func (m *Member) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyName
	}
	if len(m.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if m.Email != "" && !strings.Contains(m.Email, "@") {
		return ErrInvalidEmail
	}
	if strings.TrimSpace(m.Email) == "" && strings.TrimSpace(m.Phone) == "" {
		return ErrNoContact
	}
	switch m.Status {
	case StatusActive, StatusInactive, StatusExpired:
	default:
		return ErrInvalidStatus
	}
	switch m.Gender {
	case "", GenderMale, GenderFemale, GenderOther:
	default:
		return ErrInvalidGender
	}
	if !dates.Valid(m.JoinDate) {
		return ErrInvalidJoin
	}
	if m.ExpiryDate != "" && !dates.Valid(m.ExpiryDate) {
		return ErrInvalidExpiry
	}
	return nil
}

// IsActive returns true if the member is currently active.
// INVARIANT: Status field is not mutated
func (m *Member) IsActive() bool {
	return m.Status == StatusActive
}

// IsExpired reports whether the membership has lapsed on the given day.
// A member without an expiry date never lapses.
func (m *Member) IsExpired(today string) bool {
	if m.ExpiryDate == "" {
		return false
	}
	return m.ExpiryDate < today
}

// ExpiresWithin reports whether the membership ends between today and today+days inclusive.
func (m *Member) ExpiresWithin(today time.Time, days int) bool {
	if m.ExpiryDate == "" {
		return false
	}
	from := today.Format(dates.Layout)
	until := today.AddDate(0, 0, days).Format(dates.Layout)
	return m.ExpiryDate >= from && m.ExpiryDate <= until
}

// Renew extends the membership by the given number of months.
// The extension starts at the later of today and the current expiry date.
// PRE: months >= 1
// POST: ExpiryDate is extended, Status is active
func (m *Member) Renew(today time.Time, months int) error {
	if months < 1 {
		return ErrInvalidMonths
	}
	start := today
	if m.ExpiryDate != "" {
		if exp, err := dates.Parse(m.ExpiryDate); err == nil && exp.After(start) {
			start = exp
		}
	}
	m.ExpiryDate = start.AddDate(0, months, 0).Format(dates.Layout)
	m.Status = StatusActive
	return nil
}

// Expire marks a lapsed membership.
// PRE: Member is not already expired
// POST: Status is expired
func (m *Member) Expire() error {
	if m.Status == StatusExpired {
		return ErrAlreadyExpired
	}
	m.Status = StatusExpired
	return nil
}

// NormalizedName is the key used for case-insensitive name matching.
func NormalizedName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
