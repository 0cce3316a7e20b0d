package interest

import (
	"errors"
	"strings"
	"time"

	"gymbios/internal/domain/dates"
)

// Lead status constants
const (
	StatusNew       = "new"
	StatusContacted = "contacted"
	StatusConverted = "converted"
	StatusLost      = "lost"
)

// Lead source constants
const (
	SourceWalkIn   = "walk-in"
	SourcePhone    = "phone"
	SourceWebsite  = "website"
	SourceReferral = "referral"
	SourceSocial   = "social"
)

// Domain errors
var (
	ErrEmptyName     = errors.New("name cannot be empty")
	ErrNoContact     = errors.New("a phone number or an email is required")
	ErrInvalidStatus = errors.New("invalid interest status")
	ErrInvalidSource = errors.New("invalid interest source")
	ErrInvalidDate   = errors.New("follow-up date must be YYYY-MM-DD")
)

// Interest is an enquiry from a prospective member.
type Interest struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	InterestedIn string    `json:"interested_in"`
	Source       string    `json:"source"`
	Status       string    `json:"status"`
	FollowUpDate string    `json:"follow_up_date"`
	Notes        string    `json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
}

// Validate checks if the Interest has valid data.
func (i *Interest) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(i.Phone) == "" && strings.TrimSpace(i.Email) == "" {
		return ErrNoContact
	}
	switch i.Status {
	case StatusNew, StatusContacted, StatusConverted, StatusLost:
	default:
		return ErrInvalidStatus
	}
	switch i.Source {
	case "", SourceWalkIn, SourcePhone, SourceWebsite, SourceReferral, SourceSocial:
	default:
		return ErrInvalidSource
	}
	if i.FollowUpDate != "" && !dates.Valid(i.FollowUpDate) {
		return ErrInvalidDate
	}
	return nil
}

// IsOpen reports whether the lead still needs follow-up.
func (i *Interest) IsOpen() bool {
	return i.Status == StatusNew || i.Status == StatusContacted
}
