package plan

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Domain errors
var (
	ErrEmptyName        = errors.New("plan name cannot be empty")
	ErrInvalidDuration  = errors.New("plan duration must be at least one month")
	ErrNegativePrice    = errors.New("plan price cannot be negative")
	ErrDescriptionLimit = errors.New("plan description cannot exceed 4000 characters")
)

// MaxDescriptionLength bounds the markdown description.
const MaxDescriptionLength = 4000

// Plan is a membership plan offered by the gym.
type Plan struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	DurationMonths int             `json:"duration_months"`
	Price          decimal.Decimal `json:"price"`
	Description    string          `json:"description"`
	Active         bool            `json:"active"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Validate checks if the Plan has valid data.
// PRE: Plan struct is populated
// POST: Returns nil if valid, error otherwise
func (p *Plan) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if p.DurationMonths < 1 {
		return ErrInvalidDuration
	}
	if p.Price.IsNegative() {
		return ErrNegativePrice
	}
	if len(p.Description) > MaxDescriptionLength {
		return ErrDescriptionLimit
	}
	return nil
}
