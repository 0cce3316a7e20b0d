package staff

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"gymbios/internal/domain/dates"
)

// Role constants
const (
	RoleTrainer      = "trainer"
	RoleReceptionist = "receptionist"
	RoleManager      = "manager"
	RoleCleaner      = "cleaner"
	RoleOther        = "other"
)

// Status constants
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Domain errors
var (
	ErrEmptyName      = errors.New("staff name cannot be empty")
	ErrInvalidRole    = errors.New("role must be trainer, receptionist, manager, cleaner or other")
	ErrInvalidStatus  = errors.New("status must be 'active' or 'inactive'")
	ErrNegativeSalary = errors.New("salary cannot be negative")
	ErrInvalidEmail   = errors.New("staff email must be valid")
	ErrInvalidJoin    = errors.New("join date must be YYYY-MM-DD")
)

// Staff is an employee on the payroll.
type Staff struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Phone     string          `json:"phone"`
	Role      string          `json:"role"`
	Salary    decimal.Decimal `json:"salary"`
	JoinDate  string          `json:"join_date"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

// Validate checks if the Staff record has valid data.
// PRE: Staff struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Staff) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	switch s.Role {
	case RoleTrainer, RoleReceptionist, RoleManager, RoleCleaner, RoleOther:
	default:
		return ErrInvalidRole
	}
	if s.Status != StatusActive && s.Status != StatusInactive {
		return ErrInvalidStatus
	}
	if s.Salary.IsNegative() {
		return ErrNegativeSalary
	}
	if s.Email != "" && !strings.Contains(s.Email, "@") {
		return ErrInvalidEmail
	}
	if s.JoinDate != "" && !dates.Valid(s.JoinDate) {
		return ErrInvalidJoin
	}
	return nil
}

// IsActive returns true if the staff member is on the active payroll.
func (s *Staff) IsActive() bool {
	return s.Status == StatusActive
}
