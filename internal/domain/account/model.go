// Package account models back-office logins: who may sign in to the
// dashboard, with which role, and the lockout state that guards the password.
package account

import (
	"errors"
	"slices"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	MaxEmailLength = 254
	MinPassword    = 12
	// MaxPassword is bcrypt's input limit in bytes; longer input is rejected, not truncated.
	MaxPassword  = 72
	MaxFailures  = 5
	LockDuration = 15 * time.Minute
)

// Roles. Admins manage accounts, staff and salary; managers run stock and
// purchasing; staff work the front desk.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleStaff   = "staff"
)

var (
	// AllRoles may sign in.
	AllRoles = []string{RoleAdmin, RoleManager, RoleStaff}
	// ManagerRoles may change catalogue, stock and purchasing records.
	ManagerRoles = []string{RoleAdmin, RoleManager}
	// AdminRoles see accounts, staff, salary and the admin tools.
	AdminRoles = []string{RoleAdmin}
)

// HashCost is the bcrypt cost for new hashes. Tests lower it to bcrypt.MinCost.
var HashCost = 12

var (
	ErrInvalidEmail     = errors.New("email must contain '@'")
	ErrEmptyEmail       = errors.New("email cannot be empty")
	ErrEmailTooLong     = errors.New("email cannot exceed 254 characters")
	ErrInvalidRole      = errors.New("role must be one of: admin, manager, staff")
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrPasswordTooShort = errors.New("password must be at least 12 characters")
	ErrPasswordTooLong  = errors.New("password cannot exceed 72 bytes")
	ErrWrongPassword    = errors.New("incorrect password")
)

// Account is a dashboard login, optionally linked to a staff record.
type Account struct {
	ID                     string    `json:"id"`
	Email                  string    `json:"email"`
	PasswordHash           string    `json:"-"`
	Role                   string    `json:"role"`
	StaffID                string    `json:"staff_id,omitempty"`
	CreatedAt              time.Time `json:"created_at"`
	FailedLogins           int       `json:"-"`
	LockedUntil            time.Time `json:"-"`
	PasswordChangeRequired bool      `json:"password_change_required"`
}

// NormalizeEmail is the stored and looked-up form of a login email.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate checks email shape and role.
// PRE: Email already normalized
func (a *Account) Validate() error {
	switch {
	case a.Email == "":
		return ErrEmptyEmail
	case len(a.Email) > MaxEmailLength:
		return ErrEmailTooLong
	case !strings.Contains(a.Email, "@"):
		return ErrInvalidEmail
	case !slices.Contains(AllRoles, a.Role):
		return ErrInvalidRole
	}
	return nil
}

// IsPolicyError reports whether err is a password rule violation, as opposed
// to a hashing failure.
func IsPolicyError(err error) bool {
	return errors.Is(err, ErrEmptyPassword) || errors.Is(err, ErrPasswordTooShort) || errors.Is(err, ErrPasswordTooLong)
}

// SetPassword hashes plaintext with bcrypt at HashCost.
// POST: PasswordHash replaced; PasswordChangeRequired unchanged
func (a *Account) SetPassword(plaintext string) error {
	switch {
	case plaintext == "":
		return ErrEmptyPassword
	case len(plaintext) < MinPassword:
		return ErrPasswordTooShort
	case len(plaintext) > MaxPassword:
		return ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), HashCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

// CheckPassword compares plaintext with the stored hash. An account without
// a hash never authenticates.
func (a *Account) CheckPassword(plaintext string) error {
	if a.PasswordHash == "" {
		return ErrWrongPassword
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(plaintext)) != nil {
		return ErrWrongPassword
	}
	return nil
}

func (a *Account) IsLocked(now time.Time) bool {
	return !a.LockedUntil.IsZero() && now.Before(a.LockedUntil)
}

// RecordFailedLogin counts a wrong password and reports whether this failure
// locked the account.
// POST: LockedUntil = now + LockDuration once FailedLogins reaches MaxFailures
func (a *Account) RecordFailedLogin(now time.Time) bool {
	a.FailedLogins++
	if a.FailedLogins < MaxFailures {
		return false
	}
	a.LockedUntil = now.Add(LockDuration)
	return true
}

// ResetFailedLogins reports whether there was anything to reset.
func (a *Account) ResetFailedLogins() bool {
	if a.FailedLogins == 0 && a.LockedUntil.IsZero() {
		return false
	}
	a.FailedLogins = 0
	a.LockedUntil = time.Time{}
	return true
}

func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanManage reports whether the account may change stock and purchasing records.
func (a *Account) CanManage() bool {
	return slices.Contains(ManagerRoles, a.Role)
}
