package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gymbios/internal/domain/account"
	"gymbios/internal/domain/audit"
)

// AccountStoreForCreate defines the store interface needed by CreateAccount.
type AccountStoreForCreate interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
	Count(ctx context.Context) (int, error)
}

// CreateAccountInput carries input for the orchestrator.
type CreateAccountInput struct {
	Email                  string
	Password               string
	Role                   string
	StaffID                string
	PasswordChangeRequired bool
	Actor                  Actor
}

// CreateAccountDeps holds dependencies for CreateAccount.
type CreateAccountDeps struct {
	AccountStore AccountStoreForCreate
	Audit        AuditRecorder
	GenerateID   func() string
	Now          func() time.Time
}

var ErrEmailAlreadyExists = errors.New("an account with this email already exists")

// ExecuteCreateAccount coordinates account creation.
// PRE: Valid email, password >= 12 chars, valid role
// POST: Account created with hashed password
// INVARIANT: Email must be unique
func ExecuteCreateAccount(ctx context.Context, input CreateAccountInput, deps CreateAccountDeps) (account.Account, error) {
	acct := account.Account{
		ID:                     deps.GenerateID(),
		Email:                  account.NormalizeEmail(input.Email),
		Role:                   input.Role,
		StaffID:                input.StaffID,
		CreatedAt:              deps.Now(),
		PasswordChangeRequired: input.PasswordChangeRequired,
	}
	if err := acct.Validate(); err != nil {
		return account.Account{}, invalid(err)
	}
	if err := acct.SetPassword(input.Password); err != nil {
		if account.IsPolicyError(err) {
			return account.Account{}, invalid(err)
		}
		return account.Account{}, err
	}

	if _, err := deps.AccountStore.GetByEmail(ctx, acct.Email); err == nil {
		return account.Account{}, conflict(ErrEmailAlreadyExists)
	}

	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return account.Account{}, fmt.Errorf("save account: %w", err)
	}

	slog.Info("auth_event", "event", "account_created", "email", acct.Email, "role", acct.Role)
	recordAudit(ctx, deps.Audit, input.Actor, acct.CreatedAt, auditEntry{
		Category:     audit.CategoryAccount,
		Action:       audit.ActionCreate,
		ResourceType: "account",
		ResourceID:   acct.ID,
		Description:  "created " + acct.Role + " account " + acct.Email,
	})
	return acct, nil
}

// ExecuteSeedAdmin creates a default admin account if no accounts exist.
// PRE: Database is initialized
// POST: Admin account created if count == 0
func ExecuteSeedAdmin(ctx context.Context, deps CreateAccountDeps, email, password string) error {
	count, err := deps.AccountStore.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	_, err = ExecuteCreateAccount(ctx, CreateAccountInput{
		Email:                  email,
		Password:               password,
		Role:                   account.RoleAdmin,
		PasswordChangeRequired: true,
		Actor:                  Actor{Email: "system", Role: "system"},
	}, deps)
	if err != nil {
		return err
	}

	slog.Info("auth_event", "event", "admin_seeded", "email", email)
	return nil
}
