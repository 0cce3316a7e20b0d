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

// ChangePasswordInput carries input for the change-password orchestrator.
type ChangePasswordInput struct {
	AccountID       string
	CurrentPassword string
	NewPassword     string
	Actor           Actor
}

// AccountStoreForChangePassword defines the store interface needed by ChangePassword.
type AccountStoreForChangePassword interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// ChangePasswordDeps holds dependencies for ChangePassword.
type ChangePasswordDeps struct {
	AccountStore AccountStoreForChangePassword
	Audit        AuditRecorder
	Now          func() time.Time
}

var (
	ErrCurrentPasswordWrong = errors.New("current password is incorrect")
	ErrNewPasswordSame      = errors.New("new password must be different from current password")
)

// ExecuteChangePassword replaces the caller's password after re-checking the current one.
// A wrong current password is audited at warning: it is the usual sign of a borrowed session.
// PRE: AccountID is the signed-in account
// POST: Password replaced and PasswordChangeRequired cleared
func ExecuteChangePassword(ctx context.Context, input ChangePasswordInput, deps ChangePasswordDeps) error {
	if input.AccountID == "" || input.CurrentPassword == "" || input.NewPassword == "" {
		return invalid(errors.New("current_password and new_password are required"))
	}
	if input.CurrentPassword == input.NewPassword {
		return invalid(ErrNewPasswordSame)
	}

	acct, err := deps.AccountStore.GetByID(ctx, input.AccountID)
	if err != nil {
		return err
	}
	now := deps.Now()
	entry := auditEntry{
		Category:     audit.CategorySecurity,
		Action:       audit.ActionUpdate,
		ResourceType: "account",
		ResourceID:   acct.ID,
	}

	if acct.CheckPassword(input.CurrentPassword) != nil {
		entry.Description, entry.Severity = "password change refused: wrong current password", audit.SeverityWarning
		recordAudit(ctx, deps.Audit, input.Actor, now, entry)
		return invalid(ErrCurrentPasswordWrong)
	}
	if err := acct.SetPassword(input.NewPassword); err != nil {
		if account.IsPolicyError(err) {
			return invalid(err)
		}
		return fmt.Errorf("hash password: %w", err)
	}
	wasForced := acct.PasswordChangeRequired
	acct.PasswordChangeRequired = false

	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return fmt.Errorf("save account: %w", err)
	}

	slog.Info("auth_event", "event", "password_changed", "account_id", acct.ID, "forced", wasForced)
	entry.Description = "password changed"
	if wasForced {
		entry.Description = "initial password replaced"
	}
	recordAudit(ctx, deps.Audit, input.Actor, now, entry)
	return nil
}
