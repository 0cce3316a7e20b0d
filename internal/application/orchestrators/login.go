package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gymbios/internal/domain/account"
	"gymbios/internal/domain/audit"
)

// AccountStoreForLogin defines the store interface needed by Login.
type AccountStoreForLogin interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// LoginInput carries the submitted credentials and where they came from.
type LoginInput struct {
	Email     string
	Password  string
	IPAddress string
	UserAgent string
}

// LoginResult is what a session is created from.
type LoginResult struct {
	AccountID              string
	Email                  string
	Role                   string
	StaffID                string
	PasswordChangeRequired bool
}

// LoginDeps holds dependencies for Login. Audit may be nil.
type LoginDeps struct {
	AccountStore AccountStoreForLogin
	Audit        AuditRecorder
	Now          func() time.Time
}

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account is locked due to too many failed attempts")
)

// ExecuteLogin checks credentials and maintains the lockout counter.
// Unknown email and wrong password give the same error so a response never reveals whether an account exists.
// Every attempt is written to the security audit trail: success at info,
// failures at warning, and the failure that locks an account at critical.
// PRE: none
// POST: on success FailedLogins is reset; on wrong password it is incremented
// INVARIANT: a locked account is refused even with the right password
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (LoginResult, error) {
	email := account.NormalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}
	now := deps.Now()
	attempt := Actor{Email: email, IPAddress: input.IPAddress, UserAgent: input.UserAgent}
	refuse := func(acct account.Account, reason string, sev audit.Severity, err error) (LoginResult, error) {
		slog.Info("auth_event", "event", "login_failed", "email", email, "reason", reason, "ip", input.IPAddress)
		attempt.AccountID, attempt.Role = acct.ID, acct.Role
		recordAudit(ctx, deps.Audit, attempt, now, auditEntry{
			Category:     audit.CategorySecurity,
			Action:       audit.ActionLogin,
			ResourceType: "account",
			ResourceID:   acct.ID,
			Description:  "login refused: " + reason,
			Severity:     sev,
		})
		return LoginResult{}, err
	}

	acct, err := deps.AccountStore.GetByEmail(ctx, email)
	if err != nil {
		return refuse(account.Account{}, "unknown_email", audit.SeverityWarning, ErrInvalidCredentials)
	}
	if acct.IsLocked(now) {
		return refuse(acct, "locked", audit.SeverityWarning, ErrAccountLocked)
	}
	if acct.CheckPassword(input.Password) != nil {
		lockedNow := acct.RecordFailedLogin(now)
		saveLoginState(ctx, deps.AccountStore, acct)
		if lockedNow {
			return refuse(acct, "wrong_password_locked", audit.SeverityCritical, ErrInvalidCredentials)
		}
		return refuse(acct, "wrong_password", audit.SeverityWarning, ErrInvalidCredentials)
	}
	if acct.ResetFailedLogins() {
		saveLoginState(ctx, deps.AccountStore, acct)
	}

	slog.Info("auth_event", "event", "login_success", "email", email, "role", acct.Role)
	attempt.AccountID, attempt.Role = acct.ID, acct.Role
	recordAudit(ctx, deps.Audit, attempt, now, auditEntry{
		Category:     audit.CategorySecurity,
		Action:       audit.ActionLogin,
		ResourceType: "account",
		ResourceID:   acct.ID,
		Description:  "signed in",
	})
	return LoginResult{
		AccountID:              acct.ID,
		Email:                  acct.Email,
		Role:                   acct.Role,
		StaffID:                acct.StaffID,
		PasswordChangeRequired: acct.PasswordChangeRequired,
	}, nil
}

// saveLoginState persists the lockout counter. A failure is logged and the
// login decision stands.
func saveLoginState(ctx context.Context, store AccountStoreForLogin, acct account.Account) {
	if err := store.Save(ctx, acct); err != nil {
		slog.Error("auth_event", "event", "login_state_save_failed", "email", acct.Email, "error", err.Error())
	}
}

// RecordLogout writes the sign-out of actor to the audit trail.
func RecordLogout(ctx context.Context, rec AuditRecorder, actor Actor, now time.Time) {
	if actor.AccountID == "" {
		return
	}
	slog.Info("auth_event", "event", "logout", "email", actor.Email)
	recordAudit(ctx, rec, actor, now, auditEntry{
		Category:     audit.CategorySecurity,
		Action:       audit.ActionLogout,
		ResourceType: "account",
		ResourceID:   actor.AccountID,
		Description:  "signed out",
	})
}
