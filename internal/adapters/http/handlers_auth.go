package web

import (
	"errors"
	"log/slog"
	"net/http"

	"gymbios/internal/adapters/http/middleware"
	accountStore "gymbios/internal/adapters/storage/account"
	"gymbios/internal/application/listutil"
	"gymbios/internal/application/orchestrators"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token                  string `json:"token"`
	AccountID              string `json:"account_id"`
	Email                  string `json:"email"`
	Role                   string `json:"role"`
	PasswordChangeRequired bool   `json:"password_change_required"`
}

func login(r *http.Request, email, password string) (orchestrators.LoginResult, string, error) {
	result, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Email:     email,
		Password:  password,
		IPAddress: remoteIP(r),
		UserAgent: r.UserAgent(),
	}, orchestrators.LoginDeps{
		AccountStore: stores.AccountStore,
		Audit:        stores.AuditStore,
		Now:          timeNow,
	})
	if err != nil {
		return result, "", err
	}
	token, err := sessions.Create(result.AccountID, result.Email, result.Role)
	return result, token, err
}

func loginStatus(err error) int {
	if errors.Is(err, orchestrators.ErrAccountLocked) {
		return http.StatusLocked
	}
	return http.StatusUnauthorized
}

// handleAPILogin handles POST /api/auth/login.
// The token works both as a bearer token and as the session cookie, which is also set.
func handleAPILogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeOrReject(w, r, &req) {
		return
	}
	result, token, err := login(r, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, orchestrators.ErrInvalidCredentials) || errors.Is(err, orchestrators.ErrAccountLocked) {
			writeError(w, loginStatus(err), err.Error())
			return
		}
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token)
	writeJSON(w, http.StatusOK, loginResponse{
		Token:                  token,
		AccountID:              result.AccountID,
		Email:                  result.Email,
		Role:                   result.Role,
		PasswordChangeRequired: result.PasswordChangeRequired,
	})
}

// handleAPILogout handles POST /api/auth/logout
func handleAPILogout(w http.ResponseWriter, r *http.Request) {
	endSession(w, r)
	w.WriteHeader(http.StatusNoContent)
}

// endSession drops the caller's session and notes the sign-out.
func endSession(w http.ResponseWriter, r *http.Request) {
	orchestrators.RecordLogout(r.Context(), stores.AuditStore, actor(r), timeNow())
	if token := middleware.Token(r); token != "" {
		sessions.Delete(token)
	}
	middleware.ClearSessionCookie(w)
}

// handleMe handles GET /api/auth/me
func handleMe(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{
		"account_id": sess.AccountID,
		"email":      sess.Email,
		"role":       sess.Role,
	})
}

// handleChangePassword handles POST /api/auth/password
func handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if !decodeOrReject(w, r, &req) {
		return
	}
	sess, _ := middleware.GetSessionFromContext(r.Context())
	err := orchestrators.ExecuteChangePassword(r.Context(), orchestrators.ChangePasswordInput{
		AccountID:       sess.AccountID,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		Actor:           actor(r),
	}, orchestrators.ChangePasswordDeps{
		AccountStore: stores.AccountStore,
		Audit:        stores.AuditStore,
		Now:          timeNow,
	})
	if err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleLoginPage handles GET /login
func handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	renderTemplate(w, r, http.StatusOK, "login.html", map[string]any{"Email": "", "Error": ""})
}

// handleLoginForm handles POST /login
func handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	email := r.FormValue("email")
	_, token, err := login(r, email, r.FormValue("password"))
	if err != nil {
		if errors.Is(err, orchestrators.ErrInvalidCredentials) || errors.Is(err, orchestrators.ErrAccountLocked) {
			renderTemplate(w, r, loginStatus(err), "login.html", map[string]any{
				"Email": email,
				"Error": err.Error(),
			})
			return
		}
		slog.Error("internal_error", "error", err.Error())
		http.Error(w, "Session error", http.StatusInternalServerError)
		return
	}
	middleware.SetSessionCookie(w, token)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// handleLogout handles POST /logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	endSession(w, r)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleHome handles GET /
func handleHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// handleListAccounts handles GET /api/accounts
func handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := stores.AccountStore.List(r.Context(), accountStore.ListFilter{Role: r.URL.Query().Get("role")})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listutil.Whole(accounts))
}

// handleCreateAccount handles POST /api/accounts
func handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
		StaffID  string `json:"staff_id"`
	}
	if !decodeOrReject(w, r, &req) {
		return
	}
	acct, err := orchestrators.ExecuteCreateAccount(r.Context(), orchestrators.CreateAccountInput{
		Email:                  req.Email,
		Password:               req.Password,
		Role:                   req.Role,
		StaffID:                req.StaffID,
		PasswordChangeRequired: true,
		Actor:                  actor(r),
	}, orchestrators.CreateAccountDeps{
		AccountStore: stores.AccountStore,
		Audit:        stores.AuditStore,
		GenerateID:   generateID,
		Now:          timeNow,
	})
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, acct)
}
