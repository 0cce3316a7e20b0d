package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gymbios/internal/domain/account"
)

func whoAmI() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := GetSessionFromContext(r.Context())
		if !ok {
			w.Write([]byte("anonymous"))
			return
		}
		w.Write([]byte(s.Email))
	})
}

// TestAuth_CookieAndBearer verifies both credentials resolve to the same session.
func TestAuth_CookieAndBearer(t *testing.T) {
	store := NewSessionStore()
	token, err := store.Create("a-1", "desk@gymbios.app", account.RoleStaff)
	if err != nil {
		t.Fatal(err)
	}
	handler := Auth(store)(whoAmI())

	cookieReq := httptest.NewRequest("GET", "/api/auth/me", nil)
	cookieReq.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	bearerReq := httptest.NewRequest("GET", "/api/auth/me", nil)
	bearerReq.Header.Set("Authorization", "Bearer "+token)
	badReq := httptest.NewRequest("GET", "/api/auth/me", nil)
	badReq.Header.Set("Authorization", "Bearer nope")

	tests := []struct {
		name string
		req  *http.Request
		want string
	}{
		{"cookie", cookieReq, "desk@gymbios.app"},
		{"bearer", bearerReq, "desk@gymbios.app"},
		{"unknown token", badReq, "anonymous"},
		{"no credentials", httptest.NewRequest("GET", "/api/auth/me", nil), "anonymous"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, tt.req)
			if rr.Body.String() != tt.want {
				t.Errorf("body = %q, want %q", rr.Body.String(), tt.want)
			}
		})
	}
}

// TestSessionStore_Expiry verifies sessions older than SessionTTL are rejected and dropped.
func TestSessionStore_Expiry(t *testing.T) {
	store := NewSessionStore()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	token, _ := store.Create("a-1", "admin@gymbios.app", account.RoleAdmin)

	now = now.Add(SessionTTL - time.Minute)
	if _, ok := store.Get(token); !ok {
		t.Fatal("session expired early")
	}
	now = now.Add(2 * time.Minute)
	if _, ok := store.Get(token); ok {
		t.Fatal("session outlived its TTL")
	}
	if _, ok := store.sessions[token]; ok {
		t.Error("expired session was not removed")
	}
}

// TestRequireRole verifies API callers get JSON 401/403 and pages get a redirect.
func TestRequireRole(t *testing.T) {
	handler := RequireRole(account.RoleAdmin)(whoAmI())
	staff := Session{AccountID: "a-2", Email: "desk@gymbios.app", Role: account.RoleStaff}
	admin := Session{AccountID: "a-1", Email: "admin@gymbios.app", Role: account.RoleAdmin}

	tests := []struct {
		name       string
		path       string
		session    *Session
		wantStatus int
	}{
		{"api anonymous", "/api/staff", nil, http.StatusUnauthorized},
		{"api wrong role", "/api/staff", &staff, http.StatusForbidden},
		{"api admin", "/api/staff", &admin, http.StatusOK},
		{"page anonymous", "/salary/employees", nil, http.StatusSeeOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.session != nil {
				req = req.WithContext(ContextWithSession(req.Context(), *tt.session))
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusForbidden && !strings.Contains(rr.Body.String(), `"error":"forbidden"`) {
				t.Errorf("body = %s, want JSON error", rr.Body.String())
			}
		})
	}
}

// TestRateLimiter verifies the bucket empties and refills per interval.
func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, 50*time.Millisecond)
	t.Cleanup(rl.Stop)

	if !rl.Allow("10.0.0.1") || !rl.Allow("10.0.0.1") {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow("10.0.0.1") {
		t.Fatal("third request should be limited")
	}
	if !rl.Allow("10.0.0.2") {
		t.Fatal("other IPs have their own bucket")
	}
	time.Sleep(60 * time.Millisecond)
	if !rl.Allow("10.0.0.1") {
		t.Fatal("bucket should refill after the interval")
	}
}

// TestRecover verifies a panic becomes a 500.
func TestRecover(t *testing.T) {
	handler := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/api/members", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rr.Code)
	}
}
