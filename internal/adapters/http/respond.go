package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"gymbios/internal/adapters/http/middleware"
	"gymbios/internal/adapters/storage"
	"gymbios/internal/application/listutil"
	"gymbios/internal/application/orchestrators"
	"gymbios/internal/domain/product"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// decodeOrReject decodes the body into v and answers 400 on failure.
func decodeOrReject(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := strictDecode(w, r, v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("response_encode_failed", "error", err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// handleError maps an orchestrator or store error to its HTTP status.
// Validation failures are 400, missing records 404, state and stock conflicts 409.
// Anything else is logged and answered with a generic 500.
func handleError(w http.ResponseWriter, err error) {
	var invalid *orchestrators.InvalidInputError
	switch {
	case errors.As(err, &invalid):
		writeError(w, http.StatusBadRequest, invalid.Error())
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, orchestrators.ErrConflict),
		errors.Is(err, product.ErrInsufficientStock),
		errors.Is(err, storage.ErrDuplicate):
		writeError(w, http.StatusConflict, err.Error())
	default:
		internalError(w, err)
	}
}

// actor describes the caller for the audit trail.
func actor(r *http.Request) orchestrators.Actor {
	a := orchestrators.Actor{IPAddress: remoteIP(r), UserAgent: r.UserAgent()}
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		a.AccountID = sess.AccountID
		a.Email = sess.Email
		a.Role = sess.Role
	}
	return a
}

func remoteIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// listQuery is a parsed list request: page, sort, search and filters.
type listQuery struct {
	listutil.Query
}

func parseList(r *http.Request, sortCols []string, filterKeys ...string) listQuery {
	return listQuery{listutil.Parse(r.URL.Query(), sortCols, filterKeys)}
}

func (q listQuery) filter(key string) string {
	return q.Filter(key)
}

// page computes the page for total matching rows.
func (q listQuery) page(total int) listutil.PageInfo {
	return q.PageFor(total)
}

// writeList answers a paginated list endpoint.
func writeList[T any](w http.ResponseWriter, items []T, page listutil.PageInfo) {
	writeJSON(w, http.StatusOK, listutil.NewResult(items, page))
}

// notifyDeps builds the email dependencies shared by mutations that send mail.
func notifyDeps() orchestrators.NotifyDeps {
	return orchestrators.NotifyDeps{
		Sender:     emailSender,
		Outbox:     stores.OutboxStore,
		GenerateID: generateID,
		Now:        timeNow,
	}
}
