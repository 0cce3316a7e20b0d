package web

import (
	"net/http"
	"strconv"
	"time"

	auditStore "gymbios/internal/adapters/storage/audit"
	"gymbios/internal/application/listutil"
	"gymbios/internal/domain/audit"
	"gymbios/internal/domain/dates"
	"gymbios/internal/domain/outbox"
)

const (
	defaultAdminLimit = 50
	maxAdminLimit     = 500
)

// limitParam reads ?limit, clamped to 1..maxAdminLimit.
func limitParam(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n < 1 {
		return defaultAdminLimit
	}
	return min(n, maxAdminLimit)
}

// handleAdminAudit handles GET /api/admin/audit
// Filters: category, action, severity (minimum), actor_id, resource_type,
// resource_id, from, to, limit. Unknown enum values or dates are a 400.
func handleAdminAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := auditStore.Filter{
		Category:     audit.Category(q.Get("category")),
		Action:       audit.Action(q.Get("action")),
		MinSeverity:  audit.Severity(q.Get("severity")),
		ActorID:      q.Get("actor_id"),
		ResourceType: q.Get("resource_type"),
		ResourceID:   q.Get("resource_id"),
		FromDate:     q.Get("from"),
		ToDate:       q.Get("to"),
	}
	switch {
	case filter.Category != "" && !filter.Category.Valid():
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	case filter.Action != "" && !filter.Action.Valid():
		writeError(w, http.StatusBadRequest, "unknown action")
		return
	case filter.MinSeverity != "" && !filter.MinSeverity.Valid():
		writeError(w, http.StatusBadRequest, "severity must be info, warning or critical")
		return
	case filter.FromDate != "" && !dates.Valid(filter.FromDate), filter.ToDate != "" && !dates.Valid(filter.ToDate):
		writeError(w, http.StatusBadRequest, "from and to must be YYYY-MM-DD")
		return
	}
	events, err := stores.AuditStore.List(r.Context(), filter, limitParam(r))
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listutil.Whole(events))
}

// handleAdminOutbox handles GET /api/admin/outbox.
// ?status defaults to failed; status=all lists every entry.
func handleAdminOutbox(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	switch status {
	case "":
		status = outbox.StatusFailed
	case "all":
		status = ""
	}
	entries, err := stores.OutboxStore.List(r.Context(), status, limitParam(r))
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listutil.Whole(entries))
}

// handleAdminOutboxRetry handles POST /api/admin/outbox/{id}/retry
func handleAdminOutboxRetry(w http.ResponseWriter, r *http.Request) {
	if outboxProcessor == nil {
		writeError(w, http.StatusServiceUnavailable, "outbox processor not configured")
		return
	}
	entry, err := outboxProcessor.ProcessSingle(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// handleAdminOutboxAbandon handles POST /api/admin/outbox/{id}/abandon
func handleAdminOutboxAbandon(w http.ResponseWriter, r *http.Request) {
	if outboxProcessor == nil {
		writeError(w, http.StatusServiceUnavailable, "outbox processor not configured")
		return
	}
	if err := outboxProcessor.AbandonEntry(r.Context(), r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAdminPerf handles GET /api/admin/perf?minutes=60&top=10
func handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	if perfCollector == nil {
		writeError(w, http.StatusServiceUnavailable, "performance collector not configured")
		return
	}
	minutes, err := strconv.Atoi(r.URL.Query().Get("minutes"))
	if err != nil || minutes < 1 {
		minutes = 60
	}
	top, err := strconv.Atoi(r.URL.Query().Get("top"))
	if err != nil || top < 1 {
		top = 10
	}
	since := timeNow().Add(-time.Duration(minutes) * time.Minute)
	writeJSON(w, http.StatusOK, perfCollector.Snapshot(since, top))
}
