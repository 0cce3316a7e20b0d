package web

import (
	"context"
	"net/http"
	"time"

	referralStore "gymbios/internal/adapters/storage/referral"
	streamStore "gymbios/internal/adapters/storage/stream"
	"gymbios/internal/application/listutil"
	"gymbios/internal/application/orchestrators"
	"gymbios/internal/domain/audit"
	"gymbios/internal/domain/dates"
	"gymbios/internal/domain/referral"
	"gymbios/internal/domain/stream"
)

func streamDeps() orchestrators.StreamDeps {
	return orchestrators.StreamDeps{
		StreamStore: stores.StreamStore,
		StaffStore:  stores.StaffStore,
		MemberStore: stores.MemberStore,
		Audit:       stores.AuditStore,
		GenerateID:  generateID,
		Now:         timeNow,
	}
}

func referralDeps() orchestrators.ReferralDeps {
	return orchestrators.ReferralDeps{
		ReferralStore: stores.ReferralStore,
		MemberStore:   stores.MemberStore,
		Audit:         stores.AuditStore,
		GenerateID:    generateID,
		Now:           timeNow,
	}
}

// --- Streams ---

// dayParam parses a YYYY-MM-DD query value; a bad or missing value is the zero time.
func dayParam(v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	t, err := dates.Parse(v)
	if err != nil {
		return time.Time{}
	}
	return t
}

// handleListStreams handles GET /streams
// Filters: status, trainer_id, from and to (YYYY-MM-DD; to is inclusive).
func handleListStreams(w http.ResponseWriter, r *http.Request) {
	q := parseList(r, nil, "status", "trainer_id", "from", "to")
	filter := streamStore.ListFilter{
		Status:    q.filter("status"),
		TrainerID: q.filter("trainer_id"),
		From:      dayParam(q.filter("from")),
	}
	if to := dayParam(q.filter("to")); !to.IsZero() {
		filter.To = to.AddDate(0, 0, 1)
	}
	total, err := stores.StreamStore.Count(r.Context(), filter)
	if err != nil {
		internalError(w, err)
		return
	}
	page := q.page(total)
	filter.Limit, filter.Offset = page.PerPage, page.Offset()
	streams, err := stores.StreamStore.List(r.Context(), filter)
	if err != nil {
		internalError(w, err)
		return
	}
	writeList(w, streams, page)
}

// handleGetStream handles GET /streams/{id}
func handleGetStream(w http.ResponseWriter, r *http.Request) {
	s, err := stores.StreamStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// handleSaveStream handles POST /streams and PUT /streams/{id}
func handleSaveStream(w http.ResponseWriter, r *http.Request) {
	var s stream.Stream
	if !decodeOrReject(w, r, &s) {
		return
	}
	s.ID = r.PathValue("id")
	saved, err := orchestrators.ExecuteSaveStream(r.Context(), orchestrators.SaveStreamInput{
		Stream: s,
		Actor:  actor(r),
	}, streamDeps())
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, saveStatus(r), saved)
}

// handleDeleteStream handles DELETE /streams/{id}
func handleDeleteStream(w http.ResponseWriter, r *http.Request) {
	deleteRecord(w, r, "stream", audit.CategoryEngage, stores.StreamStore)
}

// handleListBookings handles GET /streams/{id}/bookings
func handleListBookings(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := stores.StreamStore.GetByID(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}
	bookings, err := stores.StreamStore.ListBookings(r.Context(), id)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listutil.Whole(bookings))
}

// handleBookStream handles POST /streams/{id}/bookings
func handleBookStream(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberID string `json:"member_id"`
	}
	if !decodeOrReject(w, r, &req) {
		return
	}
	b, err := orchestrators.ExecuteBookStream(r.Context(), orchestrators.BookStreamInput{
		StreamID: r.PathValue("id"),
		MemberID: req.MemberID,
		Actor:    actor(r),
	}, streamDeps())
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// handleCancelBooking handles POST /bookings/{id}/cancel
func handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	b, err := orchestrators.ExecuteCancelBooking(r.Context(), orchestrators.CancelBookingInput{
		BookingID: r.PathValue("id"),
		Actor:     actor(r),
	}, streamDeps())
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// --- Referrals ---

// handleListReferrals handles GET /api/referrals
// Filters: referrer_id, status, q.
func handleListReferrals(w http.ResponseWriter, r *http.Request) {
	q := parseList(r, nil, "referrer_id", "status")
	filter := referralStore.ListFilter{
		ReferrerID: q.filter("referrer_id"),
		Status:     q.filter("status"),
		Search:     q.Search,
	}
	total, err := stores.ReferralStore.Count(r.Context(), filter)
	if err != nil {
		internalError(w, err)
		return
	}
	page := q.page(total)
	filter.Limit, filter.Offset = page.PerPage, page.Offset()
	referrals, err := stores.ReferralStore.List(r.Context(), filter)
	if err != nil {
		internalError(w, err)
		return
	}
	writeList(w, referrals, page)
}

// handleGetReferral handles GET /api/referrals/{id}
func handleGetReferral(w http.ResponseWriter, r *http.Request) {
	ref, err := stores.ReferralStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ref)
}

// handleSaveReferral handles POST /api/referrals and PUT /api/referrals/{id}
func handleSaveReferral(w http.ResponseWriter, r *http.Request) {
	var ref referral.Referral
	if !decodeOrReject(w, r, &ref) {
		return
	}
	ref.ID = r.PathValue("id")
	saved, err := orchestrators.ExecuteSaveReferral(r.Context(), orchestrators.SaveReferralInput{
		Referral: ref,
		Actor:    actor(r),
	}, referralDeps())
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, saveStatus(r), saved)
}

// handleDeleteReferral handles DELETE /api/referrals/{id}
func handleDeleteReferral(w http.ResponseWriter, r *http.Request) {
	deleteRecord(w, r, "referral", audit.CategoryEngage, stores.ReferralStore)
}

// handleConvertReferral handles POST /api/referrals/{id}/convert.
// The body names the member the referee joined as; matching reward rules are returned.
func handleConvertReferral(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberID string `json:"member_id"`
	}
	if !decodeOrReject(w, r, &req) {
		return
	}
	result, err := orchestrators.ExecuteConvertReferral(r.Context(), orchestrators.ConvertReferralInput{
		ReferralID: r.PathValue("id"),
		MemberID:   req.MemberID,
		Actor:      actor(r),
	}, referralDeps())
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// --- Reward rules ---

// handleListRewardRules handles GET /api/reward-rules. ?active=true hides disabled rules.
func handleListRewardRules(w http.ResponseWriter, r *http.Request) {
	rules, err := stores.ReferralStore.ListRules(r.Context(), r.URL.Query().Get("active") == "true")
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listutil.Whole(rules))
}

// handleSaveRewardRule handles POST /api/reward-rules and PUT /api/reward-rules/{id}
func handleSaveRewardRule(w http.ResponseWriter, r *http.Request) {
	var rule referral.RewardRule
	if !decodeOrReject(w, r, &rule) {
		return
	}
	rule.ID = r.PathValue("id")
	saved, err := orchestrators.ExecuteSaveRewardRule(r.Context(), orchestrators.SaveRewardRuleInput{
		Rule:  rule,
		Actor: actor(r),
	}, referralDeps())
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, saveStatus(r), saved)
}

// ruleDeleter exposes DeleteRule as the Delete a generic record delete expects.
type ruleDeleter struct{ store referralStore.Store }

func (d ruleDeleter) Delete(ctx context.Context, id string) error {
	return d.store.DeleteRule(ctx, id)
}

// handleDeleteRewardRule handles DELETE /api/reward-rules/{id}
func handleDeleteRewardRule(w http.ResponseWriter, r *http.Request) {
	deleteRecord(w, r, "reward_rule", audit.CategoryEngage, ruleDeleter{stores.ReferralStore})
}
