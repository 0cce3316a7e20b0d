package web

import (
	"io"
	"net/http"
	"strings"

	memberStore "gymbios/internal/adapters/storage/member"
	"gymbios/internal/application/orchestrators"
	"gymbios/internal/application/projections"
	"gymbios/internal/domain/audit"
	"gymbios/internal/domain/member"
)

var memberSortColumns = []string{"name", "join_date", "expiry_date", "status"}

// memberRequest accepts both the snake_case fields and the camelCase names
// older dashboard builds send. The snake_case value wins when both are set.
type memberRequest struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	Gender            string `json:"gender"`
	Address           string `json:"address"`
	PlanID            string `json:"plan_id"`
	PlanIDAlt         string `json:"planId"`
	MembershipPlan    string `json:"membership_plan"`
	MembershipPlanAlt string `json:"membershipPlan"`
	JoinDate          string `json:"join_date"`
	JoinDateAlt       string `json:"joinDate"`
	ExpiryDate        string `json:"expiry_date"`
	ExpiryDateAlt     string `json:"expiryDate"`
	Status            string `json:"status"`

	// Echoed back by clients that PUT a fetched record; ignored.
	ID           string `json:"id"`
	ReferralCode string `json:"referral_code"`
	CreatedAt    string `json:"created_at"`
	Expired      bool   `json:"expired"`
	ExpiringSoon bool   `json:"expiring_soon"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (req memberRequest) member(id string) member.Member {
	return member.Member{
		ID:             id,
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Gender:         req.Gender,
		Address:        req.Address,
		PlanID:         firstNonEmpty(req.PlanID, req.PlanIDAlt),
		MembershipPlan: firstNonEmpty(req.MembershipPlan, req.MembershipPlanAlt),
		JoinDate:       firstNonEmpty(req.JoinDate, req.JoinDateAlt),
		ExpiryDate:     firstNonEmpty(req.ExpiryDate, req.ExpiryDateAlt),
		Status:         req.Status,
	}
}

// handleListMembers handles GET /api/members
func handleListMembers(w http.ResponseWriter, r *http.Request) {
	q := parseList(r, memberSortColumns, "status", "plan_id")
	filter := memberStore.ListFilter{
		Status:  q.filter("status"),
		PlanID:  q.filter("plan_id"),
		Search:  q.Search,
		Sort:    q.Sort,
		SortDir: q.Dir,
	}
	total, err := stores.MemberStore.Count(r.Context(), filter)
	if err != nil {
		internalError(w, err)
		return
	}
	page := q.page(total)
	filter.Limit, filter.Offset = page.PerPage, page.Offset()

	result, err := projections.QueryGetMemberList(r.Context(), projections.GetMemberListQuery{Filter: filter},
		projections.GetMemberListDeps{MemberStore: stores.MemberStore, Now: timeNow})
	if err != nil {
		internalError(w, err)
		return
	}
	page.Total = result.Total
	writeList(w, result.Members, page)
}

// handleGetMember handles GET /api/members/{id}
func handleGetMember(w http.ResponseWriter, r *http.Request) {
	m, err := stores.MemberStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// handleCreateMember handles POST /api/members
func handleCreateMember(w http.ResponseWriter, r *http.Request) {
	saveMember(w, r, "", http.StatusCreated)
}

// handleUpdateMember handles PUT /api/members/{id}
func handleUpdateMember(w http.ResponseWriter, r *http.Request) {
	saveMember(w, r, r.PathValue("id"), http.StatusOK)
}

func saveMember(w http.ResponseWriter, r *http.Request, id string, status int) {
	var req memberRequest
	if !decodeOrReject(w, r, &req) {
		return
	}
	m, err := orchestrators.ExecuteSaveMember(r.Context(), orchestrators.SaveMemberInput{
		Member: req.member(id),
		Actor:  actor(r),
	}, orchestrators.SaveMemberDeps{
		MemberStore: stores.MemberStore,
		PlanStore:   stores.PlanStore,
		Audit:       stores.AuditStore,
		Notify:      notifyDeps(),
		GenerateID:  generateID,
		Now:         timeNow,
	})
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, status, m)
}

// handleDeleteMember handles DELETE /api/members/{id}
func handleDeleteMember(w http.ResponseWriter, r *http.Request) {
	deleteRecord(w, r, "member", audit.CategoryMember, stores.MemberStore)
}

// deleteRecord removes the record named by the {id} path value and answers 204.
func deleteRecord(w http.ResponseWriter, r *http.Request, resourceType string, category audit.Category, store orchestrators.Deleter) {
	err := orchestrators.ExecuteDeleteRecord(r.Context(), orchestrators.DeleteRecordInput{
		ResourceType: resourceType,
		ID:           r.PathValue("id"),
		Category:     category,
		Actor:        actor(r),
	}, orchestrators.DeleteRecordDeps{
		Store: store,
		Audit: stores.AuditStore,
		Now:   timeNow,
	})
	if err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// maxImportBytes caps a member CSV upload.
const maxImportBytes = 5 << 20

// handleImportMembers handles POST /api/members/import?dry_run=true&update=true.
// The CSV is either the raw body (text/csv) or the "file" part of a multipart form.
func handleImportMembers(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	var src io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "missing CSV file: "+err.Error())
			return
		}
		defer file.Close()
		src = file
	}
	q := r.URL.Query()
	result, err := orchestrators.ExecuteImportMembers(r.Context(), orchestrators.ImportMembersInput{
		Reader:     src,
		DryRun:     q.Get("dry_run") == "true",
		UpdateMode: q.Get("update") == "true",
		Actor:      actor(r),
	}, orchestrators.ImportMembersDeps{
		MemberStore: stores.MemberStore,
		PlanStore:   stores.PlanStore,
		Audit:       stores.AuditStore,
		Notify:      notifyDeps(),
		GenerateID:  generateID,
		Now:         timeNow,
	})
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
