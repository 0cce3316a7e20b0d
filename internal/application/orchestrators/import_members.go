package orchestrators

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	memberStore "gymbios/internal/adapters/storage/member"
	"gymbios/internal/domain/audit"
	"gymbios/internal/domain/dates"
	"gymbios/internal/domain/member"
	"gymbios/internal/domain/plan"
)

// MaxImportRows bounds one CSV upload.
const MaxImportRows = 5000

// ImportMembersInput carries the CSV stream and import options.
// PRE: Reader is a CSV stream with a header row
// INVARIANT: Existing members are never deleted; IDs are preserved on update
type ImportMembersInput struct {
	Reader     io.Reader
	DryRun     bool
	UpdateMode bool // update members matched by email or phone instead of skipping them
	Actor      Actor
}

// ImportMembersResult holds aggregate counts and per-row errors from an import run.
type ImportMembersResult struct {
	Total   int                     `json:"total"`
	Created int                     `json:"created"`
	Updated int                     `json:"updated"`
	Skipped int                     `json:"skipped"`
	Errors  []ImportMembersRowError `json:"errors"`
	DryRun  bool                    `json:"dry_run"`
	Unknown []string                `json:"unknown_columns,omitempty"`
}

// ImportMembersRowError describes the failure of a single CSV row. Row 1 is the header.
type ImportMembersRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// MemberStoreForImport finds existing members and saves rows.
type MemberStoreForImport interface {
	MemberStoreForSave
	List(ctx context.Context, filter memberStore.ListFilter) ([]member.Member, error)
}

// PlanStoreForImport resolves the PLAN column by ID or name.
type PlanStoreForImport interface {
	PlanLookup
	List(ctx context.Context, activeOnly bool) ([]plan.Plan, error)
}

// ImportMembersDeps holds external dependencies for the import orchestrator.
type ImportMembersDeps struct {
	MemberStore MemberStoreForImport
	PlanStore   PlanStoreForImport
	Audit       AuditRecorder
	Notify      NotifyDeps
	GenerateID  func() string
	Now         func() time.Time
}

var importColumns = map[string]bool{
	"NAME": true, "EMAIL": true, "PHONE": true, "GENDER": true, "ADDRESS": true,
	"PLAN": true, "JOIN_DATE": true, "EXPIRY_DATE": true, "STATUS": true,
}

// ExecuteImportMembers creates or updates members from a CSV upload.
// Every written row goes through ExecuteSaveMember, so plans, expiry, audit and welcome emails behave as for a single save.
// PRE: CSV has a NAME column and an EMAIL or PHONE column
// POST: Per-row failures are collected, never fatal; no writes when DryRun
func ExecuteImportMembers(ctx context.Context, input ImportMembersInput, deps ImportMembersDeps) (ImportMembersResult, error) {
	cr := csv.NewReader(input.Reader)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return ImportMembersResult{}, invalid(fmt.Errorf("read CSV header: %w", err))
	}
	colIdx := make(map[string]int, len(header))
	var unknown []string
	for i, h := range header {
		key := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(h), " ", "_"))
		colIdx[key] = i
		if !importColumns[key] {
			unknown = append(unknown, h)
		}
	}
	if _, ok := colIdx["NAME"]; !ok {
		return ImportMembersResult{}, invalid(errors.New("CSV missing required column: NAME"))
	}
	_, hasEmail := colIdx["EMAIL"]
	_, hasPhone := colIdx["PHONE"]
	if !hasEmail && !hasPhone {
		return ImportMembersResult{}, invalid(errors.New("CSV needs an EMAIL or a PHONE column"))
	}

	plans, err := planIndex(ctx, deps.PlanStore)
	if err != nil {
		return ImportMembersResult{}, err
	}

	col := func(row []string, name string) string {
		i, ok := colIdx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	result := ImportMembersResult{DryRun: input.DryRun, Unknown: unknown, Errors: []ImportMembersRowError{}}
	saveDeps := SaveMemberDeps{
		MemberStore: deps.MemberStore,
		PlanStore:   deps.PlanStore,
		Audit:       deps.Audit,
		Notify:      deps.Notify,
		GenerateID:  deps.GenerateID,
		Now:         deps.Now,
	}
	rowNum := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++
		if err != nil {
			result.Errors = append(result.Errors, ImportMembersRowError{Row: rowNum, Message: "unreadable row: " + err.Error()})
			continue
		}
		result.Total++
		if result.Total > MaxImportRows {
			return result, invalid(fmt.Errorf("CSV has more than %d rows", MaxImportRows))
		}

		m := member.Member{
			Name:       col(row, "NAME"),
			Email:      strings.ToLower(col(row, "EMAIL")),
			Phone:      col(row, "PHONE"),
			Gender:     strings.ToLower(col(row, "GENDER")),
			Address:    col(row, "ADDRESS"),
			JoinDate:   col(row, "JOIN_DATE"),
			ExpiryDate: col(row, "EXPIRY_DATE"),
			Status:     strings.ToLower(col(row, "STATUS")),
		}
		if planRef := col(row, "PLAN"); planRef != "" {
			p, ok := plans[strings.ToLower(planRef)]
			if !ok {
				result.Errors = append(result.Errors, ImportMembersRowError{Row: rowNum, Message: "unknown plan: " + planRef})
				continue
			}
			m.PlanID = p.ID
		}

		existing, found, err := findExisting(ctx, deps.MemberStore, m)
		if err != nil {
			return result, err
		}
		if found && !input.UpdateMode {
			result.Skipped++
			continue
		}
		if found {
			m.ID = existing.ID
			m.Gender = firstSet(m.Gender, existing.Gender)
			m.Address = firstSet(m.Address, existing.Address)
			m.PlanID = firstSet(m.PlanID, existing.PlanID)
			m.ExpiryDate = firstSet(m.ExpiryDate, existing.ExpiryDate)
			m.Email = firstSet(m.Email, existing.Email)
			m.Phone = firstSet(m.Phone, existing.Phone)
		}

		if input.DryRun {
			if msg := dryRunCheck(m, deps.Now()); msg != "" {
				result.Errors = append(result.Errors, ImportMembersRowError{Row: rowNum, Message: msg})
				continue
			}
		} else if _, err := ExecuteSaveMember(ctx, SaveMemberInput{Member: m, Actor: input.Actor}, saveDeps); err != nil {
			var bad *InvalidInputError
			if !errors.As(err, &bad) {
				slog.Error("members_import_save_failed", "row", rowNum, "error", err.Error())
				result.Errors = append(result.Errors, ImportMembersRowError{Row: rowNum, Message: "save failed (see server log)"})
				continue
			}
			result.Errors = append(result.Errors, ImportMembersRowError{Row: rowNum, Message: bad.Error()})
			continue
		}
		if found {
			result.Updated++
		} else {
			result.Created++
		}
	}

	slog.Info("members_import",
		"actor", input.Actor.Email,
		"dry_run", input.DryRun,
		"update_mode", input.UpdateMode,
		"total", result.Total,
		"created", result.Created,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"errors", len(result.Errors),
	)
	if !input.DryRun {
		recordAudit(ctx, deps.Audit, input.Actor, deps.Now(), auditEntry{
			Category:     audit.CategoryMember,
			Action:       audit.ActionImport,
			ResourceType: "member",
			Description: fmt.Sprintf("imported %d rows: %d created, %d updated, %d skipped, %d errors",
				result.Total, result.Created, result.Updated, result.Skipped, len(result.Errors)),
		})
	}
	return result, nil
}

// planIndex maps lower-cased plan IDs and names to plans.
func planIndex(ctx context.Context, store PlanStoreForImport) (map[string]plan.Plan, error) {
	idx := map[string]plan.Plan{}
	if store == nil {
		return idx, nil
	}
	plans, err := store.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	for _, p := range plans {
		idx[strings.ToLower(p.ID)] = p
		idx[strings.ToLower(p.Name)] = p
	}
	return idx, nil
}

// findExisting matches on exact email first, then exact phone.
func findExisting(ctx context.Context, store MemberStoreForImport, m member.Member) (member.Member, bool, error) {
	for _, key := range []string{m.Email, m.Phone} {
		if key == "" {
			continue
		}
		candidates, err := store.List(ctx, memberStore.ListFilter{Search: key, Limit: 20})
		if err != nil {
			return member.Member{}, false, fmt.Errorf("find member %s: %w", key, err)
		}
		for _, c := range candidates {
			if strings.EqualFold(c.Email, key) || c.Phone == key {
				return c, true, nil
			}
		}
	}
	return member.Member{}, false, nil
}

// dryRunCheck applies the checks ExecuteSaveMember would make, without a store.
func dryRunCheck(m member.Member, now time.Time) string {
	if m.JoinDate != "" && dates.Normalize(m.JoinDate) == "" {
		return member.ErrInvalidJoin.Error()
	}
	if m.ExpiryDate != "" && dates.Normalize(m.ExpiryDate) == "" {
		return member.ErrInvalidExpiry.Error()
	}
	m.JoinDate = dates.Normalize(m.JoinDate)
	if m.JoinDate == "" {
		m.JoinDate = dates.Today(now)
	}
	m.ExpiryDate = dates.Normalize(m.ExpiryDate)
	if m.Status == "" {
		m.Status = member.StatusActive
	}
	if err := m.Validate(); err != nil {
		return err.Error()
	}
	return ""
}

func firstSet(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
