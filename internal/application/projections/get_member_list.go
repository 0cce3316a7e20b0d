package projections

import (
	"context"
	"time"

	memberStore "gymbios/internal/adapters/storage/member"
	"gymbios/internal/domain/dates"
	"gymbios/internal/domain/member"
)

// GetMemberListQuery carries query parameters.
type GetMemberListQuery struct {
	Filter memberStore.ListFilter
}

// MemberRow is a member with membership-state flags for the list view.
type MemberRow struct {
	member.Member
	Expired      bool `json:"expired"`
	ExpiringSoon bool `json:"expiring_soon"`
}

// GetMemberListResult carries the query result.
type GetMemberListResult struct {
	Members []MemberRow
	Total   int
}

// GetMemberListDeps holds dependencies for GetMemberList.
type GetMemberListDeps struct {
	MemberStore MemberStore
	Now         func() time.Time
}

// QueryGetMemberList retrieves one page of members with expiry flags.
// PRE: Filter carries the page limit and offset
// POST: Total counts every member matching the filter, not just the page
// INVARIANT: a member without an expiry date is never flagged
func QueryGetMemberList(ctx context.Context, query GetMemberListQuery, deps GetMemberListDeps) (GetMemberListResult, error) {
	members, err := deps.MemberStore.List(ctx, query.Filter)
	if err != nil {
		return GetMemberListResult{}, err
	}
	total, err := deps.MemberStore.Count(ctx, query.Filter)
	if err != nil {
		return GetMemberListResult{}, err
	}

	now := deps.Now()
	today := dates.Today(now)
	rows := make([]MemberRow, 0, len(members))
	for _, m := range members {
		rows = append(rows, MemberRow{
			Member:       m,
			Expired:      m.IsExpired(today),
			ExpiringSoon: m.IsActive() && m.ExpiresWithin(now, ExpiryWindowDays),
		})
	}
	return GetMemberListResult{Members: rows, Total: total}, nil
}
