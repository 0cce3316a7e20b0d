package referral

import (
	"context"

	domain "gymbios/internal/domain/referral"
)

// Store persists referrals and reward rules.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Referral, error)
	Save(ctx context.Context, value domain.Referral) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Referral, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
	CountConverted(ctx context.Context, referrerID string) (int, error)

	GetRule(ctx context.Context, id string) (domain.RewardRule, error)
	SaveRule(ctx context.Context, rule domain.RewardRule) error
	DeleteRule(ctx context.Context, id string) error
	ListRules(ctx context.Context, activeOnly bool) ([]domain.RewardRule, error)
}

// ListFilter carries filtering parameters for List and Count.
type ListFilter struct {
	Limit      int
	Offset     int
	ReferrerID string
	Status     string
	Search     string // referee or referrer name
}

var _ Store = (*SQLiteStore)(nil)
