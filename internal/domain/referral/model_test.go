package referral_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"gymbios/internal/domain/referral"
)

// TestApplyRewards verifies rules fire on multiples of their threshold.
func TestApplyRewards(t *testing.T) {
	rules := []referral.RewardRule{
		{Name: "Every referral", ReferralsRequired: 1, RewardType: referral.RewardPoints, RewardValue: decimal.NewFromInt(50), Active: true},
		{Name: "Third friend", ReferralsRequired: 3, RewardType: referral.RewardFreeDays, RewardValue: decimal.NewFromInt(15), Active: true},
		{Name: "Retired", ReferralsRequired: 1, RewardType: referral.RewardPoints, RewardValue: decimal.NewFromInt(999), Active: false},
	}

	r := referral.Referral{Status: referral.StatusPending}
	if err := r.Convert("m-9", time.Now()); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	applied := r.ApplyRewards(rules, 2)
	if len(applied) != 1 || r.RewardPoints != 50 || r.RewardNote != "" {
		t.Errorf("count=2: applied=%d points=%d note=%q", len(applied), r.RewardPoints, r.RewardNote)
	}
	if r.Status != referral.StatusRewarded {
		t.Errorf("status = %s, want rewarded", r.Status)
	}

	r2 := referral.Referral{Status: referral.StatusJoined}
	applied = r2.ApplyRewards(rules, 3)
	if len(applied) != 2 || r2.RewardPoints != 50 || r2.RewardNote != "Third friend: 15 free days" {
		t.Errorf("count=3: applied=%d points=%d note=%q", len(applied), r2.RewardPoints, r2.RewardNote)
	}
}

// TestConvert_OnlyPending verifies conversion is one-shot.
func TestConvert_OnlyPending(t *testing.T) {
	r := referral.Referral{Status: referral.StatusRejected}
	if err := r.Convert("m1", time.Now()); err != referral.ErrNotPending {
		t.Errorf("Convert() = %v, want ErrNotPending", err)
	}
}

// TestRewardRule_Validate covers rule configuration.
func TestRewardRule_Validate(t *testing.T) {
	rr := referral.RewardRule{Name: "x", ReferralsRequired: 0, RewardType: referral.RewardPoints}
	if err := rr.Validate(); err != referral.ErrInvalidThreshold {
		t.Errorf("Validate() = %v", err)
	}
	rr.ReferralsRequired = 2
	rr.RewardType = "cash"
	if err := rr.Validate(); err != referral.ErrInvalidRewardType {
		t.Errorf("Validate() = %v", err)
	}
}
