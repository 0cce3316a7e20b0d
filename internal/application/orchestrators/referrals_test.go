package orchestrators

import (
	"context"
	"errors"
	"testing"

	"gymbios/internal/domain/member"
	"gymbios/internal/domain/referral"
)

func newReferralDeps() (ReferralDeps, *mockReferralStore) {
	store := newMockReferralStore()
	return ReferralDeps{
		ReferralStore: store,
		MemberStore: newMockMemberStore(
			member.Member{ID: "m-1", Name: "Asha"},
			member.Member{ID: "m-new", Name: "Friend"},
		),
		Audit:      &mockAudit{},
		GenerateID: idSeq("ref"),
		Now:        fixedNow,
	}, store
}

func TestExecuteSaveReferral(t *testing.T) {
	deps, _ := newReferralDeps()
	r, err := ExecuteSaveReferral(context.Background(), SaveReferralInput{Referral: referral.Referral{
		ReferrerID:   "m-1",
		RefereeName:  "Friend",
		RefereePhone: "021",
		Status:       referral.StatusRewarded,
		RewardPoints: 500,
	}}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Status != referral.StatusPending || r.RewardPoints != 0 || r.ReferrerName != "Asha" {
		t.Errorf("create must start pending without rewards, got %+v", r)
	}

	r.Status = referral.StatusJoined
	_, err = ExecuteSaveReferral(context.Background(), SaveReferralInput{Referral: r}, deps)
	var inv *InvalidInputError
	if !errors.As(err, &inv) {
		t.Errorf("expected invalid input when editing status to joined, got %v", err)
	}

	r.Status = referral.StatusRejected
	if _, err := ExecuteSaveReferral(context.Background(), SaveReferralInput{Referral: r}, deps); err != nil {
		t.Errorf("rejecting a pending referral should succeed: %v", err)
	}
}

func TestExecuteConvertReferral_AppliesRules(t *testing.T) {
	deps, store := newReferralDeps()
	store.rules["r-1"] = referral.RewardRule{ID: "r-1", Name: "Every referral", ReferralsRequired: 1, RewardType: referral.RewardPoints, RewardValue: d("100"), Active: true}
	store.rules["r-2"] = referral.RewardRule{ID: "r-2", Name: "Third friend", ReferralsRequired: 3, RewardType: referral.RewardFreeDays, RewardValue: d("15"), Active: true}
	store.rules["r-3"] = referral.RewardRule{ID: "r-3", Name: "Retired", ReferralsRequired: 1, RewardType: referral.RewardPoints, RewardValue: d("999"), Active: false}
	store.referrals["old-1"] = referral.Referral{ID: "old-1", ReferrerID: "m-1", Status: referral.StatusJoined}
	store.referrals["old-2"] = referral.Referral{ID: "old-2", ReferrerID: "m-1", Status: referral.StatusRewarded}
	store.referrals["p-1"] = referral.Referral{ID: "p-1", ReferrerID: "m-1", RefereeName: "Friend", RefereePhone: "021", Status: referral.StatusPending}

	res, err := ExecuteConvertReferral(context.Background(), ConvertReferralInput{ReferralID: "p-1", MemberID: "m-new"}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ConvertedCount != 3 || len(res.AppliedRules) != 2 {
		t.Fatalf("expected count 3 and two rules, got %d / %d", res.ConvertedCount, len(res.AppliedRules))
	}
	r := store.referrals["p-1"]
	if r.Status != referral.StatusRewarded || r.RewardPoints != 100 || r.RefereeMemberID != "m-new" {
		t.Errorf("unexpected referral %+v", r)
	}
	if r.RewardNote != "Third friend: 15 free days" {
		t.Errorf("unexpected note %q", r.RewardNote)
	}

	_, err = ExecuteConvertReferral(context.Background(), ConvertReferralInput{ReferralID: "p-1", MemberID: "m-new"}, deps)
	if !errors.Is(err, ErrConflict) || !errors.Is(err, referral.ErrNotPending) {
		t.Errorf("expected conflict converting twice, got %v", err)
	}
}

func TestExecuteConvertReferral_NoRuleKeepsJoined(t *testing.T) {
	deps, store := newReferralDeps()
	store.rules["r-2"] = referral.RewardRule{ID: "r-2", Name: "Third friend", ReferralsRequired: 3, RewardType: referral.RewardPoints, RewardValue: d("300"), Active: true}
	store.referrals["p-1"] = referral.Referral{ID: "p-1", ReferrerID: "m-1", RefereeName: "Friend", RefereePhone: "021", Status: referral.StatusPending}

	res, err := ExecuteConvertReferral(context.Background(), ConvertReferralInput{ReferralID: "p-1", MemberID: "m-new"}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Referral.Status != referral.StatusJoined || len(res.AppliedRules) != 0 {
		t.Errorf("expected joined without rewards, got %+v", res)
	}
}

func TestExecuteSaveRewardRule(t *testing.T) {
	deps, store := newReferralDeps()
	rule, err := ExecuteSaveRewardRule(context.Background(), SaveRewardRuleInput{Rule: referral.RewardRule{
		Name: "Fifth friend", ReferralsRequired: 5, RewardType: referral.RewardDiscount, RewardValue: d("10"), Active: true,
	}}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := store.rules[rule.ID]; !ok {
		t.Error("expected rule persisted")
	}
	_, err = ExecuteSaveRewardRule(context.Background(), SaveRewardRuleInput{Rule: referral.RewardRule{Name: "Zero", RewardType: referral.RewardPoints}}, deps)
	if !errors.Is(err, referral.ErrInvalidThreshold) {
		t.Errorf("expected ErrInvalidThreshold, got %v", err)
	}
}
