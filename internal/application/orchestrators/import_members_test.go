package orchestrators

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gymbios/internal/domain/audit"
	"gymbios/internal/domain/member"
)

func newImportFixture(existing ...member.Member) (*memberFixture, ImportMembersDeps) {
	f := newMemberFixture()
	for _, m := range existing {
		f.members.members[m.ID] = m
	}
	deps := ImportMembersDeps{
		MemberStore: f.members,
		PlanStore:   newMockPlanStore(quarterly),
		Audit:       f.audit,
		Notify:      f.deps.Notify,
		GenerateID:  idSeq("mem"),
		Now:         fixedNow,
	}
	return f, deps
}

func TestExecuteImportMembers_CreatesRows(t *testing.T) {
	f, deps := newImportFixture()
	csv := "Name,Phone,Email,Plan,Join Date\n" +
		"Asha Rao,9800000001,asha@example.com,quarterly,2026-01-15\n" +
		"Ravi Kumar,9800000002,,,\n"

	res, err := ExecuteImportMembers(context.Background(), ImportMembersInput{Reader: strings.NewReader(csv)}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 2 || res.Created != 2 || len(res.Errors) != 0 {
		t.Fatalf("result = %+v", res)
	}
	asha, err := f.members.GetByID(context.Background(), "mem-1")
	if err != nil {
		t.Fatal(err)
	}
	if asha.MembershipPlan != "Quarterly" || asha.ExpiryDate != "2026-04-15" {
		t.Errorf("plan not applied: %q expires %q", asha.MembershipPlan, asha.ExpiryDate)
	}
	if got := len(f.sender.sent); got != 1 {
		t.Errorf("welcome emails = %d, want 1 (only Asha has an email)", got)
	}
	if last := f.audit.last(); last.Action != audit.ActionImport {
		t.Errorf("last audit action = %q, want import", last.Action)
	}
}

func TestExecuteImportMembers_ExistingRows(t *testing.T) {
	existing := member.Member{
		ID: "m-1", Name: "Asha", Email: "asha@example.com", Phone: "9800000001",
		Status: member.StatusActive, JoinDate: "2025-06-01", Address: "12 Hill Rd",
	}
	csv := "NAME,EMAIL,PHONE,STATUS\nAsha Rao,ASHA@example.com,,inactive\n"

	t.Run("skipped without update mode", func(t *testing.T) {
		f, deps := newImportFixture(existing)
		res, err := ExecuteImportMembers(context.Background(), ImportMembersInput{Reader: strings.NewReader(csv)}, deps)
		if err != nil {
			t.Fatal(err)
		}
		if res.Skipped != 1 || res.Updated != 0 {
			t.Errorf("result = %+v", res)
		}
		if got := f.members.members["m-1"].Name; got != "Asha" {
			t.Errorf("name changed to %q", got)
		}
	})

	t.Run("updated in update mode", func(t *testing.T) {
		f, deps := newImportFixture(existing)
		res, err := ExecuteImportMembers(context.Background(), ImportMembersInput{
			Reader: strings.NewReader(csv), UpdateMode: true,
		}, deps)
		if err != nil {
			t.Fatal(err)
		}
		if res.Updated != 1 || res.Created != 0 {
			t.Fatalf("result = %+v", res)
		}
		got := f.members.members["m-1"]
		if got.Name != "Asha Rao" || got.Status != member.StatusInactive {
			t.Errorf("member = %+v", got)
		}
		if got.Address != "12 Hill Rd" || got.Phone != "9800000001" || got.JoinDate != "2025-06-01" {
			t.Errorf("blank columns overwrote stored values: %+v", got)
		}
		if len(f.sender.sent) != 0 {
			t.Error("an update sent a welcome email")
		}
	})
}

func TestExecuteImportMembers_RowErrors(t *testing.T) {
	f, deps := newImportFixture()
	csv := "name,email,phone,plan,join_date,membership_id\n" +
		",nobody@example.com,,,,1\n" +
		"No Contact,,,,,2\n" +
		"Bad Plan,bp@example.com,,Platinum,,3\n" +
		"Bad Date,bd@example.com,,,31/31/2026,4\n" +
		"Good Row,good@example.com,,,,5\n"

	res, err := ExecuteImportMembers(context.Background(), ImportMembersInput{Reader: strings.NewReader(csv)}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Created != 1 || len(res.Errors) != 4 {
		t.Fatalf("result = %+v", res)
	}
	wantRows := []int{2, 3, 4, 5}
	for i, e := range res.Errors {
		if e.Row != wantRows[i] {
			t.Errorf("error %d on row %d, want %d (%s)", i, e.Row, wantRows[i], e.Message)
		}
	}
	if !strings.Contains(res.Errors[2].Message, "Platinum") {
		t.Errorf("plan error = %q", res.Errors[2].Message)
	}
	if len(res.Unknown) != 1 || res.Unknown[0] != "membership_id" {
		t.Errorf("unknown columns = %v", res.Unknown)
	}
	if len(f.members.members) != 1 {
		t.Errorf("stored %d members, want 1", len(f.members.members))
	}
}

func TestExecuteImportMembers_DryRunWritesNothing(t *testing.T) {
	f, deps := newImportFixture()
	csv := "name,email\nAsha,asha@example.com\nBroken,not-an-email\n"

	res, err := ExecuteImportMembers(context.Background(), ImportMembersInput{
		Reader: strings.NewReader(csv), DryRun: true,
	}, deps)
	if err != nil {
		t.Fatal(err)
	}
	if !res.DryRun || res.Created != 1 || len(res.Errors) != 1 {
		t.Errorf("result = %+v", res)
	}
	if len(f.members.members) != 0 || len(f.audit.events) != 0 || len(f.sender.sent) != 0 {
		t.Error("dry run wrote data")
	}
}

func TestExecuteImportMembers_BadHeader(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{"empty file", ""},
		{"no name column", "email,phone\na@example.com,1\n"},
		{"no contact column", "name,plan\nAsha,Quarterly\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, deps := newImportFixture()
			_, err := ExecuteImportMembers(context.Background(), ImportMembersInput{Reader: strings.NewReader(tt.csv)}, deps)
			var bad *InvalidInputError
			if !errors.As(err, &bad) {
				t.Errorf("err = %v, want InvalidInputError", err)
			}
		})
	}
}
