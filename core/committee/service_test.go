package committee_test

import (
	"context"
	"os"
	"testing"

	"github.com/NAA-del/naa-portal/core/committee"
	"github.com/NAA-del/naa-portal/core/member"
	inmemdb "github.com/NAA-del/naa-portal/storage/database/inmem"
	testutil "github.com/NAA-del/naa-portal/tests"
)

func TestMain(m *testing.M) {
	testutil.LoadConfig()
	os.Exit(m.Run())
}

var (
	leader   = member.Member{ID: 1, Tier: member.TierFellow, Roles: []string{member.RoleExcoPresident}}
	director = member.Member{ID: 2, Tier: member.TierFull, IsVerified: true}
	listed   = member.Member{ID: 3, Tier: member.TierAssociate, IsVerified: true, Roles: []string{member.RoleCommittee}}
	outsider = member.Member{ID: 4, Tier: member.TierFellow, IsVerified: true}
)

func setup(t *testing.T) *committee.Service {
	t.Helper()
	return committee.NewService(inmemdb.NewCommitteeRepository(inmemdb.NewDB()))
}

func createCommittee(t *testing.T, svc *committee.Service, name string) committee.Committee {
	t.Helper()
	c, err := svc.Create(context.Background(), leader, committee.NewCommittee{
		Name:       name,
		DirectorID: &director.ID,
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	c, err = svc.SetMembers(context.Background(), leader, c.ID, []int{listed.ID})
	if err != nil {
		t.Fatalf("SetMembers() failed: %v", err)
	}
	return c
}

func TestService_Create(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, outsider, committee.NewCommittee{Name: "Research"}); err != committee.ErrAccessDenied {
		t.Errorf("Create() error = %v, want %v", err, committee.ErrAccessDenied)
	}

	c, err := svc.Create(ctx, leader, committee.NewCommittee{Name: "Research", DirectorID: &director.ID})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if c.ID == 0 {
		t.Error("Create() did not assign an ID")
	}

	if _, err = svc.Create(ctx, leader, committee.NewCommittee{Name: "Research"}); err != committee.ErrNameExists {
		t.Errorf("Create() error = %v, want %v", err, committee.ErrNameExists)
	}
}

func TestService_Get(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()
	c := createCommittee(t, svc, "Research")

	tests := []struct {
		name    string
		actor   member.Member
		wantErr error
	}{
		{name: "leadership", actor: leader},
		{name: "director", actor: director},
		{name: "listed member", actor: listed},
		{name: "outsider denied regardless of tier", actor: outsider, wantErr: committee.ErrAccessDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Get(ctx, tt.actor, c.ID); err != tt.wantErr {
				t.Errorf("Get() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	if _, err := svc.Get(ctx, leader, 404); err != committee.ErrNotFound {
		t.Errorf("Get() error = %v, want %v", err, committee.ErrNotFound)
	}
}

func TestService_Update(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()
	c := createCommittee(t, svc, "Research")

	// listed members hold read access only
	if _, err := svc.Update(ctx, listed, c.ID, committee.UpdateCommittee{Name: "Hijacked"}); err != committee.ErrAccessDenied {
		t.Errorf("Update() error = %v, want %v", err, committee.ErrAccessDenied)
	}

	updated, err := svc.Update(ctx, director, c.ID, committee.UpdateCommittee{Name: "Research & Publications", Description: "Journal output"})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Name != "Research & Publications" {
		t.Errorf("Name = %q", updated.Name)
	}
	if updated.Description != "Journal output" {
		t.Errorf("Description = %q", updated.Description)
	}
}

func TestService_SetMembers(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()
	c := createCommittee(t, svc, "Research")

	if _, err := svc.SetMembers(ctx, listed, c.ID, []int{listed.ID, outsider.ID}); err != committee.ErrAccessDenied {
		t.Errorf("SetMembers() error = %v, want %v", err, committee.ErrAccessDenied)
	}

	updated, err := svc.SetMembers(ctx, director, c.ID, []int{outsider.ID})
	if err != nil {
		t.Fatalf("SetMembers() error = %v", err)
	}
	if len(updated.MemberIDs) != 1 || updated.MemberIDs[0] != outsider.ID {
		t.Errorf("MemberIDs = %v, want [%d]", updated.MemberIDs, outsider.ID)
	}

	// replaced members lose access
	if _, err = svc.Get(ctx, listed, c.ID); err != committee.ErrAccessDenied {
		t.Errorf("Get() error = %v, want %v", err, committee.ErrAccessDenied)
	}
}

func TestService_Reports(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()
	c := createCommittee(t, svc, "Research")

	nr := committee.NewReport{Title: "Q2 Report", FileName: "q2.pdf", File: []byte("%PDF-1.7")}

	if _, err := svc.SubmitReport(ctx, listed, c.ID, nr); err != committee.ErrAccessDenied {
		t.Errorf("SubmitReport() error = %v, want %v", err, committee.ErrAccessDenied)
	}

	bad := nr
	bad.File = []byte("not a pdf")
	if _, err := svc.SubmitReport(ctx, director, c.ID, bad); err == nil {
		t.Error("SubmitReport() accepted a file with bad magic bytes")
	}

	r, err := svc.SubmitReport(ctx, director, c.ID, nr)
	if err != nil {
		t.Fatalf("SubmitReport() error = %v", err)
	}
	if r.UploadedBy != director.ID {
		t.Errorf("UploadedBy = %d, want %d", r.UploadedBy, director.ID)
	}

	if _, err = svc.QueryReports(ctx, outsider, c.ID); err != committee.ErrAccessDenied {
		t.Errorf("QueryReports() error = %v, want %v", err, committee.ErrAccessDenied)
	}
	reports, err := svc.QueryReports(ctx, listed, c.ID)
	if err != nil {
		t.Fatalf("QueryReports() error = %v", err)
	}
	if len(reports) != 1 {
		t.Errorf("reports = %d, want 1", len(reports))
	}
}

func TestService_Announcements(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()
	c := createCommittee(t, svc, "Research")

	na := committee.NewAnnouncement{Title: "Kickoff", Content: "First meeting on Friday."}

	if _, err := svc.PostAnnouncement(ctx, listed, c.ID, na); err != committee.ErrAccessDenied {
		t.Errorf("PostAnnouncement() error = %v, want %v", err, committee.ErrAccessDenied)
	}

	a, err := svc.PostAnnouncement(ctx, director, c.ID, na)
	if err != nil {
		t.Fatalf("PostAnnouncement() error = %v", err)
	}
	if a.PostedBy != director.ID {
		t.Errorf("PostedBy = %d, want %d", a.PostedBy, director.ID)
	}

	if _, err = svc.QueryAnnouncements(ctx, outsider, c.ID); err != committee.ErrAccessDenied {
		t.Errorf("QueryAnnouncements() error = %v, want %v", err, committee.ErrAccessDenied)
	}
	anns, err := svc.QueryAnnouncements(ctx, listed, c.ID)
	if err != nil {
		t.Fatalf("QueryAnnouncements() error = %v", err)
	}
	if len(anns) != 1 {
		t.Errorf("announcements = %d, want 1", len(anns))
	}
}
