package resource_test

import (
	"context"
	"os"
	"testing"

	"github.com/NAA-del/naa-portal/core/member"
	"github.com/NAA-del/naa-portal/core/resource"
	inmemdb "github.com/NAA-del/naa-portal/storage/database/inmem"
	testutil "github.com/NAA-del/naa-portal/tests"
)

func TestMain(m *testing.M) {
	testutil.LoadConfig()
	os.Exit(m.Run())
}

func setup(t *testing.T) *resource.Service {
	t.Helper()
	return resource.NewService(inmemdb.NewResourceRepository(inmemdb.NewDB()))
}

var (
	leader          = member.Member{ID: 1, Tier: member.TierFellow, Roles: []string{member.RoleExcoGenSec}, IsVerified: true}
	verifiedStudent = member.Member{ID: 2, Tier: member.TierStudent, IsVerified: true}
	unverifiedFull  = member.Member{ID: 3, Tier: member.TierFull}
	verifiedFull    = member.Member{ID: 4, Tier: member.TierFull, IsVerified: true}
)

func createResource(t *testing.T, svc *resource.Service, title string, lvl member.AccessLevel, verifiedOnly bool) resource.Resource {
	t.Helper()
	r, err := svc.Create(context.Background(), leader, resource.NewResource{
		Title:        title,
		Category:     string(resource.CategoryClinical),
		Level:        string(lvl),
		VerifiedOnly: verifiedOnly,
		FileName:     "doc.pdf",
		File:         []byte("%PDF-1.7"),
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	return r
}

func TestService_Create(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	nr := resource.NewResource{
		Title:    "Pediatric Audiometry Guidelines",
		Category: string(resource.CategoryClinical),
		Level:    string(member.LevelFull),
		FileName: "guidelines.pdf",
		File:     []byte("%PDF-1.7"),
	}

	if _, err := svc.Create(ctx, verifiedFull, nr); err != resource.ErrAccessDenied {
		t.Errorf("Create() error = %v, want %v", err, resource.ErrAccessDenied)
	}

	badFile := nr
	badFile.File = []byte("MZ definitely not a pdf")
	if _, err := svc.Create(ctx, leader, badFile); err == nil {
		t.Error("Create() accepted a file with bad magic bytes")
	}

	r, err := svc.Create(ctx, leader, nr)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if r.ID == 0 {
		t.Error("Create() did not assign an ID")
	}
	if r.UploadedBy != leader.ID {
		t.Errorf("UploadedBy = %d, want %d", r.UploadedBy, leader.ID)
	}
}

func TestService_ListVisible(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	studentRes := createResource(t, svc, "Intro to Audiology", member.LevelStudent, false)
	fullRes := createResource(t, svc, "Practice Standards", member.LevelFull, false)
	fullVerifiedRes := createResource(t, svc, "Licensure Pack", member.LevelFull, true)

	tests := []struct {
		name  string
		actor member.Member
		want  []int
	}{
		{name: "leadership sees everything", actor: leader, want: []int{studentRes.ID, fullRes.ID, fullVerifiedRes.ID}},
		{name: "student sees student-level only", actor: verifiedStudent, want: []int{studentRes.ID}},
		{name: "unverified full member misses verified-only", actor: unverifiedFull, want: []int{studentRes.ID, fullRes.ID}},
		{name: "verified full member sees everything", actor: verifiedFull, want: []int{studentRes.ID, fullRes.ID, fullVerifiedRes.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ListVisible(ctx, tt.actor)
			if err != nil {
				t.Fatalf("ListVisible() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ListVisible() returned %d resources, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("ListVisible()[%d].ID = %d, want %d", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestService_Get(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	r := createResource(t, svc, "Licensure Pack", member.LevelFull, true)

	if _, err := svc.Get(ctx, unverifiedFull, r.ID); err != resource.ErrAccessDenied {
		t.Errorf("Get() error = %v, want %v", err, resource.ErrAccessDenied)
	}
	if _, err := svc.Get(ctx, verifiedFull, r.ID); err != nil {
		t.Errorf("Get() error = %v", err)
	}
	if _, err := svc.Get(ctx, leader, 404); err != resource.ErrNotFound {
		t.Errorf("Get() error = %v, want %v", err, resource.ErrNotFound)
	}
}

func TestService_Delete(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	r := createResource(t, svc, "Practice Standards", member.LevelFull, false)

	if err := svc.Delete(ctx, verifiedFull, r.ID); err != resource.ErrAccessDenied {
		t.Errorf("Delete() error = %v, want %v", err, resource.ErrAccessDenied)
	}
	if err := svc.Delete(ctx, leader, r.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := svc.Get(ctx, leader, r.ID); err != resource.ErrNotFound {
		t.Errorf("Get() after delete error = %v, want %v", err, resource.ErrNotFound)
	}
}
