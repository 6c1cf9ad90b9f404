package cpd_test

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/NAA-del/naa-portal/core/cpd"
	"github.com/NAA-del/naa-portal/core/member"
	inmemdb "github.com/NAA-del/naa-portal/storage/database/inmem"
	testutil "github.com/NAA-del/naa-portal/tests"
)

func TestMain(m *testing.M) {
	testutil.LoadConfig()
	os.Exit(m.Run())
}

var (
	leader = member.Member{ID: 1, Tier: member.TierFellow, Roles: []string{member.RoleTrustee}}
	ada    = member.Member{ID: 2, Tier: member.TierFull, IsVerified: true}
	obi    = member.Member{ID: 3, Tier: member.TierAssociate, IsVerified: true}
)

func setup(t *testing.T) *cpd.Service {
	t.Helper()
	return cpd.NewService(inmemdb.NewCPDRepository(inmemdb.NewDB()))
}

func submit(t *testing.T, svc *cpd.Service, actor member.Member, activity string, points int) cpd.Record {
	t.Helper()
	r, err := svc.Submit(context.Background(), actor, cpd.NewRecord{
		ActivityName:  activity,
		Points:        points,
		DateCompleted: time.Now().AddDate(0, -1, 0),
	})
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	return r
}

func TestService_Submit(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	r := submit(t, svc, ada, "Hearing aid fitting workshop", 10)
	if r.ID == 0 {
		t.Error("Submit() did not assign an ID")
	}
	if r.MemberID != ada.ID {
		t.Errorf("record member = %d, want %d", r.MemberID, ada.ID)
	}
	if r.IsVerified {
		t.Error("new records must start unverified")
	}

	// a certificate, when provided, must pass upload validation
	_, err := svc.Submit(ctx, ada, cpd.NewRecord{
		ActivityName:    "Tinnitus management seminar",
		Points:          5,
		DateCompleted:   time.Now().AddDate(0, 0, -7),
		CertificateName: "cert.pdf",
		Certificate:     []byte("not a pdf"),
	})
	if err == nil {
		t.Error("Submit() accepted an invalid certificate")
	}

	_, err = svc.Submit(ctx, ada, cpd.NewRecord{
		ActivityName:    "Tinnitus management seminar",
		Points:          5,
		DateCompleted:   time.Now().AddDate(0, 0, -7),
		CertificateName: "cert.pdf",
		Certificate:     []byte("%PDF-1.5"),
	})
	if err != nil {
		t.Errorf("Submit() error = %v", err)
	}
}

func TestService_ListByMember(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	submit(t, svc, ada, "Hearing aid fitting workshop", 10)
	submit(t, svc, obi, "Cochlear implant conference", 15)

	if _, err := svc.ListByMember(ctx, ada, obi.ID); err != cpd.ErrAccessDenied {
		t.Errorf("ListByMember() error = %v, want %v", err, cpd.ErrAccessDenied)
	}

	own, err := svc.ListByMember(ctx, ada, ada.ID)
	if err != nil {
		t.Fatalf("ListByMember() error = %v", err)
	}
	if len(own) != 1 {
		t.Errorf("own records = %d, want 1", len(own))
	}

	others, err := svc.ListByMember(ctx, leader, obi.ID)
	if err != nil {
		t.Fatalf("ListByMember() error = %v", err)
	}
	if len(others) != 1 {
		t.Errorf("leadership view = %d records, want 1", len(others))
	}
}

func TestService_TotalPoints(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	r1 := submit(t, svc, ada, "Hearing aid fitting workshop", 10)
	submit(t, svc, ada, "Cochlear implant conference", 15)

	if err := svc.VerifyRecords(ctx, ada, r1.ID); err != cpd.ErrAccessDenied {
		t.Errorf("VerifyRecords() error = %v, want %v", err, cpd.ErrAccessDenied)
	}
	if err := svc.VerifyRecords(ctx, leader, r1.ID); err != nil {
		t.Fatalf("VerifyRecords() error = %v", err)
	}

	total, err := svc.TotalPoints(ctx, ada, ada.ID, false)
	if err != nil {
		t.Fatalf("TotalPoints() error = %v", err)
	}
	if total != 25 {
		t.Errorf("TotalPoints() = %d, want 25", total)
	}

	verified, err := svc.TotalPoints(ctx, ada, ada.ID, true)
	if err != nil {
		t.Fatalf("TotalPoints() error = %v", err)
	}
	if verified != 10 {
		t.Errorf("TotalPoints(verifiedOnly) = %d, want 10", verified)
	}
}

func TestService_ExportCSV(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	r := submit(t, svc, ada, "Hearing aid fitting workshop", 10)
	if err := svc.VerifyRecords(ctx, leader, r.ID); err != nil {
		t.Fatalf("VerifyRecords() error = %v", err)
	}

	var buf bytes.Buffer
	if err := svc.ExportCSV(ctx, ada, ada.ID, &buf); err != nil {
		t.Fatalf("ExportCSV() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("export lines = %d, want header + 1 row", len(lines))
	}
	if lines[0] != "activity_name,points,date_completed,is_verified" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "Hearing aid fitting workshop,10,") || !strings.HasSuffix(lines[1], ",true") {
		t.Errorf("row = %q", lines[1])
	}

	if err := svc.ExportCSV(ctx, obi, ada.ID, &buf); err != cpd.ErrAccessDenied {
		t.Errorf("ExportCSV() error = %v, want %v", err, cpd.ErrAccessDenied)
	}
}
