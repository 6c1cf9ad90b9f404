package announcement_test

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/NAA-del/naa-portal/core"
	"github.com/NAA-del/naa-portal/core/announcement"
	"github.com/NAA-del/naa-portal/core/member"
	"github.com/NAA-del/naa-portal/core/notification"
	inmemdb "github.com/NAA-del/naa-portal/storage/database/inmem"
	testutil "github.com/NAA-del/naa-portal/tests"
)

func TestMain(m *testing.M) {
	testutil.LoadConfig()
	os.Exit(m.Run())
}

var (
	leader  = member.Member{ID: 99, Tier: member.TierFellow, Roles: []string{member.RoleExcoGenSec}}
	regular = member.Member{ID: 98, Tier: member.TierFull, IsVerified: true}
)

// countingDispatcher records recipients and optionally fails every delivery.
type countingDispatcher struct {
	recipients []notification.Recipient
	fail       bool
}

func (d *countingDispatcher) Dispatch(ctx context.Context, rcpt notification.Recipient, title, body string, data map[string]string) notification.DispatchResult {
	d.recipients = append(d.recipients, rcpt)
	if d.fail {
		return notification.DispatchFailed
	}
	return notification.DispatchDelivered
}

type fixture struct {
	svc        *announcement.Service
	memberRepo member.Repository
	dispatcher *countingDispatcher
}

func setup(t *testing.T, failDispatch bool) fixture {
	t.Helper()
	db := inmemdb.NewDB()
	dispatcher := &countingDispatcher{fail: failDispatch}
	memberRepo := inmemdb.NewMemberRepository(db)
	logger := core.NewStdLogger(log.New(os.Stderr, "TEST : ", log.LstdFlags))
	svc := announcement.NewService(inmemdb.NewAnnouncementRepository(db), memberRepo, dispatcher, logger)
	return fixture{svc: svc, memberRepo: memberRepo, dispatcher: dispatcher}
}

func TestService_Create(t *testing.T) {
	fix := setup(t, false)
	ctx := context.Background()

	if _, err := fix.svc.Create(ctx, regular, announcement.NewAnnouncement{Title: "AGM", Content: "Save the date."}); err != announcement.ErrAccessDenied {
		t.Errorf("Create() error = %v, want %v", err, announcement.ErrAccessDenied)
	}

	if _, err := fix.svc.Create(ctx, leader, announcement.NewAnnouncement{Title: "AG"}); err == nil {
		t.Error("Create() accepted an invalid announcement")
	}

	a, err := fix.svc.Create(ctx, leader, announcement.NewAnnouncement{Title: "AGM 2026", Content: "Save the date."})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if a.ID == 0 {
		t.Error("Create() did not assign an ID")
	}

	all, err := fix.svc.QueryAll(ctx)
	if err != nil {
		t.Fatalf("QueryAll() error = %v", err)
	}
	if len(all) != 1 {
		t.Errorf("announcements = %d, want 1", len(all))
	}
}

func TestService_StudentAnnouncements(t *testing.T) {
	fix := setup(t, false)
	ctx := context.Background()

	if _, err := fix.svc.CreateForStudents(ctx, leader, announcement.NewStudentAnnouncement{
		Title: "Exam dates", Content: "See below.", TargetUniversity: "UNKNOWN-U",
	}); err == nil {
		t.Error("CreateForStudents() accepted an unknown university")
	}

	mk := func(title, target string) {
		if _, err := fix.svc.CreateForStudents(ctx, leader, announcement.NewStudentAnnouncement{
			Title: title, Content: "Details inside.", TargetUniversity: target,
		}); err != nil {
			t.Fatalf("CreateForStudents() error = %v", err)
		}
	}
	mk("For everyone", announcement.TargetAll)
	mk("UNIMED only", string(member.UniversityUNIMED))
	mk("FUHSI only", string(member.UniversityFUHSI))

	got, err := fix.svc.ListForStudent(ctx, member.UniversityUNIMED)
	if err != nil {
		t.Fatalf("ListForStudent() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("visible announcements = %d, want 2 (All + UNIMED)", len(got))
	}
	for _, a := range got {
		if a.TargetUniversity != announcement.TargetAll && a.TargetUniversity != string(member.UniversityUNIMED) {
			t.Errorf("unexpected target %q for a UNIMED student", a.TargetUniversity)
		}
	}
}

func TestService_Broadcast(t *testing.T) {
	ctx := context.Background()

	t.Run("notifies active members only", func(t *testing.T) {
		fix := setup(t, false)

		active := testutil.CreateMember(t, fix.memberRepo, "ada", "ada@test.naa", "", member.TierFull, nil, true)
		inactive := testutil.CreateMember(t, fix.memberRepo, "obi", "obi@test.naa", "", member.TierFull, nil, false)
		off := false
		if _, err := fix.memberRepo.UpdateMember(ctx, member.Member{ID: inactive.ID}, &off); err != nil {
			t.Fatalf("UpdateMember() failed: %v", err)
		}

		a, err := fix.svc.Broadcast(ctx, leader, announcement.NewAnnouncement{Title: "AGM 2026", Content: "Save the date."})
		if err != nil {
			t.Fatalf("Broadcast() error = %v", err)
		}
		if a.ID == 0 {
			t.Error("Broadcast() did not persist the announcement")
		}

		if len(fix.dispatcher.recipients) != 1 {
			t.Fatalf("dispatched to %d members, want 1", len(fix.dispatcher.recipients))
		}
		if fix.dispatcher.recipients[0].ID != active.ID {
			t.Errorf("dispatched to member %d, want %d", fix.dispatcher.recipients[0].ID, active.ID)
		}
	})

	t.Run("delivery failures do not fail the broadcast", func(t *testing.T) {
		fix := setup(t, true /* failDispatch */)
		testutil.CreateMember(t, fix.memberRepo, "ada", "ada@test.naa", "", member.TierFull, nil, true)

		a, err := fix.svc.Broadcast(ctx, leader, announcement.NewAnnouncement{Title: "AGM 2026", Content: "Save the date."})
		if err != nil {
			t.Fatalf("Broadcast() error = %v", err)
		}

		// the announcement is durable even though every delivery failed
		all, err := fix.svc.QueryAll(ctx)
		if err != nil {
			t.Fatalf("QueryAll() error = %v", err)
		}
		if len(all) != 1 || all[0].ID != a.ID {
			t.Errorf("announcements = %v, want the broadcast one", all)
		}
	})

	t.Run("requires leadership", func(t *testing.T) {
		fix := setup(t, false)
		if _, err := fix.svc.Broadcast(ctx, regular, announcement.NewAnnouncement{Title: "AGM 2026", Content: "Save the date."}); err != announcement.ErrAccessDenied {
			t.Errorf("Broadcast() error = %v, want %v", err, announcement.ErrAccessDenied)
		}
		if len(fix.dispatcher.recipients) != 0 {
			t.Errorf("dispatched to %d members, want none", len(fix.dispatcher.recipients))
		}
	})
}
