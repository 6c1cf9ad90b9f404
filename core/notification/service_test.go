package notification_test

import (
	"context"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/NAA-del/naa-portal/core"
	"github.com/NAA-del/naa-portal/core/notification"
	inmemdb "github.com/NAA-del/naa-portal/storage/database/inmem"
	testutil "github.com/NAA-del/naa-portal/tests"
)

func TestMain(m *testing.M) {
	testutil.LoadConfig()
	os.Exit(m.Run())
}

type stubSender struct {
	sent []*core.EmailMessage
	err  error
	boom bool
}

func (s *stubSender) SendMessage(msg *core.EmailMessage) error {
	if s.boom {
		panic("channel gone")
	}
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func setup(t *testing.T, sender core.EmailSender) (*notification.Service, notification.Repository) {
	t.Helper()
	repo := inmemdb.NewNotificationRepository(inmemdb.NewDB())
	logger := core.NewStdLogger(log.New(os.Stderr, "TEST : ", log.LstdFlags))
	return notification.NewService(repo, sender, logger), repo
}

func TestService_Dispatch(t *testing.T) {
	ctx := context.Background()
	rcpt := notification.Recipient{ID: 1, Username: "ada", Email: "ada@test.naa"}

	t.Run("renders, records and delivers", func(t *testing.T) {
		sender := &stubSender{}
		svc, repo := setup(t, sender)

		res := svc.Dispatch(ctx, rcpt, "Welcome", "Hello {{username}}, you now have {{points}} points", map[string]string{"points": "5"})
		if res.Failed() {
			t.Fatalf("Dispatch() = %s, want delivered", res)
		}

		events, err := repo.QueryEventsByMember(ctx, rcpt.ID)
		if err != nil {
			t.Fatalf("QueryEventsByMember() error = %v", err)
		}
		if len(events) != 1 {
			t.Fatalf("events = %d, want 1", len(events))
		}
		if events[0].Body != "Hello ada, you now have 5 points" {
			t.Errorf("event body = %q", events[0].Body)
		}
		if events[0].Read {
			t.Error("new events must start unread")
		}

		if len(sender.sent) != 1 {
			t.Fatalf("emails = %d, want 1", len(sender.sent))
		}
		if sender.sent[0].BodyStr != events[0].Body {
			t.Errorf("email body %q differs from event body %q", sender.sent[0].BodyStr, events[0].Body)
		}
	})

	t.Run("email failure reports failed but keeps the event", func(t *testing.T) {
		svc, repo := setup(t, &stubSender{err: errors.New("smtp down")})

		res := svc.Dispatch(ctx, rcpt, "Welcome", "Hello {{username}}", nil)
		if !res.Failed() {
			t.Errorf("Dispatch() = %s, want failed", res)
		}

		events, err := repo.QueryEventsByMember(ctx, rcpt.ID)
		if err != nil {
			t.Fatalf("QueryEventsByMember() error = %v", err)
		}
		if len(events) != 1 {
			t.Errorf("events = %d, want 1 despite email failure", len(events))
		}
	})

	t.Run("contains a panicking channel", func(t *testing.T) {
		svc, _ := setup(t, &stubSender{boom: true})

		res := svc.Dispatch(ctx, rcpt, "Welcome", "Hello {{username}}", nil)
		if !res.Failed() {
			t.Errorf("Dispatch() = %s, want failed", res)
		}
	})

	t.Run("no email address skips delivery", func(t *testing.T) {
		sender := &stubSender{}
		svc, _ := setup(t, sender)

		res := svc.Dispatch(ctx, notification.Recipient{ID: 2, Username: "obi"}, "Welcome", "Hello {{username}}", nil)
		if res.Failed() {
			t.Errorf("Dispatch() = %s, want delivered", res)
		}
		if len(sender.sent) != 0 {
			t.Errorf("emails = %d, want none", len(sender.sent))
		}
	})
}

func TestService_MarkRead(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t, &stubSender{})

	rcpt := notification.Recipient{ID: 1, Username: "ada", Email: "ada@test.naa"}
	evt, err := svc.Notify(ctx, rcpt, "Welcome", "Hello {{username}}", nil)
	if err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if !strings.Contains(evt.Body, "ada") {
		t.Errorf("Notify() body = %q, want rendered username", evt.Body)
	}

	// only the recipient may flip the flag
	if _, err = svc.MarkRead(ctx, evt.ID, 999); err != notification.ErrNotFound {
		t.Errorf("MarkRead() error = %v, want %v", err, notification.ErrNotFound)
	}

	read, err := svc.MarkRead(ctx, evt.ID, rcpt.ID)
	if err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}
	if !read.Read {
		t.Error("MarkRead() did not flip the flag")
	}

	if _, err = svc.MarkRead(ctx, "nope", rcpt.ID); err != notification.ErrNotFound {
		t.Errorf("MarkRead() error = %v, want %v", err, notification.ErrNotFound)
	}
}
