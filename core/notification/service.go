package notification

import (
	"context"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/NAA-del/naa-portal/core"
)

var (
	// errors
	ErrNotFound = errors.New("notification not found")
)

type (
	Repository interface {
		CreateEvent(ctx context.Context, evt Event) (Event, error)
		QueryEventsByMember(ctx context.Context, memberID int) ([]Event, error)
		// MarkEventRead flips the read flag iff the event belongs to memberID.
		MarkEventRead(ctx context.Context, id string, memberID int) (Event, error)
	}

	// Service renders and delivers notifications. Delivery failures are
	// contained here: they are logged and reflected in the DispatchResult,
	// never returned to the caller.
	Service struct {
		repo Repository
		mail core.EmailSender
		log  core.Logger
	}
)

func NewService(repo Repository, mailSvc core.EmailSender, log core.Logger) *Service {
	return &Service{repo: repo, mail: mailSvc, log: log}
}

// Dispatch renders bodyTmpl with {{name}} placeholder substitution, records
// an in-app Event for the recipient, and attempts email delivery. The in-app
// record and the email are independent: either may succeed without the other.
func (svc *Service) Dispatch(ctx context.Context, rcpt Recipient, title, bodyTmpl string, data map[string]string) DispatchResult {
	body := svc.render(rcpt, bodyTmpl, data)

	if _, err := svc.Record(ctx, rcpt, title, body); err != nil {
		svc.log.Error("recording notification event", errors.Wrap(err, "creating event"))
	}

	if err := svc.deliver(rcpt, title, body); err != nil {
		svc.log.Error("notification email delivery failed", err)
		return DispatchFailed
	}
	return DispatchDelivered
}

// Notify records an in-app Event only, with placeholder rendering; no email
// is attempted.
func (svc *Service) Notify(ctx context.Context, rcpt Recipient, title, bodyTmpl string, data map[string]string) (Event, error) {
	return svc.Record(ctx, rcpt, title, svc.render(rcpt, bodyTmpl, data))
}

// Record persists an already-rendered Event.
func (svc *Service) Record(ctx context.Context, rcpt Recipient, title, body string) (Event, error) {
	evt := Event{
		ID:        uuid.New().String(),
		MemberID:  rcpt.ID,
		Title:     title,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateEvent(ctx, evt)
}

func (svc *Service) QueryByMember(ctx context.Context, memberID int) ([]Event, error) {
	return svc.repo.QueryEventsByMember(ctx, memberID)
}

// MarkRead flips an event's read flag on behalf of its recipient.
func (svc *Service) MarkRead(ctx context.Context, id string, memberID int) (Event, error) {
	return svc.repo.MarkEventRead(ctx, id, memberID)
}

func (svc *Service) render(rcpt Recipient, bodyTmpl string, data map[string]string) string {
	merged := map[string]string{"username": rcpt.Username}
	for k, v := range data {
		merged[k] = v
	}
	return RenderPlaceholders(bodyTmpl, merged)
}

// deliver hands the message to the email channel, containing panics from
// misbehaving channel implementations.
func (svc *Service) deliver(rcpt Recipient, title, body string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("email channel panic: %v", r)
		}
	}()

	if rcpt.Email == "" {
		return nil
	}
	msg := &core.EmailMessage{
		To:      []mail.Address{{Name: rcpt.Username, Address: rcpt.Email}},
		Subject: title,
		BodyStr: body,
	}
	return svc.mail.SendMessage(msg)
}
