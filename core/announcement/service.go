package announcement

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/NAA-del/naa-portal/core"
	"github.com/NAA-del/naa-portal/core/member"
	"github.com/NAA-del/naa-portal/core/notification"
)

var (
	ErrNotFound     = errors.New("announcement not found")
	ErrAccessDenied = errors.New("access denied")
)

type Repository interface {
	CreateAnnouncement(ctx context.Context, a *Announcement) error
	QueryAllAnnouncements(ctx context.Context) ([]Announcement, error)
	CreateStudentAnnouncement(ctx context.Context, a *StudentAnnouncement) error
	QueryStudentAnnouncements(ctx context.Context, university string) ([]StudentAnnouncement, error)
}

// Dispatcher delivers a broadcast to one recipient.
type Dispatcher interface {
	Dispatch(ctx context.Context, rcpt notification.Recipient, title, body string, data map[string]string) notification.DispatchResult
}

// MemberLister provides the recipient set for broadcasts.
type MemberLister interface {
	QueryAllMembers(ctx context.Context) ([]member.Member, error)
}

type Service struct {
	repo     Repository
	members  MemberLister
	dispatch Dispatcher
	log      core.Logger
}

func NewService(repo Repository, members MemberLister, dispatch Dispatcher, log core.Logger) *Service {
	return &Service{
		repo:     repo,
		members:  members,
		dispatch: dispatch,
		log:      log,
	}
}

// Create posts a portal-wide announcement. Leadership only.
func (svc *Service) Create(ctx context.Context, actor member.Member, na NewAnnouncement) (*Announcement, error) {
	if !actor.IsLeadership() {
		return nil, ErrAccessDenied
	}
	if err := na.Validate(); err != nil {
		return nil, err
	}
	a := Announcement{
		Title:    na.Title,
		Content:  na.Content,
		PostedAt: time.Now().UTC(),
	}
	if err := svc.repo.CreateAnnouncement(ctx, &a); err != nil {
		return nil, errors.Wrap(err, "creating announcement")
	}
	return &a, nil
}

// QueryAll returns all announcements, newest first.
func (svc *Service) QueryAll(ctx context.Context) ([]Announcement, error) {
	return svc.repo.QueryAllAnnouncements(ctx)
}

// CreateForStudents posts an announcement targeted at one university or all
// of them. Leadership only.
func (svc *Service) CreateForStudents(ctx context.Context, actor member.Member, na NewStudentAnnouncement) (*StudentAnnouncement, error) {
	if !actor.IsLeadership() {
		return nil, ErrAccessDenied
	}
	if err := na.Validate(); err != nil {
		return nil, err
	}
	a := StudentAnnouncement{
		Title:            na.Title,
		Content:          na.Content,
		TargetUniversity: na.TargetUniversity,
		PostedAt:         time.Now().UTC(),
	}
	if err := svc.repo.CreateStudentAnnouncement(ctx, &a); err != nil {
		return nil, errors.Wrap(err, "creating student announcement")
	}
	return &a, nil
}

// ListForStudent returns the student announcements visible to a student of
// the given university: those addressed to it plus those addressed to All.
func (svc *Service) ListForStudent(ctx context.Context, university member.University) ([]StudentAnnouncement, error) {
	return svc.repo.QueryStudentAnnouncements(ctx, string(university))
}

// Broadcast posts an announcement and notifies every active member of it.
// Delivery failures are logged and skipped; the announcement itself is
// already durable by the time notifications go out.
func (svc *Service) Broadcast(ctx context.Context, actor member.Member, na NewAnnouncement) (*Announcement, error) {
	a, err := svc.Create(ctx, actor, na)
	if err != nil {
		return nil, err
	}

	members, err := svc.members.QueryAllMembers(ctx)
	if err != nil {
		svc.log.Error("broadcast: listing members", err)
		return a, nil
	}
	failed := 0
	for _, m := range members {
		if !m.IsActive {
			continue
		}
		rcpt := notification.Recipient{ID: m.ID, Username: m.Username, Email: m.Email}
		res := svc.dispatch.Dispatch(ctx, rcpt, a.Title, a.Content, nil)
		if res.Failed() {
			failed++
		}
	}
	if failed > 0 {
		svc.log.Warn("broadcast: some notifications failed", "announcement", a.ID, "failed", failed)
	}
	return a, nil
}
