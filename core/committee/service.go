package committee

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/NAA-del/naa-portal/core/member"
	"github.com/NAA-del/naa-portal/core/upload"
)

var (
	// errors
	ErrNotFound     = errors.New("committee not found")
	ErrNameExists   = errors.New("a committee with this name already exists")
	ErrAccessDenied = errors.New("access denied")
)

type (
	Repository interface {
		CreateCommittee(ctx context.Context, c Committee) (Committee, error)
		QueryAllCommittees(ctx context.Context) ([]Committee, error)
		GetCommitteeByID(ctx context.Context, id int) (Committee, error)
		UpdateCommittee(ctx context.Context, c Committee) (Committee, error)
		SetCommitteeMembers(ctx context.Context, id int, memberIDs []int) (Committee, error)
		CreateReport(ctx context.Context, r Report) (Report, error)
		QueryReportsByCommittee(ctx context.Context, committeeID int) ([]Report, error)
		CreateAnnouncement(ctx context.Context, a Announcement) (Announcement, error)
		QueryAnnouncementsByCommittee(ctx context.Context, committeeID int) ([]Announcement, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new committee. Leadership only.
func (svc *Service) Create(ctx context.Context, actor member.Member, nc NewCommittee) (Committee, error) {
	if !actor.IsLeadership() {
		return Committee{}, ErrAccessDenied
	}
	now := time.Now().UTC()
	c := Committee{
		Name:        nc.Name,
		Description: nc.Description,
		DirectorID:  nc.DirectorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateCommittee(ctx, c)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Committee, error) {
	return svc.repo.QueryAllCommittees(ctx)
}

// Get returns a committee if the actor may read it: leadership, director or
// listed member.
func (svc *Service) Get(ctx context.Context, actor member.Member, id int) (Committee, error) {
	c, err := svc.repo.GetCommitteeByID(ctx, id)
	if err != nil {
		return Committee{}, err
	}
	if !member.CanAccess(actor, c) {
		return Committee{}, ErrAccessDenied
	}
	return c, nil
}

// Update modifies a committee. Director or leadership only.
func (svc *Service) Update(ctx context.Context, actor member.Member, id int, uc UpdateCommittee) (Committee, error) {
	c, err := svc.repo.GetCommitteeByID(ctx, id)
	if err != nil {
		return Committee{}, err
	}
	if !member.CanAccess(actor, c, member.ScopeWrite) {
		return Committee{}, ErrAccessDenied
	}
	c.Name = uc.Name
	c.Description = uc.Description
	if uc.DirectorID != nil {
		c.DirectorID = uc.DirectorID
	}
	c.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCommittee(ctx, c)
}

// SetMembers replaces the committee's member set. Director or leadership only.
func (svc *Service) SetMembers(ctx context.Context, actor member.Member, id int, memberIDs []int) (Committee, error) {
	c, err := svc.repo.GetCommitteeByID(ctx, id)
	if err != nil {
		return Committee{}, err
	}
	if !member.CanAccess(actor, c, member.ScopeWrite) {
		return Committee{}, ErrAccessDenied
	}
	return svc.repo.SetCommitteeMembers(ctx, id, memberIDs)
}

// SubmitReport uploads a committee report. Director or leadership only; the
// file must be a valid PDF.
func (svc *Service) SubmitReport(ctx context.Context, actor member.Member, committeeID int, nr NewReport) (Report, error) {
	c, err := svc.repo.GetCommitteeByID(ctx, committeeID)
	if err != nil {
		return Report{}, err
	}
	if !member.CanAccess(actor, c, member.ScopeWrite) {
		return Report{}, ErrAccessDenied
	}
	if err := upload.ValidatePDF(nr.FileName, nr.File); err != nil {
		return Report{}, err
	}
	r := Report{
		CommitteeID: committeeID,
		Title:       nr.Title,
		FileName:    nr.FileName,
		UploadedBy:  actor.ID,
		UploadedAt:  time.Now().UTC(),
	}
	return svc.repo.CreateReport(ctx, r)
}

// QueryReports lists a committee's reports for its members.
func (svc *Service) QueryReports(ctx context.Context, actor member.Member, committeeID int) ([]Report, error) {
	c, err := svc.repo.GetCommitteeByID(ctx, committeeID)
	if err != nil {
		return nil, err
	}
	if !member.CanAccess(actor, c) {
		return nil, ErrAccessDenied
	}
	return svc.repo.QueryReportsByCommittee(ctx, committeeID)
}

// PostAnnouncement publishes a committee announcement. Director or leadership only.
func (svc *Service) PostAnnouncement(ctx context.Context, actor member.Member, committeeID int, na NewAnnouncement) (Announcement, error) {
	c, err := svc.repo.GetCommitteeByID(ctx, committeeID)
	if err != nil {
		return Announcement{}, err
	}
	if !member.CanAccess(actor, c, member.ScopeWrite) {
		return Announcement{}, ErrAccessDenied
	}
	a := Announcement{
		CommitteeID: committeeID,
		Title:       na.Title,
		Content:     na.Content,
		PostedBy:    actor.ID,
		PostedAt:    time.Now().UTC(),
	}
	return svc.repo.CreateAnnouncement(ctx, a)
}

// QueryAnnouncements lists a committee's announcements for its members.
func (svc *Service) QueryAnnouncements(ctx context.Context, actor member.Member, committeeID int) ([]Announcement, error) {
	c, err := svc.repo.GetCommitteeByID(ctx, committeeID)
	if err != nil {
		return nil, err
	}
	if !member.CanAccess(actor, c) {
		return nil, ErrAccessDenied
	}
	return svc.repo.QueryAnnouncementsByCommittee(ctx, committeeID)
}
