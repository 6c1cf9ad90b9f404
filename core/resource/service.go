package resource

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/NAA-del/naa-portal/core/member"
	"github.com/NAA-del/naa-portal/core/upload"
)

var (
	// errors
	ErrNotFound     = errors.New("resource not found")
	ErrAccessDenied = errors.New("access denied")
)

type (
	Repository interface {
		CreateResource(ctx context.Context, r Resource) (Resource, error)
		QueryAllResources(ctx context.Context) ([]Resource, error)
		GetResourceByID(ctx context.Context, id int) (Resource, error)
		UpdateResource(ctx context.Context, r Resource) (Resource, error)
		DeleteResource(ctx context.Context, id int) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create uploads a new library resource. Leadership only; the file must pass
// upload validation (PDF or image depending on extension).
func (svc *Service) Create(ctx context.Context, actor member.Member, nr NewResource) (Resource, error) {
	if !actor.IsLeadership() {
		return Resource{}, ErrAccessDenied
	}
	if err := validateFile(nr.FileName, nr.File); err != nil {
		return Resource{}, err
	}
	r := Resource{
		Title:        nr.Title,
		Category:     Category(nr.Category),
		Level:        member.AccessLevel(nr.Level),
		VerifiedOnly: nr.VerifiedOnly,
		FileName:     nr.FileName,
		UploadedBy:   actor.ID,
		UploadedAt:   time.Now().UTC(),
	}
	return svc.repo.CreateResource(ctx, r)
}

// ListVisible returns the resources the actor may see, filtered through the
// access gate.
func (svc *Service) ListVisible(ctx context.Context, actor member.Member) ([]Resource, error) {
	all, err := svc.repo.QueryAllResources(ctx)
	if err != nil {
		return nil, err
	}
	visible := make([]Resource, 0, len(all))
	for _, r := range all {
		if member.CanAccess(actor, r) {
			visible = append(visible, r)
		}
	}
	return visible, nil
}

// Get returns a single resource, gated.
func (svc *Service) Get(ctx context.Context, actor member.Member, id int) (Resource, error) {
	r, err := svc.repo.GetResourceByID(ctx, id)
	if err != nil {
		return Resource{}, err
	}
	if !member.CanAccess(actor, r) {
		return Resource{}, ErrAccessDenied
	}
	return r, nil
}

// Delete removes a resource. Leadership only.
func (svc *Service) Delete(ctx context.Context, actor member.Member, id int) error {
	if !actor.IsLeadership() {
		return ErrAccessDenied
	}
	return svc.repo.DeleteResource(ctx, id)
}

func validateFile(name string, content []byte) error {
	if strings.ToLower(path.Ext(name)) == ".pdf" {
		return upload.ValidatePDF(name, content)
	}
	return upload.ValidateImage(name, content)
}
