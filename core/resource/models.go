package resource

import (
	"time"

	"github.com/NAA-del/naa-portal/core"
	"github.com/NAA-del/naa-portal/core/member"
)

// Category groups library resources by audience.
type Category string

const (
	CategoryStudent  Category = "student"  // Student Resource
	CategoryClinical Category = "clinical" // Clinical Guidelines
	CategoryResearch Category = "research" // Research Papers
	CategoryAdmin    Category = "admin"    // Administrative Docs
)

var AllCategories = []Category{CategoryStudent, CategoryClinical, CategoryResearch, CategoryAdmin}

func (c Category) Valid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Resource is a library item protected by an access level and, optionally,
// by verified-member status.
type Resource struct {
	ID           int                `json:"id"`
	Title        string             `json:"title"`
	Category     Category           `json:"category"`
	Level        member.AccessLevel `json:"access_level"`
	VerifiedOnly bool               `json:"verified_only"`
	FileName     string             `json:"file_name"`
	UploadedBy   int                `json:"uploaded_by"`
	UploadedAt   time.Time          `json:"uploaded_at"` // UTC
}

var _ member.Protected = Resource{}

func (r Resource) RequiredLevel() (member.AccessLevel, bool) { return r.Level, true }
func (r Resource) RequiresVerified() bool                    { return r.VerifiedOnly }

type NewResource struct {
	Title        string `json:"title" validate:"required,min=3,max=200"`
	Category     string `json:"category" validate:"required,resource_category"`
	Level        string `json:"access_level" validate:"required,access_level"`
	VerifiedOnly bool   `json:"verified_only"`
	FileName     string `json:"file_name" validate:"required"`
	File         []byte `json:"-"`
}

func (nr *NewResource) Validate() error {
	nr.Title = core.CleanString(nr.Title)
	nr.Category = core.CleanString(nr.Category, true /* lower */)
	nr.Level = core.CleanString(nr.Level, true /* lower */)
	return core.Validate.Struct(nr)
}
