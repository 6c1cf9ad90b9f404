package announcement

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/NAA-del/naa-portal/core"
	"github.com/NAA-del/naa-portal/core/member"
)

// TargetAll addresses a student announcement to every university.
const TargetAll = "All"

// Announcement is a portal-wide post shown on the home page.
type Announcement struct {
	ID       int       `json:"id"`
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	PostedAt time.Time `json:"date_posted"` // UTC
}

// StudentAnnouncement is a post addressed to students of one university, or
// to all of them.
type StudentAnnouncement struct {
	ID               int       `json:"id"`
	Title            string    `json:"title"`
	Content          string    `json:"content"`
	TargetUniversity string    `json:"target_university"` // "All" or a University
	PostedAt         time.Time `json:"date_posted"`       // UTC
}

type NewAnnouncement struct {
	Title   string `json:"title" validate:"required,min=3,max=200"`
	Content string `json:"content" validate:"required"`
}

func (na *NewAnnouncement) Validate() error {
	na.Title = core.CleanString(na.Title)
	na.Content = core.CleanString(na.Content)
	return core.Validate.Struct(na)
}

type NewStudentAnnouncement struct {
	Title            string `json:"title" validate:"required,min=3,max=200"`
	Content          string `json:"content" validate:"required"`
	TargetUniversity string `json:"target_university" validate:"required,announcement_target"`
}

func (na *NewStudentAnnouncement) Validate() error {
	na.Title = core.CleanString(na.Title)
	na.Content = core.CleanString(na.Content)
	na.TargetUniversity = core.CleanString(na.TargetUniversity)
	return core.Validate.Struct(na)
}

var (
	targetTag  = "announcement_target"
	targetText = "invalid target university"
)

func init() {
	_ = core.Validate.RegisterValidation(targetTag, targetValidation)
	core.RegisterCustomTranslation(targetTag, targetText)
}

func targetValidation(fl validator.FieldLevel) bool {
	target := fl.Field().String()
	return target == TargetAll || member.University(target).Valid()
}
