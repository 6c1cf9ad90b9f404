package cpd

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/NAA-del/naa-portal/core"
)

// Record is a single continuing-professional-development activity logged by
// a member. Records start unverified; leadership confirms them.
type Record struct {
	ID              int       `json:"id"`
	MemberID        int       `json:"member_id"`
	ActivityName    string    `json:"activity_name"`
	Points          int       `json:"points"`
	DateCompleted   time.Time `json:"date_completed"`
	CertificateName string    `json:"certificate_name"`
	IsVerified      bool      `json:"is_verified"`
	CreatedAt       time.Time `json:"created_at"` // UTC
}

type NewRecord struct {
	ActivityName    string    `json:"activity_name" validate:"required,min=5,max=255"`
	Points          int       `json:"points" validate:"required,min=1,max=50"`
	DateCompleted   time.Time `json:"date_completed" validate:"required,not_future"`
	CertificateName string    `json:"certificate_name"`
	Certificate     []byte    `json:"-"`
}

func (nr *NewRecord) Validate() error {
	nr.ActivityName = core.CleanString(nr.ActivityName)
	return core.Validate.Struct(nr)
}

var (
	notFutureTag  = "not_future"
	notFutureText = "date cannot be in the future"
)

func init() {
	_ = core.Validate.RegisterValidation(notFutureTag, notFutureValidation)
	core.RegisterCustomTranslation(notFutureTag, notFutureText)
}

func notFutureValidation(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	return !t.After(time.Now())
}
