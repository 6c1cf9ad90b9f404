package resource

import (
	"github.com/go-playground/validator/v10"

	"github.com/NAA-del/naa-portal/core"
	"github.com/NAA-del/naa-portal/core/member"
)

var (
	categoryTag  = "resource_category"
	categoryText = "invalid resource category"

	levelTag  = "access_level"
	levelText = "invalid access level"
)

func init() {
	_ = core.Validate.RegisterValidation(categoryTag, categoryValidation)
	core.RegisterCustomTranslation(categoryTag, categoryText)

	_ = core.Validate.RegisterValidation(levelTag, levelValidation)
	core.RegisterCustomTranslation(levelTag, levelText)
}

func categoryValidation(fl validator.FieldLevel) bool {
	return Category(fl.Field().String()).Valid()
}

func levelValidation(fl validator.FieldLevel) bool {
	return member.AccessLevel(fl.Field().String()).Valid()
}
