package member

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/NAA-del/naa-portal/core"
)

var (
	tierTag  = "tier"
	tierText = "invalid membership tier"

	allRolesTag  = "allroles"
	allRolesText = "invalid roles"

	universityTag  = "university"
	universityText = "invalid university"

	matricTag  = "matric"
	matricText = "invalid matric number format; use letters, numbers and slashes only"

	disposableEmailTag  = "no_disposable_email"
	disposableEmailText = "please use a permanent email address"
	disposableDomains   = []string{
		"10minutemail.com",
		"guerrillamail.com",
		"mailinator.com",
		"tempmail.com",
		"throwaway.email",
	}

	// password policy
	pwdMinLen     = 8
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)

	pwdNoSpaceTag  = "pwdnospace"
	pwdNoSpaceText = "password must not contain whitespace"

	pwdNotAllNumTag  = "pwdnotallnum"
	pwdNotAllNumText = "password cannot be entirely numeric"

	pwdComplexityTag  = "pwdcplx"
	pwdComplexityText = "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character"
	specialRegex      = regexp.MustCompile("[^A-Za-z0-9]")

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to user attributes"

	pwdNoUsernameTag  = "pwdnousername"
	pwdNoUsernameText = "password cannot contain your username"

	pwdNoCommonTag  = "pwdnocommon"
	pwdNoCommonText = "password is too common"
	commonPasswords = []string{
		"11111111",
		"12345678",
		"123456789",
		"1234567890",
		"abc12345",
		"asdfghjkl",
		"iloveyou",
		"letmein1",
		"password",
		"password1",
		"qwertyuiop",
		"sunshine",
	}
)

func init() {
	sort.Strings(commonPasswords)

	// register validators
	_ = core.Validate.RegisterValidation(tierTag, tierValidation)
	core.RegisterCustomTranslation(tierTag, tierText)

	_ = core.Validate.RegisterValidation(allRolesTag, allRolesValidation)
	core.RegisterCustomTranslation(allRolesTag, allRolesText)

	_ = core.Validate.RegisterValidation(universityTag, universityValidation)
	core.RegisterCustomTranslation(universityTag, universityText)

	_ = core.Validate.RegisterValidation(matricTag, matricValidation)
	core.RegisterCustomTranslation(matricTag, matricText)

	core.Validate.RegisterStructValidation(memberStructValidation, NewMember{})
	core.Validate.RegisterStructValidation(memberStructValidation, UpdateMember{})
	core.RegisterCustomTranslation(disposableEmailTag, disposableEmailText)
	core.RegisterCustomTranslation(pwdMinLenTag, pwdMinLenText)
	core.RegisterCustomTranslation(pwdNoSpaceTag, pwdNoSpaceText)
	core.RegisterCustomTranslation(pwdNotAllNumTag, pwdNotAllNumText)
	core.RegisterCustomTranslation(pwdComplexityTag, pwdComplexityText)
	core.RegisterCustomTranslation(pwdAttrSimTag, pwdAttrSimText)
	core.RegisterCustomTranslation(pwdNoUsernameTag, pwdNoUsernameText)
	core.RegisterCustomTranslation(pwdNoCommonTag, pwdNoCommonText)
}

// Custom Validators

// tierValidation rejects tiers that are not in the closed Tier enum.
func tierValidation(fl validator.FieldLevel) bool {
	return Tier(fl.Field().String()).Valid()
}

// allRolesValidation checks that provided member roles are all in AllRoles.
func allRolesValidation(fl validator.FieldLevel) bool {
	roles, ok := fl.Field().Interface().([]string)
	if !ok {
		return false
	}
	sorted := append([]string{}, AllRoles...)
	sort.Strings(sorted)
	for _, role := range roles {
		idx := sort.SearchStrings(sorted, role)
		if idx >= len(sorted) || sorted[idx] != role {
			return false
		}
	}
	return true
}

func universityValidation(fl validator.FieldLevel) bool {
	return University(fl.Field().String()).Valid()
}

func matricValidation(fl validator.FieldLevel) bool {
	return matricRegex.MatchString(fl.Field().String())
}

// memberStructValidation does struct level validation on NewMember and UpdateMember.
func memberStructValidation(sl validator.StructLevel) {
	switch m := sl.Current().Interface().(type) {
	case NewMember:
		validateEmailDomain(m.Email, sl)
		validatePassword(m.Password, m.Username, m.Email, sl)
	case UpdateMember:
		validateEmailDomain(m.Email, sl)
		if m.Password != "" {
			validatePassword(m.Password, m.Username, m.Email, sl)
		}
	}
}

// validateEmailDomain blocks disposable email providers.
func validateEmailDomain(email string, sl validator.StructLevel) {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return // the email tag reports the format error
	}
	domain := strings.ToLower(email[at+1:])
	for _, d := range disposableDomains {
		if domain == d {
			sl.ReportError(email, "email", "Email", disposableEmailTag, "")
			return
		}
	}
}

// validatePassword applies the password policy to provided password:
// - minLen: 8
// - no whitespace
// - not all numeric
// - complexity: 1 upper, 1 lower, 1 digit, 1 special
// - must not contain the username
// - no user attrs similarity
// - no common password
func validatePassword(pwd, uname, email string, sl validator.StructLevel) {
	reportErr := func(tag string) {
		sl.ReportError(pwd, "password", "Password", tag, "")
	}

	var (
		digitCount         int
		hasUpper, hasLower bool
		hasDig, hasSpecial bool
	)

	pwdLen := len(pwd)
	if pwdLen < pwdMinLen {
		reportErr(pwdMinLenTag)
		return
	}
	for _, char := range pwd {
		if unicode.IsSpace(char) {
			reportErr(pwdNoSpaceTag)
			return
		}
		if unicode.IsDigit(char) {
			digitCount++
		}
		if !hasUpper && unicode.IsUpper(char) {
			hasUpper = true
		}
		if !hasLower && unicode.IsLower(char) {
			hasLower = true
		}
	}

	if digitCount == pwdLen {
		reportErr(pwdNotAllNumTag)
		return
	}

	hasDig = digitCount > 0
	hasSpecial = specialRegex.MatchString(pwd)
	if !(hasUpper && hasLower && hasDig && hasSpecial) {
		reportErr(pwdComplexityTag)
		return
	}

	if uname != "" && strings.Contains(strings.ToLower(pwd), strings.ToLower(uname)) {
		reportErr(pwdNoUsernameTag)
		return
	}

	getRatio := func(pass, attr string) float64 {
		if attr == "" {
			return 0
		}
		return difflib.NewMatcher(strings.Split(pass, ""), strings.Split(attr, "")).QuickRatio()
	}
	if getRatio(pwd, uname) >= pwdMaxSim || getRatio(pwd, email) >= pwdMaxSim {
		reportErr(pwdAttrSimTag)
		return
	}

	lpwd := strings.ToLower(pwd)
	if idx := sort.SearchStrings(commonPasswords, lpwd); idx < len(commonPasswords) {
		if commonPasswords[idx] == lpwd {
			reportErr(pwdNoCommonTag)
			return
		}
	}
}
