package member

import (
	"regexp"
	"strings"
	"time"

	"github.com/NAA-del/naa-portal/core"
)

// University is a recognized audiology training institution.
type University string

const (
	UniversityUNIMED University = "UNIMED" // University of Medical Sciences, Ondo
	UniversityFUHSI  University = "FUHSI"  // Federal University of Health Sciences, Ila-Orangun
	UniversityFUHSA  University = "FUHSA"  // Federal University of Health Sciences, Azare
)

var (
	AllUniversities = []University{UniversityUNIMED, UniversityFUHSI, UniversityFUHSA}

	matricRegex = regexp.MustCompile(`^[A-Z0-9/]{5,30}$`)
)

func (u University) Valid() bool {
	for _, known := range AllUniversities {
		if u == known {
			return true
		}
	}
	return false
}

// StudentProfile holds the academic details required of student-tier members
// before they can access the student hub or their digital ID.
type StudentProfile struct {
	MemberID     int        `json:"member_id"`
	University   University `json:"university"`
	MatricNumber string     `json:"matric_number"`
	Level        int        `json:"level"` // 100..500
	UpdatedAt    time.Time  `json:"updated_at"` // UTC
}

// UpsertStudentProfile creates or replaces a member's student profile.
type UpsertStudentProfile struct {
	University   string `json:"university" validate:"required,university"`
	MatricNumber string `json:"matric_number" validate:"required,matric"`
	Level        int    `json:"level" validate:"required,oneof=100 200 300 400 500"`
}

func (up *UpsertStudentProfile) Validate(memberID int, svc *Service) error {
	up.University = strings.ToUpper(core.CleanString(up.University))
	// matric numbers are stored uppercased with spaces removed
	up.MatricNumber = core.CompactString(up.MatricNumber)

	if err := core.Validate.Struct(up); err != nil {
		return err
	}
	return svc.CheckMatricUniqueness(up.MatricNumber, memberID)
}
