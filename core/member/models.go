package member

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/NAA-del/naa-portal/core"
)

// Roles
const (
	// Executive Council
	RoleExco          = "exco:"
	RoleExcoPresident = "exco:president"
	RoleExcoGenSec    = "exco:gensec"

	// Board of Trustees
	RoleTrustee = "trustee:"

	// Committee work
	RoleCommittee = "committee:"
)

var (
	ExcoRoles      = []string{RoleExco, RoleExcoPresident, RoleExcoGenSec}
	TrusteeRoles   = []string{RoleTrustee}
	CommitteeRoles = []string{RoleCommittee}

	// LeadershipRoles grant override access across all committees and
	// verification authority.
	LeadershipRoles = append(append([]string{}, ExcoRoles...), TrusteeRoles...)
	AllRoles        = getAllRoles()

	rolePriorities = map[string]int{
		// Trustees: 30 - 21
		RoleTrustee: 30,

		// EXCO: 20 - 11
		RoleExcoPresident: 20,
		RoleExcoGenSec:    19,
		RoleExco:          11,

		// Committees: 10 - 1
		RoleCommittee: 1,
	}

	Roles = []Role{
		{Name: "Committee Member", Value: RoleCommittee},
		{Name: "EXCO", Value: RoleExco},
		{Name: "EXCO General Secretary", Value: RoleExcoGenSec},
		{Name: "EXCO President", Value: RoleExcoPresident},
		{Name: "Trustee", Value: RoleTrustee},
	}
)

func getAllRoles() []string {
	all := make([]string, 0, 5)
	all = append(all, ExcoRoles...)
	all = append(all, TrusteeRoles...)
	all = append(all, CommitteeRoles...)
	return all
}

func RolePriority(role string) int {
	return rolePriorities[role]
}

func MaxRolePriority(roles []string) int {
	var max int
	for _, role := range roles {
		if RolePriority(role) > max {
			max = RolePriority(role)
		}
	}
	return max
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Member is a registered user of the portal. Members are created unverified
// at registration; VerifiedAt is stamped exactly once, on the first
// false->true verification transition.
type Member struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PhoneNumber  string    `json:"phone_number"`
	Tier         Tier      `json:"membership_tier"`
	IsVerified   bool      `json:"is_verified"`
	VerifiedAt   time.Time `json:"verified_at"`
	IsActive     bool      `json:"is_active"`
	Roles        []string  `json:"roles"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (m *Member) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	m.PasswordHash = hash
	return nil
}

func (m *Member) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(m.PasswordHash, []byte(pwd))
}

func (m *Member) RoleStartsWith(prefix string) bool {
	for _, role := range m.Roles {
		if strings.HasPrefix(role, prefix) {
			return true
		}
	}
	return false
}

// IsLeadership reports whether the member holds any role in the leadership
// set (EXCO or Trustee).
func (m *Member) IsLeadership() bool {
	return m.RoleStartsWith(RoleExco) || m.RoleStartsWith(RoleTrustee)
}

func (m *Member) IsTrustee() bool {
	return m.RoleStartsWith(RoleTrustee)
}

func (m *Member) IsStudentTier() bool {
	return m.Tier == TierStudent
}

// NewMember contains information needed to register a new Member.
type NewMember struct {
	Username        string `json:"username" validate:"required,min=3,max=30,alphanum_"`
	Email           string `json:"email" validate:"required,email"`
	PhoneNumber     string `json:"phone_number" validate:"omitempty,naija_phone"`
	Tier            string `json:"membership_tier" validate:"omitempty,tier"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (nm *NewMember) Validate(svc *Service) error {
	nm.Username = core.CleanString(nm.Username, true /* lower */)
	nm.Email = core.CleanString(nm.Email, true /* lower */)
	nm.PhoneNumber = core.CleanPhoneNumber(nm.PhoneNumber)
	if nm.Tier == "" {
		nm.Tier = string(TierStudent)
	}

	if err := core.Validate.Struct(nm); err != nil {
		return err
	}
	return svc.CheckUniqueness(nm.Username, nm.Email)
}

// UpdateMember defines what information may be provided to modify an existing Member.
// Tier, IsActive and Roles can only be set by leadership; that restriction is
// enforced by callers holding the actor.
type UpdateMember struct {
	Username        string   `json:"username" validate:"omitempty,min=3,max=30,alphanum_"`
	Email           string   `json:"email" validate:"omitempty,email"`
	PhoneNumber     string   `json:"phone_number" validate:"omitempty,naija_phone"`
	Tier            string   `json:"membership_tier" validate:"omitempty,tier"`
	IsActive        *bool    `json:"is_active"`
	Roles           []string `json:"roles" validate:"omitempty,allroles"`
	Password        string   `json:"password" validate:"omitempty"`
	PasswordConfirm string   `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (um *UpdateMember) Validate(orig Member, svc *Service) error {
	if uname := core.CleanString(um.Username, true /* lower */); uname != "" {
		um.Username = uname
	} else {
		um.Username = orig.Username
	}

	if email := core.CleanString(um.Email, true /* lower */); email != "" {
		um.Email = email
	} else {
		um.Email = orig.Email
	}

	if phone := core.CleanPhoneNumber(um.PhoneNumber); phone != "" {
		um.PhoneNumber = phone
	} else {
		um.PhoneNumber = orig.PhoneNumber
	}

	if um.Tier == "" {
		um.Tier = string(orig.Tier)
	}

	if err := core.Validate.Struct(um); err != nil {
		return err
	}
	return svc.CheckUniqueness(um.Username, um.Email, orig)
}

type ResetMemberPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp ResetMemberPassword) Validate() error { return core.Validate.Struct(rp) }

type QueryFilter struct {
	Search      string    `query:"search"`
	Tier        string    `query:"membership_tier"`
	Roles       []string  `query:"role"`
	IsVerified  *bool     `query:"is_verified"`
	IsActive    *bool     `query:"is_active"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Tier == "" && qf.Roles == nil && qf.IsVerified == nil &&
		qf.IsActive == nil && qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Tier = core.CleanString(qf.Tier, true /* lower */)
}
