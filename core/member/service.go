package member

import (
	"context"
	"encoding/csv"
	"io"
	"net/mail"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/NAA-del/naa-portal/core"
	"github.com/NAA-del/naa-portal/core/notification"
)

var (
	// errors
	ErrNotFound         = errors.New("member not found")
	ErrEmailExists      = errors.New("a member with this email already exists")
	ErrUsernameExists   = errors.New("a member with this username already exists")
	ErrMatricExists     = errors.New("this matriculation number is already registered")
	ErrProfileNotFound  = errors.New("student profile not found")
	ErrAlreadyVerified  = errors.New("member is already verified")
	ErrVerifyNotAllowed = errors.New("verification requires a leadership role")
)

const (
	verifiedNotificationTitle = "Congratulations! Your NAA Membership is Verified"
	verifiedNotificationBody  = "Hi {{username}}, the Nigerian Academy of Audiology has verified " +
		"your membership. You now have full access to your digital membership ID, the resource " +
		"library and the CPD portfolio tracker. Welcome to the Academy!"
)

type (
	Repository interface {
		CheckUsernameUniqueness(ctx context.Context, username, email string, excludedMembers ...Member) error
		CheckMatricUniqueness(ctx context.Context, matric string, excludedMemberID int) error
		CreateMember(ctx context.Context, m Member) (Member, error)
		QueryAllMembers(ctx context.Context) ([]Member, error)
		GetMemberByID(ctx context.Context, id int) (Member, error)
		GetMemberByUsername(ctx context.Context, username string) (Member, error)
		GetMemberByEmail(ctx context.Context, email string) (Member, error)
		GetMemberByUsernameOrEmail(ctx context.Context, username string) (Member, error)
		// FilterMembers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on Member.Username or Member.Email.
		FilterMembers(ctx context.Context, filter QueryFilter) ([]Member, error)
		UpdateMember(ctx context.Context, m Member, isActive *bool) (Member, error)
		// VerifyMember atomically transitions is_verified from false to true,
		// stamping verified_at on the first transition only. Returns
		// ErrAlreadyVerified when the flag is already set and ErrNotFound when
		// the member does not exist; concurrent calls serialize on the row so
		// exactly one caller observes the transition.
		VerifyMember(ctx context.Context, id int, at time.Time) (Member, error)
		// UnverifyMember clears the flag; verified_at is kept so a later
		// re-verification does not re-stamp it.
		UnverifyMember(ctx context.Context, id int) (Member, error)
		SetLastLogin(ctx context.Context, id int, at time.Time) (Member, error)
		GetStudentProfile(ctx context.Context, memberID int) (StudentProfile, error)
		UpsertStudentProfile(ctx context.Context, p StudentProfile) (StudentProfile, error)
	}

	// Dispatcher delivers member-facing notifications. Implementations must
	// contain delivery failures, hence no error return.
	Dispatcher interface {
		Dispatch(ctx context.Context, rcpt notification.Recipient, title, bodyTmpl string, data map[string]string) notification.DispatchResult
	}

	Service struct {
		repo     Repository
		mailSvc  core.EmailService
		dispatch Dispatcher
		log      core.Logger
	}
)

func NewService(repo Repository, mailSvc core.EmailService, dispatch Dispatcher, log core.Logger) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, dispatch: dispatch, log: log}
}

func (svc *Service) CheckUniqueness(uname, email string, exclMembers ...Member) error {
	if err := svc.repo.CheckUsernameUniqueness(context.Background(), uname, email, exclMembers...); err != nil {
		var field string
		switch err {
		case ErrUsernameExists:
			field = "username"
		case ErrEmailExists:
			field = "email"
		default:
			return err
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

func (svc *Service) CheckMatricUniqueness(matric string, memberID int) error {
	if err := svc.repo.CheckMatricUniqueness(context.Background(), matric, memberID); err != nil {
		if err == ErrMatricExists {
			return core.NewValidationError(err, core.FieldError{Field: "matric_number", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Register creates a new unverified Member and sends the welcome email.
func (svc *Service) Register(ctx context.Context, nm NewMember) (Member, error) {
	now := time.Now().UTC()
	m := Member{
		Username:    nm.Username,
		Email:       nm.Email,
		PhoneNumber: nm.PhoneNumber,
		Tier:        Tier(nm.Tier),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := m.SetPassword(nm.Password); err != nil {
		return Member{}, err
	}
	m, err := svc.repo.CreateMember(ctx, m)
	if err != nil {
		return Member{}, err
	}
	svc.sendWelcomeMail(m)
	return m, nil
}

func (svc *Service) QueryAll(ctx context.Context) ([]Member, error) {
	return svc.repo.QueryAllMembers(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Member, error) {
	return svc.repo.GetMemberByID(ctx, id)
}

func (svc *Service) GetByUsername(ctx context.Context, uname string) (Member, error) {
	return svc.repo.GetMemberByUsername(ctx, core.CleanString(uname, true /* lower */))
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Member, error) {
	return svc.repo.GetMemberByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) GetByUsernameOrEmail(ctx context.Context, uname string) (Member, error) {
	return svc.repo.GetMemberByUsernameOrEmail(ctx, core.CleanString(uname, true /* lower */))
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]Member, error) {
	filter.Clean()
	if filter.IsEmpty() {
		return svc.repo.QueryAllMembers(ctx)
	}
	return svc.repo.FilterMembers(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, id int, um UpdateMember) (Member, error) {
	m := Member{
		ID:          id,
		Username:    um.Username,
		Email:       um.Email,
		PhoneNumber: um.PhoneNumber,
		Tier:        Tier(um.Tier),
		Roles:       um.Roles,
		UpdatedAt:   time.Now().UTC(),
	}
	if um.Password != "" {
		if err := m.SetPassword(um.Password); err != nil {
			return Member{}, err
		}
	}
	return svc.repo.UpdateMember(ctx, m, um.IsActive)
}

func (svc *Service) SetLastLogin(ctx context.Context, m Member) (Member, error) {
	return svc.repo.SetLastLogin(ctx, m.ID, time.Now().UTC())
}

// Verify transitions target from unverified to verified on behalf of actor.
//
// The actor must hold a leadership role (ErrVerifyNotAllowed otherwise). The
// repository serializes the flag transition, so of any number of concurrent
// calls exactly one returns the updated Member; the rest get
// ErrAlreadyVerified and the timestamp is never re-stamped. The verification
// notification is dispatched only after the mutation is durable, and a
// dispatch failure never rolls the transition back.
func (svc *Service) Verify(ctx context.Context, actor Member, targetID int) (Member, error) {
	if !actor.IsLeadership() {
		return Member{}, ErrVerifyNotAllowed
	}

	m, err := svc.repo.VerifyMember(ctx, targetID, time.Now().UTC())
	if err != nil {
		return Member{}, err
	}

	res := svc.dispatch.Dispatch(ctx,
		notification.Recipient{ID: m.ID, Username: m.Username, Email: m.Email},
		verifiedNotificationTitle, verifiedNotificationBody, nil,
	)
	if res.Failed() {
		svc.log.Warn("member verified but notification dispatch failed",
			map[string]interface{}{"member_id": m.ID})
	}
	return m, nil
}

// Unverify revokes a member's verified status. The verification timestamp is
// left in place: it records the first transition only.
func (svc *Service) Unverify(ctx context.Context, actor Member, targetID int) (Member, error) {
	if !actor.IsLeadership() {
		return Member{}, ErrVerifyNotAllowed
	}
	return svc.repo.UnverifyMember(ctx, targetID)
}

// RequestPasswordReset emails a one-time reset link to the member.
func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	m, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	token, err := MakeToken(m)
	if err != nil {
		return err
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: m.Username, Address: m.Email}},
		Subject:      "Password Reset",
		TemplateName: "password-reset",
		TemplateData: struct {
			Username, UID, Token string
		}{m.Username, EncodeUID(m), token},
	})
	return nil
}

// ResetPassword sets a new password from a valid reset token.
func (svc *Service) ResetPassword(ctx context.Context, rp ResetMemberPassword) error {
	id, err := decodeUID(rp.UID)
	if err != nil {
		return core.NewValidationError(err)
	}
	m, err := svc.repo.GetMemberByID(ctx, id)
	if err != nil {
		return err
	}
	if err = verifyToken(m, rp.Token); err != nil {
		return core.NewValidationError(err)
	}
	if err = m.SetPassword(rp.Password); err != nil {
		return err
	}
	m.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateMember(ctx, m, nil)
	return err
}

// ExportRoster writes all members as CSV: username, email, tier, verified, phone.
func (svc *Service) ExportRoster(ctx context.Context, w io.Writer) error {
	members, err := svc.repo.QueryAllMembers(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"username", "email", "membership_tier", "is_verified", "verified_at", "phone_number"}); err != nil {
		return errors.Wrap(err, "writing roster header")
	}
	for _, m := range members {
		verifiedAt := ""
		if !m.VerifiedAt.IsZero() {
			verifiedAt = m.VerifiedAt.Format(time.RFC3339)
		}
		row := []string{m.Username, m.Email, string(m.Tier), strconv.FormatBool(m.IsVerified), verifiedAt, m.PhoneNumber}
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, "writing roster row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing roster")
}

func (svc *Service) GetStudentProfile(ctx context.Context, memberID int) (StudentProfile, error) {
	return svc.repo.GetStudentProfile(ctx, memberID)
}

// SaveStudentProfile creates or updates the student profile for a member.
func (svc *Service) SaveStudentProfile(ctx context.Context, memberID int, up UpsertStudentProfile) (StudentProfile, error) {
	p := StudentProfile{
		MemberID:     memberID,
		University:   University(up.University),
		MatricNumber: up.MatricNumber,
		Level:        up.Level,
		UpdatedAt:    time.Now().UTC(),
	}
	return svc.repo.UpsertStudentProfile(ctx, p)
}

func (svc *Service) sendWelcomeMail(m Member) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: m.Username, Address: m.Email}},
		Subject:      "Welcome to the Academy",
		TemplateName: "welcome",
		TemplateData: struct {
			Username, Tier string
		}{m.Username, string(m.Tier)},
	})
}
