package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/NAA-del/naa-portal/core/member"
)

type memberRow struct {
	ID           int            `db:"id"`
	Username     string         `db:"username"`
	Email        string         `db:"email"`
	PhoneNumber  string         `db:"phone_number"`
	Tier         string         `db:"membership_tier"`
	IsVerified   bool           `db:"is_verified"`
	VerifiedAt   sql.NullTime   `db:"verified_at"`
	IsActive     bool           `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	PasswordHash []byte         `db:"password_hash"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	LastLogin    sql.NullTime   `db:"last_login"`
}

func (row memberRow) toMember() member.Member {
	m := member.Member{
		ID:           row.ID,
		Username:     row.Username,
		Email:        row.Email,
		PhoneNumber:  row.PhoneNumber,
		Tier:         member.Tier(row.Tier),
		IsVerified:   row.IsVerified,
		IsActive:     row.IsActive,
		Roles:        row.Roles,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
	if row.VerifiedAt.Valid {
		m.VerifiedAt = row.VerifiedAt.Time
	}
	if row.LastLogin.Valid {
		m.LastLogin = row.LastLogin.Time
	}
	return m
}

type profileRow struct {
	MemberID     int       `db:"member_id"`
	University   string    `db:"university"`
	MatricNumber string    `db:"matric_number"`
	Level        int       `db:"level"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (row profileRow) toProfile() member.StudentProfile {
	return member.StudentProfile{
		MemberID:     row.MemberID,
		University:   member.University(row.University),
		MatricNumber: row.MatricNumber,
		Level:        row.Level,
		UpdatedAt:    row.UpdatedAt,
	}
}

const memberColumns = `id, username, email, phone_number, membership_tier, is_verified, verified_at,
is_active, roles, password_hash, created_at, updated_at, last_login`

type memberRepository struct {
	db *sqlx.DB
}

func NewMemberRepository(db *sqlx.DB) member.Repository {
	return &memberRepository{db: db}
}

func (repo *memberRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedMembers ...member.Member) error {
	exclIDs := make([]int64, 0, len(excludedMembers))
	for _, m := range excludedMembers {
		exclIDs = append(exclIDs, int64(m.ID))
	}

	var rows []memberRow
	query := `SELECT username, email FROM member WHERE (username = $1 OR email = $2) AND NOT (id = ANY($3))`
	if err := repo.db.SelectContext(ctx, &rows, query, username, email, pq.Array(exclIDs)); err != nil {
		return errors.Wrap(err, "checking username uniqueness")
	}
	for _, row := range rows {
		if row.Username == username {
			return member.ErrUsernameExists
		}
		if row.Email == email {
			return member.ErrEmailExists
		}
	}
	return nil
}

func (repo *memberRepository) CheckMatricUniqueness(ctx context.Context, matric string, excludedMemberID int) error {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM student_profile WHERE matric_number = $1 AND member_id <> $2)`
	if err := repo.db.GetContext(ctx, &exists, query, matric, excludedMemberID); err != nil {
		return errors.Wrap(err, "checking matric uniqueness")
	}
	if exists {
		return member.ErrMatricExists
	}
	return nil
}

func (repo *memberRepository) CreateMember(ctx context.Context, m member.Member) (member.Member, error) {
	query := `
INSERT INTO member (username, email, phone_number, membership_tier, is_verified, is_active, roles, password_hash, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		m.Username, m.Email, m.PhoneNumber, m.Tier, m.IsVerified, m.IsActive,
		pq.Array(m.Roles), m.PasswordHash, m.CreatedAt, m.UpdatedAt,
	).Scan(&m.ID)
	if err != nil {
		return member.Member{}, errors.Wrap(err, "creating member")
	}
	return m, nil
}

func (repo *memberRepository) QueryAllMembers(ctx context.Context) ([]member.Member, error) {
	var rows []memberRow
	query := fmt.Sprintf(`SELECT %s FROM member ORDER BY id`, memberColumns)
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying members")
	}
	return toMembers(rows), nil
}

func (repo *memberRepository) GetMemberByID(ctx context.Context, id int) (member.Member, error) {
	return repo.getMember(ctx, `id = $1`, id)
}

func (repo *memberRepository) GetMemberByUsername(ctx context.Context, username string) (member.Member, error) {
	return repo.getMember(ctx, `username = $1`, username)
}

func (repo *memberRepository) GetMemberByEmail(ctx context.Context, email string) (member.Member, error) {
	return repo.getMember(ctx, `email = $1`, email)
}

func (repo *memberRepository) GetMemberByUsernameOrEmail(ctx context.Context, username string) (member.Member, error) {
	return repo.getMember(ctx, `username = $1 OR email = $1`, username)
}

func (repo *memberRepository) getMember(ctx context.Context, where string, args ...interface{}) (member.Member, error) {
	var row memberRow
	query := fmt.Sprintf(`SELECT %s FROM member WHERE %s`, memberColumns, where)
	if err := repo.db.GetContext(ctx, &row, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return member.Member{}, member.ErrNotFound
		}
		return member.Member{}, errors.Wrap(err, "getting member")
	}
	return row.toMember(), nil
}

func (repo *memberRepository) FilterMembers(ctx context.Context, filter member.QueryFilter) ([]member.Member, error) {
	where := make([]string, 0, 7)
	args := make([]interface{}, 0, 7)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		where = append(where, fmt.Sprintf("(username ILIKE %s OR email ILIKE %s)", p, p))
	}
	if filter.Tier != "" {
		where = append(where, "membership_tier = "+arg(filter.Tier))
	}
	if filter.Roles != nil {
		prefixes := make([]string, 0, len(filter.Roles))
		for _, role := range filter.Roles {
			prefixes = append(prefixes, role+"%")
		}
		where = append(where, "EXISTS (SELECT 1 FROM unnest(roles) AS r WHERE r LIKE ANY("+arg(pq.Array(prefixes))+"))")
	}
	if filter.IsVerified != nil {
		where = append(where, "is_verified = "+arg(*filter.IsVerified))
	}
	if filter.IsActive != nil {
		where = append(where, "is_active = "+arg(*filter.IsActive))
	}
	if !filter.CreatedFrom.IsZero() {
		where = append(where, "created_at >= "+arg(filter.CreatedFrom))
	}
	if !filter.CreatedTo.IsZero() {
		where = append(where, "created_at <= "+arg(filter.CreatedTo))
	}

	query := fmt.Sprintf(`SELECT %s FROM member`, memberColumns)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	var rows []memberRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering members")
	}
	return toMembers(rows), nil
}

func (repo *memberRepository) UpdateMember(ctx context.Context, m member.Member, isActive *bool) (member.Member, error) {
	set := make([]string, 0, 8)
	args := make([]interface{}, 0, 8)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if m.Username != "" {
		set = append(set, "username = "+arg(m.Username))
	}
	if m.Email != "" {
		set = append(set, "email = "+arg(m.Email))
	}
	if m.PhoneNumber != "" {
		set = append(set, "phone_number = "+arg(m.PhoneNumber))
	}
	if m.Tier != "" {
		set = append(set, "membership_tier = "+arg(string(m.Tier)))
	}
	if m.Roles != nil {
		set = append(set, "roles = "+arg(pq.Array(m.Roles)))
	}
	if m.PasswordHash != nil {
		set = append(set, "password_hash = "+arg(m.PasswordHash))
	}
	if isActive != nil {
		set = append(set, "is_active = "+arg(*isActive))
	}
	set = append(set, "updated_at = "+arg(m.UpdatedAt))

	var row memberRow
	query := fmt.Sprintf(`UPDATE member SET %s WHERE id = %s RETURNING %s`,
		strings.Join(set, ", "), arg(m.ID), memberColumns)
	if err := repo.db.GetContext(ctx, &row, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return member.Member{}, member.ErrNotFound
		}
		return member.Member{}, errors.Wrap(err, "updating member")
	}
	return row.toMember(), nil
}

func (repo *memberRepository) VerifyMember(ctx context.Context, id int, at time.Time) (member.Member, error) {
	// single conditional UPDATE: concurrent callers serialize on the row and
	// only one of them observes the false -> true transition
	var row memberRow
	query := fmt.Sprintf(`
UPDATE member
SET is_verified = TRUE, verified_at = COALESCE(verified_at, $2), updated_at = $2
WHERE id = $1 AND NOT is_verified
RETURNING %s`, memberColumns)
	err := repo.db.GetContext(ctx, &row, query, id, at)
	if err == nil {
		return row.toMember(), nil
	}
	if err != sql.ErrNoRows {
		return member.Member{}, errors.Wrap(err, "verifying member")
	}

	// no transition: distinguish already-verified from missing
	var exists bool
	if err := repo.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM member WHERE id = $1)`, id); err != nil {
		return member.Member{}, errors.Wrap(err, "verifying member")
	}
	if exists {
		return member.Member{}, member.ErrAlreadyVerified
	}
	return member.Member{}, member.ErrNotFound
}

func (repo *memberRepository) UnverifyMember(ctx context.Context, id int) (member.Member, error) {
	// verified_at is kept; it records the first transition only
	var row memberRow
	query := fmt.Sprintf(`
UPDATE member SET is_verified = FALSE, updated_at = $2 WHERE id = $1 RETURNING %s`, memberColumns)
	if err := repo.db.GetContext(ctx, &row, query, id, time.Now().UTC()); err != nil {
		if err == sql.ErrNoRows {
			return member.Member{}, member.ErrNotFound
		}
		return member.Member{}, errors.Wrap(err, "unverifying member")
	}
	return row.toMember(), nil
}

func (repo *memberRepository) SetLastLogin(ctx context.Context, id int, at time.Time) (member.Member, error) {
	var row memberRow
	query := fmt.Sprintf(`UPDATE member SET last_login = $2 WHERE id = $1 RETURNING %s`, memberColumns)
	if err := repo.db.GetContext(ctx, &row, query, id, at); err != nil {
		if err == sql.ErrNoRows {
			return member.Member{}, member.ErrNotFound
		}
		return member.Member{}, errors.Wrap(err, "setting last login")
	}
	return row.toMember(), nil
}

func (repo *memberRepository) GetStudentProfile(ctx context.Context, memberID int) (member.StudentProfile, error) {
	var row profileRow
	query := `SELECT member_id, university, matric_number, level, updated_at FROM student_profile WHERE member_id = $1`
	if err := repo.db.GetContext(ctx, &row, query, memberID); err != nil {
		if err == sql.ErrNoRows {
			return member.StudentProfile{}, member.ErrProfileNotFound
		}
		return member.StudentProfile{}, errors.Wrap(err, "getting student profile")
	}
	return row.toProfile(), nil
}

func (repo *memberRepository) UpsertStudentProfile(ctx context.Context, p member.StudentProfile) (member.StudentProfile, error) {
	query := `
INSERT INTO student_profile (member_id, university, matric_number, level, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (member_id) DO UPDATE
SET university = EXCLUDED.university, matric_number = EXCLUDED.matric_number,
    level = EXCLUDED.level, updated_at = EXCLUDED.updated_at`
	_, err := repo.db.ExecContext(ctx, query, p.MemberID, p.University, p.MatricNumber, p.Level, p.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "foreign_key_violation" {
			return member.StudentProfile{}, member.ErrNotFound
		}
		return member.StudentProfile{}, errors.Wrap(err, "upserting student profile")
	}
	return p, nil
}

func toMembers(rows []memberRow) []member.Member {
	members := make([]member.Member, 0, len(rows))
	for _, row := range rows {
		members = append(members, row.toMember())
	}
	return members
}
