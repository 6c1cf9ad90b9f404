package inmemdb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/NAA-del/naa-portal/core/member"
)

type memberRepository struct {
	db *memberTable
}

func NewMemberRepository(db *DB) member.Repository {
	return &memberRepository{db: db.member}
}

func (repo *memberRepository) query() []member.Member {
	members := make([]member.Member, 0, len(repo.db.table))
	for _, m := range repo.db.table {
		members = append(members, *m)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
	return members
}

func (repo *memberRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedMembers ...member.Member) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	exclLen := len(excludedMembers)
	if exclLen > 1 {
		sort.Slice(excludedMembers, func(i, j int) bool { return excludedMembers[i].ID < excludedMembers[j].ID })
	}

	for _, m := range repo.query() {
		if m.Username == username && !isExcluded(m, excludedMembers, exclLen) {
			return member.ErrUsernameExists
		}
		if m.Email == email && !isExcluded(m, excludedMembers, exclLen) {
			return member.ErrEmailExists
		}
	}
	return nil
}

func (repo *memberRepository) CheckMatricUniqueness(ctx context.Context, matric string, excludedMemberID int) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, p := range repo.db.profiles {
		if p.MatricNumber == matric && p.MemberID != excludedMemberID {
			return member.ErrMatricExists
		}
	}
	return nil
}

func (repo *memberRepository) CreateMember(ctx context.Context, m member.Member) (member.Member, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.pkCount++
	m.ID = repo.db.pkCount
	repo.db.table[m.ID] = &m
	return m, nil
}

func (repo *memberRepository) QueryAllMembers(ctx context.Context) ([]member.Member, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *memberRepository) GetMemberByID(ctx context.Context, id int) (member.Member, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if m, ok := repo.db.table[id]; ok {
		return *m, nil
	}
	return member.Member{}, member.ErrNotFound
}

func (repo *memberRepository) GetMemberByUsername(ctx context.Context, username string) (member.Member, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, m := range repo.query() {
		if m.Username == username {
			return m, nil
		}
	}
	return member.Member{}, member.ErrNotFound
}

func (repo *memberRepository) GetMemberByEmail(ctx context.Context, email string) (member.Member, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, m := range repo.query() {
		if m.Email == email {
			return m, nil
		}
	}
	return member.Member{}, member.ErrNotFound
}

func (repo *memberRepository) GetMemberByUsernameOrEmail(ctx context.Context, username string) (member.Member, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, m := range repo.query() {
		if (m.Username == username) || (m.Email == username) {
			return m, nil
		}
	}
	return member.Member{}, member.ErrNotFound
}

func (repo *memberRepository) FilterMembers(ctx context.Context, filter member.QueryFilter) ([]member.Member, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var members []member.Member
	for _, m := range repo.query() {
		if matchesFilter(m, filter) {
			members = append(members, m)
		}
	}
	return members, nil
}

func matchesFilter(m member.Member, filter member.QueryFilter) bool {
	if filter.Search != "" {
		search := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(m.Username), search) &&
			!strings.Contains(strings.ToLower(m.Email), search) {
			return false
		}
	}
	if filter.Tier != "" && string(m.Tier) != filter.Tier {
		return false
	}
	if filter.Roles != nil {
		var found bool
		for _, role := range filter.Roles {
			if m.RoleStartsWith(role) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.IsVerified != nil && m.IsVerified != *filter.IsVerified {
		return false
	}
	if filter.IsActive != nil && m.IsActive != *filter.IsActive {
		return false
	}
	if !filter.CreatedFrom.IsZero() && m.CreatedAt.Before(filter.CreatedFrom) {
		return false
	}
	if !filter.CreatedTo.IsZero() && m.CreatedAt.After(filter.CreatedTo) {
		return false
	}
	return true
}

func (repo *memberRepository) UpdateMember(ctx context.Context, m member.Member, isActive *bool) (member.Member, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	// only save set fields
	orig, ok := repo.db.table[m.ID]
	if !ok {
		return member.Member{}, member.ErrNotFound
	}
	if m.Roles != nil {
		orig.Roles = m.Roles
	}
	if m.PasswordHash != nil {
		orig.PasswordHash = m.PasswordHash
	}
	if isActive != nil {
		orig.IsActive = *isActive
	}
	if m.Username != "" {
		orig.Username = m.Username
	}
	if m.Email != "" {
		orig.Email = m.Email
	}
	if m.PhoneNumber != "" {
		orig.PhoneNumber = m.PhoneNumber
	}
	if m.Tier != "" {
		orig.Tier = m.Tier
	}
	orig.UpdatedAt = m.UpdatedAt

	repo.db.table[m.ID] = orig
	return *orig, nil
}

func (repo *memberRepository) VerifyMember(ctx context.Context, id int, at time.Time) (member.Member, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	m, ok := repo.db.table[id]
	if !ok {
		return member.Member{}, member.ErrNotFound
	}
	if m.IsVerified {
		return member.Member{}, member.ErrAlreadyVerified
	}
	m.IsVerified = true
	if m.VerifiedAt.IsZero() {
		m.VerifiedAt = at
	}
	m.UpdatedAt = at
	return *m, nil
}

func (repo *memberRepository) UnverifyMember(ctx context.Context, id int) (member.Member, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	m, ok := repo.db.table[id]
	if !ok {
		return member.Member{}, member.ErrNotFound
	}
	// verified_at is kept; it records the first transition only
	m.IsVerified = false
	m.UpdatedAt = time.Now().UTC()
	return *m, nil
}

func (repo *memberRepository) SetLastLogin(ctx context.Context, id int, at time.Time) (member.Member, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	m, ok := repo.db.table[id]
	if !ok {
		return member.Member{}, member.ErrNotFound
	}
	m.LastLogin = at
	return *m, nil
}

func (repo *memberRepository) GetStudentProfile(ctx context.Context, memberID int) (member.StudentProfile, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if p, ok := repo.db.profiles[memberID]; ok {
		return *p, nil
	}
	return member.StudentProfile{}, member.ErrProfileNotFound
}

func (repo *memberRepository) UpsertStudentProfile(ctx context.Context, p member.StudentProfile) (member.StudentProfile, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[p.MemberID]; !ok {
		return member.StudentProfile{}, member.ErrNotFound
	}
	repo.db.profiles[p.MemberID] = &p
	return p, nil
}

func isExcluded(m member.Member, excludedMembers []member.Member, n int) bool {
	if n <= 0 {
		return false
	}
	idx := sort.Search(n, func(i int) bool { return excludedMembers[i].ID >= m.ID })
	return idx < n && excludedMembers[idx].ID == m.ID
}
