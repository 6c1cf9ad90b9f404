package inmemdb

import (
	"context"
	"sort"

	"github.com/NAA-del/naa-portal/core/committee"
)

type committeeRepository struct {
	db *committeeTable
}

func NewCommitteeRepository(db *DB) committee.Repository {
	return &committeeRepository{db: db.committee}
}

func (repo *committeeRepository) query() []committee.Committee {
	committees := make([]committee.Committee, 0, len(repo.db.table))
	for _, c := range repo.db.table {
		committees = append(committees, *c)
	}
	sort.Slice(committees, func(i, j int) bool { return committees[i].ID < committees[j].ID })
	return committees
}

func (repo *committeeRepository) CreateCommittee(ctx context.Context, c committee.Committee) (committee.Committee, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.table {
		if existing.Name == c.Name {
			return committee.Committee{}, committee.ErrNameExists
		}
	}
	repo.db.pkCount++
	c.ID = repo.db.pkCount
	repo.db.table[c.ID] = &c
	return c, nil
}

func (repo *committeeRepository) QueryAllCommittees(ctx context.Context) ([]committee.Committee, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *committeeRepository) GetCommitteeByID(ctx context.Context, id int) (committee.Committee, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if c, ok := repo.db.table[id]; ok {
		return *c, nil
	}
	return committee.Committee{}, committee.ErrNotFound
}

func (repo *committeeRepository) UpdateCommittee(ctx context.Context, c committee.Committee) (committee.Committee, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.table[c.ID]
	if !ok {
		return committee.Committee{}, committee.ErrNotFound
	}
	if c.Name != "" {
		orig.Name = c.Name
	}
	if c.Description != "" {
		orig.Description = c.Description
	}
	if c.DirectorID != nil {
		orig.DirectorID = c.DirectorID
	}
	orig.UpdatedAt = c.UpdatedAt

	repo.db.table[c.ID] = orig
	return *orig, nil
}

func (repo *committeeRepository) SetCommitteeMembers(ctx context.Context, id int, memberIDs []int) (committee.Committee, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	c, ok := repo.db.table[id]
	if !ok {
		return committee.Committee{}, committee.ErrNotFound
	}
	c.MemberIDs = memberIDs
	return *c, nil
}

func (repo *committeeRepository) CreateReport(ctx context.Context, r committee.Report) (committee.Report, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[r.CommitteeID]; !ok {
		return committee.Report{}, committee.ErrNotFound
	}
	repo.db.reportPK++
	r.ID = repo.db.reportPK
	repo.db.reports[r.ID] = &r
	return r, nil
}

func (repo *committeeRepository) QueryReportsByCommittee(ctx context.Context, committeeID int) ([]committee.Report, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var reports []committee.Report
	for _, r := range repo.db.reports {
		if r.CommitteeID == committeeID {
			reports = append(reports, *r)
		}
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].UploadedAt.After(reports[j].UploadedAt) })
	return reports, nil
}

func (repo *committeeRepository) CreateAnnouncement(ctx context.Context, a committee.Announcement) (committee.Announcement, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[a.CommitteeID]; !ok {
		return committee.Announcement{}, committee.ErrNotFound
	}
	repo.db.annPK++
	a.ID = repo.db.annPK
	repo.db.announcements[a.ID] = &a
	return a, nil
}

func (repo *committeeRepository) QueryAnnouncementsByCommittee(ctx context.Context, committeeID int) ([]committee.Announcement, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var announcements []committee.Announcement
	for _, a := range repo.db.announcements {
		if a.CommitteeID == committeeID {
			announcements = append(announcements, *a)
		}
	}
	sort.Slice(announcements, func(i, j int) bool { return announcements[i].PostedAt.After(announcements[j].PostedAt) })
	return announcements, nil
}
