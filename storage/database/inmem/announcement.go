package inmemdb

import (
	"context"
	"sort"

	"github.com/NAA-del/naa-portal/core/announcement"
)

type announcementRepository struct {
	db *announcementTable
}

func NewAnnouncementRepository(db *DB) announcement.Repository {
	return &announcementRepository{db: db.announcement}
}

func (repo *announcementRepository) CreateAnnouncement(ctx context.Context, a *announcement.Announcement) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.pkCount++
	a.ID = repo.db.pkCount
	cp := *a
	repo.db.table[a.ID] = &cp
	return nil
}

func (repo *announcementRepository) QueryAllAnnouncements(ctx context.Context) ([]announcement.Announcement, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	announcements := make([]announcement.Announcement, 0, len(repo.db.table))
	for _, a := range repo.db.table {
		announcements = append(announcements, *a)
	}
	sort.Slice(announcements, func(i, j int) bool { return announcements[i].PostedAt.After(announcements[j].PostedAt) })
	return announcements, nil
}

func (repo *announcementRepository) CreateStudentAnnouncement(ctx context.Context, a *announcement.StudentAnnouncement) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.studentPK++
	a.ID = repo.db.studentPK
	cp := *a
	repo.db.student[a.ID] = &cp
	return nil
}

func (repo *announcementRepository) QueryStudentAnnouncements(ctx context.Context, university string) ([]announcement.StudentAnnouncement, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var announcements []announcement.StudentAnnouncement
	for _, a := range repo.db.student {
		if a.TargetUniversity == announcement.TargetAll || a.TargetUniversity == university {
			announcements = append(announcements, *a)
		}
	}
	sort.Slice(announcements, func(i, j int) bool { return announcements[i].PostedAt.After(announcements[j].PostedAt) })
	return announcements, nil
}
