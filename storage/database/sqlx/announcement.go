package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/NAA-del/naa-portal/core/announcement"
)

type announcementRepository struct {
	db *sqlx.DB
}

func NewAnnouncementRepository(db *sqlx.DB) announcement.Repository {
	return &announcementRepository{db: db}
}

func (repo *announcementRepository) CreateAnnouncement(ctx context.Context, a *announcement.Announcement) error {
	query := `INSERT INTO announcement (title, content, date_posted) VALUES ($1, $2, $3) RETURNING id`
	err := repo.db.QueryRowContext(ctx, query, a.Title, a.Content, a.PostedAt).Scan(&a.ID)
	return errors.Wrap(err, "creating announcement")
}

func (repo *announcementRepository) QueryAllAnnouncements(ctx context.Context) ([]announcement.Announcement, error) {
	var announcements []announcement.Announcement
	query := `SELECT id, title, content, date_posted FROM announcement ORDER BY date_posted DESC`
	rows, err := repo.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "querying announcements")
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var a announcement.Announcement
		if err = rows.Scan(&a.ID, &a.Title, &a.Content, &a.PostedAt); err != nil {
			return nil, errors.Wrap(err, "scanning announcement")
		}
		announcements = append(announcements, a)
	}
	return announcements, errors.Wrap(rows.Err(), "querying announcements")
}

func (repo *announcementRepository) CreateStudentAnnouncement(ctx context.Context, a *announcement.StudentAnnouncement) error {
	query := `
INSERT INTO student_announcement (title, content, target_university, date_posted)
VALUES ($1, $2, $3, $4)
RETURNING id`
	err := repo.db.QueryRowContext(ctx, query, a.Title, a.Content, a.TargetUniversity, a.PostedAt).Scan(&a.ID)
	return errors.Wrap(err, "creating student announcement")
}

func (repo *announcementRepository) QueryStudentAnnouncements(ctx context.Context, university string) ([]announcement.StudentAnnouncement, error) {
	var announcements []announcement.StudentAnnouncement
	query := `
SELECT id, title, content, target_university, date_posted
FROM student_announcement
WHERE target_university = $1 OR target_university = $2
ORDER BY date_posted DESC`
	rows, err := repo.db.QueryxContext(ctx, query, announcement.TargetAll, university)
	if err != nil {
		return nil, errors.Wrap(err, "querying student announcements")
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var a announcement.StudentAnnouncement
		if err = rows.Scan(&a.ID, &a.Title, &a.Content, &a.TargetUniversity, &a.PostedAt); err != nil {
			return nil, errors.Wrap(err, "scanning student announcement")
		}
		announcements = append(announcements, a)
	}
	return announcements, errors.Wrap(rows.Err(), "querying student announcements")
}
