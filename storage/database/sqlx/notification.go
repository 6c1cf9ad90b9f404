package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/NAA-del/naa-portal/core/notification"
)

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) notification.Repository {
	return &notificationRepository{db: db}
}

func (repo *notificationRepository) CreateEvent(ctx context.Context, evt notification.Event) (notification.Event, error) {
	query := `
INSERT INTO notification_event (id, member_id, title, body, read, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := repo.db.ExecContext(ctx, query, evt.ID, evt.MemberID, evt.Title, evt.Body, evt.Read, evt.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "foreign_key_violation" {
			return notification.Event{}, notification.ErrNotFound
		}
		return notification.Event{}, errors.Wrap(err, "creating notification event")
	}
	return evt, nil
}

func (repo *notificationRepository) QueryEventsByMember(ctx context.Context, memberID int) ([]notification.Event, error) {
	var events []notification.Event
	query := `
SELECT id, member_id, title, body, read, created_at
FROM notification_event WHERE member_id = $1 ORDER BY created_at DESC`
	rows, err := repo.db.QueryxContext(ctx, query, memberID)
	if err != nil {
		return nil, errors.Wrap(err, "querying notification events")
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var evt notification.Event
		if err = rows.Scan(&evt.ID, &evt.MemberID, &evt.Title, &evt.Body, &evt.Read, &evt.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scanning notification event")
		}
		events = append(events, evt)
	}
	return events, errors.Wrap(rows.Err(), "querying notification events")
}

func (repo *notificationRepository) MarkEventRead(ctx context.Context, id string, memberID int) (notification.Event, error) {
	var evt notification.Event
	query := `
UPDATE notification_event SET read = TRUE
WHERE id = $1 AND member_id = $2
RETURNING id, member_id, title, body, read, created_at`
	err := repo.db.QueryRowContext(ctx, query, id, memberID).
		Scan(&evt.ID, &evt.MemberID, &evt.Title, &evt.Body, &evt.Read, &evt.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return notification.Event{}, notification.ErrNotFound
		}
		return notification.Event{}, errors.Wrap(err, "marking notification read")
	}
	return evt, nil
}
