package inmemdb

import (
	"context"
	"sort"

	"github.com/NAA-del/naa-portal/core/notification"
)

type notificationRepository struct {
	db *notificationTable
}

func NewNotificationRepository(db *DB) notification.Repository {
	return &notificationRepository{db: db.notification}
}

func (repo *notificationRepository) CreateEvent(ctx context.Context, evt notification.Event) (notification.Event, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.table[evt.ID] = &evt
	return evt, nil
}

func (repo *notificationRepository) QueryEventsByMember(ctx context.Context, memberID int) ([]notification.Event, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var events []notification.Event
	for _, evt := range repo.db.table {
		if evt.MemberID == memberID {
			events = append(events, *evt)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].CreatedAt.After(events[j].CreatedAt) })
	return events, nil
}

func (repo *notificationRepository) MarkEventRead(ctx context.Context, id string, memberID int) (notification.Event, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	evt, ok := repo.db.table[id]
	if !ok || evt.MemberID != memberID {
		return notification.Event{}, notification.ErrNotFound
	}
	evt.Read = true
	return *evt, nil
}
