package inmemdb

import (
	"context"
	"sort"

	"github.com/NAA-del/naa-portal/core/cpd"
)

type cpdRepository struct {
	db *cpdTable
}

func NewCPDRepository(db *DB) cpd.Repository {
	return &cpdRepository{db: db.cpd}
}

func (repo *cpdRepository) CreateRecord(ctx context.Context, r cpd.Record) (cpd.Record, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.pkCount++
	r.ID = repo.db.pkCount
	repo.db.table[r.ID] = &r
	return r, nil
}

func (repo *cpdRepository) QueryRecordsByMember(ctx context.Context, memberID int) ([]cpd.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var records []cpd.Record
	for _, r := range repo.db.table {
		if r.MemberID == memberID {
			records = append(records, *r)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].DateCompleted.After(records[j].DateCompleted) })
	return records, nil
}

func (repo *cpdRepository) GetRecordByID(ctx context.Context, id int) (cpd.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if r, ok := repo.db.table[id]; ok {
		return *r, nil
	}
	return cpd.Record{}, cpd.ErrNotFound
}

func (repo *cpdRepository) VerifyRecords(ctx context.Context, ids ...int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, id := range ids {
		if r, ok := repo.db.table[id]; ok {
			r.IsVerified = true
		}
	}
	return nil
}
