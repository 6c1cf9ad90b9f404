package inmemdb

import (
	"context"
	"sort"

	"github.com/NAA-del/naa-portal/core/resource"
)

type resourceRepository struct {
	db *resourceTable
}

func NewResourceRepository(db *DB) resource.Repository {
	return &resourceRepository{db: db.resource}
}

func (repo *resourceRepository) CreateResource(ctx context.Context, r resource.Resource) (resource.Resource, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.pkCount++
	r.ID = repo.db.pkCount
	repo.db.table[r.ID] = &r
	return r, nil
}

func (repo *resourceRepository) QueryAllResources(ctx context.Context) ([]resource.Resource, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	resources := make([]resource.Resource, 0, len(repo.db.table))
	for _, r := range repo.db.table {
		resources = append(resources, *r)
	}
	sort.Slice(resources, func(i, j int) bool { return resources[i].ID < resources[j].ID })
	return resources, nil
}

func (repo *resourceRepository) GetResourceByID(ctx context.Context, id int) (resource.Resource, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if r, ok := repo.db.table[id]; ok {
		return *r, nil
	}
	return resource.Resource{}, resource.ErrNotFound
}

func (repo *resourceRepository) UpdateResource(ctx context.Context, r resource.Resource) (resource.Resource, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[r.ID]; !ok {
		return resource.Resource{}, resource.ErrNotFound
	}
	repo.db.table[r.ID] = &r
	return r, nil
}

func (repo *resourceRepository) DeleteResource(ctx context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.db.table, id)
	return nil
}
