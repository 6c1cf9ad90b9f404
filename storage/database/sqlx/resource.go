package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/NAA-del/naa-portal/core/member"
	"github.com/NAA-del/naa-portal/core/resource"
)

type resourceRow struct {
	ID           int       `db:"id"`
	Title        string    `db:"title"`
	Category     string    `db:"category"`
	Level        string    `db:"access_level"`
	VerifiedOnly bool      `db:"verified_only"`
	FileName     string    `db:"file_name"`
	UploadedBy   int       `db:"uploaded_by"`
	UploadedAt   time.Time `db:"uploaded_at"`
}

func (row resourceRow) toResource() resource.Resource {
	return resource.Resource{
		ID:           row.ID,
		Title:        row.Title,
		Category:     resource.Category(row.Category),
		Level:        member.AccessLevel(row.Level),
		VerifiedOnly: row.VerifiedOnly,
		FileName:     row.FileName,
		UploadedBy:   row.UploadedBy,
		UploadedAt:   row.UploadedAt,
	}
}

const resourceColumns = `id, title, category, access_level, verified_only, file_name, uploaded_by, uploaded_at`

type resourceRepository struct {
	db *sqlx.DB
}

func NewResourceRepository(db *sqlx.DB) resource.Repository {
	return &resourceRepository{db: db}
}

func (repo *resourceRepository) CreateResource(ctx context.Context, r resource.Resource) (resource.Resource, error) {
	query := `
INSERT INTO resource (title, category, access_level, verified_only, file_name, uploaded_by, uploaded_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		r.Title, r.Category, r.Level, r.VerifiedOnly, r.FileName, r.UploadedBy, r.UploadedAt,
	).Scan(&r.ID)
	if err != nil {
		return resource.Resource{}, errors.Wrap(err, "creating resource")
	}
	return r, nil
}

func (repo *resourceRepository) QueryAllResources(ctx context.Context) ([]resource.Resource, error) {
	var rows []resourceRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT `+resourceColumns+` FROM resource ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "querying resources")
	}
	resources := make([]resource.Resource, 0, len(rows))
	for _, row := range rows {
		resources = append(resources, row.toResource())
	}
	return resources, nil
}

func (repo *resourceRepository) GetResourceByID(ctx context.Context, id int) (resource.Resource, error) {
	var row resourceRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+resourceColumns+` FROM resource WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return resource.Resource{}, resource.ErrNotFound
		}
		return resource.Resource{}, errors.Wrap(err, "getting resource")
	}
	return row.toResource(), nil
}

func (repo *resourceRepository) UpdateResource(ctx context.Context, r resource.Resource) (resource.Resource, error) {
	query := `
UPDATE resource
SET title = $2, category = $3, access_level = $4, verified_only = $5, file_name = $6
WHERE id = $1
RETURNING ` + resourceColumns
	var row resourceRow
	if err := repo.db.GetContext(ctx, &row, query, r.ID, r.Title, r.Category, r.Level, r.VerifiedOnly, r.FileName); err != nil {
		if err == sql.ErrNoRows {
			return resource.Resource{}, resource.ErrNotFound
		}
		return resource.Resource{}, errors.Wrap(err, "updating resource")
	}
	return row.toResource(), nil
}

func (repo *resourceRepository) DeleteResource(ctx context.Context, id int) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM resource WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting resource")
	}
	return nil
}
