package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/NAA-del/naa-portal/core/committee"
)

type committeeRow struct {
	ID          int           `db:"id"`
	Name        string        `db:"name"`
	Description string        `db:"description"`
	DirectorID  sql.NullInt64 `db:"director_id"`
	CreatedAt   time.Time     `db:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"`
}

func (row committeeRow) toCommittee() committee.Committee {
	c := committee.Committee{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if row.DirectorID.Valid {
		id := int(row.DirectorID.Int64)
		c.DirectorID = &id
	}
	return c
}

type committeeRepository struct {
	db *sqlx.DB
}

func NewCommitteeRepository(db *sqlx.DB) committee.Repository {
	return &committeeRepository{db: db}
}

func (repo *committeeRepository) CreateCommittee(ctx context.Context, c committee.Committee) (committee.Committee, error) {
	query := `
INSERT INTO committee (name, description, director_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`
	err := repo.db.QueryRowContext(ctx, query, c.Name, c.Description, directorArg(c.DirectorID), c.CreatedAt, c.UpdatedAt).Scan(&c.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return committee.Committee{}, committee.ErrNameExists
		}
		return committee.Committee{}, errors.Wrap(err, "creating committee")
	}
	return c, nil
}

func (repo *committeeRepository) QueryAllCommittees(ctx context.Context) ([]committee.Committee, error) {
	var rows []committeeRow
	query := `SELECT id, name, description, director_id, created_at, updated_at FROM committee ORDER BY id`
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying committees")
	}

	committees := make([]committee.Committee, 0, len(rows))
	for _, row := range rows {
		c := row.toCommittee()
		if err := repo.loadMembers(ctx, &c); err != nil {
			return nil, err
		}
		committees = append(committees, c)
	}
	return committees, nil
}

func (repo *committeeRepository) GetCommitteeByID(ctx context.Context, id int) (committee.Committee, error) {
	var row committeeRow
	query := `SELECT id, name, description, director_id, created_at, updated_at FROM committee WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return committee.Committee{}, committee.ErrNotFound
		}
		return committee.Committee{}, errors.Wrap(err, "getting committee")
	}
	c := row.toCommittee()
	if err := repo.loadMembers(ctx, &c); err != nil {
		return committee.Committee{}, err
	}
	return c, nil
}

func (repo *committeeRepository) loadMembers(ctx context.Context, c *committee.Committee) error {
	var ids []int
	query := `SELECT member_id FROM committee_member WHERE committee_id = $1 ORDER BY member_id`
	if err := repo.db.SelectContext(ctx, &ids, query, c.ID); err != nil {
		return errors.Wrap(err, "loading committee members")
	}
	c.MemberIDs = ids
	return nil
}

func (repo *committeeRepository) UpdateCommittee(ctx context.Context, c committee.Committee) (committee.Committee, error) {
	query := `
UPDATE committee
SET name = COALESCE(NULLIF($2, ''), name),
    description = COALESCE(NULLIF($3, ''), description),
    director_id = COALESCE($4, director_id),
    updated_at = $5
WHERE id = $1
RETURNING id, name, description, director_id, created_at, updated_at`
	var row committeeRow
	if err := repo.db.GetContext(ctx, &row, query, c.ID, c.Name, c.Description, directorArg(c.DirectorID), c.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return committee.Committee{}, committee.ErrNotFound
		}
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return committee.Committee{}, committee.ErrNameExists
		}
		return committee.Committee{}, errors.Wrap(err, "updating committee")
	}
	updated := row.toCommittee()
	if err := repo.loadMembers(ctx, &updated); err != nil {
		return committee.Committee{}, err
	}
	return updated, nil
}

func (repo *committeeRepository) SetCommitteeMembers(ctx context.Context, id int, memberIDs []int) (committee.Committee, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return committee.Committee{}, errors.Wrap(err, "setting committee members")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, `DELETE FROM committee_member WHERE committee_id = $1`, id); err != nil {
		return committee.Committee{}, errors.Wrap(err, "clearing committee members")
	}
	for _, memberID := range memberIDs {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO committee_member (committee_id, member_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			id, memberID)
		if err != nil {
			return committee.Committee{}, errors.Wrap(err, "adding committee member")
		}
	}
	if err = tx.Commit(); err != nil {
		return committee.Committee{}, errors.Wrap(err, "setting committee members")
	}
	return repo.GetCommitteeByID(ctx, id)
}

func (repo *committeeRepository) CreateReport(ctx context.Context, r committee.Report) (committee.Report, error) {
	query := `
INSERT INTO committee_report (committee_id, title, file_name, uploaded_by, uploaded_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`
	err := repo.db.QueryRowContext(ctx, query, r.CommitteeID, r.Title, r.FileName, r.UploadedBy, r.UploadedAt).Scan(&r.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "foreign_key_violation" {
			return committee.Report{}, committee.ErrNotFound
		}
		return committee.Report{}, errors.Wrap(err, "creating report")
	}
	return r, nil
}

func (repo *committeeRepository) QueryReportsByCommittee(ctx context.Context, committeeID int) ([]committee.Report, error) {
	var reports []committee.Report
	query := `
SELECT id, committee_id, title, file_name, uploaded_by, uploaded_at
FROM committee_report WHERE committee_id = $1 ORDER BY uploaded_at DESC`
	rows, err := repo.db.QueryxContext(ctx, query, committeeID)
	if err != nil {
		return nil, errors.Wrap(err, "querying reports")
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var r committee.Report
		if err = rows.Scan(&r.ID, &r.CommitteeID, &r.Title, &r.FileName, &r.UploadedBy, &r.UploadedAt); err != nil {
			return nil, errors.Wrap(err, "scanning report")
		}
		reports = append(reports, r)
	}
	return reports, errors.Wrap(rows.Err(), "querying reports")
}

func (repo *committeeRepository) CreateAnnouncement(ctx context.Context, a committee.Announcement) (committee.Announcement, error) {
	query := `
INSERT INTO committee_announcement (committee_id, title, content, posted_by, posted_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`
	err := repo.db.QueryRowContext(ctx, query, a.CommitteeID, a.Title, a.Content, a.PostedBy, a.PostedAt).Scan(&a.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "foreign_key_violation" {
			return committee.Announcement{}, committee.ErrNotFound
		}
		return committee.Announcement{}, errors.Wrap(err, "creating committee announcement")
	}
	return a, nil
}

func (repo *committeeRepository) QueryAnnouncementsByCommittee(ctx context.Context, committeeID int) ([]committee.Announcement, error) {
	var announcements []committee.Announcement
	query := `
SELECT id, committee_id, title, content, posted_by, posted_at
FROM committee_announcement WHERE committee_id = $1 ORDER BY posted_at DESC`
	rows, err := repo.db.QueryxContext(ctx, query, committeeID)
	if err != nil {
		return nil, errors.Wrap(err, "querying committee announcements")
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var a committee.Announcement
		if err = rows.Scan(&a.ID, &a.CommitteeID, &a.Title, &a.Content, &a.PostedBy, &a.PostedAt); err != nil {
			return nil, errors.Wrap(err, "scanning committee announcement")
		}
		announcements = append(announcements, a)
	}
	return announcements, errors.Wrap(rows.Err(), "querying committee announcements")
}

func directorArg(id *int) interface{} {
	if id == nil {
		return nil
	}
	return *id
}
