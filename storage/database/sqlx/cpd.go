package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/NAA-del/naa-portal/core/cpd"
)

type cpdRow struct {
	ID              int       `db:"id"`
	MemberID        int       `db:"member_id"`
	ActivityName    string    `db:"activity_name"`
	Points          int       `db:"points"`
	DateCompleted   time.Time `db:"date_completed"`
	CertificateName string    `db:"certificate_name"`
	IsVerified      bool      `db:"is_verified"`
	CreatedAt       time.Time `db:"created_at"`
}

func (row cpdRow) toRecord() cpd.Record {
	return cpd.Record{
		ID:              row.ID,
		MemberID:        row.MemberID,
		ActivityName:    row.ActivityName,
		Points:          row.Points,
		DateCompleted:   row.DateCompleted,
		CertificateName: row.CertificateName,
		IsVerified:      row.IsVerified,
		CreatedAt:       row.CreatedAt,
	}
}

const cpdColumns = `id, member_id, activity_name, points, date_completed, certificate_name, is_verified, created_at`

type cpdRepository struct {
	db *sqlx.DB
}

func NewCPDRepository(db *sqlx.DB) cpd.Repository {
	return &cpdRepository{db: db}
}

func (repo *cpdRepository) CreateRecord(ctx context.Context, r cpd.Record) (cpd.Record, error) {
	query := `
INSERT INTO cpd_record (member_id, activity_name, points, date_completed, certificate_name, is_verified, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		r.MemberID, r.ActivityName, r.Points, r.DateCompleted, r.CertificateName, r.IsVerified, r.CreatedAt,
	).Scan(&r.ID)
	if err != nil {
		return cpd.Record{}, errors.Wrap(err, "creating CPD record")
	}
	return r, nil
}

func (repo *cpdRepository) QueryRecordsByMember(ctx context.Context, memberID int) ([]cpd.Record, error) {
	var rows []cpdRow
	query := `SELECT ` + cpdColumns + ` FROM cpd_record WHERE member_id = $1 ORDER BY date_completed DESC`
	if err := repo.db.SelectContext(ctx, &rows, query, memberID); err != nil {
		return nil, errors.Wrap(err, "querying CPD records")
	}
	records := make([]cpd.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toRecord())
	}
	return records, nil
}

func (repo *cpdRepository) GetRecordByID(ctx context.Context, id int) (cpd.Record, error) {
	var row cpdRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+cpdColumns+` FROM cpd_record WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return cpd.Record{}, cpd.ErrNotFound
		}
		return cpd.Record{}, errors.Wrap(err, "getting CPD record")
	}
	return row.toRecord(), nil
}

func (repo *cpdRepository) VerifyRecords(ctx context.Context, ids ...int) error {
	idArgs := make([]int64, 0, len(ids))
	for _, id := range ids {
		idArgs = append(idArgs, int64(id))
	}
	query := `UPDATE cpd_record SET is_verified = TRUE WHERE id = ANY($1)`
	if _, err := repo.db.ExecContext(ctx, query, pq.Array(idArgs)); err != nil {
		return errors.Wrap(err, "verifying CPD records")
	}
	return nil
}
