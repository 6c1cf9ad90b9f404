package cpd

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/NAA-del/naa-portal/core/member"
	"github.com/NAA-del/naa-portal/core/upload"
)

var (
	// errors
	ErrNotFound     = errors.New("CPD record not found")
	ErrAccessDenied = errors.New("access denied")
)

type (
	Repository interface {
		CreateRecord(ctx context.Context, r Record) (Record, error)
		QueryRecordsByMember(ctx context.Context, memberID int) ([]Record, error)
		GetRecordByID(ctx context.Context, id int) (Record, error)
		// VerifyRecords marks the given records verified; unknown IDs are skipped.
		VerifyRecords(ctx context.Context, ids ...int) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Submit logs a new CPD activity for the actor. The optional certificate must
// be a valid PDF or image.
func (svc *Service) Submit(ctx context.Context, actor member.Member, nr NewRecord) (Record, error) {
	if nr.CertificateName != "" {
		if err := upload.ValidateCertificate(nr.CertificateName, nr.Certificate); err != nil {
			return Record{}, err
		}
	}
	r := Record{
		MemberID:        actor.ID,
		ActivityName:    nr.ActivityName,
		Points:          nr.Points,
		DateCompleted:   nr.DateCompleted,
		CertificateName: nr.CertificateName,
		CreatedAt:       time.Now().UTC(),
	}
	return svc.repo.CreateRecord(ctx, r)
}

// ListByMember returns a member's records. Members see their own; leadership
// sees anyone's.
func (svc *Service) ListByMember(ctx context.Context, actor member.Member, memberID int) ([]Record, error) {
	if actor.ID != memberID && !actor.IsLeadership() {
		return nil, ErrAccessDenied
	}
	return svc.repo.QueryRecordsByMember(ctx, memberID)
}

// TotalPoints sums a member's points; verifiedOnly restricts the sum to
// leadership-confirmed records.
func (svc *Service) TotalPoints(ctx context.Context, actor member.Member, memberID int, verifiedOnly bool) (int, error) {
	records, err := svc.ListByMember(ctx, actor, memberID)
	if err != nil {
		return 0, err
	}
	var total int
	for _, r := range records {
		if verifiedOnly && !r.IsVerified {
			continue
		}
		total += r.Points
	}
	return total, nil
}

// VerifyRecords confirms CPD activities. Leadership only.
func (svc *Service) VerifyRecords(ctx context.Context, actor member.Member, ids ...int) error {
	if !actor.IsLeadership() {
		return ErrAccessDenied
	}
	return svc.repo.VerifyRecords(ctx, ids...)
}

// ExportCSV writes a member's CPD portfolio as CSV.
func (svc *Service) ExportCSV(ctx context.Context, actor member.Member, memberID int, w io.Writer) error {
	records, err := svc.ListByMember(ctx, actor, memberID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"activity_name", "points", "date_completed", "is_verified"}); err != nil {
		return errors.Wrap(err, "writing CPD header")
	}
	for _, r := range records {
		row := []string{
			r.ActivityName,
			strconv.Itoa(r.Points),
			r.DateCompleted.Format("2006-01-02"),
			strconv.FormatBool(r.IsVerified),
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, "writing CPD row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing CPD export")
}
