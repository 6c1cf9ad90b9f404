package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/NAA-del/naa-portal/core"
	"github.com/NAA-del/naa-portal/core/member"
)

// LoadConfig loads the TEST configuration into core.Conf. Call it once from
// each package's TestMain.
func LoadConfig() {
	_ = os.Setenv("ENV", "TEST")
	core.LoadConfig("")
	// keep error payloads in their production shape
	core.Conf.Debug = false
}

func CreateMember(
	t *testing.T,
	repo member.Repository,
	uname, email, pwd string,
	tier member.Tier,
	roles []string,
	verified bool,
	createdAt ...time.Time,
) member.Member {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	m := member.Member{
		Username:  uname,
		Email:     email,
		Tier:      tier,
		Roles:     roles,
		IsActive:  true,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := m.SetPassword(pwd); err != nil {
			t.Fatalf("CreateMember() failed: %v", err)
		}
	}
	m, err := repo.CreateMember(context.Background(), m)
	if err != nil {
		t.Fatalf("CreateMember() failed: %v", err)
	}
	if verified {
		if m, err = repo.VerifyMember(context.Background(), m.ID, tstamp); err != nil {
			t.Fatalf("CreateMember() failed: %v", err)
		}
	}
	return m
}
