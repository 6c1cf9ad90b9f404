package main

import (
	"context"
	"time"

	"github.com/NAA-del/naa-portal/core"
	"github.com/NAA-del/naa-portal/core/member"
)

// addMember updates or creates a member.Member. Members created here are
// activated and verified right away so a bootstrap leader can log in without
// going through the verification workflow.
func (cli *commandLine) addMember(uname, email, tier, pwd string, leadership bool) error {
	var m member.Member
	var err error
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	if !member.Tier(tier).Valid() {
		_, err = member.Tier(tier).Rank()
		return err
	}

	now := time.Now().UTC()
	if m, err = cli.memberRepo.GetMemberByUsernameOrEmail(ctx, uname); err != nil {
		if err != member.ErrNotFound {
			return err
		}
		m = member.Member{
			Username:  uname,
			Email:     email,
			CreatedAt: now,
		}
	}
	m.Tier = member.Tier(tier)
	m.IsActive = true
	m.UpdatedAt = now
	if leadership {
		m.Roles = member.AllRoles
	}
	if err = m.SetPassword(pwd); err != nil {
		return err
	}
	if m.ID == 0 {
		if m, err = cli.memberRepo.CreateMember(ctx, m); err != nil {
			return err
		}
	} else {
		active := true
		if m, err = cli.memberRepo.UpdateMember(ctx, m, &active); err != nil {
			return err
		}
	}
	if _, err = cli.memberRepo.VerifyMember(ctx, m.ID, now); err != nil && err != member.ErrAlreadyVerified {
		return err
	}
	return nil
}
