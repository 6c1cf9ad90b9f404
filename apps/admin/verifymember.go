package main

import (
	"context"
	"time"

	"github.com/NAA-del/naa-portal/core"
	"github.com/NAA-del/naa-portal/core/member"
)

func (cli *commandLine) verifyMember(uname string) error {
	ctx := context.Background()
	m, err := cli.memberRepo.GetMemberByUsernameOrEmail(ctx, core.CleanString(uname, true))
	if err != nil {
		return err
	}
	if _, err = cli.memberRepo.VerifyMember(ctx, m.ID, time.Now().UTC()); err != nil {
		if err == member.ErrAlreadyVerified {
			return nil
		}
		return err
	}
	return nil
}
