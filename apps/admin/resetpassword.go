package main

import (
	"context"
	"time"

	"github.com/NAA-del/naa-portal/core"
)

func (cli *commandLine) resetPassword(uname, pwd string) error {
	ctx := context.Background()
	m, err := cli.memberRepo.GetMemberByUsernameOrEmail(ctx, core.CleanString(uname, true))
	if err != nil {
		return err
	}
	if err = m.SetPassword(pwd); err != nil {
		return err
	}
	m.UpdatedAt = time.Now().UTC()
	if _, err = cli.memberRepo.UpdateMember(ctx, m, nil); err != nil {
		return err
	}
	return nil
}
