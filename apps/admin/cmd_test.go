package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"testing"

	"github.com/NAA-del/naa-portal/core/member"
	inmemdb "github.com/NAA-del/naa-portal/storage/database/inmem"
	testutil "github.com/NAA-del/naa-portal/tests"
)

var memberRepo member.Repository

func setup(t *testing.T) *commandLine {
	testutil.LoadConfig()
	memberRepo = inmemdb.NewMemberRepository(inmemdb.NewDB())
	return &commandLine{
		memberRepo: memberRepo,
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "committee", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_addMember(t *testing.T) {
	cli := setup(t)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"addmember"}, wantErr: errHelp},
		{name: "username but no email", args: []string{"addmember", "-username", "ada"}, wantErr: errHelp},
		{name: "username and email but no password", args: []string{"addmember", "-username", "ada", "-email", "ada@test.naa"}, wantErr: errHelp},
		{name: "unknown tier", args: []string{"addmember", "-username", "ada", "-email", "ada@test.naa", "-tier", "platinum"},
			extra: extra{pwd: "s3cret"}, wantErrStr: "unknown membership tier \"platinum\""},
		{name: "create member", args: []string{"addmember", "-username", "ada", "-email", "ada@test.naa"}, extra: extra{pwd: "s3cret"}},
		{name: "create leader", args: []string{"addmember", "-username", "obi", "-email", "obi@test.naa", "-tier", "fellow", "-leadership"},
			extra: extra{pwd: "s3cret"}},
		{name: "update existing member", args: []string{"addmember", "-username", "ada", "-email", "ada@test.naa", "-tier", "full"},
			extra: extra{pwd: "n3w-s3cret"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
				return
			}

			uname := tt.args[2]
			m, err := memberRepo.GetMemberByUsername(context.Background(), uname)
			if err != nil {
				t.Fatalf("GetMemberByUsername() failed, %v", err)
			}
			if !m.IsActive {
				t.Error("member should be active")
			}
			if !m.IsVerified {
				t.Error("member should be verified")
			}
		})
	}

	obi, err := memberRepo.GetMemberByUsername(context.Background(), "obi")
	if err != nil {
		t.Fatalf("GetMemberByUsername() failed, %v", err)
	}
	if len(obi.Roles) != len(member.AllRoles) {
		t.Errorf("leader roles = %v, want %v", obi.Roles, member.AllRoles)
	}
}

func Test_commandLine_verifyMember(t *testing.T) {
	cli := setup(t)

	m := testutil.CreateMember(t, memberRepo, "awe", "awe@test.naa", "mdr", member.TierAssociate, nil, false)
	verified := testutil.CreateMember(t, memberRepo, "zed", "zed@test.naa", "mdr", member.TierFull, nil, true)

	tests := []cliTest{
		{name: "no args", args: []string{"verifymember"}, wantErr: errHelp},
		{name: "member not found", args: []string{"verifymember", "-username", "lol"}, wantErr: member.ErrNotFound},
		{name: "verify with username", args: []string{"verifymember", "-username", m.Username}},
		{name: "already verified is a no-op", args: []string{"verifymember", "-username", verified.Email}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				uname := tt.args[2]
				refreshed, err := memberRepo.GetMemberByUsernameOrEmail(context.Background(), uname)
				if err != nil {
					t.Fatalf("GetMemberByUsernameOrEmail() failed, %v", err)
				}
				if !refreshed.IsVerified {
					t.Error("member should be verified")
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	m := testutil.CreateMember(t, memberRepo, "awe", "awe@test.naa", "mdr", member.TierStudent, nil, true)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "member not found", args: []string{"resetpassword", "-username", "lol"}, extra: extra{pwd: "lol"}, wantErr: member.ErrNotFound},
		{name: "reset with username", args: []string{"resetpassword", "-username", m.Username}, extra: extra{pwd: "lol"}},
		{name: "reset with email", args: []string{"resetpassword", "-username", m.Email}, extra: extra{pwd: "lmao"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshed, err := memberRepo.GetMemberByID(context.Background(), m.ID)
				if err != nil {
					t.Fatalf("GetMemberByID() failed, %v", err)
				}
				if bytes.Equal(refreshed.PasswordHash, m.PasswordHash) {
					t.Error("failed to update new password")
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
