package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/NAA-del/naa-portal/core/member"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db         *sql.DB
	memberRepo member.Repository
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  addmember -username USERNAME -email EMAIL [-tier TIER] [-leadership] - add a member; the password is prompted next")
	fmt.Println("  verifymember -username USERNAME|EMAIL - confirm a member's credentials")
	fmt.Println("  resetpassword -username USERNAME|EMAIL - reset a member's password")
	fmt.Println("  migrate COMMAND [args] - run database migrations")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addMemberCmd := flag.NewFlagSet("addmember", flag.ExitOnError)
	addMemberUname := addMemberCmd.String("username", "", "The member's username.")
	addMemberEmail := addMemberCmd.String("email", "", "The member's email.")
	addMemberTier := addMemberCmd.String("tier", string(member.TierStudent), "The membership tier.")
	addMemberLeadership := addMemberCmd.Bool("leadership", false, "Grant all leadership roles.")

	verifyMemberCmd := flag.NewFlagSet("verifymember", flag.ExitOnError)
	verifyMemberUname := verifyMemberCmd.String("username", "", "The member's username or email.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The member's username or email. The password will be prompted next.")

	switch args[1] {
	case "addmember":
		if err := addMemberCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addMemberUname == "" || *addMemberEmail == "" {
			addMemberCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addMemberCmd.Usage()
			return errHelp
		}
		return cli.addMember(*addMemberUname, *addMemberEmail, *addMemberTier, pwd, *addMemberLeadership)
	case "verifymember":
		if err := verifyMemberCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *verifyMemberUname == "" {
			verifyMemberCmd.Usage()
			return errHelp
		}
		return cli.verifyMember(*verifyMemberUname)
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordUname, pwd)
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}
