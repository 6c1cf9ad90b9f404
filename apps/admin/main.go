package main

import (
	"log"
	"os"

	"github.com/NAA-del/naa-portal/core"
	"github.com/NAA-del/naa-portal/storage/database"
	sqlxdb "github.com/jmoiron/sqlx"
	sqlxrepos "github.com/NAA-del/naa-portal/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.LoadConfig(".")

	// set up DB
	rawDB, err := database.Open(conf)
	errAndDie(err)
	defer rawDB.Close()
	errAndDie(rawDB.Ping())
	db := sqlxdb.NewDb(rawDB, conf.Database.Engine)

	// start CLI
	cli := commandLine{
		db:         rawDB,
		memberRepo: sqlxrepos.NewMemberRepository(db),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
