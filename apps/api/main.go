package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/NAA-del/naa-portal/apps/api/echo"
	"github.com/NAA-del/naa-portal/core"
	"github.com/NAA-del/naa-portal/core/announcement"
	"github.com/NAA-del/naa-portal/core/committee"
	"github.com/NAA-del/naa-portal/core/cpd"
	"github.com/NAA-del/naa-portal/core/member"
	"github.com/NAA-del/naa-portal/core/notification"
	"github.com/NAA-del/naa-portal/core/resource"
	emailsvc "github.com/NAA-del/naa-portal/services/email"
	logsvc "github.com/NAA-del/naa-portal/services/logger"
	"github.com/NAA-del/naa-portal/storage/database"
	sqlxrepos "github.com/NAA-del/naa-portal/storage/database/sqlx"
)

func main() {
	conf := core.LoadConfig(".")

	// set up logger
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	rawDB, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	defer func() { _ = rawDB.Close() }()
	if err = database.Migrate(rawDB); err != nil {
		logger.Fatal(fmt.Sprintf("migrating database: %v", err), err)
	}
	db := sqlx.NewDb(rawDB, conf.Database.Engine)

	// set up services
	var mailSvc interface {
		core.EmailService
		core.EmailSender
	}
	switch conf.Email.Backend {
	case "sendgrid":
		mailSvc = emailsvc.NewSendgridService(logger)
	case "mailjet":
		mailSvc = emailsvc.NewMailjetService(logger)
	default:
		mailSvc = emailsvc.NewConsoleService()
	}

	notifSvc := notification.NewService(sqlxrepos.NewNotificationRepository(db), mailSvc, logger)
	memberRepo := sqlxrepos.NewMemberRepository(db)
	memberSvc := member.NewService(memberRepo, mailSvc, notifSvc, logger)
	committeeSvc := committee.NewService(sqlxrepos.NewCommitteeRepository(db))
	resourceSvc := resource.NewService(sqlxrepos.NewResourceRepository(db))
	cpdSvc := cpd.NewService(sqlxrepos.NewCPDRepository(db))
	announcementSvc := announcement.NewService(
		sqlxrepos.NewAnnouncementRepository(db), memberRepo, notifSvc, logger)

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// start API server
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	server := echoapi.NewServer(&echoapi.Options{
		Address:         ":" + conf.Server.Port,
		Logger:          logger,
		MemberSvc:       memberSvc,
		NotificationSvc: notifSvc,
		CommitteeSvc:    committeeSvc,
		ResourceSvc:     resourceSvc,
		CPDSvc:          cpdSvc,
		AnnouncementSvc: announcementSvc,
		SignalShutdown:  func() { shutdown <- syscall.SIGTERM },
	})

	go server.Start()

	sig := <-shutdown
	logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

	// give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = server.Stop(ctx); err != nil {
		logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
	}
}
