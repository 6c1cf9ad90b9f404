package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/NAA-del/naa-portal/core"
	"github.com/NAA-del/naa-portal/core/announcement"
	"github.com/NAA-del/naa-portal/core/committee"
	"github.com/NAA-del/naa-portal/core/cpd"
	"github.com/NAA-del/naa-portal/core/member"
	"github.com/NAA-del/naa-portal/core/notification"
	"github.com/NAA-del/naa-portal/core/resource"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool

		Logger          core.Logger
		MemberSvc       *member.Service
		NotificationSvc *notification.Service
		CommitteeSvc    *committee.Service
		ResourceSvc     *resource.Service
		CPDSvc          *cpd.Service
		AnnouncementSvc *announcement.Service

		// SignalShutdown is called when an unrecoverable error is caught by
		// the error handler.
		SignalShutdown func()
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	if opts.SignalShutdown == nil {
		opts.SignalShutdown = func() {}
	}
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.SignalShutdown)
	s.app.Debug = core.Conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig())

	registerMemberAPI(v1, jwt, s.opts.MemberSvc)
	registerCommitteeAPI(v1, jwt, s.opts.CommitteeSvc, s.opts.MemberSvc)
	registerResourceAPI(v1, jwt, s.opts.ResourceSvc, s.opts.MemberSvc)
	registerCPDAPI(v1, jwt, s.opts.CPDSvc, s.opts.MemberSvc)
	registerAnnouncementAPI(v1, jwt, s.opts.AnnouncementSvc, s.opts.MemberSvc)
	registerNotificationAPI(v1, jwt, s.opts.NotificationSvc)
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Address))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to the NAA Portal API!")
}
