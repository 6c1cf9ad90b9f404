package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/NAA-del/naa-portal/core"
	"github.com/NAA-del/naa-portal/core/member"
)

var (
	errMemberNotFoundInCtx = errors.New("member object not found in echo.Context")
	errNoPermsToSetRoles   = "not enough rights to set these roles"
)

type memberApi struct {
	svc *member.Service
}

func registerMemberAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *member.Service) {
	api := memberApi{svc: svc}

	mg := g.Group("/members")

	// un-authed endpoints
	mg.POST("/register", api.register)
	mg.POST("/login", api.login)
	mg.POST("/password-reset", api.resetPassword)
	mg.POST("/password-reset-confirm", api.confirmPasswordReset)

	// authed endpoints
	ag := mg.Group("", jwt)
	ag.POST("/token-refresh", api.refreshToken)
	ag.GET("", api.query, leadershipMiddleware())
	ag.GET("/roles", api.queryRoles, leadershipMiddleware())
	ag.GET("/roster", api.exportRoster, leadershipMiddleware())

	// detail endpoints
	dg := ag.Group("/:id", ctxMemberOrLeadershipMiddleware(api.svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.POST("/verify", api.verify)
	dg.POST("/unverify", api.unverify)
	dg.GET("/student-profile", api.getStudentProfile)
	dg.PUT("/student-profile", api.saveStudentProfile)
}

// Handlers

func (api *memberApi) register(ctx echo.Context) error {
	var data member.NewMember
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMember")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	m, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering member")
	}
	return ctx.JSON(http.StatusCreated, m)
}

func (api *memberApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := authenticate(ctx, data.Username, data.Password, api.svc)
	if err != nil {
		if errors.Cause(err) == member.ErrNotFound {
			return core.NewValidationError(errors.New("invalid credentials"))
		}
		return errors.Wrap(err, "authenticating")
	}
	token, err := GenerateToken(claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *memberApi) resetPassword(ctx echo.Context) error {
	var data PasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.svc.RequestPasswordReset(ctx.Request().Context(), data.Email); !(err == nil || errors.Cause(err) == member.ErrNotFound) {
		// do not return errors to attackers
		ctx.Logger().Errorf("%+v", errors.Wrap(err, "requesting password reset"))
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})
}

func (api *memberApi) confirmPasswordReset(ctx echo.Context) error {
	var data member.ResetMemberPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetMemberPassword")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.svc.ResetPassword(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password has been reset with the new password."})
}

func (api *memberApi) query(ctx echo.Context) error {
	filter := new(member.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []member.Member{})
	}

	members, err := api.svc.Filter(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying members")
	}
	if members == nil {
		members = []member.Member{}
	}
	return ctx.JSON(http.StatusOK, members)
}

func (api *memberApi) retrieve(ctx echo.Context) error {
	m, ok := ctx.Get("object").(member.Member)
	if !ok {
		return errors.Wrap(errMemberNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *memberApi) update(ctx echo.Context) error {
	m, ok := ctx.Get("object").(member.Member)
	if !ok {
		return errors.Wrap(errMemberNotFoundInCtx, "retrieving object from context")
	}

	var data member.UpdateMember
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateMember")
	}

	ctxMember, err := getContextMember(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context member")
	}
	if !ctxMember.IsLeadership() {
		// `Tier`, `IsActive` and `Roles` can only be changed by leadership;
		// same for `Username` and `Email` for now
		if data.Tier != "" || data.IsActive != nil || data.Roles != nil || data.Username != "" || data.Email != "" {
			return errHttpForbidden
		}
	}

	if err := data.Validate(m, api.svc); err != nil {
		return err
	}

	// ctxMember cannot set a role > their own max role
	if member.MaxRolePriority(data.Roles) > member.MaxRolePriority(ctxMember.Roles) {
		return core.NewValidationError(nil, core.FieldError{Field: "roles", Error: errNoPermsToSetRoles})
	}

	m, err = api.svc.Update(ctx.Request().Context(), m.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating member")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *memberApi) verify(ctx echo.Context) error {
	m, ok := ctx.Get("object").(member.Member)
	if !ok {
		return errors.Wrap(errMemberNotFoundInCtx, "retrieving object from context")
	}

	actor, err := getContextMember(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context member")
	}

	m, err = api.svc.Verify(ctx.Request().Context(), actor, m.ID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *memberApi) unverify(ctx echo.Context) error {
	m, ok := ctx.Get("object").(member.Member)
	if !ok {
		return errors.Wrap(errMemberNotFoundInCtx, "retrieving object from context")
	}

	actor, err := getContextMember(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context member")
	}

	m, err = api.svc.Unverify(ctx.Request().Context(), actor, m.ID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *memberApi) getStudentProfile(ctx echo.Context) error {
	m, ok := ctx.Get("object").(member.Member)
	if !ok {
		return errors.Wrap(errMemberNotFoundInCtx, "retrieving object from context")
	}

	profile, err := api.svc.GetStudentProfile(ctx.Request().Context(), m.ID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, profile)
}

func (api *memberApi) saveStudentProfile(ctx echo.Context) error {
	m, ok := ctx.Get("object").(member.Member)
	if !ok {
		return errors.Wrap(errMemberNotFoundInCtx, "retrieving object from context")
	}
	if !m.IsStudentTier() {
		return errHttpForbidden
	}

	var data member.UpsertStudentProfile
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpsertStudentProfile")
	}
	if err := data.Validate(m.ID, api.svc); err != nil {
		return err
	}

	profile, err := api.svc.SaveStudentProfile(ctx.Request().Context(), m.ID, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, profile)
}

func (api *memberApi) exportRoster(ctx echo.Context) error {
	res := ctx.Response()
	res.Header().Set(echo.HeaderContentType, "text/csv")
	res.Header().Set(echo.HeaderContentDisposition, `attachment; filename="roster.csv"`)
	res.WriteHeader(http.StatusOK)
	return api.svc.ExportRoster(ctx.Request().Context(), res)
}

func (api *memberApi) queryRoles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, member.Roles)
}

func (api *memberApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func ctxMemberOrLeadershipMiddleware(svc *member.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctxMember, err := getContextMember(ctx, svc)
			if err != nil {
				return errors.Wrap(err, "getting context member")
			}

			id, err := strconv.Atoi(ctx.Param("id"))
			if err != nil {
				return errHttpNotFound
			}
			if id == ctxMember.ID || ctxMember.IsLeadership() {
				if m, err := svc.GetByID(ctx.Request().Context(), id); err == nil {
					ctx.Set("object", m)
					return next(ctx)
				} else if errors.Cause(err) != member.ErrNotFound {
					return errors.Wrap(err, "finding member by ID")
				}
			}
			return errHttpNotFound
		}
	}
}

type (
	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	PasswordResetRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

func (lr *LoginRequest) Validate() error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return core.Validate.Struct(lr)
}

func (pr *PasswordResetRequest) Validate() error {
	pr.Email = core.CleanString(pr.Email, true /* lower */)
	return core.Validate.Struct(pr)
}
