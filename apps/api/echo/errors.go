package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/NAA-del/naa-portal/core"
	"github.com/NAA-del/naa-portal/core/announcement"
	"github.com/NAA-del/naa-portal/core/committee"
	"github.com/NAA-del/naa-portal/core/cpd"
	"github.com/NAA-del/naa-portal/core/member"
	"github.com/NAA-del/naa-portal/core/notification"
	"github.com/NAA-del/naa-portal/core/resource"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "member not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errAccountDeactivated   = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errRefreshExpired       = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// statusFor maps domain errors to HTTP codes; 0 means unmapped.
func statusFor(err error) int {
	switch err {
	case member.ErrNotFound, member.ErrProfileNotFound, committee.ErrNotFound,
		resource.ErrNotFound, cpd.ErrNotFound, announcement.ErrNotFound, notification.ErrNotFound:
		return http.StatusNotFound
	case member.ErrVerifyNotAllowed, committee.ErrAccessDenied,
		resource.ErrAccessDenied, cpd.ErrAccessDenied, announcement.ErrAccessDenied:
		return http.StatusForbidden
	case member.ErrAlreadyVerified:
		return http.StatusConflict
	}
	return 0
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		origErr := errors.Cause(err)
		switch typedErr := origErr.(type) {
		case *echo.HTTPError:
			if typedErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = typedErr.Message
				break
			}
			if typedErr.Internal != nil {
				if herr, ok := typedErr.Internal.(*echo.HTTPError); ok {
					typedErr = herr
				}
			}
			code = typedErr.Code
			message = typedErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(typedErr))
			for _, vErr := range typedErr {
				fldErrs[vErr.Field()] = vErr.Translate(core.Translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if typedErr.Fields != nil {
				fldErrs := make(map[string]string, len(typedErr.Fields))
				for _, fErr := range typedErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = typedErr.Error()
			}
			code = http.StatusBadRequest
		default:
			if mapped := statusFor(origErr); mapped != 0 {
				code = mapped
				message = origErr.Error()
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			var m member.Member
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				m.ID, _ = strconv.Atoi(claims.Subject)
				m.Username = claims.Username
				m.Email = claims.Email
			}
			logger.Error(msg, errors.Wrap(err, msg), m)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		} else if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
