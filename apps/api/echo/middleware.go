package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// leadershipMiddleware lets through members holding a leadership role (EXCO or
// Trustee); extra roles narrow the set further.
func leadershipMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsLeadership && contextHasAnyRole(ctx, roles) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}
