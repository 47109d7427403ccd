package router

import (
	stderrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"gatehouse/internal/errors"
	"gatehouse/internal/repository"
	"gatehouse/internal/service"
	"gatehouse/internal/session"
)

// csrfHeader carries the form token on mutating secured requests.
const csrfHeader = "X-CSRF-Token"

// Guard implements the route protection contract: no session means
// unauthenticated, and admin-only routes answer with an access-denied
// state rather than a redirect.
type Guard struct {
	Sessions *session.Manager
	Users    repository.UserRepository
	Auth     service.AuthService
}

// RequireSession rejects requests with no active session. A session
// whose identity no longer matches any user record is treated as
// invalid and ended.
func (g *Guard) RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := g.Sessions.Identity()
			if !ok {
				httpErr := errors.MapErrorToHTTP(errors.ErrUnauthenticated)
				return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
			}

			if _, err := g.Users.FindByUsername(c.Request().Context(), identity.Username); err != nil {
				if stderrors.Is(err, repository.ErrNotFound) {
					_ = g.Sessions.End(c.Request().Context())
					httpErr := errors.MapErrorToHTTP(errors.ErrUnauthenticated)
					return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
				}
				return echo.NewHTTPError(http.StatusInternalServerError, errors.ErrorResponse{
					Error: "failed to verify session",
					Code:  "INTERNAL_ERROR",
				})
			}
			return next(c)
		}
	}
}

// RequireAdmin rejects sessions without the admin role.
func (g *Guard) RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := g.Sessions.Identity()
			if !ok || !identity.IsAdmin() {
				httpErr := errors.MapErrorToHTTP(errors.ErrForbidden)
				return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
			}
			return next(c)
		}
	}
}

// VerifyCSRF checks the form token on mutating requests. Safe methods
// pass through.
func (g *Guard) VerifyCSRF() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch c.Request().Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}
			token := c.Request().Header.Get(csrfHeader)
			if token == "" || !g.Auth.ValidateCSRFToken(token) {
				httpErr := errors.MapErrorToHTTP(errors.ErrInvalidCSRFToken)
				return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
			}
			return next(c)
		}
	}
}
