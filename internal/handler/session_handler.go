package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"gatehouse/internal/errors"
	"gatehouse/internal/session"
)

// SessionHandler exposes the current session state and the activity
// event endpoint.
type SessionHandler struct {
	sessions *session.Manager
}

// NewSessionHandler creates a session handler.
func NewSessionHandler(sessions *session.Manager) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Get godoc
// @Summary Current session state
// @Tags session
// @Produce json
// @Success 200 {object} session.Snapshot
// @Failure 401 {object} errors.ErrorResponse
// @Router /session [get]
func (h *SessionHandler) Get(c echo.Context) error {
	snap, ok := h.sessions.Session()
	if !ok {
		httpErr := errors.MapErrorToHTTP(errors.ErrUnauthenticated)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, snap)
}

// Activity godoc
// @Summary Record a qualifying activity event
// @Tags session
// @Produce json
// @Success 200 {object} session.Snapshot
// @Failure 401 {object} errors.ErrorResponse
// @Router /session/activity [post]
func (h *SessionHandler) Activity(c echo.Context) error {
	h.sessions.Touch()
	return h.Get(c)
}
