package handler

import (
	stderrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"gatehouse/internal/errors"
	"gatehouse/internal/model"
	"gatehouse/internal/service"
	"gatehouse/internal/session"
)

// UserHandler bundles the admin user-management and profile endpoints.
type UserHandler struct {
	svc      service.UserService
	sessions *session.Manager
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService, sessions *session.Manager) *UserHandler {
	return &UserHandler{svc: svc, sessions: sessions}
}

// UserView is the admin listing row; the password never leaves the
// server.
type UserView struct {
	Username    string     `json:"username"`
	Role        model.Role `json:"role"`
	DisplayName string     `json:"displayName"`
	Avatar      string     `json:"avatar"`
}

// RoleUpdateRequest changes one user's role.
type RoleUpdateRequest struct {
	Role model.Role `json:"role" validate:"required"`
}

// BulkDeleteRequest removes a set of users at once.
type BulkDeleteRequest struct {
	Usernames []string `json:"usernames" validate:"required,min=1"`
}

// ProfileUpdateRequest changes the current user's display name and
// avatar. Empty fields are left untouched; avatar "-" clears it.
type ProfileUpdateRequest struct {
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar"`
}

// ListUsers godoc
// @Summary List all users
// @Tags users
// @Produce json
// @Success 200 {array} UserView
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.svc.ListUsers(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, errors.ErrorResponse{
			Error: "failed to list users",
			Code:  "LIST_FAILED",
		})
	}
	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, UserView{
			Username:    u.Username,
			Role:        u.Role,
			DisplayName: u.DisplayName,
			Avatar:      u.Avatar,
		})
	}
	return c.JSON(http.StatusOK, views)
}

// DeleteUser godoc
// @Summary Delete one user
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /users/{username} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	username := c.Param("username")
	if err := h.svc.DeleteUser(c.Request().Context(), username); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, errors.ErrorResponse{
			Error: "failed to delete user",
			Code:  "DELETE_FAILED",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "user deleted successfully",
	})
}

// BulkDeleteUsers godoc
// @Summary Delete a set of users
// @Tags users
// @Accept json
// @Produce json
// @Param request body BulkDeleteRequest true "Usernames to delete"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /users/bulk-delete [post]
func (h *UserHandler) BulkDeleteUsers(c echo.Context) error {
	var req BulkDeleteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.DeleteUsers(c.Request().Context(), req.Usernames); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, errors.ErrorResponse{
			Error: "failed to delete users",
			Code:  "DELETE_FAILED",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "users deleted successfully",
	})
}

// UpdateRole godoc
// @Summary Change a user's role
// @Tags users
// @Accept json
// @Produce json
// @Param username path string true "Username"
// @Param request body RoleUpdateRequest true "New role"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{username}/role [put]
func (h *UserHandler) UpdateRole(c echo.Context) error {
	var req RoleUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	err := h.svc.UpdateRole(c.Request().Context(), c.Param("username"), req.Role)
	if err != nil {
		switch {
		case stderrors.Is(err, service.ErrInvalidRole):
			return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
				Error: err.Error(),
				Code:  "VALIDATION_ERROR",
			})
		case stderrors.Is(err, service.ErrUserNotFound):
			return echo.NewHTTPError(http.StatusNotFound, errors.ErrorResponse{
				Error: err.Error(),
				Code:  "NOT_FOUND",
			})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, errors.ErrorResponse{
			Error: "failed to update role",
			Code:  "ROLE_UPDATE_FAILED",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "user role updated successfully",
	})
}

// UpdateProfile godoc
// @Summary Update the current user's profile
// @Tags users
// @Accept json
// @Produce json
// @Param request body ProfileUpdateRequest true "Profile data"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /profile [put]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	identity, ok := h.sessions.Identity()
	if !ok {
		httpErr := errors.MapErrorToHTTP(errors.ErrUnauthenticated)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	var req ProfileUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	err := h.svc.UpdateProfile(c.Request().Context(), identity.Username, req.DisplayName, req.Avatar)
	if err != nil {
		switch {
		case stderrors.Is(err, service.ErrInvalidDisplayName),
			stderrors.Is(err, service.ErrInvalidAvatar):
			return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
				Error: err.Error(),
				Code:  "VALIDATION_ERROR",
			})
		case stderrors.Is(err, service.ErrUserNotFound):
			return echo.NewHTTPError(http.StatusNotFound, errors.ErrorResponse{
				Error: err.Error(),
				Code:  "NOT_FOUND",
			})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, errors.ErrorResponse{
			Error: "failed to update profile",
			Code:  "PROFILE_UPDATE_FAILED",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "profile updated successfully",
	})
}
