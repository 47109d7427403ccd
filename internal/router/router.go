package router

import (
	"net/http"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"gatehouse/internal/config"
	"gatehouse/internal/handler"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,20}$`)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	guard *Guard,
	authHandler *handler.AuthHandler,
	sessionHandler *handler.SessionHandler,
	userHandler *handler.UserHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = NewValidator()

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/reset-password", authHandler.ResetPassword)

	// Secured routes (require an active session; mutations also carry
	// a form token)
	secured := api.Group("", guard.RequireSession(), guard.VerifyCSRF())

	secured.POST("/auth/logout", authHandler.Logout)
	secured.POST("/auth/change-password", authHandler.ChangePassword)
	secured.GET("/auth/csrf", authHandler.CSRFToken)

	secured.GET("/session", sessionHandler.Get)
	secured.POST("/session/activity", sessionHandler.Activity)

	secured.PUT("/profile", userHandler.UpdateProfile)

	// Admin-only user management
	admin := secured.Group("/users", guard.RequireAdmin())
	admin.GET("", userHandler.ListUsers)
	admin.DELETE("/:username", userHandler.DeleteUser)
	admin.POST("/bulk-delete", userHandler.BulkDeleteUsers)
	admin.PUT("/:username/role", userHandler.UpdateRole)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator builds the request validator with the username format
// rule registered.
func NewValidator() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
