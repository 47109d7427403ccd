package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatehouse/internal/errors"
	"gatehouse/internal/model"
	"gatehouse/internal/service"
)

// stubAuthService returns a fixed error from every credential
// operation, letting tests exercise the handler's error mapping.
type stubAuthService struct {
	err error
}

func (s *stubAuthService) Login(context.Context, string, string) (model.Identity, error) {
	return model.Identity{}, s.err
}
func (s *stubAuthService) Register(context.Context, string, string) error { return s.err }
func (s *stubAuthService) Logout(context.Context) error                   { return s.err }
func (s *stubAuthService) ChangePassword(context.Context, string, string, string) error {
	return s.err
}
func (s *stubAuthService) ResetPassword(context.Context, string, string, string) error {
	return s.err
}
func (s *stubAuthService) IsRateLimited(string) bool   { return false }
func (s *stubAuthService) IssueCSRFToken() string      { return "token" }
func (s *stubAuthService) ValidateCSRFToken(string) bool { return true }

var usernameTestPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,20}$`)

type requestValidator struct {
	v *validator.Validate
}

func (r *requestValidator) Validate(i interface{}) error {
	return r.v.Struct(i)
}

func postJSON(t *testing.T, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	v := validator.New()
	// same format rule the router registers
	require.NoError(t, v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameTestPattern.MatchString(fl.Field().String())
	}))
	e := echo.New()
	e.Validator = &requestValidator{v: v}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_LoginMapsWrappedErrors(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedID   string
	}{
		{
			name:         "rate limited",
			err:          fmt.Errorf("login: %w", service.ErrRateLimited),
			expectedCode: http.StatusTooManyRequests,
			expectedID:   "TOO_MANY_ATTEMPTS",
		},
		{
			name:         "invalid credentials",
			err:          fmt.Errorf("login: %w", service.ErrInvalidCredentials),
			expectedCode: http.StatusUnauthorized,
			expectedID:   "INVALID_CREDENTIALS",
		},
		{
			name:         "rejected input",
			err:          fmt.Errorf("login: %w", service.ErrInvalidInput),
			expectedCode: http.StatusBadRequest,
			expectedID:   "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&stubAuthService{err: tt.err})
			c, _ := postJSON(t, `{"username":"alice","password":"secret1"}`)

			err := h.Login(c)
			require.Error(t, err)

			he, ok := err.(*echo.HTTPError)
			require.True(t, ok)
			assert.Equal(t, tt.expectedCode, he.Code)

			resp, ok := he.Message.(errors.ErrorResponse)
			require.True(t, ok)
			assert.Equal(t, tt.expectedID, resp.Code)
		})
	}
}

func TestAuthHandler_RegisterMapsWrappedConflict(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{err: fmt.Errorf("register: %w", service.ErrUserAlreadyExists)})
	c, _ := postJSON(t, `{"username":"alice","password":"secret1"}`)

	err := h.Register(c)
	require.Error(t, err)

	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Code)
}
