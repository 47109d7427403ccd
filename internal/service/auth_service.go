package service

import (
	"context"
	"errors"

	"gatehouse/internal/auth"
	"gatehouse/internal/model"
	"gatehouse/internal/repository"
	"gatehouse/internal/sanitize"
	"gatehouse/internal/session"
)

// minPasswordLength applies to password change and reset; registration
// length policy lives at the request-binding layer.
const minPasswordLength = 6

// Sentinel errors double as the user-facing message strings the
// consuming surface renders, so their wording is part of the contract.
var (
	// ErrInvalidInput is returned when input fails the danger screen.
	ErrInvalidInput = errors.New("Invalid input data.")
	// ErrInvalidCredentials is returned when username or password is
	// incorrect.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrRateLimited is returned when a username is out of attempts.
	ErrRateLimited = errors.New("too many login attempts")
	// ErrUserAlreadyExists is returned when registering a taken name.
	ErrUserAlreadyExists = errors.New("This username already exists.")
	// ErrNotLoggedIn is returned when an operation requires a session.
	ErrNotLoggedIn = errors.New("You must be logged in.")
	// ErrUserNotFound is returned when the target record is missing.
	ErrUserNotFound = errors.New("User does not exist.")
	// ErrOldPasswordIncorrect is returned on old password mismatch.
	ErrOldPasswordIncorrect = errors.New("Old password is incorrect.")
	// ErrPasswordTooShort is returned when the new password violates
	// the length policy.
	ErrPasswordTooShort = errors.New("New password must be at least 6 characters.")
	// ErrPasswordMismatch is returned when new and repeat differ.
	ErrPasswordMismatch = errors.New("New passwords do not match.")
)

// AuthService composes the credential store, rate limiter, CSRF
// registry, and session manager into the operations the HTTP surface
// consumes. All operations run to completion synchronously; callers
// check the returned error.
type AuthService interface {
	Login(ctx context.Context, username, password string) (model.Identity, error)
	Register(ctx context.Context, username, password string) error
	Logout(ctx context.Context) error
	ChangePassword(ctx context.Context, oldPass, newPass, repeat string) error
	ResetPassword(ctx context.Context, username, newPass, repeat string) error
	IsRateLimited(username string) bool
	IssueCSRFToken() string
	ValidateCSRFToken(token string) bool
}

type authService struct {
	users    repository.UserRepository
	sessions *session.Manager
	limiter  *auth.RateLimiter
	csrf     *auth.CSRFRegistry
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, sessions *session.Manager, limiter *auth.RateLimiter, csrf *auth.CSRFRegistry) AuthService {
	return &authService{
		users:    users,
		sessions: sessions,
		limiter:  limiter,
		csrf:     csrf,
	}
}

// Login checks credentials and establishes a session. Inputs failing
// the danger screen are rejected before any attempt slot is consumed;
// a credential mismatch has already consumed one.
func (s *authService) Login(ctx context.Context, username, password string) (model.Identity, error) {
	sanitizedUsername := sanitize.Sanitize(username)
	sanitizedPassword := sanitize.Sanitize(password)

	if !sanitize.Validate(sanitizedUsername) || !sanitize.Validate(sanitizedPassword) {
		return model.Identity{}, ErrInvalidInput
	}

	if !s.limiter.Allow(sanitizedUsername) {
		return model.Identity{}, ErrRateLimited
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return model.Identity{}, err
	}
	for _, u := range users {
		if u.Username == sanitizedUsername && u.Password == sanitizedPassword {
			identity := model.Identity{Username: u.Username, Role: u.Role}
			if err := s.sessions.Start(ctx, identity); err != nil {
				return model.Identity{}, err
			}
			s.limiter.Clear(sanitizedUsername)
			return identity, nil
		}
	}
	return model.Identity{}, ErrInvalidCredentials
}

// Register appends a new user record with the "user" role.
func (s *authService) Register(ctx context.Context, username, password string) error {
	sanitizedUsername := sanitize.Sanitize(username)
	sanitizedPassword := sanitize.Sanitize(password)

	if !sanitize.Validate(sanitizedUsername) || !sanitize.Validate(sanitizedPassword) {
		return ErrInvalidInput
	}

	user := &model.User{
		Username:    sanitizedUsername,
		Password:    sanitizedPassword,
		Role:        model.RoleUser,
		DisplayName: sanitizedUsername,
		Avatar:      "",
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return ErrUserAlreadyExists
		}
		return err
	}
	return nil
}

// Logout ends the session, drops every CSRF token, and resets all
// rate-limit counters, not just the current user's.
func (s *authService) Logout(ctx context.Context) error {
	if err := s.sessions.End(ctx); err != nil {
		return err
	}
	s.csrf.Clear()
	s.limiter.Reset()
	return nil
}

// ChangePassword overwrites the current user's password. Checks apply
// in a fixed priority order; the first failure wins.
func (s *authService) ChangePassword(ctx context.Context, oldPass, newPass, repeat string) error {
	identity, ok := s.sessions.Identity()
	if !ok {
		return ErrNotLoggedIn
	}

	sanitizedOld := sanitize.Sanitize(oldPass)
	sanitizedNew := sanitize.Sanitize(newPass)
	sanitizedRepeat := sanitize.Sanitize(repeat)

	if !sanitize.Validate(sanitizedOld) || !sanitize.Validate(sanitizedNew) || !sanitize.Validate(sanitizedRepeat) {
		return ErrInvalidInput
	}

	user, err := s.users.FindByUsername(ctx, identity.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if user.Password != sanitizedOld {
		return ErrOldPasswordIncorrect
	}
	if len(sanitizedNew) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if sanitizedNew != sanitizedRepeat {
		return ErrPasswordMismatch
	}

	user.Password = sanitizedNew
	return s.users.Update(ctx, user)
}

// ResetPassword overwrites a user's password by username, with no
// session and no proof of identity. That is the demo's actual
// behavior, not an oversight worth hardening here.
func (s *authService) ResetPassword(ctx context.Context, username, newPass, repeat string) error {
	if len(newPass) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if newPass != repeat {
		return ErrPasswordMismatch
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	user.Password = newPass
	return s.users.Update(ctx, user)
}

// IsRateLimited is the read-only rate-limit probe for the login form.
func (s *authService) IsRateLimited(username string) bool {
	return s.limiter.IsBlocked(username)
}

// IssueCSRFToken mints a form token valid until logout.
func (s *authService) IssueCSRFToken() string {
	return s.csrf.Issue()
}

// ValidateCSRFToken reports whether token is in the active set.
func (s *authService) ValidateCSRFToken(token string) bool {
	return s.csrf.Validate(token)
}
