package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatehouse/internal/auth"
	"gatehouse/internal/model"
	"gatehouse/internal/repository"
	"gatehouse/internal/session"
	"gatehouse/internal/store"
)

type authFixture struct {
	svc      AuthService
	users    repository.UserRepository
	sessions *session.Manager
	docs     *store.Memory
	clock    *session.FakeClock
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	clock := session.NewFakeClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	docs := store.NewMemory()
	users := repository.NewDocumentUserRepository(docs, []model.User{
		{Username: "admin", Password: "adminpassword", Role: model.RoleAdmin, DisplayName: "Administrator"},
		{Username: "validUser", Password: "validpassword", Role: model.RoleUser, DisplayName: "validUser"},
	})
	sessions := session.NewManager(docs, clock, session.Config{})
	limiter := auth.NewRateLimiter(auth.DefaultMaxAttempts, auth.DefaultAttemptWindow, clock.Now)
	csrf := auth.NewCSRFRegistry(clock.Now)
	return &authFixture{
		svc:      NewAuthService(users, sessions, limiter, csrf),
		users:    users,
		sessions: sessions,
		docs:     docs,
		clock:    clock,
	}
}

func TestAuthService_Login(t *testing.T) {
	tests := []struct {
		name          string
		username      string
		password      string
		expectedError error
		expectedRole  model.Role
	}{
		{
			name:         "successful login",
			username:     "admin",
			password:     "adminpassword",
			expectedRole: model.RoleAdmin,
		},
		{
			name:          "wrong password",
			username:      "admin",
			password:      "nope",
			expectedError: ErrInvalidCredentials,
		},
		{
			name:          "unknown username",
			username:      "ghost",
			password:      "whatever",
			expectedError: ErrInvalidCredentials,
		},
		{
			name:     "username is matched case-sensitively",
			username: "Admin",
			password: "adminpassword",

			expectedError: ErrInvalidCredentials,
		},
		{
			// stripping the inner occurrence re-forms the outer one,
			// so the sanitized value still fails the danger screen
			name:          "dangerous input rejected before any attempt",
			username:      "jjavascript:avascript:x",
			password:      "adminpassword",
			expectedError: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)

			identity, err := f.svc.Login(context.Background(), tt.username, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)

				_, ok := f.sessions.Identity()
				assert.False(t, ok)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.username, identity.Username)
			assert.Equal(t, tt.expectedRole, identity.Role)

			// the identity is persisted under the "user" key
			data, err := f.docs.Get(context.Background(), store.KeyUser)
			require.NoError(t, err)
			assert.NotNil(t, data)
		})
	}
}

func TestAuthService_LoginRateLimited(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := f.svc.Login(ctx, "admin", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	// sixth attempt is blocked even with the correct password
	_, err := f.svc.Login(ctx, "admin", "adminpassword")
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.True(t, f.svc.IsRateLimited("admin"))

	// the window elapsing lifts the block
	f.clock.Advance(auth.DefaultAttemptWindow + time.Second)
	assert.False(t, f.svc.IsRateLimited("admin"))
	_, err = f.svc.Login(ctx, "admin", "adminpassword")
	assert.NoError(t, err)
}

func TestAuthService_SuccessResetsAttemptCounter(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := f.svc.Login(ctx, "admin", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	_, err := f.svc.Login(ctx, "admin", "adminpassword")
	require.NoError(t, err)

	// a fresh budget of five attempts after the success
	for i := 0; i < 5; i++ {
		_, err := f.svc.Login(ctx, "admin", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
	_, err = f.svc.Login(ctx, "admin", "wrong")
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestAuthService_RegisterThenLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Register(ctx, "carol", "secret97"))

	user, err := f.users.FindByUsername(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.Equal(t, "carol", user.DisplayName)
	assert.Empty(t, user.Avatar)

	identity, err := f.svc.Login(ctx, "carol", "secret97")
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, identity.Role)
}

func TestAuthService_RegisterDuplicate(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Register(ctx, "carol", "secret97"))

	before, err := f.users.List(ctx)
	require.NoError(t, err)

	err = f.svc.Register(ctx, "carol", "othersecret")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	after, err := f.users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, after, len(before))
}

func TestAuthService_RegisterInvalidInput(t *testing.T) {
	f := newAuthFixture(t)

	err := f.svc.Register(context.Background(), "jjavascript:avascript:x", "secret97")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAuthService_ChangePassword(t *testing.T) {
	tests := []struct {
		name          string
		login         bool
		oldPass       string
		newPass       string
		repeat        string
		expectedError error
	}{
		{
			name:    "successful change",
			login:   true,
			oldPass: "adminpassword",
			newPass: "freshpass",
			repeat:  "freshpass",
		},
		{
			name:          "requires an active session",
			login:         false,
			oldPass:       "adminpassword",
			newPass:       "freshpass",
			repeat:        "freshpass",
			expectedError: ErrNotLoggedIn,
		},
		{
			name:          "old password must match exactly",
			login:         true,
			oldPass:       "Adminpassword",
			newPass:       "freshpass",
			repeat:        "freshpass",
			expectedError: ErrOldPasswordIncorrect,
		},
		{
			name:          "new password too short",
			login:         true,
			oldPass:       "adminpassword",
			newPass:       "abc",
			repeat:        "abc",
			expectedError: ErrPasswordTooShort,
		},
		{
			name:          "repeat must match",
			login:         true,
			oldPass:       "adminpassword",
			newPass:       "freshpass",
			repeat:        "different",
			expectedError: ErrPasswordMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			ctx := context.Background()

			if tt.login {
				_, err := f.svc.Login(ctx, "admin", "adminpassword")
				require.NoError(t, err)
			}

			err := f.svc.ChangePassword(ctx, tt.oldPass, tt.newPass, tt.repeat)

			stored, findErr := f.users.FindByUsername(ctx, "admin")
			require.NoError(t, findErr)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Equal(t, "adminpassword", stored.Password)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.newPass, stored.Password)
		})
	}
}

func TestAuthService_Logout(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.Login(ctx, "admin", "adminpassword")
	require.NoError(t, err)

	token := f.svc.IssueCSRFToken()
	require.True(t, f.svc.ValidateCSRFToken(token))

	// burn some attempts for another username
	for i := 0; i < 5; i++ {
		_, _ = f.svc.Login(ctx, "validUser", "wrong")
	}
	require.True(t, f.svc.IsRateLimited("validUser"))

	require.NoError(t, f.svc.Logout(ctx))

	_, ok := f.sessions.Identity()
	assert.False(t, ok)

	data, err := f.docs.Get(ctx, store.KeyUser)
	require.NoError(t, err)
	assert.Nil(t, data)

	// every issued token is invalidated
	assert.False(t, f.svc.ValidateCSRFToken(token))

	// every rate counter is dropped, not just the current user's
	assert.False(t, f.svc.IsRateLimited("validUser"))
}

func TestAuthService_ResetPassword(t *testing.T) {
	tests := []struct {
		name          string
		username      string
		password      string
		repeat        string
		expectedError error
	}{
		{
			name:     "successful reset",
			username: "validUser",
			password: "brandnew",
			repeat:   "brandnew",
		},
		{
			name:          "password too short",
			username:      "validUser",
			password:      "abc",
			repeat:        "abc",
			expectedError: ErrPasswordTooShort,
		},
		{
			name:          "repeat must match",
			username:      "validUser",
			password:      "brandnew",
			repeat:        "different",
			expectedError: ErrPasswordMismatch,
		},
		{
			name:          "unknown user",
			username:      "ghost",
			password:      "brandnew",
			repeat:        "brandnew",
			expectedError: ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			ctx := context.Background()

			err := f.svc.ResetPassword(ctx, tt.username, tt.password, tt.repeat)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)

			stored, err := f.users.FindByUsername(ctx, tt.username)
			require.NoError(t, err)
			assert.Equal(t, tt.password, stored.Password)
		})
	}
}
