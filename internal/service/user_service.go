package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"gatehouse/internal/model"
	"gatehouse/internal/repository"
	"gatehouse/internal/sanitize"
)

// maxAvatarBytes bounds inline avatar data URIs.
const maxAvatarBytes = 5 * 1024 * 1024

var displayNamePattern = regexp.MustCompile(`^[a-zA-Z0-9\s._-]{2,50}$`)

var (
	// ErrInvalidRole is returned for a role outside admin|user.
	ErrInvalidRole = errors.New("invalid role")
	// ErrInvalidDisplayName is returned when the display name fails
	// the format policy.
	ErrInvalidDisplayName = errors.New("Display name must be 2-50 characters long and contain only letters, numbers, spaces, dots, underscores, and hyphens")
	// ErrInvalidAvatar is returned for a non-data-URI or oversized
	// avatar.
	ErrInvalidAvatar = errors.New("invalid avatar image")
)

// UserService exposes the administration and profile operations.
// Caching, if configured, lives in the repository decorator, so every
// mutation path shares one invalidation point.
type UserService interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	DeleteUser(ctx context.Context, username string) error
	DeleteUsers(ctx context.Context, usernames []string) error
	UpdateRole(ctx context.Context, username string, role model.Role) error
	UpdateProfile(ctx context.Context, username, displayName, avatar string) error
}

type userService struct {
	repo repository.UserRepository
}

// NewUserService builds a UserService over the repository.
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.repo.List(ctx)
}

func (s *userService) DeleteUser(ctx context.Context, username string) error {
	return s.repo.Delete(ctx, username)
}

func (s *userService) DeleteUsers(ctx context.Context, usernames []string) error {
	return s.repo.DeleteMany(ctx, usernames)
}

func (s *userService) UpdateRole(ctx context.Context, username string, role model.Role) error {
	if !role.Valid() {
		return ErrInvalidRole
	}
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	user.Role = role
	return s.repo.Update(ctx, user)
}

// UpdateProfile changes display name and avatar. An empty display name
// or avatar leaves the field untouched; avatar "-" clears it.
func (s *userService) UpdateProfile(ctx context.Context, username, displayName, avatar string) error {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if displayName != "" {
		cleaned := sanitize.Sanitize(displayName)
		if !displayNamePattern.MatchString(cleaned) {
			return ErrInvalidDisplayName
		}
		user.DisplayName = cleaned
	}

	switch {
	case avatar == "":
		// keep current avatar
	case avatar == "-":
		user.Avatar = ""
	default:
		if !strings.HasPrefix(avatar, "data:image/") || len(avatar) > maxAvatarBytes {
			return ErrInvalidAvatar
		}
		user.Avatar = avatar
	}

	return s.repo.Update(ctx, user)
}
