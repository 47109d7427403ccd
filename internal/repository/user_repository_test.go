package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatehouse/internal/model"
	"gatehouse/internal/store"
)

func seedFixture() []model.User {
	return []model.User{
		{Username: "admin", Password: "adminpassword", Role: model.RoleAdmin, DisplayName: "Administrator"},
		{Username: "validUser", Password: "validpassword", Role: model.RoleUser, DisplayName: "validUser"},
	}
}

func newTestRepo() (UserRepository, *store.Memory) {
	docs := store.NewMemory()
	return NewDocumentUserRepository(docs, seedFixture()), docs
}

func TestSeedUsers(t *testing.T) {
	users := SeedUsers()
	require.NotEmpty(t, users)

	byName := make(map[string]model.User, len(users))
	for _, u := range users {
		// defaults applied during normalization
		assert.True(t, u.Role.Valid())
		assert.NotEmpty(t, u.DisplayName)
		byName[u.Username] = u
	}
	admin, ok := byName["admin"]
	require.True(t, ok)
	assert.Equal(t, model.RoleAdmin, admin.Role)
}

func TestDocumentRepository_SeedFallback(t *testing.T) {
	repo, docs := newTestRepo()
	ctx := context.Background()

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	// reads alone do not materialize the document
	data, err := docs.Get(ctx, store.KeyUsers)
	require.NoError(t, err)
	assert.Nil(t, data)

	// the first mutation persists seed plus the new record
	require.NoError(t, repo.Create(ctx, &model.User{Username: "carol", Password: "secret1", Role: model.RoleUser, DisplayName: "carol"}))
	data, err = docs.Get(ctx, store.KeyUsers)
	require.NoError(t, err)
	assert.NotNil(t, data)

	users, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)
}

func TestDocumentRepository_FindByUsername(t *testing.T) {
	repo, _ := newTestRepo()
	ctx := context.Background()

	user, err := repo.FindByUsername(ctx, "validUser")
	require.NoError(t, err)
	assert.Equal(t, "validpassword", user.Password)

	// matching is case-sensitive and exact
	_, err = repo.FindByUsername(ctx, "validuser")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.FindByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDocumentRepository_CreateDuplicate(t *testing.T) {
	repo, _ := newTestRepo()
	ctx := context.Background()

	err := repo.Create(ctx, &model.User{Username: "admin", Password: "other"})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestDocumentRepository_Update(t *testing.T) {
	repo, _ := newTestRepo()
	ctx := context.Background()

	user, err := repo.FindByUsername(ctx, "validUser")
	require.NoError(t, err)
	user.Password = "changed1"
	require.NoError(t, repo.Update(ctx, user))

	reread, err := repo.FindByUsername(ctx, "validUser")
	require.NoError(t, err)
	assert.Equal(t, "changed1", reread.Password)

	err = repo.Update(ctx, &model.User{Username: "ghost"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDocumentRepository_DeleteMany(t *testing.T) {
	repo, _ := newTestRepo()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.User{Username: "carol", Password: "secret1"}))
	require.NoError(t, repo.DeleteMany(ctx, []string{"validUser", "carol"}))

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "admin", users[0].Username)

	// deleting absent usernames is silent
	require.NoError(t, repo.Delete(ctx, "ghost"))
}
