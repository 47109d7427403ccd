package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatehouse/internal/model"
	"gatehouse/internal/store"
)

// mapListCache is an in-process ListCache without TTL handling; enough
// to observe hit, miss, and invalidation behavior.
type mapListCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMapListCache() *mapListCache {
	return &mapListCache{entries: make(map[string][]byte)}
}

func (c *mapListCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[key], nil
}

func (c *mapListCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *mapListCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func newCachedRepo(t *testing.T) (UserRepository, *mapListCache) {
	t.Helper()
	inner := NewDocumentUserRepository(store.NewMemory(), seedFixture())
	lc := newMapListCache()
	return NewCachedUserRepository(inner, lc), lc
}

func TestCachedUserRepository_ListPopulatesCache(t *testing.T) {
	repo, lc := newCachedRepo(t)
	ctx := context.Background()

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, users)

	data, err := lc.Get(ctx, userListCacheKey)
	require.NoError(t, err)
	assert.NotNil(t, data)
}

func TestCachedUserRepository_CreateInvalidatesList(t *testing.T) {
	repo, _ := newCachedRepo(t)
	ctx := context.Background()

	before, err := repo.List(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.Create(ctx, &model.User{
		Username: "fresh", Password: "freshpass", Role: model.RoleUser, DisplayName: "fresh",
	}))

	after, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, after, len(before)+1)

	found := false
	for _, u := range after {
		if u.Username == "fresh" {
			found = true
		}
	}
	assert.True(t, found, "created user missing from a post-create listing")
}

func TestCachedUserRepository_UpdateInvalidatesList(t *testing.T) {
	repo, _ := newCachedRepo(t)
	ctx := context.Background()

	_, err := repo.List(ctx)
	require.NoError(t, err)

	user, err := repo.FindByUsername(ctx, "validUser")
	require.NoError(t, err)
	user.Password = "rotated-secret"
	require.NoError(t, repo.Update(ctx, user))

	after, err := repo.List(ctx)
	require.NoError(t, err)
	for _, u := range after {
		if u.Username == "validUser" {
			assert.Equal(t, "rotated-secret", u.Password)
		}
	}
}

func TestCachedUserRepository_DeleteInvalidatesList(t *testing.T) {
	repo, _ := newCachedRepo(t)
	ctx := context.Background()

	before, err := repo.List(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, "validUser"))

	after, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, after, len(before)-1)
	for _, u := range after {
		assert.NotEqual(t, "validUser", u.Username)
	}
}
