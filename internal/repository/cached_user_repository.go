package repository

import (
	"context"
	"encoding/json"
	"time"

	"gatehouse/internal/model"
)

const (
	userListCacheKey = "gatehouse:users"
	userListCacheTTL = 5 * time.Minute
)

// ListCache is the cache surface used for the decoded user list. It is
// satisfied by the redis cache client; implementations must treat
// failures as misses.
type ListCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// cachedUserRepository decorates a UserRepository with a read cache on
// List. Every mutation drops the cached list, whichever caller
// performed it, so listings never serve records a concurrent write
// already removed or added.
type cachedUserRepository struct {
	inner UserRepository
	cache ListCache
}

// NewCachedUserRepository wraps inner with list caching.
func NewCachedUserRepository(inner UserRepository, cache ListCache) UserRepository {
	return &cachedUserRepository{inner: inner, cache: cache}
}

func (r *cachedUserRepository) List(ctx context.Context) ([]model.User, error) {
	if data, _ := r.cache.Get(ctx, userListCacheKey); data != nil {
		var cached []model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	users, err := r.inner.List(ctx)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(users); err == nil {
		_ = r.cache.Set(ctx, userListCacheKey, payload, userListCacheTTL)
	}
	return users, nil
}

func (r *cachedUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.inner.FindByUsername(ctx, username)
}

func (r *cachedUserRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.inner.Create(ctx, user); err != nil {
		return err
	}
	_ = r.cache.Delete(ctx, userListCacheKey)
	return nil
}

func (r *cachedUserRepository) Update(ctx context.Context, user *model.User) error {
	if err := r.inner.Update(ctx, user); err != nil {
		return err
	}
	_ = r.cache.Delete(ctx, userListCacheKey)
	return nil
}

func (r *cachedUserRepository) Delete(ctx context.Context, username string) error {
	if err := r.inner.Delete(ctx, username); err != nil {
		return err
	}
	_ = r.cache.Delete(ctx, userListCacheKey)
	return nil
}

func (r *cachedUserRepository) DeleteMany(ctx context.Context, usernames []string) error {
	if err := r.inner.DeleteMany(ctx, usernames); err != nil {
		return err
	}
	_ = r.cache.Delete(ctx, userListCacheKey)
	return nil
}
