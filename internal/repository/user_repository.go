package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gatehouse/internal/model"
	"gatehouse/internal/store"
)

var (
	// ErrNotFound is returned when no record matches the username.
	ErrNotFound = errors.New("user record not found")
	// ErrAlreadyExists is returned when creating a duplicate username.
	ErrAlreadyExists = errors.New("username already exists")
)

// UserRepository defines persistence operations over the user table.
// Username matching is case-sensitive and exact throughout.
type UserRepository interface {
	List(ctx context.Context) ([]model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, username string) error
	DeleteMany(ctx context.Context, usernames []string) error
}

// documentUserRepository keeps the user table as one JSON document
// under the "users" key. Every mutation is a whole-document
// read-modify-write; concurrent writers race with last-write-wins.
type documentUserRepository struct {
	docs store.DocumentStore
	seed []model.User
}

// NewDocumentUserRepository builds a document-backed repository. When
// the "users" document is absent, reads fall back to the seed dataset;
// the first mutation persists it.
func NewDocumentUserRepository(docs store.DocumentStore, seed []model.User) UserRepository {
	return &documentUserRepository{docs: docs, seed: seed}
}

func (r *documentUserRepository) load(ctx context.Context) ([]model.User, error) {
	data, err := r.docs.Get(ctx, store.KeyUsers)
	if err != nil {
		return nil, fmt.Errorf("read users doc: %w", err)
	}
	if data == nil {
		users := make([]model.User, len(r.seed))
		copy(users, r.seed)
		return users, nil
	}
	var users []model.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("decode users doc: %w", err)
	}
	for i := range users {
		normalize(&users[i])
	}
	return users, nil
}

func (r *documentUserRepository) save(ctx context.Context, users []model.User) error {
	data, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("encode users doc: %w", err)
	}
	if err := r.docs.Set(ctx, store.KeyUsers, data); err != nil {
		return fmt.Errorf("write users doc: %w", err)
	}
	return nil
}

func (r *documentUserRepository) List(ctx context.Context) ([]model.User, error) {
	return r.load(ctx)
}

func (r *documentUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Username == username {
			return &users[i], nil
		}
	}
	return nil, ErrNotFound
}

func (r *documentUserRepository) Create(ctx context.Context, user *model.User) error {
	users, err := r.load(ctx)
	if err != nil {
		return err
	}
	for i := range users {
		if users[i].Username == user.Username {
			return ErrAlreadyExists
		}
	}
	users = append(users, *user)
	return r.save(ctx, users)
}

func (r *documentUserRepository) Update(ctx context.Context, user *model.User) error {
	users, err := r.load(ctx)
	if err != nil {
		return err
	}
	for i := range users {
		if users[i].Username == user.Username {
			users[i] = *user
			return r.save(ctx, users)
		}
	}
	return ErrNotFound
}

func (r *documentUserRepository) Delete(ctx context.Context, username string) error {
	return r.DeleteMany(ctx, []string{username})
}

func (r *documentUserRepository) DeleteMany(ctx context.Context, usernames []string) error {
	users, err := r.load(ctx)
	if err != nil {
		return err
	}
	drop := make(map[string]struct{}, len(usernames))
	for _, u := range usernames {
		drop[u] = struct{}{}
	}
	kept := users[:0]
	for _, u := range users {
		if _, gone := drop[u.Username]; !gone {
			kept = append(kept, u)
		}
	}
	return r.save(ctx, kept)
}
