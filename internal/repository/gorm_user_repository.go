package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"gatehouse/internal/model"
)

// gormUserRepository is a relational alternative to the document
// repository, for deployments that substitute a real database for the
// local document store. Callers see the same UserRepository contract.
type gormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository builds a GORM-backed repository.
func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *gormUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormUserRepository) Create(ctx context.Context, user *model.User) error {
	existing, err := r.FindByUsername(ctx, user.Username)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if existing != nil {
		return ErrAlreadyExists
	}
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *gormUserRepository) Update(ctx context.Context, user *model.User) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("username = ?", user.Username).
		Updates(map[string]interface{}{
			"password":     user.Password,
			"role":         user.Role,
			"display_name": user.DisplayName,
			"avatar":       user.Avatar,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormUserRepository) Delete(ctx context.Context, username string) error {
	return r.db.WithContext(ctx).Where("username = ?", username).Delete(&model.User{}).Error
}

func (r *gormUserRepository) DeleteMany(ctx context.Context, usernames []string) error {
	if len(usernames) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("username IN ?", usernames).Delete(&model.User{}).Error
}
