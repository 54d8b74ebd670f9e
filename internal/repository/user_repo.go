package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/nretrorsum/work-test/internal/apperr"
	"github.com/nretrorsum/work-test/internal/model"
)

// UserRepository is the credential store.
type UserRepository interface {
	// Register inserts u. A taken username yields an apperr.Conflict.
	Register(ctx context.Context, u *model.User) error
	// FindByUsername returns (nil, nil) when no user has that username.
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	Delete(ctx context.Context, username string) (bool, error)
}

type userRepo struct{ db *gorm.DB }

var _ UserRepository = (*userRepo)(nil)

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepo{db: db} }

func (r *userRepo) Register(ctx context.Context, u *model.User) error {
	err := r.db.WithContext(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflictf("username %q already exists", u.Username)
	}
	return classify(err, "failed to register user")
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	res := r.db.WithContext(ctx).Where("username = ?", username).Limit(1).Find(&u)
	if res.Error != nil {
		return nil, classify(res.Error, "failed to look up user")
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &u, nil
}

func (r *userRepo) Delete(ctx context.Context, username string) (bool, error) {
	res := r.db.WithContext(ctx).Where("username = ?", username).Delete(&model.User{})
	if res.Error != nil {
		return false, classify(res.Error, "failed to delete user")
	}
	return res.RowsAffected > 0, nil
}
