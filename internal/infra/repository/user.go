package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/verseroom/verseroom/internal/domain"
	"github.com/verseroom/verseroom/internal/infra/database/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	row := models.User{
		Handle: user.Handle,
		Role:   string(user.Role),
		Token:  user.Token,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.User{}, domain.ConflictError{Cause: "handle already taken"}
		}
		return domain.User{}, errors.Wrap(err, "failed to create user")
	}
	return userFromModel(row), nil
}

func (r *UserRepository) Get(ctx context.Context, id int64) (domain.User, error) {
	var row models.User
	err := r.db.WithContext(ctx).Take(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.NotFoundError{Resource: "user"}
		}
		return domain.User{}, err
	}
	return userFromModel(row), nil
}

func (r *UserRepository) GetByToken(ctx context.Context, token string) (domain.User, error) {
	var row models.User
	err := r.db.WithContext(ctx).Take(&row, "token = ?", token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.NotFoundError{Resource: "user"}
		}
		return domain.User{}, err
	}
	return userFromModel(row), nil
}

func userFromModel(row models.User) domain.User {
	return domain.User{
		ID:        row.ID,
		Handle:    row.Handle,
		Role:      domain.Role(row.Role),
		Token:     row.Token,
		CreatedAt: row.CreatedAt,
	}
}
