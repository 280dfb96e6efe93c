package repository

import (
	"context"

	"gorm.io/gorm"

	"studiobooking/internal/domain"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	if tx := r.db.WithContext(ctx).Where("email = ?", email).First(&u); tx.Error != nil {
		return nil, tx.Error
	}
	return &u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	if tx := r.db.WithContext(ctx).First(&u, id); tx.Error != nil {
		return nil, tx.Error
	}
	return &u, nil
}
