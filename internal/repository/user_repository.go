package repository

import (
	"context"

	"moving_ops/internal/models"

	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByRole(ctx context.Context, role string) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByRole(ctx context.Context, role string) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Where("role = ?", role).Order("id").Find(&users).Error
	return users, err
}

type EmploymentRepository interface {
	Create(ctx context.Context, employment *models.Employment) error
	GetByID(ctx context.Context, id uint) (*models.Employment, error)
	UpdateRate(ctx context.Context, id uint, rate float64, currency string) error
}

type employmentRepository struct {
	db *gorm.DB
}

func NewEmploymentRepository(db *gorm.DB) EmploymentRepository {
	return &employmentRepository{db: db}
}

func (r *employmentRepository) Create(ctx context.Context, employment *models.Employment) error {
	return r.db.WithContext(ctx).Create(employment).Error
}

func (r *employmentRepository) GetByID(ctx context.Context, id uint) (*models.Employment, error) {
	var employment models.Employment
	err := r.db.WithContext(ctx).First(&employment, id).Error
	if err != nil {
		return nil, err
	}
	return &employment, nil
}

func (r *employmentRepository) UpdateRate(ctx context.Context, id uint, rate float64, currency string) error {
	return r.db.WithContext(ctx).Model(&models.Employment{}).Where("id = ?", id).Updates(map[string]interface{}{
		"rate":     rate,
		"currency": currency,
	}).Error
}
