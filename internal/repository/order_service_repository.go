package repository

import (
	"context"

	"moving_ops/internal/models"

	"gorm.io/gorm"
)

type OrderServiceRepository interface {
	GetByID(ctx context.Context, id uint) (*models.OrderService, error)
}

type orderServiceRepository struct {
	db *gorm.DB
}

func NewOrderServiceRepository(db *gorm.DB) OrderServiceRepository {
	return &orderServiceRepository{db: db}
}

func (r *orderServiceRepository) GetByID(ctx context.Context, id uint) (*models.OrderService, error) {
	var line models.OrderService
	err := r.db.WithContext(ctx).Preload("Offer").First(&line, id).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}
