package repository

import (
	"context"

	"moving_ops/internal/models"

	"gorm.io/gorm"
)

type OfferRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Offer, error)
	GetByOrderServiceID(ctx context.Context, orderServiceID uint) (*models.Offer, error)
	GetByCompanyID(ctx context.Context, companyID uint) ([]models.Offer, error)
}

type offerRepository struct {
	db *gorm.DB
}

func NewOfferRepository(db *gorm.DB) OfferRepository {
	return &offerRepository{db: db}
}

func (r *offerRepository) GetByID(ctx context.Context, id uint) (*models.Offer, error) {
	var offer models.Offer
	err := r.db.WithContext(ctx).First(&offer, id).Error
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *offerRepository) GetByOrderServiceID(ctx context.Context, orderServiceID uint) (*models.Offer, error) {
	var offer models.Offer
	err := r.db.WithContext(ctx).Where("order_service_id = ?", orderServiceID).First(&offer).Error
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *offerRepository) GetByCompanyID(ctx context.Context, companyID uint) ([]models.Offer, error) {
	var offers []models.Offer
	err := r.db.WithContext(ctx).Where("company_id = ?", companyID).Order("id DESC").Find(&offers).Error
	return offers, err
}
