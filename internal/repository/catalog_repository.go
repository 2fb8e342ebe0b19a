package repository

import (
	"context"

	"moving_ops/internal/models"

	"gorm.io/gorm"
)

// CatalogRepository covers the companies and services orders refer to.
type CatalogRepository interface {
	CreateCompany(ctx context.Context, company *models.Company) error
	GetCompanyByID(ctx context.Context, id uint) (*models.Company, error)
	CreateService(ctx context.Context, service *models.Service) error
	GetServiceByName(ctx context.Context, name string) (*models.Service, error)
	GetServices(ctx context.Context) ([]models.Service, error)
}

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) CreateCompany(ctx context.Context, company *models.Company) error {
	return r.db.WithContext(ctx).Create(company).Error
}

func (r *catalogRepository) GetCompanyByID(ctx context.Context, id uint) (*models.Company, error) {
	var company models.Company
	err := r.db.WithContext(ctx).First(&company, id).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *catalogRepository) CreateService(ctx context.Context, service *models.Service) error {
	return r.db.WithContext(ctx).Create(service).Error
}

func (r *catalogRepository) GetServiceByName(ctx context.Context, name string) (*models.Service, error) {
	var service models.Service
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&service).Error
	if err != nil {
		return nil, err
	}
	return &service, nil
}

func (r *catalogRepository) GetServices(ctx context.Context) ([]models.Service, error) {
	var services []models.Service
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("name").Find(&services).Error
	return services, err
}
