package repository

import (
	"context"

	"moving_ops/internal/models"

	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uint) (*models.Order, error)
	GetByClientID(ctx context.Context, clientID uint) ([]models.Order, error)
	GetByCompanyID(ctx context.Context, companyID uint) ([]models.Order, error)
	GetAll(ctx context.Context) ([]models.Order, error)
	SaveLifecycle(ctx context.Context, order *models.Order, lines []models.OrderService, offer *models.Offer) error
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) withDetails(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Client").
		Preload("OrderServices").
		Preload("OrderServices.Service").
		Preload("OrderServices.Company").
		Preload("OrderServices.Offer")
}

// Create stores the order together with its service lines.
func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepository) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.withDetails(ctx).First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByClientID(ctx context.Context, clientID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.withDetails(ctx).Where("client_id = ?", clientID).Order("id DESC").Find(&orders).Error
	return orders, err
}

func (r *orderRepository) GetByCompanyID(ctx context.Context, companyID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.withDetails(ctx).
		Where("id IN (?)", r.db.Model(&models.OrderService{}).Select("order_id").Where("company_id = ?", companyID)).
		Order("id DESC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) GetAll(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := r.withDetails(ctx).Order("id DESC").Find(&orders).Error
	return orders, err
}

// SaveLifecycle persists a lifecycle step atomically: the touched service
// lines, the optional offer and the order's recomputed status.
func (r *orderRepository) SaveLifecycle(ctx context.Context, order *models.Order, lines []models.OrderService, offer *models.Offer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if offer != nil {
			if err := tx.Save(offer).Error; err != nil {
				return err
			}
		}
		for i := range lines {
			line := lines[i]
			err := tx.Model(&models.OrderService{}).Where("id = ?", line.ID).Updates(map[string]interface{}{
				"company_id": line.CompanyID,
				"status":     line.Status,
				"price":      line.Price,
			}).Error
			if err != nil {
				return err
			}
		}
		return tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
			"status":         order.Status,
			"preferred_date": order.PreferredDate,
			"preferred_time": order.PreferredTime,
		}).Error
	})
}
