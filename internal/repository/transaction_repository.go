package repository

import (
	"context"
	"time"

	"moving_ops/internal/models"

	"gorm.io/gorm"
)

type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	GetByID(ctx context.Context, id uint) (*models.Transaction, error)
	GetByDateRange(ctx context.Context, startDate, endDate time.Time) ([]models.Transaction, error)
}

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

func (r *transactionRepository) GetByID(ctx context.Context, id uint) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.db.WithContext(ctx).First(&tx, id).Error
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// GetByDateRange returns transactions dated within the given days, newest
// first. Bounds are widened to whole days.
func (r *transactionRepository) GetByDateRange(ctx context.Context, startDate, endDate time.Time) ([]models.Transaction, error) {
	start := time.Date(startDate.Year(), startDate.Month(), startDate.Day(), 0, 0, 0, 0, startDate.Location())
	end := time.Date(endDate.Year(), endDate.Month(), endDate.Day(), 0, 0, 0, 0, endDate.Location()).AddDate(0, 0, 1)

	var txs []models.Transaction
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date < ?", start, end).
		Order("date DESC, id DESC").
		Find(&txs).Error
	return txs, err
}
