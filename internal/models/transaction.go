package models

import (
	"time"

	"gorm.io/gorm"
)

// Transaction is a finance ledger entry. Only completed entries count towards
// realized income and expense.
type Transaction struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Reference   string         `json:"reference" gorm:"type:varchar(36);uniqueIndex"`
	Date        time.Time      `json:"date" gorm:"type:date;not null;index"`
	Description string         `json:"description" gorm:"not null"`
	Amount      float64        `json:"amount" gorm:"not null"`
	Type        string         `json:"type" gorm:"not null"`           // income, expense
	Status      string         `json:"status" gorm:"default:'pending'"` // completed, pending
	OrderRef    string         `json:"orderRef"`
	OrderID     *uint          `json:"order_id"`
	Category    string         `json:"category"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

type TransactionType string

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

type TransactionStatus string

const (
	TxCompleted TransactionStatus = "completed"
	TxPending   TransactionStatus = "pending"
)
