package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Order is a moving job requested by a client. Status always holds one of the
// canonical statuses; the finer UI status lives on each service line.
type Order struct {
	ID                    uint                        `json:"id" gorm:"primaryKey"`
	Status                string                      `json:"status" gorm:"default:'pending';index"` // pending, in_progress, partially_done, completed, cancelled
	ClientID              uint                        `json:"client_id" gorm:"not null;index"`
	Client                *User                       `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	LocationID            uint                        `json:"location_id" gorm:"not null"`
	DestinationLocationID *uint                       `json:"destination_location_id"`
	PreferredDate         string                      `json:"preferred_date" gorm:"type:varchar(10);not null"` // YYYY-MM-DD
	PreferredTime         string                      `json:"preferred_time" gorm:"type:varchar(8);not null"`  // HH:MM:SS
	NumberOfRooms         float64                     `json:"number_of_rooms" gorm:"default:0"`
	Notes                 string                      `json:"notes"`
	Images                datatypes.JSONSlice[string] `json:"images"`
	OrderServices         []OrderService              `json:"orderServices" gorm:"foreignKey:OrderID"`
	CreatedAt             time.Time                   `json:"createdAt"`
	UpdatedAt             time.Time                   `json:"updatedAt"`
	DeletedAt             gorm.DeletedAt              `json:"-" gorm:"index"`
}

// OrderService is one service line of an order, assigned and priced on its own.
type OrderService struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	OrderID   uint      `json:"order_id" gorm:"not null;index"`
	ServiceID uint      `json:"service_id" gorm:"not null"`
	Service   *Service  `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
	CompanyID *uint     `json:"company_id"`
	Company   *Company  `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
	Status    string    `json:"status" gorm:"default:'pending'"` // UI status of the line
	Price     *float64  `json:"price"`
	Offer     *Offer    `json:"offer,omitempty" gorm:"foreignKey:OrderServiceID"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Offer is a company's price proposal for one service line.
type Offer struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	OrderServiceID uint      `json:"order_service_id" gorm:"not null;index"`
	CompanyID      uint      `json:"company_id" gorm:"not null"`
	Price          *float64  `json:"price"`
	Notes          string    `json:"notes"`
	Status         string    `json:"status" gorm:"default:'pending'"` // pending, accepted, rejected
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type OfferStatus string

const (
	OfferPending  OfferStatus = "pending"
	OfferAccepted OfferStatus = "accepted"
	OfferRejected OfferStatus = "rejected"
)

type Service struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Name     string `json:"name" gorm:"unique;not null"`
	IsActive bool   `json:"is_active" gorm:"default:true"`
}

type Company struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time `json:"createdAt"`
}
