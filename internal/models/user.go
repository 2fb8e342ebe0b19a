package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Name         string         `json:"name" gorm:"not null"`
	Email        string         `json:"email" gorm:"unique;not null"`
	PhoneNumber  string         `json:"phone_number"`
	Role         string         `json:"role" gorm:"default:'client'"` // client, driver, worker, company_admin, site_admin, super_admin
	PasswordHash string         `json:"-"`
	CompanyID    *uint          `json:"company_id"`
	IsActive     bool           `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

type UserRole string

const (
	RoleClient       UserRole = "client"
	RoleDriver       UserRole = "driver"
	RoleWorker       UserRole = "worker"
	RoleCompanyAdmin UserRole = "company_admin"
	RoleSiteAdmin    UserRole = "site_admin"
	RoleSuperAdmin   UserRole = "super_admin"
)

// Roles lists every known role.
var Roles = []UserRole{RoleClient, RoleDriver, RoleWorker, RoleCompanyAdmin, RoleSiteAdmin, RoleSuperAdmin}

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleClient, RoleDriver, RoleWorker, RoleCompanyAdmin, RoleSiteAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// Employment links a driver or worker to a company at an hourly rate.
type Employment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	CompanyID uint      `json:"company_id" gorm:"not null;index"`
	Rate      float64   `json:"rate"`
	Currency  string    `json:"currency" gorm:"type:varchar(3);default:'EUR'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RateChange is one entry of an employment's rate history. It is kept in the
// cache only, so it carries no gorm tags.
type RateChange struct {
	ID        string    `json:"id"`
	OldRate   float64   `json:"old_rate"`
	NewRate   float64   `json:"new_rate"`
	Currency  string    `json:"currency"`
	ChangedBy uint      `json:"changed_by"`
	ChangedAt time.Time `json:"changed_at"`
}
