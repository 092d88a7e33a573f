package models

import (
	"time"

	"gorm.io/gorm"
)

// Roles a user account can hold.
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

// User is a marketplace account. Accounts are deactivated, never hard-deleted.
type User struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Email          string         `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Username       string         `gorm:"size:100;not null;uniqueIndex" json:"username"`
	HashedPassword string         `gorm:"not null" json:"-"`
	FullName       string         `gorm:"size:255" json:"full_name"`
	Role           string         `gorm:"size:20;default:'buyer'" json:"role"`
	IsActive       bool           `gorm:"default:true" json:"is_active"`
	IsVerified     bool           `gorm:"default:false" json:"is_verified"`

	// Email verification; token is single-use and expires.
	VerificationToken  *string    `gorm:"size:64;index" json:"-"`
	VerificationExpiry *time.Time `json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
