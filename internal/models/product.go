package models

import (
	"time"

	"gorm.io/datatypes"
)

// Category is a product category; ParentID forms a tree. Seeded at startup.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	ParentID    *uint     `gorm:"index" json:"parent_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Product is a catalog listing. "Deleting" a product flips IsActive off;
// rows are never removed so order items keep their references.
type Product struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	Name          string  `gorm:"size:255;not null;index" json:"name"`
	Description   string  `gorm:"type:text" json:"description"`
	Price         float64 `gorm:"not null" json:"price"`
	StockQuantity int     `gorm:"default:0" json:"stock_quantity"`
	CategoryID    uint    `gorm:"not null;index" json:"category_id"`
	SellerID      uint    `gorm:"not null;index" json:"seller_id"`

	Brand          string                       `gorm:"size:100" json:"brand"`
	Model          string                       `gorm:"size:100" json:"model"`
	Condition      string                       `gorm:"size:30" json:"condition"` // new, used, refurbished
	Specifications datatypes.JSONMap            `json:"specifications"`
	Images         datatypes.JSONSlice[string]  `json:"images"`
	Tags           datatypes.JSONSlice[string]  `json:"tags"`

	IsActive   bool `gorm:"default:true;index" json:"is_active"`
	IsFeatured bool `gorm:"default:false" json:"is_featured"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Seller   *User     `gorm:"foreignKey:SellerID" json:"seller,omitempty"`
}
