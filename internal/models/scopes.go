package models

import "gorm.io/gorm"

// ActiveProducts filters out soft-deleted listings.
func ActiveProducts(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true)
}

// InStock keeps products with units available.
func InStock(db *gorm.DB) *gorm.DB {
	return db.Where("stock_quantity > 0")
}

// ForSeller returns a scope filtering products by seller.
func ForSeller(sellerID uint) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("seller_id = ?", sellerID)
	}
}
