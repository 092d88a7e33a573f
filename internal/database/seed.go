package database

import (
	"log/slog"

	"github.com/visioneers/marketplace-api/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var defaultCategories = []models.Category{
	{Name: "Electronics", Description: "Electronic devices and gadgets"},
	{Name: "Clothing", Description: "Apparel and fashion items"},
	{Name: "Home & Garden", Description: "Home improvement and garden supplies"},
	{Name: "Sports & Outdoors", Description: "Sports equipment and outdoor gear"},
	{Name: "Books & Media", Description: "Books, movies, and digital media"},
	{Name: "Automotive", Description: "Car parts and accessories"},
	{Name: "Health & Beauty", Description: "Health products and beauty supplies"},
	{Name: "Toys & Games", Description: "Toys, games, and entertainment"},
	{Name: "Jewelry & Watches", Description: "Jewelry and timepieces"},
	{Name: "Collectibles", Description: "Collectible items and memorabilia"},
}

// Seed creates the default categories and, when enabled, a sample seller with
// a handful of listings so a fresh database is browsable.
func Seed(db *gorm.DB, sampleData bool) error {
	var categoryCount int64
	if err := db.Model(&models.Category{}).Count(&categoryCount).Error; err != nil {
		return err
	}
	if categoryCount == 0 {
		if err := db.Create(&defaultCategories).Error; err != nil {
			return err
		}
		slog.Info("default categories created", "count", len(defaultCategories))
	}

	if !sampleData {
		return nil
	}

	var productCount int64
	if err := db.Model(&models.Product{}).Count(&productCount).Error; err != nil {
		return err
	}
	if productCount > 0 {
		return nil
	}

	var clothing models.Category
	if err := db.Where("name = ?", "Clothing").First(&clothing).Error; err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("sample-seller-password"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	seller := models.User{
		Email:          "seller@example.com",
		Username:       "sample_seller",
		HashedPassword: string(hash),
		FullName:       "Sample Seller",
		Role:           models.RoleSeller,
		IsVerified:     true,
	}
	if err := db.Create(&seller).Error; err != nil {
		return err
	}

	samples := []models.Product{
		{
			Name:          "Vintage Adidas Gazelle - Blue",
			Description:   "Authentic vintage Adidas Gazelle sneakers in classic blue colorway. Excellent condition with minimal wear.",
			Price:         85.00,
			CategoryID:    clothing.ID,
			SellerID:      seller.ID,
			Brand:         "Adidas",
			Model:         "Gazelle",
			Condition:     "used",
			StockQuantity: 3,
			Specifications: datatypes.JSONMap{
				"size": "US 10", "material": "Leather", "year": "1990s", "color": "Blue",
			},
			Tags:       datatypes.NewJSONSlice([]string{"vintage", "sneakers", "adidas", "classic"}),
			IsActive:   true,
			IsFeatured: true,
		},
		{
			Name:          "Classic Vans Old Skool - Black",
			Description:   "Timeless Vans Old Skool sneakers in black. Great condition with original box.",
			Price:         65.00,
			CategoryID:    clothing.ID,
			SellerID:      seller.ID,
			Brand:         "Vans",
			Model:         "Old Skool",
			Condition:     "used",
			StockQuantity: 5,
			Specifications: datatypes.JSONMap{
				"size": "US 9", "material": "Canvas", "color": "Black",
			},
			Tags:     datatypes.NewJSONSlice([]string{"vans", "sneakers", "classic", "black"}),
			IsActive: true,
		},
		{
			Name:          "Retro Converse Chuck 70",
			Description:   "Authentic vintage Converse Chuck Taylor 70s in excellent condition. Rare colorway with original details.",
			Price:         78.00,
			CategoryID:    clothing.ID,
			SellerID:      seller.ID,
			Brand:         "Converse",
			Model:         "Chuck 70",
			Condition:     "used",
			StockQuantity: 2,
			Specifications: datatypes.JSONMap{
				"size": "US 9.5", "material": "Canvas", "era": "1970s reissue",
			},
			Tags:       datatypes.NewJSONSlice([]string{"converse", "retro", "sneakers"}),
			IsActive:   true,
			IsFeatured: true,
		},
	}
	if err := db.Create(&samples).Error; err != nil {
		return err
	}
	slog.Info("sample products created", "count", len(samples), "seller", seller.Username)
	return nil
}
