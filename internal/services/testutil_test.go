package services

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"github.com/visioneers/marketplace-api/internal/config"
	"github.com/visioneers/marketplace-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.Conversation{},
		&models.Message{},
	))
	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		JWTSecret:              "test-secret",
		JWTAccessExpiry:        30 * time.Minute,
		AgentModel:             "gpt-4o",
		AgentTemperature:       0.7,
		MaxConversationHistory: 10,
		AgentAutoProvision:     true,
		AITimeout:              time.Second,
	}
}

func seedCatalog(t *testing.T, db *gorm.DB) (seller models.User, category models.Category) {
	t.Helper()

	seller = models.User{
		Email:          "seller@test.local",
		Username:       "testseller",
		HashedPassword: "x",
		Role:           models.RoleSeller,
		IsActive:       true,
		IsVerified:     true,
	}
	require.NoError(t, db.Create(&seller).Error)

	category = models.Category{Name: "Sneakers", Description: "Shoes"}
	require.NoError(t, db.Create(&category).Error)

	products := []models.Product{
		{
			Name: "Adidas Gazelle", Description: "Classic suede sneaker", Price: 85,
			StockQuantity: 10, CategoryID: category.ID, SellerID: seller.ID,
			Brand: "Adidas", Model: "Gazelle", Condition: "new",
			IsActive: true, IsFeatured: true,
		},
		{
			Name: "Vans Old Skool", Description: "Skate classic", Price: 65,
			StockQuantity: 5, CategoryID: category.ID, SellerID: seller.ID,
			Brand: "Vans", Model: "Old Skool", Condition: "new",
			IsActive: true,
		},
		{
			Name: "Converse Chuck 70", Description: "High top canvas", Price: 78,
			StockQuantity: 0, CategoryID: category.ID, SellerID: seller.ID,
			Brand: "Converse", Model: "Chuck 70", Condition: "new",
			IsActive: true, IsFeatured: true,
		},
		{
			Name: "Retired Runner", Description: "No longer sold", Price: 40,
			StockQuantity: 3, CategoryID: category.ID, SellerID: seller.ID,
			Brand: "Nike", Condition: "used",
			IsActive: true,
		},
	}
	for i := range products {
		require.NoError(t, db.Create(&products[i]).Error)
	}

	// The column default forces is_active true on insert, so deactivate
	// the retired listing with an explicit update.
	require.NoError(t, db.Model(&products[3]).Update("is_active", false).Error)
	return seller, category
}
