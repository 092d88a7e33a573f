package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/visioneers/marketplace-api/internal/dto"
	"github.com/visioneers/marketplace-api/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrProductNotFound = errors.New("product not found")

// SearchCriteria is the open criteria bag for product queries. Zero-valued
// fields apply no filter; price bounds are inclusive.
type SearchCriteria struct {
	Query       string
	Category    string
	Brand       string
	Condition   string
	MinPrice    *float64
	MaxPrice    *float64
	SellerID    uint
	InStockOnly bool
	SortBy      string // featured (default), price_low, price_high, newest, name
	Limit       int
	Offset      int
}

// Preferences drive recommendations extracted from chat context.
type Preferences struct {
	PriceRange string // "low" or "high"
	Category   string
	Brand      string
}

type ProductService struct {
	db *gorm.DB
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

// Search returns a page of active products matching every supplied filter.
// Textual filters are case-insensitive substring matches.
func (s *ProductService) Search(criteria SearchCriteria) ([]models.Product, error) {
	q := s.db.Model(&models.Product{}).Scopes(models.ActiveProducts)

	if criteria.Query != "" {
		p := likePattern(criteria.Query)
		q = q.Where(
			"LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(brand) LIKE ? OR LOWER(model) LIKE ?",
			p, p, p, p,
		)
	}
	if criteria.Category != "" {
		q = q.Where(
			"category_id IN (?)",
			s.db.Model(&models.Category{}).Select("id").Where("LOWER(name) LIKE ?", likePattern(criteria.Category)),
		)
	}
	if criteria.Brand != "" {
		q = q.Where("LOWER(brand) LIKE ?", likePattern(criteria.Brand))
	}
	if criteria.Condition != "" {
		q = q.Where("condition = ?", criteria.Condition)
	}
	if criteria.MinPrice != nil {
		q = q.Where("price >= ?", *criteria.MinPrice)
	}
	if criteria.MaxPrice != nil {
		q = q.Where("price <= ?", *criteria.MaxPrice)
	}
	if criteria.SellerID != 0 {
		q = q.Scopes(models.ForSeller(criteria.SellerID))
	}
	if criteria.InStockOnly {
		q = q.Scopes(models.InStock)
	}

	q = applySort(q, criteria.SortBy)

	limit := criteria.Limit
	if limit <= 0 {
		limit = 20
	}

	var products []models.Product
	err := q.Preload("Category").Preload("Seller").
		Offset(criteria.Offset).Limit(limit).Find(&products).Error
	return products, err
}

func applySort(q *gorm.DB, sortBy string) *gorm.DB {
	switch sortBy {
	case "price_low":
		return q.Order("price ASC")
	case "price_high":
		return q.Order("price DESC")
	case "newest":
		return q.Order("created_at DESC")
	case "name":
		return q.Order("name ASC")
	default: // featured
		return q.Order("is_featured DESC").Order("price ASC")
	}
}

func (s *ProductService) GetByID(id uint) (*models.Product, error) {
	var product models.Product
	if err := s.db.Preload("Category").Preload("Seller").First(&product, "id = ?", id).Error; err != nil {
		return nil, ErrProductNotFound
	}
	return &product, nil
}

// GetByIdentifier resolves a numeric id first, then an active product whose
// name contains the identifier.
func (s *ProductService) GetByIdentifier(identifier string) (*models.Product, error) {
	if id, err := strconv.ParseUint(identifier, 10, 64); err == nil {
		if product, err := s.GetByID(uint(id)); err == nil {
			return product, nil
		}
	}

	var product models.Product
	err := s.db.Preload("Category").Scopes(models.ActiveProducts).
		Where("LOWER(name) LIKE ?", likePattern(identifier)).
		First(&product).Error
	if err != nil {
		return nil, ErrProductNotFound
	}
	return &product, nil
}

// Featured returns active, in-stock featured products, cheapest first.
func (s *ProductService) Featured(limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = 10
	}
	var products []models.Product
	err := s.db.Preload("Category").Preload("Seller").
		Scopes(models.ActiveProducts, models.InStock).
		Where("is_featured = ?", true).
		Order("price ASC").Limit(limit).
		Find(&products).Error
	return products, err
}

func (s *ProductService) ByCategory(categoryName string, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = 20
	}
	var products []models.Product
	err := s.db.Preload("Category").Preload("Seller").
		Scopes(models.ActiveProducts, models.InStock).
		Where(
			"category_id IN (?)",
			s.db.Model(&models.Category{}).Select("id").Where("LOWER(name) LIKE ?", likePattern(categoryName)),
		).
		Order("is_featured DESC").Order("price ASC").Limit(limit).
		Find(&products).Error
	return products, err
}

func (s *ProductService) ByBrand(brand string, limit, offset int) ([]models.Product, error) {
	if limit <= 0 {
		limit = 20
	}
	var products []models.Product
	err := s.db.Preload("Category").Preload("Seller").
		Scopes(models.ActiveProducts).
		Where("LOWER(brand) LIKE ?", likePattern(brand)).
		Order("price ASC").Offset(offset).Limit(limit).
		Find(&products).Error
	return products, err
}

// BySeller lists a seller's active products, newest first.
func (s *ProductService) BySeller(sellerID uint, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = 20
	}
	var products []models.Product
	err := s.db.Preload("Category").
		Scopes(models.ActiveProducts, models.ForSeller(sellerID)).
		Order("created_at DESC").Limit(limit).
		Find(&products).Error
	return products, err
}

// Recommendations applies loose preference filters over in-stock products.
func (s *ProductService) Recommendations(prefs Preferences, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = 10
	}
	q := s.db.Model(&models.Product{}).Scopes(models.ActiveProducts, models.InStock)

	switch prefs.PriceRange {
	case "low":
		q = q.Where("price <= ?", 50.0)
	case "high":
		q = q.Where("price >= ?", 200.0)
	}
	if prefs.Category != "" {
		q = q.Where(
			"category_id IN (?)",
			s.db.Model(&models.Category{}).Select("id").Where("LOWER(name) LIKE ?", likePattern(prefs.Category)),
		)
	}
	if prefs.Brand != "" {
		q = q.Where("LOWER(brand) LIKE ?", likePattern(prefs.Brand))
	}

	var products []models.Product
	err := q.Preload("Category").
		Order("is_featured DESC").Order("price ASC").Limit(limit).
		Find(&products).Error
	return products, err
}

func (s *ProductService) Categories() ([]models.Category, error) {
	var categories []models.Category
	err := s.db.Order("id ASC").Find(&categories).Error
	return categories, err
}

// CreateProduct stores a new listing for the seller.
func (s *ProductService) CreateProduct(sellerID uint, req *dto.ProductCreateRequest) (*models.Product, error) {
	if req.Name == "" || req.Price <= 0 || req.CategoryID == 0 {
		return nil, errors.New("name, positive price and category_id are required")
	}
	if req.StockQuantity < 0 {
		return nil, errors.New("stock_quantity cannot be negative")
	}

	condition := req.Condition
	if condition == "" {
		condition = "new"
	}
	stock := req.StockQuantity
	if stock == 0 {
		stock = 1
	}

	product := models.Product{
		Name:           req.Name,
		Description:    req.Description,
		Price:          req.Price,
		CategoryID:     req.CategoryID,
		SellerID:       sellerID,
		Brand:          req.Brand,
		Model:          req.Model,
		Condition:      condition,
		StockQuantity:  stock,
		Specifications: datatypes.JSONMap(req.Specifications),
		Images:         datatypes.NewJSONSlice(req.Images),
		Tags:           datatypes.NewJSONSlice(req.Tags),
		IsActive:       true,
	}
	if err := s.db.Create(&product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return &product, nil
}

// UpdateProduct patches the listing; only the seller who owns it may update.
func (s *ProductService) UpdateProduct(sellerID, productID uint, req *dto.ProductUpdateRequest) (*models.Product, error) {
	var product models.Product
	if err := s.db.Scopes(models.ForSeller(sellerID)).First(&product, "id = ?", productID).Error; err != nil {
		return nil, ErrProductNotFound
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}
	if req.Brand != nil {
		updates["brand"] = *req.Brand
	}
	if req.Model != nil {
		updates["model"] = *req.Model
	}
	if req.Condition != nil {
		updates["condition"] = *req.Condition
	}
	if req.StockQuantity != nil {
		if *req.StockQuantity < 0 {
			return nil, errors.New("stock_quantity cannot be negative")
		}
		updates["stock_quantity"] = *req.StockQuantity
	}
	if req.Specifications != nil {
		updates["specifications"] = datatypes.JSONMap(req.Specifications)
	}
	if req.Images != nil {
		updates["images"] = datatypes.NewJSONSlice(req.Images)
	}
	if req.Tags != nil {
		updates["tags"] = datatypes.NewJSONSlice(req.Tags)
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.IsFeatured != nil {
		updates["is_featured"] = *req.IsFeatured
	}

	if len(updates) > 0 {
		if err := s.db.Model(&product).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update product: %w", err)
		}
	}

	if err := s.db.Preload("Category").First(&product, "id = ?", productID).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// DeleteProduct soft-deletes by flipping is_active off.
func (s *ProductService) DeleteProduct(sellerID, productID uint) error {
	result := s.db.Model(&models.Product{}).
		Scopes(models.ForSeller(sellerID)).
		Where("id = ?", productID).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// DecrementStock reduces stock for a purchase; it refuses to go below zero.
func (s *ProductService) DecrementStock(productID uint, quantity int) error {
	result := s.db.Model(&models.Product{}).
		Where("id = ? AND stock_quantity >= ?", productID, quantity).
		Update("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("insufficient stock")
	}
	return nil
}

// SellerAnalytics summarizes a seller's inventory.
type SellerAnalytics struct {
	TotalProducts        int            `json:"total_products"`
	ActiveProducts       int            `json:"active_products"`
	FeaturedProducts     int            `json:"featured_products"`
	TotalInventoryValue  float64        `json:"total_inventory_value"`
	CategoryDistribution map[string]int `json:"category_distribution"`
	AveragePrice         float64        `json:"average_price"`
}

func (s *ProductService) Analytics(sellerID uint) (*SellerAnalytics, error) {
	var products []models.Product
	if err := s.db.Preload("Category").Scopes(models.ForSeller(sellerID)).Find(&products).Error; err != nil {
		return nil, err
	}

	analytics := &SellerAnalytics{CategoryDistribution: map[string]int{}}
	var priceSum float64
	for _, p := range products {
		analytics.TotalProducts++
		if p.IsActive {
			analytics.ActiveProducts++
		}
		if p.IsFeatured {
			analytics.FeaturedProducts++
		}
		analytics.TotalInventoryValue += p.Price * float64(p.StockQuantity)
		priceSum += p.Price

		name := "Uncategorized"
		if p.Category != nil {
			name = p.Category.Name
		}
		analytics.CategoryDistribution[name]++
	}
	if analytics.TotalProducts > 0 {
		analytics.AveragePrice = priceSum / float64(analytics.TotalProducts)
	}
	return analytics, nil
}

func likePattern(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}
