package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/visioneers/marketplace-api/internal/dto"
	"github.com/visioneers/marketplace-api/internal/models"
	"github.com/visioneers/marketplace-api/internal/services"
)

// ProductHandler serves the public catalog endpoints.
type ProductHandler struct {
	products *services.ProductService
}

func NewProductHandler(products *services.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

func (h *ProductHandler) Search(c *fiber.Ctx) error {
	criteria := services.SearchCriteria{
		Query:       c.Query("query"),
		Category:    c.Query("category"),
		Brand:       c.Query("brand"),
		Condition:   c.Query("condition"),
		SortBy:      c.Query("sort_by"),
		Limit:       c.QueryInt("limit", 20),
		Offset:      c.QueryInt("offset", 0),
		InStockOnly: c.QueryBool("in_stock_only", true),
	}
	if v := c.Query("min_price"); v != "" {
		if p, err := strconv.ParseFloat(v, 64); err == nil {
			criteria.MinPrice = &p
		}
	}
	if v := c.Query("max_price"); v != "" {
		if p, err := strconv.ParseFloat(v, 64); err == nil {
			criteria.MaxPrice = &p
		}
	}

	products, err := h.products.Search(criteria)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Search failed",
		})
	}
	return c.JSON(productList(products))
}

func (h *ProductHandler) Featured(c *fiber.Ctx) error {
	products, err := h.products.Featured(c.QueryInt("limit", 10))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load featured products",
		})
	}
	return c.JSON(productList(products))
}

func (h *ProductHandler) Categories(c *fiber.Ctx) error {
	categories, err := h.products.Categories()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load categories",
		})
	}

	out := make([]dto.CategoryResponse, 0, len(categories))
	for _, cat := range categories {
		out = append(out, dto.CategoryResponse{
			ID: cat.ID, Name: cat.Name, Description: cat.Description, ParentID: cat.ParentID,
		})
	}
	return c.JSON(fiber.Map{"categories": out})
}

func (h *ProductHandler) ByCategory(c *fiber.Ctx) error {
	products, err := h.products.ByCategory(c.Params("name"), c.QueryInt("limit", 20))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load products",
		})
	}
	return c.JSON(productList(products))
}

func (h *ProductHandler) ByBrand(c *fiber.Ctx) error {
	products, err := h.products.ByBrand(c.Params("name"), c.QueryInt("limit", 20), c.QueryInt("offset", 0))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load products",
		})
	}
	return c.JSON(productList(products))
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	criteria := services.SearchCriteria{
		Limit:  c.QueryInt("limit", 20),
		Offset: c.QueryInt("offset", 0),
		SortBy: c.Query("sort_by"),
	}
	products, err := h.products.Search(criteria)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load products",
		})
	}
	return c.JSON(productList(products))
}

func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid product id",
		})
	}

	product, err := h.products.GetByID(uint(id))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Product not found",
		})
	}
	return c.JSON(ProductView(product))
}

// ProductView maps a product model onto its API shape.
func ProductView(p *models.Product) dto.ProductView {
	view := dto.ProductView{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price,
		StockQuantity:  p.StockQuantity,
		Brand:          p.Brand,
		Model:          p.Model,
		Condition:      p.Condition,
		IsActive:       p.IsActive,
		IsFeatured:     p.IsFeatured,
		Images:         []string(p.Images),
		Specifications: map[string]interface{}(p.Specifications),
		Tags:           []string(p.Tags),
	}
	if p.Category != nil {
		view.Category = p.Category.Name
	}
	if p.Seller != nil {
		view.Seller = p.Seller.Username
	}
	return view
}

func productList(products []models.Product) dto.ProductListResponse {
	views := make([]dto.ProductView, 0, len(products))
	for i := range products {
		views = append(views, ProductView(&products[i]))
	}
	return dto.ProductListResponse{Success: true, Products: views, TotalFound: len(views)}
}
