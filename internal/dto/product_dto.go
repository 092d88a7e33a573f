package dto

// ProductCreateRequest is the seller listing payload.
type ProductCreateRequest struct {
	Name           string                 `json:"name"`
	Description    string                 `json:"description"`
	Price          float64                `json:"price"`
	CategoryID     uint                   `json:"category_id"`
	Brand          string                 `json:"brand"`
	Model          string                 `json:"model"`
	Condition      string                 `json:"condition"`
	StockQuantity  int                    `json:"stock_quantity"`
	Specifications map[string]interface{} `json:"specifications"`
	Images         []string               `json:"images"`
	Tags           []string               `json:"tags"`
}

// ProductUpdateRequest patches only the fields present in the body.
type ProductUpdateRequest struct {
	Name           *string                `json:"name"`
	Description    *string                `json:"description"`
	Price          *float64               `json:"price"`
	CategoryID     *uint                  `json:"category_id"`
	Brand          *string                `json:"brand"`
	Model          *string                `json:"model"`
	Condition      *string                `json:"condition"`
	StockQuantity  *int                   `json:"stock_quantity"`
	Specifications map[string]interface{} `json:"specifications"`
	Images         []string               `json:"images"`
	Tags           []string               `json:"tags"`
	IsActive       *bool                  `json:"is_active"`
	IsFeatured     *bool                  `json:"is_featured"`
}

type CategoryResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ParentID    *uint  `json:"parent_id"`
}

// ProductView is the catalog-facing product shape.
type ProductView struct {
	ID             uint                   `json:"id"`
	Name           string                 `json:"name"`
	Description    string                 `json:"description"`
	Price          float64                `json:"price"`
	StockQuantity  int                    `json:"stock_quantity"`
	Brand          string                 `json:"brand"`
	Model          string                 `json:"model"`
	Condition      string                 `json:"condition"`
	Category       string                 `json:"category,omitempty"`
	Seller         string                 `json:"seller,omitempty"`
	IsActive       bool                   `json:"is_active"`
	IsFeatured     bool                   `json:"is_featured"`
	Images         []string               `json:"images,omitempty"`
	Specifications map[string]interface{} `json:"specifications,omitempty"`
	Tags           []string               `json:"tags,omitempty"`
}

type ProductListResponse struct {
	Success    bool          `json:"success"`
	Products   []ProductView `json:"products"`
	TotalFound int           `json:"total_found"`
}
