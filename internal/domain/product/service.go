// internal/domain/product/service.go
package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/your-org/storefront/internal/config"
	"gorm.io/gorm"
)

// Sentinel errors
var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidCategory = errors.New("invalid product category")
)

// Sort orders accepted by ListProducts
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortName      = "name"
)

// Service handles catalog operations
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new product service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// ListRequest represents catalog listing filters
type ListRequest struct {
	Category string `form:"category"`
	Search   string `form:"search"`
	Brand    string `form:"brand"`
	MinPrice int64  `form:"min_price"`
	MaxPrice int64  `form:"max_price"`
	SortBy   string `form:"sort_by"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

// ListResponse represents a catalog page
type ListResponse struct {
	Products []Product `json:"products"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
}

// CreateRequest represents an admin product creation request
type CreateRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=255"`
	Description string `json:"description"`
	Price       int64  `json:"price" binding:"required,min=1"`
	ImageURL    string `json:"image_url" binding:"max=500"`
	Category    string `json:"category" binding:"required"`
	Brand       string `json:"brand" binding:"max=100"`
	PhoneModel  string `json:"phone_model" binding:"max=100"`
	Stock       int    `json:"stock" binding:"min=0"`
}

// UpdateRequest represents an admin product update request
type UpdateRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Price       *int64  `json:"price,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
	Category    *string `json:"category,omitempty"`
	Brand       *string `json:"brand,omitempty"`
	PhoneModel  *string `json:"phone_model,omitempty"`
	Stock       *int    `json:"stock,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// ListProducts returns a filtered, sorted catalog page
func (s *Service) ListProducts(ctx context.Context, req *ListRequest) (*ListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 24
	}

	query := s.db.WithContext(ctx).Model(&Product{}).Where("is_active = ?", true)

	if req.Category != "" {
		if !IsValidCategory(req.Category) {
			return nil, ErrInvalidCategory
		}
		query = query.Where("category = ?", req.Category)
	}
	if req.Search != "" {
		pattern := "%" + strings.ToLower(strings.TrimSpace(req.Search)) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if req.Brand != "" {
		query = query.Where("brand = ?", req.Brand)
	}
	if req.MinPrice > 0 {
		query = query.Where("price >= ?", req.MinPrice)
	}
	if req.MaxPrice > 0 {
		query = query.Where("price <= ?", req.MaxPrice)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	var products []Product
	offset := (req.Page - 1) * req.Limit
	err := query.Order(buildOrderClause(req.SortBy)).
		Offset(offset).
		Limit(req.Limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return &ListResponse{
		Products: products,
		Total:    total,
		Page:     req.Page,
		Limit:    req.Limit,
	}, nil
}

// GetProduct returns a single product by ID
func (s *Service) GetProduct(ctx context.Context, productID string) (*Product, error) {
	var p Product
	if err := s.db.WithContext(ctx).Where("id = ?", productID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	return &p, nil
}

// ListBrands returns the distinct brands present in a category
func (s *Service) ListBrands(ctx context.Context, category string) ([]string, error) {
	query := s.db.WithContext(ctx).Model(&Product{}).
		Where("is_active = ? AND brand <> ''", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var brands []string
	if err := query.Distinct("brand").Order("brand").Pluck("brand", &brands).Error; err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}
	return brands, nil
}

// CreateProduct creates a new catalog item (admin)
func (s *Service) CreateProduct(ctx context.Context, req *CreateRequest) (*Product, error) {
	if !IsValidCategory(req.Category) {
		return nil, ErrInvalidCategory
	}

	p := Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Category:    req.Category,
		Brand:       req.Brand,
		PhoneModel:  req.PhoneModel,
		Stock:       req.Stock,
		IsActive:    true,
	}

	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return &p, nil
}

// UpdateProduct applies a partial update to a catalog item (admin)
func (s *Service) UpdateProduct(ctx context.Context, productID string, req *UpdateRequest) (*Product, error) {
	p, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			return nil, fmt.Errorf("price must be positive")
		}
		updates["price"] = *req.Price
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.Category != nil {
		if !IsValidCategory(*req.Category) {
			return nil, ErrInvalidCategory
		}
		updates["category"] = *req.Category
	}
	if req.Brand != nil {
		updates["brand"] = *req.Brand
	}
	if req.PhoneModel != nil {
		updates["phone_model"] = *req.PhoneModel
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, fmt.Errorf("stock cannot be negative")
		}
		updates["stock"] = *req.Stock
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		return p, nil
	}

	if err := s.db.WithContext(ctx).Model(p).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return s.GetProduct(ctx, productID)
}

// DeleteProduct removes a catalog item (admin)
func (s *Service) DeleteProduct(ctx context.Context, productID string) error {
	result := s.db.WithContext(ctx).Where("id = ?", productID).Delete(&Product{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// Private helper methods

func buildOrderClause(sortBy string) string {
	switch sortBy {
	case SortPriceAsc:
		return "price ASC"
	case SortPriceDesc:
		return "price DESC"
	case SortName:
		return "name ASC"
	case SortNewest:
		return "created_at DESC"
	default:
		return "created_at DESC"
	}
}
