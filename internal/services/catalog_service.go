// internal/services/catalog_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/utils"
)

type CatalogService struct {
	db *gorm.DB
}

type CreateProductRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=255"`
	Description  string `json:"description" validate:"required"`
	PriceInCents int64  `json:"price_in_cents" validate:"required,gt=0"`
	FilePath     string `json:"-" validate:"required"`
	ImagePath    string `json:"-"`
}

type UpdateProductRequest struct {
	Name         string `json:"name" validate:"omitempty,min=1,max=255"`
	Description  string `json:"description"`
	PriceInCents int64  `json:"price_in_cents" validate:"omitempty,gt=0"`
	FilePath     string `json:"-"`
	ImagePath    string `json:"-"`
}

// ProductListing is a catalog row with its sales count attached.
type ProductListing struct {
	models.Product
	OrderCount int64 `json:"order_count"`
}

const (
	SortNewest  = "newest"
	SortPopular = "popular"
)

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// ListAvailable returns purchasable products for the storefront, newest first
// or by sales count for the most-popular rail.
func (s *CatalogService) ListAvailable(params utils.PaginationParams, sort string) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{}).Where("is_available_for_purchase = ?", true)

	if params.Search != "" {
		query = query.Where("name LIKE ?", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	switch sort {
	case SortPopular:
		query = query.Order("(SELECT COUNT(*) FROM orders WHERE orders.product_id = products.id AND orders.deleted_at IS NULL) DESC")
	default:
		query = query.Order("created_at DESC")
	}
	query = utils.ApplyPagination(query, params)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

// GetAvailable returns a purchasable product, hiding ones pulled from sale.
func (s *CatalogService) GetAvailable(id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("product lookup failed: %w", err)
	}

	if !product.IsAvailableForPurchase {
		return nil, ErrProductNotFound
	}

	return &product, nil
}

// Admin operations below. These see hidden products too.

func (s *CatalogService) List(params utils.PaginationParams) ([]ProductListing, int64, error) {
	query := s.db.Model(&models.Product{})

	if params.Search != "" {
		query = query.Where("name LIKE ?", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query = query.Select("products.*, (SELECT COUNT(*) FROM orders WHERE orders.product_id = products.id AND orders.deleted_at IS NULL) AS order_count").
		Order("name ASC")
	query = utils.ApplyPagination(query, params)

	var listings []ProductListing
	if err := query.Find(&listings).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return listings, total, nil
}

func (s *CatalogService) Get(id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("product lookup failed: %w", err)
	}
	return &product, nil
}

func (s *CatalogService) Create(req *CreateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// New products start hidden until an admin flips availability.
	product := &models.Product{
		Name:                   req.Name,
		Description:            req.Description,
		PriceInCents:           req.PriceInCents,
		FilePath:               req.FilePath,
		ImagePath:              req.ImagePath,
		IsAvailableForPurchase: false,
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

func (s *CatalogService) Update(id uuid.UUID, req *UpdateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	product, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		product.Name = req.Name
	}
	if req.Description != "" {
		product.Description = req.Description
	}
	if req.PriceInCents > 0 {
		product.PriceInCents = req.PriceInCents
	}
	if req.FilePath != "" {
		product.FilePath = req.FilePath
	}
	if req.ImagePath != "" {
		product.ImagePath = req.ImagePath
	}

	if err := s.db.Save(product).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return product, nil
}

func (s *CatalogService) SetAvailability(id uuid.UUID, available bool) (*models.Product, error) {
	product, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	product.IsAvailableForPurchase = available
	if err := s.db.Save(product).Error; err != nil {
		return nil, fmt.Errorf("failed to update product availability: %w", err)
	}

	return product, nil
}

// Delete removes a product from the catalog. Products that have ever been
// ordered are kept: orders reference them forever.
func (s *CatalogService) Delete(id uuid.UUID) error {
	product, err := s.Get(id)
	if err != nil {
		return err
	}

	var orderCount int64
	if err := s.db.Model(&models.Order{}).Where("product_id = ?", id).Count(&orderCount).Error; err != nil {
		return fmt.Errorf("failed to count product orders: %w", err)
	}
	if orderCount > 0 {
		return ErrProductOrdered
	}

	if err := s.db.Delete(product).Error; err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return nil
}
