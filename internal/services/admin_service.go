// internal/services/admin_service.go
package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/utils"
)

type AdminService struct {
	db *gorm.DB
}

type DashboardStats struct {
	TotalRevenueInCents   int64   `json:"total_revenue_in_cents"`
	TotalOrders           int64   `json:"total_orders"`
	TotalCustomers        int64   `json:"total_customers"`
	AvgSpendPerCustomer   float64 `json:"avg_spend_per_customer_in_cents"`
	AvailableProducts     int64   `json:"available_products"`
	UnavailableProducts   int64   `json:"unavailable_products"`
	ActiveDownloadTokens  int64   `json:"active_download_tokens"`
	RevenueThisMonthCents int64   `json:"revenue_this_month_in_cents"`
}

// CustomerListing is a customer row with purchase totals attached.
type CustomerListing struct {
	models.User
	OrderCount        int64 `json:"order_count"`
	TotalSpentInCents int64 `json:"total_spent_in_cents"`
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

// GetDashboardStats aggregates the sales overview shown on the admin landing
// page.
func (s *AdminService) GetDashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{}
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	s.db.Model(&models.Order{}).Count(&stats.TotalOrders)
	s.db.Model(&models.Order{}).
		Select("COALESCE(SUM(price_paid_in_cents), 0)").Scan(&stats.TotalRevenueInCents)
	s.db.Model(&models.Order{}).
		Where("created_at >= ?", monthStart).
		Select("COALESCE(SUM(price_paid_in_cents), 0)").Scan(&stats.RevenueThisMonthCents)

	s.db.Model(&models.User{}).Count(&stats.TotalCustomers)
	if stats.TotalCustomers > 0 {
		stats.AvgSpendPerCustomer = float64(stats.TotalRevenueInCents) / float64(stats.TotalCustomers)
	}

	s.db.Model(&models.Product{}).
		Where("is_available_for_purchase = ?", true).Count(&stats.AvailableProducts)
	s.db.Model(&models.Product{}).
		Where("is_available_for_purchase = ?", false).Count(&stats.UnavailableProducts)

	s.db.Model(&models.DownloadVerification{}).
		Where("expires_at > ?", now).Count(&stats.ActiveDownloadTokens)

	return stats, nil
}

// ListOrders returns the sales history with product and customer attached.
func (s *AdminService) ListOrders(params utils.PaginationParams) ([]models.Order, int64, error) {
	query := s.db.Model(&models.Order{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	allowedSortFields := []string{"created_at", "price_paid_in_cents"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var orders []models.Order
	if err := query.Preload("Product").Preload("User").Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}

	return orders, total, nil
}

// ListCustomers returns customers with their order counts and lifetime spend.
func (s *AdminService) ListCustomers(params utils.PaginationParams) ([]CustomerListing, int64, error) {
	query := s.db.Model(&models.User{})

	if params.Search != "" {
		query = query.Where("email LIKE ?", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count customers: %w", err)
	}

	query = query.Select(
		"users.*, " +
			"(SELECT COUNT(*) FROM orders WHERE orders.user_id = users.id AND orders.deleted_at IS NULL) AS order_count, " +
			"(SELECT COALESCE(SUM(price_paid_in_cents), 0) FROM orders WHERE orders.user_id = users.id AND orders.deleted_at IS NULL) AS total_spent_in_cents").
		Order("created_at DESC")
	query = utils.ApplyPagination(query, params)

	var customers []CustomerListing
	if err := query.Find(&customers).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch customers: %w", err)
	}

	return customers, total, nil
}
