// internal/services/testing_test.go
package services

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/javajoker/storefront-backend/internal/config"
	"github.com/javajoker/storefront-backend/internal/models"
)

// newTestDB opens a uniquely named shared in-memory database so each test
// gets an isolated schema while gorm's connection pool still sees one store.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.Product{},
		&models.User{},
		&models.Order{},
		&models.DownloadVerification{},
		&models.AuditLog{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Environment = "test"
	cfg.Stripe.Currency = "eur"
	cfg.Download.TTLHours = 24
	cfg.Download.SweepIntervalMinutes = 60
	cfg.Email.SenderEmail = "support@example.com"
	cfg.Email.SenderName = "Support"
	cfg.Frontend.BaseURL = "http://localhost:3000"
	return cfg
}

func seedProduct(t *testing.T, db *gorm.DB, priceInCents int64, available bool) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:                   "Test Product",
		Description:            "A downloadable test product",
		PriceInCents:           priceInCents,
		FilePath:               "products/files/test.zip",
		IsAvailableForPurchase: available,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	return product
}
