// internal/handlers/download_test.go
package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/javajoker/storefront-backend/internal/config"
	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/services"
)

type DownloadHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	router  *gin.Engine
	product *models.Product
}

func (suite *DownloadHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		suite.T().Fatalf("failed to open test database: %v", err)
	}
	err = db.AutoMigrate(&models.Product{}, &models.User{}, &models.Order{}, &models.DownloadVerification{})
	if err != nil {
		suite.T().Fatalf("failed to migrate test database: %v", err)
	}
	suite.db = db

	cfg := &config.Config{}
	cfg.Environment = "test"
	cfg.Download.TTLHours = 24
	cfg.Download.LocalDir = suite.T().TempDir()

	// Local storage mode: no AWS credentials configured.
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		suite.T().Fatalf("failed to create storage service: %v", err)
	}

	filePath := filepath.Join(cfg.Download.LocalDir, "products", "files")
	if err := os.MkdirAll(filePath, 0o755); err != nil {
		suite.T().Fatalf("failed to create storage folder: %v", err)
	}
	if err := os.WriteFile(filepath.Join(filePath, "test.zip"), []byte("zip bytes"), 0o644); err != nil {
		suite.T().Fatalf("failed to write product file: %v", err)
	}

	downloadService := services.NewDownloadService(db, cfg)
	handler := NewDownloadHandler(downloadService, storageService)

	suite.router = gin.New()
	suite.router.GET("/downloads/:id", handler.DownloadProduct)

	suite.product = &models.Product{
		Name:                   "Test Product",
		Description:            "A downloadable test product",
		PriceInCents:           1999,
		FilePath:               "products/files/test.zip",
		IsAvailableForPurchase: true,
	}
	if err := db.Create(suite.product).Error; err != nil {
		suite.T().Fatalf("failed to seed product: %v", err)
	}
}

func (suite *DownloadHandlerTestSuite) seedVerification(expiresAt time.Time) *models.DownloadVerification {
	verification := &models.DownloadVerification{
		ProductID: suite.product.ID,
		ExpiresAt: expiresAt,
	}
	if err := suite.db.Create(verification).Error; err != nil {
		suite.T().Fatalf("failed to seed verification: %v", err)
	}
	return verification
}

func (suite *DownloadHandlerTestSuite) get(id string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/downloads/"+id, nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *DownloadHandlerTestSuite) TestValidCredentialServesFile() {
	verification := suite.seedVerification(time.Now().Add(time.Hour))

	w := suite.get(verification.ID.String())
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Contains(suite.T(), w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(suite.T(), w.Header().Get("Content-Disposition"), "Test Product.zip")
	assert.Equal(suite.T(), "zip bytes", w.Body.String())
}

func (suite *DownloadHandlerTestSuite) TestCredentialWorksAgainWithinWindow() {
	verification := suite.seedVerification(time.Now().Add(time.Hour))

	w := suite.get(verification.ID.String())
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	w = suite.get(verification.ID.String())
	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

func (suite *DownloadHandlerTestSuite) TestMalformedCredentialNotFound() {
	w := suite.get("not-a-uuid")
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *DownloadHandlerTestSuite) TestUnknownCredentialNotFound() {
	w := suite.get(uuid.NewString())
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *DownloadHandlerTestSuite) TestExpiredCredentialGone() {
	verification := suite.seedVerification(time.Now().Add(-time.Minute))

	w := suite.get(verification.ID.String())
	assert.Equal(suite.T(), http.StatusGone, w.Code)
}

func TestDownloadHandlerSuite(t *testing.T) {
	suite.Run(t, new(DownloadHandlerTestSuite))
}
