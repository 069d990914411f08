// internal/services/download_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/models"
)

type DownloadServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *DownloadService
	product *models.Product
}

func (suite *DownloadServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.service = NewDownloadService(suite.db, newTestConfig())
	suite.product = seedProduct(suite.T(), suite.db, 1999, true)
}

func (suite *DownloadServiceTestSuite) seedVerification(expiresAt time.Time) *models.DownloadVerification {
	verification := &models.DownloadVerification{
		ProductID: suite.product.ID,
		ExpiresAt: expiresAt,
	}
	err := suite.db.Create(verification).Error
	assert.NoError(suite.T(), err)
	return verification
}

func (suite *DownloadServiceTestSuite) TestValidCredentialResolvesProduct() {
	verification := suite.seedVerification(time.Now().Add(time.Hour))

	product, err := suite.service.ValidateCredential(verification.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.product.ID, product.ID)
	assert.Equal(suite.T(), suite.product.FilePath, product.FilePath)
}

func (suite *DownloadServiceTestSuite) TestCredentialStaysReusableUntilExpiry() {
	verification := suite.seedVerification(time.Now().Add(time.Hour))

	_, err := suite.service.ValidateCredential(verification.ID)
	assert.NoError(suite.T(), err)

	_, err = suite.service.ValidateCredential(verification.ID)
	assert.NoError(suite.T(), err)
}

func (suite *DownloadServiceTestSuite) TestUnknownCredentialRejected() {
	_, err := suite.service.ValidateCredential(uuid.New())
	assert.ErrorIs(suite.T(), err, ErrCredentialInvalid)
}

func (suite *DownloadServiceTestSuite) TestExpiredCredentialRejected() {
	verification := suite.seedVerification(time.Now().Add(-time.Minute))

	_, err := suite.service.ValidateCredential(verification.ID)
	assert.ErrorIs(suite.T(), err, ErrCredentialExpired)
}

func (suite *DownloadServiceTestSuite) TestSweepDeletesOnlyLongExpiredCredentials() {
	longExpired := suite.seedVerification(time.Now().Add(-48 * time.Hour))
	justExpired := suite.seedVerification(time.Now().Add(-time.Minute))
	active := suite.seedVerification(time.Now().Add(time.Hour))

	deleted, err := suite.service.SweepExpired()
	assert.NoError(suite.T(), err)
	assert.EqualValues(suite.T(), 1, deleted)

	var remaining int64
	suite.db.Model(&models.DownloadVerification{}).Count(&remaining)
	assert.EqualValues(suite.T(), 2, remaining)

	var gone models.DownloadVerification
	err = suite.db.First(&gone, "id = ?", longExpired.ID).Error
	assert.ErrorIs(suite.T(), err, gorm.ErrRecordNotFound)

	// A just-expired credential is still stored but no longer validates.
	_, err = suite.service.ValidateCredential(justExpired.ID)
	assert.ErrorIs(suite.T(), err, ErrCredentialExpired)

	_, err = suite.service.ValidateCredential(active.ID)
	assert.NoError(suite.T(), err)
}

func TestDownloadServiceSuite(t *testing.T) {
	suite.Run(t, new(DownloadServiceTestSuite))
}
