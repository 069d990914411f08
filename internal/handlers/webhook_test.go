// internal/handlers/webhook_test.go
package handlers

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/stripe/stripe-go/v74/webhook"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/javajoker/storefront-backend/internal/config"
	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/services"
)

const testWebhookSecret = "whsec_test_secret"

type recordingReceiptSender struct {
	recipients []string
}

func (r *recordingReceiptSender) SendPurchaseReceipt(product *models.Product, order *models.Order, verificationID uuid.UUID, recipient string) error {
	r.recipients = append(r.recipients, recipient)
	return nil
}

type WebhookHandlerTestSuite struct {
	suite.Suite
	db       *gorm.DB
	router   *gin.Engine
	receipts *recordingReceiptSender
	product  *models.Product
}

func (suite *WebhookHandlerTestSuite) SetupTest() {
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
	cfg.Stripe.WebhookSecret = testWebhookSecret
	cfg.Download.TTLHours = 24

	suite.receipts = &recordingReceiptSender{}
	orderService := services.NewOrderService(db, cfg, suite.receipts)
	handler := NewWebhookHandler(orderService, cfg)

	suite.router = gin.New()
	suite.router.POST("/webhooks/stripe", handler.HandleStripeEvent)

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

func (suite *WebhookHandlerTestSuite) eventPayload(eventID, eventType, productID, email string, amount int64) []byte {
	charge := map[string]interface{}{
		"id":       "ch_" + eventID,
		"amount":   amount,
		"metadata": map[string]string{"productId": productID},
		"billing_details": map[string]interface{}{
			"email": email,
		},
	}
	event := map[string]interface{}{
		"id":   eventID,
		"type": eventType,
		"data": map[string]interface{}{"object": charge},
	}
	payload, err := json.Marshal(event)
	if err != nil {
		suite.T().Fatalf("failed to marshal event payload: %v", err)
	}
	return payload
}

// signHeader builds a Stripe-Signature header the way the gateway does.
func signHeader(payload []byte, secret string) string {
	now := time.Now()
	signature := webhook.ComputeSignature(now, payload, secret)
	return fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(signature))
}

func (suite *WebhookHandlerTestSuite) deliver(payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", signature)

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *WebhookHandlerTestSuite) orderCount() int64 {
	var count int64
	suite.db.Model(&models.Order{}).Count(&count)
	return count
}

func (suite *WebhookHandlerTestSuite) TestBadSignatureRejected() {
	payload := suite.eventPayload("evt_1", "charge.succeeded", suite.product.ID.String(), "a@b.com", 1999)

	w := suite.deliver(payload, signHeader(payload, "whsec_wrong_secret"))
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.EqualValues(suite.T(), 0, suite.orderCount())
}

func (suite *WebhookHandlerTestSuite) TestMissingSignatureRejected() {
	payload := suite.eventPayload("evt_1", "charge.succeeded", suite.product.ID.String(), "a@b.com", 1999)

	w := suite.deliver(payload, "")
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.EqualValues(suite.T(), 0, suite.orderCount())
}

func (suite *WebhookHandlerTestSuite) TestUnhandledEventTypeAcknowledged() {
	payload := suite.eventPayload("evt_1", "charge.refunded", suite.product.ID.String(), "a@b.com", 1999)

	w := suite.deliver(payload, signHeader(payload, testWebhookSecret))
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.EqualValues(suite.T(), 0, suite.orderCount())
}

func (suite *WebhookHandlerTestSuite) TestChargeSucceededFulfillsOrder() {
	payload := suite.eventPayload("evt_1", "charge.succeeded", suite.product.ID.String(), "a@b.com", 1999)

	w := suite.deliver(payload, signHeader(payload, testWebhookSecret))
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.EqualValues(suite.T(), 1, suite.orderCount())

	var order models.Order
	assert.NoError(suite.T(), suite.db.First(&order, "payment_event_id = ?", "evt_1").Error)
	assert.Equal(suite.T(), suite.product.ID, order.ProductID)
	assert.EqualValues(suite.T(), 1999, order.PricePaidInCents)

	var verifications int64
	suite.db.Model(&models.DownloadVerification{}).Count(&verifications)
	assert.EqualValues(suite.T(), 1, verifications)

	assert.Equal(suite.T(), []string{"a@b.com"}, suite.receipts.recipients)
}

func (suite *WebhookHandlerTestSuite) TestRedeliveredEventAcknowledgedOnce() {
	payload := suite.eventPayload("evt_1", "charge.succeeded", suite.product.ID.String(), "a@b.com", 1999)

	w := suite.deliver(payload, signHeader(payload, testWebhookSecret))
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	w = suite.deliver(payload, signHeader(payload, testWebhookSecret))
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	assert.EqualValues(suite.T(), 1, suite.orderCount())
	assert.Len(suite.T(), suite.receipts.recipients, 1)
}

func (suite *WebhookHandlerTestSuite) TestUnknownProductRejected() {
	payload := suite.eventPayload("evt_1", "charge.succeeded", uuid.NewString(), "a@b.com", 1999)

	w := suite.deliver(payload, signHeader(payload, testWebhookSecret))
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.EqualValues(suite.T(), 0, suite.orderCount())
}

func (suite *WebhookHandlerTestSuite) TestMissingEmailRejected() {
	payload := suite.eventPayload("evt_1", "charge.succeeded", suite.product.ID.String(), "", 1999)

	w := suite.deliver(payload, signHeader(payload, testWebhookSecret))
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.EqualValues(suite.T(), 0, suite.orderCount())
}

func TestWebhookHandlerSuite(t *testing.T) {
	suite.Run(t, new(WebhookHandlerTestSuite))
}
