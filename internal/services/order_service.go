// internal/services/order_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/javajoker/storefront-backend/internal/config"
	"github.com/javajoker/storefront-backend/internal/database"
	"github.com/javajoker/storefront-backend/internal/models"
)

// ReceiptSender delivers a purchase receipt after an order is committed.
// Delivery is best-effort; the order stands whether or not it succeeds.
type ReceiptSender interface {
	SendPurchaseReceipt(product *models.Product, order *models.Order, verificationID uuid.UUID, recipient string) error
}

type OrderService struct {
	db       *gorm.DB
	config   *config.Config
	receipts ReceiptSender
}

// ChargeEvent is the validated payload of a charge-succeeded webhook
// delivery. EventID doubles as the idempotency key: the gateway may deliver
// the same event more than once.
type ChargeEvent struct {
	EventID       string
	ProductID     string
	Email         string
	AmountInCents int64
}

// Fulfillment is everything a successfully reconciled charge produced.
type Fulfillment struct {
	User         *models.User
	Order        *models.Order
	Verification *models.DownloadVerification
	// Duplicate is set when the event id was already processed and the
	// delivery was acknowledged without writing anything.
	Duplicate bool
}

func NewOrderService(db *gorm.DB, config *config.Config, receipts ReceiptSender) *OrderService {
	return &OrderService{
		db:       db,
		config:   config,
		receipts: receipts,
	}
}

// ProcessChargeSucceeded records a purchase reported by the payment gateway:
// it ensures a customer exists for the payer email, appends an order with the
// amount actually charged, and issues a time-limited download credential, all
// in one transaction. Redelivered events are detected by their event id and
// acknowledged as no-ops.
func (s *OrderService) ProcessChargeSucceeded(event *ChargeEvent) (*Fulfillment, error) {
	if event.Email == "" {
		return nil, ErrMissingEmail
	}

	productID, err := uuid.Parse(event.ProductID)
	if err != nil {
		return nil, ErrProductNotFound
	}

	var product models.Product
	if err := s.db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("product lookup failed: %w", err)
	}

	fulfillment := &Fulfillment{}
	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		// Redelivery check. The unique index on payment_event_id backs this
		// up if two deliveries of the same event race past the read: the
		// loser fails its insert, the gateway retries, and this check then
		// resolves the retry to a no-op.
		var existing models.Order
		err := tx.Where("payment_event_id = ?", event.EventID).First(&existing).Error
		if err == nil {
			fulfillment.Order = &existing
			fulfillment.Duplicate = true
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("order dedup lookup failed: %w", err)
		}

		// Atomic upsert: concurrent charges for the same new email must not
		// create duplicate customers.
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoNothing: true,
		}).Create(&models.User{Email: event.Email}).Error; err != nil {
			return fmt.Errorf("user upsert failed: %w", err)
		}
		// Read back into a fresh struct. The insert attempt assigns a primary
		// key even when the row already exists, and gorm folds a non-zero key
		// on the destination into the query conditions.
		var user models.User
		if err := tx.Where("email = ?", event.Email).First(&user).Error; err != nil {
			return fmt.Errorf("user read-back failed: %w", err)
		}

		order := models.Order{
			ProductID:        product.ID,
			UserID:           user.ID,
			PricePaidInCents: event.AmountInCents,
			PaymentEventID:   event.EventID,
		}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("order create failed: %w", err)
		}

		verification := models.DownloadVerification{
			ProductID: product.ID,
			ExpiresAt: time.Now().Add(time.Duration(s.config.Download.TTLHours) * time.Hour),
		}
		if err := tx.Create(&verification).Error; err != nil {
			return fmt.Errorf("download verification create failed: %w", err)
		}

		fulfillment.User = &user
		fulfillment.Order = &order
		fulfillment.Verification = &verification
		return nil
	})
	if err != nil {
		return nil, err
	}

	if fulfillment.Duplicate {
		logrus.WithFields(logrus.Fields{
			"event_id": event.EventID,
			"order_id": fulfillment.Order.ID,
		}).Info("Duplicate charge event acknowledged")
		return fulfillment, nil
	}

	// The purchase is final once committed; receipt delivery must not undo it.
	if err := s.receipts.SendPurchaseReceipt(&product, fulfillment.Order, fulfillment.Verification.ID, event.Email); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"order_id":  fulfillment.Order.ID,
			"recipient": event.Email,
		}).Warn("Failed to send purchase receipt")
	}

	return fulfillment, nil
}
