// internal/services/payment_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/config"
	"github.com/javajoker/storefront-backend/internal/models"
)

type PaymentService struct {
	db     *gorm.DB
	config *config.Config
}

type PaymentIntentResponse struct {
	ClientSecret  string `json:"client_secret"`
	PaymentID     string `json:"payment_id"`
	AmountInCents int64  `json:"amount_in_cents"`
	Currency      string `json:"currency"`
}

func NewPaymentService(db *gorm.DB, config *config.Config) *PaymentService {
	// Initialize Stripe
	stripe.Key = config.Stripe.SecretKey

	return &PaymentService{
		db:     db,
		config: config,
	}
}

// CreateProductPaymentIntent opens a gateway payment intent for the product's
// current price. The product id rides along in the intent metadata so the
// charge-succeeded webhook can recover it later.
func (s *PaymentService) CreateProductPaymentIntent(productID uuid.UUID) (*PaymentIntentResponse, error) {
	var product models.Product
	if err := s.db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("product lookup failed: %w", err)
	}

	if !product.IsAvailableForPurchase {
		return nil, ErrProductNotFound
	}

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(product.PriceInCents),
		Currency:           stripe.String(s.config.Stripe.Currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.AddMetadata("productId", product.ID.String())

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create payment intent: %v", ErrPaymentGateway, err)
	}

	if pi.ClientSecret == "" {
		return nil, fmt.Errorf("%w: payment intent has no client secret", ErrPaymentGateway)
	}

	return &PaymentIntentResponse{
		ClientSecret:  pi.ClientSecret,
		PaymentID:     pi.ID,
		AmountInCents: product.PriceInCents,
		Currency:      s.config.Stripe.Currency,
	}, nil
}
