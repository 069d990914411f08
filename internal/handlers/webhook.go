// internal/handlers/webhook.go
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"

	"github.com/javajoker/storefront-backend/internal/config"
	"github.com/javajoker/storefront-backend/internal/services"
	"github.com/javajoker/storefront-backend/internal/utils"
)

// Stripe reads at most 64KB of webhook payload; anything larger is bogus.
const maxWebhookBodyBytes = 65536

type WebhookHandler struct {
	orderService *services.OrderService
	config       *config.Config
}

func NewWebhookHandler(orderService *services.OrderService, config *config.Config) *WebhookHandler {
	return &WebhookHandler{
		orderService: orderService,
		config:       config,
	}
}

// POST /webhooks/stripe
func (h *WebhookHandler) HandleStripeEvent(c *gin.Context) {
	// The signature covers the raw bytes, so verify before any re-parsing.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.BadRequestResponse(c, "Unreadable webhook payload", nil)
		return
	}

	// The account's API version can differ from the SDK's pin; the signature
	// check is what gates this endpoint.
	event, err := webhook.ConstructEventWithOptions(payload, c.GetHeader("Stripe-Signature"), h.config.Stripe.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		logrus.WithError(err).Warn("Rejected webhook delivery with bad signature")
		utils.BadRequestResponse(c, "Invalid webhook signature", nil)
		return
	}

	// The gateway delivers many event kinds to this endpoint; anything that
	// is not a completed charge is acknowledged untouched.
	if event.Type != "charge.succeeded" {
		c.Status(http.StatusOK)
		return
	}

	var charge stripe.Charge
	if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
		utils.BadRequestResponse(c, "Malformed charge payload", nil)
		return
	}

	chargeEvent := &services.ChargeEvent{
		EventID:       event.ID,
		ProductID:     charge.Metadata["productId"],
		AmountInCents: charge.Amount,
	}
	if charge.BillingDetails != nil {
		chargeEvent.Email = charge.BillingDetails.Email
	}

	if _, err := h.orderService.ProcessChargeSucceeded(chargeEvent); err != nil {
		switch {
		case errors.Is(err, services.ErrProductNotFound), errors.Is(err, services.ErrMissingEmail):
			// Permanent rejection: a retry would fail the same way.
			utils.BadRequestResponse(c, "Charge event references unknown product or payer", nil)
		default:
			// Transient store failure; a server error makes the gateway redeliver.
			logrus.WithError(err).WithField("event_id", event.ID).Error("Charge reconciliation failed")
			utils.InternalErrorResponse(c, "")
		}
		return
	}

	c.Status(http.StatusOK)
}
