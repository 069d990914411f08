// internal/services/payment_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// Only the local reject paths are covered here; the gateway call itself
// needs live credentials.

func TestCreateProductPaymentIntentUnknownProduct(t *testing.T) {
	db := newTestDB(t)
	service := NewPaymentService(db, newTestConfig())

	_, err := service.CreateProductPaymentIntent(uuid.New())
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCreateProductPaymentIntentUnavailableProduct(t *testing.T) {
	db := newTestDB(t)
	service := NewPaymentService(db, newTestConfig())
	product := seedProduct(t, db, 1999, false)

	_, err := service.CreateProductPaymentIntent(product.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}
