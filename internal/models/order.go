// internal/models/order.go
package models

import (
	"github.com/google/uuid"
)

// Order is immutable once created. PricePaidInCents is the amount the gateway
// actually charged, which may differ from the product's current price.
type Order struct {
	BaseModel
	ProductID        uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	UserID           uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	PricePaidInCents int64     `json:"price_paid_in_cents" gorm:"not null"`
	// PaymentEventID is the gateway event id that produced this order. The
	// unique index is what makes webhook redelivery a no-op.
	PaymentEventID string `json:"payment_event_id" gorm:"size:255;uniqueIndex;not null"`

	// Relationships
	Product Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	User    User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
