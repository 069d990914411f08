// internal/models/download_verification.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// DownloadVerification is a time-limited download credential. The row id is
// the opaque token handed to the customer; it is never mutated after creation
// and expiry is decided by comparing ExpiresAt to the clock at lookup time.
type DownloadVerification struct {
	BaseModel
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null;index"`

	// Relationships
	Product Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

// Expired reports whether the credential is past its validity window.
func (d *DownloadVerification) Expired(now time.Time) bool {
	return now.After(d.ExpiresAt)
}
