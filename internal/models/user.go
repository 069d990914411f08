// internal/models/user.go
package models

// User is a customer record, created implicitly on the first successful
// purchase. The email is the identity; it is stored exactly as the payment
// gateway reported it.
type User struct {
	BaseModel
	Email string `json:"email" gorm:"uniqueIndex;size:255;not null"`

	// Relationships
	Orders []Order `json:"orders,omitempty" gorm:"foreignKey:UserID"`
}
