// internal/models/product.go
package models

type Product struct {
	BaseModel
	Name                   string `json:"name" gorm:"size:255;not null"`
	Description            string `json:"description" gorm:"type:text"`
	PriceInCents           int64  `json:"price_in_cents" gorm:"not null"`
	ImagePath              string `json:"image_path" gorm:"size:512"`
	FilePath               string `json:"-" gorm:"size:512;not null"`
	IsAvailableForPurchase bool   `json:"is_available_for_purchase" gorm:"default:false;index"`

	// Relationships
	Orders                []Order                `json:"orders,omitempty" gorm:"foreignKey:ProductID"`
	DownloadVerifications []DownloadVerification `json:"-" gorm:"foreignKey:ProductID"`
}
