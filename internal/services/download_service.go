// internal/services/download_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/config"
	"github.com/javajoker/storefront-backend/internal/models"
)

type DownloadService struct {
	db     *gorm.DB
	config *config.Config
}

func NewDownloadService(db *gorm.DB, config *config.Config) *DownloadService {
	return &DownloadService{
		db:     db,
		config: config,
	}
}

// ValidateCredential resolves a download credential to its product. The
// credential stays reusable until it expires; validation never mutates it.
func (s *DownloadService) ValidateCredential(id uuid.UUID) (*models.Product, error) {
	var verification models.DownloadVerification
	err := s.db.Preload("Product").First(&verification, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCredentialInvalid
		}
		return nil, fmt.Errorf("credential lookup failed: %w", err)
	}

	if verification.Expired(time.Now()) {
		return nil, ErrCredentialExpired
	}

	return &verification.Product, nil
}

// SweepExpired deletes credentials that expired more than a day ago. Expiry
// itself is enforced at validation time; this only keeps the table small.
func (s *DownloadService) SweepExpired() (int64, error) {
	cutoff := time.Now().Add(-24 * time.Hour)
	result := s.db.Unscoped().
		Where("expires_at < ?", cutoff).
		Delete(&models.DownloadVerification{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to sweep expired credentials: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// StartSweeper runs SweepExpired on a fixed interval until stop is closed.
func (s *DownloadService) StartSweeper(stop <-chan struct{}) {
	interval := time.Duration(s.config.Download.SweepIntervalMinutes) * time.Minute

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				deleted, err := s.SweepExpired()
				if err != nil {
					logrus.WithError(err).Error("Expired credential sweep failed")
					continue
				}
				if deleted > 0 {
					logrus.WithField("deleted", deleted).Info("Swept expired download credentials")
				}
			case <-stop:
				return
			}
		}
	}()
}
