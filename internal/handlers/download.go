// internal/handlers/download.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/services"
	"github.com/javajoker/storefront-backend/internal/utils"
)

type DownloadHandler struct {
	downloadService *services.DownloadService
	storageService  *services.StorageService
}

func NewDownloadHandler(downloadService *services.DownloadService, storageService *services.StorageService) *DownloadHandler {
	return &DownloadHandler{
		downloadService: downloadService,
		storageService:  storageService,
	}
}

// GET /downloads/:id
func (h *DownloadHandler) DownloadProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusNotFound, "INVALID_CREDENTIAL", "Download link is invalid", nil)
		return
	}

	product, err := h.downloadService.ValidateCredential(id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCredentialInvalid):
			utils.ErrorResponse(c, http.StatusNotFound, "INVALID_CREDENTIAL", "Download link is invalid", nil)
		case errors.Is(err, services.ErrCredentialExpired):
			utils.GoneResponse(c, "CREDENTIAL_EXPIRED", "Download link has expired")
		default:
			logrus.WithError(err).Error("Credential validation failed")
			utils.InternalErrorResponse(c, "")
		}
		return
	}

	h.serveProductFile(c, product)
}

func (h *DownloadHandler) serveProductFile(c *gin.Context, product *models.Product) {
	if h.storageService.IsRemote() {
		url, err := h.storageService.PresignedURL(product.FilePath, 15*time.Minute)
		if err != nil {
			logrus.WithError(err).WithField("product_id", product.ID).Error("Failed to presign download URL")
			utils.InternalErrorResponse(c, "")
			return
		}
		c.Redirect(http.StatusTemporaryRedirect, url)
		return
	}

	filename := fmt.Sprintf("%s%s", product.Name, filepath.Ext(product.FilePath))
	c.FileAttachment(h.storageService.LocalPath(product.FilePath), filename)
}
