// internal/handlers/admin.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/storefront-backend/internal/services"
	"github.com/javajoker/storefront-backend/internal/utils"
)

type AdminHandler struct {
	adminService   *services.AdminService
	catalogService *services.CatalogService
	storageService *services.StorageService
}

func NewAdminHandler(adminService *services.AdminService, catalogService *services.CatalogService, storageService *services.StorageService) *AdminHandler {
	return &AdminHandler{
		adminService:   adminService,
		catalogService: catalogService,
		storageService: storageService,
	}
}

// GET /admin/dashboard
func (h *AdminHandler) GetDashboard(c *gin.Context) {
	stats, err := h.adminService.GetDashboardStats()
	if err != nil {
		logrus.WithError(err).Error("Failed to compute dashboard stats")
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, gin.H{"stats": stats})
}

// GET /admin/products
func (h *AdminHandler) GetProducts(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	products, total, err := h.catalogService.List(params)
	if err != nil {
		logrus.WithError(err).Error("Failed to list products")
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(products, total, params))
}

// POST /admin/products
func (h *AdminHandler) CreateProduct(c *gin.Context) {
	priceInCents, err := strconv.ParseInt(c.PostForm("price_in_cents"), 10, 64)
	if err != nil {
		utils.BadRequestResponse(c, "price_in_cents must be an integer", nil)
		return
	}

	req := &services.CreateProductRequest{
		Name:         c.PostForm("name"),
		Description:  c.PostForm("description"),
		PriceInCents: priceInCents,
	}

	// Product file is mandatory; the image is optional.
	file, fileHeader, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "Product file is required", nil)
		return
	}
	defer file.Close()

	fileResult, err := h.storageService.UploadFile(file, fileHeader, h.storageService.GetDefaultUploadOptions("files"))
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}
	req.FilePath = fileResult.Key

	if image, imageHeader, err := c.Request.FormFile("image"); err == nil {
		defer image.Close()
		imageResult, err := h.storageService.UploadFile(image, imageHeader, h.storageService.GetDefaultUploadOptions("images"))
		if err != nil {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		req.ImagePath = imageResult.Key
	}

	if err := utils.ValidateStruct(req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	product, err := h.catalogService.Create(req)
	if err != nil {
		logrus.WithError(err).Error("Failed to create product")
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.CreatedResponse(c, product)
}

// GET /admin/products/:id
func (h *AdminHandler) GetProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.NotFoundResponse(c, "Product")
		return
	}

	product, err := h.catalogService.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			utils.NotFoundResponse(c, "Product")
			return
		}
		logrus.WithError(err).Error("Failed to fetch product")
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, product)
}

// PUT /admin/products/:id
func (h *AdminHandler) UpdateProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.NotFoundResponse(c, "Product")
		return
	}

	req := &services.UpdateProductRequest{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
	}
	if priceStr := c.PostForm("price_in_cents"); priceStr != "" {
		priceInCents, err := strconv.ParseInt(priceStr, 10, 64)
		if err != nil {
			utils.BadRequestResponse(c, "price_in_cents must be an integer", nil)
			return
		}
		req.PriceInCents = priceInCents
	}

	// Replacement files are optional on update.
	if file, fileHeader, err := c.Request.FormFile("file"); err == nil {
		defer file.Close()
		fileResult, err := h.storageService.UploadFile(file, fileHeader, h.storageService.GetDefaultUploadOptions("files"))
		if err != nil {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		req.FilePath = fileResult.Key
	}
	if image, imageHeader, err := c.Request.FormFile("image"); err == nil {
		defer image.Close()
		imageResult, err := h.storageService.UploadFile(image, imageHeader, h.storageService.GetDefaultUploadOptions("images"))
		if err != nil {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		req.ImagePath = imageResult.Key
	}

	if err := utils.ValidateStruct(req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	product, err := h.catalogService.Update(id, req)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			utils.NotFoundResponse(c, "Product")
			return
		}
		logrus.WithError(err).Error("Failed to update product")
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, product)
}

type setAvailabilityRequest struct {
	IsAvailableForPurchase *bool `json:"is_available_for_purchase" binding:"required"`
}

// PATCH /admin/products/:id/availability
func (h *AdminHandler) SetProductAvailability(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.NotFoundResponse(c, "Product")
		return
	}

	var req setAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "is_available_for_purchase is required", err.Error())
		return
	}

	product, err := h.catalogService.SetAvailability(id, *req.IsAvailableForPurchase)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			utils.NotFoundResponse(c, "Product")
			return
		}
		logrus.WithError(err).Error("Failed to toggle product availability")
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, product)
}

// DELETE /admin/products/:id
func (h *AdminHandler) DeleteProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.NotFoundResponse(c, "Product")
		return
	}

	product, err := h.catalogService.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			utils.NotFoundResponse(c, "Product")
			return
		}
		logrus.WithError(err).Error("Failed to fetch product")
		utils.InternalErrorResponse(c, "")
		return
	}

	if err := h.catalogService.Delete(id); err != nil {
		switch {
		case errors.Is(err, services.ErrProductNotFound):
			utils.NotFoundResponse(c, "Product")
		case errors.Is(err, services.ErrProductOrdered):
			utils.ConflictResponse(c, "Product has orders and cannot be deleted")
		default:
			logrus.WithError(err).Error("Failed to delete product")
			utils.InternalErrorResponse(c, "")
		}
		return
	}

	// The row is gone; clean up the stored artifacts, best-effort.
	if err := h.storageService.DeleteFile(product.FilePath); err != nil {
		logrus.WithError(err).WithField("key", product.FilePath).Warn("Failed to delete product file")
	}
	if product.ImagePath != "" {
		if err := h.storageService.DeleteFile(product.ImagePath); err != nil {
			logrus.WithError(err).WithField("key", product.ImagePath).Warn("Failed to delete product image")
		}
	}

	utils.SuccessResponse(c, gin.H{"deleted": true})
}

// GET /admin/products/:id/download
func (h *AdminHandler) DownloadProductFile(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.NotFoundResponse(c, "Product")
		return
	}

	product, err := h.catalogService.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			utils.NotFoundResponse(c, "Product")
			return
		}
		logrus.WithError(err).Error("Failed to fetch product")
		utils.InternalErrorResponse(c, "")
		return
	}

	if h.storageService.IsRemote() {
		url, err := h.storageService.PresignedURL(product.FilePath, 15*time.Minute)
		if err != nil {
			logrus.WithError(err).Error("Failed to presign admin download URL")
			utils.InternalErrorResponse(c, "")
			return
		}
		c.Redirect(http.StatusTemporaryRedirect, url)
		return
	}

	filename := fmt.Sprintf("%s%s", product.Name, filepath.Ext(product.FilePath))
	c.FileAttachment(h.storageService.LocalPath(product.FilePath), filename)
}

// GET /admin/orders
func (h *AdminHandler) GetOrders(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	orders, total, err := h.adminService.ListOrders(params)
	if err != nil {
		logrus.WithError(err).Error("Failed to list orders")
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(orders, total, params))
}

// GET /admin/users
func (h *AdminHandler) GetCustomers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	customers, total, err := h.adminService.ListCustomers(params)
	if err != nil {
		logrus.WithError(err).Error("Failed to list customers")
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(customers, total, params))
}
