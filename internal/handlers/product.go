// internal/handlers/product.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/storefront-backend/internal/services"
	"github.com/javajoker/storefront-backend/internal/utils"
)

type ProductHandler struct {
	catalogService *services.CatalogService
	paymentService *services.PaymentService
}

func NewProductHandler(catalogService *services.CatalogService, paymentService *services.PaymentService) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
		paymentService: paymentService,
	}
}

// GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	sort := c.DefaultQuery("sort", services.SortNewest)

	products, total, err := h.catalogService.ListAvailable(params, sort)
	if err != nil {
		logrus.WithError(err).Error("Failed to list products")
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(products, total, params))
}

// GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.NotFoundResponse(c, "Product")
		return
	}

	product, err := h.catalogService.GetAvailable(id)
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

// POST /products/:id/purchase
func (h *ProductHandler) PurchaseProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.NotFoundResponse(c, "Product")
		return
	}

	intent, err := h.paymentService.CreateProductPaymentIntent(id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProductNotFound):
			utils.NotFoundResponse(c, "Product")
		case errors.Is(err, services.ErrPaymentGateway):
			logrus.WithError(err).WithField("product_id", id).Error("Payment intent creation failed")
			utils.ErrorResponse(c, http.StatusBadGateway, "PAYMENT_GATEWAY_ERROR", "Payment could not be initiated", nil)
		default:
			logrus.WithError(err).Error("Purchase initiation failed")
			utils.InternalErrorResponse(c, "")
		}
		return
	}

	utils.SuccessResponse(c, intent)
}
