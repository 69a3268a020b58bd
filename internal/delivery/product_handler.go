package delivery

import (
	"net/http"
	"strconv"

	"github.com/Anniix/kisanx-backend/internal/domain"
	"github.com/Anniix/kisanx-backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ProductHandler struct {
	useCase domain.ProductUseCase
	log     *logrus.Logger
}

func NewProductHandler(uc domain.ProductUseCase, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *ProductHandler) RegisterRoutes(router gin.IRouter, protect, farmerOnly gin.HandlerFunc) {
	products := router.Group("/products")
	{
		products.GET("", h.ListProducts)
		products.GET("/:id", h.GetProduct)
		products.POST("", protect, farmerOnly, h.AddProduct)
		products.DELETE("/:id", protect, farmerOnly, h.DeleteProduct)
	}
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	products, err := h.useCase.ListProducts(c.Request.Context())
	if err != nil {
		h.log.Errorf("Handler: Failed to list products: %v", err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to fetch products")
		return
	}

	SuccessResponse(c, http.StatusOK, "Products retrieved successfully", products)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		ErrorResponse(c, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	product, err := h.useCase.GetProduct(c.Request.Context(), id)
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), "Product or Farmer not found")
		return
	}

	SuccessResponse(c, http.StatusOK, "Product retrieved successfully", product)
}

func (h *ProductHandler) AddProduct(c *gin.Context) {
	farmer := middleware.CurrentUser(c)

	var input domain.CreateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	product, err := h.useCase.AddProduct(c.Request.Context(), farmer.ID, input)
	if err != nil {
		h.log.Warnf("Handler: Failed to add product for farmer %d: %v", farmer.ID, err)
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}

	SuccessResponse(c, http.StatusCreated, "Product added successfully", product)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	farmer := middleware.CurrentUser(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		ErrorResponse(c, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	if err := h.useCase.DeleteProduct(c.Request.Context(), farmer.ID, id); err != nil {
		ErrorResponse(c, mapErrorToStatus(err), "Product not found or unauthorized")
		return
	}

	SuccessResponse(c, http.StatusOK, "Product deleted successfully from market", nil)
}
