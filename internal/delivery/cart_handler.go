package delivery

import (
	"net/http"
	"strconv"

	"github.com/Anniix/kisanx-backend/internal/domain"
	"github.com/Anniix/kisanx-backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type CartHandler struct {
	useCase domain.CartUseCase
	log     *logrus.Logger
}

func NewCartHandler(uc domain.CartUseCase, logger *logrus.Logger) *CartHandler {
	return &CartHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *CartHandler) RegisterRoutes(router gin.IRouter, protect, customerOnly gin.HandlerFunc) {
	cart := router.Group("/cart", protect, customerOnly)
	{
		cart.POST("", h.AddToCart)
		cart.PUT("/update", h.UpdateQuantity)
		cart.GET("", h.ViewCart)
		cart.DELETE("/:productId", h.RemoveFromCart)
	}
}

type cartItemRequest struct {
	ProductID int64 `json:"productId" binding:"required"`
	Quantity  int   `json:"quantity"`
}

func (h *CartHandler) AddToCart(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	cart, err := h.useCase.AddToCart(c.Request.Context(), user.ID, req.ProductID, req.Quantity)
	if err != nil {
		h.log.Warnf("Handler: Failed to add product %d to cart for user %d: %v", req.ProductID, user.ID, err)
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Item added to cart", cart)
}

func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	cart, err := h.useCase.UpdateQuantity(c.Request.Context(), user.ID, req.ProductID, req.Quantity)
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Cart updated", cart)
}

func (h *CartHandler) ViewCart(c *gin.Context) {
	user := middleware.CurrentUser(c)

	cart, err := h.useCase.ViewCart(c.Request.Context(), user.ID)
	if err != nil {
		h.log.Errorf("Handler: Failed to fetch cart for user %d: %v", user.ID, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to fetch cart")
		return
	}

	SuccessResponse(c, http.StatusOK, "Cart retrieved successfully", cart)
}

func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	user := middleware.CurrentUser(c)

	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil || productID <= 0 {
		ErrorResponse(c, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	cart, err := h.useCase.RemoveFromCart(c.Request.Context(), user.ID, productID)
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Item removed from cart", cart)
}
