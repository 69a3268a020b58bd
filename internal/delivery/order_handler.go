package delivery

import (
	"net/http"
	"strconv"

	"github.com/Anniix/kisanx-backend/internal/domain"
	"github.com/Anniix/kisanx-backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type OrderHandler struct {
	useCase domain.OrderUseCase
	log     *logrus.Logger
}

func NewOrderHandler(uc domain.OrderUseCase, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		useCase: uc,
		log:     logger,
	}
}

// RegisterRoutes mounts the order routes. The farmer listing and the status
// update are open to any authenticated user, matching the operator-driven
// status flow; the customer routes are role-guarded.
func (h *OrderHandler) RegisterRoutes(router gin.IRouter, protect, customerOnly gin.HandlerFunc) {
	orders := router.Group("/orders")
	orders.Use(protect)
	{
		orders.GET("/farmer", h.ListFarmerOrders)
		orders.PUT("/update-status/:id", h.UpdateStatus)

		orders.POST("/checkout", customerOnly, h.Checkout)
		orders.POST("/verify-payment", customerOnly, h.VerifyPayment)
		orders.GET("/my-orders", customerOnly, h.ListMyOrders)
		orders.GET("/track/:id", customerOnly, h.Track)
		orders.PATCH("/cancel/:id", customerOnly, h.Cancel)
		orders.DELETE("/clear-history", customerOnly, h.ClearHistory)
	}
}

func orderIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		ErrorResponse(c, http.StatusBadRequest, "Invalid order ID format")
		return 0, false
	}
	return id, true
}

func (h *OrderHandler) Checkout(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var input domain.CheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.log.Warnf("Handler: Failed to bind checkout body for customer %d: %v", user.ID, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	order, err := h.useCase.Checkout(c.Request.Context(), user.ID, input)
	if err != nil {
		h.log.Warnf("Handler: Checkout failed for customer %d: %v", user.ID, err)
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}

	SuccessResponse(c, http.StatusCreated, "Order placed successfully", gin.H{"orderId": order.ID, "trackingId": order.TrackingID})
}

func (h *OrderHandler) VerifyPayment(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var body struct {
		OrderID int64  `json:"orderId"`
		Status  string `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	succeeded := body.Status == "success"
	if err := h.useCase.VerifyPayment(c.Request.Context(), user.ID, body.OrderID, succeeded); err != nil {
		h.log.Warnf("Handler: Payment verification failed for order %d: %v", body.OrderID, err)
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}

	if !succeeded {
		ErrorResponse(c, http.StatusBadRequest, "Payment Failed. Stock Reverted.")
		return
	}
	SuccessResponse(c, http.StatusOK, "Payment Verified Successfully", nil)
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}

	var body struct {
		Status domain.OrderStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	order, err := h.useCase.UpdateStatus(c.Request.Context(), id, body.Status)
	if err != nil {
		h.log.Warnf("Handler: Status update failed for order %d: %v", id, err)
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Status updated successfully", gin.H{"orderStatus": order.OrderStatus})
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	user := middleware.CurrentUser(c)
	id, ok := orderIDParam(c)
	if !ok {
		return
	}

	if err := h.useCase.Cancel(c.Request.Context(), user.ID, id); err != nil {
		h.log.Warnf("Handler: Cancellation failed for order %d (customer %d): %v", id, user.ID, err)
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Order cancelled successfully and stock restored", nil)
}

func (h *OrderHandler) ListFarmerOrders(c *gin.Context) {
	user := middleware.CurrentUser(c)

	orders, err := h.useCase.ListFarmerOrders(c.Request.Context(), user.ID)
	if err != nil {
		h.log.Errorf("Handler: Failed to list farmer orders for user %d: %v", user.ID, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to fetch farmer orders")
		return
	}

	SuccessResponse(c, http.StatusOK, "Orders retrieved successfully", orders)
}

func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	user := middleware.CurrentUser(c)

	orders, err := h.useCase.ListMyOrders(c.Request.Context(), user.ID)
	if err != nil {
		h.log.Errorf("Handler: Failed to list orders for customer %d: %v", user.ID, err)
		ErrorResponse(c, mapErrorToStatus(err), "Error fetching orders")
		return
	}

	SuccessResponse(c, http.StatusOK, "Orders retrieved successfully", orders)
}

func (h *OrderHandler) Track(c *gin.Context) {
	user := middleware.CurrentUser(c)
	id, ok := orderIDParam(c)
	if !ok {
		return
	}

	info, err := h.useCase.Track(c.Request.Context(), user.ID, id)
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), "Order not found")
		return
	}

	SuccessResponse(c, http.StatusOK, "Order tracked successfully", info)
}

func (h *OrderHandler) ClearHistory(c *gin.Context) {
	user := middleware.CurrentUser(c)

	deleted, err := h.useCase.ClearHistory(c.Request.Context(), user.ID)
	if err != nil {
		h.log.Errorf("Handler: Failed to clear history for customer %d: %v", user.ID, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to clear history")
		return
	}

	SuccessResponse(c, http.StatusOK, "Order history cleared successfully", gin.H{"deletedCount": deleted})
}
