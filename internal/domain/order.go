package domain

import (
	"context"
	"time"
)

type PaymentMethod string

const (
	PaymentOnline PaymentMethod = "Online"
	PaymentCOD    PaymentMethod = "COD"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "Pending"
	PaymentPaid      PaymentStatus = "Paid"
	PaymentCompleted PaymentStatus = "Completed"
	PaymentFailed    PaymentStatus = "Failed"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "Pending"
	StatusPlaced     OrderStatus = "Placed"
	StatusDispatched OrderStatus = "Dispatched"
	StatusInTransit  OrderStatus = "In-Transit"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

func IsValidOrderStatus(status OrderStatus) bool {
	switch status {
	case StatusPending, StatusPlaced, StatusDispatched, StatusInTransit, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

func IsValidPaymentMethod(method PaymentMethod) bool {
	return method == PaymentOnline || method == PaymentCOD
}

type OrderItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
	// Weight is the human label of the purchased unit, e.g. "500g" or "2kg".
	Weight string `json:"weight"`
}

type Order struct {
	ID                int64         `json:"id"`
	CustomerID        int64         `json:"customerId"`
	Items             []OrderItem   `json:"items"`
	TotalAmount       float64       `json:"totalAmount"`
	ShippingAddress   string        `json:"shippingAddress"`
	PaymentMethod     PaymentMethod `json:"paymentMethod"`
	PaymentStatus     PaymentStatus `json:"paymentStatus"`
	OrderStatus       OrderStatus   `json:"orderStatus"`
	TrackingID        string        `json:"trackingId"`
	EstimatedDelivery time.Time     `json:"estimatedDelivery"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}

// TrackInfo is the customer-facing tracking snapshot.
type TrackInfo struct {
	Status     OrderStatus `json:"status"`
	TrackingID string      `json:"trackingId"`
	Address    string      `json:"address"`
}

type OrderRepository interface {
	CreateOrder(order *Order) (*Order, error)
	GetOrderByID(id int64) (*Order, error)
	// GetOrderForCustomer returns ErrNotFound when the order does not belong
	// to the given customer, indistinguishable from a missing order.
	GetOrderForCustomer(id, customerID int64) (*Order, error)
	UpdateOrderStatus(id int64, status OrderStatus) error
	UpdatePaymentState(id int64, paymentStatus PaymentStatus, orderStatus OrderStatus) error
	ListOrdersByCustomer(customerID int64) ([]Order, error)
	// ListOrdersByFarmer returns orders containing at least one item whose
	// product belongs to the farmer, newest first.
	ListOrdersByFarmer(farmerID int64) ([]Order, error)
	DeleteOrdersByCustomer(customerID int64) (int64, error)
	CountDeliveredByFarmer(farmerID int64) (int, error)
	CountActiveByCustomer(customerID int64) (int, error)
}

type CheckoutItem struct {
	ProductID      int64  `json:"productId"`
	Quantity       int    `json:"quantity"`
	SelectedWeight string `json:"selectedWeight"`
}

type CheckoutInput struct {
	Amount        float64        `json:"amount"`
	Address       string         `json:"address"`
	PaymentMethod PaymentMethod  `json:"paymentMethod"`
	Items         []CheckoutItem `json:"items"`
}

type OrderUseCase interface {
	Checkout(ctx context.Context, customerID int64, input CheckoutInput) (*Order, error)
	// VerifyPayment records the outcome of the external online payment.
	// succeeded=false reverts the stock decremented at checkout, once.
	VerifyPayment(ctx context.Context, customerID, orderID int64, succeeded bool) error
	UpdateStatus(ctx context.Context, orderID int64, status OrderStatus) (*Order, error)
	Cancel(ctx context.Context, customerID, orderID int64) error
	ListFarmerOrders(ctx context.Context, farmerID int64) ([]Order, error)
	ListMyOrders(ctx context.Context, customerID int64) ([]Order, error)
	Track(ctx context.Context, customerID, orderID int64) (*TrackInfo, error)
	ClearHistory(ctx context.Context, customerID int64) (int64, error)
}
