package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/Anniix/kisanx-backend/internal/clients"
	"github.com/Anniix/kisanx-backend/internal/domain"
	"github.com/Anniix/kisanx-backend/internal/events"
	"github.com/sirupsen/logrus"
)

const (
	deliveryPointsAward  = 10
	estimatedDeliveryDur = 2 * 24 * time.Hour
)

var _ domain.OrderUseCase = (*orderUseCase)(nil)

type orderUseCase struct {
	orderRepo   domain.OrderRepository
	productRepo domain.ProductRepository
	userRepo    domain.UserRepository
	cartRepo    domain.CartRepository
	push        clients.PushSender
	publisher   events.Publisher
	log         *logrus.Logger
}

func NewOrderUseCase(
	orderRepo domain.OrderRepository,
	productRepo domain.ProductRepository,
	userRepo domain.UserRepository,
	cartRepo domain.CartRepository,
	push clients.PushSender,
	publisher events.Publisher,
	logger *logrus.Logger,
) domain.OrderUseCase {
	return &orderUseCase{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		cartRepo:    cartRepo,
		push:        push,
		publisher:   publisher,
		log:         logger,
	}
}

func newTrackingID() string {
	return fmt.Sprintf("KX%06d", rand.Intn(900000)+100000)
}

// Checkout validates stock for every item before anything is written, then
// creates the order and reserves stock item by item. Item mutations are
// independent statements: a reservation that fails after the order exists is
// logged loudly but not rolled back.
func (uc *orderUseCase) Checkout(ctx context.Context, customerID int64, input domain.CheckoutInput) (*domain.Order, error) {
	if input.Address == "" {
		return nil, fmt.Errorf("shipping address is required: %w", domain.ErrValidation)
	}
	if len(input.Items) == 0 {
		return nil, fmt.Errorf("order must contain at least one item: %w", domain.ErrValidation)
	}
	if !domain.IsValidPaymentMethod(input.PaymentMethod) {
		return nil, fmt.Errorf("invalid payment method '%s': %w", input.PaymentMethod, domain.ErrValidation)
	}
	for i, item := range input.Items {
		if item.ProductID <= 0 {
			return nil, fmt.Errorf("item %d: invalid product ID: %w", i, domain.ErrValidation)
		}
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("item %d (product %d): quantity must be positive: %w", i, item.ProductID, domain.ErrValidation)
		}
	}

	uc.log.Infof("Use Case: Starting checkout pre-check for customer %d (%d items)", customerID, len(input.Items))

	// All-or-nothing pre-pass: reject everything before any stock moves.
	for _, item := range input.Items {
		product, err := uc.productRepo.GetProductByID(item.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				uc.log.Warnf("Use Case: Checkout rejected, product %d not found", item.ProductID)
				return nil, fmt.Errorf("product not found: %d: %w", item.ProductID, domain.ErrNotFound)
			}
			return nil, fmt.Errorf("stock check failed for product %d: %w", item.ProductID, err)
		}

		requiredKg := domain.KilogramEquivalent(item.SelectedWeight, item.Quantity)
		if product.Quantity < requiredKg {
			uc.log.Warnf("Use Case: Checkout rejected, insufficient stock for '%s' (have %.3f kg, need %.3f kg)",
				product.Name, product.Quantity, requiredKg)
			return nil, fmt.Errorf("insufficient stock for: %s: %w", product.Name, domain.ErrInsufficientStock)
		}
	}

	order := &domain.Order{
		CustomerID:        customerID,
		TotalAmount:       input.Amount,
		ShippingAddress:   input.Address,
		PaymentMethod:     input.PaymentMethod,
		PaymentStatus:     domain.PaymentPending,
		OrderStatus:       domain.StatusPlaced,
		TrackingID:        newTrackingID(),
		EstimatedDelivery: time.Now().Add(estimatedDeliveryDur),
	}
	for _, item := range input.Items {
		order.Items = append(order.Items, domain.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Weight:    item.SelectedWeight,
		})
	}

	created, err := uc.orderRepo.CreateOrder(order)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to create order for customer %d: %v", customerID, err)
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Reservation pass. Each decrement re-checks sufficiency atomically, so a
	// concurrent checkout that won the race fails here instead of overselling.
	for _, item := range created.Items {
		kg := domain.KilogramEquivalent(item.Weight, item.Quantity)
		if err := uc.productRepo.DecrementQuantity(item.ProductID, kg); err != nil {
			uc.log.Errorf("Use Case: CRITICAL! Stock decrement failed for product %d (order %d, %.3f kg): %v. Manual stock adjustment needed!",
				item.ProductID, created.ID, kg, err)
		}
	}

	if input.PaymentMethod == domain.PaymentCOD {
		if err := uc.cartRepo.ClearCart(customerID); err != nil {
			uc.log.Errorf("Use Case: Failed to clear cart for customer %d after COD checkout: %v", customerID, err)
		}
	}

	uc.publisher.Publish("order_placed", map[string]interface{}{
		"order_id":       created.ID,
		"customer_id":    customerID,
		"payment_method": string(created.PaymentMethod),
		"total_amount":   created.TotalAmount,
	})

	uc.log.Infof("Use Case: Order %d placed for customer %d (tracking %s)", created.ID, customerID, created.TrackingID)
	return created, nil
}

// VerifyPayment applies the outcome of the online payment. The failure path
// reverts stock exactly once: an order already marked Failed/Cancelled is
// left alone so repeated callbacks cannot double-restore.
func (uc *orderUseCase) VerifyPayment(ctx context.Context, customerID, orderID int64, succeeded bool) error {
	order, err := uc.orderRepo.GetOrderByID(orderID)
	if err != nil {
		return err
	}

	if succeeded {
		if err := uc.orderRepo.UpdatePaymentState(orderID, domain.PaymentPaid, domain.StatusPlaced); err != nil {
			return err
		}
		if err := uc.cartRepo.ClearCart(customerID); err != nil {
			uc.log.Errorf("Use Case: Failed to clear cart for customer %d after payment: %v", customerID, err)
		}
		uc.publisher.Publish("payment_verified", map[string]interface{}{
			"order_id": orderID,
			"outcome":  "success",
		})
		uc.log.Infof("Use Case: Payment verified for order %d", orderID)
		return nil
	}

	if order.PaymentStatus == domain.PaymentFailed || order.OrderStatus == domain.StatusCancelled {
		uc.log.Warnf("Use Case: Payment failure for order %d already processed, skipping stock reversal", orderID)
		return nil
	}

	for _, item := range order.Items {
		kg := domain.KilogramEquivalent(item.Weight, item.Quantity)
		if err := uc.productRepo.IncrementQuantity(item.ProductID, kg); err != nil {
			uc.log.Errorf("Use Case: CRITICAL! Failed to restore %.3f kg to product %d for failed payment on order %d: %v. Manual stock adjustment needed!",
				kg, item.ProductID, orderID, err)
		}
	}

	if err := uc.orderRepo.UpdatePaymentState(orderID, domain.PaymentFailed, domain.StatusCancelled); err != nil {
		return err
	}

	uc.publisher.Publish("payment_verified", map[string]interface{}{
		"order_id": orderID,
		"outcome":  "failed",
	})
	uc.log.Warnf("Use Case: Payment failed for order %d, stock reverted", orderID)
	return nil
}

// UpdateStatus overwrites the order status without checking transition
// legality; only the points award is guarded, keyed on the order not having
// been Delivered before this call.
func (uc *orderUseCase) UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatus) (*domain.Order, error) {
	if !domain.IsValidOrderStatus(status) {
		return nil, fmt.Errorf("invalid order status '%s': %w", status, domain.ErrValidation)
	}

	order, err := uc.orderRepo.GetOrderByID(orderID)
	if err != nil {
		return nil, err
	}

	if status == domain.StatusDelivered && order.OrderStatus != domain.StatusDelivered {
		uc.awardDeliveryPoints(order)
	}

	if err := uc.orderRepo.UpdateOrderStatus(orderID, status); err != nil {
		return nil, err
	}
	order.OrderStatus = status

	uc.notifyCustomer(ctx, order.CustomerID, "Order Update",
		fmt.Sprintf("Your order #%d is now %s", order.ID, status))

	uc.publisher.Publish("status_updated", map[string]interface{}{
		"order_id": orderID,
		"status":   string(status),
	})

	uc.log.Infof("Use Case: Order %d status updated to '%s'", orderID, status)
	return order, nil
}

// awardDeliveryPoints credits each distinct farmer with items in the order
// once, then the customer once. Award failures on one user do not stop the
// others.
func (uc *orderUseCase) awardDeliveryPoints(order *domain.Order) {
	awarded := make(map[int64]struct{})
	for _, item := range order.Items {
		product, err := uc.productRepo.GetProductByID(item.ProductID)
		if err != nil {
			uc.log.Warnf("Use Case: Skipping points for product %d on order %d: %v", item.ProductID, order.ID, err)
			continue
		}
		if _, done := awarded[product.FarmerID]; done {
			continue
		}
		awarded[product.FarmerID] = struct{}{}
		if err := uc.userRepo.AddPoints(product.FarmerID, deliveryPointsAward); err != nil {
			uc.log.Errorf("Use Case: Failed to award points to farmer %d for order %d: %v", product.FarmerID, order.ID, err)
		}
	}

	if err := uc.userRepo.AddPoints(order.CustomerID, deliveryPointsAward); err != nil {
		uc.log.Errorf("Use Case: Failed to award points to customer %d for order %d: %v", order.CustomerID, order.ID, err)
	}

	uc.log.Infof("Use Case: Delivery points awarded for order %d (%d farmers, 1 customer)", order.ID, len(awarded))
}

func (uc *orderUseCase) notifyCustomer(ctx context.Context, customerID int64, title, body string) {
	user, err := uc.userRepo.GetUserByID(customerID)
	if err != nil {
		uc.log.Warnf("Use Case: Could not load customer %d for notification: %v", customerID, err)
		return
	}
	if user.PushToken == "" {
		return
	}
	if err := uc.push.Send(ctx, user.PushToken, title, body); err != nil {
		uc.log.Warnf("Use Case: Push notification to customer %d failed: %v", customerID, err)
	}
}

func (uc *orderUseCase) Cancel(ctx context.Context, customerID, orderID int64) error {
	order, err := uc.orderRepo.GetOrderForCustomer(orderID, customerID)
	if err != nil {
		return err
	}

	switch order.OrderStatus {
	case domain.StatusDispatched, domain.StatusDelivered, domain.StatusCancelled:
		uc.log.Warnf("Use Case: Customer %d attempted to cancel order %d in status '%s'", customerID, orderID, order.OrderStatus)
		return fmt.Errorf("cannot cancel order in current status '%s': %w", order.OrderStatus, domain.ErrInvalidState)
	}

	for _, item := range order.Items {
		kg := domain.KilogramEquivalent(item.Weight, item.Quantity)
		if err := uc.productRepo.IncrementQuantity(item.ProductID, kg); err != nil {
			uc.log.Errorf("Use Case: CRITICAL! Failed to restore %.3f kg to product %d for cancelled order %d: %v. Manual stock adjustment needed!",
				kg, item.ProductID, orderID, err)
		}
	}

	if err := uc.orderRepo.UpdateOrderStatus(orderID, domain.StatusCancelled); err != nil {
		return err
	}

	uc.publisher.Publish("order_cancelled", map[string]interface{}{
		"order_id":    orderID,
		"customer_id": customerID,
	})

	uc.log.Infof("Use Case: Order %d cancelled by customer %d, stock restored", orderID, customerID)
	return nil
}

func (uc *orderUseCase) ListFarmerOrders(ctx context.Context, farmerID int64) ([]domain.Order, error) {
	orders, err := uc.orderRepo.ListOrdersByFarmer(farmerID)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to list orders for farmer %d: %v", farmerID, err)
		return nil, fmt.Errorf("could not retrieve farmer orders: %w", err)
	}
	return orders, nil
}

func (uc *orderUseCase) ListMyOrders(ctx context.Context, customerID int64) ([]domain.Order, error) {
	orders, err := uc.orderRepo.ListOrdersByCustomer(customerID)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to list orders for customer %d: %v", customerID, err)
		return nil, fmt.Errorf("could not retrieve orders: %w", err)
	}
	return orders, nil
}

func (uc *orderUseCase) Track(ctx context.Context, customerID, orderID int64) (*domain.TrackInfo, error) {
	order, err := uc.orderRepo.GetOrderForCustomer(orderID, customerID)
	if err != nil {
		return nil, err
	}

	return &domain.TrackInfo{
		Status:     order.OrderStatus,
		TrackingID: order.TrackingID,
		Address:    order.ShippingAddress,
	}, nil
}

func (uc *orderUseCase) ClearHistory(ctx context.Context, customerID int64) (int64, error) {
	deleted, err := uc.orderRepo.DeleteOrdersByCustomer(customerID)
	if err != nil {
		return 0, err
	}

	uc.log.Infof("Use Case: Cleared %d orders from history of customer %d", deleted, customerID)
	return deleted, nil
}
