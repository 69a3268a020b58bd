package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/Anniix/kisanx-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderFixture struct {
	orders    *fakeOrderRepo
	products  *fakeProductRepo
	users     *fakeUserRepo
	carts     *fakeCartRepo
	push      *fakePushSender
	publisher *fakePublisher
	uc        domain.OrderUseCase
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		orders:    newFakeOrderRepo(),
		products:  newFakeProductRepo(),
		users:     newFakeUserRepo(),
		carts:     newFakeCartRepo(),
		push:      &fakePushSender{},
		publisher: &fakePublisher{},
	}
	f.uc = NewOrderUseCase(f.orders, f.products, f.users, f.carts, f.push, f.publisher, testLogger())
	return f
}

func (f *orderFixture) addUser(role domain.Role) *domain.User {
	user, _ := f.users.CreateUser(&domain.User{
		FirstName: "Test",
		Email:     string(role) + "@example.com",
		Role:      role,
	})
	return user
}

func (f *orderFixture) addProduct(farmerID int64, name string, stockKg float64) *domain.Product {
	product, _ := f.products.CreateProduct(&domain.Product{
		Name:     name,
		Price:    40,
		Quantity: stockKg,
		Category: "vegetables",
		Unit:     "kg",
		FarmerID: farmerID,
	})
	return product
}

func TestCheckoutDecrementsKilogramEquivalents(t *testing.T) {
	f := newOrderFixture()
	customer := f.addUser(domain.RoleCustomer)
	farmer := f.addUser(domain.RoleFarmer)
	tomato := f.addProduct(farmer.ID, "Tomato", 5)
	potato := f.addProduct(farmer.ID, "Potato", 10)
	_ = f.carts.AddItem(customer.ID, tomato.ID, 2)

	order, err := f.uc.Checkout(context.Background(), customer.ID, domain.CheckoutInput{
		Amount:        120,
		Address:       "Village Road, Nashik",
		PaymentMethod: domain.PaymentCOD,
		Items: []domain.CheckoutItem{
			{ProductID: tomato.ID, Quantity: 2, SelectedWeight: "500g"},
			{ProductID: potato.ID, Quantity: 1, SelectedWeight: "2kg"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPlaced, order.OrderStatus)
	assert.Equal(t, domain.PaymentPending, order.PaymentStatus)
	assert.True(t, strings.HasPrefix(order.TrackingID, "KX"))
	assert.Len(t, order.TrackingID, 8)
	assert.False(t, order.EstimatedDelivery.IsZero())

	gotTomato, _ := f.products.GetProductByID(tomato.ID)
	gotPotato, _ := f.products.GetProductByID(potato.ID)
	assert.InDelta(t, 4.0, gotTomato.Quantity, 1e-9)
	assert.InDelta(t, 8.0, gotPotato.Quantity, 1e-9)

	cart, _ := f.carts.GetCart(customer.ID)
	assert.Empty(t, cart.Items, "COD checkout should clear the cart")
	assert.Contains(t, f.publisher.events, "order_placed")
}

func TestCheckoutOnlineKeepsCartUntilPayment(t *testing.T) {
	f := newOrderFixture()
	customer := f.addUser(domain.RoleCustomer)
	farmer := f.addUser(domain.RoleFarmer)
	tomato := f.addProduct(farmer.ID, "Tomato", 5)
	_ = f.carts.AddItem(customer.ID, tomato.ID, 1)

	_, err := f.uc.Checkout(context.Background(), customer.ID, domain.CheckoutInput{
		Amount:        40,
		Address:       "Village Road, Nashik",
		PaymentMethod: domain.PaymentOnline,
		Items: []domain.CheckoutItem{
			{ProductID: tomato.ID, Quantity: 1, SelectedWeight: "1kg"},
		},
	})
	require.NoError(t, err)

	cart, _ := f.carts.GetCart(customer.ID)
	assert.Len(t, cart.Items, 1, "online checkout keeps the cart until payment is verified")
}

func TestCheckoutInsufficientStockCreatesNothing(t *testing.T) {
	f := newOrderFixture()
	customer := f.addUser(domain.RoleCustomer)
	farmer := f.addUser(domain.RoleFarmer)
	tomato := f.addProduct(farmer.ID, "Tomato", 5)
	onion := f.addProduct(farmer.ID, "Onion", 0.4)

	_, err := f.uc.Checkout(context.Background(), customer.ID, domain.CheckoutInput{
		Amount:        100,
		Address:       "Village Road, Nashik",
		PaymentMethod: domain.PaymentCOD,
		Items: []domain.CheckoutItem{
			{ProductID: tomato.ID, Quantity: 1, SelectedWeight: "1kg"},
			{ProductID: onion.ID, Quantity: 1, SelectedWeight: "500g"},
		},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	gotTomato, _ := f.products.GetProductByID(tomato.ID)
	gotOnion, _ := f.products.GetProductByID(onion.ID)
	assert.InDelta(t, 5.0, gotTomato.Quantity, 1e-9, "no stock moves when any item fails the pre-check")
	assert.InDelta(t, 0.4, gotOnion.Quantity, 1e-9)
	assert.Empty(t, f.orders.orders)
	assert.Empty(t, f.publisher.events)
}

func TestCheckoutUnknownProduct(t *testing.T) {
	f := newOrderFixture()
	customer := f.addUser(domain.RoleCustomer)

	_, err := f.uc.Checkout(context.Background(), customer.ID, domain.CheckoutInput{
		Amount:        50,
		Address:       "Village Road, Nashik",
		PaymentMethod: domain.PaymentCOD,
		Items: []domain.CheckoutItem{
			{ProductID: 999, Quantity: 1, SelectedWeight: "1kg"},
		},
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, f.orders.orders)
}

func TestCheckoutValidation(t *testing.T) {
	f := newOrderFixture()
	customer := f.addUser(domain.RoleCustomer)
	ctx := context.Background()

	valid := domain.CheckoutInput{
		Amount:        50,
		Address:       "Village Road, Nashik",
		PaymentMethod: domain.PaymentCOD,
		Items:         []domain.CheckoutItem{{ProductID: 1, Quantity: 1, SelectedWeight: "1kg"}},
	}

	noAddress := valid
	noAddress.Address = ""
	_, err := f.uc.Checkout(ctx, customer.ID, noAddress)
	assert.ErrorIs(t, err, domain.ErrValidation)

	noItems := valid
	noItems.Items = nil
	_, err = f.uc.Checkout(ctx, customer.ID, noItems)
	assert.ErrorIs(t, err, domain.ErrValidation)

	badMethod := valid
	badMethod.PaymentMethod = "Barter"
	_, err = f.uc.Checkout(ctx, customer.ID, badMethod)
	assert.ErrorIs(t, err, domain.ErrValidation)

	zeroQuantity := valid
	zeroQuantity.Items = []domain.CheckoutItem{{ProductID: 1, Quantity: 0, SelectedWeight: "1kg"}}
	_, err = f.uc.Checkout(ctx, customer.ID, zeroQuantity)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestVerifyPaymentSuccess(t *testing.T) {
	f := newOrderFixture()
	customer := f.addUser(domain.RoleCustomer)
	farmer := f.addUser(domain.RoleFarmer)
	tomato := f.addProduct(farmer.ID, "Tomato", 5)
	_ = f.carts.AddItem(customer.ID, tomato.ID, 1)

	order, err := f.uc.Checkout(context.Background(), customer.ID, domain.CheckoutInput{
		Amount:        40,
		Address:       "Village Road, Nashik",
		PaymentMethod: domain.PaymentOnline,
		Items:         []domain.CheckoutItem{{ProductID: tomato.ID, Quantity: 1, SelectedWeight: "1kg"}},
	})
	require.NoError(t, err)

	err = f.uc.VerifyPayment(context.Background(), customer.ID, order.ID, true)
	require.NoError(t, err)

	stored, _ := f.orders.GetOrderByID(order.ID)
	assert.Equal(t, domain.PaymentPaid, stored.PaymentStatus)
	assert.Equal(t, domain.StatusPlaced, stored.OrderStatus)

	cart, _ := f.carts.GetCart(customer.ID)
	assert.Empty(t, cart.Items)
}

func TestVerifyPaymentFailureRevertsStockOnce(t *testing.T) {
	f := newOrderFixture()
	customer := f.addUser(domain.RoleCustomer)
	farmer := f.addUser(domain.RoleFarmer)
	tomato := f.addProduct(farmer.ID, "Tomato", 5)

	order, err := f.uc.Checkout(context.Background(), customer.ID, domain.CheckoutInput{
		Amount:        80,
		Address:       "Village Road, Nashik",
		PaymentMethod: domain.PaymentOnline,
		Items:         []domain.CheckoutItem{{ProductID: tomato.ID, Quantity: 2, SelectedWeight: "1kg"}},
	})
	require.NoError(t, err)

	got, _ := f.products.GetProductByID(tomato.ID)
	require.InDelta(t, 3.0, got.Quantity, 1e-9)

	err = f.uc.VerifyPayment(context.Background(), customer.ID, order.ID, false)
	require.NoError(t, err)

	got, _ = f.products.GetProductByID(tomato.ID)
	assert.InDelta(t, 5.0, got.Quantity, 1e-9, "failed payment restores reserved stock")

	stored, _ := f.orders.GetOrderByID(order.ID)
	assert.Equal(t, domain.PaymentFailed, stored.PaymentStatus)
	assert.Equal(t, domain.StatusCancelled, stored.OrderStatus)

	// A repeated gateway callback must not restore the stock again.
	err = f.uc.VerifyPayment(context.Background(), customer.ID, order.ID, false)
	require.NoError(t, err)
	got, _ = f.products.GetProductByID(tomato.ID)
	assert.InDelta(t, 5.0, got.Quantity, 1e-9)
}

func TestUpdateStatusDeliveredAwardsPointsOnce(t *testing.T) {
	f := newOrderFixture()
	customer := f.addUser(domain.RoleCustomer)
	farmer := f.addUser(domain.RoleFarmer)
	tomato := f.addProduct(farmer.ID, "Tomato", 10)
	potato := f.addProduct(farmer.ID, "Potato", 10)

	order, err := f.uc.Checkout(context.Background(), customer.ID, domain.CheckoutInput{
		Amount:        150,
		Address:       "Village Road, Nashik",
		PaymentMethod: domain.PaymentCOD,
		Items: []domain.CheckoutItem{
			{ProductID: tomato.ID, Quantity: 1, SelectedWeight: "1kg"},
			{ProductID: potato.ID, Quantity: 1, SelectedWeight: "1kg"},
		},
	})
	require.NoError(t, err)

	updated, err := f.uc.UpdateStatus(context.Background(), order.ID, domain.StatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, updated.OrderStatus)

	assert.Equal(t, 10, f.users.points[farmer.ID], "two items from one farmer award points once")
	assert.Equal(t, 10, f.users.points[customer.ID])

	// Re-sending Delivered must not award again.
	_, err = f.uc.UpdateStatus(context.Background(), order.ID, domain.StatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, 10, f.users.points[farmer.ID])
	assert.Equal(t, 10, f.users.points[customer.ID])
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	f := newOrderFixture()

	_, err := f.uc.UpdateStatus(context.Background(), 1, "Teleported")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdateStatusNotifiesCustomerWithPushToken(t *testing.T) {
	f := newOrderFixture()
	customer := f.addUser(domain.RoleCustomer)
	farmer := f.addUser(domain.RoleFarmer)
	tomato := f.addProduct(farmer.ID, "Tomato", 5)
	_, _ = f.users.UpdateUser(customer.ID, map[string]interface{}{"pushToken": "ExponentPushToken[abc]"})

	order, err := f.uc.Checkout(context.Background(), customer.ID, domain.CheckoutInput{
		Amount:        40,
		Address:       "Village Road, Nashik",
		PaymentMethod: domain.PaymentCOD,
		Items:         []domain.CheckoutItem{{ProductID: tomato.ID, Quantity: 1, SelectedWeight: "1kg"}},
	})
	require.NoError(t, err)

	_, err = f.uc.UpdateStatus(context.Background(), order.ID, domain.StatusDispatched)
	require.NoError(t, err)
	assert.Len(t, f.push.sent, 1)
}

func TestCancelRestoresStock(t *testing.T) {
	f := newOrderFixture()
	customer := f.addUser(domain.RoleCustomer)
	farmer := f.addUser(domain.RoleFarmer)
	tomato := f.addProduct(farmer.ID, "Tomato", 5)

	order, err := f.uc.Checkout(context.Background(), customer.ID, domain.CheckoutInput{
		Amount:        40,
		Address:       "Village Road, Nashik",
		PaymentMethod: domain.PaymentCOD,
		Items:         []domain.CheckoutItem{{ProductID: tomato.ID, Quantity: 3, SelectedWeight: "500g"}},
	})
	require.NoError(t, err)

	got, _ := f.products.GetProductByID(tomato.ID)
	require.InDelta(t, 3.5, got.Quantity, 1e-9)

	err = f.uc.Cancel(context.Background(), customer.ID, order.ID)
	require.NoError(t, err)

	got, _ = f.products.GetProductByID(tomato.ID)
	assert.InDelta(t, 5.0, got.Quantity, 1e-9, "cancel round-trips the stock")

	stored, _ := f.orders.GetOrderByID(order.ID)
	assert.Equal(t, domain.StatusCancelled, stored.OrderStatus)
	assert.Contains(t, f.publisher.events, "order_cancelled")
}

func TestCancelRejectedAfterDispatch(t *testing.T) {
	f := newOrderFixture()
	customer := f.addUser(domain.RoleCustomer)
	farmer := f.addUser(domain.RoleFarmer)
	tomato := f.addProduct(farmer.ID, "Tomato", 5)

	for _, status := range []domain.OrderStatus{domain.StatusDispatched, domain.StatusDelivered, domain.StatusCancelled} {
		order, err := f.uc.Checkout(context.Background(), customer.ID, domain.CheckoutInput{
			Amount:        40,
			Address:       "Village Road, Nashik",
			PaymentMethod: domain.PaymentCOD,
			Items:         []domain.CheckoutItem{{ProductID: tomato.ID, Quantity: 1, SelectedWeight: "500g"}},
		})
		require.NoError(t, err)
		require.NoError(t, f.orders.UpdateOrderStatus(order.ID, status))

		before, _ := f.products.GetProductByID(tomato.ID)
		err = f.uc.Cancel(context.Background(), customer.ID, order.ID)
		assert.ErrorIs(t, err, domain.ErrInvalidState, "status %s", status)

		after, _ := f.products.GetProductByID(tomato.ID)
		assert.InDelta(t, before.Quantity, after.Quantity, 1e-9, "rejected cancel must not touch stock")
	}
}

func TestCancelOtherCustomersOrder(t *testing.T) {
	f := newOrderFixture()
	customer := f.addUser(domain.RoleCustomer)
	farmer := f.addUser(domain.RoleFarmer)
	tomato := f.addProduct(farmer.ID, "Tomato", 5)

	order, err := f.uc.Checkout(context.Background(), customer.ID, domain.CheckoutInput{
		Amount:        40,
		Address:       "Village Road, Nashik",
		PaymentMethod: domain.PaymentCOD,
		Items:         []domain.CheckoutItem{{ProductID: tomato.ID, Quantity: 1, SelectedWeight: "1kg"}},
	})
	require.NoError(t, err)

	err = f.uc.Cancel(context.Background(), customer.ID+99, order.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTrack(t *testing.T) {
	f := newOrderFixture()
	customer := f.addUser(domain.RoleCustomer)
	farmer := f.addUser(domain.RoleFarmer)
	tomato := f.addProduct(farmer.ID, "Tomato", 5)

	order, err := f.uc.Checkout(context.Background(), customer.ID, domain.CheckoutInput{
		Amount:        40,
		Address:       "Village Road, Nashik",
		PaymentMethod: domain.PaymentCOD,
		Items:         []domain.CheckoutItem{{ProductID: tomato.ID, Quantity: 1, SelectedWeight: "1kg"}},
	})
	require.NoError(t, err)

	info, err := f.uc.Track(context.Background(), customer.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.TrackingID, info.TrackingID)
	assert.Equal(t, domain.StatusPlaced, info.Status)
	assert.Equal(t, "Village Road, Nashik", info.Address)

	_, err = f.uc.Track(context.Background(), customer.ID+99, order.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClearHistory(t *testing.T) {
	f := newOrderFixture()
	customer := f.addUser(domain.RoleCustomer)
	farmer := f.addUser(domain.RoleFarmer)
	tomato := f.addProduct(farmer.ID, "Tomato", 50)

	for i := 0; i < 3; i++ {
		_, err := f.uc.Checkout(context.Background(), customer.ID, domain.CheckoutInput{
			Amount:        40,
			Address:       "Village Road, Nashik",
			PaymentMethod: domain.PaymentCOD,
			Items:         []domain.CheckoutItem{{ProductID: tomato.ID, Quantity: 1, SelectedWeight: "1kg"}},
		})
		require.NoError(t, err)
	}

	deleted, err := f.uc.ClearHistory(context.Background(), customer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
	assert.Empty(t, f.orders.orders)
}
