package usecase

import (
	"context"
	"testing"

	"github.com/Anniix/kisanx-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCartFixture(t *testing.T) (domain.CartUseCase, *fakeProductRepo) {
	t.Helper()
	products := newFakeProductRepo()
	carts := newFakeCartRepo()
	return NewCartUseCase(carts, products, testLogger()), products
}

func TestAddToCartMergesQuantities(t *testing.T) {
	uc, products := newCartFixture(t)
	product, _ := products.CreateProduct(&domain.Product{Name: "Tomato", Quantity: 10})

	cart, err := uc.AddToCart(context.Background(), 1, product.ID, 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)

	cart, err = uc.AddToCart(context.Background(), 1, product.ID, 3)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity, "adding an existing item merges quantities")
}

func TestAddToCartUnknownProduct(t *testing.T) {
	uc, _ := newCartFixture(t)

	_, err := uc.AddToCart(context.Background(), 1, 42, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateQuantityZeroRemovesItem(t *testing.T) {
	uc, products := newCartFixture(t)
	product, _ := products.CreateProduct(&domain.Product{Name: "Tomato", Quantity: 10})

	_, err := uc.AddToCart(context.Background(), 1, product.ID, 2)
	require.NoError(t, err)

	cart, err := uc.UpdateQuantity(context.Background(), 1, product.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestUpdateQuantityMissingItem(t *testing.T) {
	uc, products := newCartFixture(t)
	product, _ := products.CreateProduct(&domain.Product{Name: "Tomato", Quantity: 10})

	_, err := uc.UpdateQuantity(context.Background(), 1, product.ID, 4)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRemoveFromCart(t *testing.T) {
	uc, products := newCartFixture(t)
	tomato, _ := products.CreateProduct(&domain.Product{Name: "Tomato", Quantity: 10})
	onion, _ := products.CreateProduct(&domain.Product{Name: "Onion", Quantity: 10})

	_, err := uc.AddToCart(context.Background(), 1, tomato.ID, 1)
	require.NoError(t, err)
	_, err = uc.AddToCart(context.Background(), 1, onion.ID, 1)
	require.NoError(t, err)

	cart, err := uc.RemoveFromCart(context.Background(), 1, tomato.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, onion.ID, cart.Items[0].ProductID)
}
