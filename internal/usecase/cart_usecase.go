package usecase

import (
	"context"
	"fmt"

	"github.com/Anniix/kisanx-backend/internal/domain"
	"github.com/sirupsen/logrus"
)

var _ domain.CartUseCase = (*cartUseCase)(nil)

type cartUseCase struct {
	cartRepo    domain.CartRepository
	productRepo domain.ProductRepository
	log         *logrus.Logger
}

func NewCartUseCase(cartRepo domain.CartRepository, productRepo domain.ProductRepository, logger *logrus.Logger) domain.CartUseCase {
	return &cartUseCase{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		log:         logger,
	}
}

func (uc *cartUseCase) AddToCart(ctx context.Context, userID, productID int64, quantity int) (*domain.Cart, error) {
	if productID <= 0 || quantity <= 0 {
		return nil, fmt.Errorf("product and quantity required: %w", domain.ErrValidation)
	}

	if _, err := uc.productRepo.GetProductByID(productID); err != nil {
		return nil, err
	}

	if err := uc.cartRepo.AddItem(userID, productID, quantity); err != nil {
		return nil, err
	}

	uc.log.Infof("Use Case: Added product %d (x%d) to cart of user %d", productID, quantity, userID)
	return uc.cartRepo.GetCart(userID)
}

func (uc *cartUseCase) UpdateQuantity(ctx context.Context, userID, productID int64, quantity int) (*domain.Cart, error) {
	if productID <= 0 {
		return nil, fmt.Errorf("invalid product ID: %w", domain.ErrValidation)
	}

	if err := uc.cartRepo.SetItemQuantity(userID, productID, quantity); err != nil {
		return nil, err
	}

	return uc.cartRepo.GetCart(userID)
}

func (uc *cartUseCase) ViewCart(ctx context.Context, userID int64) (*domain.Cart, error) {
	return uc.cartRepo.GetCart(userID)
}

func (uc *cartUseCase) RemoveFromCart(ctx context.Context, userID, productID int64) (*domain.Cart, error) {
	if err := uc.cartRepo.RemoveItem(userID, productID); err != nil {
		return nil, err
	}

	uc.log.Infof("Use Case: Removed product %d from cart of user %d", productID, userID)
	return uc.cartRepo.GetCart(userID)
}
