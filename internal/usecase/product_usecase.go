package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/Anniix/kisanx-backend/internal/domain"
	"github.com/sirupsen/logrus"
)

const defaultProductImage = "https://images.unsplash.com/photo-1567306226416-28f0efdc88ce"

var validCategories = map[string]struct{}{
	"vegetables": {},
	"fruits":     {},
	"grains":     {},
	"spices":     {},
}

var _ domain.ProductUseCase = (*productUseCase)(nil)

type productUseCase struct {
	productRepo domain.ProductRepository
	log         *logrus.Logger
}

func NewProductUseCase(repo domain.ProductRepository, logger *logrus.Logger) domain.ProductUseCase {
	return &productUseCase{
		productRepo: repo,
		log:         logger,
	}
}

func (uc *productUseCase) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := uc.productRepo.ListProducts()
	if err != nil {
		return nil, fmt.Errorf("could not retrieve products: %w", err)
	}
	return products, nil
}

func (uc *productUseCase) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid product ID: %w", domain.ErrValidation)
	}
	return uc.productRepo.GetProductByID(id)
}

// AddProduct stores everything in per-kilogram terms: quintal listings are
// converted on the way in (price/100, quantity*100) so stock arithmetic
// downstream only ever sees kilograms.
func (uc *productUseCase) AddProduct(ctx context.Context, farmerID int64, input domain.CreateProductInput) (*domain.Product, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, fmt.Errorf("product name cannot be empty: %w", domain.ErrValidation)
	}
	if input.Price < 0 {
		return nil, fmt.Errorf("price cannot be negative: %w", domain.ErrValidation)
	}
	if input.Quantity < 0 {
		return nil, fmt.Errorf("quantity cannot be negative: %w", domain.ErrValidation)
	}
	if _, ok := validCategories[input.Category]; !ok {
		return nil, fmt.Errorf("invalid category '%s': %w", input.Category, domain.ErrValidation)
	}

	price := input.Price
	quantity := input.Quantity
	if strings.EqualFold(input.Unit, "quintal") {
		price = price / 100
		quantity = quantity * 100
		uc.log.Infof("Use Case: Normalized quintal listing '%s' to %.2f/kg, %.1f kg", input.Name, price, quantity)
	}

	image := input.Image
	if image == "" {
		image = defaultProductImage
	}

	product, err := uc.productRepo.CreateProduct(&domain.Product{
		Name:         input.Name,
		Description:  input.Description,
		Price:        price,
		Quantity:     quantity,
		Category:     input.Category,
		Unit:         "kg",
		Image:        image,
		DeliveryType: "Free Delivery",
		Rating:       4.0,
		FarmerID:     farmerID,
	})
	if err != nil {
		return nil, err
	}

	uc.log.Infof("Use Case: Product %d ('%s') added by farmer %d", product.ID, product.Name, farmerID)
	return product, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, farmerID, productID int64) error {
	if productID <= 0 {
		return fmt.Errorf("invalid product ID: %w", domain.ErrValidation)
	}
	return uc.productRepo.DeleteProductByFarmer(productID, farmerID)
}
