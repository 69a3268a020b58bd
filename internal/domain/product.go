package domain

import (
	"context"
	"time"
)

type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	// Quantity is the available stock in kilograms. Fractional values are
	// normal: a sale of two 250g packs removes 0.5.
	Quantity     float64   `json:"quantity"`
	Category     string    `json:"category"`
	Unit         string    `json:"unit"`
	Image        string    `json:"image"`
	OfferText    string    `json:"offerText"`
	DeliveryType string    `json:"deliveryType"`
	Rating       float64   `json:"rating"`
	FarmerID     int64     `json:"farmerId"`
	FarmerName   string    `json:"farmerName,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type ProductRepository interface {
	CreateProduct(product *Product) (*Product, error)
	GetProductByID(id int64) (*Product, error)
	ListProducts() ([]Product, error)
	// DeleteProductByFarmer removes a product only if it belongs to the given
	// farmer; returns ErrNotFound otherwise.
	DeleteProductByFarmer(id, farmerID int64) error
	// DeleteProductsByFarmer removes every product of a farmer (account
	// deletion cascade) and reports how many were removed.
	DeleteProductsByFarmer(farmerID int64) (int64, error)
	// DecrementQuantity removes kg from stock in a single conditional update.
	// It fails with ErrInsufficientStock instead of driving the stock negative.
	DecrementQuantity(id int64, kg float64) error
	// IncrementQuantity restores kg onto stock in a single atomic update.
	IncrementQuantity(id int64, kg float64) error
}

type CreateProductInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    float64 `json:"quantity"`
	Category    string  `json:"category"`
	Unit        string  `json:"unit"`
	Image       string  `json:"image"`
}

type ProductUseCase interface {
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id int64) (*Product, error)
	AddProduct(ctx context.Context, farmerID int64, input CreateProductInput) (*Product, error)
	DeleteProduct(ctx context.Context, farmerID, productID int64) error
}
