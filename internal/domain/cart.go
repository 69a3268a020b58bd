package domain

import "context"

type CartItem struct {
	ProductID int64   `json:"productId"`
	Quantity  int     `json:"quantity"`
	Name      string  `json:"name,omitempty"`
	Price     float64 `json:"price,omitempty"`
	Image     string  `json:"image,omitempty"`
	Category  string  `json:"category,omitempty"`
}

type Cart struct {
	UserID int64      `json:"userId"`
	Items  []CartItem `json:"items"`
}

type CartRepository interface {
	// AddItem inserts the item or merges quantities when it is already there.
	AddItem(userID, productID int64, quantity int) error
	// SetItemQuantity overwrites the quantity; zero or below removes the item.
	// Returns ErrNotFound when the item is not in the cart.
	SetItemQuantity(userID, productID int64, quantity int) error
	GetCart(userID int64) (*Cart, error)
	RemoveItem(userID, productID int64) error
	// ClearCart drops every item owned by the user.
	ClearCart(userID int64) error
}

type CartUseCase interface {
	AddToCart(ctx context.Context, userID, productID int64, quantity int) (*Cart, error)
	UpdateQuantity(ctx context.Context, userID, productID int64, quantity int) (*Cart, error)
	ViewCart(ctx context.Context, userID int64) (*Cart, error)
	RemoveFromCart(ctx context.Context, userID, productID int64) (*Cart, error)
}
