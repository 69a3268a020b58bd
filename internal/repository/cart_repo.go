package repository

import (
	"database/sql"
	"fmt"

	"github.com/Anniix/kisanx-backend/internal/domain"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type postgresCartRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresCartRepository(db *sql.DB, logger *logrus.Logger) domain.CartRepository {
	return &postgresCartRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresCartRepository) AddItem(userID, productID int64, quantity int) error {
	query := `
        INSERT INTO cart_items (user_id, product_id, quantity)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id, product_id)
        DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`

	_, err := r.db.Exec(query, userID, productID, quantity)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			r.log.Warnf("Attempted to add non-existent product %d to cart of user %d", productID, userID)
			return fmt.Errorf("product with id %d: %w", productID, domain.ErrNotFound)
		}
		r.log.Errorf("Failed to add product %d to cart of user %d: %v", productID, userID, err)
		return fmt.Errorf("could not add item to cart: %w", err)
	}

	r.log.Infof("Added product %d (x%d) to cart of user %d", productID, quantity, userID)
	return nil
}

func (r *postgresCartRepository) SetItemQuantity(userID, productID int64, quantity int) error {
	if quantity <= 0 {
		return r.RemoveItem(userID, productID)
	}

	result, err := r.db.Exec(`
        UPDATE cart_items SET quantity = $1
        WHERE user_id = $2 AND product_id = $3`, quantity, userID, productID)
	if err != nil {
		r.log.Errorf("Failed to update cart quantity for user %d, product %d: %v", userID, productID, err)
		return fmt.Errorf("could not update cart item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not read cart update result: %w", err)
	}
	if affected == 0 {
		r.log.Warnf("Cart item not found for user %d, product %d", userID, productID)
		return fmt.Errorf("cart item for product %d: %w", productID, domain.ErrNotFound)
	}

	return nil
}

func (r *postgresCartRepository) GetCart(userID int64) (*domain.Cart, error) {
	query := `
        SELECT ci.product_id, ci.quantity, p.name, p.price, p.image, p.category
        FROM cart_items ci
        JOIN products p ON p.id = ci.product_id
        WHERE ci.user_id = $1
        ORDER BY p.name`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		r.log.Errorf("Failed to fetch cart for user %d: %v", userID, err)
		return nil, fmt.Errorf("could not fetch cart: %w", err)
	}
	defer rows.Close()

	cart := &domain.Cart{UserID: userID, Items: []domain.CartItem{}}
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.Name, &item.Price, &item.Image, &item.Category); err != nil {
			r.log.Errorf("Failed to scan cart item for user %d: %v", userID, err)
			return nil, fmt.Errorf("error scanning cart item: %w", err)
		}
		cart.Items = append(cart.Items, item)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Error during cart iteration for user %d: %v", userID, err)
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return cart, nil
}

func (r *postgresCartRepository) RemoveItem(userID, productID int64) error {
	_, err := r.db.Exec(`DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		r.log.Errorf("Failed to remove product %d from cart of user %d: %v", productID, userID, err)
		return fmt.Errorf("could not remove cart item: %w", err)
	}
	return nil
}

func (r *postgresCartRepository) ClearCart(userID int64) error {
	result, err := r.db.Exec(`DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		r.log.Errorf("Failed to clear cart for user %d: %v", userID, err)
		return fmt.Errorf("could not clear cart: %w", err)
	}

	if affected, err := result.RowsAffected(); err == nil {
		r.log.Infof("Cleared %d items from cart of user %d", affected, userID)
	}
	return nil
}
