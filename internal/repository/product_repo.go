package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Anniix/kisanx-backend/internal/domain"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type postgresProductRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresProductRepository(db *sql.DB, logger *logrus.Logger) domain.ProductRepository {
	return &postgresProductRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresProductRepository) CreateProduct(product *domain.Product) (*domain.Product, error) {
	query := `
        INSERT INTO products (name, description, price, quantity, category, unit, image, offer_text, delivery_type, rating, farmer_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(query,
		product.Name,
		product.Description,
		product.Price,
		product.Quantity,
		product.Category,
		product.Unit,
		product.Image,
		product.OfferText,
		product.DeliveryType,
		product.Rating,
		product.FarmerID,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			r.log.Warnf("Attempted to create product for non-existent farmer ID: %d", product.FarmerID)
			return nil, fmt.Errorf("farmer with id %d does not exist: %w", product.FarmerID, domain.ErrValidation)
		}
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23514" {
			r.log.Warnf("Check constraint violation for product '%s': %s", product.Name, pqErr.Message)
			return nil, fmt.Errorf("product data constraint violation: %w", domain.ErrValidation)
		}
		r.log.Errorf("Failed to create product '%s': %v", product.Name, err)
		return nil, fmt.Errorf("could not create product: %w", err)
	}

	r.log.Infof("Product created successfully with ID: %d, Name: %s", product.ID, product.Name)
	return product, nil
}

func (r *postgresProductRepository) GetProductByID(id int64) (*domain.Product, error) {
	query := `
        SELECT id, name, description, price, quantity, category, unit, image, offer_text, delivery_type, rating, farmer_id, created_at, updated_at
        FROM products
        WHERE id = $1`

	product := &domain.Product{}
	err := r.db.QueryRow(query, id).Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.Quantity,
		&product.Category,
		&product.Unit,
		&product.Image,
		&product.OfferText,
		&product.DeliveryType,
		&product.Rating,
		&product.FarmerID,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Product with ID %d not found", id)
			return nil, fmt.Errorf("product with id %d: %w", id, domain.ErrNotFound)
		}
		r.log.Errorf("Failed to get product by ID %d: %v", id, err)
		return nil, fmt.Errorf("could not get product by id: %w", err)
	}

	return product, nil
}

func (r *postgresProductRepository) ListProducts() ([]domain.Product, error) {
	query := `
        SELECT p.id, p.name, p.description, p.price, p.quantity, p.category, p.unit, p.image, p.offer_text, p.delivery_type, p.rating, p.farmer_id,
               u.first_name || ' ' || u.last_name AS farmer_name,
               p.created_at, p.updated_at
        FROM products p
        JOIN users u ON u.id = p.farmer_id
        ORDER BY p.created_at DESC`

	rows, err := r.db.Query(query)
	if err != nil {
		r.log.Errorf("Failed to list products: %v", err)
		return nil, fmt.Errorf("could not list products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Description,
			&product.Price,
			&product.Quantity,
			&product.Category,
			&product.Unit,
			&product.Image,
			&product.OfferText,
			&product.DeliveryType,
			&product.Rating,
			&product.FarmerID,
			&product.FarmerName,
			&product.CreatedAt,
			&product.UpdatedAt,
		); err != nil {
			r.log.Errorf("Failed to scan product row: %v", err)
			return nil, fmt.Errorf("error scanning product: %w", err)
		}
		products = append(products, product)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Error during products iteration: %v", err)
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

func (r *postgresProductRepository) DeleteProductByFarmer(id, farmerID int64) error {
	result, err := r.db.Exec(`DELETE FROM products WHERE id = $1 AND farmer_id = $2`, id, farmerID)
	if err != nil {
		r.log.Errorf("Failed to delete product %d for farmer %d: %v", id, farmerID, err)
		return fmt.Errorf("could not delete product: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not read delete result: %w", err)
	}
	if affected == 0 {
		r.log.Warnf("Product %d not found or not owned by farmer %d", id, farmerID)
		return fmt.Errorf("product %d for farmer %d: %w", id, farmerID, domain.ErrNotFound)
	}

	r.log.Infof("Product %d deleted by farmer %d", id, farmerID)
	return nil
}

func (r *postgresProductRepository) DeleteProductsByFarmer(farmerID int64) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM products WHERE farmer_id = $1`, farmerID)
	if err != nil {
		r.log.Errorf("Failed to delete products for farmer %d: %v", farmerID, err)
		return 0, fmt.Errorf("could not delete farmer products: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("could not read delete result: %w", err)
	}

	r.log.Infof("Deleted %d products for farmer %d", affected, farmerID)
	return affected, nil
}

// DecrementQuantity is the single stock-reservation primitive: the quantity
// check and the decrement happen in one statement, so two concurrent
// checkouts cannot both pass the check and oversell the product.
func (r *postgresProductRepository) DecrementQuantity(id int64, kg float64) error {
	result, err := r.db.Exec(`
        UPDATE products
        SET quantity = quantity - $1, updated_at = NOW()
        WHERE id = $2 AND quantity >= $1`, kg, id)
	if err != nil {
		r.log.Errorf("Failed to decrement quantity for product %d by %.3f kg: %v", id, kg, err)
		return fmt.Errorf("could not decrement stock: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not read decrement result: %w", err)
	}
	if affected == 0 {
		var exists bool
		if checkErr := r.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists); checkErr == nil && !exists {
			r.log.Warnf("Product %d not found for stock decrement", id)
			return fmt.Errorf("product with id %d: %w", id, domain.ErrNotFound)
		}
		r.log.Warnf("Insufficient stock on product %d for %.3f kg", id, kg)
		return fmt.Errorf("product %d has less than %.3f kg in stock: %w", id, kg, domain.ErrInsufficientStock)
	}

	r.log.Infof("Decremented product %d stock by %.3f kg", id, kg)
	return nil
}

func (r *postgresProductRepository) IncrementQuantity(id int64, kg float64) error {
	result, err := r.db.Exec(`
        UPDATE products
        SET quantity = quantity + $1, updated_at = NOW()
        WHERE id = $2`, kg, id)
	if err != nil {
		r.log.Errorf("Failed to restore quantity for product %d by %.3f kg: %v", id, kg, err)
		return fmt.Errorf("could not restore stock: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not read restore result: %w", err)
	}
	if affected == 0 {
		r.log.Warnf("Product %d not found for stock restore", id)
		return fmt.Errorf("product with id %d: %w", id, domain.ErrNotFound)
	}

	r.log.Infof("Restored product %d stock by %.3f kg", id, kg)
	return nil
}
