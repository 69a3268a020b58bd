package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Anniix/kisanx-backend/internal/domain"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const orderColumns = `id, customer_id, total_amount, shipping_address, payment_method, payment_status, order_status, tracking_id, estimated_delivery, created_at, updated_at`

type postgresOrderRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresOrderRepository(db *sql.DB, logger *logrus.Logger) domain.OrderRepository {
	return &postgresOrderRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresOrderRepository) CreateOrder(order *domain.Order) (*domain.Order, error) {
	tx, err := r.db.Begin()
	if err != nil {
		r.log.Errorf("Failed to begin transaction: %v", err)
		return nil, fmt.Errorf("could not start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			r.log.Warnf("Rolling back order insert: %v", err)
			if rbErr := tx.Rollback(); rbErr != nil {
				r.log.Errorf("Failed to rollback transaction: %v", rbErr)
			}
		} else {
			if cErr := tx.Commit(); cErr != nil {
				r.log.Errorf("Failed to commit order insert: %v", cErr)
				err = fmt.Errorf("failed to commit transaction: %w", cErr)
			}
		}
	}()

	orderQuery := `
        INSERT INTO orders (customer_id, total_amount, shipping_address, payment_method, payment_status, order_status, tracking_id, estimated_delivery)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at, updated_at`
	err = tx.QueryRow(orderQuery,
		order.CustomerID,
		order.TotalAmount,
		order.ShippingAddress,
		order.PaymentMethod,
		order.PaymentStatus,
		order.OrderStatus,
		order.TrackingID,
		order.EstimatedDelivery,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		r.log.Errorf("Failed to insert order for customer %d: %v", order.CustomerID, err)
		return nil, fmt.Errorf("could not create order entry: %w", err)
	}

	itemQuery := `INSERT INTO order_items (order_id, product_id, quantity, weight) VALUES ($1, $2, $3, $4)`
	stmt, err := tx.Prepare(itemQuery)
	if err != nil {
		r.log.Errorf("Failed to prepare order item statement: %v", err)
		return nil, fmt.Errorf("could not prepare item statement: %w", err)
	}
	defer stmt.Close()

	for i := range order.Items {
		item := &order.Items[i]
		if _, err = stmt.Exec(order.ID, item.ProductID, item.Quantity, item.Weight); err != nil {
			r.log.Errorf("Failed to insert order item (product %d) for order %d: %v", item.ProductID, order.ID, err)
			return nil, fmt.Errorf("could not create order item (product %d): %w", item.ProductID, err)
		}
	}

	r.log.Infof("Order %d created for customer %d with %d items", order.ID, order.CustomerID, len(order.Items))
	return order, nil
}

func scanOrder(row *sql.Row) (*domain.Order, error) {
	order := &domain.Order{}
	err := row.Scan(
		&order.ID,
		&order.CustomerID,
		&order.TotalAmount,
		&order.ShippingAddress,
		&order.PaymentMethod,
		&order.PaymentStatus,
		&order.OrderStatus,
		&order.TrackingID,
		&order.EstimatedDelivery,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *postgresOrderRepository) GetOrderByID(id int64) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRow(`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Order with ID %d not found", id)
			return nil, fmt.Errorf("order with id %d: %w", id, domain.ErrNotFound)
		}
		r.log.Errorf("Failed to get order by ID %d: %v", id, err)
		return nil, fmt.Errorf("could not retrieve order: %w", err)
	}

	items, err := r.getOrderItems(id)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (r *postgresOrderRepository) GetOrderForCustomer(id, customerID int64) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRow(`SELECT `+orderColumns+` FROM orders WHERE id = $1 AND customer_id = $2`, id, customerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Order %d not found for customer %d", id, customerID)
			return nil, fmt.Errorf("order with id %d: %w", id, domain.ErrNotFound)
		}
		r.log.Errorf("Failed to get order %d for customer %d: %v", id, customerID, err)
		return nil, fmt.Errorf("could not retrieve order: %w", err)
	}

	items, err := r.getOrderItems(id)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (r *postgresOrderRepository) getOrderItems(orderID int64) ([]domain.OrderItem, error) {
	rows, err := r.db.Query(`SELECT product_id, quantity, weight FROM order_items WHERE order_id = $1`, orderID)
	if err != nil {
		r.log.Errorf("Failed to query order items for order %d: %v", orderID, err)
		return nil, fmt.Errorf("could not retrieve order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.Weight); err != nil {
			r.log.Errorf("Failed to scan order item row for order %d: %v", orderID, err)
			return nil, fmt.Errorf("error scanning order item: %w", err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Error during order items iteration for order %d: %v", orderID, err)
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}
	return items, nil
}

func (r *postgresOrderRepository) UpdateOrderStatus(id int64, status domain.OrderStatus) error {
	result, err := r.db.Exec(`UPDATE orders SET order_status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		r.log.Errorf("Failed to update status for order %d: %v", id, err)
		return fmt.Errorf("could not update order status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not read status update result: %w", err)
	}
	if affected == 0 {
		r.log.Warnf("Order %d not found for status update", id)
		return fmt.Errorf("order with id %d: %w", id, domain.ErrNotFound)
	}

	r.log.Infof("Order %d status updated to '%s'", id, status)
	return nil
}

func (r *postgresOrderRepository) UpdatePaymentState(id int64, paymentStatus domain.PaymentStatus, orderStatus domain.OrderStatus) error {
	result, err := r.db.Exec(`
        UPDATE orders SET payment_status = $1, order_status = $2, updated_at = NOW()
        WHERE id = $3`, paymentStatus, orderStatus, id)
	if err != nil {
		r.log.Errorf("Failed to update payment state for order %d: %v", id, err)
		return fmt.Errorf("could not update payment state: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not read payment update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("order with id %d: %w", id, domain.ErrNotFound)
	}

	r.log.Infof("Order %d payment state set to '%s'/'%s'", id, paymentStatus, orderStatus)
	return nil
}

func (r *postgresOrderRepository) ListOrdersByCustomer(customerID int64) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE customer_id = $1 ORDER BY created_at DESC`
	return r.listOrders(query, customerID)
}

func (r *postgresOrderRepository) ListOrdersByFarmer(farmerID int64) ([]domain.Order, error) {
	query := `
        SELECT DISTINCT ` + prefixedOrderColumns("o") + `
        FROM orders o
        JOIN order_items oi ON oi.order_id = o.id
        JOIN products p ON p.id = oi.product_id
        WHERE p.farmer_id = $1
        ORDER BY o.created_at DESC`
	return r.listOrders(query, farmerID)
}

func prefixedOrderColumns(alias string) string {
	return alias + `.id, ` + alias + `.customer_id, ` + alias + `.total_amount, ` + alias + `.shipping_address, ` +
		alias + `.payment_method, ` + alias + `.payment_status, ` + alias + `.order_status, ` +
		alias + `.tracking_id, ` + alias + `.estimated_delivery, ` + alias + `.created_at, ` + alias + `.updated_at`
}

func (r *postgresOrderRepository) listOrders(query string, arg interface{}) ([]domain.Order, error) {
	rows, err := r.db.Query(query, arg)
	if err != nil {
		r.log.Errorf("Failed to list orders: %v", err)
		return nil, fmt.Errorf("could not retrieve orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	var orderIDs []int64
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID,
			&order.CustomerID,
			&order.TotalAmount,
			&order.ShippingAddress,
			&order.PaymentMethod,
			&order.PaymentStatus,
			&order.OrderStatus,
			&order.TrackingID,
			&order.EstimatedDelivery,
			&order.CreatedAt,
			&order.UpdatedAt,
		); err != nil {
			r.log.Errorf("Failed to scan order row: %v", err)
			return nil, fmt.Errorf("error scanning order data: %w", err)
		}
		orders = append(orders, order)
		orderIDs = append(orderIDs, order.ID)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Error during orders iteration: %v", err)
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	if len(orders) == 0 {
		return []domain.Order{}, nil
	}

	itemRows, err := r.db.Query(`
        SELECT order_id, product_id, quantity, weight
        FROM order_items
        WHERE order_id = ANY($1::bigint[])
        ORDER BY order_id`, pq.Array(orderIDs))
	if err != nil {
		r.log.Errorf("Failed to query items for orders %v: %v", orderIDs, err)
		return nil, fmt.Errorf("could not retrieve order items for list: %w", err)
	}
	defer itemRows.Close()

	itemsMap := make(map[int64][]domain.OrderItem)
	for itemRows.Next() {
		var item domain.OrderItem
		var orderID int64
		if err := itemRows.Scan(&orderID, &item.ProductID, &item.Quantity, &item.Weight); err != nil {
			r.log.Errorf("Failed to scan order item row during multi-order fetch: %v", err)
			return nil, fmt.Errorf("error scanning order item data for list: %w", err)
		}
		itemsMap[orderID] = append(itemsMap[orderID], item)
	}
	if err = itemRows.Err(); err != nil {
		r.log.Errorf("Error during multi-order items iteration: %v", err)
		return nil, fmt.Errorf("error iterating order items for list: %w", err)
	}

	for i := range orders {
		if items, ok := itemsMap[orders[i].ID]; ok {
			orders[i].Items = items
		} else {
			orders[i].Items = []domain.OrderItem{}
		}
	}

	return orders, nil
}

func (r *postgresOrderRepository) DeleteOrdersByCustomer(customerID int64) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM orders WHERE customer_id = $1`, customerID)
	if err != nil {
		r.log.Errorf("Failed to clear order history for customer %d: %v", customerID, err)
		return 0, fmt.Errorf("could not clear order history: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("could not read history delete result: %w", err)
	}

	r.log.Infof("Cleared %d orders for customer %d", deleted, customerID)
	return deleted, nil
}

func (r *postgresOrderRepository) CountDeliveredByFarmer(farmerID int64) (int, error) {
	var count int
	err := r.db.QueryRow(`
        SELECT COUNT(DISTINCT o.id)
        FROM orders o
        JOIN order_items oi ON oi.order_id = o.id
        JOIN products p ON p.id = oi.product_id
        WHERE p.farmer_id = $1 AND o.order_status = $2`, farmerID, domain.StatusDelivered).Scan(&count)
	if err != nil {
		r.log.Errorf("Failed to count delivered orders for farmer %d: %v", farmerID, err)
		return 0, fmt.Errorf("could not count delivered orders: %w", err)
	}
	return count, nil
}

func (r *postgresOrderRepository) CountActiveByCustomer(customerID int64) (int, error) {
	var count int
	err := r.db.QueryRow(`
        SELECT COUNT(*) FROM orders
        WHERE customer_id = $1 AND order_status <> $2`, customerID, domain.StatusCancelled).Scan(&count)
	if err != nil {
		r.log.Errorf("Failed to count orders for customer %d: %v", customerID, err)
		return 0, fmt.Errorf("could not count orders: %w", err)
	}
	return count, nil
}
