package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shop-service/internal/models"

	"github.com/jmoiron/sqlx"
)

const orderColumns = `id, customer_name, customer_email, customer_phone, address, city,
	postal_code, total_amount, payment_method, status, created_at, user_id`

// CreateOrderWithItems stores an order and its items in one transaction.
// IDs are written back onto the order and each item.
func (s *Store) CreateOrderWithItems(ctx context.Context, order *models.Order) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO orders (customer_name, customer_email, customer_phone, address,
				city, postal_code, total_amount, payment_method, status, created_at, user_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING id`

		err := tx.GetContext(ctx, &order.ID, query,
			order.CustomerName, order.CustomerEmail, order.CustomerPhone, order.Address,
			order.City, order.PostalCode, order.TotalAmount, order.PaymentMethod,
			order.Status, order.CreatedAt, order.UserID)
		if err != nil {
			return fmt.Errorf("failed to insert order: %w", translateError(err))
		}

		for i := range order.Items {
			item := &order.Items[i]
			item.OrderID = order.ID
			err := tx.GetContext(ctx, &item.ID, `
				INSERT INTO order_items (order_id, product_id, quantity, price, size, color)
				VALUES ($1, $2, $3, $4, $5, $6)
				RETURNING id`,
				item.OrderID, item.ProductID, item.Quantity, item.Price, item.Size, item.Color)
			if err != nil {
				return fmt.Errorf("failed to insert order item: %w", translateError(err))
			}
		}

		return nil
	})
}

// GetOrderByID retrieves an order with its items
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	orders := []models.Order{order}
	if err := s.loadItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// GetOrdersByUserID retrieves orders for a user, newest first
func (s *Store) GetOrdersByUserID(ctx context.Context, userID string) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.SelectContext(ctx, &orders,
		"SELECT "+orderColumns+" FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id DESC", userID)
	if err != nil {
		return nil, err
	}
	return orders, s.loadItems(ctx, orders)
}

// ListOrders retrieves a page of orders, newest first
func (s *Store) ListOrders(ctx context.Context, skip, limit int) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.SelectContext(ctx, &orders,
		"SELECT "+orderColumns+" FROM orders ORDER BY created_at DESC, id DESC OFFSET $1 LIMIT $2",
		skip, limit)
	if err != nil {
		return nil, err
	}
	return orders, s.loadItems(ctx, orders)
}

// ListRecentOrders retrieves the latest orders with their items
func (s *Store) ListRecentOrders(ctx context.Context, limit int) ([]models.Order, error) {
	return s.ListOrders(ctx, 0, limit)
}

// UpdateOrderStatus updates order status and returns the updated order
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID int64, status string) (*models.Order, error) {
	res, err := s.db.ExecContext(ctx, "UPDATE orders SET status = $1 WHERE id = $2", status, orderID)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("order %d: %w", orderID, ErrNotFound)
	}
	return s.GetOrderByID(ctx, orderID)
}

// CountOrders returns the number of orders, cancelled included
func (s *Store) CountOrders(ctx context.Context) (int64, error) {
	return s.countRows(ctx, "orders")
}

// ListRevenueTotals returns amount and creation time of every order that
// counts towards revenue
func (s *Store) ListRevenueTotals(ctx context.Context) ([]models.OrderTotal, error) {
	totals := []models.OrderTotal{}
	err := s.db.SelectContext(ctx, &totals,
		"SELECT total_amount, created_at FROM orders WHERE status <> $1", models.OrderStatusCancelled)
	return totals, err
}

// loadItems fills Items on every order, in insertion order
func (s *Store) loadItems(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]int64, len(orders))
	index := make(map[int64]int, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		index[orders[i].ID] = i
		orders[i].Items = []models.OrderItem{}
	}

	query, args, err := sqlx.In(`
		SELECT id, order_id, product_id, quantity, price, size, color
		FROM order_items WHERE order_id IN (?) ORDER BY id`, ids)
	if err != nil {
		return err
	}
	query = s.db.Rebind(query)

	var items []models.OrderItem
	if err := s.db.SelectContext(ctx, &items, query, args...); err != nil {
		return err
	}

	for _, item := range items {
		if i, ok := index[item.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, item)
		}
	}
	return nil
}
