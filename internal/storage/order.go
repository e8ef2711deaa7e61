package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/linemk/bigshop/internal/domain/models"
	"github.com/shopspring/decimal"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderStorage описывает методы для работы с заказами.
// CreateOrder и CreateOrderItems принимают транзакцию: шапка заказа и его позиции
// должны записываться как единое целое вместе со списанием остатков.
type OrderStorage interface {
	CreateOrder(ctx context.Context, tx *sql.Tx, userID int64, total decimal.Decimal, shippingAddress string) (int64, error)
	CreateOrderItems(ctx context.Context, tx *sql.Tx, orderID int64, items []*models.OrderItem) error
	// GetOrderByID возвращает шапку заказа с данными покупателя и позициями.
	GetOrderByID(ctx context.Context, orderID int64) (*models.Order, error)
	// GetOrdersByUserID возвращает заказы пользователя с позициями, новые — первыми.
	GetOrdersByUserID(ctx context.Context, userID int64) ([]*models.Order, error)
	// GetAllOrders возвращает все заказы с именем и email покупателя, новые — первыми.
	GetAllOrders(ctx context.Context) ([]*models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) error
}

type orderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

func (r *orderRepository) CreateOrder(ctx context.Context, tx *sql.Tx, userID int64, total decimal.Decimal, shippingAddress string) (int64, error) {
	var id int64
	query := `INSERT INTO orders (user_id, total_amount, status, shipping_address, created_at)
	          VALUES ($1, $2, $3, $4, NOW()) RETURNING id`
	err := tx.QueryRowContext(ctx, query, userID, total, models.StatusPending, shippingAddress).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create order: %w", err)
	}
	return id, nil
}

func (r *orderRepository) CreateOrderItems(ctx context.Context, tx *sql.Tx, orderID int64, items []*models.OrderItem) error {
	query := `INSERT INTO order_items (order_id, product_id, quantity, price) VALUES ($1, $2, $3, $4)`
	for _, item := range items {
		if _, err := tx.ExecContext(ctx, query, orderID, item.ProductID, item.Quantity, item.Price); err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}
	return nil
}

// getOrderItems подтягивает позиции заказа с именем и картинкой товара.
func (r *orderRepository) getOrderItems(ctx context.Context, orderID int64) ([]*models.OrderItem, error) {
	query := `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price, p.name, p.image_url
		FROM order_items oi
		JOIN products p ON oi.product_id = p.id
		WHERE oi.order_id = $1`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.OrderItem
	for rows.Next() {
		item := &models.OrderItem{}
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity,
			&item.Price, &item.ProductName, &item.ImageURL); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, orderID int64) (*models.Order, error) {
	order := &models.Order{}
	query := `
		SELECT o.id, o.user_id, u.name, u.email, o.total_amount, o.status, o.shipping_address, o.created_at
		FROM orders o
		JOIN users u ON o.user_id = u.id
		WHERE o.id = $1`
	row := r.db.QueryRowContext(ctx, query, orderID)
	if err := row.Scan(&order.ID, &order.UserID, &order.UserName, &order.UserEmail,
		&order.TotalAmount, &order.Status, &order.ShippingAddress, &order.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	items, err := r.getOrderItems(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	order.Items = items
	return order, nil
}

func (r *orderRepository) GetOrdersByUserID(ctx context.Context, userID int64) ([]*models.Order, error) {
	query := `
		SELECT id, user_id, total_amount, status, shipping_address, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		if err := rows.Scan(&order.ID, &order.UserID, &order.TotalAmount,
			&order.Status, &order.ShippingAddress, &order.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, order := range orders {
		items, err := r.getOrderItems(ctx, order.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get order items: %w", err)
		}
		order.Items = items
	}
	return orders, nil
}

func (r *orderRepository) GetAllOrders(ctx context.Context) ([]*models.Order, error) {
	query := `
		SELECT o.id, o.user_id, u.name, u.email, o.total_amount, o.status, o.shipping_address, o.created_at
		FROM orders o
		JOIN users u ON o.user_id = u.id
		ORDER BY o.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		if err := rows.Scan(&order.ID, &order.UserID, &order.UserName, &order.UserEmail,
			&order.TotalAmount, &order.Status, &order.ShippingAddress, &order.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) UpdateOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) error {
	res, err := r.db.ExecContext(ctx, "UPDATE orders SET status = $1 WHERE id = $2", status, orderID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}
