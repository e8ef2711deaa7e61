package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/linemk/bigshop/internal/domain/models"
)

// CartStorage описывает методы для работы с корзиной.
// Remove и Clear идемпотентны: удаление отсутствующей позиции — не ошибка.
type CartStorage interface {
	// GetCartByUserID возвращает позиции корзины с JOIN на товары (имя, цена, картинка, остаток).
	GetCartByUserID(ctx context.Context, userID int64) ([]*models.CartItem, error)
	// GetCartByUserIDTx — то же самое, но внутри транзакции оформления заказа.
	GetCartByUserIDTx(ctx context.Context, tx *sql.Tx, userID int64) ([]*models.CartItem, error)
	// AddItem добавляет товар в корзину; повторное добавление увеличивает количество.
	AddItem(ctx context.Context, userID, productID int64, quantity int) error
	// UpdateQuantity устанавливает количество; quantity <= 0 эквивалентно удалению позиции.
	UpdateQuantity(ctx context.Context, userID, productID int64, quantity int) error
	RemoveItem(ctx context.Context, userID, productID int64) error
	ClearCart(ctx context.Context, userID int64) error
	// ClearCartTx очищает корзину внутри транзакции оформления заказа.
	ClearCartTx(ctx context.Context, tx *sql.Tx, userID int64) error
}

type cartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) CartStorage {
	return &cartRepository{db: db}
}

const cartSelectQuery = `
	SELECT c.id, c.user_id, c.product_id, c.quantity, p.name, p.price, p.image_url, p.stock_quantity, c.created_at
	FROM cart_items c
	JOIN products p ON c.product_id = p.id
	WHERE c.user_id = $1
	ORDER BY c.created_at`

func scanCartRows(rows *sql.Rows) ([]*models.CartItem, error) {
	defer rows.Close()

	var items []*models.CartItem
	for rows.Next() {
		item := &models.CartItem{}
		if err := rows.Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity,
			&item.ProductName, &item.Price, &item.ImageURL, &item.StockQuantity, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *cartRepository) GetCartByUserID(ctx context.Context, userID int64) ([]*models.CartItem, error) {
	rows, err := r.db.QueryContext(ctx, cartSelectQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}
	return scanCartRows(rows)
}

func (r *cartRepository) GetCartByUserIDTx(ctx context.Context, tx *sql.Tx, userID int64) ([]*models.CartItem, error) {
	rows, err := tx.QueryContext(ctx, cartSelectQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}
	return scanCartRows(rows)
}

// AddItem выполняет upsert: уникальный индекс (user_id, product_id) гарантирует
// не более одной строки на товар, конфликт превращается в инкремент количества.
func (r *cartRepository) AddItem(ctx context.Context, userID, productID int64, quantity int) error {
	query := `INSERT INTO cart_items (user_id, product_id, quantity)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (user_id, product_id)
	          DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`
	_, err := r.db.ExecContext(ctx, query, userID, productID, quantity)
	if err != nil {
		return fmt.Errorf("failed to add cart item: %w", err)
	}
	return nil
}

func (r *cartRepository) UpdateQuantity(ctx context.Context, userID, productID int64, quantity int) error {
	if quantity <= 0 {
		return r.RemoveItem(ctx, userID, productID)
	}
	query := "UPDATE cart_items SET quantity = $1 WHERE user_id = $2 AND product_id = $3"
	_, err := r.db.ExecContext(ctx, query, quantity, userID, productID)
	if err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}
	return nil
}

func (r *cartRepository) RemoveItem(ctx context.Context, userID, productID int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2", userID, productID)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

func (r *cartRepository) ClearCart(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM cart_items WHERE user_id = $1", userID)
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (r *cartRepository) ClearCartTx(ctx context.Context, tx *sql.Tx, userID int64) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM cart_items WHERE user_id = $1", userID)
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
