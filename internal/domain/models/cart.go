package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem представляет позицию корзины пользователя.
// На пару (user_id, product_id) приходится не более одной строки —
// повторное добавление товара увеличивает количество.
type CartItem struct {
	ID        int64 `json:"id"`
	UserID    int64 `json:"user_id"`
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
	// Поля товара; заполняются через JOIN с таблицей products
	ProductName   string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	ImageURL      string          `json:"image_url"`
	StockQuantity int             `json:"stock_quantity"`
	CreatedAt     time.Time       `json:"created_at"`
}
