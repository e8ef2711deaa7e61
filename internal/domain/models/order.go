package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus — статус заказа. Переходы выполняет только администратор,
// допустимые значения перечислены ниже.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
)

// ParseOrderStatus проверяет, что строка является одним из четырёх допустимых статусов.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered:
		return OrderStatus(s), nil
	}
	return "", fmt.Errorf("unknown order status: %q", s)
}

// Order представляет заказ, созданный при оформлении корзины.
// TotalAmount фиксируется в момент создания и больше не меняется.
type Order struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"user_id"`
	UserName        string          `json:"user_name,omitempty"` // заполняется через JOIN с таблицей users
	UserEmail       string          `json:"user_email,omitempty"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Status          OrderStatus     `json:"status"`
	ShippingAddress string          `json:"shipping_address"`
	CreatedAt       time.Time       `json:"created_at"`
	Items           []*OrderItem    `json:"items,omitempty"`
}

// OrderItem представляет позицию заказа. После создания не изменяется:
// количество и цена — исторический снимок на момент покупки.
type OrderItem struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"order_id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"` // цена за единицу на момент покупки
	// Поля товара; заполняются через JOIN с таблицей products
	ProductName string `json:"name"`
	ImageURL    string `json:"image_url"`
}
