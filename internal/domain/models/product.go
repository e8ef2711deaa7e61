package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product представляет товар каталога
type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"` // цена с двумя знаками после запятой
	Category      string          `json:"category"`
	ImageURL      string          `json:"image_url"`
	StockQuantity int             `json:"stock_quantity"` // остаток на складе, никогда не меньше нуля
	Featured      bool            `json:"featured"`
	CreatedAt     time.Time       `json:"created_at"`
}
