package service

import (
	"errors"
	"fmt"
)

// Ожидаемые ошибки бизнес-логики; транспортный слой отображает их в коды ответов.
var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrInvalidStatus = errors.New("invalid order status")
	ErrAccessDenied  = errors.New("access denied")
)

// InsufficientStockError возвращается, когда товара не хватает на складе —
// как при предварительной проверке, так и при проигрыше конкурентному оформлению.
// Несёт название товара, чтобы пользователь знал, чего именно не хватило.
type InsufficientStockError struct {
	Product string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s", e.Product)
}
