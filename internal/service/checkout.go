package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/linemk/bigshop/internal/domain/models"
	"github.com/linemk/bigshop/internal/storage"
	"github.com/shopspring/decimal"
)

// CheckoutService превращает корзину пользователя в заказ.
type CheckoutService interface {
	PlaceOrder(ctx context.Context, userID int64, shippingAddress string) (*models.Order, error)
}

type checkoutService struct {
	log         *slog.Logger
	db          *sql.DB
	cartRepo    storage.CartStorage
	productRepo storage.ProductStorage
	orderRepo   storage.OrderStorage
}

func NewCheckoutService(log *slog.Logger, db *sql.DB, cartRepo storage.CartStorage, productRepo storage.ProductStorage, orderRepo storage.OrderStorage) CheckoutService {
	return &checkoutService{
		log:         log,
		db:          db,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
	}
}

// PlaceOrder оформляет заказ из корзины пользователя.
// Все шаги — чтение корзины, создание заказа с позициями, списание остатков,
// очистка корзины — выполняются в одной транзакции. Любая ошибка откатывает
// транзакцию целиком: не остаётся ни заказа без списания, ни списания без заказа.
// Цены фиксируются на момент чтения корзины, итог заказа считается по ним.
func (s *checkoutService) PlaceOrder(ctx context.Context, userID int64, shippingAddress string) (*models.Order, error) {
	const op = "service.CheckoutService.PlaceOrder"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))
	logger.Info("starting checkout transaction")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	// Читаем корзину вместе с текущими ценами и остатками
	items, err := s.cartRepo.GetCartByUserIDTx(ctx, tx, userID)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to get cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get cart: %w", op, err)
	}

	if len(items) == 0 {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Warn("cart is empty")
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyCart)
	}

	// Предварительная проверка остатков по прочитанным значениям. Окончательную
	// проверку делает условное списание ниже — здесь мы лишь быстро отклоняем
	// заведомо невыполнимые заказы и считаем итог по зафиксированным ценам.
	total := decimal.Zero
	for _, item := range items {
		if item.Quantity > item.StockQuantity {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			logger.Warn("insufficient stock",
				slog.String("product", item.ProductName),
				slog.Int("requested", item.Quantity),
				slog.Int("available", item.StockQuantity))
			return nil, fmt.Errorf("%s: %w", op, &InsufficientStockError{Product: item.ProductName})
		}
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	// Создаем шапку заказа со статусом pending
	orderID, err := s.orderRepo.CreateOrder(ctx, tx, userID, total, shippingAddress)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to create order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create order: %w", op, err)
	}

	// Позиции заказа — снимок корзины: товар, количество, цена на момент покупки
	orderItems := make([]*models.OrderItem, 0, len(items))
	for _, item := range items {
		orderItems = append(orderItems, &models.OrderItem{
			OrderID:   orderID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	if err := s.orderRepo.CreateOrderItems(ctx, tx, orderID, orderItems); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to create order items", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create order items: %w", op, err)
	}

	// Списываем остатки. Условное списание — авторитетная проверка: если
	// конкурентное оформление успело забрать товар, откатываем весь заказ.
	for _, item := range items {
		if err := s.productRepo.DecrementStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			if errors.Is(err, storage.ErrInsufficientStock) {
				logger.Warn("lost stock race", slog.String("product", item.ProductName))
				return nil, fmt.Errorf("%s: %w", op, &InsufficientStockError{Product: item.ProductName})
			}
			logger.Error("failed to decrement stock", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to decrement stock: %w", op, err)
		}
	}

	// Очищаем корзину в той же транзакции
	if err := s.cartRepo.ClearCartTx(ctx, tx, userID); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to clear cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to clear cart: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	// Возвращаем материализованный заказ с позициями и данными товаров
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		logger.Error("failed to load created order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to load created order: %w", op, err)
	}

	logger.Info("checkout completed successfully",
		slog.Int64("orderID", orderID),
		slog.String("total", total.StringFixed(2)))
	return order, nil
}
