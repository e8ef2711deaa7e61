package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linemk/bigshop/internal/domain/models"
	"github.com/linemk/bigshop/internal/storage"
)

// CartService определяет операции над корзиной пользователя.
// Остатки при добавлении не проверяются — авторитетная проверка происходит
// при оформлении заказа, а на витрине нехватка видна по stock_quantity.
type CartService interface {
	GetCart(ctx context.Context, userID int64) ([]*models.CartItem, error)
	AddToCart(ctx context.Context, userID, productID int64, quantity int) ([]*models.CartItem, error)
	UpdateItem(ctx context.Context, userID, productID int64, quantity int) ([]*models.CartItem, error)
	RemoveItem(ctx context.Context, userID, productID int64) ([]*models.CartItem, error)
	ClearCart(ctx context.Context, userID int64) error
}

type cartService struct {
	log         *slog.Logger
	cartRepo    storage.CartStorage
	productRepo storage.ProductStorage
}

func NewCartService(log *slog.Logger, cartRepo storage.CartStorage, productRepo storage.ProductStorage) CartService {
	return &cartService{
		log:         log,
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

func (s *cartService) GetCart(ctx context.Context, userID int64) ([]*models.CartItem, error) {
	const op = "service.CartService.GetCart"

	items, err := s.cartRepo.GetCartByUserID(ctx, userID)
	if err != nil {
		s.log.Error("failed to get cart", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

// AddToCart добавляет товар в корзину (upsert: повторное добавление складывает количества).
// Проверяется только существование товара.
func (s *cartService) AddToCart(ctx context.Context, userID, productID int64, quantity int) ([]*models.CartItem, error) {
	const op = "service.CartService.AddToCart"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.Int64("productID", productID))

	if quantity <= 0 {
		quantity = 1
	}

	if _, err := s.productRepo.GetProductByID(ctx, productID); err != nil {
		logger.Warn("product lookup failed", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cartRepo.AddItem(ctx, userID, productID, quantity); err != nil {
		logger.Error("failed to add item", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.GetCart(ctx, userID)
}

// UpdateItem устанавливает количество позиции; ноль и меньше удаляет позицию.
func (s *cartService) UpdateItem(ctx context.Context, userID, productID int64, quantity int) ([]*models.CartItem, error) {
	const op = "service.CartService.UpdateItem"

	if err := s.cartRepo.UpdateQuantity(ctx, userID, productID, quantity); err != nil {
		s.log.Error("failed to update item", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.GetCart(ctx, userID)
}

func (s *cartService) RemoveItem(ctx context.Context, userID, productID int64) ([]*models.CartItem, error) {
	const op = "service.CartService.RemoveItem"

	if err := s.cartRepo.RemoveItem(ctx, userID, productID); err != nil {
		s.log.Error("failed to remove item", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.GetCart(ctx, userID)
}

func (s *cartService) ClearCart(ctx context.Context, userID int64) error {
	const op = "service.CartService.ClearCart"

	if err := s.cartRepo.ClearCart(ctx, userID); err != nil {
		s.log.Error("failed to clear cart", slog.String("op", op), slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
