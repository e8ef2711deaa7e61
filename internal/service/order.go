package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linemk/bigshop/internal/domain/models"
	"github.com/linemk/bigshop/internal/storage"
)

// OrderService определяет операции чтения заказов и смену статуса.
type OrderService interface {
	// GetOrder возвращает заказ, если запрашивает владелец или администратор.
	GetOrder(ctx context.Context, orderID, requestingUserID int64, role string) (*models.Order, error)
	ListUserOrders(ctx context.Context, userID int64) ([]*models.Order, error)
	ListAllOrders(ctx context.Context) ([]*models.Order, error)
	// SetStatus меняет статус заказа; значение вне четырёх допустимых отклоняется.
	SetStatus(ctx context.Context, orderID int64, status string) (*models.Order, error)
}

type orderService struct {
	log       *slog.Logger
	orderRepo storage.OrderStorage
}

func NewOrderService(log *slog.Logger, orderRepo storage.OrderStorage) OrderService {
	return &orderService{log: log, orderRepo: orderRepo}
}

func (s *orderService) GetOrder(ctx context.Context, orderID, requestingUserID int64, role string) (*models.Order, error) {
	const op = "service.OrderService.GetOrder"
	logger := s.log.With(slog.String("op", op), slog.Int64("orderID", orderID))

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		logger.Error("failed to get order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Чужой заказ может смотреть только администратор
	if order.UserID != requestingUserID && role != models.RoleAdmin {
		logger.Warn("access denied", slog.Int64("requestingUserID", requestingUserID))
		return nil, fmt.Errorf("%s: %w", op, ErrAccessDenied)
	}
	return order, nil
}

func (s *orderService) ListUserOrders(ctx context.Context, userID int64) ([]*models.Order, error) {
	const op = "service.OrderService.ListUserOrders"

	orders, err := s.orderRepo.GetOrdersByUserID(ctx, userID)
	if err != nil {
		s.log.Error("failed to list user orders", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

func (s *orderService) ListAllOrders(ctx context.Context) ([]*models.Order, error) {
	const op = "service.OrderService.ListAllOrders"

	orders, err := s.orderRepo.GetAllOrders(ctx)
	if err != nil {
		s.log.Error("failed to list orders", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

func (s *orderService) SetStatus(ctx context.Context, orderID int64, status string) (*models.Order, error) {
	const op = "service.OrderService.SetStatus"
	logger := s.log.With(slog.String("op", op), slog.Int64("orderID", orderID), slog.String("status", status))

	parsed, err := models.ParseOrderStatus(status)
	if err != nil {
		logger.Warn("invalid status")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidStatus)
	}

	if err := s.orderRepo.UpdateOrderStatus(ctx, orderID, parsed); err != nil {
		logger.Error("failed to update status", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		logger.Error("failed to load updated order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("order status updated")
	return order, nil
}
