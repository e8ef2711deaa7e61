package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/bigshop/internal/service"
	"github.com/linemk/bigshop/internal/storage"
)

// UpdateStatusRequest — тело запроса PUT /api/admin/orders/{id}.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// AdminOrdersHandler обрабатывает запрос GET /api/admin/orders: все заказы магазина.
func AdminOrdersHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AdminOrdersHandler"
		logger := log.With(slog.String("op", op))

		orders, err := orderService.ListAllOrders(r.Context())
		if err != nil {
			logger.Error("failed to list all orders", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, logger, http.StatusOK, orders)
	}
}

// UpdateOrderStatusHandler обрабатывает запрос PUT /api/admin/orders/{id}: смена статуса заказа.
func UpdateOrderStatusHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateOrderStatusHandler"
		logger := log.With(slog.String("op", op))

		orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid order id", http.StatusBadRequest)
			return
		}

		var req UpdateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			http.Error(w, "validation error", http.StatusBadRequest)
			return
		}

		order, err := orderService.SetStatus(r.Context(), orderID, req.Status)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidStatus):
				http.Error(w, "invalid order status", http.StatusBadRequest)
			case errors.Is(err, storage.ErrOrderNotFound):
				http.Error(w, "order not found", http.StatusNotFound)
			default:
				logger.Error("failed to update order status", slog.Any("error", err))
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
			return
		}
		writeJSON(w, logger, http.StatusOK, order)
	}
}
