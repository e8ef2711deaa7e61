package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// writeJSON сериализует ответ; заголовок к этому моменту уже отправлен,
// поэтому ошибка кодирования только логируется.
func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", slog.Any("error", err))
	}
}
