package handlers

import (
	"net/http"
	"strconv"

	jsoniter "github.com/json-iterator/go"

	"statarb/pkg/utils"
)

// json - быстрый кодек, совместимый с encoding/json
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrorResponse - стандартный формат ошибки API
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse - стандартный формат успешного ответа без данных
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// respondWithJSON сериализует payload и пишет его с указанным статусом
func respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	// Заголовки уже ушли: ошибку кодирования исправить нельзя
	_ = json.NewEncoder(w).Encode(payload)
}

// respondWithError пишет ошибку в стандартном формате
func respondWithError(w http.ResponseWriter, status int, message string) {
	respondWithJSON(w, status, ErrorResponse{
		Error: message,
		Code:  status,
	})
}

// parseLimit читает query-параметр limit с дефолтом и потолком
func parseLimit(r *http.Request, def, max int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return utils.ValidateLimit(limit, def, max)
}
