package middleware

import (
	"net/http"

	"statarb/pkg/ratelimit"
)

// Категории лимитов: чтение данных дешёвое, управляющие запросы
// (запуск прогона, правка каталога) лимитируются жёстче.
const (
	CategoryRead    = "read"
	CategoryControl = "control"
)

// RateLimit возвращает middleware ограничения частоты запросов.
// GET и HEAD идут по лимиту чтения, остальные методы - по управляющему.
// Запрос без доступного токена отклоняется с 429, не ставится в очередь.
func RateLimit(limiter *ratelimit.MultiLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			category := CategoryControl
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				category = CategoryRead
			}

			if !limiter.Allow(category) {
				w.Header().Set("Retry-After", "1")
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
