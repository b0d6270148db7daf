package middleware

import (
	"net/http"
	"strings"
	"time"

	"statarb/pkg/utils"
)

// responseWriter оборачивает http.ResponseWriter для захвата статуса и размера ответа
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += n
	return n, err
}

// Logging возвращает middleware структурированного логирования запросов.
// Пишет метод, путь, статус, длительность, IP клиента и размер ответа.
func Logging(logger *utils.Logger) func(http.Handler) http.Handler {
	log := logger.WithComponent("http")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			log.Info("request",
				utils.String("method", r.Method),
				utils.String("path", r.URL.Path),
				utils.Int("status", rw.statusCode),
				utils.Duration("duration", time.Since(start)),
				utils.String("ip", clientIP(r)),
				utils.Int("bytes", rw.written),
			)
		})
	}
}

// clientIP извлекает IP клиента с учётом прокси-заголовков
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		// Первый адрес в списке - исходный клиент
		if idx := strings.IndexByte(forwarded, ','); idx > 0 {
			return strings.TrimSpace(forwarded[:idx])
		}
		return strings.TrimSpace(forwarded)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return r.RemoteAddr
}
