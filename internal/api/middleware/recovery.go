package middleware

import (
	"net/http"
	"runtime/debug"

	"statarb/pkg/utils"
)

// Recovery возвращает middleware восстановления после паники в handlers.
// Паника логируется вместе со stack trace, клиент получает 500 без
// деталей внутренней ошибки.
func Recovery(logger *utils.Logger) func(http.Handler) http.Handler {
	log := logger.WithComponent("http")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.Error("panic recovered",
						utils.Any("panic", err),
						utils.String("method", r.Method),
						utils.String("path", r.URL.Path),
						utils.String("stack", string(debug.Stack())),
					)

					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
