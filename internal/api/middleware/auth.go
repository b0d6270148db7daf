package middleware

import (
	"net/http"
	"strings"

	"statarb/pkg/crypto"
)

// apiKeyHeader - заголовок с API ключом клиента
const apiKeyHeader = "X-API-Key"

// APIKeyAuth возвращает middleware проверки API ключа по bcrypt-хешу.
// Ключ принимается из заголовка X-API-Key либо Authorization: Bearer.
// Пустой хеш отключает аутентификацию (локальное развёртывание).
func APIKeyAuth(keyHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if keyHash == "" {
				next.ServeHTTP(w, r)
				return
			}

			key := extractAPIKey(r)
			if key == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			// bcrypt-сравнение устойчиво к timing attacks
			if err := crypto.VerifyAPIKey(key, keyHash); err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractAPIKey достаёт ключ из X-API-Key или Authorization: Bearer
func extractAPIKey(r *http.Request) string {
	if key := r.Header.Get(apiKeyHeader); key != "" {
		return key
	}

	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
