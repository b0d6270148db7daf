package crypto

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Ошибки хеширования
var (
	ErrEmptyKey    = errors.New("api key cannot be empty")
	ErrKeyMismatch = errors.New("api key does not match hash")
	ErrInvalidHash = errors.New("invalid key hash format")
	ErrKeyTooLong  = errors.New("api key exceeds maximum length of 72 bytes")
)

// DefaultCost - стоимость хеширования по умолчанию (рекомендуемое значение)
// Более высокое значение = больше времени на хеширование = более безопасно
const DefaultCost = 12

// MaxKeyLength - максимальная длина ключа для bcrypt (72 байта)
const MaxKeyLength = 72

// HashAPIKey хеширует API ключ с использованием bcrypt.
// Автоматически генерирует криптографически стойкий salt.
// Полученный хеш кладётся в API_KEY_HASH, сам ключ нигде не хранится.
func HashAPIKey(key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}

	// bcrypt ограничен 72 байтами
	if len(key) > MaxKeyLength {
		return "", ErrKeyTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(key), DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// HashAPIKeyWithCost хеширует ключ с указанной стоимостью
// cost должен быть от bcrypt.MinCost (4) до bcrypt.MaxCost (31)
func HashAPIKeyWithCost(key string, cost int) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}

	if len(key) > MaxKeyLength {
		return "", ErrKeyTooLong
	}

	// Валидация cost
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(key), cost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// VerifyAPIKey проверяет соответствие ключа хешу
// Использует constant-time comparison для защиты от timing attacks
func VerifyAPIKey(key, hash string) error {
	if key == "" {
		return ErrEmptyKey
	}

	if hash == "" {
		return ErrInvalidHash
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrKeyMismatch
		}
		// Невалидный формат хеша или другая ошибка
		return ErrInvalidHash
	}

	return nil
}

// CheckAPIKeyMatch проверяет соответствие ключа хешу и возвращает bool
// Удобная обёртка для использования в условиях
func CheckAPIKeyMatch(key, hash string) bool {
	return VerifyAPIKey(key, hash) == nil
}

// GetHashCost извлекает cost из существующего хеша
// Полезно для определения необходимости перехеширования при увеличении cost
func GetHashCost(hash string) (int, error) {
	if hash == "" {
		return 0, ErrInvalidHash
	}

	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return 0, ErrInvalidHash
	}

	return cost, nil
}
