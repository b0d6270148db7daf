package utils

import (
	"fmt"
	"regexp"
	"strings"
)

// validator.go - валидация входных данных REST API

// Дефис зарезервирован как разделитель ключа пары "A-B"
var tickerRe = regexp.MustCompile(`^[A-Z0-9.]{1,16}$`)

// ValidateTicker проверяет формат тикера (например "GAZP", "BRK.B").
// Тикер - от 1 до 16 символов: заглавные буквы, цифры, точка.
func ValidateTicker(ticker string) error {
	if ticker == "" {
		return fmt.Errorf("ticker is empty")
	}
	if !tickerRe.MatchString(ticker) {
		return fmt.Errorf("invalid ticker format: %q", ticker)
	}
	return nil
}

// ValidatePairKey проверяет канонический ключ пары "A-B":
// обе ноги валидны, различны и упорядочены лексикографически.
func ValidatePairKey(key string) error {
	parts := strings.SplitN(key, "-", 2)
	if len(parts) != 2 {
		return fmt.Errorf("pair key must be \"A-B\", got %q", key)
	}
	legA, legB := parts[0], parts[1]
	if err := ValidateTicker(legA); err != nil {
		return fmt.Errorf("leg A: %w", err)
	}
	if err := ValidateTicker(legB); err != nil {
		return fmt.Errorf("leg B: %w", err)
	}
	if legA == legB {
		return fmt.Errorf("pair legs must differ, got %q", key)
	}
	if legA > legB {
		return fmt.Errorf("pair key not canonical: %q must precede %q", legB, legA)
	}
	return nil
}

// ValidateProbability проверяет, что значение лежит в (0, 1)
func ValidateProbability(name string, p float64) error {
	if p <= 0 || p >= 1 {
		return fmt.Errorf("%s must be in (0,1), got %f", name, p)
	}
	return nil
}

// ValidatePositiveInt проверяет, что значение строго положительно
func ValidatePositiveInt(name string, v int) error {
	if v < 1 {
		return fmt.Errorf("%s must be at least 1, got %d", name, v)
	}
	return nil
}

// ValidateLimit нормализует limit параметр пагинации:
// 0 или отрицательное значение -> def, свыше max -> max.
func ValidateLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
