package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config содержит всю конфигурацию приложения
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Pipeline PipelineConfig
	Risk     RiskConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Port int
	Host string

	// Rate limit чтения REST API (запросов в секунду / burst)
	RateLimit      float64
	RateLimitBurst float64

	// Rate limit управляющих запросов (запуск прогона, правка каталога)
	ControlRateLimit float64
	ControlRateBurst float64
}

// DatabaseConfig - настройки подключения к БД
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string
}

// PipelineConfig - параметры статистического конвейера
type PipelineConfig struct {
	// Скринер корреляций
	CorrelationThreshold float64 // |r| лог-доходностей для кандидата
	MinOverlap           int     // минимум общих наблюдений у пары

	// Тест коинтеграции
	CointPValue float64 // порог p-value ADF теста спреда
	ADFLags     int     // лаги разностей в ADF регрессии

	// Тест Грейнджера
	CausalPValue float64 // порог p-value
	MaxLag       int     // максимальный рассматриваемый лаг

	// Генератор сигналов
	LookbackWindow int // окно rolling mean/std спреда

	// Вселенная тикеров
	HistoryDays int     // глубина запрашиваемой истории
	MinHistory  int     // минимум наблюдений на тикер
	MinPrice    float64 // фильтр дешёвых бумаг (последние 10 закрытий)

	// Оркестрация
	RunCadence string        // cron-выражение цикла прогонов
	Workers    int           // размер пула воркеров (0 = NumCPU)
	RunTimeout time.Duration // предельная длительность одного прогона

	// Политика селектора: пара с открытой позицией удерживается,
	// даже если её ранг вышел за capacity
	RetainOpenPositions bool
}

// RiskConfig - риск-лимиты
type RiskConfig struct {
	MaxOpenPairs       int     // максимум одновременно открытых пар
	MaxCapitalFraction float64 // доля капитала на пару
	EntryZ             float64 // |z| входа
	ExitZ              float64 // |z| выхода
	StopLossZ          float64 // |z| принудительного выхода
}

// SecurityConfig - настройки безопасности API
type SecurityConfig struct {
	// bcrypt-хеш API ключа для защищённых endpoints.
	// Пустое значение отключает аутентификацию (development).
	APIKeyHash string
}

// LoggingConfig - настройки логирования
type LoggingConfig struct {
	Level  string
	Format string
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:             getEnvAsInt("SERVER_PORT", 8080),
			Host:             getEnv("SERVER_HOST", "0.0.0.0"),
			RateLimit:        getEnvAsFloat("API_RATE_LIMIT", 20),
			RateLimitBurst:   getEnvAsFloat("API_RATE_BURST", 40),
			ControlRateLimit: getEnvAsFloat("API_CONTROL_RATE_LIMIT", 1),
			ControlRateBurst: getEnvAsFloat("API_CONTROL_RATE_BURST", 5),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			Name:     getEnv("DB_NAME", "statarb"),
			User:     getEnv("DB_USER", "user"),
			Password: getEnv("DB_PASSWORD", "password"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Pipeline: PipelineConfig{
			CorrelationThreshold: getEnvAsFloat("CORRELATION_THRESHOLD", 0.8),
			MinOverlap:           getEnvAsInt("MIN_OVERLAP", 20),
			CointPValue:          getEnvAsFloat("COINT_PVALUE", 0.05),
			ADFLags:              getEnvAsInt("ADF_LAGS", 1),
			CausalPValue:         getEnvAsFloat("CAUSAL_PVALUE", 0.05),
			MaxLag:               getEnvAsInt("CAUSAL_MAX_LAG", 3),
			LookbackWindow:       getEnvAsInt("LOOKBACK_WINDOW", 20),
			HistoryDays:          getEnvAsInt("HISTORY_DAYS", 90),
			MinHistory:           getEnvAsInt("MIN_HISTORY", 20),
			MinPrice:             getEnvAsFloat("MIN_PRICE", 5.0),
			RunCadence:           getEnv("RUN_CADENCE", "0 0 16 * * 1-5"),
			Workers:              getEnvAsInt("PIPELINE_WORKERS", 0),
			RunTimeout:           getEnvAsDuration("RUN_TIMEOUT", 15*time.Minute),
			RetainOpenPositions:  getEnvAsBool("RETAIN_OPEN_POSITIONS", true),
		},
		Risk: RiskConfig{
			MaxOpenPairs:       getEnvAsInt("MAX_OPEN_PAIRS", 5),
			MaxCapitalFraction: getEnvAsFloat("MAX_CAPITAL_FRACTION", 0.1),
			EntryZ:             getEnvAsFloat("ENTRY_Z", 2.0),
			ExitZ:              getEnvAsFloat("EXIT_Z", 0.5),
			StopLossZ:          getEnvAsFloat("STOP_LOSS_Z", 4.0),
		},
		Security: SecurityConfig{
			APIKeyHash: getEnv("API_KEY_HASH", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.validateRanges(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateRanges проверяет числовые диапазоны параметров
func (c *Config) validateRanges() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("DB_PORT must be between 1 and 65535, got %d", c.Database.Port)
	}

	p := c.Pipeline
	if p.CorrelationThreshold <= 0 || p.CorrelationThreshold >= 1 {
		return fmt.Errorf("CORRELATION_THRESHOLD must be in (0,1), got %f", p.CorrelationThreshold)
	}
	if p.CointPValue <= 0 || p.CointPValue >= 1 {
		return fmt.Errorf("COINT_PVALUE must be in (0,1), got %f", p.CointPValue)
	}
	if p.CausalPValue <= 0 || p.CausalPValue >= 1 {
		return fmt.Errorf("CAUSAL_PVALUE must be in (0,1), got %f", p.CausalPValue)
	}
	if p.MaxLag < 1 {
		return fmt.Errorf("CAUSAL_MAX_LAG must be at least 1, got %d", p.MaxLag)
	}
	if p.ADFLags < 0 {
		return fmt.Errorf("ADF_LAGS cannot be negative, got %d", p.ADFLags)
	}
	if p.MinOverlap < 3 {
		return fmt.Errorf("MIN_OVERLAP must be at least 3, got %d", p.MinOverlap)
	}
	if p.LookbackWindow < 2 {
		return fmt.Errorf("LOOKBACK_WINDOW must be at least 2, got %d", p.LookbackWindow)
	}
	if p.Workers < 0 {
		return fmt.Errorf("PIPELINE_WORKERS cannot be negative, got %d", p.Workers)
	}

	r := c.Risk
	if r.MaxOpenPairs < 1 {
		return fmt.Errorf("MAX_OPEN_PAIRS must be at least 1, got %d", r.MaxOpenPairs)
	}
	if r.MaxCapitalFraction <= 0 || r.MaxCapitalFraction > 1 {
		return fmt.Errorf("MAX_CAPITAL_FRACTION must be in (0,1], got %f", r.MaxCapitalFraction)
	}
	if r.EntryZ <= 0 {
		return fmt.Errorf("ENTRY_Z must be positive, got %f", r.EntryZ)
	}
	if r.ExitZ < 0 || r.ExitZ >= r.EntryZ {
		return fmt.Errorf("EXIT_Z must be in [0, ENTRY_Z), got %f", r.ExitZ)
	}
	if r.StopLossZ <= r.EntryZ {
		return fmt.Errorf("STOP_LOSS_Z must exceed ENTRY_Z, got %f", r.StopLossZ)
	}

	return nil
}

// DSN возвращает строку подключения к базе данных
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// DSNWithoutPassword возвращает строку подключения без пароля (для логирования)
func (d DatabaseConfig) DSNWithoutPassword() string {
	return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Name, d.SSLMode)
}

// Вспомогательные функции для чтения переменных окружения

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
