package service

import (
	"time"

	"statarb/internal/models"
	"statarb/internal/repository"
)

// SelectedPairRepositoryInterface определяет интерфейс репозитория выбранных пар
type SelectedPairRepositoryInterface interface {
	Active() ([]models.SelectedPair, error)
	Replace(pairs []models.SelectedPair) error
	Upsert(sp *models.SelectedPair) error
	GetByKey(key models.PairKey) (*models.SelectedPair, error)
	Count() (int, error)
}

// PositionRepositoryInterface определяет интерфейс репозитория позиций
type PositionRepositoryInterface interface {
	Open(pos models.Position) (models.Position, error)
	Close(pair models.PairKey, closedAt time.Time, cause string) (models.Position, error)
	OpenPositions() ([]models.Position, error)
	Recent(limit int) ([]models.Position, error)
	GetByID(id int) (*models.Position, error)
	CountOpen() (int, error)
}

// IntentRepositoryInterface определяет интерфейс репозитория ордер-намерений
type IntentRepositoryInterface interface {
	Create(intent *models.OrderIntent) error
	Recent(limit int) ([]models.OrderIntent, error)
	GetByPair(key models.PairKey, limit int) ([]models.OrderIntent, error)
	GetByID(id int) (*models.OrderIntent, error)
}

// NotificationRepositoryInterface определяет интерфейс репозитория уведомлений
type NotificationRepositoryInterface interface {
	Create(n *models.Notification) error
	Recent(limit int) ([]models.Notification, error)
	RecentByTypes(types []string, limit int) ([]models.Notification, error)
	DeleteOlderThan(cutoff time.Time) (int64, error)
}

// TickerRepositoryInterface определяет интерфейс каталога тикеров
type TickerRepositoryInterface interface {
	List(onlyActive bool) ([]models.Ticker, error)
	Add(t models.Ticker) error
	SetActive(t models.Ticker, active bool) error
	Exists(t models.Ticker) (bool, error)
	Count() (int, error)
}

// PriceRepositoryInterface определяет интерфейс справочных выборок цен
type PriceRepositoryInterface interface {
	Coverage(t models.Ticker) (*repository.PriceCoverage, error)
	LatestPrice(t models.Ticker) (*models.PricePoint, error)
}

// Проверяем, что реальные репозитории реализуют интерфейсы
var _ SelectedPairRepositoryInterface = (*repository.SelectedPairRepository)(nil)
var _ PositionRepositoryInterface = (*repository.PositionRepository)(nil)
var _ IntentRepositoryInterface = (*repository.IntentRepository)(nil)
var _ NotificationRepositoryInterface = (*repository.NotificationRepository)(nil)
var _ TickerRepositoryInterface = (*repository.TickerRepository)(nil)
var _ PriceRepositoryInterface = (*repository.PriceRepository)(nil)

// ============ Интерфейсы сервисов для Dependency Injection ============

// PairServiceInterface определяет интерфейс сервиса выбранных пар
type PairServiceInterface interface {
	GetActivePairs() ([]models.SelectedPair, error)
	GetPair(key string) (*models.SelectedPair, error)
	GetPairIntents(key string, limit int) ([]models.OrderIntent, error)
	GetRecentIntents(limit int) ([]models.OrderIntent, error)
	Count() (int, error)
}

// PositionServiceInterface определяет интерфейс сервиса позиций
type PositionServiceInterface interface {
	GetOpenPositions() ([]models.Position, error)
	GetRecentPositions(limit int) ([]models.Position, error)
	GetPosition(id int) (*models.Position, error)
	CountOpen() (int, error)
}

// RunServiceInterface определяет интерфейс сервиса прогонов
type RunServiceInterface interface {
	Trigger() (*models.RunSummary, error)
	Status() RunStatus
	History(limit int) []models.RunSummary
}

// NotificationServiceInterface определяет интерфейс сервиса уведомлений
type NotificationServiceInterface interface {
	GetNotifications(types []string, limit int) ([]models.Notification, error)
	Cleanup(olderThan time.Duration) (int64, error)
}

// TickerServiceInterface определяет интерфейс сервиса каталога тикеров
type TickerServiceInterface interface {
	ListTickers(onlyActive bool) ([]models.Ticker, error)
	AddTicker(ticker string) error
	SetTickerActive(ticker string, active bool) error
	GetCoverage(ticker string) (*repository.PriceCoverage, error)
	GetLatestPrice(ticker string) (*models.PricePoint, error)
}

// Проверяем, что реальные сервисы реализуют интерфейсы
var _ PairServiceInterface = (*PairService)(nil)
var _ PositionServiceInterface = (*PositionService)(nil)
var _ RunServiceInterface = (*RunService)(nil)
var _ NotificationServiceInterface = (*NotificationService)(nil)
var _ TickerServiceInterface = (*TickerService)(nil)
