package service

import (
	"errors"
	"strings"

	"statarb/internal/models"
	"statarb/internal/repository"
	"statarb/pkg/utils"
)

// Ошибки сервиса тикеров
var (
	ErrInvalidTicker  = errors.New("invalid ticker format")
	ErrTickerExists   = errors.New("ticker already exists")
	ErrTickerNotFound = errors.New("ticker not found")
	ErrNoCoverage     = errors.New("no price history for ticker")
)

// TickerService - управление каталогом тикеров и справочные
// выборки истории цен. Деактивация тикера убирает его из вселенной
// следующего прогона; история цен остаётся нетронутой.
type TickerService struct {
	tickerRepo TickerRepositoryInterface
	priceRepo  PriceRepositoryInterface
}

// NewTickerService создает новый экземпляр сервиса тикеров
func NewTickerService(tickerRepo TickerRepositoryInterface, priceRepo PriceRepositoryInterface) *TickerService {
	return &TickerService{
		tickerRepo: tickerRepo,
		priceRepo:  priceRepo,
	}
}

// ListTickers возвращает каталог; onlyActive ограничивает вселенной
func (s *TickerService) ListTickers(onlyActive bool) ([]models.Ticker, error) {
	return s.tickerRepo.List(onlyActive)
}

// AddTicker регистрирует тикер в каталоге активным
func (s *TickerService) AddTicker(ticker string) error {
	t, err := s.normalize(ticker)
	if err != nil {
		return err
	}

	if err := s.tickerRepo.Add(t); err != nil {
		if errors.Is(err, repository.ErrTickerExists) {
			return ErrTickerExists
		}
		return err
	}
	return nil
}

// SetTickerActive переключает участие тикера во вселенной
func (s *TickerService) SetTickerActive(ticker string, active bool) error {
	t, err := s.normalize(ticker)
	if err != nil {
		return err
	}

	if err := s.tickerRepo.SetActive(t, active); err != nil {
		if errors.Is(err, repository.ErrTickerNotFound) {
			return ErrTickerNotFound
		}
		return err
	}
	return nil
}

// GetCoverage возвращает охват истории цен тикера
func (s *TickerService) GetCoverage(ticker string) (*repository.PriceCoverage, error) {
	t, err := s.normalize(ticker)
	if err != nil {
		return nil, err
	}

	cov, err := s.priceRepo.Coverage(t)
	if err != nil {
		if errors.Is(err, repository.ErrNoCoverage) {
			return nil, ErrNoCoverage
		}
		return nil, err
	}
	return cov, nil
}

// GetLatestPrice возвращает последнее наблюдение цены тикера
func (s *TickerService) GetLatestPrice(ticker string) (*models.PricePoint, error) {
	t, err := s.normalize(ticker)
	if err != nil {
		return nil, err
	}

	p, err := s.priceRepo.LatestPrice(t)
	if err != nil {
		if errors.Is(err, repository.ErrNoCoverage) {
			return nil, ErrNoCoverage
		}
		return nil, err
	}
	return p, nil
}

// normalize приводит тикер к каноническому виду и валидирует формат
func (s *TickerService) normalize(ticker string) (models.Ticker, error) {
	upper := strings.ToUpper(strings.TrimSpace(ticker))
	if err := utils.ValidateTicker(upper); err != nil {
		return "", ErrInvalidTicker
	}
	return models.Ticker(upper), nil
}
