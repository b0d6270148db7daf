package service

import (
	"errors"

	"statarb/internal/models"
	"statarb/internal/repository"
	"statarb/pkg/utils"
)

// Ошибки сервиса пар
var (
	ErrPairNotFound   = errors.New("pair not found")
	ErrInvalidPairKey = errors.New("invalid pair key")
)

// PairService - чтение активного набора выбранных пар.
// Набор мутирует только селектор внутри прогона; API-слой к нему
// обращается исключительно на чтение.
type PairService struct {
	pairRepo   SelectedPairRepositoryInterface
	intentRepo IntentRepositoryInterface
}

// NewPairService создает новый экземпляр сервиса пар
func NewPairService(pairRepo SelectedPairRepositoryInterface, intentRepo IntentRepositoryInterface) *PairService {
	return &PairService{
		pairRepo:   pairRepo,
		intentRepo: intentRepo,
	}
}

// GetActivePairs возвращает активный набор в порядке ключей
func (s *PairService) GetActivePairs() ([]models.SelectedPair, error) {
	return s.pairRepo.Active()
}

// GetPair возвращает пару по строковому ключу "A-B"
func (s *PairService) GetPair(key string) (*models.SelectedPair, error) {
	pk, err := s.parseKey(key)
	if err != nil {
		return nil, err
	}

	sp, err := s.pairRepo.GetByKey(pk)
	if err != nil {
		if errors.Is(err, repository.ErrSelectedPairNotFound) {
			return nil, ErrPairNotFound
		}
		return nil, err
	}
	return sp, nil
}

// GetPairIntents возвращает последние намерения по паре
func (s *PairService) GetPairIntents(key string, limit int) ([]models.OrderIntent, error) {
	pk, err := s.parseKey(key)
	if err != nil {
		return nil, err
	}
	return s.intentRepo.GetByPair(pk, limit)
}

// GetRecentIntents возвращает последние намерения по всем парам
func (s *PairService) GetRecentIntents(limit int) ([]models.OrderIntent, error) {
	return s.intentRepo.Recent(limit)
}

// Count возвращает размер активного набора
func (s *PairService) Count() (int, error) {
	return s.pairRepo.Count()
}

// parseKey валидирует и разбирает ключ пары из URL.
// Ключ принимается в любом порядке ног, хранится канонически.
func (s *PairService) parseKey(key string) (models.PairKey, error) {
	pk, err := models.ParsePairKey(key)
	if err != nil {
		return models.PairKey{}, ErrInvalidPairKey
	}
	if err := utils.ValidateTicker(string(pk.LegA)); err != nil {
		return models.PairKey{}, ErrInvalidPairKey
	}
	if err := utils.ValidateTicker(string(pk.LegB)); err != nil {
		return models.PairKey{}, ErrInvalidPairKey
	}
	if pk.LegA == pk.LegB {
		return models.PairKey{}, ErrInvalidPairKey
	}
	return pk, nil
}
