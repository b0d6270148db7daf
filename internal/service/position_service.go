package service

import (
	"errors"

	"statarb/internal/models"
	"statarb/internal/repository"
)

// Ошибки сервиса позиций
var (
	ErrPositionNotFound = errors.New("position not found")
)

// PositionService - чтение логических позиций.
// Открытие и закрытие позиций - прерогатива риск-менеджера внутри
// прогона; API отдаёт их состояние, но не мутирует.
type PositionService struct {
	positionRepo PositionRepositoryInterface
}

// NewPositionService создает новый экземпляр сервиса позиций
func NewPositionService(positionRepo PositionRepositoryInterface) *PositionService {
	return &PositionService{positionRepo: positionRepo}
}

// GetOpenPositions возвращает открытые позиции в порядке ключей пар
func (s *PositionService) GetOpenPositions() ([]models.Position, error) {
	return s.positionRepo.OpenPositions()
}

// GetRecentPositions возвращает последние позиции (включая закрытые)
func (s *PositionService) GetRecentPositions(limit int) ([]models.Position, error) {
	return s.positionRepo.Recent(limit)
}

// GetPosition возвращает позицию по ID
func (s *PositionService) GetPosition(id int) (*models.Position, error) {
	pos, err := s.positionRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrPositionNotFound) {
			return nil, ErrPositionNotFound
		}
		return nil, err
	}
	return pos, nil
}

// CountOpen возвращает количество открытых позиций
func (s *PositionService) CountOpen() (int, error) {
	return s.positionRepo.CountOpen()
}
