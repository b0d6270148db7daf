package service

import (
	"errors"

	"statarb/internal/models"
	"statarb/internal/pipeline"
)

// Ошибки сервиса прогонов
var (
	ErrRunInFlight = errors.New("pipeline run already in flight")
)

// RunScheduler - контракт планировщика прогонов
type RunScheduler interface {
	TriggerRun() (*models.RunSummary, error)
	State() string
	History() []models.RunSummary
	LastRun() *models.RunSummary
}

// RunStatus - текущее состояние конвейера для API
type RunStatus struct {
	State   string             `json:"state"`
	LastRun *models.RunSummary `json:"last_run,omitempty"`
	Runs    int                `json:"runs"` // прогонов в истории
}

// RunService - управление прогонами конвейера через планировщик.
// Ручной запуск конкурирует с cron за тот же слот: перекрытие
// отклоняется, а не откладывается.
type RunService struct {
	scheduler RunScheduler
}

// NewRunService создает новый экземпляр сервиса прогонов
func NewRunService(scheduler RunScheduler) *RunService {
	return &RunService{scheduler: scheduler}
}

// Trigger запускает прогон вручную и ждёт его завершения
func (s *RunService) Trigger() (*models.RunSummary, error) {
	summary, err := s.scheduler.TriggerRun()
	if err != nil {
		if errors.Is(err, pipeline.ErrRunInFlight) {
			return nil, ErrRunInFlight
		}
		return summary, err
	}
	return summary, nil
}

// Status возвращает состояние FSM и итог последнего прогона
func (s *RunService) Status() RunStatus {
	return RunStatus{
		State:   s.scheduler.State(),
		LastRun: s.scheduler.LastRun(),
		Runs:    len(s.scheduler.History()),
	}
}

// History возвращает последние прогоны, новые первыми
func (s *RunService) History(limit int) []models.RunSummary {
	history := s.scheduler.History()

	// История хранится в порядке выполнения
	out := make([]models.RunSummary, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		out = append(out, history[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
