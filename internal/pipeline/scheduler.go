package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"statarb/internal/models"
	"statarb/pkg/utils"
)

// RunBroadcaster транслирует итоги прогона подписчикам (websocket).
// Вызовы не должны блокировать планировщик.
type RunBroadcaster interface {
	BroadcastRunUpdate(summary *models.RunSummary)
	BroadcastSignal(sig *models.Signal)
}

// Scheduler запускает прогоны по cron-расписанию и по ручному триггеру.
// Гарантия: не более одного прогона в полёте - повторный запуск при
// занятом движке отклоняется с ErrRunInFlight, не откладывается.
type Scheduler struct {
	engine      *Engine
	cron        *cron.Cron
	cadence     string
	timeout     time.Duration
	logger      *utils.Logger
	broadcaster RunBroadcaster // опционален

	runMu   sync.Mutex          // занята, пока прогон в полёте
	mu      sync.Mutex
	history []models.RunSummary // последние прогоны, новые в конце
	cancel  context.CancelFunc  // отмена прогона в полёте

	baseCtx context.Context
}

// сколько итогов прогона держим в памяти для API
const runHistoryLimit = 50

// NewScheduler создаёт планировщик. cadence - шестипольный cron-спек
// (с секундами), timeout ограничивает длительность одного прогона.
func NewScheduler(engine *Engine, cadence string, timeout time.Duration, logger *utils.Logger) *Scheduler {
	return &Scheduler{
		engine:  engine,
		cron:    cron.New(cron.WithSeconds()),
		cadence: cadence,
		timeout: timeout,
		logger:  logger.WithComponent("scheduler"),
		baseCtx: context.Background(),
	}
}

// SetBroadcaster подключает трансляцию итогов прогона. Вызывать до Start.
func (s *Scheduler) SetBroadcaster(b RunBroadcaster) {
	s.broadcaster = b
}

// Start регистрирует расписание и запускает cron. ctx - жизненный цикл
// процесса: его отмена роняет прогон в полёте на ближайшей точке.
func (s *Scheduler) Start(ctx context.Context) error {
	s.baseCtx = ctx
	if _, err := s.cron.AddFunc(s.cadence, func() {
		if _, err := s.TriggerRun(); err != nil {
			s.logger.Warn("scheduled run skipped", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("register run cadence %q: %w", s.cadence, err)
	}
	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("cadence", s.cadence))
	return nil
}

// Stop останавливает cron и отменяет прогон в полёте. Возвращается после
// того, как cron дождался своих задач.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	<-stopCtx.Done()
	s.logger.Info("scheduler stopped")
}

// TriggerRun запускает прогон немедленно (ручной триггер API и cron
// используют один путь). Блокирует до завершения прогона.
func (s *Scheduler) TriggerRun() (*models.RunSummary, error) {
	// Перекрывающиеся прогоны запрещены: отклоняем, не откладываем
	if !s.runMu.TryLock() {
		s.logger.Warn("run already in flight, trigger rejected")
		return nil, ErrRunInFlight
	}
	defer s.runMu.Unlock()

	runCtx, cancel := context.WithTimeout(s.baseCtx, s.timeout)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	defer func() {
		cancel()
		s.mu.Lock()
		s.cancel = nil
		s.mu.Unlock()
	}()

	summary, err := s.engine.Run(runCtx)
	if errors.Is(err, ErrRunInFlight) {
		return nil, err
	}
	if summary != nil {
		s.record(*summary)
	}
	return summary, err
}

// State возвращает текущее состояние движка
func (s *Scheduler) State() string {
	return s.engine.State()
}

// History возвращает итоги последних прогонов, новые в конце
func (s *Scheduler) History() []models.RunSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.RunSummary, len(s.history))
	copy(out, s.history)
	return out
}

// LastRun возвращает итог последнего прогона либо nil
func (s *Scheduler) LastRun() *models.RunSummary {
	return s.engine.LastRun()
}

func (s *Scheduler) record(summary models.RunSummary) {
	s.mu.Lock()
	s.history = append(s.history, summary)
	if len(s.history) > runHistoryLimit {
		s.history = s.history[len(s.history)-runHistoryLimit:]
	}
	s.mu.Unlock()

	if s.broadcaster != nil {
		s.broadcaster.BroadcastRunUpdate(&summary)
		for i := range summary.Decisions {
			s.broadcaster.BroadcastSignal(&summary.Decisions[i].Signal)
		}
	}
}
