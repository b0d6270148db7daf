package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"statarb/internal/config"
	"statarb/internal/marketdata"
	"statarb/internal/models"
	"statarb/pkg/utils"
)

// PairStore - персистентный активный набор пар. Читается при старте
// прогона, перезаписывается селектором. Пишет только движок (single-writer).
type PairStore interface {
	// Active возвращает набор, переживший прошлый прогон
	Active() ([]models.SelectedPair, error)
	// Replace атомарно замещает активный набор
	Replace(pairs []models.SelectedPair) error
}

// PositionStore - книга позиций: переходы состояний плюс чтение открытых
type PositionStore interface {
	PositionBook
	// OpenPositions возвращает все открытые позиции
	OpenPositions() ([]models.Position, error)
}

// Notifier - журнал наблюдаемости: события конвейера уходят в хранилище
// и подписчикам (websocket). Реализация не должна блокировать прогон.
type Notifier interface {
	Notify(n models.Notification)
}

// Engine прогоняет конвейер целиком: снимок данных → скрининг →
// коинтеграция → причинность → отбор → сигналы → риск-проверка.
// Состояние state machine защищено мьютексом; сам прогон однопоточный,
// параллелизм живёт только внутри стадий на воркерах.
type Engine struct {
	cfg    config.PipelineConfig
	limits models.RiskLimits

	accessor  marketdata.Accessor
	screener  *Screener
	coint     *CointTester
	causality *CausalityTester
	selector  *Selector
	signals   *SignalGenerator
	risk      *RiskManager

	pairs     PairStore
	positions PositionStore
	notifier  Notifier

	logger *utils.Logger

	mu      sync.Mutex
	state   string
	running bool // занятость прогона, атомарна с проверкой state
	runSeq  int64
	lastRun *models.RunSummary

	// подменяется в тестах
	nowFn func() time.Time
}

// NewEngine собирает движок из конфигурации и внешних границ
func NewEngine(
	cfg *config.Config,
	accessor marketdata.Accessor,
	pairs PairStore,
	positions PositionStore,
	emitter IntentEmitter,
	notifier Notifier,
	logger *utils.Logger,
) *Engine {
	limits := models.RiskLimits{
		MaxOpenPairs:       cfg.Risk.MaxOpenPairs,
		MaxCapitalFraction: cfg.Risk.MaxCapitalFraction,
		EntryThreshold:     cfg.Risk.EntryZ,
		ExitThreshold:      cfg.Risk.ExitZ,
		StopLossThreshold:  cfg.Risk.StopLossZ,
	}
	p := cfg.Pipeline
	return &Engine{
		cfg:       p,
		limits:    limits,
		accessor:  accessor,
		screener:  NewScreener(p.CorrelationThreshold, p.MinOverlap, p.Workers, logger),
		coint:     NewCointTester(p.CointPValue, p.ADFLags, p.Workers, logger),
		causality: NewCausalityTester(p.CausalPValue, p.MaxLag, p.Workers, logger),
		selector:  NewSelector(cfg.Risk.MaxOpenPairs, p.RetainOpenPositions, logger),
		signals:   NewSignalGenerator(p.LookbackWindow, limits, logger),
		risk:      NewRiskManager(limits, positions, emitter, logger),
		pairs:     pairs,
		positions: positions,
		notifier:  notifier,
		logger:    logger.WithComponent("engine"),
		state:     models.RunStateIdle,
		nowFn:     time.Now,
	}
}

// State возвращает текущее состояние state machine
func (e *Engine) State() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// LastRun возвращает итог последнего завершённого прогона
func (e *Engine) LastRun() *models.RunSummary {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lastRun == nil {
		return nil
	}
	cp := *e.lastRun
	return &cp
}

// Run выполняет один прогон. Возвращает ErrRunInFlight, если движок
// не в IDLE. Ошибка стадии (StageError) прерывает прогон: состояние,
// зафиксированное завершёнными стадиями, остаётся валидным.
func (e *Engine) Run(ctx context.Context) (*models.RunSummary, error) {
	e.mu.Lock()
	if e.running || e.state != models.RunStateIdle {
		e.mu.Unlock()
		return nil, ErrRunInFlight
	}
	e.running = true
	e.runSeq++
	summary := &models.RunSummary{
		ID:        e.runSeq,
		StartedAt: e.nowFn(),
	}
	e.mu.Unlock()

	e.logger.Info("run started", utils.RunID(summary.ID))
	err := e.runStages(ctx, summary)

	e.mu.Lock()
	summary.FinishedAt = e.nowFn()
	if err != nil {
		summary.State = models.RunStateFailed
	} else {
		summary.State = models.RunStateIdle
	}
	e.lastRun = summary
	e.running = false
	e.mu.Unlock()

	if err != nil {
		RunsTotal.WithLabelValues(runResult(err)).Inc()
		e.notify(models.Notification{
			Timestamp: summary.FinishedAt,
			Type:      models.NotificationTypeRunFailed,
			Severity:  models.SeverityError,
			Stage:     summary.FailedStage,
			Message:   summary.FailureCause,
		})
		e.logger.Error("run failed",
			utils.RunID(summary.ID),
			utils.Stage(summary.FailedStage),
			zap.Error(err),
		)
		return summary, err
	}

	RunsTotal.WithLabelValues("completed").Inc()
	e.notify(models.Notification{
		Timestamp: summary.FinishedAt,
		Type:      models.NotificationTypeRunSummary,
		Severity:  models.SeverityInfo,
		Message: fmt.Sprintf("run %d: universe %d, candidates %d, cointegrated %d, causal %d, selected %d, approved %d, rejected %d",
			summary.ID, summary.Universe, summary.Candidates, summary.Cointegrated,
			summary.Causal, summary.Selected, summary.Approved, summary.Rejected),
	})
	e.logger.Info("run finished",
		utils.RunID(summary.ID),
		zap.Int("selected", summary.Selected),
		zap.Int("approved", summary.Approved),
		zap.Duration("elapsed", summary.FinishedAt.Sub(summary.StartedAt)),
	)
	return summary, nil
}

func (e *Engine) runStages(ctx context.Context, summary *models.RunSummary) error {
	// ---- SCREENING: снимок данных + корреляционный отбор ----
	if err := e.transition(models.RunStateScreening, summary); err != nil {
		return err
	}
	snap, candidates, err := e.stageScreening(ctx, summary)
	if err != nil {
		return e.fail(summary, models.RunStateScreening, err)
	}
	if err := e.checkpoint(ctx, summary, models.RunStateScreening); err != nil {
		return err
	}

	// ---- COINTEGRATION ----
	if err := e.transition(models.RunStateCointegration, summary); err != nil {
		return err
	}
	coints, err := e.stageCointegration(ctx, snap, candidates, summary)
	if err != nil {
		return e.fail(summary, models.RunStateCointegration, err)
	}
	if err := e.checkpoint(ctx, summary, models.RunStateCointegration); err != nil {
		return err
	}

	// ---- CAUSALITY ----
	if err := e.transition(models.RunStateCausality, summary); err != nil {
		return err
	}
	causals, err := e.stageCausality(ctx, snap, coints, summary)
	if err != nil {
		return e.fail(summary, models.RunStateCausality, err)
	}
	if err := e.checkpoint(ctx, summary, models.RunStateCausality); err != nil {
		return err
	}

	// ---- SELECTION: ре-валидация, retire, ранжирование, фиксация ----
	if err := e.transition(models.RunStateSelection, summary); err != nil {
		return err
	}
	selected, open, err := e.stageSelection(causals, summary)
	if err != nil {
		return e.fail(summary, models.RunStateSelection, err)
	}
	if err := e.checkpoint(ctx, summary, models.RunStateSelection); err != nil {
		return err
	}

	// ---- SIGNALING ----
	if err := e.transition(models.RunStateSignaling, summary); err != nil {
		return err
	}
	signals := e.stageSignaling(snap, selected, open, summary)
	if err := e.checkpoint(ctx, summary, models.RunStateSignaling); err != nil {
		return err
	}

	// ---- RISK_CHECK ----
	if err := e.transition(models.RunStateRiskCheck, summary); err != nil {
		return err
	}
	if err := e.stageRiskCheck(signals, selected, open, summary); err != nil {
		return e.fail(summary, models.RunStateRiskCheck, err)
	}

	return e.transition(models.RunStateIdle, summary)
}

// transition переводит state machine, проверяя допустимость перехода
func (e *Engine) transition(to string, summary *models.RunSummary) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	from := e.state
	if !CanTransition(from, to) {
		// Недопустимый переход - дефект оркестрации, не данных
		return NewStageError(from, fmt.Errorf("invalid transition %s → %s", from, to))
	}
	e.state = to
	summary.State = to
	RecordTransition(from, to)
	e.logger.Debug("state transition", zap.String("from", from), zap.String("to", to))
	return nil
}

// checkpoint - кооперативная точка отмены между стадиями.
// Результаты завершённых стадий остаются зафиксированными.
func (e *Engine) checkpoint(ctx context.Context, summary *models.RunSummary, stage string) error {
	select {
	case <-ctx.Done():
		e.logger.Warn("run cancelled at checkpoint", utils.Stage(stage))
		return e.fail(summary, stage, ctx.Err())
	default:
		return nil
	}
}

// fail фиксирует провал стадии и возвращает машину в IDLE через FAILED
func (e *Engine) fail(summary *models.RunSummary, stage string, cause error) error {
	e.mu.Lock()
	from := e.state
	e.state = models.RunStateFailed
	RecordTransition(from, models.RunStateFailed)
	e.state = models.RunStateIdle
	RecordTransition(models.RunStateFailed, models.RunStateIdle)
	e.mu.Unlock()

	summary.FailedStage = stage
	summary.FailureCause = cause.Error()
	return NewStageError(stage, cause)
}

func (e *Engine) stageScreening(ctx context.Context, summary *models.RunSummary) (marketdata.Snapshot, []models.PairCandidate, error) {
	started := e.nowFn()

	window := utils.GetLastNDays(e.cfg.HistoryDays)
	snap, skipped, err := marketdata.LoadSnapshot(ctx, e.accessor, window, e.cfg.MinHistory)
	if err != nil {
		return nil, nil, fmt.Errorf("load snapshot: %w", err)
	}
	for _, t := range skipped {
		TickersSkipped.WithLabelValues("data_fault").Inc()
		e.notify(models.Notification{
			Timestamp: e.nowFn(),
			Type:      models.NotificationTypeDataFault,
			Severity:  models.SeverityWarn,
			Stage:     models.RunStateScreening,
			Message:   fmt.Sprintf("ticker %s skipped: price history fault", t),
		})
	}

	report := marketdata.FilterUniverse(snap, e.cfg.MinHistory, e.cfg.MinPrice)
	TickersSkipped.WithLabelValues("short_history").Add(float64(len(report.DroppedByLength)))
	TickersSkipped.WithLabelValues("cheap_close").Add(float64(len(report.DroppedByPrice)))
	summary.Universe = len(snap)

	candidates, err := e.screener.Screen(ctx, snap)
	if err != nil {
		return nil, nil, err
	}
	summary.Candidates = len(candidates)
	RecordFunnel(models.RunStateScreening, len(candidates))
	RecordStageDuration(models.RunStateScreening, e.nowFn().Sub(started))
	return snap, candidates, nil
}

func (e *Engine) stageCointegration(ctx context.Context, snap marketdata.Snapshot, candidates []models.PairCandidate, summary *models.RunSummary) ([]models.CointegrationResult, error) {
	started := e.nowFn()

	results, err := e.coint.Test(ctx, snap, candidates)
	if err != nil {
		return nil, err
	}
	passed := 0
	for _, r := range results {
		RecordTestOutcome(models.RunStateCointegration, string(r.Kind))
		if r.Passed() {
			passed++
		} else if r.Kind == models.ResultFailedNumeric {
			e.notifyNumeric(models.RunStateCointegration, r.Pair)
		}
	}
	summary.Cointegrated = passed
	RecordFunnel(models.RunStateCointegration, passed)
	RecordStageDuration(models.RunStateCointegration, e.nowFn().Sub(started))
	return results, nil
}

func (e *Engine) stageCausality(ctx context.Context, snap marketdata.Snapshot, coints []models.CointegrationResult, summary *models.RunSummary) ([]models.CausalityResult, error) {
	started := e.nowFn()

	results, err := e.causality.Test(ctx, snap, coints)
	if err != nil {
		return nil, err
	}
	passed := 0
	for _, r := range results {
		RecordTestOutcome(models.RunStateCausality, string(r.Kind))
		if r.Passed() {
			passed++
		} else if r.Kind == models.ResultFailedNumeric {
			e.notifyNumeric(models.RunStateCausality, r.Pair)
		}
	}
	summary.Causal = passed
	RecordFunnel(models.RunStateCausality, passed)
	RecordStageDuration(models.RunStateCausality, e.nowFn().Sub(started))
	return results, nil
}

func (e *Engine) stageSelection(causals []models.CausalityResult, summary *models.RunSummary) ([]models.SelectedPair, map[models.PairKey]models.Position, error) {
	started := e.nowFn()
	now := e.nowFn()

	prior, err := e.pairs.Active()
	if err != nil {
		return nil, nil, fmt.Errorf("load selected pairs: %w", err)
	}
	openList, err := e.positions.OpenPositions()
	if err != nil {
		return nil, nil, fmt.Errorf("load open positions: %w", err)
	}
	open := make(map[models.PairKey]models.Position, len(openList))
	for _, p := range openList {
		open[p.Pair] = p
	}

	openKeys := make(map[models.PairKey]bool, len(open))
	for k := range open {
		openKeys[k] = true
	}
	selected, retired := e.selector.Select(now, causals, prior, openKeys)

	// Retire до фиксации нового набора: позиции убранных пар закрываются
	// принудительным EXIT через риск-менеджер.
	for _, sp := range retired {
		dec, err := e.risk.Retire(now, sp, open)
		if err != nil {
			return nil, nil, err
		}
		if dec != nil {
			summary.Decisions = append(summary.Decisions, *dec)
			summary.Approved++
			RecordIntent(string(models.SignalExit))
		}
		e.notify(models.Notification{
			Timestamp: now,
			Type:      models.NotificationTypeRetired,
			Severity:  models.SeverityWarn,
			Pair:      sp.Pair.String(),
			Stage:     models.RunStateSelection,
			Message:   "pair failed re-validation and was retired",
		})
	}

	if err := e.pairs.Replace(selected); err != nil {
		return nil, nil, fmt.Errorf("persist selected pairs: %w", err)
	}

	summary.Selected = len(selected)
	RecordFunnel(models.RunStateSelection, len(selected))
	RecordStageDuration(models.RunStateSelection, e.nowFn().Sub(started))
	return selected, open, nil
}

func (e *Engine) stageSignaling(snap marketdata.Snapshot, selected []models.SelectedPair, open map[models.PairKey]models.Position, summary *models.RunSummary) []models.Signal {
	started := e.nowFn()

	signals := e.signals.Generate(e.nowFn(), snap, selected, open)
	for _, sig := range signals {
		RecordSignal(string(sig.Kind))
		if sig.Kind == models.SignalHold {
			continue
		}
		if sig.Forced {
			StopLossExits.Inc()
		}
		e.notify(models.Notification{
			Timestamp: sig.GeneratedAt,
			Type:      models.NotificationTypeSignal,
			Severity:  models.SeverityInfo,
			Pair:      sig.Pair.String(),
			Stage:     models.RunStateSignaling,
			Message:   fmt.Sprintf("signal %s at z=%.3f", sig.Kind, sig.ZScore),
		})
	}
	summary.Signals = len(signals)
	RecordStageDuration(models.RunStateSignaling, e.nowFn().Sub(started))
	return signals
}

func (e *Engine) stageRiskCheck(signals []models.Signal, selected []models.SelectedPair, open map[models.PairKey]models.Position, summary *models.RunSummary) error {
	started := e.nowFn()
	now := e.nowFn()

	byKey := make(map[models.PairKey]models.SelectedPair, len(selected))
	for _, sp := range selected {
		byKey[sp.Pair] = sp
	}

	for _, sig := range signals {
		dec, err := e.risk.Decide(now, sig, byKey[sig.Pair], open)
		if err != nil {
			return err
		}
		summary.Decisions = append(summary.Decisions, dec)

		switch dec.Outcome {
		case models.OutcomeApproved:
			summary.Approved++
			RecordIntent(string(dec.Intent.Kind))
			e.notify(models.Notification{
				Timestamp: now,
				Type:      models.NotificationTypeIntent,
				Severity:  models.SeverityInfo,
				Pair:      sig.Pair.String(),
				Stage:     models.RunStateRiskCheck,
				Message:   fmt.Sprintf("intent %s emitted", dec.Intent.Kind),
			})
		case models.OutcomeRejectedRisk:
			summary.Rejected++
			reason := "capacity"
			if dec.Reason == "pair already has an open position" {
				reason = "already_open"
			}
			RecordRejection(reason)
			e.notify(models.Notification{
				Timestamp: now,
				Type:      models.NotificationTypeRejected,
				Severity:  models.SeverityWarn,
				Pair:      sig.Pair.String(),
				Stage:     models.RunStateRiskCheck,
				Message:   dec.Reason,
			})
		}
	}

	UpdateOpenPositions(len(open))
	RecordStageDuration(models.RunStateRiskCheck, e.nowFn().Sub(started))
	return nil
}

func (e *Engine) notifyNumeric(stage string, pair models.PairKey) {
	e.notify(models.Notification{
		Timestamp: e.nowFn(),
		Type:      models.NotificationTypeNumeric,
		Severity:  models.SeverityWarn,
		Pair:      pair.String(),
		Stage:     stage,
		Message:   "statistical test degenerate, pair skipped this run",
	})
}

func (e *Engine) notify(n models.Notification) {
	if e.notifier == nil {
		return
	}
	e.notifier.Notify(n)
}

func runResult(err error) string {
	switch {
	case err == nil:
		return "completed"
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "failed"
	}
}
