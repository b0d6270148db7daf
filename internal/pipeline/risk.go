package pipeline

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"statarb/internal/models"
	"statarb/pkg/utils"
)

// PositionBook - персистентные переходы состояний позиций.
// Реализуется репозиторием; вызывается только риск-менеджером
// в рамках однопоточной стадии RISK_CHECK (single-writer).
type PositionBook interface {
	// Open фиксирует открытие и возвращает позицию с присвоенным ID
	Open(pos models.Position) (models.Position, error)
	// Close закрывает открытую позицию пары с указанием причины
	Close(pair models.PairKey, closedAt time.Time, cause string) (models.Position, error)
}

// IntentEmitter - граница исполнения: одобренные решения превращаются
// в ордер-намерения. Ядро не подтверждает fills.
type IntentEmitter interface {
	Emit(intent models.OrderIntent) (models.OrderIntent, error)
}

// RiskManager проверяет сигналы против лимитов и проводит переходы
// позиций. Строго однопоточный внутри прогона: лимит ёмкости и инвариант
// "одна открытая позиция на пару" проверяются на живом снимке книги.
type RiskManager struct {
	limits  models.RiskLimits
	book    PositionBook
	emitter IntentEmitter
	logger  *utils.Logger
}

// NewRiskManager создаёт риск-менеджер
func NewRiskManager(limits models.RiskLimits, book PositionBook, emitter IntentEmitter, logger *utils.Logger) *RiskManager {
	return &RiskManager{
		limits:  limits,
		book:    book,
		emitter: emitter,
		logger:  logger.WithComponent("risk"),
	}
}

// Decide проверяет один сигнал. open - живая карта открытых позиций
// прогона, мутируется при одобрении. Ошибка означает отказ хранилища
// и роняет стадию, а не пару.
func (r *RiskManager) Decide(
	now time.Time,
	sig models.Signal,
	sp models.SelectedPair,
	open map[models.PairKey]models.Position,
) (models.RiskDecision, error) {

	dec := models.RiskDecision{Signal: sig}

	switch {
	case sig.Kind == models.SignalHold:
		dec.Outcome = models.OutcomeNoop
		return dec, nil

	case sig.IsEntry():
		if _, exists := open[sig.Pair]; exists {
			dec.Outcome = models.OutcomeRejectedRisk
			dec.Reason = "pair already has an open position"
			r.logger.Warn("entry rejected", utils.Pair(sig.Pair.String()), zap.String("reason", dec.Reason))
			return dec, nil
		}
		if len(open) >= r.limits.MaxOpenPairs {
			dec.Outcome = models.OutcomeRejectedRisk
			dec.Reason = fmt.Sprintf("open pair limit reached (%d)", r.limits.MaxOpenPairs)
			r.logger.Warn("entry rejected", utils.Pair(sig.Pair.String()), zap.String("reason", dec.Reason))
			return dec, nil
		}
		return r.approveEntry(now, sig, sp, open)

	case sig.Kind == models.SignalExit:
		pos, exists := open[sig.Pair]
		if !exists {
			// EXIT без позиции - не ошибка и не отказ, просто нет действий
			dec.Outcome = models.OutcomeNoop
			dec.Reason = "no open position"
			return dec, nil
		}
		cause := models.CloseCauseExit
		if sig.Forced {
			cause = models.CloseCauseStopLoss
		}
		return r.approveExit(now, sig, sp, pos, cause, open)
	}

	dec.Outcome = models.OutcomeNoop
	return dec, nil
}

// Retire принудительно закрывает позицию пары, убранной селектором.
// Возвращает nil-решение, если позиции не было.
func (r *RiskManager) Retire(
	now time.Time,
	sp models.SelectedPair,
	open map[models.PairKey]models.Position,
) (*models.RiskDecision, error) {

	pos, exists := open[sp.Pair]
	if !exists {
		return nil, nil
	}
	sig := models.Signal{
		Pair:        sp.Pair,
		Kind:        models.SignalExit,
		Forced:      true,
		GeneratedAt: now,
	}
	dec, err := r.approveExit(now, sig, sp, pos, models.CloseCauseRetired, open)
	if err != nil {
		return nil, err
	}
	dec.Reason = "pair retired by selector"
	return &dec, nil
}

func (r *RiskManager) approveEntry(
	now time.Time,
	sig models.Signal,
	sp models.SelectedPair,
	open map[models.PairKey]models.Position,
) (models.RiskDecision, error) {

	direction := models.DirectionLongSpread
	if sig.Kind == models.SignalEnterShortSpread {
		direction = models.DirectionShortSpread
	}

	pos, err := r.book.Open(models.Position{
		Pair:      sig.Pair,
		Direction: direction,
		EntryZ:    sig.ZScore,
		Fraction:  r.limits.MaxCapitalFraction,
		Status:    models.PositionOpen,
		OpenedAt:  now,
	})
	if err != nil {
		return models.RiskDecision{}, fmt.Errorf("open position %s: %w", sig.Pair, err)
	}

	intent, err := r.emitter.Emit(models.OrderIntent{
		Pair:       sig.Pair,
		Direction:  direction,
		HedgeRatio: sp.HedgeRatio,
		Kind:       sig.Kind,
		Fraction:   r.limits.MaxCapitalFraction,
		CreatedAt:  now,
	})
	if err != nil {
		return models.RiskDecision{}, fmt.Errorf("emit intent %s: %w", sig.Pair, err)
	}

	open[sig.Pair] = pos
	r.logger.Info("entry approved",
		utils.Pair(sig.Pair.String()),
		zap.String("direction", string(direction)),
		utils.ZScore(sig.ZScore),
		utils.Fraction(pos.Fraction),
	)
	return models.RiskDecision{Signal: sig, Outcome: models.OutcomeApproved, Intent: &intent}, nil
}

func (r *RiskManager) approveExit(
	now time.Time,
	sig models.Signal,
	sp models.SelectedPair,
	pos models.Position,
	cause string,
	open map[models.PairKey]models.Position,
) (models.RiskDecision, error) {

	if _, err := r.book.Close(sig.Pair, now, cause); err != nil {
		return models.RiskDecision{}, fmt.Errorf("close position %s: %w", sig.Pair, err)
	}

	intent, err := r.emitter.Emit(models.OrderIntent{
		Pair:       sig.Pair,
		Direction:  pos.Direction,
		HedgeRatio: sp.HedgeRatio,
		Kind:       models.SignalExit,
		Fraction:   pos.Fraction,
		CreatedAt:  now,
	})
	if err != nil {
		return models.RiskDecision{}, fmt.Errorf("emit intent %s: %w", sig.Pair, err)
	}

	delete(open, sig.Pair)
	r.logger.Info("exit approved",
		utils.Pair(sig.Pair.String()),
		zap.String("cause", cause),
		utils.ZScore(sig.ZScore),
	)
	return models.RiskDecision{Signal: sig, Outcome: models.OutcomeApproved, Intent: &intent}, nil
}
