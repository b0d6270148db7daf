package pipeline

import (
	"time"

	"go.uber.org/zap"

	"statarb/internal/marketdata"
	"statarb/internal/models"
	"statarb/pkg/utils"
)

// SignalGenerator отображает текущий z-score спреда в торговый сигнал.
// Сигналы создаются заново на каждом прогоне и не мутируются.
type SignalGenerator struct {
	window int // окно скользящей статистики спреда
	limits models.RiskLimits
	logger *utils.Logger
}

// NewSignalGenerator создаёт генератор сигналов
func NewSignalGenerator(window int, limits models.RiskLimits, logger *utils.Logger) *SignalGenerator {
	return &SignalGenerator{
		window: window,
		limits: limits,
		logger: logger.WithComponent("signal"),
	}
}

// Generate строит по одному сигналу на каждую выбранную пару.
// positions - открытые позиции по ключу пары: для открытой пары проверяются
// stop-loss и выход, для свободной - вход. Вырожденный спред (нулевая
// дисперсия в окне) даёт HOLD с записью в лог, никогда не ошибку.
func (g *SignalGenerator) Generate(
	now time.Time,
	snap marketdata.Snapshot,
	selected []models.SelectedPair,
	positions map[models.PairKey]models.Position,
) []models.Signal {

	signals := make([]models.Signal, 0, len(selected))
	for _, sp := range selected {
		pos, open := positions[sp.Pair]
		sig := g.generateOne(now, snap, sp, pos, open)
		signals = append(signals, sig)
	}

	g.logger.Info("signaling finished", zap.Int("signals", len(signals)))
	return signals
}

func (g *SignalGenerator) generateOne(
	now time.Time,
	snap marketdata.Snapshot,
	sp models.SelectedPair,
	pos models.Position,
	open bool,
) models.Signal {

	sig := models.Signal{Pair: sp.Pair, Kind: models.SignalHold, GeneratedAt: now}

	pricesA, pricesB := marketdata.Align(snap[sp.Pair.LegA], snap[sp.Pair.LegB])
	spread := utils.SpreadSeries(pricesA, pricesB, sp.HedgeRatio, sp.Intercept)

	z, ok := utils.LatestZScore(spread, g.window)
	if !ok {
		g.logger.Warn("degenerate spread, holding",
			utils.Pair(sp.Pair.String()),
			zap.Int("window", g.window),
			zap.Int("spread_len", len(spread)),
		)
		return sig
	}
	sig.ZScore = z

	if open {
		// Stop-loss срабатывает только против позиции:
		// SHORT_SPREAD страдает при росте z, LONG_SPREAD - при падении.
		adverse := (pos.Direction == models.DirectionShortSpread && z >= g.limits.StopLossThreshold) ||
			(pos.Direction == models.DirectionLongSpread && z <= -g.limits.StopLossThreshold)
		switch {
		case g.limits.StopLossThreshold > 0 && adverse:
			sig.Kind = models.SignalExit
			sig.Forced = true
			g.logger.Warn("stop-loss triggered",
				utils.Pair(sp.Pair.String()), utils.ZScore(z))
		case utils.IsExitSignal(z, g.limits.ExitThreshold):
			sig.Kind = models.SignalExit
		}
		return sig
	}

	switch {
	case z >= g.limits.EntryThreshold:
		sig.Kind = models.SignalEnterShortSpread
	case z <= -g.limits.EntryThreshold:
		sig.Kind = models.SignalEnterLongSpread
	}
	return sig
}
