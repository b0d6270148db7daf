package pipeline

import (
	"context"

	"go.uber.org/zap"

	"statarb/internal/marketdata"
	"statarb/internal/models"
	"statarb/internal/stats"
	"statarb/pkg/utils"
)

// Screener отбирает пары-кандидаты по корреляции Пирсона лог-доходностей.
// Корреляция считается по доходностям, а не по уровням цен: уровни
// нестационарны и дают ложную корреляцию на общем тренде.
type Screener struct {
	threshold  float64 // минимальный |r| для прохода
	minOverlap int     // минимум общих наблюдений после выравнивания
	workers    int
	logger     *utils.Logger
}

// NewScreener создаёт скринер с порогами из конфигурации
func NewScreener(threshold float64, minOverlap, workers int, logger *utils.Logger) *Screener {
	return &Screener{
		threshold:  threshold,
		minOverlap: minOverlap,
		workers:    workers,
		logger:     logger.WithComponent("screener"),
	}
}

// Screen перебирает все неупорядоченные пары тикеров снимка и возвращает
// кандидатов, отсортированных по ключу пары. Пары с вырожденными данными
// (нулевая дисперсия, неположительные цены) пропускаются без остановки
// прогона.
func (s *Screener) Screen(ctx context.Context, snap marketdata.Snapshot) ([]models.PairCandidate, error) {
	keys := allPairs(snap)
	s.logger.Info("screening started",
		zap.Int("tickers", len(snap)),
		zap.Int("pairs", len(keys)),
	)

	candidates, err := forEachPair(ctx, s.workers, keys, func(key models.PairKey) (models.PairCandidate, bool) {
		return s.screenPair(snap, key)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("screening finished",
		zap.Int("pairs", len(keys)),
		zap.Int("candidates", len(candidates)),
	)
	return candidates, nil
}

func (s *Screener) screenPair(snap marketdata.Snapshot, key models.PairKey) (models.PairCandidate, bool) {
	pricesA, pricesB := marketdata.Align(snap[key.LegA], snap[key.LegB])
	if len(pricesA) < s.minOverlap {
		return models.PairCandidate{}, false
	}

	retA, err := stats.LogReturns(pricesA)
	if err != nil {
		s.logger.Warn("log returns failed, pair skipped", utils.Pair(key.String()), zap.Error(err))
		return models.PairCandidate{}, false
	}
	retB, err := stats.LogReturns(pricesB)
	if err != nil {
		s.logger.Warn("log returns failed, pair skipped", utils.Pair(key.String()), zap.Error(err))
		return models.PairCandidate{}, false
	}

	r, err := stats.Pearson(retA, retB)
	if err != nil {
		// Нулевая дисперсия или недостаток точек - не повод ронять прогон
		s.logger.Warn("correlation undefined, pair skipped", utils.Pair(key.String()), zap.Error(err))
		return models.PairCandidate{}, false
	}

	if utils.Abs(r) < s.threshold {
		return models.PairCandidate{}, false
	}

	return models.PairCandidate{
		Pair:        key,
		Correlation: r,
		Overlap:     len(pricesA),
	}, true
}

// allPairs строит все неупорядоченные пары тикеров снимка
func allPairs(snap marketdata.Snapshot) []models.PairKey {
	tickers := make([]models.Ticker, 0, len(snap))
	for t := range snap {
		tickers = append(tickers, t)
	}
	keys := make([]models.PairKey, 0, len(tickers)*(len(tickers)-1)/2)
	for i := 0; i < len(tickers); i++ {
		for j := i + 1; j < len(tickers); j++ {
			keys = append(keys, models.NewPairKey(tickers[i], tickers[j]))
		}
	}
	return keys
}
