package pipeline

import (
	"context"

	"go.uber.org/zap"

	"statarb/internal/marketdata"
	"statarb/internal/models"
	"statarb/internal/stats"
	"statarb/pkg/utils"
)

// CausalityTester проверяет причинность по Грейнджеру в обоих направлениях.
// Тест гоняется по лог-доходностям (первым разностям лог-цен): Грейнджер
// требует стационарности, уровни цен её не дают.
type CausalityTester struct {
	pvalue  float64 // порог значимости направления
	maxLag  int
	workers int
	logger  *utils.Logger
}

// NewCausalityTester создаёт стадию причинности
func NewCausalityTester(pvalue float64, maxLag, workers int, logger *utils.Logger) *CausalityTester {
	return &CausalityTester{
		pvalue:  pvalue,
		maxLag:  maxLag,
		workers: workers,
		logger:  logger.WithComponent("causality"),
	}
}

// Test прогоняет пары, прошедшие коинтеграцию. Результат несёт
// коинтеграционный контекст дальше по конвейеру. Пара проходит, если
// значимо хотя бы одно направление; ведущая нога - направление с
// меньшим p-value, при равенстве ведёт нога A.
func (c *CausalityTester) Test(ctx context.Context, snap marketdata.Snapshot, coints []models.CointegrationResult) ([]models.CausalityResult, error) {
	byKey := make(map[models.PairKey]models.CointegrationResult, len(coints))
	keys := make([]models.PairKey, 0, len(coints))
	for _, r := range coints {
		if !r.Passed() {
			continue
		}
		byKey[r.Pair] = r
		keys = append(keys, r.Pair)
	}

	results, err := forEachPair(ctx, c.workers, keys, func(key models.PairKey) (models.CausalityResult, bool) {
		return c.testPair(snap, byKey[key]), true
	})
	if err != nil {
		return nil, err
	}

	passed := 0
	for _, r := range results {
		if r.Passed() {
			passed++
		}
	}
	c.logger.Info("causality finished",
		zap.Int("tested", len(keys)),
		zap.Int("passed", passed),
	)
	return results, nil
}

func (c *CausalityTester) testPair(snap marketdata.Snapshot, coint models.CointegrationResult) models.CausalityResult {
	key := coint.Pair
	res := models.CausalityResult{Pair: key, Coint: coint}

	pricesA, pricesB := marketdata.Align(snap[key.LegA], snap[key.LegB])
	retA, errA := stats.LogReturns(pricesA)
	retB, errB := stats.LogReturns(pricesB)
	if errA != nil || errB != nil {
		c.logger.Warn("returns degenerate for causality",
			utils.Pair(key.String()), zap.Errors("errors", []error{errA, errB}))
		res.Kind = models.ResultFailedNumeric
		return res
	}

	aToB, errAB := stats.GrangerTest(retA, retB, c.maxLag)
	bToA, errBA := stats.GrangerTest(retB, retA, c.maxLag)
	if errAB != nil || errBA != nil {
		c.logger.Warn("granger degenerate",
			utils.Pair(key.String()), zap.Errors("errors", []error{errAB, errBA}))
		res.Kind = models.ResultFailedNumeric
		return res
	}

	res.PValueAtoB = aToB.MinPValue
	res.PValueBtoA = bToA.MinPValue

	if res.PValueAtoB > c.pvalue && res.PValueBtoA > c.pvalue {
		res.Kind = models.ResultFailedThreshold
		return res
	}

	res.Kind = models.ResultPassed
	if res.PValueAtoB <= res.PValueBtoA {
		res.LeadingLeg = key.LegA
	} else {
		res.LeadingLeg = key.LegB
	}
	return res
}
