package pipeline

import (
	"context"

	"go.uber.org/zap"

	"statarb/internal/marketdata"
	"statarb/internal/models"
	"statarb/internal/stats"
	"statarb/pkg/utils"
)

// CointTester проверяет кандидатов на коинтеграцию методом Engle-Granger:
// OLS ноги A на ногу B по уровням цен, затем ADF остатков (спреда).
// Хедж-коэффициент β и перехват α из этой регрессии переносятся дальше
// по конвейеру и пересчитываются на каждом прогоне заново.
type CointTester struct {
	pvalue  float64 // порог значимости ADF спреда
	adfLags int
	workers int
	logger  *utils.Logger
}

// NewCointTester создаёт стадию коинтеграции
func NewCointTester(pvalue float64, adfLags, workers int, logger *utils.Logger) *CointTester {
	return &CointTester{
		pvalue:  pvalue,
		adfLags: adfLags,
		workers: workers,
		logger:  logger.WithComponent("cointegration"),
	}
}

// Test прогоняет всех кандидатов и возвращает результаты в порядке ключей.
// Возвращаются ВСЕ результаты, включая FAILED_*: различие между
// FAILED_NUMERIC (вырожденные данные, пара вернётся на следующем прогоне)
// и FAILED_THRESHOLD (тест отработал, порог не пройден) важно для
// журнала прогона.
func (c *CointTester) Test(ctx context.Context, snap marketdata.Snapshot, candidates []models.PairCandidate) ([]models.CointegrationResult, error) {
	byKey := make(map[models.PairKey]models.PairCandidate, len(candidates))
	keys := make([]models.PairKey, 0, len(candidates))
	for _, cand := range candidates {
		byKey[cand.Pair] = cand
		keys = append(keys, cand.Pair)
	}

	results, err := forEachPair(ctx, c.workers, keys, func(key models.PairKey) (models.CointegrationResult, bool) {
		return c.testPair(snap, key), true
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
	c.logger.Info("cointegration finished",
		zap.Int("candidates", len(candidates)),
		zap.Int("passed", passed),
	)
	return results, nil
}

func (c *CointTester) testPair(snap marketdata.Snapshot, key models.PairKey) models.CointegrationResult {
	res := models.CointegrationResult{Pair: key}

	pricesA, pricesB := marketdata.Align(snap[key.LegA], snap[key.LegB])

	// Регрессия по уровням: A_t = α + β·B_t + ε_t
	alpha, beta, err := stats.SimpleOLS(pricesA, pricesB)
	if err != nil {
		c.logger.Warn("cointegration regression degenerate",
			utils.Pair(key.String()), zap.Error(err))
		res.Kind = models.ResultFailedNumeric
		return res
	}
	res.HedgeRatio = beta
	res.Intercept = alpha

	spread := utils.SpreadSeries(pricesA, pricesB, beta, alpha)
	adf, err := stats.ADFTest(spread, c.adfLags)
	if err != nil {
		c.logger.Warn("adf on spread degenerate",
			utils.Pair(key.String()), zap.Error(err))
		res.Kind = models.ResultFailedNumeric
		return res
	}

	res.Statistic = adf.Tau
	res.PValue = adf.PValue
	if adf.PValue <= c.pvalue {
		res.Kind = models.ResultPassed
	} else {
		res.Kind = models.ResultFailedThreshold
	}
	return res
}
