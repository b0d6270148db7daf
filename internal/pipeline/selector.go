package pipeline

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"statarb/internal/models"
	"statarb/pkg/utils"
)

// минимальный p-value при вычислении композитного ранга,
// чтобы 1/p не уходил в бесконечность
const scorePValueFloor = 1e-9

// Selector формирует активный набор пар прогона. Работает строго
// однопоточно: порядок ранжирования и лимит ёмкости - инварианты,
// которые нельзя отдавать воркерам.
//
// Порядок обязателен: сначала ре-валидация прошлого набора (провалившиеся
// пары уходят в retired и закрываются через риск-менеджер), потом допуск
// по рангу. Пара с открытой позицией не вытесняется рангом - только
// провалом ре-валидации.
type Selector struct {
	capacity   int
	retainOpen bool // пары с открытой позицией удерживаются сверх ёмкости
	logger     *utils.Logger
}

// NewSelector создаёт селектор
func NewSelector(capacity int, retainOpen bool, logger *utils.Logger) *Selector {
	return &Selector{
		capacity:   capacity,
		retainOpen: retainOpen,
		logger:     logger.WithComponent("selector"),
	}
}

// Score вычисляет композитный ранг пары: (1/p_coint) · (1 − p_causal),
// где p_causal - минимальный p-value из двух направлений.
func Score(r models.CausalityResult) float64 {
	pc := utils.Max(r.Coint.PValue, scorePValueFloor)
	pg := utils.Min(r.PValueAtoB, r.PValueBtoA)
	return (1 / pc) * (1 - pg)
}

// Select принимает результаты причинности текущего прогона и набор пар
// прошлого прогона. Возвращает новый активный набор и retired-пары,
// для которых вызывающая сторона обязана провести принудительный EXIT
// через риск-менеджер до фиксации набора.
func (s *Selector) Select(
	now time.Time,
	results []models.CausalityResult,
	prior []models.SelectedPair,
	openPairs map[models.PairKey]bool,
) (selected, retired []models.SelectedPair) {

	passed := make(map[models.PairKey]models.CausalityResult, len(results))
	for _, r := range results {
		if r.Passed() {
			passed[r.Pair] = r
		}
	}

	// Ре-валидация: пара прошлого набора, не прошедшая полный конвейер
	// на этом прогоне, уходит - даже с открытой позицией.
	priorAt := make(map[models.PairKey]time.Time, len(prior))
	for _, p := range prior {
		if _, ok := passed[p.Pair]; !ok {
			s.logger.Info("pair retired",
				utils.Pair(p.Pair.String()),
				zap.Bool("had_open_position", openPairs[p.Pair]),
			)
			retired = append(retired, p)
			continue
		}
		priorAt[p.Pair] = p.SelectedAt
	}
	sort.Slice(retired, func(i, j int) bool { return retired[i].Pair.Less(retired[j].Pair) })

	// Кандидаты на допуск: все прошедшие пары с пересчитанными β, α
	// и рангом. Значения прошлого прогона никогда не переиспользуются.
	ranked := make([]models.SelectedPair, 0, len(passed))
	for key, r := range passed {
		selectedAt := now
		if at, ok := priorAt[key]; ok {
			selectedAt = at
		}
		ranked = append(ranked, models.SelectedPair{
			Pair:       key,
			HedgeRatio: r.Coint.HedgeRatio,
			Intercept:  r.Coint.Intercept,
			LeadingLeg: r.LeadingLeg,
			Score:      Score(r),
			SelectedAt: selectedAt,
			UpdatedAt:  now,
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Pair.Less(ranked[j].Pair)
	})

	// Допуск: удерживаемые пары идут вне конкурса, остаток ёмкости
	// заполняется по рангу.
	if s.retainOpen {
		rest := make([]models.SelectedPair, 0, len(ranked))
		for _, p := range ranked {
			if openPairs[p.Pair] {
				selected = append(selected, p)
			} else {
				rest = append(rest, p)
			}
		}
		ranked = rest
	}
	for _, p := range ranked {
		if len(selected) >= s.capacity {
			break
		}
		selected = append(selected, p)
	}

	sort.Slice(selected, func(i, j int) bool { return selected[i].Pair.Less(selected[j].Pair) })

	s.logger.Info("selection finished",
		zap.Int("passed", len(passed)),
		zap.Int("selected", len(selected)),
		zap.Int("retired", len(retired)),
	)
	return selected, retired
}
