package models

// ResultKind - исход статистического теста для пары.
// FAILED_NUMERIC и FAILED_THRESHOLD обязаны различаться в логах и тестах:
// первый означает вырожденные данные (retry на следующем прогоне),
// второй - тест корректно отработал, но порог не пройден.
type ResultKind string

const (
	ResultPassed          ResultKind = "PASSED"
	ResultFailedThreshold ResultKind = "FAILED_THRESHOLD"
	ResultFailedNumeric   ResultKind = "FAILED_NUMERIC"
)

// CointegrationResult - результат теста коинтеграции спреда.
// Один результат на кандидата на прогон.
type CointegrationResult struct {
	Pair       PairKey    `json:"pair"`
	Statistic  float64    `json:"statistic"` // tau-статистика ADF
	PValue     float64    `json:"p_value"`
	HedgeRatio float64    `json:"hedge_ratio"` // β из OLS ноги A на ногу B
	Intercept  float64    `json:"intercept"`   // α из той же регрессии
	Kind       ResultKind `json:"kind"`
}

// Passed возвращает true если тест пройден
func (r CointegrationResult) Passed() bool {
	return r.Kind == ResultPassed
}

// CausalityResult - результат двунаправленного теста Грейнджера.
// PValueAtoB - минимальный p-value по лагам 1..L для направления A→B.
type CausalityResult struct {
	Pair       PairKey    `json:"pair"`
	PValueAtoB float64    `json:"p_value_a_to_b"`
	PValueBtoA float64    `json:"p_value_b_to_a"`
	LeadingLeg Ticker     `json:"leading_leg"` // пустой если Kind != PASSED
	Kind       ResultKind `json:"kind"`

	// Коинтеграционный контекст, переносится дальше по конвейеру
	Coint CointegrationResult `json:"coint"`
}

// Passed возвращает true если хотя бы одно направление значимо
func (r CausalityResult) Passed() bool {
	return r.Kind == ResultPassed
}
