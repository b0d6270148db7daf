package models

import "time"

// SignalKind - вид торгового сигнала
type SignalKind string

const (
	// SignalEnterLongSpread - спред ниже -entry: лонг ноги A, шорт ноги B
	SignalEnterLongSpread SignalKind = "ENTER_LONG_SPREAD"
	// SignalEnterShortSpread - спред выше +entry: шорт ноги A, лонг ноги B
	SignalEnterShortSpread SignalKind = "ENTER_SHORT_SPREAD"
	// SignalExit - спред вернулся к среднему либо сработал stop-loss
	SignalExit SignalKind = "EXIT"
	// SignalHold - условия входа/выхода не выполнены
	SignalHold SignalKind = "HOLD"
)

// Signal - сигнал, сгенерированный для выбранной пары на одном прогоне.
// Не мутируется: следующий прогон создаёт новый сигнал поверх старого.
type Signal struct {
	Pair        PairKey    `json:"pair"`
	ZScore      float64    `json:"z_score"`
	Kind        SignalKind `json:"kind"`
	Forced      bool       `json:"forced"` // true если EXIT вызван stop-loss
	GeneratedAt time.Time  `json:"generated_at"`
}

// IsEntry возвращает true для сигналов входа
func (s Signal) IsEntry() bool {
	return s.Kind == SignalEnterLongSpread || s.Kind == SignalEnterShortSpread
}

// RiskLimits - риск-конфигурация одного прогона. Read-only внутри прогона.
type RiskLimits struct {
	MaxOpenPairs       int     `json:"max_open_pairs"`       // максимум одновременно открытых пар
	MaxCapitalFraction float64 `json:"max_capital_fraction"` // доля капитала на пару
	EntryThreshold     float64 `json:"entry_threshold"`      // |z| для входа
	ExitThreshold      float64 `json:"exit_threshold"`       // |z| для выхода
	StopLossThreshold  float64 `json:"stop_loss_threshold"`  // |z| принудительного выхода
}
