package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ============================================================
// Prometheus метрики конвейера
// ============================================================
//
// Экспортируются через /metrics. Основные вопросы, на которые
// отвечают дашборды:
// - сколько живёт каждая стадия и где прогон проводит время;
// - как сужается воронка кандидатов от стадии к стадии;
// - сколько сигналов каждого вида и сколько отказов риск-менеджера;
// - не застревает ли state machine (переходы и FAILED).

// ============ Метрики стадий ============

// StageDuration - длительность стадий прогона
// Buckets под батчевую статистику (десятки миллисекунд - минуты)
var StageDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "statarb",
		Subsystem: "pipeline",
		Name:      "stage_duration_seconds",
		Help:      "Duration of each pipeline stage in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
	},
	[]string{"stage"},
)

// StageTransitions - переходы state machine прогона
var StageTransitions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "statarb",
		Subsystem: "pipeline",
		Name:      "state_transitions_total",
		Help:      "Total number of run state machine transitions",
	},
	[]string{"from", "to"},
)

// RunsTotal - завершённые прогоны по исходу
var RunsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "statarb",
		Subsystem: "pipeline",
		Name:      "runs_total",
		Help:      "Total number of pipeline runs",
	},
	[]string{"result"}, // completed, failed, cancelled
)

// ============ Воронка кандидатов ============

// PairsAtStage - размер набора пар на выходе каждой стадии
var PairsAtStage = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: "statarb",
		Subsystem: "pipeline",
		Name:      "pairs_at_stage",
		Help:      "Number of pairs surviving each stage of the last run",
	},
	[]string{"stage"},
)

// TestOutcomes - исходы статистических тестов по видам
var TestOutcomes = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "statarb",
		Subsystem: "pipeline",
		Name:      "test_outcomes_total",
		Help:      "Statistical test outcomes by stage and result kind",
	},
	[]string{"stage", "kind"}, // kind: PASSED, FAILED_THRESHOLD, FAILED_NUMERIC
)

// TickersSkipped - тикеры, выброшенные при подготовке данных
var TickersSkipped = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "statarb",
		Subsystem: "marketdata",
		Name:      "tickers_skipped_total",
		Help:      "Tickers dropped during snapshot preparation",
	},
	[]string{"reason"}, // data_fault, short_history, cheap_close
)

// ============ Сигналы и риск ============

// SignalsGenerated - сигналы по видам
var SignalsGenerated = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "statarb",
		Subsystem: "signals",
		Name:      "generated_total",
		Help:      "Signals generated by kind",
	},
	[]string{"kind"},
)

// RiskRejections - отказы риск-менеджера
var RiskRejections = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "statarb",
		Subsystem: "risk",
		Name:      "rejections_total",
		Help:      "Signals rejected by the risk manager",
	},
	[]string{"reason"}, // capacity, already_open
)

// StopLossExits - принудительные выходы по стоп-лоссу
var StopLossExits = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "statarb",
		Subsystem: "risk",
		Name:      "stop_loss_exits_total",
		Help:      "Forced exits triggered by the stop-loss threshold",
	},
)

// OpenPositions - текущее количество открытых позиций
var OpenPositions = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "statarb",
		Subsystem: "risk",
		Name:      "open_positions",
		Help:      "Current number of open positions",
	},
)

// IntentsEmitted - ордер-намерения, переданные исполнителю
var IntentsEmitted = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "statarb",
		Subsystem: "execution",
		Name:      "intents_emitted_total",
		Help:      "Order intents handed to the execution boundary",
	},
	[]string{"kind"},
)

// ============ Вспомогательные функции ============

// RecordStageDuration записывает длительность стадии
func RecordStageDuration(stage string, elapsed time.Duration) {
	StageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// RecordTransition записывает переход state machine
func RecordTransition(from, to string) {
	StageTransitions.WithLabelValues(from, to).Inc()
}

// RecordFunnel обновляет воронку кандидатов последнего прогона
func RecordFunnel(stage string, pairs int) {
	PairsAtStage.WithLabelValues(stage).Set(float64(pairs))
}

// RecordTestOutcome записывает исход статистического теста
func RecordTestOutcome(stage, kind string) {
	TestOutcomes.WithLabelValues(stage, kind).Inc()
}

// RecordSignal записывает сгенерированный сигнал
func RecordSignal(kind string) {
	SignalsGenerated.WithLabelValues(kind).Inc()
}

// RecordRejection записывает отказ риск-менеджера
func RecordRejection(reason string) {
	RiskRejections.WithLabelValues(reason).Inc()
}

// RecordIntent записывает переданное ордер-намерение
func RecordIntent(kind string) {
	IntentsEmitted.WithLabelValues(kind).Inc()
}

// UpdateOpenPositions обновляет счётчик открытых позиций
func UpdateOpenPositions(count int) {
	OpenPositions.Set(float64(count))
}
