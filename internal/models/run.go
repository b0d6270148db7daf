package models

import "time"

// Состояния прогона конвейера (state machine планировщика)
const (
	RunStateIdle          = "IDLE"
	RunStateScreening     = "SCREENING"
	RunStateCointegration = "COINTEGRATION"
	RunStateCausality     = "CAUSALITY"
	RunStateSelection     = "SELECTION"
	RunStateSignaling     = "SIGNALING"
	RunStateRiskCheck     = "RISK_CHECK"
	RunStateFailed        = "FAILED"
)

// RunSummary - итог одного прогона конвейера.
// Хранится в памяти планировщика, отдаётся через API и websocket.
type RunSummary struct {
	ID           int64          `json:"id"`
	State        string         `json:"state"`
	StartedAt    time.Time      `json:"started_at"`
	FinishedAt   time.Time      `json:"finished_at,omitempty"`
	Universe     int            `json:"universe"`      // размер вселенной тикеров
	Candidates   int            `json:"candidates"`    // после скринера
	Cointegrated int            `json:"cointegrated"`  // после теста коинтеграции
	Causal       int            `json:"causal"`        // после теста Грейнджера
	Selected     int            `json:"selected"`      // активный набор после селектора
	Signals      int            `json:"signals"`       // сигналов сгенерировано
	Approved     int            `json:"approved"`      // одобрено риск-менеджером
	Rejected     int            `json:"rejected"`      // REJECTED_RISK
	FailedStage  string         `json:"failed_stage,omitempty"`
	FailureCause string         `json:"failure_cause,omitempty"`
	Decisions    []RiskDecision `json:"decisions,omitempty"`
}
