package models

import "time"

// Direction - направление позиции по спреду
type Direction string

const (
	DirectionLongSpread  Direction = "LONG_SPREAD"  // лонг A, шорт B
	DirectionShortSpread Direction = "SHORT_SPREAD" // шорт A, лонг B
)

// Статусы позиции
const (
	PositionOpen   = "open"
	PositionClosed = "closed"
)

// Position - логическая позиция по паре. Открывается при одобренном ENTER,
// закрывается при одобренном EXIT либо при retire пары селектором.
// Отражает намерение: реальное исполнение сверяется внешним коллаборатором.
// Инвариант: у пары не более одной открытой позиции одновременно.
type Position struct {
	ID         int       `json:"id" db:"id"`
	Pair       PairKey   `json:"pair" db:"pair"`
	Direction  Direction `json:"direction" db:"direction"`
	EntryZ     float64   `json:"entry_z" db:"entry_z"`
	Fraction   float64   `json:"fraction" db:"fraction"` // выделенная доля капитала
	Status     string    `json:"status" db:"status"`     // open, closed
	OpenedAt   time.Time `json:"opened_at" db:"opened_at"`
	ClosedAt   *time.Time `json:"closed_at,omitempty" db:"closed_at"`
	CloseCause string    `json:"close_cause,omitempty" db:"close_cause"` // exit, stop_loss, retired
}

// Причины закрытия позиции
const (
	CloseCauseExit     = "exit"
	CloseCauseStopLoss = "stop_loss"
	CloseCauseRetired  = "retired"
)

// IsOpen возвращает true для открытой позиции
func (p Position) IsOpen() bool {
	return p.Status == PositionOpen
}

// OrderIntent - запись о намерении, передаваемая внешнему исполнителю.
// Ядро не подтверждает fills.
type OrderIntent struct {
	ID         int        `json:"id" db:"id"`
	Pair       PairKey    `json:"pair" db:"pair"`
	Direction  Direction  `json:"direction" db:"direction"`
	HedgeRatio float64    `json:"hedge_ratio" db:"hedge_ratio"`
	Kind       SignalKind `json:"kind" db:"kind"`
	Fraction   float64    `json:"fraction" db:"fraction"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// RiskOutcome - решение риск-менеджера по сигналу
type RiskOutcome string

const (
	// OutcomeApproved - сигнал одобрен, позиция открыта/закрыта
	OutcomeApproved RiskOutcome = "APPROVED"
	// OutcomeRejectedRisk - сигнал валиден, но заблокирован лимитами.
	// Репортится, но не ретраится в рамках того же прогона.
	OutcomeRejectedRisk RiskOutcome = "REJECTED_RISK"
	// OutcomeNoop - сигнал не требует действий (HOLD, EXIT без позиции)
	OutcomeNoop RiskOutcome = "NOOP"
)

// RiskDecision - результат проверки одного сигнала
type RiskDecision struct {
	Signal  Signal       `json:"signal"`
	Outcome RiskOutcome  `json:"outcome"`
	Reason  string       `json:"reason,omitempty"`
	Intent  *OrderIntent `json:"intent,omitempty"` // заполнен только для APPROVED
}
