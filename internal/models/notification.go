package models

import "time"

// Типы уведомлений
const (
	NotificationTypeSignal     = "SIGNAL"      // сгенерирован актуальный сигнал
	NotificationTypeIntent     = "INTENT"      // намерение передано исполнителю
	NotificationTypeRejected   = "REJECTED"    // сигнал заблокирован риск-лимитами
	NotificationTypeRetired    = "RETIRED"     // пара снята с торговли селектором
	NotificationTypeNumeric    = "NUMERIC"     // FAILED_NUMERIC в статистическом тесте
	NotificationTypeDataFault  = "DATA_FAULT"  // DataUnavailable/PartialData
	NotificationTypeRunFailed  = "RUN_FAILED"  // прогон прерван на стадии
	NotificationTypeRunSummary = "RUN_SUMMARY" // итог успешного прогона
)

// Уровни важности
const (
	SeverityInfo  = "info"
	SeverityWarn  = "warn"
	SeverityError = "error"
)

// Notification - событие для журнала наблюдаемости.
// Несёт достаточно контекста (пара, стадия, причина) для воспроизведения.
type Notification struct {
	ID        int                    `json:"id" db:"id"`
	Timestamp time.Time              `json:"timestamp" db:"created_at"`
	Type      string                 `json:"type" db:"type"`
	Severity  string                 `json:"severity" db:"severity"`
	Pair      string                 `json:"pair,omitempty" db:"pair"`
	Stage     string                 `json:"stage,omitempty" db:"stage"`
	Message   string                 `json:"message" db:"message"`
	Meta      map[string]interface{} `json:"meta,omitempty" db:"-"`
}
