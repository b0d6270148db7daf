package pipeline

import "statarb/internal/models"

// ValidTransitions определяет допустимые переходы состояний прогона.
// Успешный путь - строгая последовательность стадий; из любой рабочей
// стадии возможен срыв в FAILED; FAILED возвращается в IDLE к началу
// следующего запланированного прогона.
var ValidTransitions = map[string][]string{
	models.RunStateIdle:          {models.RunStateScreening},
	models.RunStateScreening:     {models.RunStateCointegration, models.RunStateFailed},
	models.RunStateCointegration: {models.RunStateCausality, models.RunStateFailed},
	models.RunStateCausality:     {models.RunStateSelection, models.RunStateFailed},
	models.RunStateSelection:     {models.RunStateSignaling, models.RunStateFailed},
	models.RunStateSignaling:     {models.RunStateRiskCheck, models.RunStateFailed},
	models.RunStateRiskCheck:     {models.RunStateIdle, models.RunStateFailed},
	models.RunStateFailed:        {models.RunStateIdle},
}

// CanTransition проверяет допустимость перехода
func CanTransition(from, to string) bool {
	allowed, ok := ValidTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// StateInfo возвращает описание состояния для UI
func StateInfo(s string) string {
	switch s {
	case models.RunStateIdle:
		return "Ожидание следующего прогона"
	case models.RunStateScreening:
		return "Корреляционный отбор кандидатов"
	case models.RunStateCointegration:
		return "Тест коинтеграции пар"
	case models.RunStateCausality:
		return "Тест причинности Грейнджера"
	case models.RunStateSelection:
		return "Формирование активного набора пар"
	case models.RunStateSignaling:
		return "Генерация сигналов"
	case models.RunStateRiskCheck:
		return "Проверка риск-лимитов"
	case models.RunStateFailed:
		return "Прогон прерван ошибкой стадии"
	default:
		return "Неизвестное состояние"
	}
}

// IsRunning возвращает true если прогон в процессе
func IsRunning(s string) bool {
	return s != models.RunStateIdle && s != models.RunStateFailed
}
