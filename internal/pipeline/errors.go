package pipeline

import (
	"errors"
	"fmt"
)

// ErrRunInFlight - попытка запустить прогон при уже идущем
var ErrRunInFlight = errors.New("pipeline run already in flight")

// StageError - ошибка уровня стадии. Прерывает прогон целиком,
// сохраняя уже зафиксированное состояние предыдущих стадий.
// Per-pair сбои в StageError не заворачиваются - они изолируются
// внутри воркеров и до этого типа не доходят.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError оборачивает ошибку стадии
func NewStageError(stage string, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}
