package handlers

import (
	"net/http"
	"time"

	"statarb/internal/models"
	"statarb/internal/service"
)

// SignalHandler - HTTP handlers сигналов последнего прогона.
// Сигналы не персистятся: источником служит итог последнего
// завершённого прогона вместе с риск-решениями по каждому сигналу.
type SignalHandler struct {
	runService service.RunServiceInterface
}

// NewSignalHandler создает новый экземпляр SignalHandler
func NewSignalHandler(runService service.RunServiceInterface) *SignalHandler {
	return &SignalHandler{runService: runService}
}

// GetSignalsResponse - ответ на запрос сигналов
type GetSignalsResponse struct {
	RunID      int64                 `json:"run_id"`
	FinishedAt time.Time             `json:"finished_at,omitempty"`
	Decisions  []models.RiskDecision `json:"decisions"`
	Total      int                   `json:"total"`
}

// GetSignals обрабатывает GET /api/v1/signals
// Возвращает сигналы последнего прогона с вердиктами риск-контроля.
func (h *SignalHandler) GetSignals(w http.ResponseWriter, r *http.Request) {
	last := h.runService.Status().LastRun
	if last == nil {
		respondWithJSON(w, http.StatusOK, GetSignalsResponse{
			Decisions: []models.RiskDecision{},
		})
		return
	}

	decisions := last.Decisions
	if decisions == nil {
		decisions = []models.RiskDecision{}
	}

	respondWithJSON(w, http.StatusOK, GetSignalsResponse{
		RunID:      last.ID,
		FinishedAt: last.FinishedAt,
		Decisions:  decisions,
		Total:      len(decisions),
	})
}
