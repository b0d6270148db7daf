package handlers

import (
	"errors"
	"net/http"

	"statarb/internal/models"
	"statarb/internal/service"
)

// RunHandler - HTTP handlers управления прогонами конвейера
type RunHandler struct {
	runService service.RunServiceInterface
}

// NewRunHandler создает новый экземпляр RunHandler
func NewRunHandler(runService service.RunServiceInterface) *RunHandler {
	return &RunHandler{runService: runService}
}

// GetHistoryResponse - ответ на запрос истории прогонов
type GetHistoryResponse struct {
	Runs  []models.RunSummary `json:"runs"`
	Total int                 `json:"total"`
}

// TriggerRun обрабатывает POST /api/v1/runs
// Запускает прогон вручную и дожидается его завершения. Если прогон
// уже идёт (в том числе по cron), возвращает 409 - запуск не ставится
// в очередь.
func (h *RunHandler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	summary, err := h.runService.Trigger()
	if err != nil {
		if errors.Is(err, service.ErrRunInFlight) {
			respondWithError(w, http.StatusConflict, "run already in flight")
			return
		}
		// Прогон завершился ошибкой стадии: итог всё равно отдаём
		if summary != nil {
			respondWithJSON(w, http.StatusOK, summary)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to trigger run")
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}

// GetStatus обрабатывает GET /api/v1/runs/status
func (h *RunHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.runService.Status())
}

// GetHistory обрабатывает GET /api/v1/runs/history?limit=20
// Прогоны возвращаются от новых к старым.
func (h *RunHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 20, 200)

	runs := h.runService.History(limit)
	if runs == nil {
		runs = []models.RunSummary{}
	}

	respondWithJSON(w, http.StatusOK, GetHistoryResponse{
		Runs:  runs,
		Total: len(runs),
	})
}
