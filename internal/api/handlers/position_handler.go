package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"statarb/internal/models"
	"statarb/internal/service"
)

// PositionHandler - HTTP handlers виртуальных позиций
type PositionHandler struct {
	positionService service.PositionServiceInterface
}

// NewPositionHandler создает новый экземпляр PositionHandler
func NewPositionHandler(positionService service.PositionServiceInterface) *PositionHandler {
	return &PositionHandler{positionService: positionService}
}

// GetPositionsResponse - ответ на запрос списка позиций
type GetPositionsResponse struct {
	Positions []models.Position `json:"positions"`
	Total     int               `json:"total"`
}

// GetPositions обрабатывает GET /api/v1/positions?limit=50
// Возвращает последние позиции, включая закрытые.
func (h *PositionHandler) GetPositions(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 50, 500)

	positions, err := h.positionService.GetRecentPositions(limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list positions")
		return
	}
	if positions == nil {
		positions = []models.Position{}
	}

	respondWithJSON(w, http.StatusOK, GetPositionsResponse{
		Positions: positions,
		Total:     len(positions),
	})
}

// GetOpenPositions обрабатывает GET /api/v1/positions/open
func (h *PositionHandler) GetOpenPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.positionService.GetOpenPositions()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list open positions")
		return
	}
	if positions == nil {
		positions = []models.Position{}
	}

	respondWithJSON(w, http.StatusOK, GetPositionsResponse{
		Positions: positions,
		Total:     len(positions),
	})
}

// GetPosition обрабатывает GET /api/v1/positions/{id}
func (h *PositionHandler) GetPosition(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		respondWithError(w, http.StatusBadRequest, "invalid position id")
		return
	}

	pos, err := h.positionService.GetPosition(id)
	if err != nil {
		if errors.Is(err, service.ErrPositionNotFound) {
			respondWithError(w, http.StatusNotFound, "position not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to get position")
		return
	}

	respondWithJSON(w, http.StatusOK, pos)
}
