package handlers

import (
	"net/http"

	"statarb/internal/models"
	"statarb/internal/service"
)

// IntentHandler - HTTP handlers журнала ордер-намерений
type IntentHandler struct {
	pairService service.PairServiceInterface
}

// NewIntentHandler создает новый экземпляр IntentHandler
func NewIntentHandler(pairService service.PairServiceInterface) *IntentHandler {
	return &IntentHandler{pairService: pairService}
}

// GetIntents обрабатывает GET /api/v1/intents?limit=50
// Намерения возвращаются от новых к старым по всем парам.
func (h *IntentHandler) GetIntents(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 50, 500)

	intents, err := h.pairService.GetRecentIntents(limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list intents")
		return
	}
	if intents == nil {
		intents = []models.OrderIntent{}
	}

	respondWithJSON(w, http.StatusOK, GetIntentsResponse{
		Intents: intents,
		Total:   len(intents),
	})
}
