package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"statarb/internal/models"
	"statarb/internal/service"
)

// PairHandler - HTTP handlers активного набора выбранных пар
type PairHandler struct {
	pairService service.PairServiceInterface
}

// NewPairHandler создает новый экземпляр PairHandler
func NewPairHandler(pairService service.PairServiceInterface) *PairHandler {
	return &PairHandler{pairService: pairService}
}

// GetPairsResponse - ответ на запрос списка пар
type GetPairsResponse struct {
	Pairs []models.SelectedPair `json:"pairs"`
	Total int                   `json:"total"`
}

// GetIntentsResponse - ответ на запрос ордер-намерений
type GetIntentsResponse struct {
	Intents []models.OrderIntent `json:"intents"`
	Total   int                  `json:"total"`
}

// GetPairs обрабатывает GET /api/v1/pairs
// Возвращает активный набор в каноническом порядке ключей.
func (h *PairHandler) GetPairs(w http.ResponseWriter, r *http.Request) {
	pairs, err := h.pairService.GetActivePairs()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list pairs")
		return
	}
	if pairs == nil {
		pairs = []models.SelectedPair{}
	}

	respondWithJSON(w, http.StatusOK, GetPairsResponse{
		Pairs: pairs,
		Total: len(pairs),
	})
}

// GetPair обрабатывает GET /api/v1/pairs/{key}
// Ключ принимается в любом порядке ног ("LKOH-GAZP" == "GAZP-LKOH").
func (h *PairHandler) GetPair(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	pair, err := h.pairService.GetPair(key)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPairKey):
			respondWithError(w, http.StatusBadRequest, "invalid pair key")
		case errors.Is(err, service.ErrPairNotFound):
			respondWithError(w, http.StatusNotFound, "pair not found")
		default:
			respondWithError(w, http.StatusInternalServerError, "failed to get pair")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, pair)
}

// GetPairIntents обрабатывает GET /api/v1/pairs/{key}/intents?limit=50
func (h *PairHandler) GetPairIntents(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	limit := parseLimit(r, 50, 500)

	intents, err := h.pairService.GetPairIntents(key, limit)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPairKey) {
			respondWithError(w, http.StatusBadRequest, "invalid pair key")
			return
		}
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
