package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"statarb/internal/models"
	"statarb/internal/service"
)

// TickerHandler - HTTP handlers каталога тикеров
type TickerHandler struct {
	tickerService service.TickerServiceInterface
}

// NewTickerHandler создает новый экземпляр TickerHandler
func NewTickerHandler(tickerService service.TickerServiceInterface) *TickerHandler {
	return &TickerHandler{tickerService: tickerService}
}

// GetTickersResponse - ответ на запрос списка тикеров
type GetTickersResponse struct {
	Tickers []models.Ticker `json:"tickers"`
	Total   int             `json:"total"`
}

// AddTickerRequest - тело запроса добавления тикера
type AddTickerRequest struct {
	Ticker string `json:"ticker"`
}

// SetTickerActiveRequest - тело запроса смены активности тикера
type SetTickerActiveRequest struct {
	Active bool `json:"active"`
}

// GetTickers обрабатывает GET /api/v1/tickers?active=true
func (h *TickerHandler) GetTickers(w http.ResponseWriter, r *http.Request) {
	onlyActive := r.URL.Query().Get("active") == "true"

	tickers, err := h.tickerService.ListTickers(onlyActive)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list tickers")
		return
	}
	if tickers == nil {
		tickers = []models.Ticker{}
	}

	respondWithJSON(w, http.StatusOK, GetTickersResponse{
		Tickers: tickers,
		Total:   len(tickers),
	})
}

// AddTicker обрабатывает POST /api/v1/tickers
func (h *TickerHandler) AddTicker(w http.ResponseWriter, r *http.Request) {
	var req AddTickerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.tickerService.AddTicker(req.Ticker); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTicker):
			respondWithError(w, http.StatusBadRequest, "invalid ticker")
		case errors.Is(err, service.ErrTickerExists):
			respondWithError(w, http.StatusConflict, "ticker already exists")
		default:
			respondWithError(w, http.StatusInternalServerError, "failed to add ticker")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, SuccessResponse{Message: "ticker added"})
}

// SetTickerActive обрабатывает PATCH /api/v1/tickers/{ticker}
// Деактивированный тикер выпадает из вселенной следующего прогона.
func (h *TickerHandler) SetTickerActive(w http.ResponseWriter, r *http.Request) {
	ticker := mux.Vars(r)["ticker"]

	var req SetTickerActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.tickerService.SetTickerActive(ticker, req.Active); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTicker):
			respondWithError(w, http.StatusBadRequest, "invalid ticker")
		case errors.Is(err, service.ErrTickerNotFound):
			respondWithError(w, http.StatusNotFound, "ticker not found")
		default:
			respondWithError(w, http.StatusInternalServerError, "failed to update ticker")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, SuccessResponse{Message: "ticker updated"})
}

// GetCoverage обрабатывает GET /api/v1/tickers/{ticker}/coverage
// Возвращает покрытие истории цен: первый/последний бар и число точек.
func (h *TickerHandler) GetCoverage(w http.ResponseWriter, r *http.Request) {
	ticker := mux.Vars(r)["ticker"]

	coverage, err := h.tickerService.GetCoverage(ticker)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTicker):
			respondWithError(w, http.StatusBadRequest, "invalid ticker")
		case errors.Is(err, service.ErrNoCoverage):
			respondWithError(w, http.StatusNotFound, "no price history for ticker")
		default:
			respondWithError(w, http.StatusInternalServerError, "failed to get coverage")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, coverage)
}

// GetLatestPrice обрабатывает GET /api/v1/tickers/{ticker}/price
func (h *TickerHandler) GetLatestPrice(w http.ResponseWriter, r *http.Request) {
	ticker := mux.Vars(r)["ticker"]

	price, err := h.tickerService.GetLatestPrice(ticker)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTicker):
			respondWithError(w, http.StatusBadRequest, "invalid ticker")
		case errors.Is(err, service.ErrNoCoverage):
			respondWithError(w, http.StatusNotFound, "no price history for ticker")
		default:
			respondWithError(w, http.StatusInternalServerError, "failed to get price")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, price)
}
