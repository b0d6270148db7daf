package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// ============ IntentHandler Tests ============

func TestIntentHandler_GetIntents(t *testing.T) {
	t.Run("returns recent intents", func(t *testing.T) {
		mockSvc := NewMockPairService()
		handler := NewIntentHandler(mockSvc)

		mockSvc.AddIntent("GAZP", "LKOH", "ENTER_LONG_SPREAD")
		mockSvc.AddIntent("ROSN", "TATN", "EXIT")

		req := httptest.NewRequest(http.MethodGet, "/api/v1/intents", nil)
		w := httptest.NewRecorder()

		handler.GetIntents(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
		}

		var response GetIntentsResponse
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if response.Total != 2 {
			t.Errorf("expected total 2, got %d", response.Total)
		}
	})

	t.Run("returns 500 on service error", func(t *testing.T) {
		mockSvc := NewMockPairService()
		handler := NewIntentHandler(mockSvc)

		mockSvc.SetError(ErrMockDatabase)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/intents", nil)
		w := httptest.NewRecorder()

		handler.GetIntents(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}
	})
}
