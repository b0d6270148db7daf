package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"statarb/internal/models"
	"statarb/internal/service"
)

// NotificationHandler - HTTP handlers журнала уведомлений
type NotificationHandler struct {
	notificationService service.NotificationServiceInterface
}

// NewNotificationHandler создает новый экземпляр NotificationHandler
func NewNotificationHandler(notificationService service.NotificationServiceInterface) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// GetNotificationsResponse - ответ на запрос уведомлений
type GetNotificationsResponse struct {
	Notifications []models.Notification `json:"notifications"`
	Total         int                   `json:"total"`
}

// CleanupNotificationsResponse - ответ на запрос очистки
type CleanupNotificationsResponse struct {
	Message string `json:"message"`
	Deleted int64  `json:"deleted"`
}

// GetNotifications обрабатывает GET /api/v1/notifications?types=SIGNAL,INTENT&limit=100
func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 100, 1000)

	var types []string
	if raw := r.URL.Query().Get("types"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				types = append(types, t)
			}
		}
	}

	notifications, err := h.notificationService.GetNotifications(types, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}

	respondWithJSON(w, http.StatusOK, GetNotificationsResponse{
		Notifications: notifications,
		Total:         len(notifications),
	})
}

// CleanupNotifications обрабатывает DELETE /api/v1/notifications?older_than_days=30
func (h *NotificationHandler) CleanupNotifications(w http.ResponseWriter, r *http.Request) {
	days := 30
	if raw := r.URL.Query().Get("older_than_days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondWithError(w, http.StatusBadRequest, "older_than_days must be a positive integer")
			return
		}
		days = parsed
	}

	deleted, err := h.notificationService.Cleanup(time.Duration(days) * 24 * time.Hour)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to cleanup notifications")
		return
	}

	respondWithJSON(w, http.StatusOK, CleanupNotificationsResponse{
		Message: "notifications cleaned up",
		Deleted: deleted,
	})
}
