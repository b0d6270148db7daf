package service

import (
	"time"

	"statarb/internal/models"
	"statarb/pkg/utils"
)

// NotificationBroadcaster - рассылка уведомлений подписчикам реального времени
type NotificationBroadcaster interface {
	BroadcastNotification(n *models.Notification)
}

// NotificationService - журнал наблюдаемости конвейера.
// Принимает события от движка (Notify), персистит их и рассылает
// по websocket. Сбой записи не прерывает прогон: событие журнала
// вторично по отношению к решению конвейера.
type NotificationService struct {
	repo        NotificationRepositoryInterface
	broadcaster NotificationBroadcaster
	logger      *utils.Logger
}

// NewNotificationService создает новый экземпляр сервиса уведомлений
func NewNotificationService(repo NotificationRepositoryInterface, broadcaster NotificationBroadcaster, logger *utils.Logger) *NotificationService {
	return &NotificationService{
		repo:        repo,
		broadcaster: broadcaster,
		logger:      logger.WithComponent("notifications"),
	}
}

// Notify принимает событие конвейера: персистит и рассылает
func (s *NotificationService) Notify(n models.Notification) {
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}

	if err := s.repo.Create(&n); err != nil {
		s.logger.Error("persist notification",
			utils.String("type", n.Type),
			utils.Err(err))
		// Продолжаем: broadcast доносит событие даже без записи
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastNotification(&n)
	}
}

// GetNotifications возвращает последние уведомления; пустой список
// типов означает "все типы"
func (s *NotificationService) GetNotifications(types []string, limit int) ([]models.Notification, error) {
	if len(types) == 0 {
		return s.repo.Recent(limit)
	}
	return s.repo.RecentByTypes(types, limit)
}

// Cleanup удаляет уведомления старше указанного возраста
func (s *NotificationService) Cleanup(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	deleted, err := s.repo.DeleteOlderThan(cutoff)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.logger.Info("notification journal pruned",
			utils.Int64("deleted", deleted))
	}
	return deleted, nil
}
