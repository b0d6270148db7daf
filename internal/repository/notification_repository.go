package repository

import (
	"database/sql"
	"time"

	"github.com/lib/pq"

	"statarb/internal/models"
)

// NotificationRepository - работа с таблицей notifications.
// Журнал наблюдаемости: события конвейера (сигналы, отказы риска,
// retire пар, числовые сбои, провалы прогонов) с контекстом.
type NotificationRepository struct {
	db *sql.DB
}

// NewNotificationRepository создает новый экземпляр репозитория
func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create сохраняет уведомление и присваивает ID
func (r *NotificationRepository) Create(n *models.Notification) error {
	query := `
		INSERT INTO notifications (type, severity, pair, stage, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}

	return r.db.QueryRow(
		query,
		n.Type,
		n.Severity,
		n.Pair,
		n.Stage,
		n.Message,
		n.Timestamp,
	).Scan(&n.ID)
}

// Recent возвращает последние N уведомлений
func (r *NotificationRepository) Recent(limit int) ([]models.Notification, error) {
	query := `
		SELECT id, type, severity, pair, stage, message, created_at
		FROM notifications
		ORDER BY created_at DESC, id DESC
		LIMIT $1`

	return r.queryNotifications(query, limit)
}

// RecentByTypes возвращает последние уведомления указанных типов
func (r *NotificationRepository) RecentByTypes(types []string, limit int) ([]models.Notification, error) {
	query := `
		SELECT id, type, severity, pair, stage, message, created_at
		FROM notifications
		WHERE type = ANY($1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2`

	return r.queryNotifications(query, pq.Array(types), limit)
}

// DeleteOlderThan удаляет уведомления старше отметки, возвращает
// количество удалённых строк (автоочистка журнала)
func (r *NotificationRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM notifications WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *NotificationRepository) queryNotifications(query string, args ...interface{}) ([]models.Notification, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		var pair, stage sql.NullString
		err := rows.Scan(
			&n.ID,
			&n.Type,
			&n.Severity,
			&pair,
			&stage,
			&n.Message,
			&n.Timestamp,
		)
		if err != nil {
			return nil, err
		}
		n.Pair = pair.String
		n.Stage = stage.String
		notifications = append(notifications, n)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return notifications, nil
}
