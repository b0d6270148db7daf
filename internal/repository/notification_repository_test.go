package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"statarb/internal/models"
)

// ============================================================
// NotificationRepository Tests
// ============================================================

func notificationColumns() []string {
	return []string{"id", "type", "severity", "pair", "stage", "message", "created_at"}
}

func TestNotificationCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO notifications`).
		WithArgs(models.NotificationTypeSignal, models.SeverityInfo, "GAZP-LKOH", "SIGNALING", "z-score crossed entry threshold", now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(21))

	repo := NewNotificationRepository(db)
	n := &models.Notification{
		Timestamp: now,
		Type:      models.NotificationTypeSignal,
		Severity:  models.SeverityInfo,
		Pair:      "GAZP-LKOH",
		Stage:     "SIGNALING",
		Message:   "z-score crossed entry threshold",
	}
	if err := repo.Create(n); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.ID != 21 {
		t.Errorf("expected assigned ID 21, got %d", n.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestNotificationRecent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows(notificationColumns()).
		AddRow(22, models.NotificationTypeRunSummary, models.SeverityInfo, nil, nil, "run completed", now).
		AddRow(21, models.NotificationTypeSignal, models.SeverityInfo, "GAZP-LKOH", "SIGNALING", "entry signal", now.Add(-time.Minute))
	mock.ExpectQuery(`SELECT .+ FROM notifications ORDER BY created_at DESC, id DESC LIMIT \$1`).
		WithArgs(50).
		WillReturnRows(rows)

	repo := NewNotificationRepository(db)
	notifications, err := repo.Recent(50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifications) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(notifications))
	}
	if notifications[0].Pair != "" || notifications[0].Stage != "" {
		t.Errorf("NULL pair/stage must map to empty strings: %+v", notifications[0])
	}
	if notifications[1].Pair != "GAZP-LKOH" {
		t.Errorf("unexpected pair: %s", notifications[1].Pair)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestNotificationRecentByTypes(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	types := []string{models.NotificationTypeRunFailed, models.NotificationTypeDataFault}
	rows := sqlmock.NewRows(notificationColumns()).
		AddRow(23, models.NotificationTypeDataFault, models.SeverityWarn, nil, "SCREENING", "history unavailable for SBER", time.Now())
	mock.ExpectQuery(`SELECT .+ FROM notifications WHERE type = ANY\(\$1\)`).
		WithArgs(pq.Array(types), 20).
		WillReturnRows(rows)

	repo := NewNotificationRepository(db)
	notifications, err := repo.RecentByTypes(types, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifications))
	}
	if notifications[0].Type != models.NotificationTypeDataFault {
		t.Errorf("unexpected type: %s", notifications[0].Type)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestNotificationDeleteOlderThan(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	cutoff := time.Now().AddDate(0, 0, -30)
	mock.ExpectExec(`DELETE FROM notifications WHERE created_at < \$1`).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 125))

	repo := NewNotificationRepository(db)
	deleted, err := repo.DeleteOlderThan(cutoff)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != 125 {
		t.Errorf("expected 125 deleted rows, got %d", deleted)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
