package service

import (
	"errors"
	"testing"
	"time"

	"statarb/internal/models"
)

func seededPositionRepo() *mockPositionRepo {
	repo := &mockPositionRepo{}
	repo.Open(models.Position{
		Pair:      models.NewPairKey("GAZP", "LKOH"),
		Direction: models.DirectionShortSpread,
		EntryZ:    2.4,
		Fraction:  0.1,
		OpenedAt:  time.Now().Add(-48 * time.Hour),
	})
	repo.Open(models.Position{
		Pair:      models.NewPairKey("ROSN", "TATN"),
		Direction: models.DirectionLongSpread,
		EntryZ:    -2.1,
		Fraction:  0.1,
		OpenedAt:  time.Now().Add(-24 * time.Hour),
	})
	repo.Close(models.NewPairKey("ROSN", "TATN"), time.Now(), models.CloseCauseExit)
	return repo
}

func TestPositionServiceOpenPositions(t *testing.T) {
	svc := NewPositionService(seededPositionRepo())

	open, err := svc.GetOpenPositions()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(open) != 1 {
		t.Fatalf("expected 1 open position, got %d", len(open))
	}
	if open[0].Pair.String() != "GAZP-LKOH" {
		t.Errorf("unexpected pair: %s", open[0].Pair)
	}

	count, err := svc.CountOpen()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 open, got %d", count)
	}
}

func TestPositionServiceGetPosition(t *testing.T) {
	svc := NewPositionService(seededPositionRepo())

	pos, err := svc.GetPosition(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pos.Status != models.PositionClosed || pos.CloseCause != models.CloseCauseExit {
		t.Errorf("expected closed position with exit cause, got %+v", pos)
	}

	if _, err := svc.GetPosition(99); !errors.Is(err, ErrPositionNotFound) {
		t.Errorf("expected ErrPositionNotFound, got %v", err)
	}
}
