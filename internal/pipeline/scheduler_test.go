package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"statarb/internal/models"
)

func TestSchedulerManualTrigger(t *testing.T) {
	f := newEngineFixture(testConfig(), newFakeAccessor(plantedUniverse(50, 120)))
	s := NewScheduler(f.engine, "0 0 16 * * 1-5", time.Minute, testLogger())

	summary, err := s.TriggerRun()
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}
	if summary == nil || summary.ID != 1 {
		t.Fatalf("expected run summary with id 1, got %+v", summary)
	}

	history := s.History()
	if len(history) != 1 || history[0].ID != summary.ID {
		t.Fatalf("run must be recorded in history: %+v", history)
	}
	if s.LastRun() == nil || s.LastRun().ID != summary.ID {
		t.Error("last run must be exposed")
	}
	if s.State() != models.RunStateIdle {
		t.Errorf("scheduler idle after run, got %s", s.State())
	}
}

func TestSchedulerRejectsOverlappingRun(t *testing.T) {
	acc := newFakeAccessor(nil)
	acc.blockCtx = true
	f := newEngineFixture(testConfig(), acc)
	s := NewScheduler(f.engine, "0 0 16 * * 1-5", 200*time.Millisecond, testLogger())

	done := make(chan struct{})
	go func() {
		// Первый прогон висит на снимке до таймаута
		_, _ = s.TriggerRun()
		close(done)
	}()
	<-acc.started

	if _, err := s.TriggerRun(); !errors.Is(err, ErrRunInFlight) {
		t.Fatalf("overlapping trigger must be rejected, got %v", err)
	}
	<-done

	// После таймаута первого прогона движок снова доступен
	if s.State() != models.RunStateIdle {
		t.Errorf("engine must be idle after timeout, got %s", s.State())
	}
}

func TestSchedulerRunTimeout(t *testing.T) {
	acc := newFakeAccessor(nil)
	acc.blockCtx = true
	f := newEngineFixture(testConfig(), acc)
	s := NewScheduler(f.engine, "0 0 16 * * 1-5", 50*time.Millisecond, testLogger())

	summary, err := s.TriggerRun()
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if summary == nil || summary.FailedStage != models.RunStateScreening {
		t.Fatalf("timed out run must name the stage: %+v", summary)
	}
	// Провалившийся прогон тоже попадает в историю
	if len(s.History()) != 1 {
		t.Fatalf("failed run must be recorded, got %d entries", len(s.History()))
	}
}

type recordingBroadcaster struct {
	runs    []models.RunSummary
	signals []models.Signal
}

func (b *recordingBroadcaster) BroadcastRunUpdate(summary *models.RunSummary) {
	b.runs = append(b.runs, *summary)
}

func (b *recordingBroadcaster) BroadcastSignal(sig *models.Signal) {
	b.signals = append(b.signals, *sig)
}

func TestSchedulerBroadcastsRunUpdates(t *testing.T) {
	f := newEngineFixture(testConfig(), newFakeAccessor(plantedUniverse(50, 120)))
	s := NewScheduler(f.engine, "0 0 16 * * 1-5", time.Minute, testLogger())

	b := &recordingBroadcaster{}
	s.SetBroadcaster(b)

	summary, err := s.TriggerRun()
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}

	if len(b.runs) != 1 || b.runs[0].ID != summary.ID {
		t.Fatalf("run update must be broadcast, got %+v", b.runs)
	}
	if len(b.signals) != len(summary.Decisions) {
		t.Errorf("expected %d signal broadcasts, got %d", len(summary.Decisions), len(b.signals))
	}
}

func TestSchedulerInvalidCadence(t *testing.T) {
	f := newEngineFixture(testConfig(), newFakeAccessor(nil))
	s := NewScheduler(f.engine, "not a cron spec", time.Minute, testLogger())

	if err := s.Start(context.Background()); err == nil {
		t.Fatal("invalid cadence must fail at start")
	}
}

func TestSchedulerStartStop(t *testing.T) {
	f := newEngineFixture(testConfig(), newFakeAccessor(plantedUniverse(51, 60)))
	s := NewScheduler(f.engine, "0 0 16 * * 1-5", time.Minute, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.Stop()
}
