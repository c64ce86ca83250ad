package scheduler

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"log/slog"

	"github.com/irynahryshanovich/automation-suite/internal/models"
)

// countingRunner tracks how many cycle bodies execute concurrently.
type countingRunner struct {
	delay time.Duration

	mu       sync.Mutex
	inFlight int32
	maxSeen  int32
	total    int
	triggers []string
}

func (r *countingRunner) Run(_ context.Context, _, trigger string) (models.CycleResult, error) {
	current := atomic.AddInt32(&r.inFlight, 1)
	defer atomic.AddInt32(&r.inFlight, -1)

	r.mu.Lock()
	if current > r.maxSeen {
		r.maxSeen = current
	}
	r.total++
	r.triggers = append(r.triggers, trigger)
	r.mu.Unlock()

	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	return models.CycleResult{RunID: "test"}, nil
}

func (r *countingRunner) stats() (maxSeen int32, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.maxSeen, r.total
}

// blockingRunner holds the gate until released.
type blockingRunner struct {
	entered chan struct{}
	release chan struct{}
}

func (r *blockingRunner) Run(_ context.Context, _, _ string) (models.CycleResult, error) {
	close(r.entered)
	<-r.release
	return models.CycleResult{}, nil
}

func testScheduler(runner CycleRunner, interval time.Duration) *Scheduler {
	s := New(runner, 30, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.cadence = interval
	return s
}

func TestOnlyOneCycleRunsAtATime(t *testing.T) {
	runner := &countingRunner{delay: 20 * time.Millisecond}
	s := testScheduler(runner, 5*time.Millisecond)
	s.triggerWait = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.Start(ctx)

	// Hammer manual triggers while the schedule fires underneath.
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.TriggerNow(ctx, "")
			if err != nil && err != ErrBusy {
				t.Errorf("TriggerNow returned unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	maxSeen, total := runner.stats()
	if maxSeen > 1 {
		t.Fatalf("observed %d concurrent cycles, want at most 1", maxSeen)
	}
	if total == 0 {
		t.Fatal("expected at least one cycle to run")
	}
}

func TestTriggerNowRejectsWhenBusy(t *testing.T) {
	runner := &blockingRunner{entered: make(chan struct{}), release: make(chan struct{})}
	s := testScheduler(runner, time.Hour)
	s.triggerWait = 30 * time.Millisecond

	go s.TriggerNow(context.Background(), "")
	<-runner.entered

	_, err := s.TriggerNow(context.Background(), "")
	if err != ErrBusy {
		t.Fatalf("expected ErrBusy while a cycle holds the gate, got %v", err)
	}

	close(runner.release)
}

func TestTriggerNowUsesManualTag(t *testing.T) {
	runner := &countingRunner{}
	s := testScheduler(runner, time.Hour)

	if _, err := s.TriggerNow(context.Background(), "Boston"); err != nil {
		t.Fatalf("TriggerNow returned error: %v", err)
	}

	runner.mu.Lock()
	defer runner.mu.Unlock()
	if len(runner.triggers) != 1 || runner.triggers[0] != "manual" {
		t.Fatalf("expected one manual run, got %v", runner.triggers)
	}
}

func TestSetCadenceReplacesRunningLoop(t *testing.T) {
	runner := &countingRunner{}
	s := testScheduler(runner, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.Start(ctx)
	defer s.Stop()

	// Nothing fires on the hour-long cadence.
	time.Sleep(30 * time.Millisecond)
	if _, total := runner.stats(); total != 0 {
		t.Fatalf("expected no firings yet, got %d", total)
	}

	// Swap to a fast cadence while running; the new interval must take over.
	s.mu.Lock()
	s.startLocked(10 * time.Millisecond)
	s.mu.Unlock()

	deadline := time.After(time.Second)
	for {
		if _, total := runner.stats(); total > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("new cadence never fired")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestSetCadenceDoesNotAbortInFlightCycle(t *testing.T) {
	runner := &blockingRunner{entered: make(chan struct{}), release: make(chan struct{})}
	s := testScheduler(runner, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Stop()

	// Occupy the gate via a manual trigger, mimicking a mid-flight cycle.
	triggerDone := make(chan error, 1)
	go func() {
		_, err := s.TriggerNow(ctx, "")
		triggerDone <- err
	}()
	<-runner.entered

	if _, err := s.SetCadence(15); err != nil {
		t.Fatalf("SetCadence returned error: %v", err)
	}
	if got := s.Cadence(); got != 15 {
		t.Fatalf("expected cadence 15, got %d", got)
	}

	// The in-flight cycle is still running and completes undisturbed.
	select {
	case err := <-triggerDone:
		t.Fatalf("cycle finished prematurely: %v", err)
	default:
	}

	close(runner.release)
	if err := <-triggerDone; err != nil {
		t.Fatalf("in-flight cycle failed after cadence change: %v", err)
	}
}

func TestSetCadenceRejectsNonPositive(t *testing.T) {
	s := testScheduler(&countingRunner{}, time.Hour)

	if _, err := s.SetCadence(0); err == nil {
		t.Fatal("expected error for zero cadence")
	}
	if _, err := s.SetCadence(-5); err == nil {
		t.Fatal("expected error for negative cadence")
	}
}

func TestSetCadenceWhileStoppedOnlyStoresValue(t *testing.T) {
	runner := &countingRunner{}
	s := testScheduler(runner, time.Hour)

	if _, err := s.SetCadence(45); err != nil {
		t.Fatalf("SetCadence returned error: %v", err)
	}
	if got := s.Cadence(); got != 45 {
		t.Fatalf("expected cadence 45, got %d", got)
	}

	time.Sleep(20 * time.Millisecond)
	if _, total := runner.stats(); total != 0 {
		t.Fatal("stopped scheduler must not fire after cadence change")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	s := testScheduler(&countingRunner{}, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.Stop() // stop before start is a no-op
	s.Start(ctx)
	s.Stop()
	s.Stop()
}

func TestStartWaitsOneFullInterval(t *testing.T) {
	runner := &countingRunner{}
	s := testScheduler(runner, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.Start(ctx)
	defer s.Stop()

	// No immediate firing at registration.
	time.Sleep(10 * time.Millisecond)
	if _, total := runner.stats(); total != 0 {
		t.Fatal("scheduler must not fire before the first interval elapses")
	}
}
