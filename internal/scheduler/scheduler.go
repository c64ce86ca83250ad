// Package scheduler owns the recurring automation timer. All cycle execution,
// scheduled or manual, serializes through a single capacity-1 gate so at most
// one cycle runs at a time.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/irynahryshanovich/automation-suite/internal/automation"
	"github.com/irynahryshanovich/automation-suite/internal/models"
)

// ErrBusy is returned when a manual trigger gives up waiting for an
// in-flight cycle to release the gate.
var ErrBusy = errors.New("a cycle is already running")

const defaultTriggerWait = 5 * time.Second

// CycleRunner executes one automation cycle.
type CycleRunner interface {
	Run(ctx context.Context, city, trigger string) (models.CycleResult, error)
}

// Scheduler manages one recurring task. Cadence lives only in process
// memory; a restart returns to the configured default.
type Scheduler struct {
	runner CycleRunner
	logger *slog.Logger

	// gate serializes cycle execution across the loop and manual triggers.
	gate chan struct{}

	// triggerWait bounds how long TriggerNow blocks on the gate.
	triggerWait time.Duration

	mu       sync.Mutex
	cadence  time.Duration
	baseCtx  context.Context
	stopChan chan struct{} // nil while stopped
	done     chan struct{}
}

// New creates a stopped scheduler with the given default cadence.
func New(runner CycleRunner, cadenceMinutes int, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:      runner,
		logger:      logger,
		gate:        make(chan struct{}, 1),
		triggerWait: defaultTriggerWait,
		cadence:     time.Duration(cadenceMinutes) * time.Minute,
	}
}

// Start begins the recurring loop. Starting while already running replaces
// the existing registration with the current cadence.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baseCtx = ctx
	s.startLocked(s.cadence)
}

// SetCadence replaces the recurring registration with a new interval and
// returns the applied value in minutes. The swap is atomic: the previous
// registration is fully retired before the new one starts, so no firing is
// dropped and no old-interval tick can land afterwards. An in-flight cycle
// is never interrupted; the change governs the next firing.
func (s *Scheduler) SetCadence(minutes int) (int, error) {
	if minutes <= 0 {
		return 0, fmt.Errorf("cadence must be a positive number of minutes, got %d", minutes)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	interval := time.Duration(minutes) * time.Minute
	s.cadence = interval
	if s.stopChan != nil {
		s.startLocked(interval)
	}

	s.logger.Info("cadence updated", "minutes", minutes)
	return minutes, nil
}

// Cadence reports the current interval in minutes.
func (s *Scheduler) Cadence() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int(s.cadence / time.Minute)
}

// TriggerNow runs one cycle outside the regular schedule, under the same
// gate as scheduled firings. If an in-flight cycle holds the gate longer
// than the trigger wait, the call is rejected with ErrBusy.
func (s *Scheduler) TriggerNow(ctx context.Context, city string) (models.CycleResult, error) {
	timer := time.NewTimer(s.triggerWait)
	defer timer.Stop()

	select {
	case s.gate <- struct{}{}:
	case <-timer.C:
		return models.CycleResult{}, ErrBusy
	case <-ctx.Done():
		return models.CycleResult{}, ctx.Err()
	}
	defer func() { <-s.gate }()

	return s.runner.Run(ctx, city, automation.TriggerManual)
}

// Stop cancels the recurring registration and waits for the loop to exit.
// Safe to call repeatedly.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// startLocked retires any existing loop and launches a new one. Callers hold
// s.mu.
func (s *Scheduler) startLocked(interval time.Duration) {
	s.stopLocked()

	ctx := s.baseCtx
	if ctx == nil {
		ctx = context.Background()
	}

	stopChan := make(chan struct{})
	done := make(chan struct{})
	s.stopChan = stopChan
	s.done = done

	go s.loop(ctx, interval, stopChan, done)
	s.logger.Info("scheduler started", "interval", interval)
}

// stopLocked closes the loop and waits for its current work to finish.
// Callers hold s.mu.
func (s *Scheduler) stopLocked() {
	if s.stopChan == nil {
		return
	}
	close(s.stopChan)
	<-s.done
	s.stopChan = nil
	s.done = nil
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, interval time.Duration, stopChan, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runScheduled(ctx, stopChan)
		case <-stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) runScheduled(ctx context.Context, stopChan chan struct{}) {
	// A manual trigger may hold the gate; queue behind it unless the loop is
	// being retired.
	select {
	case s.gate <- struct{}{}:
	case <-stopChan:
		return
	case <-ctx.Done():
		return
	}
	defer func() { <-s.gate }()

	if _, err := s.runner.Run(ctx, "", automation.TriggerScheduled); err != nil {
		s.logger.Error("scheduled cycle failed", "error", err)
	}
}
