// Package automation orchestrates one decision cycle: fetch external data,
// log it, run the decision engine, apply and log each transition, and report
// a summary.
package automation

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/irynahryshanovich/automation-suite/internal/datasource"
	"github.com/irynahryshanovich/automation-suite/internal/decision"
	"github.com/irynahryshanovich/automation-suite/internal/metrics"
	"github.com/irynahryshanovich/automation-suite/internal/models"
)

// Trigger tags recorded as the source of transition log entries.
const (
	TriggerScheduled = "automation"
	TriggerManual    = "manual"
)

// LogStore is the slice of the log repository the cycle writes to.
type LogStore interface {
	Append(ctx context.Context, source string, payload any, actionTaken string) (int64, error)
}

// StateStore is the slice of the state repository the cycle reads and writes.
type StateStore interface {
	List(ctx context.Context) ([]models.ChannelState, error)
	Update(ctx context.Context, target string, status models.ChannelStatus) (bool, error)
}

// Runner executes automation cycles. It owns no concurrency control; the
// scheduler serializes calls to Run.
type Runner struct {
	weather     datasource.WeatherSource
	sports      datasource.SportsSource
	logs        LogStore
	states      StateStore
	defaultCity string
	collector   *metrics.Collector
	logger      *slog.Logger

	// Clock, swappable in tests to pin the time-of-day rule.
	now func() time.Time
}

// NewRunner creates a cycle runner.
func NewRunner(
	weather datasource.WeatherSource,
	sports datasource.SportsSource,
	logs LogStore,
	states StateStore,
	defaultCity string,
	collector *metrics.Collector,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		weather:     weather,
		sports:      sports,
		logs:        logs,
		states:      states,
		defaultCity: defaultCity,
		collector:   collector,
		logger:      logger,
		now:         time.Now,
	}
}

// Run performs one full cycle. Data source failures never surface here (the
// adapters absorb them into fallback snapshots); storage failures are fatal
// and abort the cycle. The returned result is complete even when every fetch
// degraded to synthetic data.
func (r *Runner) Run(ctx context.Context, city, trigger string) (models.CycleResult, error) {
	start := r.now()
	if city == "" {
		city = r.defaultCity
	}
	if trigger == "" {
		trigger = TriggerScheduled
	}
	runID := uuid.New().String()

	result, err := r.run(ctx, start, city, trigger, runID)
	r.collector.CycleCompleted(trigger, err, time.Since(start))
	if err != nil {
		r.logger.Error("cycle failed", "run_id", runID, "trigger", trigger, "error", err)
		return models.CycleResult{}, err
	}

	r.logger.Info("cycle completed",
		"run_id", runID,
		"trigger", trigger,
		"city", city,
		"actions", len(result.Actions),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

func (r *Runner) run(ctx context.Context, start time.Time, city, trigger, runID string) (models.CycleResult, error) {
	weather := r.weather.Fetch(ctx, city)
	sports := r.sports.Fetch(ctx)

	if _, err := r.logs.Append(ctx, models.LogSourceWeather, weather, ""); err != nil {
		return models.CycleResult{}, fmt.Errorf("log weather snapshot: %w", err)
	}
	if _, err := r.logs.Append(ctx, models.LogSourceSports, sports, ""); err != nil {
		return models.CycleResult{}, fmt.Errorf("log sports snapshot: %w", err)
	}

	transitions := decision.Decide(weather, sports, start.Hour())

	actions := make([]string, 0, len(transitions))
	for _, tr := range transitions {
		updated, err := r.states.Update(ctx, tr.Channel, tr.Status)
		if err != nil {
			return models.CycleResult{}, fmt.Errorf("update %s state: %w", tr.Channel, err)
		}
		if !updated {
			// Not fatal: the transition is still logged below so the audit
			// trail shows what the engine decided.
			r.logger.Warn("transition targets unknown channel", "channel", tr.Channel, "run_id", runID)
		}

		payload := map[string]any{"message": tr.Reason, "run_id": runID}
		if _, err := r.logs.Append(ctx, trigger, payload, tr.Reason); err != nil {
			return models.CycleResult{}, fmt.Errorf("log %s transition: %w", tr.Channel, err)
		}
		actions = append(actions, tr.Reason)
	}

	states, err := r.states.List(ctx)
	if err != nil {
		return models.CycleResult{}, fmt.Errorf("list channel states: %w", err)
	}

	return models.CycleResult{
		RunID:     runID,
		Timestamp: start,
		Weather:   weather,
		Sports:    sports,
		Actions:   actions,
		States:    states,
	}, nil
}
