package automation

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"log/slog"

	"github.com/irynahryshanovich/automation-suite/internal/models"
)

type fakeWeather struct {
	snapshot models.WeatherSnapshot
	city     string
}

func (f *fakeWeather) Fetch(_ context.Context, city string) models.WeatherSnapshot {
	f.city = city
	return f.snapshot
}

type fakeSports struct {
	snapshot models.SportsSnapshot
}

func (f *fakeSports) Fetch(_ context.Context) models.SportsSnapshot {
	return f.snapshot
}

type appendCall struct {
	Source      string
	Payload     any
	ActionTaken string
}

type fakeLogStore struct {
	appends []appendCall
	failOn  string // source that should fail, "" for none
}

func (f *fakeLogStore) Append(_ context.Context, source string, payload any, actionTaken string) (int64, error) {
	if f.failOn != "" && source == f.failOn {
		return 0, errors.New("storage unavailable")
	}
	f.appends = append(f.appends, appendCall{Source: source, Payload: payload, ActionTaken: actionTaken})
	return int64(len(f.appends)), nil
}

func (f *fakeLogStore) bySource(source string) []appendCall {
	var out []appendCall
	for _, call := range f.appends {
		if call.Source == source {
			out = append(out, call)
		}
	}
	return out
}

type fakeStateStore struct {
	states    map[string]models.ChannelStatus
	updateErr error
}

func newFakeStateStore(channels ...string) *fakeStateStore {
	states := make(map[string]models.ChannelStatus, len(channels))
	for _, ch := range channels {
		states[ch] = models.StatusActive
	}
	return &fakeStateStore{states: states}
}

func (f *fakeStateStore) List(_ context.Context) ([]models.ChannelState, error) {
	out := make([]models.ChannelState, 0, len(f.states))
	for channel, status := range f.states {
		out = append(out, models.ChannelState{Channel: channel, Status: status, LastUpdated: time.Now()})
	}
	return out, nil
}

func (f *fakeStateStore) Update(_ context.Context, target string, status models.ChannelStatus) (bool, error) {
	if f.updateErr != nil {
		return false, f.updateErr
	}
	if _, ok := f.states[target]; !ok {
		return false, nil
	}
	f.states[target] = status
	return true, nil
}

func newTestRunner(logs *fakeLogStore, states *fakeStateStore, weather models.WeatherSnapshot, sports models.SportsSnapshot) *Runner {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	runner := NewRunner(&fakeWeather{snapshot: weather}, &fakeSports{snapshot: sports}, logs, states, "Seattle", nil, logger)
	// Pin the clock inside prime hours so the Instagram rule is stable.
	runner.now = func() time.Time {
		return time.Date(2026, 9, 1, 10, 0, 0, 0, time.Local)
	}
	return runner
}

func hotWeather() models.WeatherSnapshot {
	return models.WeatherSnapshot{City: "Seattle", TempC: 35, TempF: 95, Condition: "Clear", ObservedAt: 1700000000}
}

func homeWinSports() models.SportsSnapshot {
	return models.SportsSnapshot{Events: []models.SportsEvent{{
		HomeTeam: "Lakers", AwayTeam: "Celtics", HomeScore: "110", AwayScore: "98", Status: "Finished", Date: "2026-08-31",
	}}}
}

func TestRunLogsDataAndAppliesTransitions(t *testing.T) {
	logs := &fakeLogStore{}
	states := newFakeStateStore("Twitter", "Facebook", "Instagram")
	runner := newTestRunner(logs, states, hotWeather(), homeWinSports())

	result, err := runner.Run(context.Background(), "", TriggerScheduled)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(logs.bySource(models.LogSourceWeather)) != 1 {
		t.Error("expected one raw weather log entry")
	}
	if len(logs.bySource(models.LogSourceSports)) != 1 {
		t.Error("expected one raw sports log entry")
	}

	transitions := logs.bySource(TriggerScheduled)
	if len(transitions) != 3 {
		t.Fatalf("expected 3 transition log entries, got %d", len(transitions))
	}
	for _, call := range transitions {
		if call.ActionTaken == "" || call.ActionTaken == models.DefaultAction {
			t.Errorf("transition entries must carry the reason as action, got %q", call.ActionTaken)
		}
	}

	if states.states["Twitter"] != models.StatusPaused {
		t.Errorf("95°F should pause Twitter, got %q", states.states["Twitter"])
	}
	if states.states["Facebook"] != models.StatusActive {
		t.Errorf("home win should activate Facebook, got %q", states.states["Facebook"])
	}
	if states.states["Instagram"] != models.StatusActive {
		t.Errorf("10:00 should activate Instagram, got %q", states.states["Instagram"])
	}

	if result.RunID == "" {
		t.Error("expected a run id")
	}
	if result.Timestamp.IsZero() {
		t.Error("expected a timestamp")
	}
	if len(result.Actions) != 3 {
		t.Errorf("expected 3 action descriptions, got %d", len(result.Actions))
	}
	if len(result.States) != 3 {
		t.Errorf("expected full state listing, got %d", len(result.States))
	}
	if result.Weather.City != "Seattle" || len(result.Sports.Events) != 1 {
		t.Error("result must bundle both snapshots")
	}
}

func TestRunUsesManualTriggerTag(t *testing.T) {
	logs := &fakeLogStore{}
	states := newFakeStateStore("Twitter", "Facebook", "Instagram")
	runner := newTestRunner(logs, states, hotWeather(), homeWinSports())

	if _, err := runner.Run(context.Background(), "Boston", TriggerManual); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(logs.bySource(TriggerManual)) != 3 {
		t.Errorf("manual runs must tag transition entries with the manual source")
	}
	if len(logs.bySource(TriggerScheduled)) != 0 {
		t.Errorf("manual runs must not use the scheduled tag")
	}

	weather := runner.weather.(*fakeWeather)
	if weather.city != "Boston" {
		t.Errorf("explicit city must reach the adapter, got %q", weather.city)
	}
}

func TestRunDefaultsCity(t *testing.T) {
	logs := &fakeLogStore{}
	states := newFakeStateStore("Twitter", "Facebook", "Instagram")
	runner := newTestRunner(logs, states, hotWeather(), homeWinSports())

	if _, err := runner.Run(context.Background(), "", TriggerManual); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	weather := runner.weather.(*fakeWeather)
	if weather.city != "Seattle" {
		t.Errorf("empty city must resolve to the configured default, got %q", weather.city)
	}
}

func TestRunContinuesPastUnknownChannel(t *testing.T) {
	logs := &fakeLogStore{}
	// No Facebook row: the sports transition has nowhere to land.
	states := newFakeStateStore("Twitter", "Instagram")
	runner := newTestRunner(logs, states, hotWeather(), homeWinSports())

	result, err := runner.Run(context.Background(), "", TriggerScheduled)
	if err != nil {
		t.Fatalf("unknown channel must not fail the cycle: %v", err)
	}

	// The Facebook transition is logged anyway.
	if len(logs.bySource(TriggerScheduled)) != 3 {
		t.Errorf("expected all 3 transitions logged, got %d", len(logs.bySource(TriggerScheduled)))
	}
	if len(result.Actions) != 3 {
		t.Errorf("expected all 3 actions reported, got %d", len(result.Actions))
	}
	if _, ok := states.states["Facebook"]; ok {
		t.Error("unknown-channel update must not create a row")
	}
}

func TestRunFailsWhenLogStoreFails(t *testing.T) {
	logs := &fakeLogStore{failOn: models.LogSourceSports}
	states := newFakeStateStore("Twitter", "Facebook", "Instagram")
	runner := newTestRunner(logs, states, hotWeather(), homeWinSports())

	_, err := runner.Run(context.Background(), "", TriggerScheduled)
	if err == nil {
		t.Fatal("storage failure must fail the cycle")
	}
}

func TestRunFailsWhenStateStoreFails(t *testing.T) {
	logs := &fakeLogStore{}
	states := newFakeStateStore("Twitter", "Facebook", "Instagram")
	states.updateErr = errors.New("connection reset")
	runner := newTestRunner(logs, states, hotWeather(), homeWinSports())

	_, err := runner.Run(context.Background(), "", TriggerScheduled)
	if err == nil {
		t.Fatal("state store failure must fail the cycle")
	}
}

func TestRunSkipsSportsRuleWithoutEvents(t *testing.T) {
	logs := &fakeLogStore{}
	states := newFakeStateStore("Twitter", "Facebook", "Instagram")
	runner := newTestRunner(logs, states, hotWeather(), models.SportsSnapshot{})

	result, err := runner.Run(context.Background(), "", TriggerScheduled)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(result.Actions) != 2 {
		t.Errorf("expected 2 actions without sports events, got %d", len(result.Actions))
	}
	if states.states["Facebook"] != models.StatusActive {
		t.Errorf("Facebook must be untouched without events, got %q", states.states["Facebook"])
	}
}
