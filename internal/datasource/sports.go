package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"log/slog"

	"github.com/irynahryshanovich/automation-suite/internal/metrics"
	"github.com/irynahryshanovich/automation-suite/internal/models"
)

const (
	// DemoAPIKey is the placeholder key; with it the adapter serves synthetic
	// data directly instead of calling out.
	DemoAPIKey = "demo_key"

	// NBA league id on thesportsdb.
	lastEventsLeagueID = "4387"
)

// SportsDBClient fetches the most recent game results from thesportsdb.
type SportsDBClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logs       LogAppender
	collector  *metrics.Collector
	logger     *slog.Logger
}

// NewSportsDBClient creates a sports adapter for thesportsdb API.
func NewSportsDBClient(apiKey string, logs LogAppender, collector *metrics.Collector, logger *slog.Logger) *SportsDBClient {
	return &SportsDBClient{
		baseURL:    "https://www.thesportsdb.com",
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: fetchTimeout},
		logs:       logs,
		collector:  collector,
		logger:     logger,
	}
}

// Fetch returns the latest game results. With the demo key it short-circuits
// to synthetic data; any failure or empty response is logged and replaced
// with a synthetic snapshot.
func (c *SportsDBClient) Fetch(ctx context.Context) models.SportsSnapshot {
	if c.apiKey == DemoAPIKey {
		return syntheticSports()
	}

	snapshot, err := c.fetchLastEvents(ctx)
	if err != nil {
		c.logger.Warn("sports fetch failed, serving synthetic data", "error", err)
		c.recordFetchError(ctx, err)
		c.collector.FallbackServed(models.LogSourceSports)
		return syntheticSports()
	}

	return snapshot
}

// sportsDBEvent mirrors the relevant fields of a thesportsdb event. Scores
// arrive as strings and may be null for in-progress games.
type sportsDBEvent struct {
	Event     string `json:"strEvent"`
	HomeTeam  string `json:"strHomeTeam"`
	AwayTeam  string `json:"strAwayTeam"`
	HomeScore string `json:"intHomeScore"`
	AwayScore string `json:"intAwayScore"`
	Status    string `json:"strStatus"`
	Date      string `json:"dateEvent"`
}

func (c *SportsDBClient) fetchLastEvents(ctx context.Context) (models.SportsSnapshot, error) {
	url := fmt.Sprintf("%s/api/v1/json/%s/eventslast.php?id=%s", c.baseURL, c.apiKey, lastEventsLeagueID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.SportsSnapshot{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.SportsSnapshot{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.SportsSnapshot{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	// Some endpoints report under "events", others under "results".
	var payload struct {
		Events  []sportsDBEvent `json:"events"`
		Results []sportsDBEvent `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return models.SportsSnapshot{}, fmt.Errorf("decode response: %w", err)
	}

	raw := payload.Events
	if len(raw) == 0 {
		raw = payload.Results
	}
	if len(raw) == 0 {
		return models.SportsSnapshot{}, fmt.Errorf("empty sports data response")
	}

	events := make([]models.SportsEvent, 0, len(raw))
	for _, ev := range raw {
		events = append(events, models.SportsEvent{
			Name:      ev.Event,
			HomeTeam:  ev.HomeTeam,
			AwayTeam:  ev.AwayTeam,
			HomeScore: ev.HomeScore,
			AwayScore: ev.AwayScore,
			Status:    ev.Status,
			Date:      ev.Date,
		})
	}

	return models.SportsSnapshot{Events: events}, nil
}

func (c *SportsDBClient) recordFetchError(ctx context.Context, fetchErr error) {
	if c.logs == nil {
		return
	}
	payload := map[string]any{
		"error":   fetchErr.Error(),
		"message": "Failed to fetch sports data, falling back to synthetic data",
	}
	if _, err := c.logs.Append(ctx, models.LogSourceError, payload, models.DefaultAction); err != nil {
		c.logger.Error("failed to record sports fetch error", "error", err)
	}
}
