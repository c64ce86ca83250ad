package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"log/slog"

	"github.com/irynahryshanovich/automation-suite/internal/metrics"
	"github.com/irynahryshanovich/automation-suite/internal/models"
)

type coordinates struct {
	Lat float64
	Lon float64
}

// Cities the NOAA adapter can resolve. Requests for anything else silently
// fall back to the configured default city.
var cityCoordinates = map[string]coordinates{
	"Seattle":     {47.6062, -122.3321},
	"New York":    {40.7128, -74.0060},
	"Los Angeles": {34.0522, -118.2437},
	"Chicago":     {41.8781, -87.6298},
	"Houston":     {29.7604, -95.3698},
	"Miami":       {25.7617, -80.1918},
	"Denver":      {39.7392, -104.9903},
	"Boston":      {42.3601, -71.0589},
}

// NOAAWeatherClient fetches forecasts from the National Weather Service. The
// API needs no key, only a User-Agent carrying contact information.
type NOAAWeatherClient struct {
	baseURL     string
	contact     string
	defaultCity string
	httpClient  *http.Client
	logs        LogAppender
	collector   *metrics.Collector
	logger      *slog.Logger
}

// NewNOAAWeatherClient creates a weather adapter for the NOAA API.
func NewNOAAWeatherClient(defaultCity, contact string, logs LogAppender, collector *metrics.Collector, logger *slog.Logger) *NOAAWeatherClient {
	return &NOAAWeatherClient{
		baseURL:     "https://api.weather.gov",
		contact:     contact,
		defaultCity: defaultCity,
		httpClient:  &http.Client{Timeout: fetchTimeout},
		logs:        logs,
		collector:   collector,
		logger:      logger,
	}
}

// Fetch returns a weather snapshot for the city. Any transport or parse
// failure is absorbed: it is logged as an "error" entry and a synthetic
// snapshot is returned instead.
func (c *NOAAWeatherClient) Fetch(ctx context.Context, city string) models.WeatherSnapshot {
	effective := city
	if effective == "" {
		effective = c.defaultCity
	}

	coords, ok := cityCoordinates[effective]
	if !ok {
		c.logger.Debug("unknown city, substituting default", "requested", effective, "default", c.defaultCity)
		effective = c.defaultCity
		coords = cityCoordinates[effective]
	}

	snapshot, err := c.fetchForecast(ctx, effective, coords)
	if err != nil {
		c.logger.Warn("weather fetch failed, serving synthetic data", "city", effective, "error", err)
		c.recordFetchError(ctx, err)
		c.collector.FallbackServed(models.LogSourceWeather)
		return syntheticWeather(effective)
	}

	return snapshot
}

// fetchForecast performs the NOAA two-step lookup: the points endpoint maps
// coordinates to a grid forecast URL, which then yields forecast periods.
func (c *NOAAWeatherClient) fetchForecast(ctx context.Context, city string, coords coordinates) (models.WeatherSnapshot, error) {
	pointsURL := fmt.Sprintf("%s/points/%.4f,%.4f", c.baseURL, coords.Lat, coords.Lon)

	var points struct {
		Properties struct {
			Forecast string `json:"forecast"`
		} `json:"properties"`
	}
	if err := c.getJSON(ctx, pointsURL, &points); err != nil {
		return models.WeatherSnapshot{}, fmt.Errorf("points lookup: %w", err)
	}
	if points.Properties.Forecast == "" {
		return models.WeatherSnapshot{}, fmt.Errorf("points response missing forecast URL")
	}

	var forecast struct {
		Properties struct {
			Periods []struct {
				Temperature      float64 `json:"temperature"`
				ShortForecast    string  `json:"shortForecast"`
				DetailedForecast string  `json:"detailedForecast"`
			} `json:"periods"`
		} `json:"properties"`
	}
	if err := c.getJSON(ctx, points.Properties.Forecast, &forecast); err != nil {
		return models.WeatherSnapshot{}, fmt.Errorf("forecast fetch: %w", err)
	}
	if len(forecast.Properties.Periods) == 0 {
		return models.WeatherSnapshot{}, fmt.Errorf("forecast contained no periods")
	}

	// NOAA reports temperature in Fahrenheit.
	period := forecast.Properties.Periods[0]
	return models.WeatherSnapshot{
		City:        city,
		TempC:       fahrenheitToCelsius(period.Temperature),
		TempF:       period.Temperature,
		Condition:   period.ShortForecast,
		Description: period.DetailedForecast,
		ObservedAt:  time.Now().Unix(),
	}, nil
}

func (c *NOAAWeatherClient) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", fmt.Sprintf("(automation-suite, %s)", c.contact))
	req.Header.Set("Accept", "application/geo+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *NOAAWeatherClient) recordFetchError(ctx context.Context, fetchErr error) {
	if c.logs == nil {
		return
	}
	payload := map[string]any{
		"error":   fetchErr.Error(),
		"message": "Failed to fetch NOAA weather data, falling back to synthetic data",
	}
	if _, err := c.logs.Append(ctx, models.LogSourceError, payload, models.DefaultAction); err != nil {
		c.logger.Error("failed to record weather fetch error", "error", err)
	}
}
