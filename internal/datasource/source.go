// Package datasource fetches external weather and sports data. Adapters never
// return errors: a failed or timed-out fetch is recorded as an "error" log
// entry and replaced with a synthetic snapshot the rest of the pipeline can
// treat exactly like real data.
package datasource

import (
	"context"
	"time"

	"github.com/irynahryshanovich/automation-suite/internal/models"
)

// Fixed timeout on every outbound call so a hung external API cannot stall a
// cycle.
const fetchTimeout = 10 * time.Second

// WeatherSource produces a weather snapshot for a city.
type WeatherSource interface {
	Fetch(ctx context.Context, city string) models.WeatherSnapshot
}

// SportsSource produces the latest game results.
type SportsSource interface {
	Fetch(ctx context.Context) models.SportsSnapshot
}

// LogAppender records fetch failures alongside the cycle's action log.
type LogAppender interface {
	Append(ctx context.Context, source string, payload any, actionTaken string) (int64, error)
}
