package models

import (
	"encoding/json"
	"time"
)

// Log sources written by the automation cycle. Transition entries use the
// trigger tag of the run that produced them instead.
const (
	LogSourceWeather = "weather"
	LogSourceSports  = "sports"
	LogSourceError   = "error"
)

// DefaultAction is recorded when a log entry carries no action.
const DefaultAction = "None"

// LogEntry is one row of the append-only action log. The id and timestamp are
// assigned by the store on append; entries are never mutated afterwards.
type LogEntry struct {
	ID          int64           `json:"id"`
	Timestamp   time.Time       `json:"timestamp"`
	Source      string          `json:"source"`
	Payload     json.RawMessage `json:"payload"`
	ActionTaken string          `json:"action_taken"`
}
