package api

import "github.com/irynahryshanovich/automation-suite/internal/models"

// LogsResponse wraps a log listing.
type LogsResponse struct {
	Logs  []models.LogEntry `json:"logs"`
	Count int               `json:"count"`
}

// StateUpdateRequest is the body of PUT /api/state/:channel.
type StateUpdateRequest struct {
	Status models.ChannelStatus `json:"status"`
}

// RunRequest is the optional body of POST /api/run.
type RunRequest struct {
	City string `json:"city"`
}

// CadenceResponse confirms a cadence change.
type CadenceResponse struct {
	Message string `json:"message"`
	Minutes int    `json:"minutes"`
}

// SettingsResponse reports the live application settings.
type SettingsResponse struct {
	AppName  string   `json:"app_name"`
	Cadence  int      `json:"cadence"`
	City     string   `json:"city"`
	Channels []string `json:"channels"`
}

// MessageResponse is a generic confirmation body.
type MessageResponse struct {
	Message string `json:"message"`
}
