package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"log/slog"

	"github.com/irynahryshanovich/automation-suite/internal/config"
	"github.com/irynahryshanovich/automation-suite/internal/database"
	"github.com/irynahryshanovich/automation-suite/internal/models"
	"github.com/irynahryshanovich/automation-suite/internal/scheduler"
)

// LogStore is the slice of the log repository the handlers read and clear.
type LogStore interface {
	List(ctx context.Context, limit int, source string) ([]models.LogEntry, error)
	ClearAll(ctx context.Context) error
}

// StateStore is the slice of the state repository the handlers use.
type StateStore interface {
	List(ctx context.Context) ([]models.ChannelState, error)
	Update(ctx context.Context, target string, status models.ChannelStatus) (bool, error)
}

// CycleControl is the scheduler surface exposed over HTTP.
type CycleControl interface {
	TriggerNow(ctx context.Context, city string) (models.CycleResult, error)
	SetCadence(minutes int) (int, error)
	Cadence() int
}

// Handler serves the automation REST API.
type Handler struct {
	logs     LogStore
	states   StateStore
	control  CycleControl
	channels []string
	city     string
	logger   *slog.Logger
}

// NewHandler creates the API handler.
func NewHandler(logs LogStore, states StateStore, control CycleControl, channels []string, defaultCity string, logger *slog.Logger) *Handler {
	return &Handler{
		logs:     logs,
		states:   states,
		control:  control,
		channels: channels,
		city:     defaultCity,
		logger:   logger,
	}
}

// GetLogsHandler handles GET /api/logs
func (h *Handler) GetLogsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeValidationError(w, err)
		return
	}
	source := r.URL.Query().Get("source")

	entries, err := h.logs.List(r.Context(), limit, source)
	if err != nil {
		h.logger.Error("failed to list logs", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, LogsResponse{Logs: entries, Count: len(entries)})
}

// ClearLogsHandler handles DELETE /api/logs
func (h *Handler) ClearLogsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.logs.ClearAll(r.Context()); err != nil {
		h.logger.Error("failed to clear logs", "error", err)
		http.Error(w, "Failed to clear logs", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "All logs cleared successfully"})
}

// GetStateHandler handles GET /api/state
func (h *Handler) GetStateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	states, err := h.states.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list channel states", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, states)
}

// UpdateStateHandler handles PUT /api/state/:channel
func (h *Handler) UpdateStateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	target := strings.TrimPrefix(r.URL.Path, "/api/state/")
	if target == "" || strings.Contains(target, "/") {
		http.Error(w, "Channel name required", http.StatusBadRequest)
		return
	}

	if !h.knownChannel(target) {
		http.Error(w, "Channel not found", http.StatusNotFound)
		return
	}

	var req StateUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !req.Status.Valid() {
		writeValidationError(w, ValidationError{Field: "status", Message: "must be 'active' or 'paused'"})
		return
	}

	updated, err := h.states.Update(r.Context(), target, req.Status)
	if err != nil {
		h.logger.Error("failed to update channel state", "channel", target, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if !updated {
		http.Error(w, "Channel not found", http.StatusNotFound)
		return
	}

	// Return the stored row so the caller sees the fresh last_updated.
	states, err := h.states.List(r.Context())
	if err != nil {
		h.logger.Error("failed to read back channel state", "channel", target, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	for _, state := range states {
		if state.Channel == target {
			writeJSON(w, http.StatusOK, state)
			return
		}
	}
	http.Error(w, "Channel not found", http.StatusNotFound)
}

// RunHandler handles POST /api/run
func (h *Handler) RunHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// The body is optional; a missing or malformed one just means no city
	// override.
	var req RunRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			req = RunRequest{}
		}
	}

	result, err := h.control.TriggerNow(r.Context(), req.City)
	if err != nil {
		if errors.Is(err, scheduler.ErrBusy) {
			http.Error(w, "A cycle is already running", http.StatusConflict)
			return
		}
		h.logger.Error("manual cycle failed", "error", err)
		http.Error(w, "Cycle failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// CadenceHandler handles PUT /api/cadence
func (h *Handler) CadenceHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	minutes, err := config.ParseCadence(r.URL.Query().Get("minutes"))
	if err != nil {
		writeValidationError(w, ValidationError{Field: "minutes", Message: err.Error()})
		return
	}

	applied, err := h.control.SetCadence(minutes)
	if err != nil {
		writeValidationError(w, ValidationError{Field: "minutes", Message: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, CadenceResponse{
		Message: "Cadence updated",
		Minutes: applied,
	})
}

// SettingsHandler handles GET /api/settings
func (h *Handler) SettingsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, SettingsResponse{
		AppName:  "Automation Suite",
		Cadence:  h.control.Cadence(),
		City:     h.city,
		Channels: h.channels,
	})
}

func (h *Handler) knownChannel(name string) bool {
	for _, ch := range h.channels {
		if ch == name {
			return true
		}
	}
	return false
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return database.DefaultLogLimit, nil
	}
	return ParseLogLimit(raw)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*") // CORS for dev
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
