package api

import (
	"net/http"

	"log/slog"

	"github.com/irynahryshanovich/automation-suite/internal/auth"
)

// SetupRoutes configures all API routes. Reads are public; anything that
// mutates state or kicks off work sits behind the admin auth middleware.
func SetupRoutes(mux *http.ServeMux, handler *Handler, authConfig auth.Config, logger *slog.Logger) {
	authHandler := NewAuthHandler(authConfig, logger)
	authMiddleware := auth.AuthMiddleware(authConfig)

	// Authentication routes (public)
	mux.HandleFunc("/api/auth/login", authHandler.Login)

	// Log routes: listing is public, clearing requires auth
	mux.HandleFunc("/api/logs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			authMiddleware(http.HandlerFunc(handler.ClearLogsHandler)).ServeHTTP(w, r)
			return
		}
		handler.GetLogsHandler(w, r)
	})

	// Channel state: listing is public, updates require auth
	mux.HandleFunc("/api/state", handler.GetStateHandler)
	mux.HandleFunc("/api/state/", func(w http.ResponseWriter, r *http.Request) {
		authMiddleware(http.HandlerFunc(handler.UpdateStateHandler)).ServeHTTP(w, r)
	})

	// Cycle control (requires auth)
	mux.HandleFunc("/api/run", func(w http.ResponseWriter, r *http.Request) {
		authMiddleware(http.HandlerFunc(handler.RunHandler)).ServeHTTP(w, r)
	})
	mux.HandleFunc("/api/cadence", func(w http.ResponseWriter, r *http.Request) {
		authMiddleware(http.HandlerFunc(handler.CadenceHandler)).ServeHTTP(w, r)
	})

	// Settings (public)
	mux.HandleFunc("/api/settings", handler.SettingsHandler)
}
