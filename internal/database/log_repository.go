package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/irynahryshanovich/automation-suite/internal/models"
)

// Retrieval limits for the action log.
const (
	DefaultLogLimit = 50
	MaxLogLimit     = 100
)

// LogRepository handles the append-only action log. Entries are immutable
// once written; the payload is marshaled to JSON on the way in and never
// interpreted by the store.
type LogRepository struct {
	db *sql.DB
}

// NewLogRepository creates a new log repository.
func NewLogRepository(db *sql.DB) *LogRepository {
	return &LogRepository{db: db}
}

// Append persists a new log entry and returns its id. The id and timestamp
// are assigned by the database.
func (r *LogRepository) Append(ctx context.Context, source string, payload any, actionTaken string) (int64, error) {
	if actionTaken == "" {
		actionTaken = models.DefaultAction
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal payload: %w", err)
	}

	var id int64
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO action_logs (source, payload, action_taken)
		VALUES ($1, $2, $3)
		RETURNING id
	`, source, body, actionTaken).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to append log entry: %w", err)
	}

	return id, nil
}

// List retrieves the most recent log entries, newest first, optionally
// filtered by exact source match.
func (r *LogRepository) List(ctx context.Context, limit int, source string) ([]models.LogEntry, error) {
	if limit <= 0 {
		limit = DefaultLogLimit
	}
	if limit > MaxLogLimit {
		limit = MaxLogLimit
	}

	query := `SELECT id, timestamp, source, payload, action_taken FROM action_logs`
	args := []interface{}{}

	if source != "" {
		query += " WHERE source = $1"
		args = append(args, source)
	}

	query += fmt.Sprintf(" ORDER BY id DESC LIMIT $%d", len(args)+1)
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.LogEntry{}
	for rows.Next() {
		var entry models.LogEntry
		var payload []byte

		err := rows.Scan(
			&entry.ID,
			&entry.Timestamp,
			&entry.Source,
			&payload,
			&entry.ActionTaken,
		)
		if err != nil {
			return nil, err
		}

		entry.Payload = json.RawMessage(payload)
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// ClearAll deletes every log entry. The delete runs in a transaction so a
// failure leaves the log untouched.
func (r *LogRepository) ClearAll(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin clear transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM action_logs`); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to clear logs: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit clear: %w", err)
	}

	return nil
}
