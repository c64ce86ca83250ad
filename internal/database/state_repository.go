package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/irynahryshanovich/automation-suite/internal/models"
)

// StateRepository handles the one-row-per-channel status table.
type StateRepository struct {
	db *sql.DB
}

// NewStateRepository creates a new state repository.
func NewStateRepository(db *sql.DB) *StateRepository {
	return &StateRepository{db: db}
}

// SeedDefaults inserts an "active" row per channel, but only when the table
// is completely empty. A restart must not clobber statuses an operator set
// by hand, so a non-empty table is left as-is.
func (r *StateRepository) SeedDefaults(ctx context.Context, channels []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM channel_states`).Scan(&count); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to count channel states: %w", err)
	}

	if count > 0 {
		tx.Rollback()
		return nil
	}

	for _, channel := range channels {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO channel_states (channel, status, last_updated)
			VALUES ($1, $2, NOW())
		`, channel, models.StatusActive)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to seed channel %s: %w", channel, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed: %w", err)
	}

	return nil
}

// List returns the current state of every channel, ordered by channel name.
func (r *StateRepository) List(ctx context.Context) ([]models.ChannelState, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT channel, status, last_updated
		FROM channel_states
		ORDER BY channel ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	states := []models.ChannelState{}
	for rows.Next() {
		var state models.ChannelState
		if err := rows.Scan(&state.Channel, &state.Status, &state.LastUpdated); err != nil {
			return nil, err
		}
		states = append(states, state)
	}

	return states, rows.Err()
}

// Update sets the status of a channel and touches last_updated. It returns
// false when the channel is unknown; callers decide whether that matters.
func (r *StateRepository) Update(ctx context.Context, target string, status models.ChannelStatus) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE channel_states
		SET status = $1, last_updated = NOW()
		WHERE channel = $2
	`, status, target)
	if err != nil {
		return false, fmt.Errorf("failed to update channel state: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read update result: %w", err)
	}

	return affected > 0, nil
}

// Get returns the state of a single channel, or sql.ErrNoRows when the
// channel is unknown.
func (r *StateRepository) Get(ctx context.Context, target string) (models.ChannelState, error) {
	var state models.ChannelState
	err := r.db.QueryRowContext(ctx, `
		SELECT channel, status, last_updated
		FROM channel_states
		WHERE channel = $1
	`, target).Scan(&state.Channel, &state.Status, &state.LastUpdated)
	if err != nil {
		return models.ChannelState{}, err
	}
	return state, nil
}
