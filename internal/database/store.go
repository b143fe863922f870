package database

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Save stores a game document under key, replacing any previous one.
func (db *DB) Save(ctx context.Context, key string, data []byte) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO game_state (state_key, state_json, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(state_key) DO UPDATE SET
			state_json = excluded.state_json,
			updated_at = excluded.updated_at
	`, key, string(data), time.Now())
	return err
}

// Load returns the game document under key, or nil if there is none.
func (db *DB) Load(ctx context.Context, key string) ([]byte, error) {
	var stateJSON string
	err := db.conn.QueryRowContext(ctx, `
		SELECT state_json FROM game_state WHERE state_key = ?
	`, key).Scan(&stateJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(stateJSON), nil
}

// Delete removes the game document under key.
func (db *DB) Delete(ctx context.Context, key string) error {
	_, err := db.conn.ExecContext(ctx, `DELETE FROM game_state WHERE state_key = ?`, key)
	return err
}
