package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// MatchStatus represents the current status of a match.
type MatchStatus string

const (
	MatchStatusRunning  MatchStatus = "running"
	MatchStatusFinished MatchStatus = "finished"
)

// ErrMatchNotFound is returned when a match is not found.
var ErrMatchNotFound = errors.New("match not found")

// Match is the record of one CLI run.
type Match struct {
	ID           string
	Seed         string
	Country      string
	NumTeams     int
	MapColoring  string
	Status       MatchStatus
	WinnerTeamID *int // nil until a single team is left
	Turns        int
	CreatedAt    time.Time
	EndedAt      *time.Time
}

// CreateMatch records a new running match and returns it with a fresh ID.
func (db *DB) CreateMatch(ctx context.Context, seed, country string, numTeams int, mapColoring string) (*Match, error) {
	if mapColoring == "" {
		mapColoring = "solid"
	}
	m := &Match{
		ID:          uuid.New().String(),
		Seed:        seed,
		Country:     country,
		NumTeams:    numTeams,
		MapColoring: mapColoring,
		Status:      MatchStatusRunning,
		CreatedAt:   time.Now(),
	}
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO matches (id, seed, country, num_teams, map_coloring, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.Seed, m.Country, m.NumTeams, m.MapColoring, m.Status, m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// GetMatch retrieves a match by ID.
func (db *DB) GetMatch(ctx context.Context, id string) (*Match, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, seed, country, num_teams, map_coloring, status, winner_team_id, turns, created_at, ended_at
		FROM matches WHERE id = ?
	`, id)
	m, err := scanMatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMatchNotFound
	}
	return m, err
}

// ListMatches returns the most recent matches first.
func (db *DB) ListMatches(ctx context.Context, limit int) ([]*Match, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, seed, country, num_teams, map_coloring, status, winner_team_id, turns, created_at, ended_at
		FROM matches
		ORDER BY created_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []*Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// FinishMatch marks a match as finished. winnerTeamID is nil when the match
// stopped before a single team was left.
func (db *DB) FinishMatch(ctx context.Context, id string, winnerTeamID *int, turns int) error {
	var winner sql.NullInt64
	if winnerTeamID != nil {
		winner = sql.NullInt64{Int64: int64(*winnerTeamID), Valid: true}
	}
	res, err := db.conn.ExecContext(ctx, `
		UPDATE matches SET status = ?, winner_team_id = ?, turns = ?, ended_at = ?
		WHERE id = ?
	`, MatchStatusFinished, winner, turns, time.Now(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMatchNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatch(row rowScanner) (*Match, error) {
	m := &Match{}
	var winner sql.NullInt64
	var endedAt sql.NullTime
	err := row.Scan(&m.ID, &m.Seed, &m.Country, &m.NumTeams, &m.MapColoring, &m.Status, &winner, &m.Turns, &m.CreatedAt, &endedAt)
	if err != nil {
		return nil, err
	}
	if winner.Valid {
		id := int(winner.Int64)
		m.WinnerTeamID = &id
	}
	if endedAt.Valid {
		m.EndedAt = &endedAt.Time
	}
	return m, nil
}
