package database

import (
	"context"
	"time"

	"club-conquest/internal/game"
)

// Attack is a logged attack of a match.
type Attack struct {
	ID        int64
	MatchID   string
	Item      game.HistoryItem
	CreatedAt time.Time
}

// LogAttack appends a resolved attack to a match's log.
func (db *DB) LogAttack(ctx context.Context, matchID string, item game.HistoryItem) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO attacks (match_id, turn, attacker_team_id, defender_team_id, from_cell_id, target_cell_id, direction, attacker_won, p, captured_capital, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, matchID, item.Turn, item.AttackerTeamID, item.DefenderTeamID, item.FromCellID, item.TargetCellID,
		string(item.Direction), item.AttackerWon, item.P, item.CapturedCapital, time.UnixMilli(item.Timestamp))
	return err
}

// GetAttacks retrieves a match's attacks in the order they were resolved.
func (db *DB) GetAttacks(ctx context.Context, matchID string) ([]*Attack, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, match_id, turn, attacker_team_id, defender_team_id, from_cell_id, target_cell_id, direction, attacker_won, p, captured_capital, created_at
		FROM attacks
		WHERE match_id = ?
		ORDER BY id ASC
	`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attacks []*Attack
	for rows.Next() {
		a := &Attack{}
		var dir string
		if err := rows.Scan(&a.ID, &a.MatchID, &a.Item.Turn, &a.Item.AttackerTeamID, &a.Item.DefenderTeamID,
			&a.Item.FromCellID, &a.Item.TargetCellID, &dir, &a.Item.AttackerWon, &a.Item.P,
			&a.Item.CapturedCapital, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Item.Direction = game.Direction(dir)
		a.Item.Timestamp = a.CreatedAt.UnixMilli()
		attacks = append(attacks, a)
	}
	return attacks, rows.Err()
}
