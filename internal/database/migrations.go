package database

type migration struct {
	id   int
	name string
	sql  string
}

var migrations = []migration{
	{
		id:   1,
		name: "initial_schema",
		sql: `
			-- Saved games, one JSON document per storage key
			CREATE TABLE game_state (
				state_key TEXT PRIMARY KEY,
				state_json TEXT NOT NULL,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
			);

			-- Matches played from the CLI
			CREATE TABLE matches (
				id TEXT PRIMARY KEY,
				seed TEXT NOT NULL,
				country TEXT NOT NULL,
				num_teams INTEGER NOT NULL,
				status TEXT NOT NULL DEFAULT 'running',
				winner_team_id INTEGER,
				turns INTEGER NOT NULL DEFAULT 0,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				ended_at DATETIME
			);
			CREATE INDEX idx_matches_status ON matches(status);

			-- Resolved attacks, for replay and debugging
			CREATE TABLE attacks (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				match_id TEXT NOT NULL,
				turn INTEGER NOT NULL,
				attacker_team_id INTEGER NOT NULL,
				defender_team_id INTEGER NOT NULL,
				from_cell_id INTEGER NOT NULL,
				target_cell_id INTEGER NOT NULL,
				direction TEXT NOT NULL,
				attacker_won BOOLEAN NOT NULL,
				p REAL NOT NULL,
				captured_capital BOOLEAN NOT NULL DEFAULT FALSE,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (match_id) REFERENCES matches(id) ON DELETE CASCADE
			);
			CREATE INDEX idx_attacks_match ON attacks(match_id);
		`,
	},
	{
		id:   2,
		name: "add_match_map_coloring",
		sql: `
			ALTER TABLE matches ADD COLUMN map_coloring TEXT NOT NULL DEFAULT 'solid';
		`,
	},
}
