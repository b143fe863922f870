// Package config reads run settings from flags and the environment, and
// balance tuning from YAML.
package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"club-conquest/internal/game"
)

// Team count bounds.
const (
	MinTeams = 2
	MaxTeams = 25
)

// Storage backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// Config holds the settings of one CLI run.
type Config struct {
	Seed        string
	Country     string
	NumTeams    int
	MapColoring string
	MaxTurns    int
	Cols        int
	Rows        int
	MapFile     string // external tessellation, overrides Cols and Rows
	BalanceFile string

	Team      int    // attacker for single attacks and previews
	Direction string // compass point for single attacks and previews
	Match     string // recorded match to show or log single attacks to

	Store      string
	DBPath     string
	RedisURL   string
	RedisTTL   time.Duration
	StorageKey string
	Resume     bool

	LogLevel  string
	LogPretty bool
}

// Load parses args, using environment variables as defaults for flags that
// were not given.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	fs := flag.NewFlagSet("conquest", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.Seed, "seed", envOrDefault("CONQUEST_SEED", "demo"), "Match seed")
	fs.StringVar(&cfg.Country, "country", envOrDefault("CONQUEST_COUNTRY", "Turkey"), "Country whose clubs take part")
	fs.IntVar(&cfg.NumTeams, "teams", envInt("CONQUEST_TEAMS", 4), "Number of teams (2-25)")
	fs.StringVar(&cfg.MapColoring, "coloring", envOrDefault("CONQUEST_COLORING", "solid"), "Map coloring: solid or striped")
	fs.IntVar(&cfg.MaxTurns, "max-turns", envInt("CONQUEST_MAX_TURNS", 500), "Stop after this many turns")
	fs.IntVar(&cfg.Cols, "cols", envInt("CONQUEST_COLS", 8), "Generated map columns")
	fs.IntVar(&cfg.Rows, "rows", envInt("CONQUEST_ROWS", 6), "Generated map rows")
	fs.StringVar(&cfg.MapFile, "map", os.Getenv("CONQUEST_MAP"), "Tessellation JSON file")
	fs.StringVar(&cfg.BalanceFile, "balance", os.Getenv("CONQUEST_BALANCE"), "Balance YAML file")

	fs.IntVar(&cfg.Team, "team", 0, "Attacking team id")
	fs.StringVar(&cfg.Direction, "dir", "E", "Attack direction: N, NE, E, SE, S, SW, W or NW")
	fs.StringVar(&cfg.Match, "match", "", "Recorded match id (sqlite store only)")

	fs.StringVar(&cfg.Store, "store", envOrDefault("CONQUEST_STORE", StoreSQLite), "Storage backend: memory, sqlite or redis")
	fs.StringVar(&cfg.DBPath, "db", envOrDefault("DB_PATH", "data/conquest.db"), "Database path")
	fs.StringVar(&cfg.RedisURL, "redis", envOrDefault("REDIS_URL", "redis://localhost:6379/0"), "Redis URL")
	fs.DurationVar(&cfg.RedisTTL, "redis-ttl", envDuration("REDIS_TTL", 0), "Saved game expiry in Redis, 0 for none")
	fs.StringVar(&cfg.StorageKey, "key", envOrDefault("CONQUEST_KEY", game.DefaultStorageKey), "Storage key")
	fs.BoolVar(&cfg.Resume, "resume", envBool("CONQUEST_RESUME", false), "Resume the saved game if there is one")

	fs.StringVar(&cfg.LogLevel, "log-level", envOrDefault("LOG_LEVEL", "info"), "Log level")
	fs.BoolVar(&cfg.LogPretty, "pretty", envBool("LOG_PRETTY", true), "Human-readable logs")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate clamps the team count and checks the remaining settings.
func (c *Config) Validate() error {
	c.NumTeams = min(max(c.NumTeams, MinTeams), MaxTeams)

	switch c.Store {
	case StoreMemory, StoreSQLite, StoreRedis:
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	switch c.MapColoring {
	case "solid", "striped":
	default:
		return fmt.Errorf("unknown map coloring %q", c.MapColoring)
	}
	if c.MaxTurns <= 0 {
		return fmt.Errorf("max turns must be positive, got %d", c.MaxTurns)
	}
	if c.MapFile == "" && c.Cols*c.Rows < c.NumTeams {
		return fmt.Errorf("a %dx%d map cannot hold %d teams", c.Cols, c.Rows, c.NumTeams)
	}
	return nil
}

// LoadBalance reads balance overrides from a YAML file on top of the defaults.
// An empty path returns the defaults.
func LoadBalance(path string) (game.Balance, error) {
	b := game.DefaultBalance()
	if path == "" {
		return b, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return b, fmt.Errorf("read balance: %w", err)
	}
	if err := yaml.Unmarshal(data, &b); err != nil {
		return b, fmt.Errorf("parse balance %s: %w", path, err)
	}
	if err := b.Validate(); err != nil {
		return b, fmt.Errorf("balance %s: %w", path, err)
	}
	return b, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return fallback
}
