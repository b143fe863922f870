package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"club-conquest/internal/config"
	"club-conquest/internal/database"
	"club-conquest/internal/game"
	"club-conquest/internal/logger"
	"club-conquest/internal/redisstore"
	"club-conquest/pkg/maps"
)

// maxStalls bounds consecutive auto turns that do not advance the game.
const maxStalls = 64

const usage = `usage: conquest [play|attack|preview|matches|clear] [flags]

  play      play a seeded match to the end (default)
  attack    resume the saved game and make one attack with -team and -dir,
            logged to -match when given
  preview   show the target and odds of -team attacking towards -dir
  matches   list recorded matches, or the attack log of -match (sqlite store only)
  clear     delete the saved game`

func main() {
	cmd, args := "play", os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	cfg, err := config.Load(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n\n%s\n", err, usage)
		os.Exit(2)
	}
	logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start")
	}
	defer app.Close()

	switch cmd {
	case "play":
		err = app.play(ctx, os.Stdout)
	case "attack":
		err = app.attack(ctx, os.Stdout)
	case "preview":
		err = app.preview(ctx, os.Stdout)
	case "matches":
		err = app.matches(ctx, os.Stdout)
	case "clear":
		err = app.clear(ctx, os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s\n", cmd, usage)
		app.Close()
		os.Exit(2)
	}
	if err != nil {
		app.Close()
		log.Fatal().Err(err).Str("command", cmd).Msg("Command failed")
	}
}

// app holds the resources of one CLI run.
type app struct {
	cfg     *config.Config
	store   game.Store
	db      *database.DB // nil unless the sqlite store is used
	closers []func() error
	mirror  *game.Mirror
	engine  *game.Engine
}

func newApp(cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}
	if err := a.openStore(); err != nil {
		return nil, err
	}

	balance, err := config.LoadBalance(cfg.BalanceFile)
	if err != nil {
		a.Close()
		return nil, err
	}

	m, err := loadMap(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	settings := game.Settings{Seed: cfg.Seed, Country: cfg.Country, MapColoring: cfg.MapColoring}
	setup, err := m.Setup(settings, maps.Roster(cfg.Country, cfg.NumTeams))
	if err != nil {
		a.Close()
		return nil, err
	}

	a.mirror = game.NewMirror(a.store, cfg.StorageKey)
	a.engine, err = game.NewEngine(setup, game.WithBalance(balance), game.WithMirror(a.mirror))
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) openStore() error {
	switch a.cfg.Store {
	case config.StoreSQLite:
		db, err := database.New(a.cfg.DBPath)
		if err != nil {
			return err
		}
		a.store, a.db = db, db
		a.closers = append(a.closers, db.Close)
		log.Info().Str("path", a.cfg.DBPath).Msg("Using sqlite store")
	case config.StoreRedis:
		client, err := redisstore.NewClient(a.cfg.RedisURL, a.cfg.RedisTTL)
		if err != nil {
			return err
		}
		a.store = client
		a.closers = append(a.closers, client.Close)
		log.Info().Msg("Using redis store")
	default:
		a.store = game.NewMemoryStore()
		log.Info().Msg("Using in-memory store")
	}
	return nil
}

// Close flushes the mirror, then closes the store.
func (a *app) Close() {
	if a.mirror != nil {
		a.mirror.Close()
		a.mirror = nil
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Warn().Err(err).Msg("Failed to close store")
		}
	}
	a.closers = nil
}

func loadMap(cfg *config.Config) (*maps.Map, error) {
	if cfg.MapFile != "" {
		return maps.LoadFile(cfg.MapFile)
	}
	opts := maps.DefaultOptions()
	opts.ID = "generated-" + strings.ToLower(cfg.Country)
	opts.Name = cfg.Country
	opts.Seed = cfg.Seed
	opts.Cols = cfg.Cols
	opts.Rows = cfg.Rows
	opts.Capitals = cfg.NumTeams
	opts.Anchors = maps.Anchors(cfg.Country, cfg.NumTeams)
	return maps.Generate(opts)
}

func (a *app) play(ctx context.Context, out io.Writer) error {
	if a.cfg.Resume {
		a.engine.LoadFromStorage(ctx)
	}

	runID := uuid.NewString()
	if a.db != nil {
		match, err := a.db.CreateMatch(ctx, a.engine.Settings().Seed, a.engine.Settings().Country, len(a.engine.Teams()), a.engine.Settings().MapColoring)
		if err != nil {
			return fmt.Errorf("record match: %w", err)
		}
		runID = match.ID
	}
	log.Info().
		Str("run", runID).
		Str("seed", a.engine.Settings().Seed).
		Int("turn", a.engine.Turn()).
		Int("maxTurns", a.cfg.MaxTurns).
		Msg("Match started")

	stalls := 0
	for a.engine.Turn() < a.cfg.MaxTurns && !a.engine.IsOver() {
		if ctx.Err() != nil {
			log.Warn().Int("turn", a.engine.Turn()).Msg("Interrupted")
			break
		}

		res := a.engine.PlayAutoTurn()
		if !res.Success {
			stalls++
			if stalls >= maxStalls {
				log.Warn().Int("turn", a.engine.Turn()).Msg("No team can make progress")
				break
			}
			continue
		}
		stalls = 0

		if a.db != nil {
			if err := a.logLastAttack(ctx, runID); err != nil {
				log.Warn().Err(err).Msg("Failed to log attack")
			}
		}
	}
	a.engine.SaveToStorage()

	var winnerID *int
	if w, ok := a.engine.Winner(); ok {
		winnerID = &w.ID
		log.Info().Str("winner", w.Name).Int("turns", a.engine.Turn()).Msg("Match over")
	}
	if a.db != nil {
		// The match must be recorded even if the run was interrupted.
		if err := a.db.FinishMatch(context.WithoutCancel(ctx), runID, winnerID, a.engine.Turn()); err != nil {
			log.Warn().Err(err).Msg("Failed to record result")
		}
	}

	printStandings(out, a.engine)
	return nil
}

func (a *app) attack(ctx context.Context, out io.Writer) error {
	a.engine.LoadFromStorage(ctx)

	dir, err := game.ParseDirection(a.cfg.Direction)
	if err != nil {
		return err
	}
	if a.cfg.Match != "" {
		if err := a.requireDB(); err != nil {
			return err
		}
		if _, err := a.db.GetMatch(ctx, a.cfg.Match); err != nil {
			return fmt.Errorf("match %s: %w", a.cfg.Match, err)
		}
	}

	res := a.engine.ApplyAttack(a.cfg.Team, dir)
	if !res.Success {
		fmt.Fprintf(out, "attack failed: %v\n", res.Reason)
		return nil
	}
	if a.cfg.Match != "" {
		if err := a.logLastAttack(ctx, a.cfg.Match); err != nil {
			return fmt.Errorf("log attack: %w", err)
		}
	}

	teams := a.engine.Teams()
	switch {
	case res.Neutral:
		fmt.Fprintf(out, "%s captured neutral cell %d (p=%.2f)\n", teams[a.cfg.Team].Name, res.Target.ToCellID, res.P)
	case res.AttackerWon:
		fmt.Fprintf(out, "%s beat %s at cell %d (p=%.2f)\n", teams[a.cfg.Team].Name, teams[res.DefenderTeamID].Name, res.Target.ToCellID, res.P)
	default:
		fmt.Fprintf(out, "%s lost to %s at cell %d (p=%.2f)\n", teams[a.cfg.Team].Name, teams[res.DefenderTeamID].Name, res.Target.ToCellID, res.P)
	}
	printStandings(out, a.engine)
	return nil
}

func (a *app) preview(ctx context.Context, out io.Writer) error {
	a.engine.LoadFromStorage(ctx)

	dir, err := game.ParseDirection(a.cfg.Direction)
	if err != nil {
		return err
	}
	odds, err := a.engine.Preview(a.cfg.Team, dir)
	if errors.Is(err, game.ErrNoValidTarget) || errors.Is(err, game.ErrDeadAttacker) {
		fmt.Fprintf(out, "no attack: %v\n", err)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "team %d %s: cell %d -> cell %d\n", a.cfg.Team, dir, odds.Target.FromCellID, odds.Target.ToCellID)
	if odds.Neutral {
		fmt.Fprintf(out, "neutral cell, capture chance %.2f\n", odds.P)
		return nil
	}
	fmt.Fprintf(out, "attack %.1f vs defense %.1f (team %d), win chance %.2f\n",
		odds.AttackPower, odds.DefensePower, odds.DefenderTeamID, odds.P)
	return nil
}

func (a *app) logLastAttack(ctx context.Context, matchID string) error {
	history := a.engine.History()
	return a.db.LogAttack(ctx, matchID, history[len(history)-1])
}

func (a *app) requireDB() error {
	if a.db == nil {
		return fmt.Errorf("matches need the %s store", config.StoreSQLite)
	}
	return nil
}

func (a *app) matches(ctx context.Context, out io.Writer) error {
	if err := a.requireDB(); err != nil {
		return err
	}
	if a.cfg.Match != "" {
		return a.matchLog(ctx, out, a.cfg.Match)
	}
	list, err := a.db.ListMatches(ctx, 20)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSEED\tCOUNTRY\tTEAMS\tSTATUS\tWINNER\tTURNS")
	for _, m := range list {
		winner := "-"
		if m.WinnerTeamID != nil {
			winner = fmt.Sprint(*m.WinnerTeamID)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%d\n", m.ID, m.Seed, m.Country, m.NumTeams, m.Status, winner, m.Turns)
	}
	return w.Flush()
}

// matchLog prints one match and the attacks logged for it.
func (a *app) matchLog(ctx context.Context, out io.Writer, id string) error {
	m, err := a.db.GetMatch(ctx, id)
	if err != nil {
		return fmt.Errorf("match %s: %w", id, err)
	}
	attacks, err := a.db.GetAttacks(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "match %s: seed %s, %s, %d teams, %s after %d turns\n", m.ID, m.Seed, m.Country, m.NumTeams, m.Status, m.Turns)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TURN\tATTACKER\tDEFENDER\tDIR\tFROM\tTO\tP\tRESULT")
	for _, at := range attacks {
		it := at.Item
		defender := fmt.Sprint(it.DefenderTeamID)
		if it.DefenderTeamID == game.Neutral {
			defender = "neutral"
		}
		result := "lost"
		switch {
		case it.CapturedCapital:
			result = "won, capital"
		case it.AttackerWon:
			result = "won"
		}
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%d\t%d\t%.2f\t%s\n", it.Turn, it.AttackerTeamID, defender, it.Direction, it.FromCellID, it.TargetCellID, it.P, result)
	}
	return w.Flush()
}

func (a *app) clear(ctx context.Context, out io.Writer) error {
	if err := a.mirror.Clear(ctx); err != nil {
		return fmt.Errorf("clear saved game: %w", err)
	}
	fmt.Fprintf(out, "cleared saved game %s\n", a.mirror.Key())
	return nil
}

func printStandings(out io.Writer, e *game.Engine) {
	counts := make(map[int]int)
	for _, c := range e.Cells() {
		counts[c.OwnerTeamID]++
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "turn %d\n", e.Turn())
	fmt.Fprintln(w, "TEAM\tCELLS\tOVERALL\tFORM\tALIVE")
	for _, t := range e.Teams() {
		fmt.Fprintf(w, "%s\t%d\t%d\t%.2f\t%v\n", t.Name, counts[t.ID], t.Overall, t.Form, t.Alive)
	}
	if n := counts[game.Neutral]; n > 0 {
		fmt.Fprintf(w, "neutral\t%d\t\t\t\n", n)
	}
	w.Flush()
}
