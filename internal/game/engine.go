package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"club-conquest/internal/random"
)

// Engine owns the authoritative board and is the only thing that mutates it.
// Queries return copies. An Engine is not safe for concurrent use.
type Engine struct {
	settings  Settings
	balance   Balance
	combat    Combat
	board     *Board
	snapshots []Snapshot
	mirror    *Mirror
	roll      func(key string) float64
	now       func() time.Time

	// attempts counts auto-turn attempts that did not advance the turn, so
	// retries draw fresh team and direction streams.
	attempts int
}

// Option configures an Engine.
type Option func(*Engine)

// WithBalance overrides the default balance.
func WithBalance(b Balance) Option {
	return func(e *Engine) {
		e.balance = b
	}
}

// WithMirror mirrors the board to a store after every change.
func WithMirror(m *Mirror) Option {
	return func(e *Engine) {
		e.mirror = m
	}
}

// WithRoller replaces the function that turns a stream key into a roll in [0, 1).
func WithRoller(fn func(key string) float64) Option {
	return func(e *Engine) {
		e.roll = fn
	}
}

// WithClock replaces the clock used for history timestamps. The default is
// time.Now, so two replays of the same seed only produce identical history
// when both use a fixed clock.
func WithClock(fn func() time.Time) Option {
	return func(e *Engine) {
		e.now = fn
	}
}

// AttackResult describes what an attack did.
type AttackResult struct {
	Success         bool      `json:"success"`
	AttackerTeamID  int       `json:"attackerTeamId"`
	Direction       Direction `json:"direction"`
	Target          Target    `json:"target"`
	DefenderTeamID  int       `json:"defenderTeamId"`
	Neutral         bool      `json:"neutral"`
	AttackerWon     bool      `json:"attackerWon"`
	P               float64   `json:"p"`
	Roll            float64   `json:"roll"`
	CapturedCapital bool      `json:"capturedCapital"`
	Eliminated      []int     `json:"eliminated,omitempty"`
	Reason          error     `json:"-"`
}

// TargetCellID returns the struck cell, or -1 when no target was found.
func (r AttackResult) TargetCellID() int {
	if r.Reason != nil && !r.Neutral {
		return -1
	}
	return r.Target.ToCellID
}

// NewEngine validates the setup and creates an engine at turn 0.
func NewEngine(setup Setup, opts ...Option) (*Engine, error) {
	e := &Engine{
		settings: setup.Settings,
		balance:  DefaultBalance(),
		roll:     random.Roll,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.balance.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSetup, err)
	}

	board, err := NewBoard(setup, e.balance)
	if err != nil {
		return nil, err
	}
	e.combat = Combat{Balance: e.balance}
	e.board = board
	e.snapshots = []Snapshot{board.snapshot()}

	counts := board.OwnerCounts()
	log.Info().
		Str("seed", board.Seed).
		Str("country", e.settings.Country).
		Int("teams", len(board.Teams)).
		Int("cells", len(board.Cells)).
		Int("neutral", counts[Neutral]).
		Msg("Game initialized")
	return e, nil
}

// Settings returns the match settings.
func (e *Engine) Settings() Settings { return e.settings }

// Balance returns the tuning in use.
func (e *Engine) Balance() Balance { return e.balance }

// Turn returns the number of resolved attacks.
func (e *Engine) Turn() int { return e.board.Turn }

// Teams returns a copy of the roster.
func (e *Engine) Teams() []Team { return cloneTeams(e.board.Teams) }

// Cells returns a copy of the cells.
func (e *Engine) Cells() []Cell { return cloneCells(e.board.Cells) }

// History returns a copy of the attack log.
func (e *Engine) History() []HistoryItem { return cloneHistory(e.board.History) }

// Snapshot returns a deep copy of the current state.
func (e *Engine) Snapshot() Snapshot { return e.board.snapshot() }

// UndoDepth returns how many attacks can be undone.
func (e *Engine) UndoDepth() int { return len(e.snapshots) - 1 }

// AliveTeams returns the teams that still own territory.
func (e *Engine) AliveTeams() []Team { return e.board.AliveTeams() }

// IsOver checks if at most one team is still alive.
func (e *Engine) IsOver() bool { return e.board.IsOver() }

// Winner returns the last team standing.
func (e *Engine) Winner() (Team, bool) { return e.board.Winner() }

// ResolveTarget previews which cell an attack would strike. It has no side
// effects.
func (e *Engine) ResolveTarget(attackerID int, dir Direction) (Target, error) {
	return e.board.ResolveTarget(attackerID, dir)
}

// Preview resolves the target and computes the odds without rolling.
func (e *Engine) Preview(attackerID int, dir Direction) (Odds, error) {
	target, err := e.board.ResolveTarget(attackerID, dir)
	if err != nil {
		return Odds{}, err
	}
	return e.combat.Odds(e.board, attackerID, target), nil
}

// ApplyAttack resolves and executes an attack. Expected failures (no target,
// dead attacker, a neutral cell holding out) leave the board untouched and are
// reported through Success and Reason.
func (e *Engine) ApplyAttack(attackerID int, dir Direction) AttackResult {
	b := e.board
	result := AttackResult{AttackerTeamID: attackerID, Direction: dir, DefenderTeamID: Neutral}

	target, err := b.ResolveTarget(attackerID, dir)
	if err != nil {
		result.Reason = err
		log.Debug().Err(err).Int("attacker", attackerID).Str("direction", dir.String()).Msg("Attack has no target")
		return result
	}

	odds := e.combat.Odds(b, attackerID, target)
	result.Target = target
	result.DefenderTeamID = odds.DefenderTeamID
	result.Neutral = odds.Neutral
	result.P = odds.P

	snap := b.snapshot()
	aliveBefore := b.AliveTeams()

	if odds.Neutral {
		result.Roll = e.roll(neutralKey(b.Seed, b.Turn, attackerID, target.ToCellID))
		if result.Roll >= odds.P {
			result.Reason = ErrNeutralHeld
			log.Debug().
				Int("attacker", attackerID).
				Int("cell", target.ToCellID).
				Float64("roll", result.Roll).
				Msg("Neutral cell held out")
			return result
		}
		b.Cells[target.ToCellID].OwnerTeamID = attackerID
		b.refreshAlive()
		result.AttackerWon = true
	} else {
		result.Roll = e.roll(battleKey(b.Seed, b.Turn, attackerID, target.ToCellID))
		result.AttackerWon = result.Roll < odds.P
		result.CapturedCapital = e.resolveBattle(attackerID, odds.DefenderTeamID, target, result.AttackerWon)
	}

	result.Success = true
	b.Turn++
	b.History = append(b.History, HistoryItem{
		Turn:            b.Turn,
		AttackerTeamID:  attackerID,
		DefenderTeamID:  odds.DefenderTeamID,
		TargetCellID:    target.ToCellID,
		FromCellID:      target.FromCellID,
		Direction:       dir,
		AttackerWon:     result.AttackerWon,
		P:               odds.P,
		CapturedCapital: result.CapturedCapital,
		Timestamp:       e.now().UnixMilli(),
	})
	e.snapshots = append(e.snapshots, snap)
	e.attempts = 0

	for _, t := range aliveBefore {
		if !b.Teams[t.ID].Alive {
			result.Eliminated = append(result.Eliminated, t.ID)
			log.Info().Int("turn", b.Turn).Str("team", t.Name).Msg("Team eliminated")
		}
	}
	log.Debug().
		Int("turn", b.Turn).
		Int("attacker", attackerID).
		Int("defender", odds.DefenderTeamID).
		Int("from", target.FromCellID).
		Int("to", target.ToCellID).
		Float64("p", odds.P).
		Bool("attackerWon", result.AttackerWon).
		Msg("Attack resolved")

	e.persist()
	return result
}

// resolveBattle applies the winner-takes-all transfer and the rating, form and
// capital changes. It returns true if the attacker took the defender's capital.
func (e *Engine) resolveBattle(attackerID, defenderID int, target Target, attackerWon bool) bool {
	b := e.board
	winnerID, loserID := attackerID, defenderID
	if !attackerWon {
		winnerID, loserID = defenderID, attackerID
	}
	b.transferAll(loserID, winnerID)
	b.refreshAlive()

	attacker := &b.Teams[attackerID]
	defender := &b.Teams[defenderID]
	if attackerWon {
		attacker.recordWin(e.balance)
		defender.recordLoss(e.balance)
		if defender.CapitalCellID == target.ToCellID {
			defender.armCapitalPenalty(b.Turn, e.balance)
			return true
		}
		return false
	}

	attacker.recordLoss(e.balance)
	defender.recordWin(e.balance)
	if attacker.CapitalCellID == target.FromCellID {
		attacker.armCapitalPenalty(b.Turn, e.balance)
	}
	return false
}

// Undo restores the state from before the latest attack. The initial state
// can never be popped. It returns false if there was nothing to undo.
func (e *Engine) Undo() bool {
	if len(e.snapshots) <= 1 {
		return false
	}
	last := e.snapshots[len(e.snapshots)-1]
	e.snapshots = e.snapshots[:len(e.snapshots)-1]
	e.board.restore(last)
	e.attempts = 0
	log.Debug().Int("turn", e.board.Turn).Msg("Undo")
	e.persist()
	return true
}

// ResetToInitial restores the post-setup state and drops every other snapshot.
func (e *Engine) ResetToInitial() {
	e.board.restore(e.snapshots[0])
	e.snapshots = e.snapshots[:1]
	e.attempts = 0
	log.Debug().Msg("Reset to initial state")
	e.persist()
}

// PickAttacker draws an alive team, favoring teams that are behind: fewer
// cells, lower form and a rating of at most 85 all raise the weight.
func (e *Engine) PickAttacker() (Team, bool) {
	alive := e.board.AliveTeams()
	if len(alive) == 0 {
		return Team{}, false
	}

	counts := e.board.OwnerCounts()
	maxCount, minCount := counts[alive[0].ID], counts[alive[0].ID]
	for _, t := range alive[1:] {
		c := counts[t.ID]
		if c > maxCount {
			maxCount = c
		}
		if c < minCount {
			minCount = c
		}
	}

	weights := make([]float64, len(alive))
	for i, t := range alive {
		c := counts[t.ID]
		comebackBoost := 1 + float64(maxCount-c)*0.1
		bullyPenalty := 1 - float64(max(0, c-minCount))*0.08
		overPowerPenalty := 1.0
		if t.Overall > 85 {
			overPowerPenalty = 0.9
		}
		weights[i] = max(0.05, comebackBoost*bullyPenalty*overPowerPenalty/t.Form)
	}

	src := random.New(random.Key(e.board.Seed, "wteam", e.board.Turn, e.attempts))
	return alive[random.WeightedChoice(weights, src)], true
}

// PickDirection draws a direction for a team.
func (e *Engine) PickDirection(teamID int) Direction {
	return e.directionOrder(teamID)[0]
}

// directionOrder returns every direction in a seeded random order.
func (e *Engine) directionOrder(teamID int) []Direction {
	src := random.New(random.Key(e.board.Seed, "dir", e.board.Turn, teamID, e.attempts))
	order := append([]Direction(nil), Directions...)
	for i := len(order) - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		order[i], order[j] = order[j], order[i]
	}
	return order
}

// PlayAutoTurn picks an attacker and a direction with the seeded pickers and
// attacks. Directions without a target are re-drawn until all eight have been
// tried.
func (e *Engine) PlayAutoTurn() AttackResult {
	if e.board.IsOver() {
		return AttackResult{DefenderTeamID: Neutral, Reason: ErrGameOver}
	}

	team, _ := e.PickAttacker()
	for _, dir := range e.directionOrder(team.ID) {
		if _, err := e.board.ResolveTarget(team.ID, dir); err != nil {
			continue
		}
		result := e.ApplyAttack(team.ID, dir)
		if !result.Success {
			e.attempts++
		}
		return result
	}

	e.attempts++
	return AttackResult{AttackerTeamID: team.ID, DefenderTeamID: Neutral, Reason: ErrNoValidTarget}
}

// SaveToStorage mirrors the current board to the store.
func (e *Engine) SaveToStorage() {
	e.persist()
}

// LoadFromStorage replaces the board with the saved game, if there is one,
// and makes it the new initial state. Failures are logged and leave the
// current board in place.
func (e *Engine) LoadFromStorage(ctx context.Context) bool {
	if e.mirror == nil {
		return false
	}

	data, err := e.mirror.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Str("key", e.mirror.Key()).Msg("Failed to read saved game")
		return false
	}

	board, doc, err := DecodeSaveData(data, e.saveData(), e.balance)
	if err != nil {
		if errors.Is(err, ErrNoSavedGame) {
			log.Info().Str("key", e.mirror.Key()).Msg("No saved game")
		} else {
			log.Warn().Err(err).Str("key", e.mirror.Key()).Msg("Ignoring unreadable saved game")
		}
		return false
	}

	e.board = board
	e.settings = Settings{Seed: doc.Seed, Country: doc.SelectedCountry, MapColoring: doc.MapColoring}
	e.snapshots = []Snapshot{board.snapshot()}
	e.attempts = 0
	log.Info().Str("seed", doc.Seed).Int("turn", doc.Turn).Int("teams", doc.NumTeams).Msg("Loaded saved game")
	return true
}

// saveData returns the persisted shape of the current board.
func (e *Engine) saveData() SaveData {
	return SaveData{
		SelectedCountry: e.settings.Country,
		NumTeams:        len(e.board.Teams),
		MapColoring:     e.settings.MapColoring,
		Seed:            e.board.Seed,
		Turn:            e.board.Turn,
		Teams:           cloneTeams(e.board.Teams),
		Cells:           cloneCells(e.board.Cells),
		History:         cloneHistory(e.board.History),
	}
}

func (e *Engine) persist() {
	if e.mirror == nil {
		return
	}
	data, err := json.Marshal(e.saveData())
	if err != nil {
		log.Warn().Err(err).Msg("Failed to encode game state")
		return
	}
	e.mirror.Submit(data)
}
