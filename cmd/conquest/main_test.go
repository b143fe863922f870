package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"club-conquest/internal/config"
	"club-conquest/internal/database"
	"club-conquest/internal/game"
	"club-conquest/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Init(logger.Options{Level: "error", Out: io.Discard})
	os.Exit(m.Run())
}

func testConfig(t *testing.T, args ...string) *config.Config {
	t.Helper()
	cfg, err := config.Load(append([]string{"-log-level", "error", "-pretty=false"}, args...))
	require.NoError(t, err)
	return cfg
}

func TestPlay_MemoryStore(t *testing.T) {
	a, err := newApp(testConfig(t, "-store", "memory", "-seed", "cli"))
	require.NoError(t, err)
	defer a.Close()

	var out bytes.Buffer
	require.NoError(t, a.play(context.Background(), &out))
	require.True(t, a.engine.IsOver() || a.engine.Turn() == 500)
	require.Contains(t, out.String(), "Galatasaray")
	require.Contains(t, out.String(), "TEAM")
}

func TestPlay_SQLiteRecordsMatchAndResumes(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "conquest.db")
	ctx := context.Background()

	a, err := newApp(testConfig(t, "-db", dbPath, "-max-turns", "2"))
	require.NoError(t, err)
	require.NoError(t, a.play(ctx, &bytes.Buffer{}))
	turns := a.engine.Turn()
	a.Close()

	b, err := newApp(testConfig(t, "-db", dbPath, "-resume"))
	require.NoError(t, err)
	defer b.Close()
	require.True(t, b.engine.LoadFromStorage(ctx))
	require.Equal(t, turns, b.engine.Turn())

	var out bytes.Buffer
	require.NoError(t, b.matches(ctx, &out))
	require.Contains(t, out.String(), "demo")

	list, err := b.db.ListMatches(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, database.MatchStatusFinished, list[0].Status)
	require.Equal(t, turns, list[0].Turns)

	attacks, err := b.db.GetAttacks(ctx, list[0].ID)
	require.NoError(t, err)
	require.Len(t, attacks, turns)
}

func TestPreviewAndAttack(t *testing.T) {
	ctx := context.Background()
	a, err := newApp(testConfig(t, "-store", "memory", "-teams", "2", "-cols", "4", "-rows", "1", "-team", "0", "-dir", "E"))
	require.NoError(t, err)
	defer a.Close()

	var out bytes.Buffer
	require.NoError(t, a.preview(ctx, &out))
	require.Contains(t, out.String(), "team 0 E")

	out.Reset()
	require.NoError(t, a.attack(ctx, &out))
	require.Contains(t, out.String(), "turn")
}

func TestMatches_NeedsSQLite(t *testing.T) {
	a, err := newApp(testConfig(t, "-store", "memory"))
	require.NoError(t, err)
	defer a.Close()
	require.Error(t, a.matches(context.Background(), &bytes.Buffer{}))
}

func TestMatches_AttackLog(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "conquest.db")
	ctx := context.Background()

	a, err := newApp(testConfig(t, "-db", dbPath, "-max-turns", "3"))
	require.NoError(t, err)
	require.NoError(t, a.play(ctx, &bytes.Buffer{}))
	list, err := a.db.ListMatches(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	a.Close()

	b, err := newApp(testConfig(t, "-db", dbPath, "-match", list[0].ID))
	require.NoError(t, err)
	defer b.Close()

	var out bytes.Buffer
	require.NoError(t, b.matches(ctx, &out))
	require.Contains(t, out.String(), "match "+list[0].ID)
	require.Contains(t, out.String(), "TURN")
	attacks, err := b.db.GetAttacks(ctx, list[0].ID)
	require.NoError(t, err)
	require.NotEmpty(t, attacks)
	require.Equal(t, len(attacks)+2, bytes.Count(out.Bytes(), []byte("\n")))

	b.cfg.Match = "missing"
	err = b.matches(ctx, &bytes.Buffer{})
	require.True(t, errors.Is(err, database.ErrMatchNotFound))
}

func TestAttack_LogsToMatch(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "conquest.db")
	ctx := context.Background()

	a, err := newApp(testConfig(t, "-db", dbPath, "-teams", "2", "-cols", "4", "-rows", "1", "-team", "0", "-dir", "E"))
	require.NoError(t, err)
	defer a.Close()

	m, err := a.db.CreateMatch(ctx, "demo", "Turkey", 2, "solid")
	require.NoError(t, err)
	a.cfg.Match = m.ID

	require.NoError(t, a.attack(ctx, &bytes.Buffer{}))
	attacks, err := a.db.GetAttacks(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, attacks, 1)
	require.Equal(t, 1, attacks[0].Item.Turn)
	require.Equal(t, game.East, attacks[0].Item.Direction)

	a.cfg.Match = "missing"
	require.Error(t, a.attack(ctx, &bytes.Buffer{}))
	require.Equal(t, 1, a.engine.Turn())
}

func TestAttack_MatchNeedsSQLite(t *testing.T) {
	a, err := newApp(testConfig(t, "-store", "memory", "-match", "m-1"))
	require.NoError(t, err)
	defer a.Close()
	require.Error(t, a.attack(context.Background(), &bytes.Buffer{}))
	require.Equal(t, 0, a.engine.Turn())
}

func TestClear(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "conquest.db")
	ctx := context.Background()

	a, err := newApp(testConfig(t, "-db", dbPath, "-max-turns", "2"))
	require.NoError(t, err)
	require.NoError(t, a.play(ctx, &bytes.Buffer{}))
	a.Close()

	b, err := newApp(testConfig(t, "-db", dbPath))
	require.NoError(t, err)
	defer b.Close()

	var out bytes.Buffer
	require.NoError(t, b.clear(ctx, &out))
	require.Contains(t, out.String(), game.DefaultStorageKey)
	require.False(t, b.engine.LoadFromStorage(ctx))
}

func TestPlay_LogsEachEliminationOnce(t *testing.T) {
	var logs bytes.Buffer
	logger.Init(logger.Options{Level: "info", Out: &logs})
	t.Cleanup(func() { logger.Init(logger.Options{Level: "error", Out: io.Discard}) })

	a, err := newApp(testConfig(t, "-store", "memory", "-seed", "cli", "-log-level", "info"))
	require.NoError(t, err)
	defer a.Close()
	require.NoError(t, a.play(context.Background(), &bytes.Buffer{}))

	dead := 0
	for _, team := range a.engine.Teams() {
		if !team.Alive {
			dead++
		}
	}
	require.NotZero(t, dead)
	require.Equal(t, dead, strings.Count(logs.String(), `"message":"Team eliminated"`))
	require.NotContains(t, logs.String(), `"message":"Eliminated"`)
}
