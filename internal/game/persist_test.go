package game

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingStore struct {
	mu    sync.Mutex
	saves [][]byte
	err   error
}

func (s *recordingStore) Save(_ context.Context, _ string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves = append(s.saves, data)
	return s.err
}

func (s *recordingStore) Load(context.Context, string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if len(s.saves) == 0 {
		return nil, nil
	}
	return s.saves[len(s.saves)-1], nil
}

func (s *recordingStore) Delete(context.Context, string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves = nil
	return s.err
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	data, err := s.Load(ctx, "missing")
	require.NoError(t, err)
	require.Nil(t, data)

	in := []byte(`{"turn":1}`)
	require.NoError(t, s.Save(ctx, "k", in))
	in[0] = 'x'

	data, err = s.Load(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, `{"turn":1}`, string(data))

	require.NoError(t, s.Delete(ctx, "k"))
	require.NoError(t, s.Delete(ctx, "k"))
	data, err = s.Load(ctx, "k")
	require.NoError(t, err)
	require.Nil(t, data)
}

func TestMirror_Clear(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m := NewMirror(store, "clear")

	m.Submit([]byte(`{"turn":1}`))
	m.Close()
	data, err := store.Load(ctx, "clear")
	require.NoError(t, err)
	require.NotNil(t, data)

	require.NoError(t, m.Clear(ctx))
	data, err = m.Load(ctx)
	require.NoError(t, err)
	require.Nil(t, data)
}

func TestMirror_LatestWins(t *testing.T) {
	store := &recordingStore{}
	m := NewMirror(store, "")
	require.Equal(t, DefaultStorageKey, m.Key())

	for i := 1; i <= 50; i++ {
		m.Submit([]byte(strconv.Itoa(i)))
	}
	m.Close()
	m.Close()
	m.Submit([]byte("ignored"))

	require.NotEmpty(t, store.saves)
	require.LessOrEqual(t, len(store.saves), 50)
	require.Equal(t, "50", string(store.saves[len(store.saves)-1]))
}

func TestMirror_StoreFailureIsSwallowed(t *testing.T) {
	store := &recordingStore{err: errors.New("disk full")}
	m := NewMirror(store, "k")

	e := newTestEngine(t, gridSetup(3, 1, 2, "demo"), WithMirror(m), WithRoller(always(0)))
	res := e.ApplyAttack(0, East)
	require.True(t, res.Success)
	m.Close()

	require.NotEmpty(t, store.saves)
	require.False(t, e.LoadFromStorage(context.Background()))
	require.Equal(t, 1, e.Turn())
}

func TestEngine_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	m := NewMirror(store, "")
	e := newTestEngine(t, gridSetup(6, 4, 4, "saved"), WithMirror(m))
	for i := 0; i < 200 && e.Turn() < 2 && !e.IsOver(); i++ {
		e.PlayAutoTurn()
	}
	e.SaveToStorage()
	m.Close()
	e.attempts = 0

	raw, err := store.Load(ctx, DefaultStorageKey)
	require.NoError(t, err)
	var doc SaveData
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Equal(t, "Turkey", doc.SelectedCountry)
	require.Equal(t, 4, doc.NumTeams)
	require.Equal(t, e.Turn(), doc.Turn)

	m2 := NewMirror(store, "")
	defer m2.Close()
	other := newTestEngine(t, gridSetup(3, 1, 2, "other"), WithMirror(m2))
	require.True(t, other.LoadFromStorage(ctx))

	require.Equal(t, e.Snapshot(), other.Snapshot())
	require.Equal(t, "saved", other.Settings().Seed)
	require.Equal(t, "Turkey", other.Settings().Country)
	require.Equal(t, 0, other.UndoDepth())

	// The loaded board plays on exactly like the original.
	require.Equal(t, e.PlayAutoTurn().Target, other.PlayAutoTurn().Target)
}

func TestEngine_LoadFromStorage_NothingUsable(t *testing.T) {
	ctx := context.Background()

	t.Run("no mirror", func(t *testing.T) {
		e := newTestEngine(t, gridSetup(3, 1, 2, "demo"))
		require.False(t, e.LoadFromStorage(ctx))
	})

	t.Run("empty store", func(t *testing.T) {
		m := NewMirror(NewMemoryStore(), "")
		defer m.Close()
		e := newTestEngine(t, gridSetup(3, 1, 2, "demo"), WithMirror(m))
		require.False(t, e.LoadFromStorage(ctx))
	})

	t.Run("garbage", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Save(ctx, DefaultStorageKey, []byte("{not json")))
		m := NewMirror(store, "")
		defer m.Close()
		e := newTestEngine(t, gridSetup(3, 1, 2, "demo"), WithMirror(m))
		before := e.Snapshot()

		require.False(t, e.LoadFromStorage(ctx))
		require.Equal(t, before, e.Snapshot())
	})
}

func TestDecodeSaveData(t *testing.T) {
	cells := `[
		{"id":0,"ownerTeamId":0,"centroid":[0.5,0.5],"polygon":[[0,0],[1,0],[1,1],[0,1]]},
		{"id":1,"ownerTeamId":1,"centroid":[1.5,0.5],"polygon":[[1,0],[2,0],[2,1],[1,1]]},
		{"id":2,"ownerTeamId":-1,"centroid":[2.5,0.5],"polygon":[[2,0],[3,0],[3,1],[2,1]]}
	]`

	t.Run("fills missing fields", func(t *testing.T) {
		data := []byte(`{"turn":3,"teams":[{"id":0,"name":"Ankara"},{"id":1,"overall":120,"form":2}],"cells":` + cells + `}`)
		defaults := SaveData{SelectedCountry: "Spain", Seed: "fallback"}

		board, doc, err := DecodeSaveData(data, defaults, DefaultBalance())
		require.NoError(t, err)
		require.Equal(t, "Spain", doc.SelectedCountry)
		require.Equal(t, "fallback", board.Seed)
		require.Equal(t, 3, board.Turn)
		require.Equal(t, 2, doc.NumTeams)
		require.NotNil(t, board.History)

		require.Equal(t, 75, board.Teams[0].Overall)
		require.Equal(t, 1.0, board.Teams[0].Form)
		require.Equal(t, 0, board.Teams[0].CapitalCellID)
		require.Equal(t, "Team 2", board.Teams[1].Name)
		require.Equal(t, 99, board.Teams[1].Overall)
		require.Equal(t, 1.15, board.Teams[1].Form)
		require.Equal(t, 1, board.Teams[1].CapitalCellID)

		require.True(t, board.Teams[0].Alive)
		require.Equal(t, []int{0, 2}, board.Cells[1].Neighbors)
		require.Len(t, board.borders, 2)
	})

	t.Run("rejects", func(t *testing.T) {
		for name, data := range map[string]string{
			"one team":          `{"teams":[{"id":0}],"cells":` + cells + `}`,
			"no cells":          `{"teams":[{"id":0},{"id":1}]}`,
			"unknown owner":     `{"teams":[{"id":0},{"id":1}],"cells":[{"id":0,"ownerTeamId":5,"polygon":[[0,0],[1,0],[1,1]]},{"id":1,"polygon":[[0,0],[1,0],[1,1]]}]}`,
			"capital missing":   `{"teams":[{"id":0},{"id":1,"capitalCellId":9}],"cells":` + cells + `}`,
			"team out of order": `{"teams":[{"id":1},{"id":0}],"cells":` + cells + `}`,
		} {
			t.Run(name, func(t *testing.T) {
				_, _, err := DecodeSaveData([]byte(data), SaveData{}, DefaultBalance())
				require.ErrorIs(t, err, ErrMalformedSetup)
			})
		}
	})

	t.Run("empty", func(t *testing.T) {
		_, _, err := DecodeSaveData(nil, SaveData{}, DefaultBalance())
		require.ErrorIs(t, err, ErrNoSavedGame)
	})
}
