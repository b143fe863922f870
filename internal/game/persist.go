package game

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultStorageKey is the key the board is mirrored under.
const DefaultStorageKey = "fi_game_v1"

// Store is a simple key-value store for saved games. Load returns nil data
// and no error when the key does not exist; deleting a missing key is not an
// error.
type Store interface {
	Save(ctx context.Context, key string, data []byte) error
	Load(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// SaveData is the persisted shape of a match.
type SaveData struct {
	SelectedCountry string        `json:"selectedCountry"`
	NumTeams        int           `json:"numTeams"`
	MapColoring     string        `json:"mapColoring"`
	Seed            string        `json:"seed"`
	Turn            int           `json:"turn"`
	Teams           []Team        `json:"teams"`
	Cells           []Cell        `json:"cells"`
	History         []HistoryItem `json:"history"`
}

// savedTeam lets DecodeSaveData tell missing team fields from zero values.
type savedTeam struct {
	Team
	Overall       *int     `json:"overall"`
	Form          *float64 `json:"form"`
	CapitalCellID *int     `json:"capitalCellId"`
}

type saveDoc struct {
	SaveData
	Teams []savedTeam `json:"teams"`
}

// DecodeSaveData parses a saved game on top of defaults and rebuilds the
// board from it. Missing team ratings, form and capitals are filled in;
// alive flags and the border cache are recomputed.
func DecodeSaveData(data []byte, defaults SaveData, balance Balance) (*Board, SaveData, error) {
	if len(data) == 0 {
		return nil, SaveData{}, ErrNoSavedGame
	}

	doc := saveDoc{SaveData: defaults}
	doc.SaveData.Teams = nil
	doc.SaveData.Cells = nil
	doc.SaveData.History = nil
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, SaveData{}, fmt.Errorf("decode saved game: %w", err)
	}

	out := doc.SaveData
	out.Teams = make([]Team, len(doc.Teams))
	for i, st := range doc.Teams {
		t := st.Team
		if t.ID != i {
			return nil, SaveData{}, fmt.Errorf("%w: team at index %d has id %d", ErrMalformedSetup, i, t.ID)
		}
		t.Overall = balance.Overall.Default
		if st.Overall != nil {
			t.Overall = *st.Overall
		}
		t.Overall = balance.clampOverall(t.Overall)
		t.Form = 1
		if st.Form != nil && *st.Form > 0 {
			t.Form = *st.Form
		}
		t.Form = balance.clampForm(t.Form)
		t.CapitalCellID = i
		if st.CapitalCellID != nil {
			t.CapitalCellID = *st.CapitalCellID
		}
		if t.Name == "" {
			t.Name = fmt.Sprintf("Team %d", i+1)
		}
		out.Teams[i] = t
	}
	if out.Cells == nil {
		out.Cells = []Cell{}
	}
	if out.History == nil {
		out.History = []HistoryItem{}
	}

	if len(out.Teams) < 2 {
		return nil, SaveData{}, fmt.Errorf("%w: saved game has %d teams", ErrMalformedSetup, len(out.Teams))
	}
	if len(out.Cells) < len(out.Teams) {
		return nil, SaveData{}, fmt.Errorf("%w: saved game has %d cells for %d teams", ErrMalformedSetup, len(out.Cells), len(out.Teams))
	}
	if err := validateCells(out.Cells, len(out.Teams)); err != nil {
		return nil, SaveData{}, err
	}
	for _, t := range out.Teams {
		if t.CapitalCellID < 0 || t.CapitalCellID >= len(out.Cells) {
			return nil, SaveData{}, fmt.Errorf("%w: team %d capital %d out of range", ErrMalformedSetup, t.ID, t.CapitalCellID)
		}
	}
	if out.Turn < 0 {
		out.Turn = 0
	}
	out.NumTeams = len(out.Teams)

	board := &Board{
		Seed:    out.Seed,
		Turn:    out.Turn,
		Teams:   cloneTeams(out.Teams),
		Cells:   cloneCells(out.Cells),
		History: cloneHistory(out.History),
	}
	board.rebuildBorders()
	board.refreshAlive()
	return board, out, nil
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Save stores a copy of data under key.
func (s *MemoryStore) Save(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), data...)
	return nil
}

// Load returns a copy of the data under key.
func (s *MemoryStore) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), data...), nil
}

// Delete removes the data under key.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Mirror writes documents to a Store in the background. Submissions never
// block: if a write is still pending, the newer document replaces it. Write
// failures are logged and dropped.
type Mirror struct {
	store   Store
	key     string
	timeout time.Duration

	mu      sync.Mutex
	closed  bool
	pending chan []byte
	done    chan struct{}
}

// NewMirror starts a mirror that writes to store under key.
func NewMirror(store Store, key string) *Mirror {
	if key == "" {
		key = DefaultStorageKey
	}
	m := &Mirror{
		store:   store,
		key:     key,
		timeout: 5 * time.Second,
		pending: make(chan []byte, 1),
		done:    make(chan struct{}),
	}
	go m.run()
	return m
}

// Key returns the storage key.
func (m *Mirror) Key() string {
	return m.key
}

// Submit queues data for writing, replacing any write still waiting.
func (m *Mirror) Submit(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	select {
	case <-m.pending:
	default:
	}
	m.pending <- data
}

// Load reads the document straight from the store.
func (m *Mirror) Load(ctx context.Context) ([]byte, error) {
	return m.store.Load(ctx, m.key)
}

// Clear drops any write still waiting and deletes the saved document.
func (m *Mirror) Clear(ctx context.Context) error {
	m.mu.Lock()
	select {
	case <-m.pending:
	default:
	}
	m.mu.Unlock()
	return m.store.Delete(ctx, m.key)
}

// Close flushes the last pending write and stops the mirror.
func (m *Mirror) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		<-m.done
		return
	}
	m.closed = true
	close(m.pending)
	m.mu.Unlock()
	<-m.done
}

func (m *Mirror) run() {
	defer close(m.done)
	for data := range m.pending {
		m.write(data)
	}
}

func (m *Mirror) write(data []byte) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Str("key", m.key).Interface("panic", r).Msg("Saving game state panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	if err := m.store.Save(ctx, m.key, data); err != nil {
		log.Warn().Err(fmt.Errorf("save %s: %w", m.key, err)).Msg("Failed to save game state")
		return
	}
	log.Debug().Str("key", m.key).Int("bytes", len(data)).Msg("Game state saved")
}
