package draft

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Board owns every session and enforces one active session per league.
// All methods are safe for concurrent use.
type Board struct {
	mu       sync.Mutex
	sessions map[string]*Session
	active   map[string]string // league -> session id
	newID    func() string
}

// NewBoard creates an empty board
func NewBoard() *Board {
	return &Board{
		sessions: make(map[string]*Session),
		active:   make(map[string]string),
		newID:    uuid.NewString,
	}
}

// Start creates and activates a session for cfg.LeagueID
func (b *Board) Start(cfg Config) (View, error) {
	if err := cfg.Validate(); err != nil {
		return View{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if id, ok := b.active[cfg.LeagueID]; ok {
		return View{}, &StateError{Msg: fmt.Sprintf("league %s already has an active session %s", cfg.LeagueID, id)}
	}
	s := NewSession(b.newID())
	if err := s.Start(cfg); err != nil {
		return View{}, err
	}
	b.sessions[s.id] = s
	b.active[cfg.LeagueID] = s.id
	return s.View(), nil
}

func (b *Board) get(id string) (*Session, error) {
	s, ok := b.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Get returns a view of one session
func (b *Board) Get(id string) (View, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, err := b.get(id)
	if err != nil {
		return View{}, err
	}
	return s.View(), nil
}

// Active returns the active session of a league, if any
func (b *Board) Active(leagueID string) (View, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id, ok := b.active[leagueID]
	if !ok {
		return View{}, false
	}
	return b.sessions[id].View(), true
}

// Sessions lists every session of a league, oldest first
func (b *Board) Sessions(leagueID string) []View {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []View
	for _, s := range b.sessions {
		if s.cfg.LeagueID == leagueID {
			out = append(out, s.View())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt == nil || out[j].StartedAt == nil {
			return out[i].ID < out[j].ID
		}
		if out[i].StartedAt.Equal(*out[j].StartedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartedAt.Before(*out[j].StartedAt)
	})
	return out
}

// Pick records a selection in session id
func (b *Board) Pick(id, playerID string, team int, source Source) (View, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, err := b.get(id)
	if err != nil {
		return View{}, err
	}
	if err := s.Pick(playerID, team, source); err != nil {
		return View{}, err
	}
	return s.View(), nil
}

// Undraft returns a player to the pool
func (b *Board) Undraft(id, playerID string) (View, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, err := b.get(id)
	if err != nil {
		return View{}, err
	}
	if err := s.Undraft(playerID); err != nil {
		return View{}, err
	}
	return s.View(), nil
}

// Undo reverts the latest action of session id
func (b *Board) Undo(id string) (View, PickAction, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, err := b.get(id)
	if err != nil {
		return View{}, PickAction{}, err
	}
	a, err := s.Undo()
	if err != nil {
		return View{}, PickAction{}, err
	}
	return s.View(), a, nil
}

// Redo re-applies the latest undone action of session id
func (b *Board) Redo(id string) (View, PickAction, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, err := b.get(id)
	if err != nil {
		return View{}, PickAction{}, err
	}
	a, err := s.Redo()
	if err != nil {
		return View{}, PickAction{}, err
	}
	return s.View(), a, nil
}

// End closes session id and frees its league for a new session
func (b *Board) End(id string) (View, int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, err := b.get(id)
	if err != nil {
		return View{}, 0, err
	}
	total, err := s.End()
	if err != nil {
		return View{}, 0, err
	}
	if b.active[s.cfg.LeagueID] == id {
		delete(b.active, s.cfg.LeagueID)
	}
	return s.View(), total, nil
}

// Reset forgets every session of a league. It refuses while one is active.
func (b *Board) Reset(leagueID string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if id, ok := b.active[leagueID]; ok {
		return 0, &StateError{Msg: fmt.Sprintf("cannot reset league %s while session %s is active", leagueID, id)}
	}
	removed := 0
	for id, s := range b.sessions {
		if s.cfg.LeagueID == leagueID {
			delete(b.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Restore loads a persisted session back onto the board
func (b *Board) Restore(v View) error {
	if v.ID == "" || v.LeagueID == "" {
		return invalid("persisted session is missing its id or league")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.sessions[v.ID]; ok {
		return &StateError{Msg: fmt.Sprintf("session %s is already loaded", v.ID)}
	}
	if v.State == Active {
		if other, ok := b.active[v.LeagueID]; ok {
			return &StateError{Msg: fmt.Sprintf("league %s already has an active session %s", v.LeagueID, other)}
		}
		b.active[v.LeagueID] = v.ID
	}
	b.sessions[v.ID] = FromView(v)
	return nil
}

// ObservedPick is a pick reported by an external league feed
type ObservedPick struct {
	PlayerID    string `json:"playerId"`
	TeamID      int    `json:"teamId"`
	OverallPick int    `json:"overallPick"`
}

// ImportReport summarises a feed import
type ImportReport struct {
	Applied []PickAction      `json:"applied"`
	Skipped map[string]string `json:"skipped,omitempty"` // player id -> reason
}

// Import applies observed picks in overall-pick order, skipping players already on the board
// and players an earlier import placed
func (b *Board) Import(id string, picks []ObservedPick) (View, ImportReport, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	rep := ImportReport{Skipped: make(map[string]string)}

	s, err := b.get(id)
	if err != nil {
		return View{}, rep, err
	}
	if err := s.requireActive(); err != nil {
		return View{}, rep, err
	}

	ordered := append([]ObservedPick{}, picks...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].OverallPick < ordered[j].OverallPick })

	for _, p := range ordered {
		if s.IsDrafted(p.PlayerID) {
			rep.Skipped[p.PlayerID] = "already drafted"
			continue
		}
		// a feed pick the user undid or undrafted stays off the board
		if s.WasImported(p.PlayerID) {
			rep.Skipped[p.PlayerID] = "already imported"
			continue
		}
		if err := s.Pick(p.PlayerID, p.TeamID, SourceFeed); err != nil {
			rep.Skipped[p.PlayerID] = err.Error()
			continue
		}
		rep.Applied = append(rep.Applied, s.done[len(s.done)-1])
	}
	return s.View(), rep, nil
}
