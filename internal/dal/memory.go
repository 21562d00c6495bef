package dal

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/draft"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/models"
)

// MemoryDAL implements Store using in-memory storage
type MemoryDAL struct {
	mu       sync.RWMutex
	players  map[string]models.Player
	order    []string
	sessions map[string][]byte // session id -> encoded view
}

// NewMemoryDAL creates an in-memory store seeded with the default player pool
func NewMemoryDAL() *MemoryDAL {
	m := &MemoryDAL{
		players:  make(map[string]models.Player),
		sessions: make(map[string][]byte),
	}
	_ = m.UpsertPlayers(context.Background(), defaultPlayers())
	return m
}

func (m *MemoryDAL) ListPlayers(ctx context.Context) ([]models.Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Player, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, clonePlayer(m.players[id]))
	}
	return out, nil
}

func (m *MemoryDAL) GetPlayer(ctx context.Context, id string) (models.Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.players[id]
	if !ok {
		return models.Player{}, ErrNotFound
	}
	return clonePlayer(p), nil
}

func (m *MemoryDAL) UpsertPlayers(ctx context.Context, players []models.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range players {
		if _, exists := m.players[p.ID]; !exists {
			m.order = append(m.order, p.ID)
		}
		m.players[p.ID] = clonePlayer(p)
	}
	return nil
}

func (m *MemoryDAL) SetPlayerADP(ctx context.Context, playerID, source string, adp float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.players[playerID]
	if !ok {
		return ErrNotFound
	}
	p = clonePlayer(p)
	setADP(&p, source, adp)
	m.players[playerID] = p
	return nil
}

func (m *MemoryDAL) SaveSession(ctx context.Context, v draft.View) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[v.ID] = data
	return nil
}

func (m *MemoryDAL) LoadSessions(ctx context.Context) ([]draft.View, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]draft.View, 0, len(m.sessions))
	for _, data := range m.sessions {
		var v draft.View
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryDAL) DeleteLeague(ctx context.Context, leagueID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, data := range m.sessions {
		var v draft.View
		if err := json.Unmarshal(data, &v); err == nil && v.LeagueID == leagueID {
			delete(m.sessions, id)
		}
	}
	return nil
}

func (m *MemoryDAL) Ping(ctx context.Context) error { return nil }

func (m *MemoryDAL) Close() error { return nil }

// clonePlayer deep-copies the maps and slices of a player so stored records cannot be mutated by callers
func clonePlayer(p models.Player) models.Player {
	c := p
	c.Positions = append([]string(nil), p.Positions...)
	if p.Rankings != nil {
		c.Rankings = make(map[string]models.SourceRank, len(p.Rankings))
		for k, v := range p.Rankings {
			c.Rankings[k] = v
		}
	}
	if p.Projections != nil {
		c.Projections = make(map[string]models.StatLine, len(p.Projections))
		for k, line := range p.Projections {
			cl := make(models.StatLine, len(line))
			for stat, val := range line {
				cl[stat] = val
			}
			c.Projections[k] = cl
		}
	}
	if p.Scouting != nil {
		s := *p.Scouting
		c.Scouting = &s
	}
	return c
}

func setADP(p *models.Player, source string, adp float64) {
	if p.Rankings == nil {
		p.Rankings = make(map[string]models.SourceRank)
	}
	r := p.Rankings[source]
	r.ADP = models.FloatPtr(adp)
	p.Rankings[source] = r
}
