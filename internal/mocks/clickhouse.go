package mocks

import (
	"context"
	"math"
	"math/rand"
	"sync"

	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/logger"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/models"
)

// MockADPSource stands in for ClickHouse in local development. Market ADP drifts
// within 10% of each player's listed ADP (or consensus rank) on every fetch.
type MockADPSource struct {
	mu   sync.Mutex
	base map[string]float64
	rng  *rand.Rand
}

// NewMockADPSource seeds the mock from a player pool
func NewMockADPSource(players []models.Player, seed int64) *MockADPSource {
	logger.Info("Using MOCK ClickHouse ADP source for local development")

	base := make(map[string]float64, len(players))
	for _, p := range players {
		if adp, ok := p.ADP(); ok {
			base[p.ID] = adp
		} else if ecr, ok := p.ConsensusRank(); ok {
			base[p.ID] = ecr
		}
	}
	return &MockADPSource{base: base, rng: rand.New(rand.NewSource(seed))}
}

func (m *MockADPSource) FetchADP(_ context.Context) (map[string]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]float64, len(m.base))
	for id, b := range m.base {
		drift := (m.rng.Float64()*0.2 - 0.1) * b
		out[id] = math.Max(1, math.Round((b+drift)*10)/10)
	}
	return out, nil
}

// Close is a no-op for the mock
func (m *MockADPSource) Close() error {
	return nil
}
