package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/models"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/risk"
)

// DefaultTTL is how long a risk assessment stays cached
const DefaultTTL = 300 * time.Second

// RiskCache stores risk assessments keyed by player fingerprint. Implementations
// treat backend failures as misses; the caller recomputes.
type RiskCache interface {
	Get(ctx context.Context, key string) (risk.Assessment, bool)
	Set(ctx context.Context, key string, a risk.Assessment)
	Close() error
}

// Key fingerprints a player record under a tuning generation, so any change to the
// player's data or a tuning reload produces a new key
func Key(generation uint64, p models.Player) string {
	h := fnv.New64a()
	// json.Marshal sorts map keys, so equal players hash equally
	data, err := json.Marshal(p)
	if err != nil {
		data = []byte(p.ID)
	}
	h.Write(data)
	return fmt.Sprintf("risk:%d:%s:%016x", generation, p.ID, h.Sum64())
}
