package scarcity

import (
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/models"
)

// catcherPool builds n catchers ranked 10, 20, 30...
func catcherPool(n int) []models.Player {
	pool := make([]models.Player, 0, n)
	for i := 1; i <= n; i++ {
		pool = append(pool, models.Player{
			ID:        fmt.Sprintf("c%d", i),
			Positions: []string{"C"},
			ECR:       models.FloatPtr(float64(i * 10)),
		})
	}
	return pool
}

func TestComputeCounts(t *testing.T) {
	tr := NewTracker(DefaultConfig())
	snap := tr.Compute(catcherPool(12), nil)

	c := snap.Positions["C"]
	if c.Available != 12 {
		t.Errorf("available = %d, want 12", c.Available)
	}
	// cutoff 90 covers ranks 10..90
	if c.EliteRemaining != 9 {
		t.Errorf("elite remaining = %d, want 9", c.EliteRemaining)
	}
	if c.Top100Remaining != 10 {
		t.Errorf("top-100 remaining = %d, want 10", c.Top100Remaining)
	}
	if c.Multiplier != 1 {
		t.Errorf("full elite supply multiplier = %v, want 1", c.Multiplier)
	}
	if c.Urgency != Low {
		t.Errorf("urgency = %s, want low", c.Urgency)
	}
	if _, ok := snap.Positions["SS"]; !ok {
		t.Error("every configured position should be present even when empty")
	}
}

func TestMultiplierMonotonicAsEliteDepletes(t *testing.T) {
	tr := NewTracker(DefaultConfig())
	pool := catcherPool(12)

	prevMult := 0.0
	prevUrg := -1
	// draft the best remaining catcher one at a time
	for len(pool) > 0 {
		snap := tr.Compute(pool, nil)
		c := snap.Positions["C"]
		if c.Multiplier < prevMult {
			t.Fatalf("multiplier fell from %v to %v with %d left", prevMult, c.Multiplier, len(pool))
		}
		if c.Urgency.level() < prevUrg {
			t.Fatalf("urgency fell to %s with %d left", c.Urgency, len(pool))
		}
		if c.Multiplier > DefaultConfig().Ceiling {
			t.Fatalf("multiplier %v exceeds ceiling", c.Multiplier)
		}
		prevMult, prevUrg = c.Multiplier, c.Urgency.level()
		pool = pool[1:]
	}
	if prevUrg != Critical.level() {
		t.Errorf("exhausted position urgency = %d, want critical", prevUrg)
	}
}

func TestCatcherReactsMoreThanFirstBase(t *testing.T) {
	tr := NewTracker(DefaultConfig())
	var pool []models.Player
	// two elite at each position, deep supply of non-elite
	for i, pos := range []string{"C", "1B"} {
		for j := 0; j < 2; j++ {
			pool = append(pool, models.Player{
				ID: fmt.Sprintf("%s-e%d", pos, j), Positions: []string{pos},
				ECR: models.FloatPtr(float64(10 + i + j*2)),
			})
		}
	}
	snap := tr.Compute(pool, nil)
	if snap.Positions["C"].Multiplier <= snap.Positions["1B"].Multiplier {
		t.Errorf("catcher multiplier %v should exceed first base %v",
			snap.Positions["C"].Multiplier, snap.Positions["1B"].Multiplier)
	}
	pos := map[string]int{}
	for i, p := range snap.MostScarce {
		pos[p] = i
	}
	if pos["C"] > pos["1B"] {
		t.Errorf("most scarce = %v, want C ahead of 1B", snap.MostScarce)
	}
}

func TestNoOpenSlotDampsMultiplier(t *testing.T) {
	tr := NewTracker(DefaultConfig())
	pool := catcherPool(12)[6:]

	open := tr.Compute(pool, map[string]int{"C": 1}).Positions["C"].Multiplier
	full := tr.Compute(pool, map[string]int{"C": 0}).Positions["C"].Multiplier
	if !(full < open && full >= 1) {
		t.Errorf("no-need multiplier %v should sit between 1 and %v", full, open)
	}
}

func TestTierDropoff(t *testing.T) {
	tr := NewTracker(DefaultConfig())
	pool := []models.Player{
		{ID: "s1", Positions: []string{"SS"}, ECR: models.FloatPtr(12)},
		{ID: "s2", Positions: []string{"SS"}, ECR: models.FloatPtr(20)},
		{ID: "s3", Positions: []string{"SS"}, ECR: models.FloatPtr(85)},
	}
	ss := tr.Compute(pool, nil).Positions["SS"]
	if !ss.TierDropoff {
		t.Fatalf("expected a dropoff between rank 20 and 85: %+v", ss)
	}
	if ss.Alert == "" {
		t.Error("dropoff should raise an alert")
	}
	if ss.Urgency.level() < High.level() {
		t.Errorf("urgency = %s, want at least high", ss.Urgency)
	}
}

func TestExplicitTierWins(t *testing.T) {
	tr := NewTracker(DefaultConfig())
	pool := []models.Player{
		{ID: "a", Positions: []string{"RP"}, Tier: models.IntPtr(1), ECR: models.FloatPtr(300)},
		{ID: "b", Positions: []string{"RP"}, Tier: models.IntPtr(2), ECR: models.FloatPtr(40)},
	}
	if got := tr.Compute(pool, nil).Positions["RP"].EliteRemaining; got != 1 {
		t.Errorf("elite remaining = %d, want 1 (explicit tier only)", got)
	}
}

func TestComputeIsPure(t *testing.T) {
	tr := NewTracker(DefaultConfig())
	pool := catcherPool(7)
	need := map[string]int{"C": 1, "SS": 0}
	first := tr.Compute(pool, need)
	for i := 0; i < 10; i++ {
		if got := tr.Compute(pool, need); !reflect.DeepEqual(got, first) {
			t.Fatal("compute returned different snapshots for identical input")
		}
	}
}

func TestEmptyPool(t *testing.T) {
	snap := NewTracker(DefaultConfig()).Compute(nil, nil)
	for pos, ps := range snap.Positions {
		if ps.Urgency != Critical {
			t.Errorf("%s urgency on empty pool = %s, want critical", pos, ps.Urgency)
		}
	}
}

func TestPositionNeed(t *testing.T) {
	tests := []struct {
		filled, slots int
		want          float64
	}{
		{0, 3, 100},
		{1, 3, 100.0 * 2 / 3},
		{3, 3, 0},
		{4, 3, 0},
		{0, 0, 0},
	}
	for _, tt := range tests {
		if got := PositionNeed(tt.filled, tt.slots); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("PositionNeed(%d, %d) = %v, want %v", tt.filled, tt.slots, got, tt.want)
		}
	}
}
