package vorp

import (
	"sort"

	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/models"
)

// Config describes the league the replacement level is computed for
type Config struct {
	Categories  []models.Category
	RosterSlots map[string]int
	NumTeams    int
}

// SurplusValue is a player's value over the replacement player at their best position.
// ReplacementZ and Surplus are nil for players without usable projections.
type SurplusValue struct {
	PlayerID     string             `json:"playerId"`
	Position     string             `json:"position"`
	ZScores      map[string]float64 `json:"zScores,omitempty"`
	TotalZ       float64            `json:"totalZ"`
	ReplacementZ *float64           `json:"replacementZ,omitempty"`
	Surplus      *float64           `json:"surplus,omitempty"`
}

// Calculator computes z-scores and surplus values over an available pool
type Calculator struct {
	cfg Config
}

func NewCalculator(cfg Config) *Calculator {
	if cfg.NumTeams <= 0 {
		cfg.NumTeams = 12
	}
	if cfg.RosterSlots == nil {
		cfg.RosterSlots = models.DefaultRosterSlots()
	}
	if cfg.Categories == nil {
		cfg.Categories = models.DefaultCategories()
	}
	return &Calculator{cfg: cfg}
}

// ReplacementDepth is N in "the Nth best available player at the position"
func (c *Calculator) ReplacementDepth(pos string) int {
	slots, ok := c.cfg.RosterSlots[pos]
	if !ok || slots <= 0 {
		slots = 1
	}
	return slots * c.cfg.NumTeams
}

// Compute returns a SurplusValue for every player in the pool, keyed by player ID
func (c *Calculator) Compute(pool []models.Player) map[string]SurplusValue {
	out := make(map[string]SurplusValue, len(pool))

	peers := make(map[string][]int)
	var posOrder []string
	for i := range pool {
		p := &pool[i]
		if !p.HasProjection() {
			out[p.ID] = SurplusValue{PlayerID: p.ID, Position: p.PrimaryPosition()}
			continue
		}
		pos := p.PrimaryPosition()
		if _, seen := peers[pos]; !seen {
			posOrder = append(posOrder, pos)
		}
		peers[pos] = append(peers[pos], i)
	}

	zs := make(map[int]map[string]float64)
	totals := make(map[int]float64)
	for _, pos := range posOrder {
		members := peers[pos]
		group := models.Batting
		if pool[members[0]].IsPitcher() {
			group = models.Pitching
		}
		for _, idx := range members {
			zs[idx] = make(map[string]float64)
		}
		for _, cat := range c.cfg.Categories {
			if cat.Group != group {
				continue
			}
			c.scoreCategory(pool, members, cat, zs)
		}
		for _, idx := range members {
			total := 0.0
			for _, cat := range c.cfg.Categories {
				total += zs[idx][cat.ID]
			}
			totals[idx] = total
		}
	}

	replacement := c.replacementLevels(pool, totals)

	for idx, total := range totals {
		p := &pool[idx]
		sv := SurplusValue{PlayerID: p.ID, Position: p.PrimaryPosition(), ZScores: zs[idx], TotalZ: total}
		for _, pos := range positions(p) {
			repl, ok := replacement[pos]
			if !ok {
				continue
			}
			s := total - repl
			if sv.Surplus == nil || s > *sv.Surplus {
				r := repl
				sv.Surplus, sv.ReplacementZ, sv.Position = &s, &r, pos
			}
		}
		out[p.ID] = sv
	}
	return out
}

// scoreCategory writes each member's z-score for one category. Members without
// the stat, or groups too small to have a spread, score 0.
func (c *Calculator) scoreCategory(pool []models.Player, members []int, cat models.Category, zs map[int]map[string]float64) {
	vals := make(map[int]float64, len(members))
	var xs []float64
	for _, idx := range members {
		if v, ok := pool[idx].Projected(cat.Stat); ok {
			vals[idx] = v
			xs = append(xs, v)
		}
	}
	mean, sd := models.Mean(xs), models.StdDev(xs)
	for _, idx := range members {
		v, ok := vals[idx]
		if !ok || sd == 0 {
			zs[idx][cat.ID] = 0
			continue
		}
		z := (v - mean) / sd
		if cat.LowerIsBetter {
			z = -z
		}
		zs[idx][cat.ID] = z
	}
}

func (c *Calculator) replacementLevels(pool []models.Player, totals map[int]float64) map[string]float64 {
	eligible := make(map[string][]int)
	for idx := range totals {
		for _, pos := range positions(&pool[idx]) {
			eligible[pos] = append(eligible[pos], idx)
		}
	}
	levels := make(map[string]float64, len(eligible))
	for pos, idxs := range eligible {
		sort.Slice(idxs, func(i, j int) bool {
			a, b := idxs[i], idxs[j]
			if totals[a] != totals[b] {
				return totals[a] > totals[b]
			}
			return pool[a].ID < pool[b].ID
		})
		n := c.ReplacementDepth(pos)
		if n > len(idxs) {
			n = len(idxs)
		}
		levels[pos] = totals[idxs[n-1]]
	}
	return levels
}

// positions lists where a player can be compared against replacement. A player
// with no listed position competes at the primary position fallback.
func positions(p *models.Player) []string {
	if len(p.Positions) == 0 {
		return []string{p.PrimaryPosition()}
	}
	return p.Positions
}
