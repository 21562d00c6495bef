package scarcity

import (
	"fmt"
	"sort"

	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/models"
)

// Urgency describes how soon a position should be addressed
type Urgency string

const (
	Critical Urgency = "critical"
	High     Urgency = "high"
	Moderate Urgency = "moderate"
	Low      Urgency = "low"
)

func (u Urgency) level() int {
	switch u {
	case Critical:
		return 3
	case High:
		return 2
	case Moderate:
		return 1
	}
	return 0
}

// Config tunes the tracker
type Config struct {
	// Positions tracked, in display order
	Positions []string `toml:"positions"`
	// EliteTierSize is the number of tier-1 players at a position in a full pool
	EliteTierSize map[string]int `toml:"elite_tier_size"`
	// EliteRankCutoff marks a player elite at a position when their consensus
	// rank is at or below it and no explicit tier is set
	EliteRankCutoff map[string]float64 `toml:"elite_rank_cutoff"`
	// PositionWeight scales how strongly a position reacts to depletion
	PositionWeight map[string]float64 `toml:"position_weight"`
	Ceiling        float64            `toml:"ceiling"`
	// NoNeedDamping is the share of the multiplier's excess kept when a team has no open slot
	NoNeedDamping float64 `toml:"no_need_damping"`
	DropoffGap    float64 `toml:"dropoff_gap"`
	Top100        float64 `toml:"top_100"`
}

// DefaultConfig returns standard mixed-league scarcity settings
func DefaultConfig() Config {
	return Config{
		Positions: []string{"C", "1B", "2B", "3B", "SS", "OF", "SP", "RP"},
		EliteTierSize: map[string]int{
			"C": 5, "1B": 8, "2B": 8, "3B": 8, "SS": 8, "OF": 15, "SP": 12, "RP": 8,
		},
		EliteRankCutoff: map[string]float64{
			"C": 90, "1B": 60, "2B": 70, "3B": 60, "SS": 50, "OF": 45, "SP": 50, "RP": 120,
		},
		PositionWeight: map[string]float64{
			"C": 1.0, "SS": 0.9, "2B": 0.6, "SP": 0.6, "3B": 0.5, "OF": 0.4, "1B": 0.3, "RP": 0.3,
		},
		Ceiling:       1.5,
		NoNeedDamping: 0.25,
		DropoffGap:    15,
		Top100:        100,
	}
}

// Position is the scarcity picture at one roster position
type Position struct {
	Position        string  `json:"position"`
	EliteRemaining  int     `json:"eliteRemaining"`
	EliteTierSize   int     `json:"eliteTierSize"`
	Top100Remaining int     `json:"top100Remaining"`
	Available       int     `json:"available"`
	EliteFraction   float64 `json:"eliteFraction"`
	Multiplier      float64 `json:"multiplier"`
	Urgency         Urgency `json:"urgency"`
	TierDropoff     bool    `json:"tierDropoff"`
	DropoffGap      float64 `json:"dropoffGap,omitempty"`
	Alert           string  `json:"alert,omitempty"`
}

// Snapshot is a full recomputation of scarcity over an available pool
type Snapshot struct {
	Positions  map[string]Position `json:"positions"`
	MostScarce []string            `json:"mostScarce"`
	Alerts     []string            `json:"alerts,omitempty"`
}

// Multiplier returns the best multiplier across the player's eligible positions, or 1.0
func (s Snapshot) Multiplier(p models.Player) float64 {
	best := 1.0
	for _, pos := range p.Positions {
		if ps, ok := s.Positions[pos]; ok && ps.Multiplier > best {
			best = ps.Multiplier
		}
	}
	return best
}

// Tracker computes scarcity snapshots. It is stateless; every call rebuilds from the pool.
type Tracker struct {
	cfg Config
}

func NewTracker(cfg Config) *Tracker {
	return &Tracker{cfg: cfg}
}

// Compute builds a snapshot from the available pool. need maps position to the
// requesting team's open slots there; positions absent from need are not adjusted.
func (t *Tracker) Compute(pool []models.Player, need map[string]int) Snapshot {
	snap := Snapshot{Positions: make(map[string]Position, len(t.cfg.Positions))}

	for _, pos := range t.cfg.Positions {
		ps := t.position(pos, pool)
		if open, ok := need[pos]; ok && open <= 0 {
			ps.Multiplier = 1 + (ps.Multiplier-1)*t.cfg.NoNeedDamping
		}
		snap.Positions[pos] = ps
		if ps.Alert != "" {
			snap.Alerts = append(snap.Alerts, ps.Alert)
		}
	}

	order := make([]string, len(t.cfg.Positions))
	copy(order, t.cfg.Positions)
	index := make(map[string]int, len(order))
	for i, pos := range order {
		index[pos] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := snap.Positions[order[i]], snap.Positions[order[j]]
		if a.Urgency.level() != b.Urgency.level() {
			return a.Urgency.level() > b.Urgency.level()
		}
		if a.Multiplier != b.Multiplier {
			return a.Multiplier > b.Multiplier
		}
		return index[order[i]] < index[order[j]]
	})
	snap.MostScarce = order
	return snap
}

func (t *Tracker) position(pos string, pool []models.Player) Position {
	ps := Position{Position: pos, EliteTierSize: t.cfg.EliteTierSize[pos]}

	var eliteRanks, otherRanks []float64
	for i := range pool {
		p := &pool[i]
		if !p.EligibleAt(pos) {
			continue
		}
		ps.Available++
		ecr, hasRank := p.ConsensusRank()
		if hasRank && ecr <= t.cfg.Top100 {
			ps.Top100Remaining++
		}
		if t.isElite(p, pos, ecr, hasRank) {
			ps.EliteRemaining++
			if hasRank {
				eliteRanks = append(eliteRanks, ecr)
			}
		} else if hasRank {
			otherRanks = append(otherRanks, ecr)
		}
	}

	ps.EliteFraction = 1
	if ps.EliteTierSize > 0 {
		ps.EliteFraction = models.Clamp(float64(ps.EliteRemaining)/float64(ps.EliteTierSize), 0, 1)
	}

	weight := t.cfg.PositionWeight[pos]
	ps.Multiplier = 1 + (t.cfg.Ceiling-1)*weight*(1-ps.EliteFraction)

	if ps.EliteRemaining > 0 && ps.EliteRemaining <= 2 && len(eliteRanks) > 0 && len(otherRanks) > 0 {
		sort.Float64s(eliteRanks)
		sort.Float64s(otherRanks)
		gap := otherRanks[0] - eliteRanks[len(eliteRanks)-1]
		if gap >= t.cfg.DropoffGap {
			ps.TierDropoff = true
			ps.DropoffGap = gap
		}
	}

	ps.Urgency = t.urgency(ps)
	switch {
	case ps.TierDropoff:
		ps.Alert = fmt.Sprintf("%s: only %d elite left before a %.0f-rank dropoff", pos, ps.EliteRemaining, ps.DropoffGap)
	case ps.Urgency == Critical && ps.EliteTierSize > 0:
		ps.Alert = fmt.Sprintf("%s: %d of %d elite remaining", pos, ps.EliteRemaining, ps.EliteTierSize)
	}
	return ps
}

func (t *Tracker) isElite(p *models.Player, pos string, ecr float64, hasRank bool) bool {
	if p.Tier != nil {
		return *p.Tier == 1 && p.PrimaryPosition() == pos
	}
	cutoff, ok := t.cfg.EliteRankCutoff[pos]
	return ok && hasRank && ecr <= cutoff
}

func (t *Tracker) urgency(ps Position) Urgency {
	if ps.EliteTierSize <= 0 {
		return Low
	}
	switch {
	case ps.EliteRemaining <= 1 || ps.EliteFraction <= 0.2:
		return Critical
	case ps.EliteRemaining <= 2 || ps.EliteFraction <= 0.4 || ps.TierDropoff:
		return High
	case ps.EliteFraction <= 0.7:
		return Moderate
	}
	return Low
}

// PositionNeed turns filled/total roster slots into a 0-100 need score
func PositionNeed(filled, slots int) float64 {
	if slots <= 0 {
		return 0
	}
	open := slots - filled
	if open <= 0 {
		return 0
	}
	return float64(open) / float64(slots) * 100
}
