package needs

import (
	"sort"

	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/models"
)

// Priority ranks how urgently a category needs help
type Priority string

const (
	High   Priority = "high"
	Medium Priority = "medium"
	Low    Priority = "low"
)

// SpecialistRule flags players whose projection of one stat reaches a hard threshold
type SpecialistRule struct {
	Category  string  `toml:"category" json:"category"`
	Stat      string  `toml:"stat" json:"stat"`
	Threshold float64 `toml:"threshold" json:"threshold"`
}

// Config tunes the analyzer
type Config struct {
	Categories    []models.Category `toml:"-"`
	HighDeficit   float64           `toml:"high_deficit"`
	MediumDeficit float64           `toml:"medium_deficit"`
	Specialists   []SpecialistRule  `toml:"specialists"`
}

// DefaultConfig uses the standard categories and specialist thresholds
func DefaultConfig() Config {
	return Config{
		Categories:    models.DefaultCategories(),
		HighDeficit:   0.25,
		MediumDeficit: 0.10,
		Specialists: []SpecialistRule{
			{Category: "SB", Stat: models.StatSB, Threshold: 15},
			{Category: "HR", Stat: models.StatHR, Threshold: 25},
			{Category: "AVG", Stat: models.StatAVG, Threshold: 0.280},
			{Category: "K", Stat: models.StatK, Threshold: 150},
			{Category: "SV", Stat: models.StatSaves, Threshold: 20},
		},
	}
}

// DefaultTargets are winning category totals for a 12-team league
func DefaultTargets() map[string]float64 {
	return map[string]float64{
		"R": 900, "HR": 280, "RBI": 850, "SB": 120, "AVG": 0.265, "OPS": 0.780,
		"K": 1350, "QS": 95, "W": 85, "SV": 70, "ERA": 3.70, "WHIP": 1.18,
	}
}

// ScaleTargets adjusts counting-stat targets linearly from the 12-team baseline.
// Rate targets are unchanged.
func ScaleTargets(base map[string]float64, numTeams int, cats []models.Category) map[string]float64 {
	return scaleCounting(base, float64(max(numTeams, 1))/12, cats)
}

// ProRate scales counting targets to the share of the roster already filled,
// so a half-drafted team is measured against half a season's totals.
func ProRate(targets map[string]float64, filled, rosterSize int, cats []models.Category) map[string]float64 {
	if rosterSize <= 0 {
		return scaleCounting(targets, 1, cats)
	}
	return scaleCounting(targets, models.Clamp(float64(filled)/float64(rosterSize), 0, 1), cats)
}

func scaleCounting(base map[string]float64, factor float64, cats []models.Category) map[string]float64 {
	rate := make(map[string]bool, len(cats))
	for _, c := range cats {
		rate[c.ID] = c.IsRate()
	}
	out := make(map[string]float64, len(base))
	for id, v := range base {
		if rate[id] {
			out[id] = v
		} else {
			out[id] = v * factor
		}
	}
	return out
}

// CategoryNeed compares a team's projected total in one category to its target
type CategoryNeed struct {
	Category      string   `json:"category"`
	Projected     float64  `json:"projected"`
	Target        float64  `json:"target"`
	Gap           float64  `json:"gap"`
	DeficitPct    float64  `json:"deficitPct"`
	Priority      Priority `json:"priority"`
	LowerIsBetter bool     `json:"lowerIsBetter"`
}

// PickImpact is the before/after view of adding one player to a roster
type PickImpact struct {
	PlayerID string         `json:"playerId"`
	Before   []CategoryNeed `json:"before"`
	After    []CategoryNeed `json:"after"`
	// Reduction is the drop in deficit percentage per category; negative means the pick hurts
	Reduction map[string]float64 `json:"reduction"`
}

// Analyzer aggregates roster projections and measures them against targets
type Analyzer struct {
	cfg Config
}

func NewAnalyzer(cfg Config) *Analyzer {
	if cfg.Categories == nil {
		cfg.Categories = models.DefaultCategories()
	}
	return &Analyzer{cfg: cfg}
}

// Categories returns the configured scoring categories
func (a *Analyzer) Categories() []models.Category { return a.cfg.Categories }

// Totals returns the roster's projected total per category. Rate categories
// without any contributing volume are omitted.
func (a *Analyzer) Totals(roster []models.Player) map[string]float64 {
	out := make(map[string]float64, len(a.cfg.Categories))
	for _, cat := range a.cfg.Categories {
		if v, ok := a.total(roster, cat); ok {
			out[cat.ID] = v
		}
	}
	return out
}

func (a *Analyzer) total(roster []models.Player, cat models.Category) (float64, bool) {
	if !cat.IsRate() {
		sum := 0.0
		for i := range roster {
			p := &roster[i]
			if groupOf(p) != cat.Group {
				continue
			}
			if v, ok := p.Projected(cat.Stat); ok {
				sum += v
			}
		}
		return sum, true
	}

	weighted, volume := 0.0, 0.0
	for i := range roster {
		p := &roster[i]
		if groupOf(p) != cat.Group {
			continue
		}
		v, okV := p.Projected(cat.Stat)
		vol, okVol := p.Projected(cat.Volume)
		if !okV || !okVol || vol <= 0 {
			continue
		}
		weighted += v * vol
		volume += vol
	}
	if volume == 0 {
		return 0, false
	}
	return weighted / volume, true
}

func groupOf(p *models.Player) models.Group {
	if p.IsPitcher() {
		return models.Pitching
	}
	return models.Batting
}

// Needs measures the roster against targets, largest deficit first.
// Categories without a target are skipped.
func (a *Analyzer) Needs(roster []models.Player, targets map[string]float64) []CategoryNeed {
	order := make(map[string]int, len(a.cfg.Categories))
	var out []CategoryNeed
	for i, cat := range a.cfg.Categories {
		target, ok := targets[cat.ID]
		if !ok {
			continue
		}
		order[cat.ID] = i
		projected, known := a.total(roster, cat)
		if !known {
			// no volume yet: treat a rate category as on target
			projected = target
		}
		gap := target - projected
		if cat.LowerIsBetter {
			gap = projected - target
		}
		deficit := 0.0
		if target > 0 && gap > 0 {
			deficit = gap / target
		}
		out = append(out, CategoryNeed{
			Category:      cat.ID,
			Projected:     projected,
			Target:        target,
			Gap:           gap,
			DeficitPct:    deficit,
			Priority:      a.priority(deficit),
			LowerIsBetter: cat.LowerIsBetter,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DeficitPct != out[j].DeficitPct {
			return out[i].DeficitPct > out[j].DeficitPct
		}
		return order[out[i].Category] < order[out[j].Category]
	})
	return out
}

func (a *Analyzer) priority(deficit float64) Priority {
	switch {
	case deficit >= a.cfg.HighDeficit:
		return High
	case deficit >= a.cfg.MediumDeficit:
		return Medium
	}
	return Low
}

// SimulatePick evaluates adding candidate to roster. The caller's roster is never modified.
func (a *Analyzer) SimulatePick(roster []models.Player, candidate models.Player, targets map[string]float64) PickImpact {
	with := make([]models.Player, len(roster), len(roster)+1)
	copy(with, roster)
	with = append(with, candidate)

	before := a.Needs(roster, targets)
	after := a.Needs(with, targets)

	afterBy := make(map[string]CategoryNeed, len(after))
	for _, n := range after {
		afterBy[n.Category] = n
	}
	reduction := make(map[string]float64, len(before))
	for _, n := range before {
		reduction[n.Category] = n.DeficitPct - afterBy[n.Category].DeficitPct
	}
	return PickImpact{PlayerID: candidate.ID, Before: before, After: after, Reduction: reduction}
}

// Specialties lists the categories a player single-handedly helps, in rule order
func (a *Analyzer) Specialties(p models.Player) []string {
	var out []string
	for _, rule := range a.cfg.Specialists {
		if v, ok := p.Projected(rule.Stat); ok && v >= rule.Threshold {
			out = append(out, rule.Category)
		}
	}
	return out
}

// IsSpecialist reports whether the player qualifies as a specialist in the category
func (a *Analyzer) IsSpecialist(p models.Player, category string) bool {
	for _, c := range a.Specialties(p) {
		if c == category {
			return true
		}
	}
	return false
}
