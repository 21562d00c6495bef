package models

import "sort"

// InjuryStatus is the current designation reported for a player
type InjuryStatus string

const (
	InjuryNone InjuryStatus = ""
	InjuryDTD  InjuryStatus = "DTD"
	InjuryIL10 InjuryStatus = "IL-10"
	InjuryIL15 InjuryStatus = "IL-15"
	InjuryIL60 InjuryStatus = "IL-60"
	InjuryOut  InjuryStatus = "OUT"
)

// SourceRank is one ranking source's view of a player. Any field may be absent.
type SourceRank struct {
	Rank      *int     `json:"rank,omitempty"`
	ADP       *float64 `json:"adp,omitempty"`
	BestRank  *int     `json:"bestRank,omitempty"`
	WorstRank *int     `json:"worstRank,omitempty"`
}

// StatLine maps a stat key (see stats.go) to a projected value
type StatLine map[string]float64

// ScoutingGrades are 20-80 scale tool grades for a prospect
type ScoutingGrades struct {
	Hit           *int   `json:"hit,omitempty"`
	Power         *int   `json:"power,omitempty"`
	Run           *int   `json:"run,omitempty"`
	Field         *int   `json:"field,omitempty"`
	Arm           *int   `json:"arm,omitempty"`
	FutureValue   *int   `json:"futureValue,omitempty"`
	Level         string `json:"level,omitempty"`
	InjuryHistory bool   `json:"injuryHistory,omitempty"`
}

// Player represents a draftable baseball player and everything the engine knows about them
type Player struct {
	ID           string                `json:"id"`
	Name         string                `json:"name"`
	Positions    []string              `json:"positions"`
	Team         string                `json:"team"`
	Age          *int                  `json:"age,omitempty"`
	CareerPA     *int                  `json:"careerPA,omitempty"`
	CareerIP     *float64              `json:"careerIP,omitempty"`
	Injured      bool                  `json:"injured"`
	InjuryStatus InjuryStatus          `json:"injuryStatus,omitempty"`
	ECR          *float64              `json:"ecr,omitempty"`
	Tier         *int                  `json:"tier,omitempty"`
	Rankings     map[string]SourceRank `json:"rankings,omitempty"`
	Projections  map[string]StatLine   `json:"projections,omitempty"`
	IsProspect   bool                  `json:"isProspect"`
	ProspectRank *int                  `json:"prospectRank,omitempty"`
	Scouting     *ScoutingGrades       `json:"scouting,omitempty"`
}

// PrimaryPosition returns the first listed position, or "UTIL" when none is listed
func (p *Player) PrimaryPosition() string {
	if len(p.Positions) == 0 {
		return "UTIL"
	}
	return p.Positions[0]
}

// EligibleAt reports whether the player can fill the given roster position
func (p *Player) EligibleAt(pos string) bool {
	for _, x := range p.Positions {
		if x == pos {
			return true
		}
	}
	return false
}

// IsPitcher reports whether the player's primary position is SP or RP
func (p *Player) IsPitcher() bool {
	pos := p.PrimaryPosition()
	return pos == "SP" || pos == "RP" || pos == "P"
}

// RankingSources returns ranking source names in sorted order
func (p *Player) RankingSources() []string {
	keys := make([]string, 0, len(p.Rankings))
	for k := range p.Rankings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ProjectionSources returns projection source names in sorted order
func (p *Player) ProjectionSources() []string {
	keys := make([]string, 0, len(p.Projections))
	for k := range p.Projections {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Ranks collects every source rank that is present, in source order
func (p *Player) Ranks() []float64 {
	var out []float64
	for _, src := range p.RankingSources() {
		if r := p.Rankings[src].Rank; r != nil {
			out = append(out, float64(*r))
		}
	}
	return out
}

// ConsensusRank returns the explicit ECR when set, otherwise the mean of source ranks
func (p *Player) ConsensusRank() (float64, bool) {
	if p.ECR != nil {
		return *p.ECR, true
	}
	ranks := p.Ranks()
	if len(ranks) == 0 {
		return 0, false
	}
	return Mean(ranks), true
}

// ADP returns the mean ADP across sources that report one
func (p *Player) ADP() (float64, bool) {
	var vals []float64
	for _, src := range p.RankingSources() {
		if a := p.Rankings[src].ADP; a != nil {
			vals = append(vals, *a)
		}
	}
	if len(vals) == 0 {
		return 0, false
	}
	return Mean(vals), true
}

// RankRange returns the best and worst rank seen across sources, using explicit
// best/worst fields when a source provides them
func (p *Player) RankRange() (best, worst float64, ok bool) {
	first := true
	consider := func(v float64) {
		if first {
			best, worst, first = v, v, false
			return
		}
		if v < best {
			best = v
		}
		if v > worst {
			worst = v
		}
	}
	for _, src := range p.RankingSources() {
		sr := p.Rankings[src]
		if sr.BestRank != nil {
			consider(float64(*sr.BestRank))
		}
		if sr.WorstRank != nil {
			consider(float64(*sr.WorstRank))
		}
		if sr.Rank != nil {
			consider(float64(*sr.Rank))
		}
	}
	return best, worst, !first
}

// Projected returns the mean projected value of a stat across sources
func (p *Player) Projected(stat string) (float64, bool) {
	vals := p.ProjectedValues(stat)
	if len(vals) == 0 {
		return 0, false
	}
	return Mean(vals), true
}

// ProjectedValues returns every source's projection of a stat, in source order
func (p *Player) ProjectedValues(stat string) []float64 {
	var vals []float64
	for _, src := range p.ProjectionSources() {
		if v, ok := p.Projections[src][stat]; ok {
			vals = append(vals, v)
		}
	}
	return vals
}

// HasProjection reports whether the player carries enough projected playing time to be valued
func (p *Player) HasProjection() bool {
	if p.IsPitcher() {
		ip, ok := p.Projected(StatIP)
		return ok && ip >= MinProjectedIP
	}
	pa, ok := p.Projected(StatPA)
	return ok && pa >= MinProjectedPA
}

// Team represents one drafting team's slot in a league
type Team struct {
	Slot  int    `json:"slot"`
	Name  string `json:"name"`
	Owner string `json:"owner,omitempty"`
}

// IntPtr and FloatPtr build optional fields
func IntPtr(v int) *int { return &v }

func FloatPtr(v float64) *float64 { return &v }
