package risk

import (
	"fmt"
	"math"
	"sort"

	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/models"
)

// ProspectWeights control the prospect composite
type ProspectWeights struct {
	HitTool      float64 `toml:"hit_tool" json:"hitTool"`
	AgeRelative  float64 `toml:"age_relative" json:"ageRelative"`
	PositionBust float64 `toml:"position_bust" json:"positionBust"`
	Pitcher      float64 `toml:"pitcher" json:"pitcher"`
	Injury       float64 `toml:"injury" json:"injury"`
}

func (w ProspectWeights) sum() float64 {
	return w.HitTool + w.AgeRelative + w.PositionBust + w.Pitcher + w.Injury
}

// ProspectConfig tunes the minor-league risk model
type ProspectConfig struct {
	Weights ProspectWeights `toml:"weights"`
	// BustRates are historical failure rates by primary position, 0-1
	BustRates       map[string]float64 `toml:"bust_rates"`
	DefaultBustRate float64            `toml:"default_bust_rate"`
	// ExpectedAge is the typical age at each level
	ExpectedAge      map[string]int `toml:"expected_age"`
	OldForLevelSlope float64        `toml:"old_for_level_slope"`
	YoungForLevel    float64        `toml:"young_for_level_slope"`
	// HitterNoGrade and PitcherNoGrade stand in for a missing hit grade
	HitterNoGrade  float64            `toml:"hitter_no_grade"`
	PitcherNoGrade float64            `toml:"pitcher_no_grade"`
	PitcherPenalty float64            `toml:"pitcher_penalty"`
	InjuryHistory  float64            `toml:"injury_history"`
	InjuryStatus   map[string]float64 `toml:"injury_status"`
	// StandoutGrade is the lowest tool grade called out in the notes
	StandoutGrade int `toml:"standout_grade"`
}

// DefaultProspectConfig returns the standard prospect model
func DefaultProspectConfig() ProspectConfig {
	return ProspectConfig{
		Weights: ProspectWeights{
			HitTool:      0.35,
			AgeRelative:  0.15,
			PositionBust: 0.15,
			Pitcher:      0.20,
			Injury:       0.15,
		},
		BustRates: map[string]float64{
			"C": 0.65, "1B": 0.45, "2B": 0.50, "3B": 0.48,
			"SS": 0.40, "OF": 0.52, "DH": 0.50,
			"SP": 0.55, "RP": 0.60,
		},
		DefaultBustRate: 0.50,
		ExpectedAge: map[string]int{
			"R": 18, "A": 19, "A+": 20, "AA": 22, "AAA": 24, "MLB": 26,
		},
		OldForLevelSlope: 15,
		YoungForLevel:    10,
		HitterNoGrade:    60,
		PitcherNoGrade:   50,
		PitcherPenalty:   25 * 1.25,
		InjuryHistory:    60,
		InjuryStatus: map[string]float64{
			string(models.InjuryDTD):  15,
			string(models.InjuryIL10): 25,
			string(models.InjuryIL15): 25,
			string(models.InjuryIL60): 40,
			string(models.InjuryOut):  40,
		},
		StandoutGrade: 60,
	}
}

// ProspectComponents are the per-factor prospect scores, 0-100 where higher is riskier
type ProspectComponents struct {
	HitTool        float64 `json:"hitTool"`
	AgeRelative    float64 `json:"ageRelative"`
	PositionBust   float64 `json:"positionBust"`
	PitcherPenalty float64 `json:"pitcherPenalty"`
	Injury         float64 `json:"injury"`
}

// ProspectAssessment is the development risk of a prospect, separate from the
// big-league composite
type ProspectAssessment struct {
	Components ProspectComponents `json:"components"`
	Score      float64            `json:"score"`
	Factors    []string           `json:"factors,omitempty"`
	// Tools lists standout scouting grades, best first
	Tools []string `json:"tools,omitempty"`
}

// AssessProspect scores the development risk of a prospect from scouting grades,
// age for level, position history and health
func (e *Engine) AssessProspect(p models.Player) ProspectAssessment {
	cfg := e.cfg.Prospect
	pos := p.PrimaryPosition()
	bust, ok := cfg.BustRates[pos]
	if !ok {
		bust = cfg.DefaultBustRate
	}

	c := ProspectComponents{
		HitTool:        e.hitToolRisk(p),
		AgeRelative:    e.ageRelativeRisk(p),
		PositionBust:   models.Clamp(bust*100, 0, 100),
		PitcherPenalty: 0,
		Injury:         e.prospectInjury(p),
	}
	if p.IsPitcher() {
		c.PitcherPenalty = models.Clamp(cfg.PitcherPenalty, 0, 100)
	}

	w := cfg.Weights
	score := Neutral
	if total := w.sum(); total > 0 {
		score = (c.HitTool*w.HitTool +
			c.AgeRelative*w.AgeRelative +
			c.PositionBust*w.PositionBust +
			c.PitcherPenalty*w.Pitcher +
			c.Injury*w.Injury) / total
	}
	score = math.Round(models.Clamp(score, 0, 100)*10) / 10

	a := ProspectAssessment{Components: c, Score: score, Tools: e.standoutTools(p)}
	if c.HitTool > 50 {
		if g := p.Scouting; g != nil && g.Hit != nil {
			a.Factors = append(a.Factors, fmt.Sprintf("Below-average hit tool (%d grade)", *g.Hit))
		} else if !p.IsPitcher() {
			a.Factors = append(a.Factors, "Hit tool concerns - limited data")
		}
	}
	switch {
	case c.AgeRelative > 50:
		a.Factors = append(a.Factors, "Old for current level")
	case c.AgeRelative < 30 && p.Age != nil:
		a.Factors = append(a.Factors, fmt.Sprintf("Young for level (%d)", *p.Age))
	}
	if bust > 0.55 {
		a.Factors = append(a.Factors, fmt.Sprintf("High-risk position (%s: %.0f%% historical bust rate)", pos, bust*100))
	}
	if c.PitcherPenalty > 0 {
		a.Factors = append(a.Factors, fmt.Sprintf("Pitcher prospect penalty (+%.0f risk)", c.PitcherPenalty))
	}
	if c.Injury > 50 {
		a.Factors = append(a.Factors, "Significant injury history")
	}
	return a
}

// HitToolRisk maps a 20-80 hit grade linearly onto 100-0
func HitToolRisk(grade int) float64 {
	return models.Clamp(float64(80-grade)*100/60, 0, 100)
}

func (e *Engine) hitToolRisk(p models.Player) float64 {
	if p.Scouting != nil && p.Scouting.Hit != nil {
		return HitToolRisk(*p.Scouting.Hit)
	}
	if p.IsPitcher() {
		return e.cfg.Prospect.PitcherNoGrade
	}
	return e.cfg.Prospect.HitterNoGrade
}

// AgeForLevelRisk is 50 at the expected age, rising by oldSlope for each year
// older and falling by youngSlope for each year younger
func AgeForLevelRisk(age, expected int, oldSlope, youngSlope float64) float64 {
	diff := float64(age - expected)
	if diff > 0 {
		return math.Min(100, Neutral+diff*oldSlope)
	}
	return math.Max(0, Neutral+diff*youngSlope)
}

func (e *Engine) ageRelativeRisk(p models.Player) float64 {
	if p.Age == nil || p.Scouting == nil || p.Scouting.Level == "" {
		return Neutral
	}
	cfg := e.cfg.Prospect
	expected, ok := cfg.ExpectedAge[p.Scouting.Level]
	if !ok {
		expected = 22
	}
	return AgeForLevelRisk(*p.Age, expected, cfg.OldForLevelSlope, cfg.YoungForLevel)
}

func (e *Engine) prospectInjury(p models.Player) float64 {
	cfg := e.cfg.Prospect
	r := 0.0
	if p.Scouting != nil && p.Scouting.InjuryHistory {
		r += cfg.InjuryHistory
	}
	if p.Injured || p.InjuryStatus != models.InjuryNone {
		r += cfg.InjuryStatus[string(p.InjuryStatus)]
	}
	return models.Clamp(r, 0, 100)
}

func (e *Engine) standoutTools(p models.Player) []string {
	g := p.Scouting
	if g == nil || e.cfg.Prospect.StandoutGrade <= 0 {
		return nil
	}
	type tool struct {
		name  string
		grade *int
	}
	var out []tool
	for _, t := range []tool{{"hit", g.Hit}, {"power", g.Power}, {"speed", g.Run}, {"glove", g.Field}, {"arm", g.Arm}} {
		if t.grade != nil && *t.grade >= e.cfg.Prospect.StandoutGrade {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return *out[i].grade > *out[j].grade })

	notes := make([]string, len(out))
	for i, t := range out {
		notes[i] = fmt.Sprintf("%d %s", *t.grade, t.name)
	}
	return notes
}
