package risk

import (
	"fmt"
	"math"

	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/models"
)

// Neutral is the score used for any component whose inputs are missing
const Neutral = 50.0

// Classification thresholds consumed by the recommendation lists
const (
	SafeBelow  = 30.0
	RiskyAbove = 60.0
)

// Classification buckets a composite risk score
type Classification string

const (
	Safe     Classification = "safe"
	Moderate Classification = "moderate"
	Risky    Classification = "risky"
)

// Classify maps a composite score onto safe (<30), moderate (30-60) or risky (>60)
func Classify(score float64) Classification {
	switch {
	case score < SafeBelow:
		return Safe
	case score > RiskyAbove:
		return Risky
	default:
		return Moderate
	}
}

// Components are the six per-factor scores, each 0-100 where higher is riskier
type Components struct {
	RankVariance       float64 `json:"rankVariance"`
	Injury             float64 `json:"injury"`
	Experience         float64 `json:"experience"`
	ProjectionVariance float64 `json:"projectionVariance"`
	Age                float64 `json:"age"`
	ADPGap             float64 `json:"adpGap"`
}

// Assessment is the risk profile of a single player
type Assessment struct {
	PlayerID       string         `json:"playerId"`
	Components     Components     `json:"components"`
	Score          float64        `json:"score"`
	Classification Classification `json:"classification"`
	Factors        []string       `json:"factors,omitempty"`
	Upside         string         `json:"upside,omitempty"`
	// Prospect is set for minor leaguers only
	Prospect *ProspectAssessment `json:"prospect,omitempty"`
}

// NeutralAssessment is returned for players the engine has never seen
func NeutralAssessment(playerID string) Assessment {
	return Assessment{
		PlayerID: playerID,
		Components: Components{
			RankVariance: Neutral, Injury: Neutral, Experience: Neutral,
			ProjectionVariance: Neutral, Age: Neutral, ADPGap: Neutral,
		},
		Score:          Neutral,
		Classification: Classify(Neutral),
	}
}

// Engine computes risk assessments. It holds no mutable state and is safe for concurrent use.
type Engine struct {
	cfg Config
}

// NewEngine creates an engine with the given tuning
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Config returns the engine's tuning
func (e *Engine) Config() Config { return e.cfg }

// Assess scores one player
func (e *Engine) Assess(p models.Player) Assessment {
	c := Components{
		RankVariance:       e.rankVariance(p),
		Injury:             e.injury(p),
		Experience:         e.experience(p),
		ProjectionVariance: e.projectionVariance(p),
		Age:                e.age(p),
		ADPGap:             e.adpGap(p),
	}

	w := e.cfg.Weights
	total := w.sum()
	score := Neutral
	if total > 0 {
		score = (c.RankVariance*w.RankVariance +
			c.Injury*w.Injury +
			c.Experience*w.Experience +
			c.ProjectionVariance*w.ProjectionVariance +
			c.Age*w.Age +
			c.ADPGap*w.ADPGap) / total
	}
	score = models.Clamp(score, 0, 100)
	score = math.Round(score*10) / 10

	a := Assessment{
		PlayerID:       p.ID,
		Components:     c,
		Score:          score,
		Classification: Classify(score),
		Factors:        e.factors(p, c),
		Upside:         e.upside(p),
	}
	if p.IsProspect {
		pa := e.AssessProspect(p)
		a.Prospect = &pa
	}
	return a
}

// AssessAll scores every player in the pool, keyed by player ID
func (e *Engine) AssessAll(pool []models.Player) map[string]Assessment {
	out := make(map[string]Assessment, len(pool))
	for _, p := range pool {
		out[p.ID] = e.Assess(p)
	}
	return out
}

func (e *Engine) rankVariance(p models.Player) float64 {
	ranks := p.Ranks()
	if len(ranks) < 2 {
		return Neutral
	}
	mean := models.Mean(ranks)
	if mean <= 0 {
		return Neutral
	}
	return models.Clamp(models.StdDev(ranks)/mean*e.cfg.RankVarianceScale, 0, 100)
}

func (e *Engine) injury(p models.Player) float64 {
	if !p.Injured && p.InjuryStatus == models.InjuryNone {
		return 0
	}
	if v, ok := e.cfg.InjuryTiers[string(p.InjuryStatus)]; ok {
		return models.Clamp(v, 0, 100)
	}
	return models.Clamp(e.cfg.InjuryUnknown, 0, 100)
}

func (e *Engine) experience(p models.Player) float64 {
	tiers := e.cfg.HitterService
	var service float64
	known := false
	if p.IsPitcher() {
		tiers = e.cfg.PitcherService
		if p.CareerIP != nil {
			service, known = *p.CareerIP, true
		}
	} else if p.CareerPA != nil {
		service, known = float64(*p.CareerPA), true
	}
	if known {
		return serviceRisk(service, tiers)
	}

	// No track record: lean on projected playing time and charge a rookie premium.
	stat := models.StatPA
	if p.IsPitcher() {
		stat = models.StatIP
	}
	if projected, ok := p.Projected(stat); ok {
		return models.Clamp(serviceRisk(projected, tiers)+e.cfg.RookiePenalty, 0, 100)
	}
	return Neutral
}

func serviceRisk(service float64, t ServiceTiers) float64 {
	switch {
	case service >= t.Proven:
		if service <= 0 {
			return 0
		}
		return 10 * t.Proven / service
	case service >= t.Established:
		return 10 + 20*(t.Proven-service)/span(t.Proven, t.Established)
	case service >= t.Limited:
		return 30 + 30*(t.Established-service)/span(t.Established, t.Limited)
	default:
		if t.Limited <= 0 {
			return 90
		}
		return 60 + 30*(t.Limited-math.Max(service, 0))/t.Limited
	}
}

func span(hi, lo float64) float64 {
	if hi-lo <= 0 {
		return 1
	}
	return hi - lo
}

var varianceStats = []string{models.StatHR, models.StatSB, models.StatERA, models.StatK}

func (e *Engine) projectionVariance(p models.Player) float64 {
	if len(p.Projections) < 2 {
		return Neutral
	}
	var cvs []float64
	for _, stat := range varianceStats {
		vals := p.ProjectedValues(stat)
		if len(vals) < 2 {
			continue
		}
		mean := models.Mean(vals)
		if mean <= 0 {
			continue
		}
		cvs = append(cvs, models.StdDev(vals)/mean)
	}
	if len(cvs) == 0 {
		return Neutral
	}
	return models.Clamp(models.Mean(cvs)*100, 0, 100)
}

func (e *Engine) age(p models.Player) float64 {
	if p.Age == nil {
		return Neutral
	}
	curve := e.cfg.HitterAge
	if p.IsPitcher() {
		curve = e.cfg.PitcherAge
	}
	return AgeRisk(*p.Age, curve)
}

// AgeRisk evaluates an age curve: high for very young players, flat through the
// prime band, rising after the peak and accelerating past the decline age.
func AgeRisk(age int, c AgeCurve) float64 {
	var r float64
	switch {
	case age < c.PrimeStart:
		r = c.PrimeRisk + c.YouthSlope*float64(c.PrimeStart-age)
	case age <= c.Peak:
		r = c.PrimeRisk
	case age <= c.Decline:
		frac := float64(age-c.Peak) / float64(max(c.Decline-c.Peak, 1))
		r = c.PrimeRisk + (c.DeclineBase-c.PrimeRisk)*frac
	default:
		y := float64(age - c.Decline)
		r = c.DeclineBase + c.DeclineSlope*y + math.Pow(y, c.DeclineExponent)
	}
	return models.Clamp(r, 0, 100)
}

func (e *Engine) adpGap(p models.Player) float64 {
	adp, okADP := p.ADP()
	ecr, okECR := p.ConsensusRank()
	if !okADP || !okECR {
		return Neutral
	}
	return models.Clamp(e.cfg.GapBase-(adp-ecr)*e.cfg.GapMultiplier, 0, 100)
}

func (e *Engine) factors(p models.Player, c Components) []string {
	var out []string
	if c.Injury > 0 {
		status := string(p.InjuryStatus)
		if status == "" {
			status = "injured"
		}
		out = append(out, fmt.Sprintf("injury: %s", status))
	}
	if c.RankVariance >= 60 {
		out = append(out, "experts disagree on rank")
	}
	if c.Experience >= 60 {
		out = append(out, "limited track record")
	}
	if c.ProjectionVariance >= 30 {
		out = append(out, "projection systems disagree")
	}
	if c.Age >= 45 && p.Age != nil {
		if *p.Age < 25 {
			out = append(out, fmt.Sprintf("young (%d)", *p.Age))
		} else {
			out = append(out, fmt.Sprintf("age decline (%d)", *p.Age))
		}
	}
	if c.ADPGap >= 60 {
		out = append(out, "drafted well ahead of consensus")
	}
	return out
}

func (e *Engine) upside(p models.Player) string {
	if hr, ok := p.Projected(models.StatHR); ok && hr >= e.cfg.UpsideHR {
		return fmt.Sprintf("power upside (%.0f HR)", hr)
	}
	if sb, ok := p.Projected(models.StatSB); ok && sb >= e.cfg.UpsideSB {
		return fmt.Sprintf("speed upside (%.0f SB)", sb)
	}
	if k, ok := p.Projected(models.StatK); ok && k >= e.cfg.UpsideK {
		return fmt.Sprintf("strikeout upside (%.0f K)", k)
	}
	return ""
}
