package recommend

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/models"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/needs"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/risk"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/scarcity"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/vorp"
)

// Config tunes list sizes and the hero-pick formula
type Config struct {
	Limit            int     `toml:"limit"`
	RecommendedLimit int     `toml:"recommended_limit"`
	RankHorizon      float64 `toml:"rank_horizon"`
	// NeedCategories is how many of the largest deficits the needs list targets
	NeedCategories      int                `toml:"need_categories"`
	PositionNeedBonus   float64            `toml:"position_need_bonus"`
	CategoryNeedBonus   float64            `toml:"category_need_bonus"`
	ScarcityBoostScale  float64            `toml:"scarcity_boost_scale"`
	KeeperPositionBonus map[string]float64 `toml:"keeper_position_bonus"`
	// ProspectRiskScale converts prospect risk above or below neutral into keeper points
	ProspectRiskScale float64 `toml:"prospect_risk_scale"`
}

// DefaultConfig returns the standard list sizes and bonuses
func DefaultConfig() Config {
	return Config{
		Limit:              10,
		RecommendedLimit:   3,
		RankHorizon:        300,
		NeedCategories:     3,
		PositionNeedBonus:  0.10,
		CategoryNeedBonus:  0.15,
		ScarcityBoostScale: 20,
		KeeperPositionBonus: map[string]float64{
			"C": 6, "SS": 5, "SP": 3, "2B": 1, "3B": 0, "OF": -2, "1B": -3, "RP": -5,
		},
		ProspectRiskScale: 0.2,
	}
}

// Context is the read-only draft situation of the team asking for advice
type Context struct {
	NumTeams    int
	CurrentPick int
	Roster      []models.Player
	Targets     map[string]float64
	// PositionNeed is the 0-100 open-slot need per position (see scarcity.PositionNeed)
	PositionNeed map[string]float64
	Limit        int
}

// Inputs bundles everything a recommendation run reads
type Inputs struct {
	Pool     []models.Player
	Risk     map[string]risk.Assessment
	Scarcity scarcity.Snapshot
	Needs    []needs.CategoryNeed
	Surplus  map[string]vorp.SurplusValue
	Context  Context
}

// Recommendation is one entry in a pick list. Fields that only apply to some
// lists are left zero elsewhere.
type Recommendation struct {
	PlayerID     string              `json:"playerId"`
	Name         string              `json:"name"`
	Positions    []string            `json:"positions"`
	Team         string              `json:"team,omitempty"`
	ECR          *float64            `json:"ecr,omitempty"`
	ADP          *float64            `json:"adp,omitempty"`
	RiskScore    float64             `json:"riskScore"`
	RiskClass    risk.Classification `json:"riskClass"`
	Injured      bool                `json:"injured"`
	InjuryStatus models.InjuryStatus `json:"injuryStatus,omitempty"`
	Surplus      *float64            `json:"surplus,omitempty"`
	Rationale    string              `json:"rationale"`

	Upside       float64            `json:"upside,omitempty"`
	NeedScore    float64            `json:"needScore,omitempty"`
	Helps        map[string]float64 `json:"helps,omitempty"`
	Specialties  []string           `json:"specialties,omitempty"`
	KeeperValue  float64            `json:"keeperValue,omitempty"`
	KeeperClass  string             `json:"keeperClass,omitempty"`
	ProspectRisk *float64           `json:"prospectRisk,omitempty"`
	Tools        []string           `json:"tools,omitempty"`

	BaseValue          float64 `json:"baseValue,omitempty"`
	ScarcityMultiplier float64 `json:"scarcityMultiplier,omitempty"`
	NeedBonus          float64 `json:"needBonus,omitempty"`
	AdjustedValue      float64 `json:"adjustedValue,omitempty"`
}

// Result holds the five pick lists
type Result struct {
	Safe        []Recommendation `json:"safe"`
	Risky       []Recommendation `json:"risky"`
	Needs       []Recommendation `json:"needs"`
	Prospects   []Recommendation `json:"prospects"`
	Recommended []Recommendation `json:"recommended"`
}

// Generator builds pick lists. It never mutates its inputs.
type Generator struct {
	cfg      Config
	analyzer *needs.Analyzer
}

func NewGenerator(cfg Config, analyzer *needs.Analyzer) *Generator {
	if analyzer == nil {
		analyzer = needs.NewAnalyzer(needs.DefaultConfig())
	}
	return &Generator{cfg: cfg, analyzer: analyzer}
}

// Generate produces every list for the given inputs. An empty pool gives empty lists.
func (g *Generator) Generate(in Inputs) Result {
	res := Result{
		Safe:        []Recommendation{},
		Risky:       []Recommendation{},
		Needs:       []Recommendation{},
		Prospects:   []Recommendation{},
		Recommended: []Recommendation{},
	}
	if len(in.Pool) == 0 {
		return res
	}

	limit := g.cfg.Limit
	if in.Context.Limit > 0 {
		limit = in.Context.Limit
	}

	needScores, helps := g.needScores(in)

	for i := range in.Pool {
		p := &in.Pool[i]
		base := g.base(p, in)
		switch base.RiskClass {
		case risk.Safe:
			r := base
			r.Rationale = g.safeRationale(p, in)
			res.Safe = append(res.Safe, r)
		case risk.Risky:
			r := base
			r.Upside = upside(p)
			r.Rationale = g.riskyRationale(p, in)
			res.Risky = append(res.Risky, r)
		}
		if score := needScores[p.ID]; score > 0 {
			r := base
			r.NeedScore = score
			r.Helps = helps[p.ID]
			r.Specialties = g.analyzer.Specialties(*p)
			r.Rationale = needsRationale(r)
			res.Needs = append(res.Needs, r)
		}
		if p.IsProspect {
			r := base
			pa := in.Risk[p.ID].Prospect
			r.KeeperValue = g.keeperValue(p, pa, in.Scarcity)
			r.KeeperClass = keeperClass(r.KeeperValue)
			r.Rationale = prospectRationale(r, pa)
			if pa != nil {
				r.ProspectRisk = models.FloatPtr(pa.Score)
				r.Tools = pa.Tools
			}
			res.Prospects = append(res.Prospects, r)
		}
		res.Recommended = append(res.Recommended, g.hero(p, base, in, needScores))
	}

	sort.SliceStable(res.Safe, func(i, j int) bool {
		return lessByRank(res.Safe[i], res.Safe[j])
	})
	sort.SliceStable(res.Risky, func(i, j int) bool {
		a, b := res.Risky[i], res.Risky[j]
		if a.Upside != b.Upside {
			return a.Upside > b.Upside
		}
		return lessByRank(a, b)
	})
	sort.SliceStable(res.Needs, func(i, j int) bool {
		a, b := res.Needs[i], res.Needs[j]
		if a.NeedScore != b.NeedScore {
			return a.NeedScore > b.NeedScore
		}
		return lessByRank(a, b)
	})
	sort.SliceStable(res.Prospects, func(i, j int) bool {
		a, b := res.Prospects[i], res.Prospects[j]
		if a.KeeperValue != b.KeeperValue {
			return a.KeeperValue > b.KeeperValue
		}
		return lessByRank(a, b)
	})
	sort.SliceStable(res.Recommended, func(i, j int) bool {
		a, b := res.Recommended[i], res.Recommended[j]
		if a.AdjustedValue != b.AdjustedValue {
			return a.AdjustedValue > b.AdjustedValue
		}
		if a.RiskScore != b.RiskScore {
			return a.RiskScore < b.RiskScore
		}
		return lessByRank(a, b)
	})

	res.Safe = truncate(res.Safe, limit)
	res.Risky = truncate(res.Risky, limit)
	res.Needs = truncate(res.Needs, limit)
	res.Prospects = truncate(res.Prospects, limit)
	heroes := g.cfg.RecommendedLimit
	if heroes <= 0 {
		heroes = limit
	}
	res.Recommended = truncate(res.Recommended, heroes)
	return res
}

func (g *Generator) base(p *models.Player, in Inputs) Recommendation {
	a, ok := in.Risk[p.ID]
	if !ok {
		a = risk.NeutralAssessment(p.ID)
	}
	r := Recommendation{
		PlayerID:     p.ID,
		Name:         p.Name,
		Positions:    p.Positions,
		Team:         p.Team,
		RiskScore:    a.Score,
		RiskClass:    a.Classification,
		Injured:      p.Injured || p.InjuryStatus != models.InjuryNone,
		InjuryStatus: p.InjuryStatus,
	}
	if ecr, ok := p.ConsensusRank(); ok {
		r.ECR = models.FloatPtr(ecr)
	}
	if adp, ok := p.ADP(); ok {
		r.ADP = models.FloatPtr(adp)
	}
	if sv, ok := in.Surplus[p.ID]; ok && sv.Surplus != nil {
		r.Surplus = models.FloatPtr(*sv.Surplus)
	}
	return r
}

// needScores simulates each candidate against the largest deficits. The score
// weights each category's deficit reduction by how far behind the team is there.
func (g *Generator) needScores(in Inputs) (map[string]float64, map[string]map[string]float64) {
	var focus []needs.CategoryNeed
	for _, n := range in.Needs {
		if n.DeficitPct <= 0 {
			continue
		}
		focus = append(focus, n)
		if len(focus) == g.cfg.NeedCategories {
			break
		}
	}
	scores := make(map[string]float64)
	helps := make(map[string]map[string]float64)
	if len(focus) == 0 {
		return scores, helps
	}
	for i := range in.Pool {
		p := in.Pool[i]
		impact := g.analyzer.SimulatePick(in.Context.Roster, p, in.Context.Targets)
		score := 0.0
		for _, n := range focus {
			red := impact.Reduction[n.Category]
			if red <= 0 {
				continue
			}
			score += red * n.DeficitPct * 100
			if helps[p.ID] == nil {
				helps[p.ID] = make(map[string]float64)
			}
			helps[p.ID][n.Category] = red
		}
		if score > 0 {
			scores[p.ID] = score
		}
	}
	return scores, helps
}

func (g *Generator) hero(p *models.Player, base Recommendation, in Inputs, needScores map[string]float64) Recommendation {
	r := base
	r.BaseValue = g.baseValue(p)
	r.ScarcityMultiplier = in.Scarcity.Multiplier(*p)

	posNeed := 0.0
	for _, pos := range p.Positions {
		posNeed = math.Max(posNeed, in.Context.PositionNeed[pos])
	}
	maxNeed := 0.0
	for _, s := range needScores {
		maxNeed = math.Max(maxNeed, s)
	}
	catNeed := 0.0
	if maxNeed > 0 {
		catNeed = needScores[p.ID] / maxNeed
	}
	r.NeedBonus = g.cfg.PositionNeedBonus*posNeed/100 + g.cfg.CategoryNeedBonus*catNeed
	r.AdjustedValue = r.BaseValue * r.ScarcityMultiplier * (1 + r.NeedBonus)

	var why []string
	if r.ScarcityMultiplier > 1.05 {
		why = append(why, fmt.Sprintf("scarcity x%.2f", r.ScarcityMultiplier))
	}
	if r.NeedBonus > 0 {
		why = append(why, fmt.Sprintf("fills needs +%.0f%%", r.NeedBonus*100))
	}
	if r.Injured {
		why = append(why, "injured")
	}
	r.Rationale = fmt.Sprintf("value %.1f", r.AdjustedValue)
	if len(why) > 0 {
		r.Rationale += " (" + strings.Join(why, ", ") + ")"
	}
	return r
}

// baseValue converts consensus rank (or ADP) into a value where earlier is larger
func (g *Generator) baseValue(p *models.Player) float64 {
	rank, ok := p.ConsensusRank()
	if !ok {
		rank, ok = p.ADP()
	}
	if !ok {
		return 1
	}
	return math.Max(1, g.cfg.RankHorizon+1-rank)
}

// upside combines how much better the player's best rank is than consensus
// with how far the market lets the player fall past it
func upside(p *models.Player) float64 {
	ecr, ok := p.ConsensusRank()
	if !ok || ecr <= 0 {
		return 0
	}
	u := 0.0
	if best, _, ok := p.RankRange(); ok && best < ecr {
		u += (ecr - best) / ecr * 100
	}
	if adp, ok := p.ADP(); ok && adp > ecr {
		u += adp - ecr
	}
	return u
}

func (g *Generator) keeperValue(p *models.Player, pa *risk.ProspectAssessment, snap scarcity.Snapshot) float64 {
	v := 25.0
	if p.ProspectRank != nil {
		switch r := *p.ProspectRank; {
		case r <= 3:
			v = 88
		case r <= 10:
			v = 75
		case r <= 25:
			v = 62
		case r <= 50:
			v = 50
		case r <= 100:
			v = 38
		}
	}
	v += g.cfg.KeeperPositionBonus[p.PrimaryPosition()]
	if p.Scouting != nil && p.Scouting.FutureValue != nil {
		v += math.Max(0, float64(*p.Scouting.FutureValue-65)/15*8)
	}
	v += (snap.Multiplier(*p) - 1) * g.cfg.ScarcityBoostScale
	if pa != nil {
		v -= (pa.Score - risk.Neutral) * g.cfg.ProspectRiskScale
	}
	return models.Clamp(v, 0, 100)
}

func prospectRationale(r Recommendation, pa *risk.ProspectAssessment) string {
	s := fmt.Sprintf("%s keeper value %.0f", r.KeeperClass, r.KeeperValue)
	if pa == nil {
		return s
	}
	s += fmt.Sprintf(", development risk %.0f", pa.Score)
	if len(pa.Factors) > 0 {
		s += " (" + strings.Join(pa.Factors, "; ") + ")"
	}
	if len(pa.Tools) > 0 {
		s += ", tools: " + strings.Join(pa.Tools, ", ")
	}
	return s
}

func keeperClass(v float64) string {
	switch {
	case v >= 93:
		return "elite"
	case v >= 70:
		return "high"
	case v >= 50:
		return "medium"
	}
	return "low"
}

func (g *Generator) safeRationale(p *models.Player, in Inputs) string {
	s := "low risk"
	if ecr, ok := p.ConsensusRank(); ok {
		s = fmt.Sprintf("low risk, consensus rank %.0f", ecr)
	}
	if p.Injured {
		s += ", currently injured"
	}
	return s
}

func (g *Generator) riskyRationale(p *models.Player, in Inputs) string {
	a, ok := in.Risk[p.ID]
	parts := []string{}
	if ok {
		if a.Upside != "" {
			parts = append(parts, a.Upside)
		}
		parts = append(parts, a.Factors...)
	}
	if len(parts) == 0 {
		return "high risk"
	}
	return strings.Join(parts, "; ")
}

func needsRationale(r Recommendation) string {
	cats := make([]string, 0, len(r.Helps))
	for c := range r.Helps {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	s := "helps " + strings.Join(cats, ", ")
	if len(r.Specialties) > 0 {
		s += " (specialist: " + strings.Join(r.Specialties, ", ") + ")"
	}
	return s
}

func lessByRank(a, b Recommendation) bool {
	ra, rb := math.Inf(1), math.Inf(1)
	if a.ECR != nil {
		ra = *a.ECR
	}
	if b.ECR != nil {
		rb = *b.ECR
	}
	if ra != rb {
		return ra < rb
	}
	return a.PlayerID < b.PlayerID
}

func truncate(list []Recommendation, n int) []Recommendation {
	if n > 0 && len(list) > n {
		return list[:n]
	}
	return list
}
