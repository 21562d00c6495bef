package risk

import (
	"reflect"
	"testing"

	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/models"
)

func rank(r int, adp float64) models.SourceRank {
	return models.SourceRank{Rank: models.IntPtr(r), ADP: models.FloatPtr(adp)}
}

func veteranHitter() models.Player {
	return models.Player{
		ID:        "p1",
		Name:      "Steady Veteran",
		Positions: []string{"1B"},
		Age:       models.IntPtr(28),
		CareerPA:  models.IntPtr(3000),
		Rankings: map[string]models.SourceRank{
			"espn":    rank(20, 21),
			"yahoo":   rank(21, 20),
			"fantrax": rank(22, 22),
		},
		Projections: map[string]models.StatLine{
			"steamer": {models.StatPA: 650, models.StatHR: 30, models.StatSB: 5},
			"zips":    {models.StatPA: 640, models.StatHR: 31, models.StatSB: 5},
		},
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		score float64
		want  Classification
	}{
		{0, Safe},
		{29.9, Safe},
		{30, Moderate},
		{45, Moderate},
		{60, Moderate},
		{60.1, Risky},
		{100, Risky},
	}
	for _, tt := range tests {
		if got := Classify(tt.score); got != tt.want {
			t.Errorf("Classify(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestAssessEmptyPlayerIsNeutral(t *testing.T) {
	e := NewEngine(DefaultConfig())
	a := e.Assess(models.Player{ID: "empty", Positions: []string{"OF"}})

	c := a.Components
	for name, v := range map[string]float64{
		"rankVariance":       c.RankVariance,
		"experience":         c.Experience,
		"projectionVariance": c.ProjectionVariance,
		"age":                c.Age,
		"adpGap":             c.ADPGap,
	} {
		if v != Neutral {
			t.Errorf("%s = %v, want neutral %v", name, v, Neutral)
		}
	}
	if c.Injury != 0 {
		t.Errorf("healthy player injury = %v, want 0", c.Injury)
	}
	if a.Score < 0 || a.Score > 100 {
		t.Fatalf("score out of range: %v", a.Score)
	}
}

func TestAssessVeteranIsSafe(t *testing.T) {
	e := NewEngine(DefaultConfig())
	a := e.Assess(veteranHitter())
	if a.Classification != Safe {
		t.Errorf("veteran classified %s (score %.1f, %+v), want safe", a.Classification, a.Score, a.Components)
	}
}

func TestAssessIsPure(t *testing.T) {
	e := NewEngine(DefaultConfig())
	p := veteranHitter()
	first := e.Assess(p)
	for i := 0; i < 20; i++ {
		if got := e.Assess(p); !reflect.DeepEqual(got, first) {
			t.Fatalf("assessment changed between calls: %+v vs %+v", got, first)
		}
	}
}

func TestInjuryTiersAreOrdered(t *testing.T) {
	e := NewEngine(DefaultConfig())
	score := func(s models.InjuryStatus) float64 {
		p := veteranHitter()
		p.Injured = true
		p.InjuryStatus = s
		return e.Assess(p).Components.Injury
	}
	dtd, il10, il60 := score(models.InjuryDTD), score(models.InjuryIL10), score(models.InjuryIL60)
	if !(dtd < il10 && il10 < il60) {
		t.Errorf("injury tiers not ordered: DTD=%v IL-10=%v IL-60=%v", dtd, il10, il60)
	}
	if unknown := score("mystery"); unknown <= 0 {
		t.Errorf("unknown injury status should still carry risk, got %v", unknown)
	}
}

func TestRankVarianceNormalizedByMagnitude(t *testing.T) {
	e := NewEngine(DefaultConfig())
	early := models.Player{ID: "a", Rankings: map[string]models.SourceRank{
		"x": {Rank: models.IntPtr(5)}, "y": {Rank: models.IntPtr(15)},
	}}
	late := models.Player{ID: "b", Rankings: map[string]models.SourceRank{
		"x": {Rank: models.IntPtr(195)}, "y": {Rank: models.IntPtr(205)},
	}}
	if e.rankVariance(early) <= e.rankVariance(late) {
		t.Errorf("equal spread should matter more early: early=%v late=%v",
			e.rankVariance(early), e.rankVariance(late))
	}
	single := models.Player{ID: "c", Rankings: map[string]models.SourceRank{"x": {Rank: models.IntPtr(10)}}}
	if got := e.rankVariance(single); got != Neutral {
		t.Errorf("single source rank variance = %v, want neutral", got)
	}
}

func TestExperienceFallsWithService(t *testing.T) {
	e := NewEngine(DefaultConfig())
	prev := 101.0
	for _, pa := range []int{0, 100, 300, 700, 1200, 4000} {
		p := models.Player{ID: "x", Positions: []string{"SS"}, CareerPA: models.IntPtr(pa)}
		got := e.experience(p)
		if got >= prev {
			t.Errorf("experience risk at %d PA = %v, not below previous %v", pa, got, prev)
		}
		prev = got
	}
}

func TestExperienceRookieFallback(t *testing.T) {
	e := NewEngine(DefaultConfig())
	rookie := models.Player{ID: "r", Positions: []string{"SP"}, Projections: map[string]models.StatLine{
		"steamer": {models.StatIP: 120},
	}}
	vet := rookie
	vet.CareerIP = models.FloatPtr(120)
	if e.experience(rookie) <= e.experience(vet) {
		t.Errorf("projected-only pitcher should carry a rookie premium: rookie=%v vet=%v",
			e.experience(rookie), e.experience(vet))
	}
}

func TestAgeCurveIsUShaped(t *testing.T) {
	for name, curve := range map[string]AgeCurve{
		"hitter":  DefaultConfig().HitterAge,
		"pitcher": DefaultConfig().PitcherAge,
	} {
		young := AgeRisk(curve.PrimeStart-4, curve)
		prime := AgeRisk(curve.PrimeStart, curve)
		old := AgeRisk(curve.Decline+4, curve)
		if !(young > prime && old > prime) {
			t.Errorf("%s curve not U-shaped: young=%v prime=%v old=%v", name, young, prime, old)
		}
		// decline accelerates: each extra year costs more than the last
		d1 := AgeRisk(curve.Decline+2, curve) - AgeRisk(curve.Decline+1, curve)
		d2 := AgeRisk(curve.Decline+3, curve) - AgeRisk(curve.Decline+2, curve)
		if d2 < d1 {
			t.Errorf("%s decline should accelerate: %v then %v", name, d1, d2)
		}
		if AgeRisk(60, curve) != 100 {
			t.Errorf("%s curve should cap at 100", name)
		}
	}
}

func TestADPGapDirection(t *testing.T) {
	e := NewEngine(DefaultConfig())
	mk := func(adp float64) models.Player {
		return models.Player{ID: "g", ECR: models.FloatPtr(50), Rankings: map[string]models.SourceRank{
			"espn": {ADP: models.FloatPtr(adp)},
		}}
	}
	reach := e.adpGap(mk(30)) // going 20 picks before consensus
	fair := e.adpGap(mk(50))
	value := e.adpGap(mk(70))
	if !(reach > fair && fair > value) {
		t.Errorf("gap scores not ordered: reach=%v fair=%v value=%v", reach, fair, value)
	}
}

func TestProjectionVariance(t *testing.T) {
	e := NewEngine(DefaultConfig())
	agree := models.Player{ID: "a", Projections: map[string]models.StatLine{
		"s1": {models.StatHR: 30}, "s2": {models.StatHR: 30},
	}}
	disagree := models.Player{ID: "b", Projections: map[string]models.StatLine{
		"s1": {models.StatHR: 10}, "s2": {models.StatHR: 40},
	}}
	if got := e.projectionVariance(agree); got != 0 {
		t.Errorf("identical projections variance = %v, want 0", got)
	}
	if e.projectionVariance(disagree) <= 0 {
		t.Error("divergent projections should carry variance risk")
	}
}

func TestZeroWeightsFallBackToNeutral(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weights = Weights{}
	a := NewEngine(cfg).Assess(veteranHitter())
	if a.Score != Neutral {
		t.Errorf("score with zero weights = %v, want %v", a.Score, Neutral)
	}
}

func TestUpsideAndFactors(t *testing.T) {
	e := NewEngine(DefaultConfig())
	p := models.Player{
		ID: "slugger", Positions: []string{"OF"}, Age: models.IntPtr(21),
		Injured: true, InjuryStatus: models.InjuryIL10,
		Projections: map[string]models.StatLine{"steamer": {models.StatHR: 38, models.StatPA: 600}},
	}
	a := e.Assess(p)
	if a.Upside == "" {
		t.Error("expected a power upside note")
	}
	if len(a.Factors) == 0 {
		t.Error("expected risk factors for an injured 21 year old")
	}
}
