package risk

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/models"
)

func shortstopProspect() models.Player {
	return models.Player{
		ID: "ss", Positions: []string{"SS"}, Age: models.IntPtr(19), IsProspect: true,
		Scouting: &models.ScoutingGrades{
			Hit: models.IntPtr(55), Power: models.IntPtr(60), Run: models.IntPtr(70),
			Field: models.IntPtr(60), Arm: models.IntPtr(60), FutureValue: models.IntPtr(65),
			Level: "AA",
		},
	}
}

func TestHitToolRiskCurve(t *testing.T) {
	tests := []struct {
		grade int
		want  float64
	}{
		{80, 0},
		{65, 25},
		{50, 50},
		{35, 75},
		{20, 100},
		{85, 0},
		{15, 100},
	}
	for _, tt := range tests {
		if got := HitToolRisk(tt.grade); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("HitToolRisk(%d) = %v, want %v", tt.grade, got, tt.want)
		}
	}
	for g := 20; g < 80; g++ {
		if HitToolRisk(g+1) >= HitToolRisk(g) {
			t.Fatalf("hit tool risk should fall as the grade rises: %d -> %d", g, g+1)
		}
	}
}

func TestAgeForLevelRiskCurve(t *testing.T) {
	cfg := DefaultProspectConfig()
	tests := []struct {
		age, expected int
		want          float64
	}{
		{22, 22, 50},
		{23, 22, 65},
		{24, 22, 80},
		{26, 22, 100},
		{30, 22, 100},
		{21, 22, 40},
		{19, 22, 20},
		{17, 22, 0},
		{14, 22, 0},
	}
	for _, tt := range tests {
		got := AgeForLevelRisk(tt.age, tt.expected, cfg.OldForLevelSlope, cfg.YoungForLevel)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("AgeForLevelRisk(%d, %d) = %v, want %v", tt.age, tt.expected, got, tt.want)
		}
	}
	// older than the level costs more per year than younger saves
	over := AgeForLevelRisk(23, 22, cfg.OldForLevelSlope, cfg.YoungForLevel) - 50
	under := 50 - AgeForLevelRisk(21, 22, cfg.OldForLevelSlope, cfg.YoungForLevel)
	if over <= under {
		t.Errorf("curve should be steeper above the expected age: +%v vs -%v", over, under)
	}
}

func TestAssessProspectYoungShortstop(t *testing.T) {
	a := NewEngine(DefaultConfig()).AssessProspect(shortstopProspect())

	c := a.Components
	if math.Abs(c.HitTool-25.0*100/60) > 1e-9 {
		t.Errorf("hit tool = %v", c.HitTool)
	}
	if c.AgeRelative != 20 || c.PositionBust != 40 || c.PitcherPenalty != 0 || c.Injury != 0 {
		t.Errorf("components = %+v", c)
	}
	// .35*41.67 + .15*20 + .15*40
	if a.Score != 23.6 {
		t.Errorf("score = %v, want 23.6", a.Score)
	}
	if !reflect.DeepEqual(a.Factors, []string{"Young for level (19)"}) {
		t.Errorf("factors = %v", a.Factors)
	}
	if want := []string{"70 speed", "60 power", "60 glove", "60 arm"}; !reflect.DeepEqual(a.Tools, want) {
		t.Errorf("tools = %v, want %v", a.Tools, want)
	}
}

func TestAssessProspectOldInjuredPitcher(t *testing.T) {
	p := models.Player{
		ID: "sp", Positions: []string{"SP"}, Age: models.IntPtr(26), IsProspect: true,
		InjuryStatus: models.InjuryIL60, Injured: true,
		Scouting: &models.ScoutingGrades{Level: "AA", InjuryHistory: true},
	}
	a := NewEngine(DefaultConfig()).AssessProspect(p)

	c := a.Components
	if c.HitTool != 50 || c.AgeRelative != 100 || c.PositionBust != 55 || c.PitcherPenalty != 31.25 || c.Injury != 100 {
		t.Errorf("components = %+v", c)
	}
	if math.Abs(a.Score-62) > 0.05 {
		t.Errorf("score = %v, want 62", a.Score)
	}
	joined := strings.Join(a.Factors, "|")
	for _, want := range []string{"Old for current level", "Pitcher prospect penalty", "Significant injury history"} {
		if !strings.Contains(joined, want) {
			t.Errorf("factors %v missing %q", a.Factors, want)
		}
	}
	if len(a.Tools) != 0 {
		t.Errorf("tools = %v", a.Tools)
	}

	safer := NewEngine(DefaultConfig()).AssessProspect(shortstopProspect())
	if a.Score <= safer.Score {
		t.Errorf("old injured pitcher %v should outscore young shortstop %v", a.Score, safer.Score)
	}
}

func TestAssessProspectMissingData(t *testing.T) {
	e := NewEngine(DefaultConfig())
	a := e.AssessProspect(models.Player{ID: "c", Positions: []string{"C"}, IsProspect: true})

	if a.Components.HitTool != 60 || a.Components.AgeRelative != Neutral {
		t.Errorf("components = %+v", a.Components)
	}
	joined := strings.Join(a.Factors, "|")
	if !strings.Contains(joined, "limited data") || !strings.Contains(joined, "C: 65% historical bust rate") {
		t.Errorf("factors = %v", a.Factors)
	}
}

func TestAssessAttachesProspectRisk(t *testing.T) {
	e := NewEngine(DefaultConfig())
	if a := e.Assess(shortstopProspect()); a.Prospect == nil || a.Prospect.Score != 23.6 {
		t.Errorf("prospect assessment = %+v", a.Prospect)
	}
	if a := e.Assess(veteranHitter()); a.Prospect != nil {
		t.Errorf("veteran got a prospect assessment: %+v", a.Prospect)
	}
}

func TestProspectZeroWeightsFallBackToNeutral(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Prospect.Weights = ProspectWeights{}
	if a := NewEngine(cfg).AssessProspect(shortstopProspect()); a.Score != Neutral {
		t.Errorf("score = %v, want %v", a.Score, Neutral)
	}
}
