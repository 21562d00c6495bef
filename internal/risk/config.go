package risk

import "github.com/Billy-Davies-2/fbb-draft-assistant/internal/models"

// Weights control how much each component contributes to the composite
type Weights struct {
	RankVariance       float64 `toml:"rank_variance" json:"rankVariance"`
	Injury             float64 `toml:"injury" json:"injury"`
	Experience         float64 `toml:"experience" json:"experience"`
	ProjectionVariance float64 `toml:"projection_variance" json:"projectionVariance"`
	Age                float64 `toml:"age" json:"age"`
	ADPGap             float64 `toml:"adp_gap" json:"adpGap"`
}

func (w Weights) sum() float64 {
	return w.RankVariance + w.Injury + w.Experience + w.ProjectionVariance + w.Age + w.ADPGap
}

// AgeCurve describes the U-shaped age risk for one player group.
// Risk is flat at PrimeRisk between PrimeStart and Peak, climbs linearly to
// DeclineBase at Decline, then accelerates.
type AgeCurve struct {
	PrimeStart      int     `toml:"prime_start"`
	Peak            int     `toml:"peak"`
	Decline         int     `toml:"decline"`
	YouthSlope      float64 `toml:"youth_slope"`
	PrimeRisk       float64 `toml:"prime_risk"`
	DeclineBase     float64 `toml:"decline_base"`
	DeclineSlope    float64 `toml:"decline_slope"`
	DeclineExponent float64 `toml:"decline_exponent"`
}

// ServiceTiers are career playing-time thresholds (PA for hitters, IP for pitchers)
type ServiceTiers struct {
	Proven      float64 `toml:"proven"`
	Established float64 `toml:"established"`
	Limited     float64 `toml:"limited"`
}

// Config holds every tuning parameter of the risk engine
type Config struct {
	Weights Weights `toml:"weights"`

	InjuryTiers   map[string]float64 `toml:"injury_tiers"`
	InjuryUnknown float64            `toml:"injury_unknown"`

	HitterService  ServiceTiers `toml:"hitter_service"`
	PitcherService ServiceTiers `toml:"pitcher_service"`
	RookiePenalty  float64      `toml:"rookie_penalty"`

	HitterAge  AgeCurve `toml:"hitter_age"`
	PitcherAge AgeCurve `toml:"pitcher_age"`

	RankVarianceScale float64 `toml:"rank_variance_scale"`
	GapBase           float64 `toml:"gap_base"`
	GapMultiplier     float64 `toml:"gap_multiplier"`

	// Projection thresholds that earn an upside note
	UpsideHR float64 `toml:"upside_hr"`
	UpsideSB float64 `toml:"upside_sb"`
	UpsideK  float64 `toml:"upside_k"`

	Prospect ProspectConfig `toml:"prospect"`
}

// DefaultConfig returns the weights and curves used for a standard league
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			RankVariance:       0.25,
			Injury:             0.25,
			Experience:         0.15,
			ProjectionVariance: 0.15,
			Age:                0.10,
			ADPGap:             0.10,
		},
		InjuryTiers: map[string]float64{
			string(models.InjuryDTD):  30,
			string(models.InjuryIL10): 50,
			string(models.InjuryIL15): 50,
			string(models.InjuryIL60): 80,
			string(models.InjuryOut):  80,
		},
		InjuryUnknown:  40,
		HitterService:  ServiceTiers{Proven: 1100, Established: 550, Limited: 200},
		PitcherService: ServiceTiers{Proven: 340, Established: 170, Limited: 60},
		RookiePenalty:  20,
		HitterAge: AgeCurve{
			PrimeStart: 25, Peak: 27, Decline: 30,
			YouthSlope: 8, PrimeRisk: 10,
			DeclineBase: 30, DeclineSlope: 10, DeclineExponent: 1.5,
		},
		PitcherAge: AgeCurve{
			PrimeStart: 24, Peak: 26, Decline: 29,
			YouthSlope: 8, PrimeRisk: 12,
			DeclineBase: 35, DeclineSlope: 12, DeclineExponent: 2,
		},
		RankVarianceScale: 200,
		GapBase:           25,
		GapMultiplier:     2.5,
		UpsideHR:          35,
		UpsideSB:          25,
		UpsideK:           200,
		Prospect:          DefaultProspectConfig(),
	}
}
