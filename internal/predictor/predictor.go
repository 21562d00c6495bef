package predictor

import (
	"math"
	"math/rand"
	"sync"

	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/models"
)

// Verdict summarises the probability for display
type Verdict string

const (
	AvailableNow    Verdict = "Available Now"
	LikelyAvailable Verdict = "Likely Available"
	Risky           Verdict = "Risky"
	Unlikely        Verdict = "Unlikely"
	AlreadyDrafted  Verdict = "Already Drafted"
)

// Confidence buckets how much the probability can be trusted
type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
)

// Config tunes the simulation
type Config struct {
	Simulations       int     `toml:"simulations"`
	MinSimulations    int     `toml:"min_simulations"`
	MaxSimulations    int     `toml:"max_simulations"`
	DefaultVolatility float64 `toml:"default_volatility"`
	LikelyThreshold   float64 `toml:"likely_threshold"`
	RiskyThreshold    float64 `toml:"risky_threshold"`
}

// DefaultConfig runs 5000 simulations per prediction
func DefaultConfig() Config {
	return Config{
		Simulations:       5000,
		MinSimulations:    1000,
		MaxSimulations:    10000,
		DefaultVolatility: 10,
		LikelyThreshold:   0.7,
		RiskyThreshold:    0.3,
	}
}

// Input is the static per-player data a prediction needs
type Input struct {
	PlayerID string
	// ExpectedPick is where the player is expected to go (ADP, else consensus rank)
	ExpectedPick float64
	// Volatility is the spread of the draft position in picks; 0 uses the default
	Volatility float64
	Drafted    bool
}

// InputFor derives prediction input from a player record
func InputFor(p models.Player) Input {
	in := Input{PlayerID: p.ID, Volatility: Volatility(p)}
	if adp, ok := p.ADP(); ok {
		in.ExpectedPick = adp
	} else if ecr, ok := p.ConsensusRank(); ok {
		in.ExpectedPick = ecr
	}
	return in
}

// Volatility estimates draft-position spread from ranking disagreement.
// Returns 0 when nothing is known so the predictor's default applies.
func Volatility(p models.Player) float64 {
	if best, worst, ok := p.RankRange(); ok && worst > best {
		return (worst - best) / 4
	}
	if ranks := p.Ranks(); len(ranks) >= 2 {
		if sd := models.StdDev(ranks); sd > 0 {
			return sd
		}
	}
	if adp, ok := p.ADP(); ok {
		return adp * 0.15
	}
	return 0
}

// Result is the outcome of one availability prediction
type Result struct {
	PlayerID              string     `json:"playerId"`
	Probability           float64    `json:"probability"`
	Confidence            Confidence `json:"confidence"`
	Verdict               Verdict    `json:"verdict"`
	ExpectedDraftPosition float64    `json:"expectedDraftPosition"`
	Volatility            float64    `json:"volatility"`
	Simulations           int        `json:"simulations"`
	CurrentPick           int        `json:"currentPick"`
	TargetPick            int        `json:"targetPick"`
	PicksBetween          int        `json:"picksBetween"`
}

// Predictor runs Monte-Carlo availability simulations. The random source is
// injected so results are reproducible under a fixed seed.
type Predictor struct {
	cfg Config

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a predictor drawing from src
func New(cfg Config, src rand.Source) *Predictor {
	return &Predictor{cfg: cfg, rng: rand.New(src)}
}

// Predict estimates the chance the player is still on the board at targetPick
func (p *Predictor) Predict(in Input, currentPick, targetPick, numTeams int) Result {
	vol := in.Volatility
	if vol <= 0 {
		vol = p.cfg.DefaultVolatility
	}
	vol = math.Max(vol, 1)

	res := Result{
		PlayerID:              in.PlayerID,
		ExpectedDraftPosition: in.ExpectedPick,
		Volatility:            vol,
		CurrentPick:           currentPick,
		TargetPick:            targetPick,
		PicksBetween:          max(targetPick-currentPick, 0),
	}

	if in.Drafted {
		res.Probability = 0
		res.Verdict = AlreadyDrafted
		res.Confidence = ConfidenceHigh
		return res
	}
	if targetPick <= currentPick {
		res.Probability = 1.0
		res.Verdict = AvailableNow
		res.Confidence = ConfidenceHigh
		return res
	}

	n := p.simulations()
	expected := in.ExpectedPick
	if expected <= 0 {
		expected = float64(targetPick)
	}

	samples := make([]float64, n)
	p.mu.Lock()
	for i := range samples {
		samples[i] = p.rng.NormFloat64()*vol + expected
	}
	p.mu.Unlock()

	survived := 0
	sum := 0.0
	for i, s := range samples {
		// the player is on the board now, so no sample can fall before the current pick
		s = math.Max(s, float64(currentPick))
		samples[i] = s
		sum += s
		if s > float64(targetPick) {
			survived++
		}
	}

	res.Simulations = n
	res.Probability = float64(survived) / float64(n)
	res.ExpectedDraftPosition = sum / float64(n)
	res.Verdict = p.verdict(res.Probability)
	res.Confidence = confidence(models.StdDev(samples), res.PicksBetween, numTeams)
	return res
}

func (p *Predictor) simulations() int {
	n := p.cfg.Simulations
	if n <= 0 {
		n = DefaultConfig().Simulations
	}
	if p.cfg.MinSimulations > 0 && n < p.cfg.MinSimulations {
		n = p.cfg.MinSimulations
	}
	if p.cfg.MaxSimulations > 0 && n > p.cfg.MaxSimulations {
		n = p.cfg.MaxSimulations
	}
	return n
}

func (p *Predictor) verdict(prob float64) Verdict {
	switch {
	case prob >= p.cfg.LikelyThreshold:
		return LikelyAvailable
	case prob >= p.cfg.RiskyThreshold:
		return Risky
	}
	return Unlikely
}

// confidence starts from the sample spread and drops as the number of turns
// until the target grows. The sample count is never below MinSimulations.
func confidence(spread float64, picksBetween, numTeams int) Confidence {
	var level int
	switch {
	case spread <= 5:
		level = 2
	case spread <= 15:
		level = 1
	default:
		level = 0
	}

	turns := picksBetween / max(numTeams-1, 1)
	switch {
	case turns >= 4:
		level = 0
	case turns >= 2:
		level--
	}

	switch {
	case level >= 2:
		return ConfidenceHigh
	case level == 1:
		return ConfidenceMedium
	}
	return ConfidenceLow
}
