package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/models"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/needs"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/predictor"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/recommend"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/risk"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/scarcity"
)

// LeagueTuning describes the league format the value models assume
type LeagueTuning struct {
	NumTeams    int                `toml:"num_teams"`
	RosterSlots map[string]int     `toml:"roster_slots"`
	Targets     map[string]float64 `toml:"targets"`
}

// Tuning holds every scoring weight and threshold. It is loaded from a TOML
// file over DefaultTuning and may be swapped at runtime.
type Tuning struct {
	League    LeagueTuning     `toml:"league"`
	Risk      risk.Config      `toml:"risk"`
	Scarcity  scarcity.Config  `toml:"scarcity"`
	Needs     needs.Config     `toml:"needs"`
	Recommend recommend.Config `toml:"recommend"`
	Predictor predictor.Config `toml:"predictor"`
}

// DefaultTuning returns the standard 12-team rotisserie setup
func DefaultTuning() Tuning {
	return Tuning{
		League: LeagueTuning{
			NumTeams:    12,
			RosterSlots: models.DefaultRosterSlots(),
			Targets:     needs.DefaultTargets(),
		},
		Risk:      risk.DefaultConfig(),
		Scarcity:  scarcity.DefaultConfig(),
		Needs:     needs.DefaultConfig(),
		Recommend: recommend.DefaultConfig(),
		Predictor: predictor.DefaultConfig(),
	}
}

// LoadTuning reads path over the defaults. An empty path returns the defaults.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read tuning file: %w", err)
	}
	if err := toml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("parse tuning file: %w", err)
	}
	// categories are not configurable from the file
	t.Needs.Categories = models.DefaultCategories()

	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("invalid tuning file %s: %w", path, err)
	}
	return t, nil
}

// Validate rejects settings the engines cannot work with
func (t Tuning) Validate() error {
	var errs []error

	if t.League.NumTeams < 2 || t.League.NumTeams > 20 {
		errs = append(errs, fmt.Errorf("league.num_teams must be between 2 and 20, got %d", t.League.NumTeams))
	}
	for pos, n := range t.League.RosterSlots {
		if n < 0 {
			errs = append(errs, fmt.Errorf("league.roster_slots.%s cannot be negative", pos))
		}
	}

	w := t.Risk.Weights
	for name, v := range map[string]float64{
		"rank_variance":       w.RankVariance,
		"injury":              w.Injury,
		"experience":          w.Experience,
		"projection_variance": w.ProjectionVariance,
		"age":                 w.Age,
		"adp_gap":             w.ADPGap,
	} {
		if v < 0 {
			errs = append(errs, fmt.Errorf("risk.weights.%s cannot be negative", name))
		}
	}
	pw := t.Risk.Prospect.Weights
	for name, v := range map[string]float64{
		"hit_tool":      pw.HitTool,
		"age_relative":  pw.AgeRelative,
		"position_bust": pw.PositionBust,
		"pitcher":       pw.Pitcher,
		"injury":        pw.Injury,
	} {
		if v < 0 {
			errs = append(errs, fmt.Errorf("risk.prospect.weights.%s cannot be negative", name))
		}
	}
	for pos, rate := range t.Risk.Prospect.BustRates {
		if rate < 0 || rate > 1 {
			errs = append(errs, fmt.Errorf("risk.prospect.bust_rates.%s must be within [0,1]", pos))
		}
	}
	for _, c := range []struct {
		name  string
		curve risk.AgeCurve
	}{{"hitter_age", t.Risk.HitterAge}, {"pitcher_age", t.Risk.PitcherAge}} {
		if !(c.curve.PrimeStart <= c.curve.Peak && c.curve.Peak <= c.curve.Decline) {
			errs = append(errs, fmt.Errorf("risk.%s must satisfy prime_start <= peak <= decline", c.name))
		}
	}

	if t.Scarcity.Ceiling < 1 {
		errs = append(errs, fmt.Errorf("scarcity.ceiling must be at least 1, got %v", t.Scarcity.Ceiling))
	}
	if t.Scarcity.NoNeedDamping < 0 || t.Scarcity.NoNeedDamping > 1 {
		errs = append(errs, fmt.Errorf("scarcity.no_need_damping must be within [0,1]"))
	}

	if t.Needs.MediumDeficit > t.Needs.HighDeficit {
		errs = append(errs, fmt.Errorf("needs.medium_deficit must not exceed needs.high_deficit"))
	}

	if t.Recommend.Limit <= 0 {
		errs = append(errs, fmt.Errorf("recommend.limit must be positive"))
	}

	p := t.Predictor
	if p.MinSimulations > p.MaxSimulations {
		errs = append(errs, fmt.Errorf("predictor.min_simulations exceeds max_simulations"))
	}
	if !(0 <= p.RiskyThreshold && p.RiskyThreshold <= p.LikelyThreshold && p.LikelyThreshold <= 1) {
		errs = append(errs, fmt.Errorf("predictor thresholds must satisfy 0 <= risky <= likely <= 1"))
	}

	return errors.Join(errs...)
}
