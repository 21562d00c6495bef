package models

import "math"

// Stat keys used in projection stat lines
const (
	StatPA     = "pa"
	StatIP     = "ip"
	StatRuns   = "runs"
	StatHR     = "hr"
	StatRBI    = "rbi"
	StatSB     = "sb"
	StatAVG    = "avg"
	StatOPS    = "ops"
	StatK      = "strikeouts"
	StatQS     = "quality_starts"
	StatWins   = "wins"
	StatSaves  = "saves"
	StatERA    = "era"
	StatWHIP   = "whip"
	StatAtBats = "ab"
)

// Minimum projected playing time for a player to be valued
const (
	MinProjectedPA = 50.0
	MinProjectedIP = 10.0
)

// Group separates hitting and pitching categories
type Group string

const (
	Batting  Group = "batting"
	Pitching Group = "pitching"
)

// Category is one scoring category of the league
type Category struct {
	ID            string `json:"id" toml:"id"`
	Stat          string `json:"stat" toml:"stat"`
	Group         Group  `json:"group" toml:"group"`
	LowerIsBetter bool   `json:"lowerIsBetter" toml:"lower_is_better"`
	// Volume is the stat used to weight a rate category (pa or ip). Empty for counting stats.
	Volume string `json:"volume,omitempty" toml:"volume"`
}

// IsRate reports whether the category is a volume-weighted rate
func (c Category) IsRate() bool { return c.Volume != "" }

// DefaultCategories is a standard 6x6 rotisserie setup
func DefaultCategories() []Category {
	return []Category{
		{ID: "R", Stat: StatRuns, Group: Batting},
		{ID: "HR", Stat: StatHR, Group: Batting},
		{ID: "RBI", Stat: StatRBI, Group: Batting},
		{ID: "SB", Stat: StatSB, Group: Batting},
		{ID: "AVG", Stat: StatAVG, Group: Batting, Volume: StatPA},
		{ID: "OPS", Stat: StatOPS, Group: Batting, Volume: StatPA},
		{ID: "K", Stat: StatK, Group: Pitching},
		{ID: "QS", Stat: StatQS, Group: Pitching},
		{ID: "W", Stat: StatWins, Group: Pitching},
		{ID: "SV", Stat: StatSaves, Group: Pitching},
		{ID: "ERA", Stat: StatERA, Group: Pitching, LowerIsBetter: true, Volume: StatIP},
		{ID: "WHIP", Stat: StatWHIP, Group: Pitching, LowerIsBetter: true, Volume: StatIP},
	}
}

// Mean returns the arithmetic mean, or 0 for an empty slice
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// StdDev returns the sample standard deviation, or 0 when fewer than two values exist
func StdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := Mean(xs)
	ss := 0.0
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

// Clamp bounds v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// DefaultRosterSlots is the per-team starting lineup plus bench and IL
func DefaultRosterSlots() map[string]int {
	return map[string]int{
		"C": 1, "1B": 1, "2B": 1, "3B": 1, "SS": 1, "OF": 3, "UTIL": 1,
		"SP": 5, "RP": 2, "BE": 4, "IL": 1,
	}
}
