package assistant

import (
	"context"
	"fmt"

	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/draft"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/models"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/needs"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/predictor"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/recommend"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/scarcity"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/vorp"
)

// nonPositional slots never count toward positional need
var nonPositional = map[string]bool{"UTIL": true, "BE": true, "IL": true}

// situation is one team's view of a session, taken from a single board snapshot
type situation struct {
	view      draft.View
	eng       *engines
	team      int
	available []models.Player
	roster    []models.Player
	filled    map[string]int
	targets   map[string]float64
}

func (s *Service) situation(ctx context.Context, id string, team int) (*situation, error) {
	v, err := s.board.Get(id)
	if err != nil {
		return nil, err
	}
	if team == 0 {
		team = v.UserDraftPosition
	}
	if team < 1 || team > v.NumTeams {
		return nil, &draft.ValidationError{Msg: fmt.Sprintf("team %d is out of range 1..%d", team, v.NumTeams)}
	}
	pool, err := s.store.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}

	eng := s.current()
	roster := v.Roster(team, pool)
	return &situation{
		view:      v,
		eng:       eng,
		team:      team,
		available: v.Available(pool),
		roster:    roster,
		filled:    fillSlots(roster, eng.tuning.League.RosterSlots),
		targets:   needs.ScaleTargets(eng.tuning.League.Targets, v.NumTeams, eng.analyzer.Categories()),
	}, nil
}

// openSlots maps each positional slot to the team's remaining openings there
func (sit *situation) openSlots() map[string]int {
	open := make(map[string]int)
	for pos, n := range sit.eng.tuning.League.RosterSlots {
		if nonPositional[pos] {
			continue
		}
		open[pos] = n - sit.filled[pos]
	}
	return open
}

func (sit *situation) positionNeed() map[string]float64 {
	out := make(map[string]float64)
	for pos, n := range sit.eng.tuning.League.RosterSlots {
		if nonPositional[pos] {
			continue
		}
		out[pos] = scarcity.PositionNeed(sit.filled[pos], n)
	}
	return out
}

// fillSlots assigns each rostered player to the first open slot among their
// positions, then UTIL for hitters, then the bench. Returns the count per slot.
func fillSlots(roster []models.Player, slots map[string]int) map[string]int {
	filled := make(map[string]int)
	place := func(pos string) bool {
		if filled[pos] < slots[pos] {
			filled[pos]++
			return true
		}
		return false
	}
	for _, p := range roster {
		placed := false
		for _, pos := range p.Positions {
			if place(pos) {
				placed = true
				break
			}
		}
		if !placed && !p.IsPitcher() {
			placed = place("UTIL")
		}
		if !placed {
			place("BE")
		}
	}
	return filled
}

func rosterSize(slots map[string]int) int {
	n := 0
	for pos, c := range slots {
		if pos != "IL" {
			n += c
		}
	}
	return n
}

// Recommend builds the five pick lists for a team (0 = the user's team)
func (s *Service) Recommend(ctx context.Context, id string, team, limit int) (recommend.Result, error) {
	sit, err := s.situation(ctx, id, team)
	if err != nil {
		return recommend.Result{}, err
	}
	eng := sit.eng

	snap := eng.scarcity.Compute(sit.available, sit.openSlots())
	return eng.generator.Generate(recommend.Inputs{
		Pool:     sit.available,
		Risk:     s.assess(ctx, eng, sit.available),
		Scarcity: snap,
		Needs:    eng.analyzer.Needs(sit.roster, sit.targets),
		Surplus:  s.calculator(eng, sit.view.NumTeams).Compute(sit.available),
		Context: recommend.Context{
			NumTeams:     sit.view.NumTeams,
			CurrentPick:  sit.view.CurrentPick,
			Roster:       sit.roster,
			Targets:      sit.targets,
			PositionNeed: sit.positionNeed(),
			Limit:        limit,
		},
	}), nil
}

// Scarcity reports position scarcity over the available pool, damped for the
// positions the team has already filled
func (s *Service) Scarcity(ctx context.Context, id string, team int) (scarcity.Snapshot, error) {
	sit, err := s.situation(ctx, id, team)
	if err != nil {
		return scarcity.Snapshot{}, err
	}
	return sit.eng.scarcity.Compute(sit.available, sit.openSlots()), nil
}

// Needs measures a team's roster against the league-size targets. With prorate the
// counting targets shrink to the share of the roster already drafted.
func (s *Service) Needs(ctx context.Context, id string, team int, prorate bool) ([]needs.CategoryNeed, error) {
	sit, err := s.situation(ctx, id, team)
	if err != nil {
		return nil, err
	}
	targets := sit.targets
	if prorate {
		slots := sit.eng.tuning.League.RosterSlots
		targets = needs.ProRate(targets, len(sit.roster), rosterSize(slots), sit.eng.analyzer.Categories())
	}
	return sit.eng.analyzer.Needs(sit.roster, targets), nil
}

// Surplus computes value over replacement for every available player
func (s *Service) Surplus(ctx context.Context, id string) (map[string]vorp.SurplusValue, error) {
	sit, err := s.situation(ctx, id, 0)
	if err != nil {
		return nil, err
	}
	return s.calculator(sit.eng, sit.view.NumTeams).Compute(sit.available), nil
}

// Predict estimates whether playerID survives until targetPick. A zero target
// uses the user's next pick.
func (s *Service) Predict(ctx context.Context, id, playerID string, targetPick int) (predictor.Result, error) {
	v, err := s.board.Get(id)
	if err != nil {
		return predictor.Result{}, err
	}
	p, err := s.store.GetPlayer(ctx, playerID)
	if err != nil {
		return predictor.Result{}, err
	}
	if targetPick == 0 {
		targetPick = v.NextUserPick()
	}
	if targetPick < 1 {
		return predictor.Result{}, &draft.ValidationError{Msg: "target pick must be positive"}
	}

	in := predictor.InputFor(p)
	_, in.Drafted = v.Drafted[p.ID]
	return s.current().predictor.Predict(in, v.CurrentPick, targetPick, v.NumTeams), nil
}
