// Package assistant ties the draft board, the player store and the scoring
// engines together. Every mutation runs on the board first; persistence and
// event publishing happen afterwards on the returned view.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/cache"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/clickhouse"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/config"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/dal"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/draft"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/logger"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/models"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/needs"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/predictor"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/pubsub"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/recommend"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/risk"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/scarcity"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/vorp"
)

// engines is one immutable generation of scoring components built from a Tuning
type engines struct {
	generation uint64
	tuning     config.Tuning
	risk       *risk.Engine
	scarcity   *scarcity.Tracker
	analyzer   *needs.Analyzer
	generator  *recommend.Generator
	predictor  *predictor.Predictor
}

// Options configures a Service. Only Store is required.
type Options struct {
	Store  dal.Store
	Events pubsub.Publisher
	Cache  cache.RiskCache
	Tuning *config.Tuning
	// Seed fixes the predictor's random source; 0 seeds from the clock
	Seed int64
}

// Service is the application layer shared by the HTTP, gRPC and MCP surfaces
type Service struct {
	store  dal.Store
	board  *draft.Board
	events pubsub.Publisher
	cache  cache.RiskCache
	seed   int64

	mu  sync.RWMutex
	eng *engines
}

type noopPublisher struct{}

func (noopPublisher) Publish(pubsub.Event) {}

// New creates a service
func New(opts Options) *Service {
	s := &Service{
		store:  opts.Store,
		board:  draft.NewBoard(),
		events: opts.Events,
		cache:  opts.Cache,
		seed:   opts.Seed,
	}
	if s.events == nil {
		s.events = noopPublisher{}
	}
	if s.cache == nil {
		s.cache = cache.NewMemoryCache(cache.DefaultTTL)
	}
	t := config.DefaultTuning()
	if opts.Tuning != nil {
		t = *opts.Tuning
	}
	s.eng = s.build(t, 1)
	return s
}

func (s *Service) build(t config.Tuning, generation uint64) *engines {
	seed := s.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	} else {
		seed += int64(generation - 1)
	}
	analyzer := needs.NewAnalyzer(t.Needs)
	return &engines{
		generation: generation,
		tuning:     t,
		risk:       risk.NewEngine(t.Risk),
		scarcity:   scarcity.NewTracker(t.Scarcity),
		analyzer:   analyzer,
		generator:  recommend.NewGenerator(t.Recommend, analyzer),
		predictor:  predictor.New(t.Predictor, rand.NewSource(seed)),
	}
}

func (s *Service) current() *engines {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.eng
}

// Tuning returns the active tuning
func (s *Service) Tuning() config.Tuning {
	return s.current().tuning
}

// SetTuning swaps every engine to a new tuning. Cached risk scores from the
// previous generation are no longer read.
func (s *Service) SetTuning(t config.Tuning) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.eng = s.build(t, s.eng.generation+1)
	gen := s.eng.generation
	s.mu.Unlock()

	logger.Info("Tuning applied", "generation", gen, "num_teams", t.League.NumTeams)
	s.events.Publish(pubsub.Event{Type: pubsub.EventTuning, Payload: map[string]any{"generation": gen}})
	return nil
}

// Restore loads persisted sessions onto the board
func (s *Service) Restore(ctx context.Context) (int, error) {
	views, err := s.store.LoadSessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("load sessions: %w", err)
	}
	n := 0
	for _, v := range views {
		if err := s.board.Restore(v); err != nil {
			logger.Warn("Skipping persisted session", "session_id", v.ID, "error", err)
			continue
		}
		n++
	}
	return n, nil
}

// Players returns the full player pool
func (s *Service) Players(ctx context.Context) ([]models.Player, error) {
	return s.store.ListPlayers(ctx)
}

// PlayerRisk scores one player
func (s *Service) PlayerRisk(ctx context.Context, playerID string) (risk.Assessment, error) {
	p, err := s.store.GetPlayer(ctx, playerID)
	if err != nil {
		return risk.Assessment{}, err
	}
	eng := s.current()
	return s.assess(ctx, eng, []models.Player{p})[p.ID], nil
}

func (s *Service) assess(ctx context.Context, eng *engines, pool []models.Player) map[string]risk.Assessment {
	out := make(map[string]risk.Assessment, len(pool))
	for _, p := range pool {
		key := cache.Key(eng.generation, p)
		if a, ok := s.cache.Get(ctx, key); ok {
			out[p.ID] = a
			continue
		}
		a := eng.risk.Assess(p)
		s.cache.Set(ctx, key, a)
		out[p.ID] = a
	}
	return out
}

// Session returns the current view of a session
func (s *Service) Session(id string) (draft.View, error) {
	return s.board.Get(id)
}

// ActiveSession returns the league's active session, if any
func (s *Service) ActiveSession(leagueID string) (draft.View, bool) {
	return s.board.Active(leagueID)
}

// LeagueSessions lists a league's sessions, oldest first
func (s *Service) LeagueSessions(leagueID string) []draft.View {
	return s.board.Sessions(leagueID)
}

// StartSession opens a new draft for cfg.LeagueID
func (s *Service) StartSession(ctx context.Context, cfg draft.Config) (draft.View, error) {
	for _, k := range cfg.Keepers {
		if err := s.requirePlayer(ctx, k.PlayerID); err != nil {
			return draft.View{}, err
		}
	}
	v, err := s.board.Start(cfg)
	if err != nil {
		return draft.View{}, err
	}
	s.commit(ctx, pubsub.EventStart, v, map[string]any{
		"numTeams":          v.NumTeams,
		"userDraftPosition": v.UserDraftPosition,
		"draftType":         v.DraftType,
		"keepers":           len(v.KeeperPicks),
	})
	return v, nil
}

// Pick drafts playerID to team (0 = team on the clock)
func (s *Service) Pick(ctx context.Context, id, playerID string, team int) (draft.View, error) {
	if err := s.requirePlayer(ctx, playerID); err != nil {
		return draft.View{}, err
	}
	v, err := s.board.Pick(id, playerID, team, draft.SourceManual)
	if err != nil {
		return draft.View{}, err
	}
	s.commit(ctx, pubsub.EventPick, v, actionPayload(v.History[len(v.History)-1]))
	return v, nil
}

// Undraft returns a drafted player to the pool without moving the pick
func (s *Service) Undraft(ctx context.Context, id, playerID string) (draft.View, error) {
	v, err := s.board.Undraft(id, playerID)
	if err != nil {
		return draft.View{}, err
	}
	s.commit(ctx, pubsub.EventUndraft, v, map[string]any{"playerId": playerID})
	return v, nil
}

// Undo reverts the latest action
func (s *Service) Undo(ctx context.Context, id string) (draft.View, draft.PickAction, error) {
	v, a, err := s.board.Undo(id)
	if err != nil {
		return draft.View{}, a, err
	}
	s.commit(ctx, pubsub.EventUndo, v, actionPayload(a))
	return v, a, nil
}

// Redo re-applies the newest undone action
func (s *Service) Redo(ctx context.Context, id string) (draft.View, draft.PickAction, error) {
	v, a, err := s.board.Redo(id)
	if err != nil {
		return draft.View{}, a, err
	}
	s.commit(ctx, pubsub.EventRedo, v, actionPayload(a))
	return v, a, nil
}

// EndSession closes the draft. The returned count is the number of players drafted.
func (s *Service) EndSession(ctx context.Context, id string) (draft.View, int, error) {
	v, total, err := s.board.End(id)
	if err != nil {
		return draft.View{}, 0, err
	}
	s.commit(ctx, pubsub.EventEnd, v, map[string]any{"totalPicks": total})
	return v, total, nil
}

// ResetLeague discards every ended session of a league
func (s *Service) ResetLeague(ctx context.Context, leagueID string) (int, error) {
	n, err := s.board.Reset(leagueID)
	if err != nil {
		return 0, err
	}
	if err := s.store.DeleteLeague(ctx, leagueID); err != nil {
		logger.Error("Failed to delete league sessions", "league_id", leagueID, "error", err)
	}
	s.events.Publish(pubsub.Event{Type: pubsub.EventReset, LeagueID: leagueID, Payload: map[string]any{"sessions": n}})
	return n, nil
}

// Import applies picks observed in an external league. Unknown players are skipped.
func (s *Service) Import(ctx context.Context, id string, picks []draft.ObservedPick) (draft.View, draft.ImportReport, error) {
	known := make([]draft.ObservedPick, 0, len(picks))
	unknown := make(map[string]string)
	for _, p := range picks {
		if err := s.requirePlayer(ctx, p.PlayerID); err != nil {
			unknown[p.PlayerID] = err.Error()
			continue
		}
		known = append(known, p)
	}

	v, rep, err := s.board.Import(id, known)
	if err != nil {
		return draft.View{}, rep, err
	}
	for pid, reason := range unknown {
		rep.Skipped[pid] = reason
	}
	if len(rep.Applied) > 0 {
		s.commit(ctx, pubsub.EventReconcile, v, map[string]any{
			"applied": len(rep.Applied),
			"skipped": len(rep.Skipped),
		})
	}
	return v, rep, nil
}

// SyncADP stores market ADP from src under the market ranking source
func (s *Service) SyncADP(ctx context.Context, src clickhouse.ADPSource) (int, error) {
	return clickhouse.Sync(ctx, src, func(playerID string, adp float64) error {
		err := s.store.SetPlayerADP(ctx, playerID, clickhouse.MarketSource, adp)
		if errors.Is(err, dal.ErrNotFound) {
			return fmt.Errorf("%s: %w", playerID, clickhouse.ErrUnknownPlayer)
		}
		return err
	})
}

func (s *Service) requirePlayer(ctx context.Context, playerID string) error {
	if playerID == "" {
		return &draft.ValidationError{Msg: "player id is required"}
	}
	if _, err := s.store.GetPlayer(ctx, playerID); err != nil {
		if errors.Is(err, dal.ErrNotFound) {
			return &draft.ValidationError{Msg: fmt.Sprintf("unknown player %s", playerID)}
		}
		return err
	}
	return nil
}

// commit persists the view and announces the change. Failures are logged; the
// board stays authoritative and the next save writes the full state again.
func (s *Service) commit(ctx context.Context, eventType string, v draft.View, payload map[string]any) {
	if err := s.store.SaveSession(ctx, v); err != nil {
		logger.Error("Failed to persist session", "session_id", v.ID, "event", eventType, "error", err)
	}
	if payload == nil {
		payload = map[string]any{}
	}
	payload["currentPick"] = v.CurrentPick
	payload["teamOnClock"] = v.TeamOnClock
	payload["state"] = v.State
	s.events.Publish(pubsub.Event{Type: eventType, SessionID: v.ID, LeagueID: v.LeagueID, Payload: payload})
}

func actionPayload(a draft.PickAction) map[string]any {
	return map[string]any{
		"playerId":    a.PlayerID,
		"teamId":      a.TeamID,
		"overallPick": a.OverallPick,
		"action":      a.Action,
		"source":      a.Source,
	}
}

// calculator builds a surplus calculator for the session's league size
func (s *Service) calculator(eng *engines, numTeams int) *vorp.Calculator {
	return vorp.NewCalculator(vorp.Config{
		Categories:  eng.analyzer.Categories(),
		RosterSlots: eng.tuning.League.RosterSlots,
		NumTeams:    numTeams,
	})
}
