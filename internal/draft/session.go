package draft

import (
	"fmt"
	"sort"
	"time"

	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/models"
)

// State is the lifecycle stage of a session
type State string

const (
	Inactive State = "inactive"
	Active   State = "active"
	Ended    State = "ended"
)

// ActionType is the kind of a recorded pick action
type ActionType string

const (
	DraftMine  ActionType = "draft_mine"
	DraftOther ActionType = "draft_other"
	Undraft    ActionType = "undraft"
	KeeperPick ActionType = "keeper"
)

// Source records where an action came from
type Source string

const (
	SourceManual Source = "manual"
	SourceFeed   Source = "feed"
	SourceKeeper Source = "keeper"
)

// PickAction is one immutable entry in a session's history
type PickAction struct {
	Sequence    int        `json:"sequence"`
	PlayerID    string     `json:"playerId"`
	Action      ActionType `json:"action"`
	TeamID      int        `json:"teamId"`
	OverallPick int        `json:"overallPick"`
	Round       int        `json:"round"`
	Undone      bool       `json:"undone"`
	Source      Source     `json:"source"`
	At          time.Time  `json:"at"`
}

func (a PickAction) isDraft() bool {
	return a.Action == DraftMine || a.Action == DraftOther
}

// Keeper pre-assigns a player to a team in a given round
type Keeper struct {
	PlayerID string `json:"playerId"`
	TeamID   int    `json:"teamId"`
	Round    int    `json:"round"`
}

// Config describes a draft to start
type Config struct {
	LeagueID          string   `json:"leagueId"`
	Name              string   `json:"name"`
	NumTeams          int      `json:"numTeams"`
	UserDraftPosition int      `json:"userDraftPosition"`
	DraftType         Type     `json:"draftType"`
	Rounds            int      `json:"rounds,omitempty"`
	Keepers           []Keeper `json:"keepers,omitempty"`
}

// Team count bounds
const (
	MinTeams = 2
	MaxTeams = 20
)

// Validate checks a configuration before a session starts
func (c Config) Validate() error {
	if c.LeagueID == "" {
		return invalid("league id is required")
	}
	if c.NumTeams < MinTeams || c.NumTeams > MaxTeams {
		return invalid(fmt.Sprintf("number of teams must be between %d and %d, got %d", MinTeams, MaxTeams, c.NumTeams))
	}
	if c.UserDraftPosition < 1 || c.UserDraftPosition > c.NumTeams {
		return invalid(fmt.Sprintf("draft position must be between 1 and %d, got %d", c.NumTeams, c.UserDraftPosition))
	}
	switch c.DraftType {
	case Snake, Linear:
	default:
		return invalid(fmt.Sprintf("unknown draft type %q", c.DraftType))
	}
	if c.Rounds < 0 {
		return invalid("rounds cannot be negative")
	}

	type slot struct{ team, round int }
	slots := make(map[slot]string)
	players := make(map[string]bool)
	for _, k := range c.Keepers {
		if k.PlayerID == "" {
			return invalid("keeper is missing a player id")
		}
		if k.TeamID < 1 || k.TeamID > c.NumTeams {
			return invalid(fmt.Sprintf("keeper %s has invalid team %d", k.PlayerID, k.TeamID))
		}
		if k.Round < 1 || (c.Rounds > 0 && k.Round > c.Rounds) {
			return invalid(fmt.Sprintf("keeper %s has invalid round %d", k.PlayerID, k.Round))
		}
		if other, dup := slots[slot{k.TeamID, k.Round}]; dup {
			return invalid(fmt.Sprintf("duplicate keeper round: team %d round %d holds both %s and %s", k.TeamID, k.Round, other, k.PlayerID))
		}
		if players[k.PlayerID] {
			return invalid(fmt.Sprintf("player %s is kept twice", k.PlayerID))
		}
		slots[slot{k.TeamID, k.Round}] = k.PlayerID
		players[k.PlayerID] = true
	}
	return nil
}

// Session is the aggregate for one draft. It is not safe for concurrent use;
// Board serialises access.
type Session struct {
	id      string
	state   State
	cfg     Config
	current int
	done    []PickAction
	redo    []PickAction
	drafted map[string]int
	keepers map[int]bool
	// imported holds every player a feed has placed, including ones later undone
	imported map[string]bool
	nextSeq int
	started time.Time
	ended   time.Time
	now     func() time.Time
}

// NewSession returns an Inactive session
func NewSession(id string) *Session {
	return &Session{
		id:      id,
		state:   Inactive,
		drafted:  make(map[string]int),
		keepers:  make(map[int]bool),
		imported: make(map[string]bool),
		nextSeq:  1,
		now:     time.Now,
	}
}

// Start moves Inactive to Active and places keepers
func (s *Session) Start(cfg Config) error {
	if s.state != Inactive {
		return &StateError{Msg: fmt.Sprintf("session is already %s", s.state)}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.cfg = cfg
	s.state = Active
	s.started = s.now()

	for _, k := range cfg.Keepers {
		pick := OverallPick(k.Round, k.TeamID, cfg.NumTeams, cfg.DraftType)
		s.keepers[pick] = true
		s.drafted[k.PlayerID] = k.TeamID
		s.done = append(s.done, PickAction{
			Sequence:    s.seq(),
			PlayerID:    k.PlayerID,
			Action:      KeeperPick,
			TeamID:      k.TeamID,
			OverallPick: pick,
			Round:       k.Round,
			Source:      SourceKeeper,
			At:          s.started,
		})
	}
	s.current = s.skipKeepers(1)
	return nil
}

func (s *Session) seq() int {
	n := s.nextSeq
	s.nextSeq++
	return n
}

func (s *Session) skipKeepers(pick int) int {
	for s.keepers[pick] {
		pick++
	}
	return pick
}

func (s *Session) totalPicks() int {
	if s.cfg.Rounds <= 0 {
		return 0
	}
	return s.cfg.Rounds * s.cfg.NumTeams
}

func (s *Session) requireActive() error {
	switch s.state {
	case Active:
		return nil
	case Ended:
		return ErrSessionEnded
	}
	return &StateError{Msg: "session has not started"}
}

// Pick records a selection at the current pick. team 0 means the team on the clock.
func (s *Session) Pick(playerID string, team int, source Source) error {
	if err := s.requireActive(); err != nil {
		return err
	}
	if playerID == "" {
		return invalid("player id is required")
	}
	if total := s.totalPicks(); total > 0 && s.current > total {
		return &StateError{Msg: "draft is complete"}
	}
	if owner, ok := s.drafted[playerID]; ok {
		return invalid(fmt.Sprintf("player %s is already drafted by team %d", playerID, owner))
	}
	if team == 0 {
		team = TeamOnClock(s.current, s.cfg.NumTeams, s.cfg.DraftType)
	}
	if team < 1 || team > s.cfg.NumTeams {
		return invalid(fmt.Sprintf("team must be between 1 and %d, got %d", s.cfg.NumTeams, team))
	}
	if source == "" {
		source = SourceManual
	}

	action := DraftOther
	if team == s.cfg.UserDraftPosition {
		action = DraftMine
	}
	s.done = append(s.done, PickAction{
		Sequence:    s.seq(),
		PlayerID:    playerID,
		Action:      action,
		TeamID:      team,
		OverallPick: s.current,
		Round:       RoundOf(s.current, s.cfg.NumTeams),
		Source:      source,
		At:          s.now(),
	})
	s.redo = nil
	s.drafted[playerID] = team
	if source == SourceFeed {
		s.imported[playerID] = true
	}
	s.current = s.skipKeepers(s.current + 1)
	return nil
}

// WasImported reports whether a feed ever placed the player in this session
func (s *Session) WasImported(playerID string) bool {
	return s.imported[playerID]
}

// Undraft returns a drafted player to the pool without moving the current pick
func (s *Session) Undraft(playerID string) error {
	if err := s.requireActive(); err != nil {
		return err
	}
	team, ok := s.drafted[playerID]
	if !ok {
		return invalid(fmt.Sprintf("player %s is not drafted", playerID))
	}
	for _, a := range s.done {
		if a.PlayerID == playerID && a.Action == KeeperPick {
			return invalid(fmt.Sprintf("player %s is a keeper", playerID))
		}
	}
	s.done = append(s.done, PickAction{
		Sequence:    s.seq(),
		PlayerID:    playerID,
		Action:      Undraft,
		TeamID:      team,
		OverallPick: s.current,
		Round:       RoundOf(s.current, s.cfg.NumTeams),
		Source:      SourceManual,
		At:          s.now(),
	})
	s.redo = nil
	delete(s.drafted, playerID)
	return nil
}

// Undo reverts the latest action and moves it onto the redo stack
func (s *Session) Undo() (PickAction, error) {
	if err := s.requireActive(); err != nil {
		return PickAction{}, err
	}
	n := len(s.done)
	if n == 0 || s.done[n-1].Action == KeeperPick {
		return PickAction{}, ErrNothingToUndo
	}
	a := s.done[n-1]
	s.done = s.done[:n-1]

	if a.isDraft() {
		delete(s.drafted, a.PlayerID)
		s.current = a.OverallPick
	} else {
		s.drafted[a.PlayerID] = a.TeamID
	}

	a.Undone = true
	s.redo = append(s.redo, a)
	return a, nil
}

// Redo re-applies the most recently undone action
func (s *Session) Redo() (PickAction, error) {
	if err := s.requireActive(); err != nil {
		return PickAction{}, err
	}
	n := len(s.redo)
	if n == 0 {
		return PickAction{}, ErrNothingToRedo
	}
	a := s.redo[n-1]

	if a.isDraft() {
		if owner, ok := s.drafted[a.PlayerID]; ok {
			return PickAction{}, &StateError{Msg: fmt.Sprintf("cannot redo: player %s is drafted by team %d", a.PlayerID, owner)}
		}
		s.drafted[a.PlayerID] = a.TeamID
		s.current = s.skipKeepers(a.OverallPick + 1)
	} else {
		delete(s.drafted, a.PlayerID)
	}

	s.redo = s.redo[:n-1]
	a.Undone = false
	s.done = append(s.done, a)
	return a, nil
}

// End freezes the session and reports how many players were drafted
func (s *Session) End() (int, error) {
	if err := s.requireActive(); err != nil {
		return 0, err
	}
	s.state = Ended
	s.ended = s.now()
	return len(s.drafted), nil
}

// IsDrafted reports whether a player is currently on a team
func (s *Session) IsDrafted(playerID string) bool {
	_, ok := s.drafted[playerID]
	return ok
}

// View is a read-only copy of a session's state
type View struct {
	ID                string         `json:"id"`
	LeagueID          string         `json:"leagueId"`
	Name              string         `json:"name,omitempty"`
	State             State          `json:"state"`
	NumTeams          int            `json:"numTeams"`
	UserDraftPosition int            `json:"userDraftPosition"`
	DraftType         Type           `json:"draftType"`
	Rounds            int            `json:"rounds,omitempty"`
	CurrentPick       int            `json:"currentPick"`
	CurrentRound      int            `json:"currentRound"`
	PickInRound       int            `json:"pickInRound"`
	TeamOnClock       int            `json:"teamOnClock"`
	IsUserPick        bool           `json:"isUserPick"`
	CanUndo           bool           `json:"canUndo"`
	CanRedo           bool           `json:"canRedo"`
	History           []PickAction   `json:"history"`
	RedoBuffer        []PickAction   `json:"redoBuffer"`
	Drafted           map[string]int `json:"drafted"`
	KeeperPicks       []int          `json:"keeperPicks,omitempty"`
	Imported          []string       `json:"imported,omitempty"`
	TotalDrafted      int            `json:"totalDrafted"`
	StartedAt         *time.Time     `json:"startedAt,omitempty"`
	EndedAt           *time.Time     `json:"endedAt,omitempty"`
}

// View snapshots the session. The result shares no memory with the session.
func (s *Session) View() View {
	v := View{
		ID:                s.id,
		LeagueID:          s.cfg.LeagueID,
		Name:              s.cfg.Name,
		State:             s.state,
		NumTeams:          s.cfg.NumTeams,
		UserDraftPosition: s.cfg.UserDraftPosition,
		DraftType:         s.cfg.DraftType,
		Rounds:            s.cfg.Rounds,
		CurrentPick:       s.current,
		History:           append([]PickAction{}, s.done...),
		RedoBuffer:        append([]PickAction{}, s.redo...),
		Drafted:           make(map[string]int, len(s.drafted)),
		TotalDrafted:      len(s.drafted),
	}
	for id, team := range s.drafted {
		v.Drafted[id] = team
	}
	for pick := range s.keepers {
		v.KeeperPicks = append(v.KeeperPicks, pick)
	}
	sort.Ints(v.KeeperPicks)
	for id := range s.imported {
		v.Imported = append(v.Imported, id)
	}
	sort.Strings(v.Imported)
	if s.state != Inactive {
		v.CurrentRound = RoundOf(s.current, s.cfg.NumTeams)
		v.PickInRound = PickInRound(s.current, s.cfg.NumTeams)
		v.TeamOnClock = TeamOnClock(s.current, s.cfg.NumTeams, s.cfg.DraftType)
		v.IsUserPick = v.TeamOnClock == s.cfg.UserDraftPosition
		started := s.started
		v.StartedAt = &started
	}
	if s.state == Active {
		v.CanUndo = len(s.done) > 0 && s.done[len(s.done)-1].Action != KeeperPick
		v.CanRedo = len(s.redo) > 0
	}
	if s.state == Ended {
		ended := s.ended
		v.EndedAt = &ended
	}
	return v
}

// FromView rebuilds a session from a persisted view
func FromView(v View) *Session {
	s := NewSession(v.ID)
	s.state = v.State
	s.cfg = Config{
		LeagueID:          v.LeagueID,
		Name:              v.Name,
		NumTeams:          v.NumTeams,
		UserDraftPosition: v.UserDraftPosition,
		DraftType:         v.DraftType,
		Rounds:            v.Rounds,
	}
	s.current = v.CurrentPick
	s.done = append([]PickAction{}, v.History...)
	s.redo = append([]PickAction{}, v.RedoBuffer...)
	for id, team := range v.Drafted {
		s.drafted[id] = team
	}
	for _, pick := range v.KeeperPicks {
		s.keepers[pick] = true
	}
	for _, id := range v.Imported {
		s.imported[id] = true
	}
	for _, a := range s.done {
		if a.Source == SourceFeed {
			s.imported[a.PlayerID] = true
		}
		if a.Action == KeeperPick {
			s.keepers[a.OverallPick] = true
			s.cfg.Keepers = append(s.cfg.Keepers, Keeper{PlayerID: a.PlayerID, TeamID: a.TeamID, Round: a.Round})
		}
		if a.Sequence >= s.nextSeq {
			s.nextSeq = a.Sequence + 1
		}
	}
	for _, a := range s.redo {
		if a.Source == SourceFeed {
			s.imported[a.PlayerID] = true
		}
		if a.Sequence >= s.nextSeq {
			s.nextSeq = a.Sequence + 1
		}
	}
	if v.StartedAt != nil {
		s.started = *v.StartedAt
	}
	if v.EndedAt != nil {
		s.ended = *v.EndedAt
	}
	return s
}

// Available filters the pool down to undrafted players, preserving order
func (v View) Available(pool []models.Player) []models.Player {
	out := make([]models.Player, 0, len(pool))
	for _, p := range pool {
		if _, taken := v.Drafted[p.ID]; !taken {
			out = append(out, p)
		}
	}
	return out
}

// Roster returns the players drafted by a team, in pool order
func (v View) Roster(team int, pool []models.Player) []models.Player {
	var out []models.Player
	for _, p := range pool {
		if owner, ok := v.Drafted[p.ID]; ok && owner == team {
			out = append(out, p)
		}
	}
	return out
}

// NextUserPick returns the next overall pick owned by the user, at or after the current pick
func (v View) NextUserPick() int {
	if v.NumTeams <= 0 {
		return 0
	}
	kept := make(map[int]bool, len(v.KeeperPicks))
	for _, p := range v.KeeperPicks {
		kept[p] = true
	}
	for p := v.CurrentPick; p < v.CurrentPick+2*v.NumTeams+len(v.KeeperPicks); p++ {
		if !kept[p] && TeamOnClock(p, v.NumTeams, v.DraftType) == v.UserDraftPosition {
			return p
		}
	}
	return 0
}
