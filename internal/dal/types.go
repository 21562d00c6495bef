package dal

import (
	"context"
	"errors"

	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/draft"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/models"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("not found")

// PlayerStore persists the player universe
type PlayerStore interface {
	ListPlayers(ctx context.Context) ([]models.Player, error)
	GetPlayer(ctx context.Context, id string) (models.Player, error)
	UpsertPlayers(ctx context.Context, players []models.Player) error
	// SetPlayerADP records one source's observed average draft position
	SetPlayerADP(ctx context.Context, playerID, source string, adp float64) error
}

// SessionStore persists draft sessions and their pick history
type SessionStore interface {
	SaveSession(ctx context.Context, v draft.View) error
	LoadSessions(ctx context.Context) ([]draft.View, error)
	DeleteLeague(ctx context.Context, leagueID string) error
}

// Store is the full data access layer
type Store interface {
	PlayerStore
	SessionStore
	Ping(ctx context.Context) error
	Close() error
}
