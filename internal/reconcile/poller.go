package reconcile

import (
	"context"
	"time"

	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/draft"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/logger"
)

// Importer is the part of the assistant the poller drives
type Importer interface {
	ActiveSession(leagueID string) (draft.View, bool)
	Import(ctx context.Context, id string, picks []draft.ObservedPick) (draft.View, draft.ImportReport, error)
}

// Poller periodically pulls an external league's picks into its active session
type Poller struct {
	feed     Feed
	importer Importer
	leagueID string
	interval time.Duration
}

func NewPoller(feed Feed, importer Importer, leagueID string, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Poller{feed: feed, importer: importer, leagueID: leagueID, interval: interval}
}

// Run polls until ctx is cancelled. Feed and import failures are logged and the next tick retries.
func (p *Poller) Run(ctx context.Context) {
	logger.Info("League reconciliation started", "league_id", p.leagueID, "interval", p.interval.String())
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("League reconciliation stopped", "league_id", p.leagueID)
			return
		case <-ticker.C:
			if _, err := p.Once(ctx); err != nil {
				logger.Warn("League reconciliation failed", "league_id", p.leagueID, "error", err)
			}
		}
	}
}

// Once runs a single reconciliation pass. Picks already on the board, and feed picks
// the user has since undone, are dropped before import, so the report only lists
// new picks and genuine conflicts.
func (p *Poller) Once(ctx context.Context) (draft.ImportReport, error) {
	view, ok := p.importer.ActiveSession(p.leagueID)
	if !ok {
		return draft.ImportReport{}, nil
	}

	observed, err := p.feed.Picks(ctx, p.leagueID)
	if err != nil {
		return draft.ImportReport{}, err
	}

	seen := make(map[string]bool, len(view.Imported))
	for _, id := range view.Imported {
		seen[id] = true
	}
	fresh := make([]draft.ObservedPick, 0, len(observed))
	for _, pick := range observed {
		if _, taken := view.Drafted[pick.PlayerID]; taken || seen[pick.PlayerID] {
			continue
		}
		fresh = append(fresh, pick)
	}
	if len(fresh) == 0 {
		return draft.ImportReport{}, nil
	}

	_, rep, err := p.importer.Import(ctx, view.ID, fresh)
	if err != nil {
		return rep, err
	}
	for playerID, reason := range rep.Skipped {
		logger.Warn("Skipped external pick", "league_id", p.leagueID, "player_id", playerID, "reason", reason)
	}
	logger.Info("Reconciled league picks", "league_id", p.leagueID, "applied", len(rep.Applied), "skipped", len(rep.Skipped))
	return rep, nil
}
