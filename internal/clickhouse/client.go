package clickhouse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/logger"
)

// MarketSource is the ranking source name ADP from real drafts is stored under
const MarketSource = "market"

// ADPSource provides market average draft positions keyed by player id
type ADPSource interface {
	FetchADP(ctx context.Context) (map[string]float64, error)
	Close() error
}

// Client reads draft-pick observations from ClickHouse
type Client struct {
	conn     driver.Conn
	window   time.Duration
	minPicks uint64
}

// NewClient creates a new ClickHouse client
func NewClient(addr, database, username, password string) (*Client, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: database,
			Username: username,
			Password: password,
		},
		DialTimeout: 10 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &Client{conn: conn, window: 14 * 24 * time.Hour, minPicks: 5}, nil
}

// FetchADP averages the overall pick of every player drafted in the last two weeks.
// Players seen in fewer than five drafts are left out.
func (c *Client) FetchADP(ctx context.Context) (map[string]float64, error) {
	query := `
		SELECT
			player_id,
			avg(overall_pick) AS adp,
			count() AS picks
		FROM draft_picks
		WHERE drafted_at >= now() - toIntervalSecond(?)
		GROUP BY player_id
		HAVING picks >= ?
	`

	rows, err := c.conn.Query(ctx, query, int64(c.window.Seconds()), c.minPicks)
	if err != nil {
		return nil, fmt.Errorf("query draft_picks: %w", err)
	}
	defer rows.Close()

	adp := make(map[string]float64)
	for rows.Next() {
		var (
			id    string
			avg   float64
			picks uint64
		)
		if err := rows.Scan(&id, &avg, &picks); err != nil {
			return nil, fmt.Errorf("scan draft_picks row: %w", err)
		}
		adp[id] = avg
	}
	return adp, rows.Err()
}

// Ping checks the connection for readiness probes
func (c *Client) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

// Close closes the ClickHouse connection
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// ErrUnknownPlayer may be returned by an update func to mark an observation for a
// player the pool does not carry. Such players are skipped quietly.
var ErrUnknownPlayer = errors.New("unknown player")

// Sync pulls ADP from src and hands each observation to update. A failed update is
// logged and the sync continues. Returns the number of players updated.
func Sync(ctx context.Context, src ADPSource, update func(playerID string, adp float64) error) (int, error) {
	all, err := src.FetchADP(ctx)
	if err != nil {
		return 0, err
	}

	updated := 0
	for playerID, adp := range all {
		if err := update(playerID, adp); err != nil {
			if !errors.Is(err, ErrUnknownPlayer) {
				logger.Warn("Failed to update market ADP", "player_id", playerID, "error", err)
			}
			continue
		}
		updated++
	}
	return updated, nil
}
