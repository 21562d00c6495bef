package dal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/draft"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/logger"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/models"
)

// sqlStore holds the queries shared by the SQLite and Postgres stores.
// Queries are written with ? placeholders and rebound per dialect.
type sqlStore struct {
	db      *sql.DB
	dialect Dialect
}

func (s *sqlStore) q(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ts converts a time to the column representation of the dialect
func (s *sqlStore) ts(t time.Time) any {
	if s.dialect == DialectPostgres {
		return t.UTC()
	}
	return t.UnixNano()
}

func (s *sqlStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}

// seedIfEmpty loads the default pool into a fresh database
func (s *sqlStore) seedIfEmpty(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM players").Scan(&count); err != nil {
		return fmt.Errorf("count players: %w", err)
	}
	if count > 0 {
		return nil
	}
	logger.Info("Seeding default player pool", "dialect", s.dialect)
	return s.UpsertPlayers(ctx, defaultPlayers())
}

func (s *sqlStore) ListPlayers(ctx context.Context) ([]models.Player, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT data FROM players ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var p models.Player
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (s *sqlStore) GetPlayer(ctx context.Context, id string) (models.Player, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, s.q("SELECT data FROM players WHERE id = ?"), id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Player{}, ErrNotFound
	}
	if err != nil {
		return models.Player{}, fmt.Errorf("get player %s: %w", id, err)
	}
	var p models.Player
	if err := json.Unmarshal(data, &p); err != nil {
		return models.Player{}, fmt.Errorf("decode player %s: %w", id, err)
	}
	return p, nil
}

func (s *sqlStore) UpsertPlayers(ctx context.Context, players []models.Player) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.q(`
		INSERT INTO players (id, name, primary_position, team, data, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			primary_position = excluded.primary_position,
			team = excluded.team,
			data = excluded.data,
			updated_at = excluded.updated_at
	`))
	if err != nil {
		return fmt.Errorf("prepare player upsert: %w", err)
	}
	defer stmt.Close()

	now := s.ts(time.Now())
	for _, p := range players {
		data, err := json.Marshal(p)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, p.ID, p.Name, p.PrimaryPosition(), p.Team, string(data), now); err != nil {
			return fmt.Errorf("upsert player %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

func (s *sqlStore) SetPlayerADP(ctx context.Context, playerID, source string, adp float64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := "SELECT data FROM players WHERE id = ?"
	if s.dialect == DialectPostgres {
		query += " FOR UPDATE"
	}
	var data []byte
	err = tx.QueryRowContext(ctx, s.q(query), playerID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	var p models.Player
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	setADP(&p, source, adp)
	if data, err = json.Marshal(p); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, s.q("UPDATE players SET data = ?, updated_at = ? WHERE id = ?"), string(data), s.ts(time.Now()), playerID); err != nil {
		return err
	}
	return tx.Commit()
}

// SaveSession writes the session row and replaces its pick history in one transaction
func (s *sqlStore) SaveSession(ctx context.Context, v draft.View) error {
	meta := v
	meta.History = nil
	meta.RedoBuffer = nil
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, s.q(`
		INSERT INTO draft_sessions (id, league_id, state, current_pick, data, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			state = excluded.state,
			current_pick = excluded.current_pick,
			data = excluded.data,
			updated_at = excluded.updated_at
	`), v.ID, v.LeagueID, string(v.State), v.CurrentPick, string(data), s.ts(time.Now()))
	if err != nil {
		return fmt.Errorf("save session %s: %w", v.ID, err)
	}

	if _, err := tx.ExecContext(ctx, s.q("DELETE FROM pick_actions WHERE session_id = ?"), v.ID); err != nil {
		return fmt.Errorf("clear pick history: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, s.q(`
		INSERT INTO pick_actions (session_id, sequence, player_id, action, team_id, overall_pick, round, undone, source, at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, list := range [][]draft.PickAction{v.History, v.RedoBuffer} {
		for _, a := range list {
			if _, err := stmt.ExecContext(ctx, v.ID, a.Sequence, a.PlayerID, string(a.Action), a.TeamID,
				a.OverallPick, a.Round, a.Undone, string(a.Source), s.ts(a.At)); err != nil {
				return fmt.Errorf("save pick action %d: %w", a.Sequence, err)
			}
		}
	}
	return tx.Commit()
}

func (s *sqlStore) LoadSessions(ctx context.Context) ([]draft.View, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT data FROM draft_sessions ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	var views []draft.View
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			rows.Close()
			return nil, err
		}
		var v draft.View
		if err := json.Unmarshal(data, &v); err != nil {
			rows.Close()
			return nil, fmt.Errorf("decode session: %w", err)
		}
		views = append(views, v)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range views {
		if err := s.loadActions(ctx, &views[i]); err != nil {
			return nil, err
		}
	}
	return views, nil
}

func (s *sqlStore) loadActions(ctx context.Context, v *draft.View) error {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT sequence, player_id, action, team_id, overall_pick, round, undone, source, at
		FROM pick_actions WHERE session_id = ? ORDER BY sequence
	`), v.ID)
	if err != nil {
		return fmt.Errorf("load pick history for %s: %w", v.ID, err)
	}
	defer rows.Close()

	v.History = []draft.PickAction{}
	var undone []draft.PickAction
	for rows.Next() {
		var (
			a              draft.PickAction
			action, source string
		)
		if s.dialect == DialectPostgres {
			err = rows.Scan(&a.Sequence, &a.PlayerID, &action, &a.TeamID, &a.OverallPick, &a.Round, &a.Undone, &source, &a.At)
		} else {
			var nanos int64
			err = rows.Scan(&a.Sequence, &a.PlayerID, &action, &a.TeamID, &a.OverallPick, &a.Round, &a.Undone, &source, &nanos)
			a.At = time.Unix(0, nanos).UTC()
		}
		if err != nil {
			return err
		}
		a.Action = draft.ActionType(action)
		a.Source = draft.Source(source)
		if a.Undone {
			undone = append(undone, a)
		} else {
			v.History = append(v.History, a)
		}
	}

	// the most recently undone action has the lowest sequence and sits on top of the stack
	v.RedoBuffer = make([]draft.PickAction, 0, len(undone))
	for i := len(undone) - 1; i >= 0; i-- {
		v.RedoBuffer = append(v.RedoBuffer, undone[i])
	}
	return rows.Err()
}

func (s *sqlStore) DeleteLeague(ctx context.Context, leagueID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.q(`
		DELETE FROM pick_actions WHERE session_id IN (SELECT id FROM draft_sessions WHERE league_id = ?)
	`), leagueID); err != nil {
		return fmt.Errorf("delete league history: %w", err)
	}
	if _, err := tx.ExecContext(ctx, s.q("DELETE FROM draft_sessions WHERE league_id = ?"), leagueID); err != nil {
		return fmt.Errorf("delete league sessions: %w", err)
	}
	return tx.Commit()
}
