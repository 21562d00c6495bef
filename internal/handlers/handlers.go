package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/assistant"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/auth"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/dal"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/draft"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/logger"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/pubsub"
)

// maxBody caps request bodies; the largest legitimate one is a feed import
const maxBody = 1 << 20

// APIHandlers contains all API handler methods
type APIHandlers struct {
	svc    *assistant.Service
	pubsub *pubsub.PubSub
}

// NewAPIHandlers creates a new API handlers instance
func NewAPIHandlers(svc *assistant.Service, ps *pubsub.PubSub) *APIHandlers {
	return &APIHandlers{
		svc:    svc,
		pubsub: ps,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case draft.IsValidation(err):
		return http.StatusBadRequest
	case draft.IsState(err):
		return http.StatusConflict
	case errors.Is(err, draft.ErrSessionNotFound), errors.Is(err, dal.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "error", err, "method", r.Method, "path", r.URL.Path)
	} else {
		logger.Debug("Request rejected", "error", err, "status", status, "path", r.URL.Path)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(v); err != nil {
		return &draft.ValidationError{Msg: "invalid request body: " + err.Error()}
	}
	return nil
}

// queryInt reads an optional integer query parameter
func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &draft.ValidationError{Msg: key + " must be an integer"}
	}
	return n, nil
}

// ListPlayers returns the full player pool
func (h *APIHandlers) ListPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := h.svc.Players(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, players)
}

// PlayerRisk returns the risk assessment for one player
func (h *APIHandlers) PlayerRisk(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.PlayerRisk(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// ListSessions returns the sessions of ?league=
func (h *APIHandlers) ListSessions(w http.ResponseWriter, r *http.Request) {
	league := r.URL.Query().Get("league")
	if league == "" {
		writeError(w, r, &draft.ValidationError{Msg: "league is required"})
		return
	}
	writeJSON(w, http.StatusOK, h.svc.LeagueSessions(league))
}

// StartSession begins a new draft
func (h *APIHandlers) StartSession(w http.ResponseWriter, r *http.Request) {
	var cfg draft.Config
	if err := decode(w, r, &cfg); err != nil {
		writeError(w, r, err)
		return
	}

	logger.Info("Starting draft session", "league_id", cfg.LeagueID, "teams", cfg.NumTeams, "user", userName(r))
	v, err := h.svc.StartSession(r.Context(), cfg)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// GetSession returns the session state
func (h *APIHandlers) GetSession(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Session(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Pick records a selection. teamId 0 drafts for the user's team.
func (h *APIHandlers) Pick(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerID string `json:"playerId"`
		TeamID   int    `json:"teamId"`
	}
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	id := chi.URLParam(r, "id")
	logger.Info("Drafting player", "session_id", id, "player_id", req.PlayerID, "team_id", req.TeamID)
	v, err := h.svc.Pick(r.Context(), id, req.PlayerID, req.TeamID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Undraft removes a drafted player from the board
func (h *APIHandlers) Undraft(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerID string `json:"playerId"`
	}
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	v, err := h.svc.Undraft(r.Context(), chi.URLParam(r, "id"), req.PlayerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type actionResponse struct {
	Session draft.View       `json:"session"`
	Action  draft.PickAction `json:"action"`
}

// Undo reverts the last action
func (h *APIHandlers) Undo(w http.ResponseWriter, r *http.Request) {
	v, a, err := h.svc.Undo(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, actionResponse{Session: v, Action: a})
}

// Redo re-applies the last undone action
func (h *APIHandlers) Redo(w http.ResponseWriter, r *http.Request) {
	v, a, err := h.svc.Redo(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, actionResponse{Session: v, Action: a})
}

// EndSession completes the draft and reports the number of picks made
func (h *APIHandlers) EndSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	v, total, err := h.svc.EndSession(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logger.Info("Draft session ended", "session_id", id, "total_picks", total)
	writeJSON(w, http.StatusOK, map[string]any{"session": v, "totalPicks": total})
}

// Import applies picks reported by an external league
func (h *APIHandlers) Import(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Picks []draft.ObservedPick `json:"picks"`
	}
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	v, rep, err := h.svc.Import(r.Context(), chi.URLParam(r, "id"), req.Picks)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session": v, "report": rep})
}

// ResetLeague drops every session of a league
func (h *APIHandlers) ResetLeague(w http.ResponseWriter, r *http.Request) {
	league := chi.URLParam(r, "league")
	logger.Info("Resetting league", "league_id", league, "user", userName(r))
	n, err := h.svc.ResetLeague(r.Context(), league)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "removed": n})
}

// Recommendations returns categorized pick suggestions for ?team= (default: the user)
func (h *APIHandlers) Recommendations(w http.ResponseWriter, r *http.Request) {
	team, err := queryInt(r, "team", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.svc.Recommend(r.Context(), chi.URLParam(r, "id"), team, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *APIHandlers) Scarcity(w http.ResponseWriter, r *http.Request) {
	team, err := queryInt(r, "team", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	snap, err := h.svc.Scarcity(r.Context(), chi.URLParam(r, "id"), team)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Needs returns category needs; ?prorate=true scales targets by roster progress
func (h *APIHandlers) Needs(w http.ResponseWriter, r *http.Request) {
	team, err := queryInt(r, "team", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	prorate, _ := strconv.ParseBool(r.URL.Query().Get("prorate"))

	out, err := h.svc.Needs(r.Context(), chi.URLParam(r, "id"), team, prorate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *APIHandlers) Surplus(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Surplus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Predict estimates whether ?player= is still available at ?target=
func (h *APIHandlers) Predict(w http.ResponseWriter, r *http.Request) {
	player := r.URL.Query().Get("player")
	if player == "" {
		writeError(w, r, &draft.ValidationError{Msg: "player is required"})
		return
	}
	target, err := queryInt(r, "target", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.svc.Predict(r.Context(), chi.URLParam(r, "id"), player, target)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Tuning returns the active tuning parameters
func (h *APIHandlers) Tuning(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Tuning())
}

func userName(r *http.Request) string {
	if u := auth.GetUser(r); u != nil {
		return u.Username
	}
	return ""
}
