package fuzz

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/assistant"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/auth"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/dal"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/draft"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/handlers"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/logger"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/models"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/pubsub"
)

func init() {
	// Initialize logger for tests
	logger.Init()
}

type fuzzServer struct {
	handler http.Handler
	svc     *assistant.Service
	cookies []*http.Cookie
}

func newFuzzServer(t *testing.T) *fuzzServer {
	ps := pubsub.New()
	t.Cleanup(ps.Close)
	svc := assistant.New(assistant.Options{Store: dal.NewMemoryDAL(), Events: ps, Seed: 1})
	provider := auth.NewMockAuth()
	h := handlers.NewRouter(handlers.RouterOptions{
		API:    handlers.NewAPIHandlers(svc, ps),
		Health: handlers.NewHealth(),
		Auth:   provider,
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	return &fuzzServer{handler: h, svc: svc, cookies: rec.Result().Cookies()}
}

func (fs *fuzzServer) serve(method, target string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range fs.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	fs.handler.ServeHTTP(w, req)
	return w
}

func (fs *fuzzServer) session(t *testing.T) string {
	v, err := fs.svc.StartSession(t.Context(), draft.Config{LeagueID: "lg", NumTeams: 12, UserDraftPosition: 5, DraftType: draft.Snake})
	if err != nil {
		t.Fatal(err)
	}
	return v.ID
}

// checkStatus fails on 5xx; every bad input must be rejected as a client error
func checkStatus(t *testing.T, w *httptest.ResponseRecorder, data string) {
	t.Helper()
	if w.Code >= 500 {
		t.Fatalf("status %d for input %q: %s", w.Code, data, w.Body)
	}
	if w.Code >= 400 {
		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body["error"] == "" {
			t.Fatalf("error response without JSON error body for %q: %s", data, w.Body)
		}
	}
}

// FuzzHTTPStartSession fuzzes the session start endpoint
func FuzzHTTPStartSession(f *testing.F) {
	// Seed corpus with valid examples
	f.Add(`{"leagueId":"lg","numTeams":12,"userDraftPosition":5,"draftType":"snake"}`)
	f.Add(`{"leagueId":"lg","numTeams":10,"userDraftPosition":10,"draftType":"linear","rounds":23}`)
	f.Add(`{"leagueId":"lg","numTeams":12,"userDraftPosition":1,"draftType":"snake","keepers":[{"playerId":"660271","teamId":3,"round":1}]}`)
	f.Add(`{"leagueId":"","numTeams":0}`)
	f.Add(`{"numTeams":-5,"userDraftPosition":99}`)

	f.Fuzz(func(t *testing.T, data string) {
		fs := newFuzzServer(t)
		w := fs.serve(http.MethodPost, "/api/sessions", []byte(data))
		checkStatus(t, w, data)
	})
}

// FuzzHTTPDraftPick fuzzes the pick endpoint against a live session
func FuzzHTTPDraftPick(f *testing.F) {
	f.Add(`{"playerId":"660271","teamId":0}`)
	f.Add(`{"playerId":"592450","teamId":12}`)
	f.Add(`{"playerId":"invalid","teamId":999}`)
	f.Add(`{"playerId":"","teamId":-1}`)
	f.Add(`{"playerId":"660271","teamId":1.5}`)

	f.Fuzz(func(t *testing.T, data string) {
		fs := newFuzzServer(t)
		id := fs.session(t)

		w := fs.serve(http.MethodPost, "/api/sessions/"+id+"/pick", []byte(data))
		checkStatus(t, w, data)

		// whatever happened, the session must still undo or report nothing to undo
		w = fs.serve(http.MethodPost, "/api/sessions/"+id+"/undo", nil)
		if w.Code != http.StatusOK && w.Code != http.StatusConflict {
			t.Fatalf("undo after %q = %d", data, w.Code)
		}
	})
}

// FuzzHTTPImport fuzzes feed imports
func FuzzHTTPImport(f *testing.F) {
	f.Add(`{"picks":[{"playerId":"660271","teamId":1,"overallPick":1}]}`)
	f.Add(`{"picks":[{"playerId":"660271","teamId":1,"overallPick":1},{"playerId":"660271","teamId":2,"overallPick":2}]}`)
	f.Add(`{"picks":[{"playerId":"ghost","teamId":40,"overallPick":-3}]}`)
	f.Add(`{"picks":null}`)

	f.Fuzz(func(t *testing.T, data string) {
		fs := newFuzzServer(t)
		id := fs.session(t)
		w := fs.serve(http.MethodPost, "/api/sessions/"+id+"/import", []byte(data))
		checkStatus(t, w, data)
	})
}

// FuzzHTTPQueries fuzzes the query parameters of the derived views
func FuzzHTTPQueries(f *testing.F) {
	f.Add("0", "10", "592450", "7")
	f.Add("13", "-1", "", "0")
	f.Add("abc", "1e9", "ghost", "-4")
	f.Add("5", "", "669373", "99999")

	f.Fuzz(func(t *testing.T, team, limit, player, target string) {
		fs := newFuzzServer(t)
		id := fs.session(t)
		base := "/api/sessions/" + id

		q := url.Values{"team": {team}, "limit": {limit}}
		for _, path := range []string{"/recommendations", "/scarcity", "/needs"} {
			w := fs.serve(http.MethodGet, base+path+"?"+q.Encode(), nil)
			checkStatus(t, w, q.Encode())
		}

		pq := url.Values{"player": {player}, "target": {target}}
		w := fs.serve(http.MethodGet, base+"/predict?"+pq.Encode(), nil)
		checkStatus(t, w, pq.Encode())
	})
}

// FuzzJSONParsing fuzzes player record decoding
func FuzzJSONParsing(f *testing.F) {
	f.Add(`{"id":"1","name":"A","positions":["C"],"rankings":{"fantasypros":{"rank":3,"adp":4.5}}}`)
	f.Add(`{"id":"2","projections":{"steamer":{"hr":30,"avg":0.270}}}`)
	f.Add(`[1,2,3]`)
	f.Add(`null`)

	f.Fuzz(func(t *testing.T, data string) {
		var p models.Player
		// Should not panic on any input
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return
		}
		p.PrimaryPosition()
		p.ConsensusRank()
		p.RankRange()
		p.ADP()
		p.HasProjection()
	})
}
