package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/draft"
)

func TestHTTPFeedUsesClientCredentials(t *testing.T) {
	var tokenCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)
		if err := r.ParseForm(); err != nil || r.Form.Get("grant_type") != "client_credentials" {
			http.Error(w, "bad grant", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"feed-token","token_type":"bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/leagues/lg-7/draft/picks", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer feed-token" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"picks": []draft.ObservedPick{
			{PlayerID: "a", TeamID: 1, OverallPick: 1},
			{PlayerID: "b", TeamID: 2, OverallPick: 2},
		}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	feed, err := NewHTTPFeed(FeedOptions{
		BaseURL:           srv.URL + "/",
		ClientID:          "id",
		ClientSecret:      "secret",
		TokenURL:          srv.URL + "/oauth/token",
		RequestsPerSecond: 100,
	})
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		picks, err := feed.Picks(context.Background(), "lg-7")
		if err != nil {
			t.Fatalf("Picks: %v", err)
		}
		if len(picks) != 2 || picks[1].PlayerID != "b" {
			t.Errorf("picks = %+v", picks)
		}
	}
	if tokenCalls.Load() != 1 {
		t.Errorf("token fetched %d times, want 1 (cached)", tokenCalls.Load())
	}
}

func TestHTTPFeedErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "league not found", http.StatusNotFound)
	}))
	defer srv.Close()

	feed, err := NewHTTPFeed(FeedOptions{BaseURL: srv.URL, RequestsPerSecond: 100})
	if err != nil {
		t.Fatal(err)
	}
	_, err = feed.Picks(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("err = %v", err)
	}
}

func TestHTTPFeedRequiresURL(t *testing.T) {
	if _, err := NewHTTPFeed(FeedOptions{}); err == nil {
		t.Error("expected an error without a base URL")
	}
}

func TestHTTPFeedHonoursContext(t *testing.T) {
	feed, err := NewHTTPFeed(FeedOptions{BaseURL: "http://127.0.0.1:1", RequestsPerSecond: 0.001})
	if err != nil {
		t.Fatal(err)
	}
	// the first call consumes the burst token; the second must wait and time out
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	feed.Picks(ctx, "x")
	if _, err := feed.Picks(ctx, "x"); err == nil {
		t.Error("expected the rate limiter to give up when the context expires")
	}
}

type staticFeed struct {
	picks []draft.ObservedPick
	err   error
}

func (f *staticFeed) Picks(context.Context, string) ([]draft.ObservedPick, error) {
	return f.picks, f.err
}

type boardImporter struct{ b *draft.Board }

func (i boardImporter) ActiveSession(league string) (draft.View, bool) { return i.b.Active(league) }

func (i boardImporter) Import(_ context.Context, id string, picks []draft.ObservedPick) (draft.View, draft.ImportReport, error) {
	return i.b.Import(id, picks)
}

func TestPollerOnce(t *testing.T) {
	board := draft.NewBoard()
	feed := &staticFeed{}
	p := NewPoller(feed, boardImporter{board}, "lg", time.Second)
	ctx := context.Background()

	// no active session: nothing to do
	if rep, err := p.Once(ctx); err != nil || len(rep.Applied) != 0 {
		t.Fatalf("Once without session = %+v, %v", rep, err)
	}

	v, err := board.Start(draft.Config{LeagueID: "lg", NumTeams: 4, UserDraftPosition: 2, DraftType: draft.Snake})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := board.Pick(v.ID, "mine", 0, draft.SourceManual); err != nil {
		t.Fatal(err)
	}

	feed.picks = []draft.ObservedPick{
		{PlayerID: "mine", TeamID: 1, OverallPick: 1},
		{PlayerID: "ext2", TeamID: 2, OverallPick: 2},
		{PlayerID: "ext3", TeamID: 3, OverallPick: 3},
	}
	rep, err := p.Once(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Applied) != 2 || len(rep.Skipped) != 0 {
		t.Errorf("report = %+v", rep)
	}
	got, _ := board.Get(v.ID)
	if got.CurrentPick != 4 || got.Drafted["ext3"] != 3 {
		t.Errorf("board after import: current %d drafted %v", got.CurrentPick, got.Drafted)
	}

	// a second pass finds nothing new
	if rep, err := p.Once(ctx); err != nil || len(rep.Applied) != 0 {
		t.Errorf("second pass = %+v, %v", rep, err)
	}

	feed.err = errors.New("feed down")
	if _, err := p.Once(ctx); err == nil {
		t.Error("feed error should surface from Once")
	}
}

func TestPollerRespectsUndo(t *testing.T) {
	board := draft.NewBoard()
	feed := &staticFeed{picks: []draft.ObservedPick{{PlayerID: "a", TeamID: 1, OverallPick: 1}}}
	p := NewPoller(feed, boardImporter{board}, "lg", time.Second)
	ctx := context.Background()

	v, err := board.Start(draft.Config{LeagueID: "lg", NumTeams: 4, UserDraftPosition: 2, DraftType: draft.Snake})
	if err != nil {
		t.Fatal(err)
	}
	if rep, err := p.Once(ctx); err != nil || len(rep.Applied) != 1 {
		t.Fatalf("first pass = %+v, %v", rep, err)
	}
	if _, _, err := board.Undo(v.ID); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		undo func() error
	}{
		{"after undo", func() error { return nil }},
		{"after redo and undraft", func() error {
			if _, _, err := board.Redo(v.ID); err != nil {
				return err
			}
			_, err := board.Undraft(v.ID, "a")
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.undo(); err != nil {
				t.Fatal(err)
			}
			before, _ := board.Get(v.ID)
			if rep, err := p.Once(ctx); err != nil || len(rep.Applied) != 0 {
				t.Fatalf("poll re-imported: %+v, %v", rep, err)
			}
			after, _ := board.Get(v.ID)
			if _, ok := after.Drafted["a"]; ok {
				t.Error("undone feed pick is back on the board")
			}
			if after.CurrentPick != before.CurrentPick || after.CanRedo != before.CanRedo {
				t.Errorf("poll changed the session: current %d->%d canRedo %v->%v",
					before.CurrentPick, after.CurrentPick, before.CanRedo, after.CanRedo)
			}
		})
	}
}

func TestPollerRunStopsOnCancel(t *testing.T) {
	p := NewPoller(&staticFeed{err: errors.New("down")}, boardImporter{draft.NewBoard()}, "lg", 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
