package mcptools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/assistant"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/dal"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/draft"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/predictor"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/scarcity"
)

func connect(t *testing.T) (*mcp.ClientSession, *assistant.Service) {
	t.Helper()
	ctx := context.Background()
	svc := assistant.New(assistant.Options{Store: dal.NewMemoryDAL(), Seed: 1})

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	ss, err := NewServer(svc).Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	t.Cleanup(func() { ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { cs.Close() })
	return cs, svc
}

func call(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) (string, bool) {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("CallTool %s: %v", name, err)
	}
	if len(res.Content) != 1 {
		t.Fatalf("%s returned %d content blocks", name, len(res.Content))
	}
	text, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("%s returned %T", name, res.Content[0])
	}
	return text.Text, res.IsError
}

func TestListTools(t *testing.T) {
	cs, _ := connect(t)
	res, err := cs.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	got := make(map[string]bool)
	for _, tool := range res.Tools {
		got[tool.Name] = true
	}
	for _, want := range []string{"session_state", "recommend_picks", "predict_availability", "scarcity_report"} {
		if !got[want] {
			t.Errorf("tool %s not registered", want)
		}
	}
}

func TestTools(t *testing.T) {
	cs, svc := connect(t)
	ctx := context.Background()
	v, err := svc.StartSession(ctx, draft.Config{LeagueID: "lg", NumTeams: 12, UserDraftPosition: 5, DraftType: draft.Snake})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Pick(ctx, v.ID, "660271", 0); err != nil {
		t.Fatal(err)
	}

	t.Run("session state by league", func(t *testing.T) {
		text, isErr := call(t, cs, "session_state", map[string]any{"league_id": "lg"})
		if isErr {
			t.Fatalf("tool error: %s", text)
		}
		var got draft.View
		if err := json.Unmarshal([]byte(text), &got); err != nil {
			t.Fatal(err)
		}
		if got.ID != v.ID || got.CurrentPick != 2 {
			t.Errorf("session_state = %+v", got)
		}
	})

	t.Run("recommendations", func(t *testing.T) {
		text, isErr := call(t, cs, "recommend_picks", map[string]any{"session_id": v.ID, "limit": 2})
		if isErr {
			t.Fatalf("tool error: %s", text)
		}
		if strings.Contains(text, `"playerId": "660271"`) {
			t.Error("drafted player recommended")
		}
	})

	t.Run("prediction", func(t *testing.T) {
		text, isErr := call(t, cs, "predict_availability", map[string]any{"session_id": v.ID, "player_id": "660271"})
		if isErr {
			t.Fatalf("tool error: %s", text)
		}
		var res predictor.Result
		if err := json.Unmarshal([]byte(text), &res); err != nil {
			t.Fatal(err)
		}
		if res.Verdict != predictor.AlreadyDrafted || res.Probability != 0 {
			t.Errorf("drafted player prediction = %+v", res)
		}
	})

	t.Run("scarcity", func(t *testing.T) {
		text, isErr := call(t, cs, "scarcity_report", map[string]any{"session_id": v.ID})
		if isErr {
			t.Fatalf("tool error: %s", text)
		}
		var snap scarcity.Snapshot
		if err := json.Unmarshal([]byte(text), &snap); err != nil {
			t.Fatal(err)
		}
		if len(snap.Positions) == 0 || len(snap.MostScarce) == 0 {
			t.Errorf("empty scarcity report: %+v", snap)
		}
	})
}

func TestToolErrors(t *testing.T) {
	cs, _ := connect(t)

	tests := []struct {
		tool string
		args map[string]any
		want string
	}{
		{"session_state", map[string]any{}, "session_id or league_id is required"},
		{"session_state", map[string]any{"league_id": "empty"}, "no active session"},
		{"recommend_picks", map[string]any{"session_id": "nope"}, "session not found"},
		{"predict_availability", map[string]any{"session_id": "nope", "player_id": ""}, "player_id is required"},
	}
	for _, tt := range tests {
		text, isErr := call(t, cs, tt.tool, tt.args)
		if !isErr || !strings.Contains(text, tt.want) {
			t.Errorf("%s(%v) = %q (isError %v), want error containing %q", tt.tool, tt.args, text, isErr, tt.want)
		}
	}
}
