package grpc

import (
	"context"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/assistant"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/dal"
)

const (
	ohtani = "660271"
	judge  = "592450"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	svc := assistant.New(assistant.Options{Store: dal.NewMemoryDAL(), Seed: 1})
	RegisterDraftAssistantServer(srv, NewServer(svc))
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial bufconn: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return NewClient(conn)
}

func startSession(t *testing.T, c *Client) string {
	t.Helper()
	out, err := c.Call(context.Background(), "StartSession", map[string]any{
		"leagueId": "lg", "numTeams": 12, "userDraftPosition": 5, "draftType": "snake",
	})
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	id := out.Fields["id"].GetStringValue()
	if id == "" {
		t.Fatalf("no session id in %v", out)
	}
	return id
}

func TestSessionFlow(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	id := startSession(t, c)

	// picks 1..5 of a 12-team snake go to teams 1..5
	players := []string{ohtani, judge, "677951", "682998", "665742"}
	for i, p := range players {
		out, err := c.Call(ctx, "Pick", map[string]any{"sessionId": id, "playerId": p})
		if err != nil {
			t.Fatalf("Pick %s: %v", p, err)
		}
		history := out.Fields["history"].GetListValue().GetValues()
		last := history[len(history)-1].GetStructValue().Fields
		if team := last["teamId"].GetNumberValue(); int(team) != i+1 {
			t.Errorf("pick %d went to team %v", i+1, team)
		}
	}

	out, err := c.Call(ctx, "GetSession", map[string]any{"sessionId": id})
	if err != nil {
		t.Fatal(err)
	}
	if got := out.Fields["currentPick"].GetNumberValue(); got != 6 {
		t.Errorf("currentPick = %v, want 6", got)
	}

	out, err = c.Call(ctx, "Undo", map[string]any{"sessionId": id})
	if err != nil {
		t.Fatal(err)
	}
	sess := out.Fields["session"].GetStructValue().Fields
	if sess["currentPick"].GetNumberValue() != 5 || sess["teamOnClock"].GetNumberValue() != 5 {
		t.Errorf("after undo: pick %v team %v", sess["currentPick"], sess["teamOnClock"])
	}
	if got := out.Fields["action"].GetStructValue().Fields["playerId"].GetStringValue(); got != "665742" {
		t.Errorf("undone player = %s", got)
	}

	if _, err := c.Call(ctx, "Redo", map[string]any{"sessionId": id}); err != nil {
		t.Fatalf("Redo: %v", err)
	}

	out, err = c.Call(ctx, "Recommend", map[string]any{"sessionId": id, "limit": 2})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if _, ok := out.Fields["recommended"]; !ok {
		t.Errorf("recommend response missing lists: %v", out)
	}

	out, err = c.Call(ctx, "Predict", map[string]any{"sessionId": id, "playerId": "669373", "targetPick": 6})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if p := out.Fields["probability"].GetNumberValue(); p != 1 || out.Fields["simulations"].GetNumberValue() != 0 {
		t.Errorf("prediction at the current pick = %v", out)
	}

	out, err = c.Call(ctx, "EndSession", map[string]any{"sessionId": id})
	if err != nil {
		t.Fatal(err)
	}
	if got := out.Fields["totalPicks"].GetNumberValue(); got != 5 {
		t.Errorf("totalPicks = %v, want 5", got)
	}
}

func TestErrorCodes(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	id := startSession(t, c)

	tests := []struct {
		name   string
		method string
		fields map[string]any
		want   codes.Code
	}{
		{"bad config", "StartSession", map[string]any{"leagueId": "lg", "numTeams": 1}, codes.InvalidArgument},
		{"missing session id", "Pick", map[string]any{"playerId": ohtani}, codes.InvalidArgument},
		{"fractional team", "Pick", map[string]any{"sessionId": id, "playerId": ohtani, "teamId": 1.5}, codes.InvalidArgument},
		{"unknown player", "Pick", map[string]any{"sessionId": id, "playerId": "ghost"}, codes.InvalidArgument},
		{"unknown session", "GetSession", map[string]any{"sessionId": "nope"}, codes.NotFound},
		{"nothing to undo", "Undo", map[string]any{"sessionId": id}, codes.FailedPrecondition},
		{"nothing to redo", "Redo", map[string]any{"sessionId": id}, codes.FailedPrecondition},
		{"predict without player", "Predict", map[string]any{"sessionId": id}, codes.InvalidArgument},
		{"predict unknown player", "Predict", map[string]any{"sessionId": id, "playerId": "ghost"}, codes.NotFound},
		{"unknown method", "Trade", map[string]any{}, codes.Unimplemented},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Call(ctx, tt.method, tt.fields)
			if got := status.Code(err); got != tt.want {
				t.Errorf("code = %v, want %v (%v)", got, tt.want, err)
			}
		})
	}

	if _, err := c.Call(ctx, "EndSession", map[string]any{"sessionId": id}); err != nil {
		t.Fatal(err)
	}
	_, err := c.Call(ctx, "Pick", map[string]any{"sessionId": id, "playerId": ohtani})
	if status.Code(err) != codes.FailedPrecondition {
		t.Errorf("pick after end = %v", err)
	}
}

func TestInterceptorSeesFullMethod(t *testing.T) {
	var seen []string
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.UnaryInterceptor(func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		seen = append(seen, info.FullMethod)
		return handler(ctx, req)
	}))
	RegisterDraftAssistantServer(srv, NewServer(assistant.New(assistant.Options{Store: dal.NewMemoryDAL(), Seed: 1})))
	go srv.Serve(lis)
	defer srv.Stop()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	_, _ = NewClient(conn).Call(context.Background(), "GetSession", map[string]any{"sessionId": "x"})
	if len(seen) != 1 || seen[0] != "/draftassistant.v1.DraftAssistant/GetSession" {
		t.Errorf("interceptor saw %v", seen)
	}
}
