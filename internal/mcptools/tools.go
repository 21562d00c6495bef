package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/assistant"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/draft"
)

const (
	serverName    = "fbb-draft-assistant"
	serverVersion = "1.0.0"
)

type SessionArgs struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"Draft session id"`
	LeagueID  string `json:"league_id,omitempty" jsonschema:"League id; resolves the league's active session when session_id is empty"`
}

type RecommendArgs struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"Draft session id"`
	LeagueID  string `json:"league_id,omitempty" jsonschema:"League id; resolves the league's active session when session_id is empty"`
	Team      int    `json:"team,omitempty" jsonschema:"Team number (0 = your team)"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Players per list (default 10)"`
}

type PredictArgs struct {
	SessionID  string `json:"session_id,omitempty" jsonschema:"Draft session id"`
	LeagueID   string `json:"league_id,omitempty" jsonschema:"League id; resolves the league's active session when session_id is empty"`
	PlayerID   string `json:"player_id" jsonschema:"Player id (required)"`
	TargetPick int    `json:"target_pick,omitempty" jsonschema:"Overall pick to survive to (0 = your next pick)"`
}

type ScarcityArgs struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"Draft session id"`
	LeagueID  string `json:"league_id,omitempty" jsonschema:"League id; resolves the league's active session when session_id is empty"`
	Team      int    `json:"team,omitempty" jsonschema:"Team number (0 = your team)"`
}

// NewServer registers the draft tools on a new MCP server
func NewServer(svc *assistant.Service) *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    serverName,
			Version: serverVersion,
		},
		nil,
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "session_state",
		Description: "Current pick, team on the clock, history and drafted players of a draft session",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args SessionArgs) (*mcp.CallToolResult, any, error) {
		id, err := resolve(svc, args.SessionID, args.LeagueID)
		if err != nil {
			return toolError(err), nil, nil
		}
		out, err := svc.Session(id)
		if err != nil {
			return toolError(err), nil, nil
		}
		return toolJSON(out)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "recommend_picks",
		Description: "Safe, risky, category-need and prospect pick lists plus the top recommendations",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args RecommendArgs) (*mcp.CallToolResult, any, error) {
		id, err := resolve(svc, args.SessionID, args.LeagueID)
		if err != nil {
			return toolError(err), nil, nil
		}
		out, err := svc.Recommend(ctx, id, args.Team, args.Limit)
		if err != nil {
			return toolError(err), nil, nil
		}
		return toolJSON(out)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "predict_availability",
		Description: "Probability a player is still on the board at a future pick",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args PredictArgs) (*mcp.CallToolResult, any, error) {
		if args.PlayerID == "" {
			return toolError(fmt.Errorf("player_id is required")), nil, nil
		}
		id, err := resolve(svc, args.SessionID, args.LeagueID)
		if err != nil {
			return toolError(err), nil, nil
		}
		out, err := svc.Predict(ctx, id, args.PlayerID, args.TargetPick)
		if err != nil {
			return toolError(err), nil, nil
		}
		return toolJSON(out)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "scarcity_report",
		Description: "Elite supply and scarcity multiplier per position, most scarce first",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ScarcityArgs) (*mcp.CallToolResult, any, error) {
		id, err := resolve(svc, args.SessionID, args.LeagueID)
		if err != nil {
			return toolError(err), nil, nil
		}
		out, err := svc.Scarcity(ctx, id, args.Team)
		if err != nil {
			return toolError(err), nil, nil
		}
		return toolJSON(out)
	})

	return server
}

// Handler serves the tools over streamable HTTP
func Handler(svc *assistant.Service) http.Handler {
	server := NewServer(svc)
	return mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{JSONResponse: true})
}

// resolve picks the explicit session, or the league's active one
func resolve(svc *assistant.Service, sessionID, leagueID string) (string, error) {
	if sessionID != "" {
		return sessionID, nil
	}
	if leagueID == "" {
		return "", fmt.Errorf("session_id or league_id is required")
	}
	v, ok := svc.ActiveSession(leagueID)
	if !ok {
		return "", fmt.Errorf("league %s has no active session: %w", leagueID, draft.ErrSessionNotFound)
	}
	return v.ID, nil
}

func toolJSON(v any) (*mcp.CallToolResult, any, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError(err), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(b)},
		},
	}, nil, nil
}

func toolError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("error: %v", err)},
		},
	}
}
