package grpc

import (
	"context"
	"encoding/json"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/assistant"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/dal"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/draft"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/logger"
)

// Server implements DraftAssistantServer over the assistant service
type Server struct {
	svc *assistant.Service
}

// NewServer creates a new gRPC server
func NewServer(svc *assistant.Service) *Server {
	return &Server{svc: svc}
}

var _ DraftAssistantServer = (*Server)(nil)

type sessionRequest struct {
	SessionID string `json:"sessionId"`
}

type pickRequest struct {
	SessionID string `json:"sessionId"`
	PlayerID  string `json:"playerId"`
	TeamID    int    `json:"teamId"`
}

type recommendRequest struct {
	SessionID string `json:"sessionId"`
	Team      int    `json:"team"`
	Limit     int    `json:"limit"`
}

type predictRequest struct {
	SessionID  string `json:"sessionId"`
	PlayerID   string `json:"playerId"`
	TargetPick int    `json:"targetPick"`
}

// decodeRequest reads a Struct into a typed request through its JSON form
func decodeRequest(in *structpb.Struct, v any) error {
	raw, err := protojson.Marshal(in)
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	return nil
}

// encodeResponse converts any JSON-serialisable value into a Struct
func encodeResponse(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

// toStatus maps domain errors onto gRPC codes
func toStatus(err error) error {
	switch {
	case draft.IsValidation(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case draft.IsState(err):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, draft.ErrSessionNotFound), errors.Is(err, dal.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	}
	logger.Error("gRPC: request failed", "error", err)
	return status.Error(codes.Internal, err.Error())
}

func requireSession(id string) error {
	if id == "" {
		return status.Error(codes.InvalidArgument, "sessionId is required")
	}
	return nil
}

// StartSession opens a draft from a draft config
func (s *Server) StartSession(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var cfg draft.Config
	if err := decodeRequest(in, &cfg); err != nil {
		return nil, err
	}
	logger.Info("gRPC: Starting draft session", "league_id", cfg.LeagueID, "teams", cfg.NumTeams)
	v, err := s.svc.StartSession(ctx, cfg)
	if err != nil {
		return nil, toStatus(err)
	}
	return encodeResponse(v)
}

// Pick drafts a player; teamId 0 drafts for the team on the clock
func (s *Server) Pick(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req pickRequest
	if err := decodeRequest(in, &req); err != nil {
		return nil, err
	}
	if err := requireSession(req.SessionID); err != nil {
		return nil, err
	}
	logger.Info("gRPC: Drafting player", "session_id", req.SessionID, "player_id", req.PlayerID, "team_id", req.TeamID)
	v, err := s.svc.Pick(ctx, req.SessionID, req.PlayerID, req.TeamID)
	if err != nil {
		return nil, toStatus(err)
	}
	return encodeResponse(v)
}

func (s *Server) Undo(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return s.step(ctx, in, s.svc.Undo)
}

func (s *Server) Redo(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return s.step(ctx, in, s.svc.Redo)
}

func (s *Server) step(ctx context.Context, in *structpb.Struct, op func(context.Context, string) (draft.View, draft.PickAction, error)) (*structpb.Struct, error) {
	var req sessionRequest
	if err := decodeRequest(in, &req); err != nil {
		return nil, err
	}
	if err := requireSession(req.SessionID); err != nil {
		return nil, err
	}
	v, a, err := op(ctx, req.SessionID)
	if err != nil {
		return nil, toStatus(err)
	}
	return encodeResponse(map[string]any{"session": v, "action": a})
}

// EndSession completes the draft and reports the number of picks made
func (s *Server) EndSession(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req sessionRequest
	if err := decodeRequest(in, &req); err != nil {
		return nil, err
	}
	if err := requireSession(req.SessionID); err != nil {
		return nil, err
	}
	v, total, err := s.svc.EndSession(ctx, req.SessionID)
	if err != nil {
		return nil, toStatus(err)
	}
	logger.Info("gRPC: Draft session ended", "session_id", req.SessionID, "total_picks", total)
	return encodeResponse(map[string]any{"session": v, "totalPicks": total})
}

func (s *Server) GetSession(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req sessionRequest
	if err := decodeRequest(in, &req); err != nil {
		return nil, err
	}
	if err := requireSession(req.SessionID); err != nil {
		return nil, err
	}
	v, err := s.svc.Session(req.SessionID)
	if err != nil {
		return nil, toStatus(err)
	}
	return encodeResponse(v)
}

// Recommend returns the categorized pick lists for a team (0 = the user)
func (s *Server) Recommend(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req recommendRequest
	if err := decodeRequest(in, &req); err != nil {
		return nil, err
	}
	if err := requireSession(req.SessionID); err != nil {
		return nil, err
	}
	res, err := s.svc.Recommend(ctx, req.SessionID, req.Team, req.Limit)
	if err != nil {
		return nil, toStatus(err)
	}
	return encodeResponse(res)
}

// Predict estimates whether a player survives to targetPick (0 = the user's next pick)
func (s *Server) Predict(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req predictRequest
	if err := decodeRequest(in, &req); err != nil {
		return nil, err
	}
	if err := requireSession(req.SessionID); err != nil {
		return nil, err
	}
	if req.PlayerID == "" {
		return nil, status.Error(codes.InvalidArgument, "playerId is required")
	}
	res, err := s.svc.Predict(ctx, req.SessionID, req.PlayerID, req.TargetPick)
	if err != nil {
		return nil, toStatus(err)
	}
	return encodeResponse(res)
}
