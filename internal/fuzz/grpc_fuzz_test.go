package fuzz

import (
	"context"
	"math"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/assistant"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/dal"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/draft"
	grpcserver "github.com/Billy-Davies-2/fbb-draft-assistant/internal/grpc"
)

func newFuzzGRPC(t *testing.T) (*grpcserver.Server, string) {
	svc := assistant.New(assistant.Options{Store: dal.NewMemoryDAL(), Seed: 1})
	v, err := svc.StartSession(context.Background(), draft.Config{LeagueID: "lg", NumTeams: 12, UserDraftPosition: 5, DraftType: draft.Snake})
	if err != nil {
		t.Fatal(err)
	}
	return grpcserver.NewServer(svc), v.ID
}

// checkCode fails on anything but a clean client-side status
func checkCode(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		return
	}
	switch status.Code(err) {
	case codes.InvalidArgument, codes.FailedPrecondition, codes.NotFound:
	default:
		t.Fatalf("unexpected error: %v", err)
	}
}

func mustStruct(t *testing.T, fields map[string]any) *structpb.Struct {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		t.Skip("unrepresentable input")
	}
	return s
}

// FuzzGRPCPick fuzzes the Pick method
func FuzzGRPCPick(f *testing.F) {
	// Seed corpus
	f.Add("660271", 0.0, true)
	f.Add("invalid", 999.0, true)
	f.Add("", -1.0, false)
	f.Add("592450", 2.5, true)

	f.Fuzz(func(t *testing.T, playerID string, teamID float64, validSession bool) {
		server, id := newFuzzGRPC(t)
		if !validSession {
			id = "missing"
		}
		if math.IsNaN(teamID) || math.IsInf(teamID, 0) {
			t.Skip()
		}

		_, err := server.Pick(context.Background(), mustStruct(t, map[string]any{
			"sessionId": id, "playerId": playerID, "teamId": teamID,
		}))
		checkCode(t, err)
	})
}

// FuzzGRPCStartSession fuzzes draft configs
func FuzzGRPCStartSession(f *testing.F) {
	f.Add("lg", 12.0, 5.0, "snake", 0.0)
	f.Add("", 0.0, 0.0, "", -1.0)
	f.Add("lg", 21.0, 3.0, "linear", 23.0)
	f.Add("lg", 2.0, 2.0, "auction", 1.0)

	f.Fuzz(func(t *testing.T, league string, teams, position float64, draftType string, rounds float64) {
		server, _ := newFuzzGRPC(t)
		for _, n := range []float64{teams, position, rounds} {
			if math.IsNaN(n) || math.IsInf(n, 0) {
				t.Skip()
			}
		}

		_, err := server.StartSession(context.Background(), mustStruct(t, map[string]any{
			"leagueId": league, "numTeams": teams, "userDraftPosition": position,
			"draftType": draftType, "rounds": rounds,
		}))
		checkCode(t, err)
	})
}

// FuzzGRPCPredict fuzzes availability predictions
func FuzzGRPCPredict(f *testing.F) {
	f.Add("669373", 0.0)
	f.Add("669373", 17.0)
	f.Add("ghost", 3.0)
	f.Add("", -8.0)

	f.Fuzz(func(t *testing.T, playerID string, target float64) {
		server, id := newFuzzGRPC(t)
		if math.IsNaN(target) || math.IsInf(target, 0) || math.Abs(target) > 1e6 {
			t.Skip()
		}

		out, err := server.Predict(context.Background(), mustStruct(t, map[string]any{
			"sessionId": id, "playerId": playerID, "targetPick": target,
		}))
		checkCode(t, err)
		if err == nil {
			if p := out.Fields["probability"].GetNumberValue(); p < 0 || p > 1 {
				t.Fatalf("probability %v outside [0,1]", p)
			}
		}
	})
}
