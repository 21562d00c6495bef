package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified gRPC service name
const ServiceName = "draftassistant.v1.DraftAssistant"

// DraftAssistantServer is the gRPC contract. Messages are google.protobuf.Struct
// carrying the same JSON shapes as the HTTP API.
type DraftAssistantServer interface {
	StartSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Pick(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Undo(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Redo(context.Context, *structpb.Struct) (*structpb.Struct, error)
	EndSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Recommend(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Predict(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(DraftAssistantServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(DraftAssistantServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*structpb.Struct))
			})
		},
	}
}

// FullMethod returns the invoke path of a method
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// ServiceDesc describes the DraftAssistant service for registration
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DraftAssistantServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("StartSession", DraftAssistantServer.StartSession),
		unary("Pick", DraftAssistantServer.Pick),
		unary("Undo", DraftAssistantServer.Undo),
		unary("Redo", DraftAssistantServer.Redo),
		unary("EndSession", DraftAssistantServer.EndSession),
		unary("GetSession", DraftAssistantServer.GetSession),
		unary("Recommend", DraftAssistantServer.Recommend),
		unary("Predict", DraftAssistantServer.Predict),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "draftassistant/v1/draft_assistant.proto",
}

// RegisterDraftAssistantServer registers srv with a gRPC server
func RegisterDraftAssistantServer(s grpc.ServiceRegistrar, srv DraftAssistantServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Client calls the DraftAssistant service
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps a connection
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Call invokes method with a request built from fields
func (c *Client) Call(ctx context.Context, method string, fields map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
