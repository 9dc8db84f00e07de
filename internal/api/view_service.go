package api

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/matheus3301/wppview/internal/bucket"
	"github.com/matheus3301/wppview/internal/store"
	"github.com/matheus3301/wppview/internal/view"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const serviceName = "wppview.v1.ViewService"

// Full method names, as used by clients and interceptors.
const (
	MethodListBuckets = "/" + serviceName + "/ListBuckets"
	MethodSearch      = "/" + serviceName + "/Search"
	MethodListChats   = "/" + serviceName + "/ListChats"
)

// ViewServer is the server API for the view service.
type ViewServer interface {
	ListBuckets(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Search(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListChats(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ChatLister lists stored chats.
type ChatLister interface {
	ListChats(limit, offset int) ([]store.Chat, error)
}

// ViewService implements ViewServer on top of the view pipeline.
type ViewService struct {
	views  *view.Service
	chats  ChatLister
	logger *zap.Logger
}

// NewViewService creates a new view service.
func NewViewService(views *view.Service, chats ChatLister, logger *zap.Logger) *ViewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ViewService{views: views, chats: chats, logger: logger}
}

// ListBuckets returns one page of a chat grouped by relative day.
func (s *ViewService) ListBuckets(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req ListBucketsRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, grpcstatus.Errorf(codes.InvalidArgument, "%v", err)
	}
	if req.ChatJID == "" {
		return nil, grpcstatus.Error(codes.InvalidArgument, "chat_jid is required")
	}

	buckets, next, err := s.views.Buckets(req.ChatJID, req.cursor(), req.Limit)
	if err != nil {
		return nil, s.toStatus("list buckets", req.ChatJID, err)
	}
	return toStruct(ListBucketsResponse{
		RequestID:    uuid.New().String(),
		Buckets:      bucketsToWire(buckets),
		NextBeforeTs: next.Timestamp,
		NextBeforeID: next.ID,
	})
}

// Search returns the highlighted messages of a chat page matching the query.
func (s *ViewService) Search(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req SearchRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, grpcstatus.Errorf(codes.InvalidArgument, "%v", err)
	}
	if req.ChatJID == "" {
		return nil, grpcstatus.Error(codes.InvalidArgument, "chat_jid is required")
	}

	hits, err := s.views.SearchLabeled(req.ChatJID, req.Query, req.Limit)
	if err != nil {
		return nil, s.toStatus("search", req.ChatJID, err)
	}
	return toStruct(SearchResponse{
		RequestID: uuid.New().String(),
		Hits:      hitsToWire(hits),
	})
}

// ListChats returns stored chats, most recent first.
func (s *ViewService) ListChats(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req ListChatsRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, grpcstatus.Errorf(codes.InvalidArgument, "%v", err)
	}
	chats, err := s.chats.ListChats(req.Limit, req.Offset)
	if err != nil {
		return nil, grpcstatus.Errorf(codes.Internal, "list chats: %v", err)
	}
	return toStruct(ListChatsResponse{
		RequestID: uuid.New().String(),
		Chats:     chatsToWire(chats),
	})
}

// toStatus maps pipeline errors to gRPC codes. An uninterpretable
// timestamp is a data contract violation, not a server fault.
func (s *ViewService) toStatus(op, chatJID string, err error) error {
	if errors.Is(err, bucket.ErrInvalidTimestamp) {
		s.logger.Warn(op+" rejected", zap.String("chat", chatJID), zap.Error(err))
		return grpcstatus.Errorf(codes.InvalidArgument, "%s: %v", op, err)
	}
	s.logger.Error(op+" failed", zap.String("chat", chatJID), zap.Error(err))
	return grpcstatus.Errorf(codes.Internal, "%s: %v", op, err)
}

// RegisterViewServer registers srv on s.
func RegisterViewServer(s grpc.ServiceRegistrar, srv ViewServer) {
	s.RegisterService(&ViewServiceDesc, srv)
}

// ViewServiceDesc describes the view service. Messages are
// google.protobuf.Struct, so no generated stubs are needed.
var ViewServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ViewServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListBuckets", Handler: unaryHandler(MethodListBuckets, ViewServer.ListBuckets)},
		{MethodName: "Search", Handler: unaryHandler(MethodSearch, ViewServer.Search)},
		{MethodName: "ListChats", Handler: unaryHandler(MethodListChats, ViewServer.ListChats)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "wppview/v1/view.proto",
}

type unaryMethod func(ViewServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ViewServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ViewServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}
