package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "pitchcompare.v1.ComparisonService"

const (
	methodStart       = "/" + ServiceName + "/Start"
	methodStop        = "/" + ServiceName + "/Stop"
	methodSetPlayhead = "/" + ServiceName + "/SetPlayhead"
	methodGetView     = "/" + ServiceName + "/GetView"
	methodWatchViews  = "/" + ServiceName + "/WatchViews"
)

// ComparisonServiceServer is the server API for the comparison service.
// Requests and responses are well-known protobuf types, so the service needs
// no generated message code.
type ComparisonServiceServer interface {
	Start(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	Stop(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	SetPlayhead(context.Context, *wrapperspb.DoubleValue) (*emptypb.Empty, error)
	GetView(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	WatchViews(*emptypb.Empty, ComparisonService_WatchViewsServer) error
}

// UnimplementedComparisonServiceServer returns Unimplemented for every method.
type UnimplementedComparisonServiceServer struct{}

func (UnimplementedComparisonServiceServer) Start(context.Context, *emptypb.Empty) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method Start not implemented")
}

func (UnimplementedComparisonServiceServer) Stop(context.Context, *emptypb.Empty) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method Stop not implemented")
}

func (UnimplementedComparisonServiceServer) SetPlayhead(context.Context, *wrapperspb.DoubleValue) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method SetPlayhead not implemented")
}

func (UnimplementedComparisonServiceServer) GetView(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetView not implemented")
}

func (UnimplementedComparisonServiceServer) WatchViews(*emptypb.Empty, ComparisonService_WatchViewsServer) error {
	return status.Error(codes.Unimplemented, "method WatchViews not implemented")
}

// ComparisonService_WatchViewsServer is the server side of WatchViews.
type ComparisonService_WatchViewsServer interface {
	Send(*structpb.Struct) error
	grpc.ServerStream
}

type comparisonServiceWatchViewsServer struct {
	grpc.ServerStream
}

func (x *comparisonServiceWatchViewsServer) Send(m *structpb.Struct) error {
	return x.ServerStream.SendMsg(m)
}

// RegisterComparisonServiceServer registers srv with s.
func RegisterComparisonServiceServer(s grpc.ServiceRegistrar, srv ComparisonServiceServer) {
	s.RegisterService(&ComparisonService_ServiceDesc, srv)
}

// unaryMethod has the shape of grpc.MethodDesc.Handler.
type unaryMethod = func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error)

func unaryHandler[Req any, Resp any](method string, call func(ComparisonServiceServer, context.Context, *Req) (*Resp, error)) unaryMethod {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ComparisonServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ComparisonServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func watchViewsHandler(srv any, stream grpc.ServerStream) error {
	m := new(emptypb.Empty)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(ComparisonServiceServer).WatchViews(m, &comparisonServiceWatchViewsServer{stream})
}

// ComparisonService_ServiceDesc describes the comparison service for
// grpc.ServiceRegistrar.
var ComparisonService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ComparisonServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Start",
			Handler:    unaryHandler(methodStart, ComparisonServiceServer.Start),
		},
		{
			MethodName: "Stop",
			Handler:    unaryHandler(methodStop, ComparisonServiceServer.Stop),
		},
		{
			MethodName: "SetPlayhead",
			Handler:    unaryHandler(methodSetPlayhead, ComparisonServiceServer.SetPlayhead),
		},
		{
			MethodName: "GetView",
			Handler:    unaryHandler(methodGetView, ComparisonServiceServer.GetView),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchViews",
			Handler:       watchViewsHandler,
			ServerStreams: true,
		},
	},
}

// ComparisonServiceClient is the client API for the comparison service.
type ComparisonServiceClient interface {
	Start(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error)
	Stop(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error)
	SetPlayhead(ctx context.Context, in *wrapperspb.DoubleValue, opts ...grpc.CallOption) (*emptypb.Empty, error)
	GetView(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	WatchViews(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (ComparisonService_WatchViewsClient, error)
}

type comparisonServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewComparisonServiceClient returns a client bound to cc.
func NewComparisonServiceClient(cc grpc.ClientConnInterface) ComparisonServiceClient {
	return &comparisonServiceClient{cc}
}

func (c *comparisonServiceClient) Start(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, methodStart, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *comparisonServiceClient) Stop(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, methodStop, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *comparisonServiceClient) SetPlayhead(ctx context.Context, in *wrapperspb.DoubleValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, methodSetPlayhead, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *comparisonServiceClient) GetView(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodGetView, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *comparisonServiceClient) WatchViews(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (ComparisonService_WatchViewsClient, error) {
	stream, err := c.cc.NewStream(ctx, &ComparisonService_ServiceDesc.Streams[0], methodWatchViews, opts...)
	if err != nil {
		return nil, err
	}
	x := &comparisonServiceWatchViewsClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

// ComparisonService_WatchViewsClient is the client side of WatchViews.
type ComparisonService_WatchViewsClient interface {
	Recv() (*structpb.Struct, error)
	grpc.ClientStream
}

type comparisonServiceWatchViewsClient struct {
	grpc.ClientStream
}

func (x *comparisonServiceWatchViewsClient) Recv() (*structpb.Struct, error) {
	m := new(structpb.Struct)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}
