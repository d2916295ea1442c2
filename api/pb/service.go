package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	OrderBook_Match_FullMethodName  = "/matchcore.v1.OrderBook/Match"
	OrderBook_Modify_FullMethodName = "/matchcore.v1.OrderBook/Modify"
	OrderBook_Cancel_FullMethodName = "/matchcore.v1.OrderBook/Cancel"
	OrderBook_Lookup_FullMethodName = "/matchcore.v1.OrderBook/Lookup"
	OrderBook_Exists_FullMethodName = "/matchcore.v1.OrderBook/Exists"
	OrderBook_Volume_FullMethodName = "/matchcore.v1.OrderBook/Volume"
	OrderBook_Depth_FullMethodName  = "/matchcore.v1.OrderBook/Depth"
)

// -------------------- Server --------------------

type OrderBookServer interface {
	Match(context.Context, *MatchRequest) (*MatchResponse, error)
	Modify(context.Context, *ModifyRequest) (*ModifyResponse, error)
	Cancel(context.Context, *OrderIdRequest) (*ModifyResponse, error)
	Lookup(context.Context, *OrderIdRequest) (*LookupResponse, error)
	Exists(context.Context, *OrderIdRequest) (*ExistsResponse, error)
	Volume(context.Context, *VolumeRequest) (*VolumeResponse, error)
	Depth(context.Context, *DepthRequest) (*DepthResponse, error)
}

// UnimplementedOrderBookServer can be embedded to stay forward compatible.
type UnimplementedOrderBookServer struct{}

func (UnimplementedOrderBookServer) Match(context.Context, *MatchRequest) (*MatchResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Match not implemented")
}
func (UnimplementedOrderBookServer) Modify(context.Context, *ModifyRequest) (*ModifyResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Modify not implemented")
}
func (UnimplementedOrderBookServer) Cancel(context.Context, *OrderIdRequest) (*ModifyResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Cancel not implemented")
}
func (UnimplementedOrderBookServer) Lookup(context.Context, *OrderIdRequest) (*LookupResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Lookup not implemented")
}
func (UnimplementedOrderBookServer) Exists(context.Context, *OrderIdRequest) (*ExistsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Exists not implemented")
}
func (UnimplementedOrderBookServer) Volume(context.Context, *VolumeRequest) (*VolumeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Volume not implemented")
}
func (UnimplementedOrderBookServer) Depth(context.Context, *DepthRequest) (*DepthResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Depth not implemented")
}

// RegisterOrderBookServer registers srv on s. s must be built with
// ServerCodec().
func RegisterOrderBookServer(s grpc.ServiceRegistrar, srv OrderBookServer) {
	s.RegisterService(&OrderBook_ServiceDesc, srv)
}

// unary builds a grpc method handler decoding into a fresh *Req.
func unary[Req any, PReq interface {
	*Req
	Message
}](fullMethod string, call func(OrderBookServer, context.Context, PReq) (Message, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := PReq(new(Req))
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(OrderBookServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(srv.(OrderBookServer), ctx, req.(PReq))
		})
	}
}

var OrderBook_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "matchcore.v1.OrderBook",
	HandlerType: (*OrderBookServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Match",
			Handler: unary(OrderBook_Match_FullMethodName,
				func(s OrderBookServer, ctx context.Context, in *MatchRequest) (Message, error) {
					return s.Match(ctx, in)
				}),
		},
		{
			MethodName: "Modify",
			Handler: unary(OrderBook_Modify_FullMethodName,
				func(s OrderBookServer, ctx context.Context, in *ModifyRequest) (Message, error) {
					return s.Modify(ctx, in)
				}),
		},
		{
			MethodName: "Cancel",
			Handler: unary(OrderBook_Cancel_FullMethodName,
				func(s OrderBookServer, ctx context.Context, in *OrderIdRequest) (Message, error) {
					return s.Cancel(ctx, in)
				}),
		},
		{
			MethodName: "Lookup",
			Handler: unary(OrderBook_Lookup_FullMethodName,
				func(s OrderBookServer, ctx context.Context, in *OrderIdRequest) (Message, error) {
					return s.Lookup(ctx, in)
				}),
		},
		{
			MethodName: "Exists",
			Handler: unary(OrderBook_Exists_FullMethodName,
				func(s OrderBookServer, ctx context.Context, in *OrderIdRequest) (Message, error) {
					return s.Exists(ctx, in)
				}),
		},
		{
			MethodName: "Volume",
			Handler: unary(OrderBook_Volume_FullMethodName,
				func(s OrderBookServer, ctx context.Context, in *VolumeRequest) (Message, error) {
					return s.Volume(ctx, in)
				}),
		},
		{
			MethodName: "Depth",
			Handler: unary(OrderBook_Depth_FullMethodName,
				func(s OrderBookServer, ctx context.Context, in *DepthRequest) (Message, error) {
					return s.Depth(ctx, in)
				}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "matchcore/v1/orderbook.proto",
}

// -------------------- Client --------------------

type OrderBookClient interface {
	Match(ctx context.Context, in *MatchRequest, opts ...grpc.CallOption) (*MatchResponse, error)
	Modify(ctx context.Context, in *ModifyRequest, opts ...grpc.CallOption) (*ModifyResponse, error)
	Cancel(ctx context.Context, in *OrderIdRequest, opts ...grpc.CallOption) (*ModifyResponse, error)
	Lookup(ctx context.Context, in *OrderIdRequest, opts ...grpc.CallOption) (*LookupResponse, error)
	Exists(ctx context.Context, in *OrderIdRequest, opts ...grpc.CallOption) (*ExistsResponse, error)
	Volume(ctx context.Context, in *VolumeRequest, opts ...grpc.CallOption) (*VolumeResponse, error)
	Depth(ctx context.Context, in *DepthRequest, opts ...grpc.CallOption) (*DepthResponse, error)
}

type orderBookClient struct {
	cc grpc.ClientConnInterface
}

// NewOrderBookClient returns a client whose calls always use Codec.
func NewOrderBookClient(cc grpc.ClientConnInterface) OrderBookClient {
	return &orderBookClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in Message, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.ForceCodec(Codec{})}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *orderBookClient) Match(ctx context.Context, in *MatchRequest, opts ...grpc.CallOption) (*MatchResponse, error) {
	return invoke[MatchResponse](ctx, c.cc, OrderBook_Match_FullMethodName, in, opts)
}

func (c *orderBookClient) Modify(ctx context.Context, in *ModifyRequest, opts ...grpc.CallOption) (*ModifyResponse, error) {
	return invoke[ModifyResponse](ctx, c.cc, OrderBook_Modify_FullMethodName, in, opts)
}

func (c *orderBookClient) Cancel(ctx context.Context, in *OrderIdRequest, opts ...grpc.CallOption) (*ModifyResponse, error) {
	return invoke[ModifyResponse](ctx, c.cc, OrderBook_Cancel_FullMethodName, in, opts)
}

func (c *orderBookClient) Lookup(ctx context.Context, in *OrderIdRequest, opts ...grpc.CallOption) (*LookupResponse, error) {
	return invoke[LookupResponse](ctx, c.cc, OrderBook_Lookup_FullMethodName, in, opts)
}

func (c *orderBookClient) Exists(ctx context.Context, in *OrderIdRequest, opts ...grpc.CallOption) (*ExistsResponse, error) {
	return invoke[ExistsResponse](ctx, c.cc, OrderBook_Exists_FullMethodName, in, opts)
}

func (c *orderBookClient) Volume(ctx context.Context, in *VolumeRequest, opts ...grpc.CallOption) (*VolumeResponse, error) {
	return invoke[VolumeResponse](ctx, c.cc, OrderBook_Volume_FullMethodName, in, opts)
}

func (c *orderBookClient) Depth(ctx context.Context, in *DepthRequest, opts ...grpc.CallOption) (*DepthResponse, error) {
	return invoke[DepthResponse](ctx, c.cc, OrderBook_Depth_FullMethodName, in, opts)
}
