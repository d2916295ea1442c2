package grpcserver

import (
	"context"
	"errors"
	"math"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pb "matchcore/api/pb"
	"matchcore/domain/orderbook"
	"matchcore/service"
)

// Server adapts OrderService to gRPC.
type Server struct {
	pb.UnimplementedOrderBookServer
	svc *service.OrderService
}

func NewServer(svc *service.OrderService) *Server {
	return &Server{svc: svc}
}

// Register builds a grpc.Server with the pb codec and the given
// interceptors and registers s on it.
func (s *Server) Register(opts ...grpc.ServerOption) *grpc.Server {
	srv := grpc.NewServer(append([]grpc.ServerOption{pb.ServerCodec()}, opts...)...)
	pb.RegisterOrderBookServer(srv, s)
	return srv
}

// -------------------- Commands --------------------

func (s *Server) Match(ctx context.Context, req *pb.MatchRequest) (*pb.MatchResponse, error) {
	if req.Order == nil {
		return nil, status.Error(codes.InvalidArgument, "order is required")
	}
	o, err := toOrder(req.Order)
	if err != nil {
		return nil, err
	}

	res, err := s.svc.Match(ctx, o)
	if err != nil {
		return nil, toStatus(err)
	}
	return &pb.MatchResponse{
		Seq:    res.Seq,
		Fills:  res.Fills,
		Rested: uint32(res.Rested),
	}, nil
}

func (s *Server) Modify(ctx context.Context, req *pb.ModifyRequest) (*pb.ModifyResponse, error) {
	qty, err := toUint16("quantity", req.Quantity)
	if err != nil {
		return nil, err
	}
	found, err := s.svc.Modify(ctx, req.Id, qty)
	if err != nil {
		return nil, toStatus(err)
	}
	return &pb.ModifyResponse{Found: found}, nil
}

func (s *Server) Cancel(ctx context.Context, req *pb.OrderIdRequest) (*pb.ModifyResponse, error) {
	found, err := s.svc.Cancel(ctx, req.Id)
	if err != nil {
		return nil, toStatus(err)
	}
	return &pb.ModifyResponse{Found: found}, nil
}

// -------------------- Queries --------------------

func (s *Server) Lookup(ctx context.Context, req *pb.OrderIdRequest) (*pb.LookupResponse, error) {
	o, err := s.svc.Lookup(req.Id)
	if err != nil {
		return nil, toStatus(err)
	}
	return &pb.LookupResponse{Order: fromOrder(o)}, nil
}

func (s *Server) Exists(ctx context.Context, req *pb.OrderIdRequest) (*pb.ExistsResponse, error) {
	return &pb.ExistsResponse{Exists: s.svc.Exists(req.Id)}, nil
}

func (s *Server) Volume(ctx context.Context, req *pb.VolumeRequest) (*pb.VolumeResponse, error) {
	side, err := toSide(req.Side)
	if err != nil {
		return nil, err
	}
	price, err := toUint16("price", req.Price)
	if err != nil {
		return nil, err
	}
	return &pb.VolumeResponse{Volume: s.svc.VolumeAtLevel(side, price)}, nil
}

func (s *Server) Depth(ctx context.Context, req *pb.DepthRequest) (*pb.DepthResponse, error) {
	side, err := toSide(req.Side)
	if err != nil {
		return nil, err
	}

	levels := s.svc.Depth(side, int(req.Levels))
	resp := &pb.DepthResponse{Levels: make([]*pb.Level, 0, len(levels))}
	for _, l := range levels {
		resp.Levels = append(resp.Levels, &pb.Level{
			Price:    uint32(l.Price),
			Quantity: l.Quantity,
			Orders:   uint32(l.Orders),
		})
	}
	return resp, nil
}

// -------------------- Converters --------------------

func toOrder(o *pb.Order) (orderbook.Order, error) {
	side, err := toSide(o.Side)
	if err != nil {
		return orderbook.Order{}, err
	}
	price, err := toUint16("price", o.Price)
	if err != nil {
		return orderbook.Order{}, err
	}
	qty, err := toUint16("quantity", o.Quantity)
	if err != nil {
		return orderbook.Order{}, err
	}
	return orderbook.Order{ID: o.Id, Price: price, Quantity: qty, Side: side}, nil
}

func fromOrder(o orderbook.Order) *pb.Order {
	return &pb.Order{
		Id:       o.ID,
		Price:    uint32(o.Price),
		Quantity: uint32(o.Quantity),
		Side:     fromSide(o.Side),
	}
}

func toSide(s pb.Side) (orderbook.Side, error) {
	switch s {
	case pb.Side_SIDE_BUY:
		return orderbook.Buy, nil
	case pb.Side_SIDE_SELL:
		return orderbook.Sell, nil
	default:
		return 0, status.Errorf(codes.InvalidArgument, "invalid side %v", s)
	}
}

func fromSide(s orderbook.Side) pb.Side {
	if s == orderbook.Sell {
		return pb.Side_SIDE_SELL
	}
	return pb.Side_SIDE_BUY
}

func toUint16(field string, v uint32) (uint16, error) {
	if v > math.MaxUint16 {
		return 0, status.Errorf(codes.InvalidArgument, "%s %d out of range", field, v)
	}
	return uint16(v), nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, orderbook.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, service.ErrBadCommand):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
