package grpcserver

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	pb "matchcore/api/pb"
	"matchcore/domain/orderbook"
	"matchcore/infra/sequence"
	"matchcore/service"
)

func newClient(t *testing.T) pb.OrderBookClient {
	t.Helper()

	svc := service.NewOrderService(orderbook.New(), sequence.New(0))
	srv := NewServer(svc).Register(grpc.UnaryInterceptor(LoggingInterceptor(zaptest.NewLogger(t))))

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return pb.NewOrderBookClient(conn)
}

func match(t *testing.T, c pb.OrderBookClient, id uint32, side pb.Side, price, qty uint32) *pb.MatchResponse {
	t.Helper()
	resp, err := c.Match(context.Background(), &pb.MatchRequest{
		Order: &pb.Order{Id: id, Side: side, Price: price, Quantity: qty},
	})
	require.NoError(t, err)
	return resp
}

func TestMatchAndQueries(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	r := match(t, c, 1, pb.Side_SIDE_SELL, 100, 10)
	assert.Equal(t, uint64(1), r.Seq)
	assert.Equal(t, uint32(10), r.Rested)

	r = match(t, c, 2, pb.Side_SIDE_BUY, 100, 4)
	assert.Equal(t, uint32(1), r.Fills)
	assert.Zero(t, r.Rested)

	lookup, err := c.Lookup(ctx, &pb.OrderIdRequest{Id: 1})
	require.NoError(t, err)
	assert.Equal(t, &pb.Order{Id: 1, Price: 100, Quantity: 6, Side: pb.Side_SIDE_SELL}, lookup.Order)

	ex, err := c.Exists(ctx, &pb.OrderIdRequest{Id: 2})
	require.NoError(t, err)
	assert.False(t, ex.Exists)

	vol, err := c.Volume(ctx, &pb.VolumeRequest{Side: pb.Side_SIDE_SELL, Price: 100})
	require.NoError(t, err)
	assert.Equal(t, uint32(6), vol.Volume)
}

func TestModifyCancelAndNotFound(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	match(t, c, 5, pb.Side_SIDE_BUY, 90, 3)

	mod, err := c.Modify(ctx, &pb.ModifyRequest{Id: 5, Quantity: 8})
	require.NoError(t, err)
	assert.True(t, mod.Found)

	cancel, err := c.Cancel(ctx, &pb.OrderIdRequest{Id: 5})
	require.NoError(t, err)
	assert.True(t, cancel.Found)

	cancel, err = c.Cancel(ctx, &pb.OrderIdRequest{Id: 5})
	require.NoError(t, err)
	assert.False(t, cancel.Found)

	_, err = c.Lookup(ctx, &pb.OrderIdRequest{Id: 5})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestDepth(t *testing.T) {
	c := newClient(t)

	match(t, c, 1, pb.Side_SIDE_BUY, 99, 2)
	match(t, c, 2, pb.Side_SIDE_BUY, 100, 3)
	match(t, c, 3, pb.Side_SIDE_BUY, 100, 4)

	d, err := c.Depth(context.Background(), &pb.DepthRequest{Side: pb.Side_SIDE_BUY})
	require.NoError(t, err)
	assert.Equal(t, []*pb.Level{
		{Price: 100, Quantity: 7, Orders: 2},
		{Price: 99, Quantity: 2, Orders: 1},
	}, d.Levels)

	d, err = c.Depth(context.Background(), &pb.DepthRequest{Side: pb.Side_SIDE_BUY, Levels: 1})
	require.NoError(t, err)
	assert.Len(t, d.Levels, 1)
}

func TestInvalidArguments(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	cases := map[string]func() error{
		"missing order": func() error {
			_, err := c.Match(ctx, &pb.MatchRequest{})
			return err
		},
		"unspecified side": func() error {
			_, err := c.Match(ctx, &pb.MatchRequest{Order: &pb.Order{Id: 1, Price: 1, Quantity: 1}})
			return err
		},
		"price overflow": func() error {
			_, err := c.Match(ctx, &pb.MatchRequest{Order: &pb.Order{Id: 1, Price: 70000, Quantity: 1, Side: pb.Side_SIDE_BUY}})
			return err
		},
		"quantity overflow": func() error {
			_, err := c.Modify(ctx, &pb.ModifyRequest{Id: 1, Quantity: 1 << 16})
			return err
		},
		"volume side": func() error {
			_, err := c.Volume(ctx, &pb.VolumeRequest{Price: 1})
			return err
		},
	}
	for name, call := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, codes.InvalidArgument, status.Code(call()))
		})
	}
}
