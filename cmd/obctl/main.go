package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/segmentio/encoding/json"
	"github.com/urfave/cli/v2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	pb "matchcore/api/pb"
)

var (
	host    string
	timeout time.Duration
)

const defaultTimeout = 10 * time.Second

func jsonOutput(in any) {
	j, err := json.MarshalIndent(in, "", " ")
	if err != nil {
		return
	}
	fmt.Println(string(j))
}

func setupClient(c *cli.Context) (pb.OrderBookClient, context.Context, func(), error) {
	conn, err := grpc.NewClient(host, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, nil, err
	}
	ctx, cancel := context.WithTimeout(c.Context, timeout)
	return pb.NewOrderBookClient(conn), ctx, func() {
		cancel()
		_ = conn.Close()
	}, nil
}

func parseSide(s string) (pb.Side, error) {
	switch strings.ToLower(s) {
	case "buy", "bid":
		return pb.Side_SIDE_BUY, nil
	case "sell", "ask":
		return pb.Side_SIDE_SELL, nil
	default:
		return 0, fmt.Errorf("invalid side %q, want buy or sell", s)
	}
}

var idFlag = &cli.UintFlag{Name: "id", Usage: "order id", Required: true}

func main() {
	app := &cli.App{
		Name:                 "obctl",
		Usage:                "command line client for the matchcore gRPC API",
		EnableBashCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "host",
				Value:       "localhost:50051",
				Usage:       "the gRPC host to connect to",
				Destination: &host,
			},
			&cli.DurationFlag{
				Name:        "timeout",
				Value:       defaultTimeout,
				Usage:       "the timeout of each command",
				Destination: &timeout,
			},
		},
		Commands: []*cli.Command{
			matchCommand,
			modifyCommand,
			cancelCommand,
			lookupCommand,
			existsCommand,
			volumeCommand,
			depthCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var matchCommand = &cli.Command{
	Name:      "match",
	Usage:     "submits a limit order, resting any remainder",
	ArgsUsage: "--id --side --price --quantity",
	Flags: []cli.Flag{
		idFlag,
		&cli.StringFlag{Name: "side", Usage: "buy or sell", Required: true},
		&cli.UintFlag{Name: "price", Required: true},
		&cli.UintFlag{Name: "quantity", Aliases: []string{"qty"}, Required: true},
	},
	Action: func(c *cli.Context) error {
		side, err := parseSide(c.String("side"))
		if err != nil {
			return err
		}
		client, ctx, done, err := setupClient(c)
		if err != nil {
			return err
		}
		defer done()

		resp, err := client.Match(ctx, &pb.MatchRequest{Order: &pb.Order{
			Id:       uint32(c.Uint("id")),
			Side:     side,
			Price:    uint32(c.Uint("price")),
			Quantity: uint32(c.Uint("quantity")),
		}})
		if err != nil {
			return err
		}
		jsonOutput(resp)
		return nil
	},
}

var modifyCommand = &cli.Command{
	Name:  "modify",
	Usage: "replaces the quantity of a resting order; 0 cancels it",
	Flags: []cli.Flag{
		idFlag,
		&cli.UintFlag{Name: "quantity", Aliases: []string{"qty"}, Required: true},
	},
	Action: func(c *cli.Context) error {
		client, ctx, done, err := setupClient(c)
		if err != nil {
			return err
		}
		defer done()

		resp, err := client.Modify(ctx, &pb.ModifyRequest{
			Id:       uint32(c.Uint("id")),
			Quantity: uint32(c.Uint("quantity")),
		})
		if err != nil {
			return err
		}
		jsonOutput(resp)
		return nil
	},
}

// idCommand builds a command that takes only --id.
func idCommand(name, usage string, call func(context.Context, pb.OrderBookClient, *pb.OrderIdRequest) (any, error)) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Flags: []cli.Flag{idFlag},
		Action: func(c *cli.Context) error {
			client, ctx, done, err := setupClient(c)
			if err != nil {
				return err
			}
			defer done()

			resp, err := call(ctx, client, &pb.OrderIdRequest{Id: uint32(c.Uint("id"))})
			if err != nil {
				return err
			}
			jsonOutput(resp)
			return nil
		},
	}
}

var cancelCommand = idCommand("cancel", "removes a resting order",
	func(ctx context.Context, c pb.OrderBookClient, in *pb.OrderIdRequest) (any, error) {
		return c.Cancel(ctx, in)
	})

var lookupCommand = idCommand("lookup", "prints a resting order",
	func(ctx context.Context, c pb.OrderBookClient, in *pb.OrderIdRequest) (any, error) {
		return c.Lookup(ctx, in)
	})

var existsCommand = idCommand("exists", "reports whether an order is resting",
	func(ctx context.Context, c pb.OrderBookClient, in *pb.OrderIdRequest) (any, error) {
		return c.Exists(ctx, in)
	})

var volumeCommand = &cli.Command{
	Name:  "volume",
	Usage: "prints the resting quantity at one price",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "side", Usage: "buy or sell", Required: true},
		&cli.UintFlag{Name: "price", Required: true},
	},
	Action: func(c *cli.Context) error {
		side, err := parseSide(c.String("side"))
		if err != nil {
			return err
		}
		client, ctx, done, err := setupClient(c)
		if err != nil {
			return err
		}
		defer done()

		resp, err := client.Volume(ctx, &pb.VolumeRequest{Side: side, Price: uint32(c.Uint("price"))})
		if err != nil {
			return err
		}
		jsonOutput(resp)
		return nil
	},
}

var depthCommand = &cli.Command{
	Name:  "depth",
	Usage: "prints aggregated price levels, best first",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "side", Usage: "buy or sell", Required: true},
		&cli.UintFlag{Name: "levels", Usage: "number of levels, 0 for all"},
	},
	Action: func(c *cli.Context) error {
		side, err := parseSide(c.String("side"))
		if err != nil {
			return err
		}
		client, ctx, done, err := setupClient(c)
		if err != nil {
			return err
		}
		defer done()

		resp, err := client.Depth(ctx, &pb.DepthRequest{Side: side, Levels: uint32(c.Uint("levels"))})
		if err != nil {
			return err
		}
		jsonOutput(resp)
		return nil
	},
}
