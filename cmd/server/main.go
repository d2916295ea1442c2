package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"matchcore/api/grpcserver"
	"matchcore/api/httpserver"
	"matchcore/config"
	"matchcore/domain/orderbook"
	"matchcore/infra/kafka"
	"matchcore/infra/logx"
	"matchcore/infra/memory"
	natspub "matchcore/infra/nats"
	"matchcore/infra/sequence"
	entrywal "matchcore/infra/wal/entry"
	exitwal "matchcore/infra/wal/exit"
	"matchcore/jobs/broadcaster"
	"matchcore/service"
	"matchcore/snapshot"
)

func main() {
	app := &cli.App{
		Name:  "matchcore",
		Usage: "limit order matching engine",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "recover the book and serve gRPC and HTTP",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "path to the YAML config (default config/matchcore.yaml)",
					},
				},
				Action: serve,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve(c *cli.Context) error {
	cfg, v, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	log, level, err := logx.New(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	config.Watch(v, log, func(next *config.Config) {
		if err := level.UnmarshalText([]byte(next.Log.Level)); err != nil {
			log.Warn("invalid log level", zap.String("level", next.Log.Level))
			return
		}
		log.Info("log level changed", zap.String("level", next.Log.Level))
	})

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---------------- Entry WAL ----------------

	entryWAL, err := entrywal.Open(entrywal.Config{
		Dir:             cfg.WAL.Dir,
		SegmentSize:     cfg.WAL.SegmentSize,
		SegmentDuration: cfg.WAL.SegmentDuration,
		SyncEveryWrite:  cfg.WAL.SyncEveryWrite,
	})
	if err != nil {
		return fmt.Errorf("entry WAL init failed: %w", err)
	}
	defer entryWAL.Close()

	// ---------------- Exit WAL ----------------

	var exitWAL *exitwal.ExitWAL
	if cfg.Outbox.Enabled {
		exitWAL, err = exitwal.Open(cfg.Outbox.Dir)
		if err != nil {
			return fmt.Errorf("exit WAL init failed: %w", err)
		}
		defer exitWAL.Close()
	}

	// ---------------- Domain ----------------

	pool := memory.NewPool(
		func() *orderbook.Order { return &orderbook.Order{} },
		func(o *orderbook.Order) { *o = orderbook.Order{} },
	)
	book := orderbook.New(orderbook.WithAllocator(pool))
	seqGen := sequence.New(0)

	// ---------------- Service ----------------

	opts := []service.Option{service.WithJournal(entryWAL), service.WithLogger(log)}
	if exitWAL != nil {
		opts = append(opts, service.WithOutbox(exitWAL))
	}
	svc := service.NewOrderService(book, seqGen, opts...)

	// ---------------- Recovery ----------------

	snapPath := ""
	if cfg.Snapshot.Enabled {
		snapPath = filepath.Join(cfg.Snapshot.Dir, snapshot.FileName)
	}
	if _, err := svc.Recover(snapPath, cfg.WAL.Dir); err != nil {
		return fmt.Errorf("recovery failed: %w", err)
	}

	// ---------------- Background Jobs ----------------

	var wg sync.WaitGroup

	if cfg.Snapshot.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.RunSnapshots(ctx, cfg.Snapshot.Dir, cfg.Snapshot.Interval)
		}()
	}

	if exitWAL != nil && cfg.Broker.Kind != "none" {
		pub, err := newPublisher(cfg.Broker)
		if err != nil {
			return fmt.Errorf("broker init failed: %w", err)
		}
		bc := broadcaster.New(exitWAL, pub, broadcaster.Config{
			Interval:   cfg.Outbox.Interval,
			BatchSize:  cfg.Outbox.BatchSize,
			MaxRetries: cfg.Outbox.MaxRetries,
		}, log)
		defer bc.Close()

		wg.Add(1)
		go func() {
			defer wg.Done()
			bc.Run(ctx)
		}()
	}

	// ---------------- gRPC ----------------

	lis, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		return fmt.Errorf("listen failed: %w", err)
	}
	grpcSrv := grpcserver.NewServer(svc).Register(
		grpc.UnaryInterceptor(grpcserver.LoggingInterceptor(log)),
	)

	// ---------------- HTTP ----------------

	httpSrv := httpserver.NewServer(cfg.HTTP.Addr, httpserver.NewHandler(svc, log))

	errc := make(chan error, 2)
	go func() {
		log.Info("gRPC listening", zap.String("addr", cfg.GRPC.Addr))
		errc <- grpcSrv.Serve(lis)
	}()
	go func() {
		errc <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err = <-errc:
		if err != nil {
			log.Error("server exited", zap.Error(err))
		}
		stop()
	}

	// ---------------- Shutdown ----------------

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	grpcSrv.GracefulStop()
	if serr := httpSrv.Shutdown(shutdownCtx); serr != nil && !errors.Is(serr, context.Canceled) {
		log.Warn("http shutdown", zap.Error(serr))
	}
	wg.Wait()

	if cfg.Snapshot.Enabled {
		if _, serr := svc.Snapshot(cfg.Snapshot.Dir); serr != nil {
			log.Warn("final snapshot", zap.Error(serr))
		}
	}
	return err
}

func newPublisher(cfg config.BrokerConfig) (broadcaster.Publisher, error) {
	switch cfg.Kind {
	case "sarama":
		return broadcaster.NewSaramaPublisher(cfg.Brokers, cfg.Topic)
	case "kafka-go":
		return kafka.NewProducer(cfg.Brokers, cfg.Topic), nil
	case "nats":
		return natspub.NewPublisher(cfg.NatsURL, cfg.Subject)
	default:
		return nil, fmt.Errorf("unknown broker kind %q", cfg.Kind)
	}
}
