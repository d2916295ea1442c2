package broadcaster

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"

	"matchcore/infra/logx"
	"matchcore/infra/metrics"
	exitwal "matchcore/infra/wal/exit"
)

type Config struct {
	Interval  time.Duration
	BatchSize int
	// MaxRetries is the number of failed sends after which a record is
	// left in FAILED and no longer attempted. Zero means retry forever.
	MaxRetries uint32
}

// Broadcaster drains the outbox to a Publisher, oldest record first.
type Broadcaster struct {
	outbox *exitwal.ExitWAL
	pub    Publisher
	cfg    Config
	log    *zap.Logger
}

var errBatchDone = errors.New("batch done")

func New(outbox *exitwal.ExitWAL, pub Publisher, cfg Config, log *zap.Logger) *Broadcaster {
	if cfg.Interval <= 0 {
		cfg.Interval = 250 * time.Millisecond
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 256
	}
	return &Broadcaster{
		outbox: outbox,
		pub:    pub,
		cfg:    cfg,
		log:    logx.OrNop(log).Named("broadcaster"),
	}
}

// ------------------------------------------------
// LOOP
// ------------------------------------------------

// Run flushes the outbox every interval until ctx is done.
func (b *Broadcaster) Run(ctx context.Context) {
	b.log.Info("started", zap.Duration("interval", b.cfg.Interval))
	defer b.log.Info("stopped")

	ticker := time.NewTicker(b.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := b.Flush(ctx); err != nil && ctx.Err() == nil {
				b.log.Warn("flush stopped early", zap.Error(err))
			}
		}
	}
}

// ------------------------------------------------
// DELIVERY
// ------------------------------------------------

// Flush sends up to BatchSize pending records and returns how many were
// acknowledged. Delivery stops at the first failed send so events leave
// in sequence order; the failed record is retried on the next call.
func (b *Broadcaster) Flush(ctx context.Context) (int, error) {
	sent, attempted := 0, 0

	err := b.outbox.ScanPending(0, func(rec *exitwal.ExitRecord) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if b.exhausted(rec) {
			return nil
		}
		if attempted >= b.cfg.BatchSize {
			return errBatchDone
		}
		attempted++

		// mark SENT first so a crash before the ack leads to a resend
		if err := b.outbox.MarkSent(rec.Seq); err != nil {
			return err
		}

		key := strconv.AppendUint(nil, rec.Seq, 10)
		if err := b.pub.Publish(ctx, key, rec.Payload); err != nil {
			metrics.OutboxPublish.WithLabelValues("error").Inc()
			if merr := b.outbox.MarkFailed(rec.Seq); merr != nil {
				return merr
			}
			b.log.Warn("publish failed",
				zap.Uint64("seq", rec.Seq),
				zap.Uint32("retries", rec.Retries+1),
				zap.Error(err))
			return err
		}

		if err := b.outbox.MarkAcked(rec.Seq); err != nil {
			return err
		}
		metrics.OutboxPublish.WithLabelValues("ok").Inc()
		sent++
		return nil
	})
	if errors.Is(err, errBatchDone) {
		err = nil
	}
	return sent, err
}

func (b *Broadcaster) exhausted(rec *exitwal.ExitRecord) bool {
	return b.cfg.MaxRetries > 0 &&
		rec.State == exitwal.StateFailed &&
		rec.Retries >= b.cfg.MaxRetries
}

// Close releases the publisher.
func (b *Broadcaster) Close() error {
	return b.pub.Close()
}
