package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"matchcore/infra/metrics"
	"matchcore/snapshot"
)

// Snapshot writes the current book to dir and then drops the journal
// segments and acked outbox entries it covers. It returns the sequence the
// snapshot was taken at.
func (s *OrderService) Snapshot(dir string) (uint64, error) {
	s.mu.Lock()
	seq := s.seq.Current()
	snap := snapshot.Capture(seq, s.book)
	s.mu.Unlock()

	w := &snapshot.Writer{Dir: dir}
	if err := w.Write(snap); err != nil {
		metrics.SnapshotsTotal.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("write snapshot: %w", err)
	}
	metrics.SnapshotsTotal.WithLabelValues("ok").Inc()

	// Truncate ENTRY WAL after snapshot
	if s.journal != nil {
		if err := s.journal.Sync(); err != nil {
			return seq, fmt.Errorf("sync journal: %w", err)
		}
		if _, err := s.journal.TruncateBefore(seq); err != nil {
			return seq, fmt.Errorf("truncate journal: %w", err)
		}
	}

	// GC EXIT WAL (acked only)
	if s.outbox != nil {
		if _, err := s.outbox.TruncateAckedUpTo(seq); err != nil {
			return seq, fmt.Errorf("truncate outbox: %w", err)
		}
	}
	return seq, nil
}

// RunSnapshots calls Snapshot every interval until ctx is done.
func (s *OrderService) RunSnapshots(ctx context.Context, dir string, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	var last uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}

		if s.seq.Current() == last {
			continue
		}
		seq, err := s.Snapshot(dir)
		if err != nil {
			s.log.Error("snapshot failed", zap.Error(err))
			continue
		}
		last = seq
		s.log.Debug("snapshot written", zap.Uint64("seq", seq))
	}
}
