package service

import (
	"fmt"

	"go.uber.org/zap"

	"matchcore/infra/metrics"
	entrywal "matchcore/infra/wal/entry"
	"matchcore/snapshot"
)

/*
Recover rebuilds the book from the snapshot at snapshotPath (optional)
followed by the journal in walDir, then resumes sequencing after the last
record seen.

IMPORTANT:
- This MUST run before accepting traffic
- Records covered by the snapshot are skipped
- The outbox is NOT replayed
*/
func (s *OrderService) Recover(snapshotPath, walDir string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var snapSeq uint64
	if snapshotPath != "" {
		seq, err := snapshot.Load(snapshotPath, s.book)
		if err != nil {
			return 0, fmt.Errorf("load snapshot: %w", err)
		}
		snapSeq = seq
	}

	applied := 0
	lastSeq, err := entrywal.Replay(walDir, func(rec *entrywal.Record) error {
		if rec.Seq <= snapSeq {
			return nil
		}
		cmd, err := DecodeCommand(rec)
		if err != nil {
			return fmt.Errorf("seq %d: %w", rec.Seq, err)
		}
		cmd.apply(s.book)
		applied++
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("replay journal: %w", err)
	}

	last := max(snapSeq, lastSeq)
	s.seq.Reset(last)

	metrics.ReplayedRecords.Add(float64(applied))
	metrics.RestingOrders.Set(float64(s.book.Len()))

	s.log.Info("recovery completed",
		zap.Uint64("snapshot_seq", snapSeq),
		zap.Uint64("last_seq", last),
		zap.Int("replayed", applied),
		zap.Int("resting", s.book.Len()),
	)
	return last, nil
}
