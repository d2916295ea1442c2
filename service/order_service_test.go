package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchcore/domain/orderbook"
	"matchcore/infra/sequence"
	entrywal "matchcore/infra/wal/entry"
	exitwal "matchcore/infra/wal/exit"
	"matchcore/snapshot"
)

type fixture struct {
	svc     *OrderService
	journal *entrywal.WAL
	outbox  *exitwal.ExitWAL
	walDir  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "wal")
	journal, err := entrywal.Open(entrywal.Config{Dir: dir, SegmentSize: 1 << 20})
	require.NoError(t, err)
	t.Cleanup(func() { _ = journal.Close() })

	outbox, err := exitwal.OpenMem()
	require.NoError(t, err)
	t.Cleanup(func() { _ = outbox.Close() })

	svc := NewOrderService(orderbook.New(), sequence.New(0),
		WithJournal(journal), WithOutbox(outbox))
	return &fixture{svc: svc, journal: journal, outbox: outbox, walDir: dir}
}

func order(id uint32, side orderbook.Side, price, qty uint16) orderbook.Order {
	return orderbook.Order{ID: id, Side: side, Price: price, Quantity: qty}
}

func TestMatchAssignsSequenceAndReportsFills(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.svc.Match(ctx, order(1, orderbook.Sell, 100, 10))
	require.NoError(t, err)
	assert.Equal(t, Result{Seq: 1, Fills: 0, Rested: 10}, r)

	r, err = f.svc.Match(ctx, order(2, orderbook.Buy, 100, 4))
	require.NoError(t, err)
	assert.Equal(t, Result{Seq: 2, Fills: 1, Rested: 0}, r)

	o, err := f.svc.Lookup(1)
	require.NoError(t, err)
	assert.Equal(t, uint16(6), o.Quantity)
	assert.False(t, f.svc.Exists(2))
	assert.Equal(t, uint32(6), f.svc.VolumeAtLevel(orderbook.Sell, 100))
}

func TestModifyAndCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Match(ctx, order(7, orderbook.Buy, 50, 5))
	require.NoError(t, err)

	found, err := f.svc.Modify(ctx, 7, 9)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, uint32(9), f.svc.VolumeAtLevel(orderbook.Buy, 50))

	found, err = f.svc.Cancel(ctx, 7)
	require.NoError(t, err)
	assert.True(t, found)
	assert.False(t, f.svc.Exists(7))

	found, err = f.svc.Cancel(ctx, 7)
	require.NoError(t, err)
	assert.False(t, found)

	_, err = f.svc.Lookup(7)
	assert.True(t, errors.Is(err, orderbook.ErrNotFound))
}

func TestMatchRejectsUnknownSide(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Match(context.Background(), order(1, orderbook.Side(9), 1, 1))
	assert.True(t, errors.Is(err, ErrBadCommand))
	assert.Equal(t, uint64(0), f.svc.Stats().Seq)
}

func TestCanceledContextIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.Match(ctx, order(1, orderbook.Buy, 1, 1))
	assert.ErrorIs(t, err, context.Canceled)
	_, err = f.svc.Modify(ctx, 1, 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, f.svc.Stats().Resting)
}

func TestEventsAreWrittenToOutbox(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Match(ctx, order(1, orderbook.Sell, 100, 10))
	require.NoError(t, err)
	_, err = f.svc.Match(ctx, order(2, orderbook.Buy, 101, 3))
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, 99)
	require.NoError(t, err)

	var events []Event
	err = f.outbox.ScanPending(10, func(r *exitwal.ExitRecord) error {
		ev, err := UnmarshalEvent(r.Payload)
		if err != nil {
			return err
		}
		assert.Equal(t, r.Seq, ev.Seq)
		events = append(events, ev)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, EventMatch, events[0].Type)
	assert.Equal(t, "SELL", events[0].Side)
	assert.Equal(t, uint16(10), events[0].Rested)

	assert.Equal(t, EventMatch, events[1].Type)
	assert.Equal(t, uint32(1), events[1].Fills)
	assert.Equal(t, uint16(0), events[1].Rested)

	assert.Equal(t, EventCancel, events[2].Type)
	assert.Equal(t, uint32(99), events[2].ID)
	assert.False(t, events[2].Found)
}

func TestJournalFailureStopsWrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Match(ctx, order(1, orderbook.Buy, 10, 1))
	require.NoError(t, err)

	require.NoError(t, f.journal.Close())

	_, err = f.svc.Match(ctx, order(2, orderbook.Buy, 10, 1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.False(t, f.svc.Exists(2), "command must not be applied")

	_, err = f.svc.Cancel(ctx, 1)
	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.True(t, f.svc.Exists(1))
	assert.Error(t, f.svc.Healthy())
}

func TestRecoverFromJournal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _ = f.svc.Match(ctx, order(1, orderbook.Sell, 100, 10))
	_, _ = f.svc.Match(ctx, order(2, orderbook.Sell, 100, 5))
	_, _ = f.svc.Match(ctx, order(3, orderbook.Buy, 100, 12))
	_, _ = f.svc.Modify(ctx, 2, 1)
	_, _ = f.svc.Match(ctx, order(4, orderbook.Buy, 90, 8))
	require.NoError(t, f.journal.Sync())

	restored := NewOrderService(orderbook.New(), sequence.New(0))
	last, err := restored.Recover("", f.walDir)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), last)

	assert.Equal(t, f.svc.Stats(), restored.Stats())
	assert.Equal(t, f.svc.Depth(orderbook.Buy, 0), restored.Depth(orderbook.Buy, 0))
	assert.Equal(t, f.svc.Depth(orderbook.Sell, 0), restored.Depth(orderbook.Sell, 0))
}

func TestSnapshotThenRecover(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	snapDir := t.TempDir()

	_, _ = f.svc.Match(ctx, order(1, orderbook.Buy, 99, 3))
	_, _ = f.svc.Match(ctx, order(2, orderbook.Sell, 101, 4))

	seq, err := f.svc.Snapshot(snapDir)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), seq)

	_, _ = f.svc.Match(ctx, order(3, orderbook.Sell, 99, 1))
	_, _ = f.svc.Match(ctx, order(4, orderbook.Buy, 98, 6))
	require.NoError(t, f.journal.Sync())

	restored := NewOrderService(orderbook.New(), sequence.New(0))
	last, err := restored.Recover(filepath.Join(snapDir, snapshot.FileName), f.walDir)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), last)

	bid, err := restored.Lookup(1)
	require.NoError(t, err)
	assert.Equal(t, uint16(2), bid.Quantity)
	assert.True(t, restored.Exists(2))
	assert.True(t, restored.Exists(4))
	assert.Equal(t, f.svc.Stats(), restored.Stats())

	// next write continues the sequence
	r, err := restored.Match(ctx, order(5, orderbook.Buy, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, uint64(5), r.Seq)
}

func TestSnapshotCollectsAckedOutbox(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := uint32(1); i <= 3; i++ {
		_, err := f.svc.Match(ctx, order(i, orderbook.Buy, 10, 1))
		require.NoError(t, err)
	}
	require.NoError(t, f.outbox.MarkAcked(1))
	require.NoError(t, f.outbox.MarkAcked(2))

	_, err := f.svc.Snapshot(t.TempDir())
	require.NoError(t, err)

	_, err = f.outbox.Get(1)
	assert.True(t, errors.Is(err, exitwal.ErrNotFound))
	rec, err := f.outbox.Get(3)
	require.NoError(t, err)
	assert.Equal(t, exitwal.StateNew, rec.State)
}

func TestConcurrentWritesAreSerialised(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const workers, perWorker = 8, 50
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id := uint32(w*perWorker + i + 1)
				_, err := f.svc.Match(ctx, order(id, orderbook.Buy, uint16(100+w), 1))
				assert.NoError(t, err)
			}
		}(w)
	}
	wg.Wait()

	st := f.svc.Stats()
	assert.Equal(t, uint64(workers*perWorker), st.Seq)
	assert.Equal(t, workers*perWorker, st.Resting)
	assert.True(t, st.HasBid)
	assert.Equal(t, uint16(100+workers-1), st.BestBid)
	assert.False(t, st.HasAsk)
}
