package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"matchcore/domain/orderbook"
	"matchcore/infra/logx"
	"matchcore/infra/metrics"
	"matchcore/infra/sequence"
	entrywal "matchcore/infra/wal/entry"
	exitwal "matchcore/infra/wal/exit"
)

// ErrUnavailable is returned for writes after the journal has failed. The
// book may no longer match what a restart would rebuild, so the service
// stops accepting commands.
var ErrUnavailable = errors.New("service: journal unavailable")

/*
OrderService is the ONLY write entry point into the system.

Every command is sequenced, journalled, applied to the book and published
to the outbox while holding one mutex, so the journal order is the order
the book saw.
*/
type OrderService struct {
	mu sync.Mutex

	book    *orderbook.OrderBook
	seq     *sequence.Sequencer
	journal *entrywal.WAL
	outbox  *exitwal.ExitWAL
	log     *zap.Logger

	broken error
}

type Option func(*OrderService)

// WithJournal makes every write durable in w before it is applied.
func WithJournal(w *entrywal.WAL) Option {
	return func(s *OrderService) { s.journal = w }
}

// WithOutbox records an Event per write in o for the broadcaster.
func WithOutbox(o *exitwal.ExitWAL) Option {
	return func(s *OrderService) { s.outbox = o }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *OrderService) { s.log = l }
}

// NewOrderService wires all dependencies.
// No globals. No magic.
func NewOrderService(book *orderbook.OrderBook, seq *sequence.Sequencer, opts ...Option) *OrderService {
	s := &OrderService{book: book, seq: seq}
	for _, opt := range opts {
		opt(s)
	}
	s.log = logx.OrNop(s.log).Named("service")
	return s
}

type Result struct {
	Seq    uint64
	Fills  uint32
	Rested uint16
}

//
// ──────────────────────────────────────────────────────────
// Commands
// ──────────────────────────────────────────────────────────
//

// Match submits o to the book and returns the assigned sequence, the
// number of resting orders it traded against and the quantity left
// resting.
func (s *OrderService) Match(ctx context.Context, o orderbook.Order) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if o.Side != orderbook.Buy && o.Side != orderbook.Sell {
		return Result{}, fmt.Errorf("%w: side %d", ErrBadCommand, o.Side)
	}

	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	seq, err := s.journalLocked(entrywal.RecordMatch, encodeMatch(o))
	if err != nil {
		metrics.CommandsTotal.WithLabelValues(EventMatch, "error").Inc()
		return Result{}, err
	}

	fills, rested := s.book.Submit(o)

	metrics.CommandsTotal.WithLabelValues(EventMatch, "ok").Inc()
	metrics.FillsTotal.Add(float64(fills))
	metrics.RestingOrders.Set(float64(s.book.Len()))
	metrics.CommandDuration.WithLabelValues(EventMatch).Observe(time.Since(start).Seconds())

	s.emitLocked(matchEvent(seq, o, fills, rested))

	return Result{Seq: seq, Fills: fills, Rested: rested}, nil
}

// Modify changes the quantity of the first resting order with id. A zero
// quantity cancels it. The boolean reports whether the order was found.
func (s *OrderService) Modify(ctx context.Context, id uint32, qty uint16) (bool, error) {
	typ := EventModify
	if qty == 0 {
		typ = EventCancel
	}
	return s.modify(ctx, typ, id, qty)
}

func (s *OrderService) Cancel(ctx context.Context, id uint32) (bool, error) {
	return s.modify(ctx, EventCancel, id, 0)
}

func (s *OrderService) modify(ctx context.Context, typ string, id uint32, qty uint16) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	seq, err := s.journalLocked(entrywal.RecordModify, encodeModify(id, qty))
	if err != nil {
		metrics.CommandsTotal.WithLabelValues(typ, "error").Inc()
		return false, err
	}

	found := s.book.Modify(id, qty)

	result := "ok"
	if !found {
		result = "not_found"
	}
	metrics.CommandsTotal.WithLabelValues(typ, result).Inc()
	metrics.RestingOrders.Set(float64(s.book.Len()))
	metrics.CommandDuration.WithLabelValues(typ).Observe(time.Since(start).Seconds())

	s.emitLocked(modifyEvent(typ, seq, id, qty, found))

	return found, nil
}

// journalLocked assigns the next sequence and appends the command. On
// failure the service is marked broken and nothing is applied.
func (s *OrderService) journalLocked(t entrywal.RecordType, payload []byte) (uint64, error) {
	if s.broken != nil {
		return 0, s.broken
	}

	seq := s.seq.Next()
	if s.journal == nil {
		return seq, nil
	}

	if err := s.journal.Append(entrywal.NewRecord(t, seq, payload)); err != nil {
		metrics.WALAppendErrors.Inc()
		s.broken = fmt.Errorf("%w: %v", ErrUnavailable, err)
		s.log.Error("journal append failed, rejecting further writes",
			zap.Uint64("seq", seq), zap.Error(err))
		return 0, s.broken
	}
	return seq, nil
}

// emitLocked stores ev in the outbox. The command is already applied, so
// a failure is logged and counted, not returned.
func (s *OrderService) emitLocked(ev Event) {
	if s.outbox == nil {
		return
	}

	payload, err := ev.Marshal()
	if err == nil {
		err = s.outbox.PutNew(ev.Seq, payload)
	}
	if err != nil {
		metrics.OutboxWrites.WithLabelValues("error").Inc()
		s.log.Warn("outbox write failed", zap.Uint64("seq", ev.Seq), zap.Error(err))
		return
	}
	metrics.OutboxWrites.WithLabelValues("ok").Inc()
}

//
// ──────────────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────────────
//

func (s *OrderService) Lookup(id uint32) (orderbook.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.Lookup(id)
}

func (s *OrderService) Exists(id uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.Exists(id)
}

func (s *OrderService) VolumeAtLevel(side orderbook.Side, price uint16) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.VolumeAtLevel(side, price)
}

// Depth returns the best n aggregated levels of side; n <= 0 returns all.
func (s *OrderService) Depth(side orderbook.Side, n int) []orderbook.LevelView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.Depth(side, n)
}

type Stats struct {
	Seq     uint64
	Resting int
	BestBid uint16
	HasBid  bool
	BestAsk uint16
	HasAsk  bool
}

func (s *OrderService) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{Seq: s.seq.Current(), Resting: s.book.Len()}
	st.BestBid, st.HasBid = s.book.BestBid()
	st.BestAsk, st.HasAsk = s.book.BestAsk()
	return st
}

// Healthy reports whether writes are still accepted.
func (s *OrderService) Healthy() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.broken
}
