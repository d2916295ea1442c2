package service

import (
	"context"
	"testing"

	"matchcore/domain/orderbook"
	"matchcore/infra/memory"
	"matchcore/infra/sequence"
	entrywal "matchcore/infra/wal/entry"
	exitwal "matchcore/infra/wal/exit"
)

func BenchmarkMatch_Core(b *testing.B) {
	pool := memory.NewPool(func() *orderbook.Order { return &orderbook.Order{} }, nil)
	book := orderbook.New(orderbook.WithAllocator(pool))
	svc := NewOrderService(book, sequence.New(0))
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		side := orderbook.Buy
		if i%2 == 1 {
			side = orderbook.Sell
		}
		_, _ = svc.Match(ctx, orderbook.Order{ID: uint32(i), Side: side, Price: 100, Quantity: 1})
	}
}

func BenchmarkMatch_Durable(b *testing.B) {
	journal, err := entrywal.Open(entrywal.Config{Dir: b.TempDir(), SegmentSize: 64 << 20})
	if err != nil {
		b.Fatal(err)
	}
	defer journal.Close()

	outbox, err := exitwal.Open(b.TempDir())
	if err != nil {
		b.Fatal(err)
	}
	defer outbox.Close()

	svc := NewOrderService(orderbook.New(), sequence.New(0),
		WithJournal(journal), WithOutbox(outbox))
	ctx := context.Background()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := uint32(0)
		for pb.Next() {
			i++
			_, _ = svc.Match(ctx, orderbook.Order{ID: i, Side: orderbook.Buy, Price: 100, Quantity: 1})
		}
	})
}
