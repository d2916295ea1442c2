package snapshot

import (
	"time"

	"matchcore/domain/orderbook"
)

const FileName = "snapshot.bin"

type Snapshot struct {
	Seq     uint64
	Created time.Time
	Orders  []OrderEntry
}

type OrderEntry struct {
	ID    uint32
	Side  uint8
	Price uint16
	Qty   uint16
}

// Capture copies the resting orders of book. The caller must hold
// whatever lock guards book.
func Capture(seq uint64, book *orderbook.OrderBook) *Snapshot {
	s := &Snapshot{
		Seq:     seq,
		Created: time.Now(),
		Orders:  make([]OrderEntry, 0, book.Len()),
	}
	book.Walk(func(o orderbook.Order) {
		s.Orders = append(s.Orders, OrderEntry{
			ID:    o.ID,
			Side:  uint8(o.Side),
			Price: o.Price,
			Qty:   o.Quantity,
		})
	})
	return s
}
