package orderbook

// LevelView is an aggregated, read-only view of one price level.
type LevelView struct {
	Price    uint16
	Quantity uint32
	Orders   int
}

// BestBid returns the highest resting buy price.
func (b *OrderBook) BestBid() (uint16, bool) {
	lvl := b.Bids.BestMax()
	if lvl == nil {
		return 0, false
	}
	return lvl.Price, true
}

// BestAsk returns the lowest resting sell price.
func (b *OrderBook) BestAsk() (uint16, bool) {
	lvl := b.Asks.BestMin()
	if lvl == nil {
		return 0, false
	}
	return lvl.Price, true
}

// Depth returns up to n levels of side in priority order. n <= 0 means all.
func (b *OrderBook) Depth(side Side, n int) []LevelView {
	out := make([]LevelView, 0, 16)
	b.walkSide(side, func(lvl *PriceLevel) bool {
		out = append(out, LevelView{
			Price:    lvl.Price,
			Quantity: lvl.TotalQty,
			Orders:   lvl.OrderCount,
		})
		return n <= 0 || len(out) < n
	})
	return out
}

// Walk visits copies of every resting order: bids best-first, then asks
// best-first, FIFO within a level. Replaying the visited orders through
// RestOrder reproduces the book.
func (b *OrderBook) Walk(fn func(Order)) {
	visit := func(lvl *PriceLevel) bool {
		for o := lvl.head; o != nil; o = o.next {
			fn(o.snapshot())
		}
		return true
	}
	b.Bids.WalkDesc(visit)
	b.Asks.WalkAsc(visit)
}

// Len returns the number of resting orders on both sides.
func (b *OrderBook) Len() int {
	return b.resting
}

func (b *OrderBook) walkSide(side Side, fn func(*PriceLevel) bool) {
	if side == Buy {
		b.Bids.WalkDesc(fn)
	} else {
		b.Asks.WalkAsc(fn)
	}
}
