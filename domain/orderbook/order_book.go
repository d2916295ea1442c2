package orderbook

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Lookup when no resting order has the id.
var ErrNotFound = errors.New("orderbook: order not found")

// Allocator supplies and recycles resting order nodes.
type Allocator interface {
	Get() *Order
	Put(*Order)
}

type heapAllocator struct{}

func (heapAllocator) Get() *Order { return &Order{} }
func (heapAllocator) Put(*Order)  {}

type Option func(*OrderBook)

// WithAllocator makes the book draw resting orders from a.
func WithAllocator(a Allocator) Option {
	return func(b *OrderBook) {
		if a != nil {
			b.alloc = a
		}
	}
}

// OrderBook is single-writer and deterministic.
type OrderBook struct {
	Bids *RBTree
	Asks *RBTree

	alloc   Allocator
	resting int
}

// New creates an empty book for one instrument.
func New(opts ...Option) *OrderBook {
	b := &OrderBook{
		Bids:  NewRBTree(),
		Asks:  NewRBTree(),
		alloc: heapAllocator{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Match matches in against the opposite side and rests any remainder at
// its limit price. It returns the number of resting orders filled, fully
// or partially.
func (b *OrderBook) Match(in Order) uint32 {
	fills, _ := b.Submit(in)
	return fills
}

// Submit is Match that also reports the quantity left resting under
// in.ID, zero when in was fully filled.
func (b *OrderBook) Submit(in Order) (fills uint32, rested uint16) {
	if in.Quantity == 0 {
		return 0, 0
	}

	if in.Side == Buy {
		fills = b.matchBuy(&in)
	} else {
		fills = b.matchSell(&in)
	}

	if in.Quantity > 0 {
		b.rest(in)
	}
	return fills, in.Quantity
}

// Modify replaces the quantity of the order with id in place; a zero
// quantity cancels it. The order keeps its queue position. Bids are
// searched before asks and the first hit wins.
func (b *OrderBook) Modify(id uint32, qty uint16) bool {
	o := b.find(id)
	if o == nil {
		return false
	}
	if qty == 0 {
		lvl := o.level
		tree := b.ladder(o.Side)
		b.unlink(lvl, o)
		b.prune(tree, lvl)
		return true
	}
	o.level.resize(o, qty)
	return true
}

// Cancel removes the order with id. It reports whether it was resting.
func (b *OrderBook) Cancel(id uint32) bool {
	return b.Modify(id, 0)
}

// Lookup returns a copy of the resting order with id.
func (b *OrderBook) Lookup(id uint32) (Order, error) {
	o := b.find(id)
	if o == nil {
		return Order{}, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	return o.snapshot(), nil
}

// Exists reports whether an order with id is resting on either side.
func (b *OrderBook) Exists(id uint32) bool {
	return b.find(id) != nil
}

// VolumeAtLevel returns the total resting quantity at price on side, or 0
// when the level does not exist.
func (b *OrderBook) VolumeAtLevel(side Side, price uint16) uint32 {
	lvl := b.ladder(side).Find(price)
	if lvl == nil {
		return 0
	}
	return lvl.TotalQty
}

// RestOrder appends o to the tail of its level without matching. It is
// used to rebuild a book from a snapshot that was already matched.
func (b *OrderBook) RestOrder(o Order) {
	if o.Quantity == 0 {
		return
	}
	b.rest(o)
}

// ---- matching ----

func (b *OrderBook) matchBuy(in *Order) uint32 {
	var fills uint32
	for in.Quantity > 0 {
		best := b.Asks.BestMin()
		if best == nil || best.Price > in.Price {
			break
		}
		fills += b.sweep(b.Asks, best, in)
	}
	return fills
}

func (b *OrderBook) matchSell(in *Order) uint32 {
	var fills uint32
	for in.Quantity > 0 {
		best := b.Bids.BestMax()
		if best == nil || best.Price < in.Price {
			break
		}
		fills += b.sweep(b.Bids, best, in)
	}
	return fills
}

// sweep fills in against lvl head to tail and prunes lvl once empty.
func (b *OrderBook) sweep(tree *RBTree, lvl *PriceLevel, in *Order) uint32 {
	var fills uint32
	for o := lvl.head; o != nil && in.Quantity > 0; {
		next := o.next
		trade := min(in.Quantity, o.Quantity)
		in.Quantity -= trade
		lvl.fill(o, trade)
		fills++

		if o.Quantity == 0 {
			b.unlink(lvl, o)
		}
		o = next
	}
	b.prune(tree, lvl)
	return fills
}

// ---- ladder maintenance ----

func (b *OrderBook) ladder(side Side) *RBTree {
	if side == Buy {
		return b.Bids
	}
	return b.Asks
}

func (b *OrderBook) rest(in Order) {
	o := b.alloc.Get()
	*o = Order{
		ID:       in.ID,
		Price:    in.Price,
		Quantity: in.Quantity,
		Side:     in.Side,
	}
	b.ladder(o.Side).GetOrCreate(o.Price).Enqueue(o)
	b.resting++
}

func (b *OrderBook) unlink(lvl *PriceLevel, o *Order) {
	lvl.Remove(o)
	b.resting--
	b.alloc.Put(o)
}

func (b *OrderBook) prune(tree *RBTree, lvl *PriceLevel) {
	if lvl.Empty() {
		tree.Delete(lvl.Price)
	}
}

// find scans bids best-first, then asks best-first, FIFO within a level.
func (b *OrderBook) find(id uint32) *Order {
	var hit *Order
	visit := func(lvl *PriceLevel) bool {
		for o := lvl.head; o != nil; o = o.next {
			if o.ID == id {
				hit = o
				return false
			}
		}
		return true
	}
	b.Bids.WalkDesc(visit)
	if hit != nil {
		return hit
	}
	b.Asks.WalkAsc(visit)
	return hit
}
