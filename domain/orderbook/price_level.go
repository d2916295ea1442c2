package orderbook

import (
	"fmt"
	"strings"
)

// PriceLevel is a FIFO queue at a single price.
type PriceLevel struct {
	Price uint16

	head *Order
	tail *Order

	TotalQty   uint32
	OrderCount int
}

func (p *PriceLevel) Enqueue(o *Order) {
	o.level = p
	o.next = nil
	if p.head == nil {
		o.prev = nil
		p.head = o
		p.tail = o
	} else {
		p.tail.next = o
		o.prev = p.tail
		p.tail = o
	}
	p.TotalQty += uint32(o.Quantity)
	p.OrderCount++
}

// Remove unlinks o from the queue. o must belong to p.
func (p *PriceLevel) Remove(o *Order) {
	if o.prev != nil {
		o.prev.next = o.next
	} else {
		p.head = o.next
	}
	if o.next != nil {
		o.next.prev = o.prev
	} else {
		p.tail = o.prev
	}
	p.TotalQty -= uint32(o.Quantity)
	p.OrderCount--

	o.next = nil
	o.prev = nil
	o.level = nil
}

// fill takes qty from o in place, keeping TotalQty in step.
func (p *PriceLevel) fill(o *Order, qty uint16) {
	o.Quantity -= qty
	p.TotalQty -= uint32(qty)
}

// resize replaces the quantity of o without moving it in the queue.
func (p *PriceLevel) resize(o *Order, qty uint16) {
	p.TotalQty = p.TotalQty - uint32(o.Quantity) + uint32(qty)
	o.Quantity = qty
}

func (p *PriceLevel) Empty() bool {
	return p.head == nil
}

// Read-only helper
func (p *PriceLevel) Head() *Order {
	return p.head
}

func (p *PriceLevel) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d [qty=%d n=%d]:", p.Price, p.TotalQty, p.OrderCount)
	for o := p.head; o != nil; o = o.next {
		fmt.Fprintf(&sb, " %d:%d", o.ID, o.Quantity)
	}
	return sb.String()
}
