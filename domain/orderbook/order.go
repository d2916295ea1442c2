package orderbook

import "fmt"

type Side uint8

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return fmt.Sprintf("Side(%d)", uint8(s))
	}
}

// Opposite returns the side an order of s matches against.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// Order is a resting or incoming limit order. Quantity is the remaining
// unfilled amount.
type Order struct {
	ID       uint32
	Price    uint16
	Quantity uint16
	Side     Side

	level *PriceLevel
	next  *Order
	prev  *Order
}

// Next returns the order queued behind o at the same price.
func (o *Order) Next() *Order {
	return o.next
}

// snapshot copies the public fields, dropping queue links.
func (o *Order) snapshot() Order {
	return Order{
		ID:       o.ID,
		Price:    o.Price,
		Quantity: o.Quantity,
		Side:     o.Side,
	}
}

func (o Order) String() string {
	return fmt.Sprintf("Order{id=%d %s %d@%d}", o.ID, o.Side, o.Quantity, o.Price)
}
