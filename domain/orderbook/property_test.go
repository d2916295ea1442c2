package orderbook

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// naiveBook is a slice-backed model of the book used to cross-check
// matching results. Orders carry an arrival stamp for time priority.
type naiveBook struct {
	orders []naiveOrder
	clock  int
}

type naiveOrder struct {
	Order
	at int
}

func (m *naiveBook) sorted(side Side) []*naiveOrder {
	var out []*naiveOrder
	for i := range m.orders {
		if m.orders[i].Side == side {
			out = append(out, &m.orders[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Price != out[j].Price {
			if side == Buy {
				return out[i].Price > out[j].Price
			}
			return out[i].Price < out[j].Price
		}
		return out[i].at < out[j].at
	})
	return out
}

func (m *naiveBook) match(in Order) (fills uint32, traded uint32) {
	if in.Quantity == 0 {
		return 0, 0
	}
	for _, r := range m.sorted(in.Side.Opposite()) {
		if in.Quantity == 0 {
			break
		}
		if in.Side == Buy && r.Price > in.Price || in.Side == Sell && r.Price < in.Price {
			break
		}
		q := min(in.Quantity, r.Quantity)
		in.Quantity -= q
		r.Quantity -= q
		traded += uint32(q)
		fills++
	}
	m.compact()
	if in.Quantity > 0 {
		m.clock++
		m.orders = append(m.orders, naiveOrder{Order: in, at: m.clock})
	}
	return fills, traded
}

func (m *naiveBook) modify(id uint32, qty uint16) bool {
	for _, side := range []Side{Buy, Sell} {
		for _, r := range m.sorted(side) {
			if r.ID == id {
				r.Quantity = qty
				m.compact()
				return true
			}
		}
	}
	return false
}

func (m *naiveBook) compact() {
	kept := m.orders[:0]
	for _, o := range m.orders {
		if o.Quantity > 0 {
			kept = append(kept, o)
		}
	}
	m.orders = kept
}

func (m *naiveBook) walk() []Order {
	var out []Order
	for _, side := range []Side{Buy, Sell} {
		for _, r := range m.sorted(side) {
			out = append(out, r.Order)
		}
	}
	return out
}

func (m *naiveBook) available(in Order) uint32 {
	var total uint32
	for _, r := range m.sorted(in.Side.Opposite()) {
		if in.Side == Buy && r.Price > in.Price || in.Side == Sell && r.Price < in.Price {
			break
		}
		total += uint32(r.Quantity)
	}
	return total
}

func restingTotal(b *OrderBook) uint64 {
	var total uint64
	b.Walk(func(o Order) { total += uint64(o.Quantity) })
	return total
}

func TestMatchAgainstModel(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		b := New()
		m := &naiveBook{}
		nextID := uint32(1)

		for step := 0; step < 400; step++ {
			switch op := rng.Intn(10); {
			case op < 7:
				side := Buy
				if rng.Intn(2) == 0 {
					side = Sell
				}
				in := Order{
					ID:       nextID,
					Price:    uint16(90 + rng.Intn(21)),
					Quantity: uint16(rng.Intn(20)),
					Side:     side,
				}
				nextID++

				before := restingTotal(b)
				want := min(uint32(in.Quantity), m.available(in))
				fills, traded := m.match(in)
				require.Equal(t, want, traded, "seed %d step %d", seed, step)

				got := b.Match(in)
				require.Equal(t, fills, got, "seed %d step %d fills", seed, step)

				// quantity conservation: every traded unit leaves both sides
				rested := uint64(0)
				if uint32(in.Quantity) > traded {
					rested = uint64(uint32(in.Quantity) - traded)
				}
				require.Equal(t, before-uint64(traded)+rested, restingTotal(b))
			default:
				if nextID == 1 {
					continue
				}
				id := uint32(1 + rng.Intn(int(nextID)))
				qty := uint16(0)
				if rng.Intn(2) == 0 {
					qty = uint16(1 + rng.Intn(15))
				}
				require.Equal(t, m.modify(id, qty), b.Modify(id, qty), "seed %d step %d modify", seed, step)
			}

			var got []Order
			b.Walk(func(o Order) { got = append(got, o) })
			want := m.walk()
			require.Equal(t, len(want), len(got), "seed %d step %d", seed, step)
			for i := range want {
				require.Equal(t, want[i], got[i], "seed %d step %d idx %d", seed, step, i)
			}
			checkInvariants(t, b)
		}
	}
}

func TestPricePriorityAcrossLevels(t *testing.T) {
	b := New()
	prices := []uint16{105, 101, 103, 102, 104}
	for i, p := range prices {
		b.Match(Order{ID: uint32(i + 1), Price: p, Quantity: 1, Side: Sell})
	}
	// each unit buy must take the cheapest remaining ask
	for _, want := range []uint16{101, 102, 103, 104, 105} {
		ask, ok := b.BestAsk()
		require.True(t, ok)
		require.Equal(t, want, ask)
		require.Equal(t, uint32(1), b.Match(Order{ID: 99, Price: 200, Quantity: 1, Side: Buy}))
	}
	require.Equal(t, 0, b.Len())
}
