package snapshot

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"

	"matchcore/domain/orderbook"
)

// Load rests the orders of the snapshot at path into book and returns the
// snapshot sequence. A missing file yields (0, nil): snapshots are
// optional.
func Load(path string, book *orderbook.OrderBook) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	defer f.Close()

	var s Snapshot
	if err := gob.NewDecoder(f).Decode(&s); err != nil {
		return 0, fmt.Errorf("decode snapshot %s: %w", path, err)
	}

	for _, e := range s.Orders {
		book.RestOrder(orderbook.Order{
			ID:       e.ID,
			Side:     orderbook.Side(e.Side),
			Price:    e.Price,
			Quantity: e.Qty,
		})
	}
	return s.Seq, nil
}
