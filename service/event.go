package service

import (
	"time"

	"github.com/segmentio/encoding/json"

	"matchcore/domain/orderbook"
)

const eventVersion = 1

const (
	EventMatch  = "match"
	EventModify = "modify"
	EventCancel = "cancel"
)

// Event is the outcome of one write command as published to the broker.
type Event struct {
	V     int    `json:"v"`
	Type  string `json:"type"`
	Seq   uint64 `json:"seq"`
	ID    uint32 `json:"id"`
	Side  string `json:"side,omitempty"`
	Price uint16 `json:"price,omitempty"`
	Qty   uint16 `json:"qty"`
	// Fills and Rested are set for match events.
	Fills  uint32 `json:"fills"`
	Rested uint16 `json:"rested"`
	// Found is set for modify and cancel events.
	Found bool  `json:"found"`
	TS    int64 `json:"ts"`
}

func matchEvent(seq uint64, o orderbook.Order, fills uint32, rested uint16) Event {
	return Event{
		V:      eventVersion,
		Type:   EventMatch,
		Seq:    seq,
		ID:     o.ID,
		Side:   o.Side.String(),
		Price:  o.Price,
		Qty:    o.Quantity,
		Fills:  fills,
		Rested: rested,
		TS:     time.Now().UnixNano(),
	}
}

func modifyEvent(typ string, seq uint64, id uint32, qty uint16, found bool) Event {
	return Event{
		V:     eventVersion,
		Type:  typ,
		Seq:   seq,
		ID:    id,
		Qty:   qty,
		Found: found,
		TS:    time.Now().UnixNano(),
	}
}

func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

func UnmarshalEvent(b []byte) (Event, error) {
	var e Event
	err := json.Unmarshal(b, &e)
	return e, err
}
