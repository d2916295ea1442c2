package service

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"matchcore/domain/orderbook"
	entrywal "matchcore/infra/wal/entry"
)

var ErrBadCommand = errors.New("service: bad command")

// Command is the journalled form of a write. Payloads use the protobuf
// wire format:
//
//	1: id (varint)  2: price (varint)  3: quantity (varint)  4: side (varint)
//
// Modify records carry only fields 1 and 3.
type Command struct {
	Type     entrywal.RecordType
	Order    orderbook.Order
	ID       uint32
	Quantity uint16
}

const (
	fieldID       protowire.Number = 1
	fieldPrice    protowire.Number = 2
	fieldQuantity protowire.Number = 3
	fieldSide     protowire.Number = 4
)

func encodeMatch(o orderbook.Order) []byte {
	b := make([]byte, 0, 16)
	b = appendVarint(b, fieldID, uint64(o.ID))
	b = appendVarint(b, fieldPrice, uint64(o.Price))
	b = appendVarint(b, fieldQuantity, uint64(o.Quantity))
	b = appendVarint(b, fieldSide, uint64(o.Side))
	return b
}

func encodeModify(id uint32, qty uint16) []byte {
	b := make([]byte, 0, 8)
	b = appendVarint(b, fieldID, uint64(id))
	b = appendVarint(b, fieldQuantity, uint64(qty))
	return b
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

// DecodeCommand parses a journal record back into a Command.
func DecodeCommand(rec *entrywal.Record) (Command, error) {
	var id, price, qty, side uint64
	b := rec.Data
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Command{}, fmt.Errorf("%w: %v", ErrBadCommand, protowire.ParseError(n))
		}
		b = b[n:]

		if typ != protowire.VarintType {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return Command{}, fmt.Errorf("%w: %v", ErrBadCommand, protowire.ParseError(n))
			}
			b = b[n:]
			continue
		}

		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return Command{}, fmt.Errorf("%w: %v", ErrBadCommand, protowire.ParseError(n))
		}
		b = b[n:]

		switch num {
		case fieldID:
			id = v
		case fieldPrice:
			price = v
		case fieldQuantity:
			qty = v
		case fieldSide:
			side = v
		}
	}

	if id > math.MaxUint32 || price > math.MaxUint16 || qty > math.MaxUint16 {
		return Command{}, fmt.Errorf("%w: field out of range", ErrBadCommand)
	}

	switch rec.Type {
	case entrywal.RecordMatch:
		if side > uint64(orderbook.Sell) {
			return Command{}, fmt.Errorf("%w: side %d", ErrBadCommand, side)
		}
		return Command{
			Type: rec.Type,
			Order: orderbook.Order{
				ID:       uint32(id),
				Price:    uint16(price),
				Quantity: uint16(qty),
				Side:     orderbook.Side(side),
			},
		}, nil
	case entrywal.RecordModify:
		return Command{Type: rec.Type, ID: uint32(id), Quantity: uint16(qty)}, nil
	default:
		return Command{}, fmt.Errorf("%w: record type %d", ErrBadCommand, rec.Type)
	}
}

// apply runs cmd against book without journalling it.
func (c Command) apply(book *orderbook.OrderBook) {
	switch c.Type {
	case entrywal.RecordMatch:
		book.Match(c.Order)
	case entrywal.RecordModify:
		book.Modify(c.ID, c.Quantity)
	}
}
