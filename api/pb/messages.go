package pb

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

type Side int32

const (
	Side_SIDE_UNSPECIFIED Side = 0
	Side_SIDE_BUY         Side = 1
	Side_SIDE_SELL        Side = 2
)

func (s Side) String() string {
	switch s {
	case Side_SIDE_BUY:
		return "SIDE_BUY"
	case Side_SIDE_SELL:
		return "SIDE_SELL"
	case Side_SIDE_UNSPECIFIED:
		return "SIDE_UNSPECIFIED"
	default:
		return fmt.Sprintf("Side(%d)", int32(s))
	}
}

// -------------------- Order --------------------

type Order struct {
	Id       uint32
	Price    uint32
	Quantity uint32
	Side     Side
}

func (m *Order) Marshal() ([]byte, error) {
	var b []byte
	b = appendUint(b, 1, uint64(m.Id))
	b = appendUint(b, 2, uint64(m.Price))
	b = appendUint(b, 3, uint64(m.Quantity))
	b = appendUint(b, 4, uint64(m.Side))
	return b, nil
}

func (m *Order) Unmarshal(b []byte) error {
	*m = Order{}
	return consumeFields(b, func(num protowire.Number, v uint64, _ []byte) error {
		switch num {
		case 1:
			m.Id = uint32(v)
		case 2:
			m.Price = uint32(v)
		case 3:
			m.Quantity = uint32(v)
		case 4:
			m.Side = Side(v)
		}
		return nil
	})
}

// -------------------- Match --------------------

type MatchRequest struct {
	Order *Order
}

func (m *MatchRequest) Marshal() ([]byte, error) {
	if m.Order == nil {
		return nil, nil
	}
	o, _ := m.Order.Marshal()
	return appendEmbedded(nil, 1, o), nil
}

func (m *MatchRequest) Unmarshal(b []byte) error {
	*m = MatchRequest{}
	return consumeFields(b, func(num protowire.Number, _ uint64, raw []byte) error {
		if num == 1 && raw != nil {
			m.Order = new(Order)
			return m.Order.Unmarshal(raw)
		}
		return nil
	})
}

type MatchResponse struct {
	Seq    uint64
	Fills  uint32
	Rested uint32
}

func (m *MatchResponse) Marshal() ([]byte, error) {
	var b []byte
	b = appendUint(b, 1, m.Seq)
	b = appendUint(b, 2, uint64(m.Fills))
	b = appendUint(b, 3, uint64(m.Rested))
	return b, nil
}

func (m *MatchResponse) Unmarshal(b []byte) error {
	*m = MatchResponse{}
	return consumeFields(b, func(num protowire.Number, v uint64, _ []byte) error {
		switch num {
		case 1:
			m.Seq = v
		case 2:
			m.Fills = uint32(v)
		case 3:
			m.Rested = uint32(v)
		}
		return nil
	})
}

// -------------------- Modify / Cancel --------------------

type ModifyRequest struct {
	Id       uint32
	Quantity uint32
}

func (m *ModifyRequest) Marshal() ([]byte, error) {
	var b []byte
	b = appendUint(b, 1, uint64(m.Id))
	b = appendUint(b, 2, uint64(m.Quantity))
	return b, nil
}

func (m *ModifyRequest) Unmarshal(b []byte) error {
	*m = ModifyRequest{}
	return consumeFields(b, func(num protowire.Number, v uint64, _ []byte) error {
		switch num {
		case 1:
			m.Id = uint32(v)
		case 2:
			m.Quantity = uint32(v)
		}
		return nil
	})
}

// ModifyResponse is shared by Modify and Cancel.
type ModifyResponse struct {
	Found bool
}

func (m *ModifyResponse) Marshal() ([]byte, error) {
	return appendBool(nil, 1, m.Found), nil
}

func (m *ModifyResponse) Unmarshal(b []byte) error {
	*m = ModifyResponse{}
	return consumeFields(b, func(num protowire.Number, v uint64, _ []byte) error {
		if num == 1 {
			m.Found = v != 0
		}
		return nil
	})
}

// OrderIdRequest carries a bare order id (Cancel, Lookup, Exists).
type OrderIdRequest struct {
	Id uint32
}

func (m *OrderIdRequest) Marshal() ([]byte, error) {
	return appendUint(nil, 1, uint64(m.Id)), nil
}

func (m *OrderIdRequest) Unmarshal(b []byte) error {
	*m = OrderIdRequest{}
	return consumeFields(b, func(num protowire.Number, v uint64, _ []byte) error {
		if num == 1 {
			m.Id = uint32(v)
		}
		return nil
	})
}

// -------------------- Lookup / Exists --------------------

type LookupResponse struct {
	Order *Order
}

func (m *LookupResponse) Marshal() ([]byte, error) {
	if m.Order == nil {
		return nil, nil
	}
	o, _ := m.Order.Marshal()
	return appendEmbedded(nil, 1, o), nil
}

func (m *LookupResponse) Unmarshal(b []byte) error {
	*m = LookupResponse{}
	return consumeFields(b, func(num protowire.Number, _ uint64, raw []byte) error {
		if num == 1 && raw != nil {
			m.Order = new(Order)
			return m.Order.Unmarshal(raw)
		}
		return nil
	})
}

type ExistsResponse struct {
	Exists bool
}

func (m *ExistsResponse) Marshal() ([]byte, error) {
	return appendBool(nil, 1, m.Exists), nil
}

func (m *ExistsResponse) Unmarshal(b []byte) error {
	*m = ExistsResponse{}
	return consumeFields(b, func(num protowire.Number, v uint64, _ []byte) error {
		if num == 1 {
			m.Exists = v != 0
		}
		return nil
	})
}

// -------------------- Volume --------------------

type VolumeRequest struct {
	Side  Side
	Price uint32
}

func (m *VolumeRequest) Marshal() ([]byte, error) {
	var b []byte
	b = appendUint(b, 1, uint64(m.Side))
	b = appendUint(b, 2, uint64(m.Price))
	return b, nil
}

func (m *VolumeRequest) Unmarshal(b []byte) error {
	*m = VolumeRequest{}
	return consumeFields(b, func(num protowire.Number, v uint64, _ []byte) error {
		switch num {
		case 1:
			m.Side = Side(v)
		case 2:
			m.Price = uint32(v)
		}
		return nil
	})
}

type VolumeResponse struct {
	Volume uint32
}

func (m *VolumeResponse) Marshal() ([]byte, error) {
	return appendUint(nil, 1, uint64(m.Volume)), nil
}

func (m *VolumeResponse) Unmarshal(b []byte) error {
	*m = VolumeResponse{}
	return consumeFields(b, func(num protowire.Number, v uint64, _ []byte) error {
		if num == 1 {
			m.Volume = uint32(v)
		}
		return nil
	})
}

// -------------------- Depth --------------------

type DepthRequest struct {
	Side   Side
	Levels uint32
}

func (m *DepthRequest) Marshal() ([]byte, error) {
	var b []byte
	b = appendUint(b, 1, uint64(m.Side))
	b = appendUint(b, 2, uint64(m.Levels))
	return b, nil
}

func (m *DepthRequest) Unmarshal(b []byte) error {
	*m = DepthRequest{}
	return consumeFields(b, func(num protowire.Number, v uint64, _ []byte) error {
		switch num {
		case 1:
			m.Side = Side(v)
		case 2:
			m.Levels = uint32(v)
		}
		return nil
	})
}

type Level struct {
	Price    uint32
	Quantity uint32
	Orders   uint32
}

func (m *Level) Marshal() ([]byte, error) {
	var b []byte
	b = appendUint(b, 1, uint64(m.Price))
	b = appendUint(b, 2, uint64(m.Quantity))
	b = appendUint(b, 3, uint64(m.Orders))
	return b, nil
}

func (m *Level) Unmarshal(b []byte) error {
	*m = Level{}
	return consumeFields(b, func(num protowire.Number, v uint64, _ []byte) error {
		switch num {
		case 1:
			m.Price = uint32(v)
		case 2:
			m.Quantity = uint32(v)
		case 3:
			m.Orders = uint32(v)
		}
		return nil
	})
}

type DepthResponse struct {
	Levels []*Level
}

func (m *DepthResponse) Marshal() ([]byte, error) {
	var b []byte
	for _, l := range m.Levels {
		lb, _ := l.Marshal()
		b = appendEmbedded(b, 1, lb)
	}
	return b, nil
}

func (m *DepthResponse) Unmarshal(b []byte) error {
	*m = DepthResponse{}
	return consumeFields(b, func(num protowire.Number, _ uint64, raw []byte) error {
		if num != 1 || raw == nil {
			return nil
		}
		l := new(Level)
		if err := l.Unmarshal(raw); err != nil {
			return err
		}
		m.Levels = append(m.Levels, l)
		return nil
	})
}
