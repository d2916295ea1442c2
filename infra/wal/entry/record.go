package entry

import "time"

type RecordType uint8

const (
	RecordMatch RecordType = iota + 1
	RecordModify
)

func (t RecordType) String() string {
	switch t {
	case RecordMatch:
		return "MATCH"
	case RecordModify:
		return "MODIFY"
	default:
		return "UNKNOWN"
	}
}

// Record is one journalled command. Data is opaque to the WAL.
type Record struct {
	Type RecordType
	Seq  uint64
	Time int64
	Data []byte
}

func NewRecord(t RecordType, seq uint64, data []byte) *Record {
	return &Record{
		Type: t,
		Seq:  seq,
		Time: time.Now().UnixNano(),
		Data: data,
	}
}
