package entry

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
)

// Frame:
// [type:1][seq:8][time:8][len:4][payload][crc:4]
const (
	headerSize  = 1 + 8 + 8 + 4
	trailerSize = 4

	// maxPayload guards replay against a corrupted length field.
	maxPayload = 16 << 20
)

var ErrCorruptRecord = errors.New("wal: corrupted record")

func encodeFrame(r *Record) []byte {
	payloadLen := uint32(len(r.Data))
	buf := make([]byte, headerSize+payloadLen+trailerSize)

	buf[0] = byte(r.Type)
	binary.BigEndian.PutUint64(buf[1:9], r.Seq)
	binary.BigEndian.PutUint64(buf[9:17], uint64(r.Time))
	binary.BigEndian.PutUint32(buf[17:21], payloadLen)
	copy(buf[headerSize:], r.Data)

	crc := crc32.ChecksumIEEE(buf[:headerSize+payloadLen])
	binary.BigEndian.PutUint32(buf[headerSize+payloadLen:], crc)
	return buf
}

// readFrame returns io.EOF on a clean end of segment and
// io.ErrUnexpectedEOF when the segment ends inside a frame.
func readFrame(r io.Reader) (*Record, int64, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, 0, err
	}

	l := binary.BigEndian.Uint32(header[17:21])
	if l > maxPayload {
		return nil, 0, fmt.Errorf("%w: payload length %d", ErrCorruptRecord, l)
	}

	body := make([]byte, l+trailerSize)
	if _, err := io.ReadFull(r, body); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, 0, err
	}

	payload := body[:l]
	want := binary.BigEndian.Uint32(body[l:])
	h := crc32.NewIEEE()
	h.Write(header)
	h.Write(payload)
	if h.Sum32() != want {
		return nil, 0, ErrCorruptRecord
	}

	return &Record{
		Type: RecordType(header[0]),
		Seq:  binary.BigEndian.Uint64(header[1:9]),
		Time: int64(binary.BigEndian.Uint64(header[9:17])),
		Data: payload,
	}, int64(headerSize + int(l) + trailerSize), nil
}
