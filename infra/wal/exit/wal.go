package exit

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
)

// -------------------- State --------------------

type ExitState uint8

const (
	StateNew ExitState = iota
	StateSent
	StateAcked
	StateFailed
)

func (s ExitState) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateSent:
		return "SENT"
	case StateAcked:
		return "ACKED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// -------------------- Record --------------------

// ExitRecord is one outbound event keyed by the command sequence that
// produced it.
type ExitRecord struct {
	Seq         uint64
	State       ExitState
	Retries     uint32
	LastAttempt int64
	Payload     []byte
}

var (
	ErrInvalidRecord = errors.New("exit wal: invalid record")
	ErrNotFound      = errors.New("exit wal: record not found")
)

const recordHeader = 1 + 4 + 8

// binary encoding: [state:1][retries:4][lastAttempt:8][payload]
func encodeRecord(r *ExitRecord) []byte {
	buf := make([]byte, recordHeader+len(r.Payload))
	buf[0] = byte(r.State)
	binary.BigEndian.PutUint32(buf[1:5], r.Retries)
	binary.BigEndian.PutUint64(buf[5:13], uint64(r.LastAttempt))
	copy(buf[recordHeader:], r.Payload)
	return buf
}

func decodeRecord(seq uint64, b []byte) (*ExitRecord, error) {
	if len(b) < recordHeader {
		return nil, fmt.Errorf("%w: length %d", ErrInvalidRecord, len(b))
	}
	payload := make([]byte, len(b)-recordHeader)
	copy(payload, b[recordHeader:])
	return &ExitRecord{
		Seq:         seq,
		State:       ExitState(b[0]),
		Retries:     binary.BigEndian.Uint32(b[1:5]),
		LastAttempt: int64(binary.BigEndian.Uint64(b[5:13])),
		Payload:     payload,
	}, nil
}

// -------------------- WAL --------------------

// ExitWAL is a durable outbox backed by pebble.
type ExitWAL struct {
	db *pebble.DB
}

func Open(dir string) (*ExitWAL, error) {
	return open(dir, &pebble.Options{})
}

// OpenMem opens an outbox that lives only in memory.
func OpenMem() (*ExitWAL, error) {
	return open("outbox", &pebble.Options{FS: vfs.NewMem()})
}

func open(dir string, opts *pebble.Options) (*ExitWAL, error) {
	db, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, fmt.Errorf("open exit wal: %w", err)
	}
	return &ExitWAL{db: db}, nil
}

func (w *ExitWAL) Close() error {
	return w.db.Close()
}

// -------------------- API --------------------

// PutNew stores a fresh event for seq.
func (w *ExitWAL) PutNew(seq uint64, payload []byte) error {
	rec := &ExitRecord{State: StateNew, Payload: payload}
	return w.db.Set(keyFor(seq), encodeRecord(rec), pebble.Sync)
}

func (w *ExitWAL) MarkSent(seq uint64) error {
	return w.update(seq, func(r *ExitRecord) { r.State = StateSent })
}

func (w *ExitWAL) MarkAcked(seq uint64) error {
	return w.update(seq, func(r *ExitRecord) { r.State = StateAcked })
}

// MarkFailed records a failed delivery attempt.
func (w *ExitWAL) MarkFailed(seq uint64) error {
	return w.update(seq, func(r *ExitRecord) {
		r.State = StateFailed
		r.Retries++
	})
}

func (w *ExitWAL) update(seq uint64, fn func(*ExitRecord)) error {
	rec, err := w.Get(seq)
	if err != nil {
		return err
	}
	fn(rec)
	rec.LastAttempt = time.Now().UnixNano()
	return w.db.Set(keyFor(seq), encodeRecord(rec), pebble.Sync)
}

// Get returns the current record for seq.
func (w *ExitWAL) Get(seq uint64) (*ExitRecord, error) {
	val, closer, err := w.db.Get(keyFor(seq))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, fmt.Errorf("seq %d: %w", seq, ErrNotFound)
		}
		return nil, err
	}
	defer closer.Close()

	return decodeRecord(seq, val)
}

// -------------------- Scan --------------------

// ScanPending visits up to limit records not yet acknowledged, oldest
// first. SENT records are included: a crash between send and ack must
// lead to a resend. limit <= 0 means no limit.
func (w *ExitWAL) ScanPending(limit int, fn func(*ExitRecord) error) error {
	n := 0
	return w.scan(nil, func(rec *ExitRecord) (bool, error) {
		if rec.State == StateAcked {
			return true, nil
		}
		if err := fn(rec); err != nil {
			return false, err
		}
		n++
		return limit <= 0 || n < limit, nil
	})
}

// TruncateAckedUpTo deletes acknowledged records with seq <= seq.
func (w *ExitWAL) TruncateAckedUpTo(seq uint64) (int, error) {
	batch := w.db.NewBatch()
	defer batch.Close()

	deleted := 0
	err := w.scan(keyFor(seq+1), func(rec *ExitRecord) (bool, error) {
		if rec.State != StateAcked {
			return true, nil
		}
		deleted++
		return true, batch.Delete(keyFor(rec.Seq), nil)
	})
	if err != nil {
		return 0, err
	}
	if deleted == 0 {
		return 0, nil
	}
	return deleted, batch.Commit(pebble.Sync)
}

// Counts returns the number of records per state.
func (w *ExitWAL) Counts() (map[ExitState]int, error) {
	out := make(map[ExitState]int, 4)
	err := w.scan(nil, func(rec *ExitRecord) (bool, error) {
		out[rec.State]++
		return true, nil
	})
	return out, err
}

func (w *ExitWAL) scan(upper []byte, fn func(*ExitRecord) (bool, error)) error {
	if upper == nil {
		upper = []byte(keyPrefix + "~")
	}
	iter, err := w.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix),
		UpperBound: upper,
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		seq, err := parseKey(iter.Key())
		if err != nil {
			return err
		}
		rec, err := decodeRecord(seq, iter.Value())
		if err != nil {
			return err
		}
		more, err := fn(rec)
		if err != nil {
			return err
		}
		if !more {
			break
		}
	}
	return iter.Error()
}

// -------------------- Helpers --------------------

const keyPrefix = "event/"

func keyFor(seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", keyPrefix, seq))
}

func parseKey(b []byte) (uint64, error) {
	if len(b) <= len(keyPrefix) {
		return 0, fmt.Errorf("%w: key %q", ErrInvalidRecord, b)
	}
	return strconv.ParseUint(string(b[len(keyPrefix):]), 10, 64)
}
