package entry

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

type Config struct {
	Dir             string
	SegmentSize     int64
	SegmentDuration time.Duration
	// SyncEveryWrite fsyncs after each Append.
	SyncEveryWrite bool
}

type WAL struct {
	mu sync.Mutex

	dir        string
	segSize    int64
	segDur     time.Duration
	syncWrites bool

	current    *segment
	lastRotate time.Time
	closed     bool
}

var ErrClosed = errors.New("wal: closed")

// Open creates dir if needed and resumes appending to its newest segment.
// A torn frame left at the tail of that segment by a crash is cut off.
func Open(cfg Config) (*WAL, error) {
	if cfg.SegmentSize <= 0 {
		cfg.SegmentSize = 2 << 20
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, err
	}

	refs, err := listSegments(cfg.Dir)
	if err != nil {
		return nil, err
	}

	index := 0
	if len(refs) > 0 {
		last := refs[len(refs)-1]
		index = last.index
		if err := repairTail(last.path); err != nil {
			return nil, err
		}
	}

	seg, err := openSegment(cfg.Dir, index)
	if err != nil {
		return nil, err
	}

	return &WAL{
		dir:        cfg.Dir,
		segSize:    cfg.SegmentSize,
		segDur:     cfg.SegmentDuration,
		syncWrites: cfg.SyncEveryWrite,
		current:    seg,
		lastRotate: time.Now(),
	}, nil
}

func repairTail(path string) error {
	_, good, err := scanSegment(path, nil)
	if err == nil {
		return nil
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("open %s: %w", path, err)
	}
	return os.Truncate(path, good)
}

func (w *WAL) Append(r *Record) error {
	buf := encodeFrame(r)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}

	if err := w.current.append(buf); err != nil {
		return err
	}
	if w.syncWrites {
		if err := w.current.sync(); err != nil {
			return err
		}
	}

	if w.current.offset >= w.segSize ||
		(w.segDur > 0 && time.Since(w.lastRotate) >= w.segDur) {
		return w.rotate()
	}
	return nil
}

func (w *WAL) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	return w.current.sync()
}

func (w *WAL) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.current.sync(); err != nil {
		_ = w.current.close()
		return err
	}
	return w.current.close()
}

// Dir returns the directory holding the segments.
func (w *WAL) Dir() string {
	return w.dir
}

func (w *WAL) rotate() error {
	if err := w.current.sync(); err != nil {
		return err
	}
	_ = w.current.close()

	seg, err := openSegment(w.dir, w.current.index+1)
	if err != nil {
		return err
	}

	w.current = seg
	w.lastRotate = time.Now()
	return nil
}

// TruncateBefore deletes closed segments whose records all have
// seq <= seq. The active segment is never removed.
func (w *WAL) TruncateBefore(seq uint64) (removed int, err error) {
	w.mu.Lock()
	active := w.current.index
	w.mu.Unlock()

	refs, err := listSegments(w.dir)
	if err != nil {
		return 0, err
	}

	for _, ref := range refs {
		if ref.index >= active {
			continue
		}
		maxSeq, err := maxSeqInSegment(ref.path)
		if err != nil {
			continue
		}
		if maxSeq <= seq {
			if err := os.Remove(ref.path); err != nil {
				return removed, err
			}
			removed++
		}
	}
	return removed, nil
}
