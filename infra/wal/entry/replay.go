package entry

import (
	"errors"
	"fmt"
	"io"
)

type ReplayHandler func(*Record) error

// Replay feeds every record of dir to fn in sequence order and returns the
// last sequence seen. A torn frame at the end of the newest segment is
// ignored; anywhere else it is corruption.
func Replay(dir string, fn ReplayHandler) (lastSeq uint64, err error) {
	refs, err := listSegments(dir)
	if err != nil {
		return 0, err
	}

	for i, ref := range refs {
		_, _, err := scanSegment(ref.path, func(rec *Record) error {
			if rec.Seq <= lastSeq {
				return fmt.Errorf("%w: non-monotonic seq %d after %d", ErrCorruptRecord, rec.Seq, lastSeq)
			}
			lastSeq = rec.Seq
			return fn(rec)
		})
		if err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) && i == len(refs)-1 {
				return lastSeq, nil
			}
			return lastSeq, fmt.Errorf("replay %s: %w", ref.path, err)
		}
	}
	return lastSeq, nil
}
