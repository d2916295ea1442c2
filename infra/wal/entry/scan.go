package entry

import (
	"bufio"
	"errors"
	"io"
	"os"
)

// scanSegment walks the frames of one segment. It returns the highest
// sequence seen and the offset just past the last intact frame.
func scanSegment(path string, fn func(*Record) error) (maxSeq uint64, good int64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	for {
		rec, n, err := readFrame(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return maxSeq, good, nil
			}
			return maxSeq, good, err
		}
		if rec.Seq > maxSeq {
			maxSeq = rec.Seq
		}
		if fn != nil {
			if err := fn(rec); err != nil {
				return maxSeq, good, err
			}
		}
		good += n
	}
}

// maxSeqInSegment is used for snapshot-based truncation.
func maxSeqInSegment(path string) (uint64, error) {
	max, _, err := scanSegment(path, nil)
	return max, err
}
