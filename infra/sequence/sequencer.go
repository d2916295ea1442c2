package sequence

import "sync/atomic"

// Sequencer hands out the journal sequence numbers of commands.
// Zero is never issued.
type Sequencer struct {
	last atomic.Uint64
}

// New returns a sequencer whose next value is start+1.
func New(start uint64) *Sequencer {
	s := &Sequencer{}
	s.last.Store(start)
	return s
}

func (s *Sequencer) Next() uint64 {
	return s.last.Add(1)
}

// Current returns the last issued sequence.
func (s *Sequencer) Current() uint64 {
	return s.last.Load()
}

// Reset moves the sequencer to v. Only used once replay has finished.
func (s *Sequencer) Reset(v uint64) {
	s.last.Store(v)
}
