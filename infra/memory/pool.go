package memory

import (
	"sync"
	"sync/atomic"
)

// Pool is a typed object pool backed by sync.Pool.
type Pool[T any] struct {
	p     *sync.Pool
	reset func(*T)

	gets atomic.Uint64
	puts atomic.Uint64
}

// NewPool builds a pool that creates values with ctor. reset, when not
// nil, runs on every value handed back through Put.
func NewPool[T any](ctor func() *T, reset func(*T)) *Pool[T] {
	return &Pool[T]{
		p: &sync.Pool{
			New: func() any { return ctor() },
		},
		reset: reset,
	}
}

func (p *Pool[T]) Get() *T {
	p.gets.Add(1)
	return p.p.Get().(*T)
}

func (p *Pool[T]) Put(v *T) {
	if v == nil {
		return
	}
	if p.reset != nil {
		p.reset(v)
	}
	p.puts.Add(1)
	p.p.Put(v)
}

// Outstanding is the number of values taken and not yet returned.
func (p *Pool[T]) Outstanding() int64 {
	return int64(p.gets.Load()) - int64(p.puts.Load())
}
