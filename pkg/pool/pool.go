// Package pool provides generic, type-safe object pooling for the engine's
// scratch allocations: reduction work buffers and dump builders. It wraps
// sync.Pool with a reset hook and usage statistics.
package pool

import (
	"sync"
	"sync/atomic"
)

// Pool is a typed object pool. It is safe for concurrent use, though the
// column engine itself is single-threaded; pooling exists to keep repeated
// reductions from re-allocating scratch space.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T)
	stats struct {
		allocated int64
		inUse     int64
		hits      int64
	}
}

// New creates a pool with a factory and an optional reset hook. The reset
// hook runs before an object re-enters the pool.
func New[T any](factory func() T, reset func(T)) *Pool[T] {
	p := &Pool[T]{reset: reset}
	p.pool.New = func() interface{} {
		atomic.AddInt64(&p.stats.allocated, 1)
		return factory()
	}
	return p
}

// Get retrieves an object, creating one when the pool is empty.
func (p *Pool[T]) Get() T {
	atomic.AddInt64(&p.stats.inUse, 1)
	obj := p.pool.Get().(T)
	atomic.AddInt64(&p.stats.hits, 1)
	return obj
}

// Put returns an object to the pool after resetting it.
func (p *Pool[T]) Put(obj T) {
	if p.reset != nil {
		p.reset(obj)
	}
	atomic.AddInt64(&p.stats.inUse, -1)
	p.pool.Put(obj)
}

// Stats returns the total allocations, objects currently checked out, and
// successful Get calls since creation.
func (p *Pool[T]) Stats() (allocated, inUse, hits int64) {
	return atomic.LoadInt64(&p.stats.allocated),
		atomic.LoadInt64(&p.stats.inUse),
		atomic.LoadInt64(&p.stats.hits)
}

// FloatSlice is the shared pool of float64 scratch slices used by median and
// other order-statistic reductions.
var FloatSlice = New(
	func() *[]float64 {
		s := make([]float64, 0, 1024)
		return &s
	},
	func(s *[]float64) { *s = (*s)[:0] },
)
