package generic

import "sync"

// Pool is a typed wrapper around sync.Pool.
type Pool[T any] struct {
	pool sync.Pool
}

// NewPool creates a pool that builds new values with generate.
func NewPool[T any](generate func() T) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{
			New: func() any {
				return generate()
			},
		},
	}
}

// NewHotPool creates a pool pre-populated with hotSize values, avoiding
// first-use allocation bursts on hot paths such as batch encoding.
func NewHotPool[T any](generate func() T, hotSize int) *Pool[T] {
	p := NewPool[T](generate)
	for i := 0; i < hotSize; i++ {
		p.pool.Put(generate())
	}
	return p
}

// Get takes a value from the pool, building one if necessary.
func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

// Put returns a value to the pool. The caller must not use it afterwards.
func (p *Pool[T]) Put(value T) {
	p.pool.Put(value)
}
