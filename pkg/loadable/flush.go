package loadable

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Source supplies initializers to FlushAll. Take returns everything queued
// since the previous call, or nothing once the source is drained.
type Source interface {
	Take() []Initializer
}

// FlushAll drains src to a fixed point: it takes every queued initializer,
// runs them concurrently and waits, then takes again, because running an
// initializer can declare further loadables. It stops when a pass finds
// nothing new, or at the first error.
//
// Termination relies on initializers being idempotent.
func FlushAll(ctx context.Context, src Source) error {
	for {
		batch := src.Take()
		if len(batch) == 0 {
			return nil
		}

		g, gctx := errgroup.WithContext(ctx)
		for _, init := range batch {
			init := init
			g.Go(func() error {
				return init(gctx)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
}

// Queue is a Source backed by a slice. Push may be called while a flush is
// running; pushed initializers run in the next pass.
type Queue struct {
	mu    sync.Mutex
	items []Initializer
}

// NewQueue creates a queue holding inits.
func NewQueue(inits ...Initializer) *Queue {
	return &Queue{items: append([]Initializer(nil), inits...)}
}

// Push appends initializers.
func (q *Queue) Push(inits ...Initializer) {
	q.mu.Lock()
	q.items = append(q.items, inits...)
	q.mu.Unlock()
}

// Len returns the number of queued initializers.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Take implements Source by emptying the queue.
func (q *Queue) Take() []Initializer {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}
