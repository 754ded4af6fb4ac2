package loadable

import (
	"context"
	"sync"
)

// Loader produces a module. It is called at most once per load, on its own
// goroutine, with a context that is never cancelled by the caller that
// triggered it.
type Loader[T any] func(ctx context.Context) (T, error)

// Snapshot is a point-in-time copy of a load's state.
type Snapshot[T any] struct {
	// Loading is true until the load settles.
	Loading bool

	// Loaded is the resolved module. Only meaningful when HasLoaded is true.
	Loaded T

	// HasLoaded reports whether Loaded holds a value.
	HasLoaded bool

	// Err is the load error, if any.
	Err error
}

// Future is the shared, observable result of a load.
type Future[T any] interface {
	// Snapshot returns the current state.
	Snapshot() Snapshot[T]

	// Done is closed once the load has settled.
	Done() <-chan struct{}

	// Wait blocks until the load settles or ctx is done.
	Wait(ctx context.Context) (T, error)

	// Subscribe registers fn to run once, after the load settles. If it has
	// already settled, fn runs before Subscribe returns. The returned
	// function removes the subscription.
	Subscribe(fn func()) (unsubscribe func())
}

// notifier closes a done channel and fans out to subscribers exactly once.
type notifier struct {
	mu      sync.Mutex
	settled bool
	done    chan struct{}
	subs    map[uint64]func()
	nextID  uint64
}

func newNotifier() notifier {
	return notifier{
		done: make(chan struct{}),
		subs: make(map[uint64]func()),
	}
}

// Done implements Future.
func (n *notifier) Done() <-chan struct{} {
	return n.done
}

// Subscribe implements Future.
func (n *notifier) Subscribe(fn func()) func() {
	n.mu.Lock()
	if n.settled {
		n.mu.Unlock()
		fn()
		return func() {}
	}
	id := n.nextID
	n.nextID++
	n.subs[id] = fn
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.subs, id)
		n.mu.Unlock()
	}
}

func (n *notifier) settle() {
	n.mu.Lock()
	if n.settled {
		n.mu.Unlock()
		return
	}
	n.settled = true
	close(n.done)
	subs := make([]func(), 0, len(n.subs))
	for _, fn := range n.subs {
		subs = append(subs, fn)
	}
	n.subs = nil
	n.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}
