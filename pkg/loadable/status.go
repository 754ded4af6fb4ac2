package loadable

import (
	"context"
	"sync"

	lerrors "github.com/vango-dev/loadable/internal/errors"
)

// Status tracks a single load. It is created loading, settles exactly once,
// and never goes back to loading.
type Status[T any] struct {
	mu        sync.RWMutex
	loading   bool
	loaded    T
	hasLoaded bool
	err       error
	notifier
}

func newStatus[T any]() *Status[T] {
	return &Status[T]{
		loading:  true,
		notifier: newNotifier(),
	}
}

// Load invokes loader once and returns its status immediately, still
// loading. A nil loader yields a status that has already failed with
// ErrLoaderRequired.
func Load[T any](ctx context.Context, loader Loader[T]) *Status[T] {
	s, err := start(ctx, loader)
	if err != nil {
		s = newStatus[T]()
		s.fail(err)
	}
	return s
}

// start is Load without the nil-loader fallback; LoadMap relies on the
// synchronous error to stop processing its keys.
func start[T any](ctx context.Context, loader Loader[T]) (*Status[T], error) {
	if loader == nil {
		return nil, lerrors.New("L003")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	s := newStatus[T]()
	go s.run(context.WithoutCancel(ctx), loader)
	return s, nil
}

func (s *Status[T]) run(ctx context.Context, loader Loader[T]) {
	var (
		value T
		err   error
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = lerrors.New("L020").WithDetailf("%v", r)
			}
		}()
		value, err = loader(ctx)
	}()

	if err != nil {
		s.fail(err)
		return
	}
	s.resolve(value)
}

func (s *Status[T]) resolve(value T) {
	s.mu.Lock()
	s.loading = false
	s.loaded = value
	s.hasLoaded = true
	s.mu.Unlock()
	s.settle()
}

func (s *Status[T]) fail(err error) {
	s.mu.Lock()
	s.loading = false
	s.err = err
	s.mu.Unlock()
	s.settle()
}

// Loading reports whether the load is still in flight.
func (s *Status[T]) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Loaded returns the resolved module and whether there is one.
func (s *Status[T]) Loaded() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded, s.hasLoaded
}

// Err returns the load error, if the load failed.
func (s *Status[T]) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Snapshot implements Future.
func (s *Status[T]) Snapshot() Snapshot[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot[T]{
		Loading:   s.loading,
		Loaded:    s.loaded,
		HasLoaded: s.hasLoaded,
		Err:       s.err,
	}
}

// Wait implements Future.
func (s *Status[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-s.done:
		s.mu.RLock()
		defer s.mu.RUnlock()
		return s.loaded, s.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
