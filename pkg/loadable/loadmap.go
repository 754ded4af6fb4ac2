package loadable

import (
	"context"
	"sort"
	"sync"
)

// MapStatus aggregates the loads of a named set of loaders. It stays loading
// until every started member has settled; a failing member never cancels
// its siblings.
type MapStatus[V any] struct {
	mu      sync.RWMutex
	loading bool
	loaded  map[string]V
	err     error

	failOnce sync.Once
	failed   chan struct{}
	failErr  error

	notifier
}

// LoadMap starts every loader in loaders and returns the aggregate status.
//
// Keys are processed in sorted order. A nil loader is a malformed entry: it
// sets the aggregate error and the remaining keys are not started, while the
// keys before it keep loading and are still recorded. This is best-effort
// handling of a programming error, not a per-key failure path.
//
// Wait fails as soon as any member fails, even if siblings are still
// loading. Err reports the first error encountered; Loading only turns false
// once every started member has settled.
func LoadMap[V any](ctx context.Context, loaders map[string]Loader[V]) *MapStatus[V] {
	ms := &MapStatus[V]{
		loaded:   make(map[string]V, len(loaders)),
		failed:   make(chan struct{}),
		notifier: newNotifier(),
	}

	keys := make([]string, 0, len(loaders))
	for key := range loaders {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var pending sync.WaitGroup
	for _, key := range keys {
		member, err := start(ctx, loaders[key])
		if err != nil {
			ms.mu.Lock()
			if ms.err == nil {
				ms.err = err
			}
			ms.mu.Unlock()
			break
		}

		if member.Loading() {
			ms.mu.Lock()
			ms.loading = true
			ms.mu.Unlock()
		}
		pending.Add(1)
		key := key
		member.Subscribe(func() {
			defer pending.Done()
			ms.record(key, member)
		})
	}

	go func() {
		pending.Wait()
		ms.mu.Lock()
		ms.loading = false
		ms.mu.Unlock()
		ms.settle()
	}()

	return ms
}

// record copies a settled member's outcome into the aggregate.
func (ms *MapStatus[V]) record(key string, member *Status[V]) {
	snap := member.Snapshot()

	ms.mu.Lock()
	if snap.HasLoaded {
		ms.loaded[key] = snap.Loaded
	}
	if snap.Err != nil && ms.err == nil {
		ms.err = snap.Err
	}
	ms.mu.Unlock()

	if snap.Err != nil {
		ms.failOnce.Do(func() {
			ms.failErr = snap.Err
			close(ms.failed)
		})
	}
}

// Loading reports whether any started member is still in flight.
func (ms *MapStatus[V]) Loading() bool {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.loading
}

// Err returns the first error recorded.
func (ms *MapStatus[V]) Err() error {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.err
}

// Loaded returns a copy of the members resolved so far.
func (ms *MapStatus[V]) Loaded() map[string]V {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.copyLoaded()
}

func (ms *MapStatus[V]) copyLoaded() map[string]V {
	out := make(map[string]V, len(ms.loaded))
	for k, v := range ms.loaded {
		out[k] = v
	}
	return out
}

// Snapshot implements Future. The loaded map is always present, possibly
// partial while members are still loading.
func (ms *MapStatus[V]) Snapshot() Snapshot[map[string]V] {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return Snapshot[map[string]V]{
		Loading:   ms.loading,
		Loaded:    ms.copyLoaded(),
		HasLoaded: true,
		Err:       ms.err,
	}
}

// Wait implements Future. It returns early with the first member error.
func (ms *MapStatus[V]) Wait(ctx context.Context) (map[string]V, error) {
	select {
	case <-ms.done:
		ms.mu.RLock()
		defer ms.mu.RUnlock()
		return ms.copyLoaded(), ms.err
	case <-ms.failed:
		return nil, ms.failErr
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
