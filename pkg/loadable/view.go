package loadable

import (
	"context"
	"sync"

	"github.com/vango-dev/loadable/pkg/vdom"
)

// Phase is the lifecycle stage of a mounted view.
type Phase int

const (
	PhaseInitial Phase = iota // Created, not mounted yet
	PhaseLoading              // Mounted, module not settled
	PhaseLoaded               // Module resolved
	PhaseErrored              // Module failed
)

// String returns the string representation of the Phase.
func (p Phase) String() string {
	switch p {
	case PhaseInitial:
		return "initial"
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	case PhaseErrored:
		return "errored"
	default:
		return "unknown"
	}
}

func phaseOf[T any](snap Snapshot[T]) Phase {
	switch {
	case snap.Loading:
		return PhaseLoading
	case snap.Err != nil:
		return PhaseErrored
	default:
		return PhaseLoaded
	}
}

// View is one mounted instance of a Loadable. Views share the Loadable's
// load but own their delay and timeout timers. onUpdate is called whenever
// the view's output may have changed; it is never called after Unmount.
type View[T any] struct {
	l        *Loadable[T]
	onUpdate func()

	mu           sync.Mutex
	props        vdom.Props
	phase        Phase
	pastDelay    bool
	timedOut     bool
	mounted      bool
	disposed     bool
	future       Future[T]
	delayTimer   Timer
	timeoutTimer Timer
	unsubscribe  func()

	// set once Render has shown the loading view
	renderedLoading bool
}

// NewView creates an unmounted view with the given props. onUpdate may be nil.
func (l *Loadable[T]) NewView(props vdom.Props, onUpdate func()) *View[T] {
	if onUpdate == nil {
		onUpdate = func() {}
	}
	return &View[T]{
		l:         l,
		onUpdate:  onUpdate,
		props:     props,
		pastDelay: l.delay == 0,
	}
}

// Mount triggers the load if needed and arms the delay and timeout timers.
// If the load settled after an earlier Render showed the loading view,
// Mount calls onUpdate right away. Mounting twice, or after Unmount, does
// nothing.
func (v *View[T]) Mount(ctx context.Context) {
	v.mu.Lock()
	if v.phase != PhaseInitial || v.disposed {
		v.mu.Unlock()
		return
	}
	v.mounted = true
	f := v.l.init(ctx)
	v.future = f

	snap := f.Snapshot()
	v.phase = phaseOf(snap)
	if v.phase != PhaseLoading {
		stale := v.renderedLoading
		v.mu.Unlock()
		if stale {
			v.onUpdate()
		}
		return
	}

	_, _, clock := v.l.registry.settings()
	if v.l.delay > 0 {
		v.delayTimer = clock.AfterFunc(v.l.delay, v.onDelay)
	}
	if v.l.hasTimeout {
		v.timeoutTimer = clock.AfterFunc(v.l.timeout, v.onTimeout)
	}
	v.mu.Unlock()

	unsubscribe := f.Subscribe(v.settle)

	v.mu.Lock()
	if !v.mounted {
		v.mu.Unlock()
		unsubscribe()
		return
	}
	v.unsubscribe = unsubscribe
	v.mu.Unlock()
}

// Unmount cancels the timers and stops all further updates.
func (v *View[T]) Unmount() {
	v.mu.Lock()
	v.mounted = false
	v.disposed = true
	v.stopTimers()
	unsubscribe := v.unsubscribe
	v.unsubscribe = nil
	v.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (v *View[T]) onDelay() {
	v.mu.Lock()
	if !v.mounted || v.phase != PhaseLoading || v.pastDelay {
		v.mu.Unlock()
		return
	}
	v.pastDelay = true
	v.mu.Unlock()
	v.onUpdate()
}

func (v *View[T]) onTimeout() {
	v.mu.Lock()
	if !v.mounted || v.phase != PhaseLoading || v.timedOut {
		v.mu.Unlock()
		return
	}
	v.timedOut = true
	v.mu.Unlock()
	v.onUpdate()
}

// settle runs once the shared load finishes.
func (v *View[T]) settle() {
	v.mu.Lock()
	v.stopTimers()
	if !v.mounted {
		v.mu.Unlock()
		return
	}
	snap := v.future.Snapshot()
	v.phase = phaseOf(snap)
	v.mu.Unlock()

	if snap.Err != nil {
		logger, _, _ := v.l.registry.settings()
		logger.Error("loadable failed",
			"loadable", v.l.label(),
			"error", snap.Err,
		)
	}
	v.onUpdate()
}

// stopTimers must be called with v.mu held.
func (v *View[T]) stopTimers() {
	if v.delayTimer != nil {
		v.delayTimer.Stop()
		v.delayTimer = nil
	}
	if v.timeoutTimer != nil {
		v.timeoutTimer.Stop()
		v.timeoutTimer = nil
	}
}

// SetProps replaces the props passed to the loaded module.
func (v *View[T]) SetProps(props vdom.Props) {
	v.mu.Lock()
	v.props = props
	v.mu.Unlock()
}

// Phase returns the view's lifecycle stage.
func (v *View[T]) Phase() Phase {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.phase
}

// PastDelay reports whether the delay has elapsed while loading.
func (v *View[T]) PastDelay() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pastDelay
}

// TimedOut reports whether the timeout has elapsed while loading.
func (v *View[T]) TimedOut() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.timedOut
}

// Render implements vdom.Component. Rendering an unmounted view still
// triggers the shared load, so the first paint can start it.
func (v *View[T]) Render() *vdom.VNode {
	v.mu.Lock()
	f := v.future
	props := v.props
	pastDelay, timedOut := v.pastDelay, v.timedOut
	v.mu.Unlock()

	if f == nil {
		f = v.l.init(context.Background())
	}
	snap := f.Snapshot()
	if snap.Loading {
		v.mu.Lock()
		v.renderedLoading = true
		v.mu.Unlock()
	}
	return v.l.view(snap, pastDelay, timedOut, props)
}
