package loadable

import (
	"context"
	"sync"
	"time"

	lerrors "github.com/vango-dev/loadable/internal/errors"
	"github.com/vango-dev/loadable/pkg/vdom"
)

// Loadable is a lazily loaded module, declared once and shared by every view
// that renders it. Its load is triggered at most once.
type Loadable[T any] struct {
	start      func(ctx context.Context) Future[T]
	loading    LoadingFunc
	render     RenderFunc[T]
	delay      time.Duration
	timeout    time.Duration
	hasTimeout bool
	name       string
	registry   *Registry

	mu     sync.Mutex
	future Future[T]
}

// New declares a Loadable over a single loader. It fails if Loading or
// Loader is missing.
func New[T any](opts Options[T]) (*Loadable[T], error) {
	if opts.Loading == nil {
		return nil, lerrors.New("L001").WithSuggestion("set Options.Loading to a LoadingFunc")
	}
	if opts.Loader == nil {
		return nil, lerrors.New("L003")
	}

	render := opts.Render
	if render == nil {
		render = func(loaded T, props vdom.Props) *vdom.VNode {
			return resolveRender(any(loaded), props)
		}
	}

	loader := opts.Loader
	l := &Loadable[T]{
		start: func(ctx context.Context) Future[T] {
			return Load(ctx, loader)
		},
		loading:  opts.Loading,
		render:   render,
		registry: opts.Registry,
	}
	l.configure(opts.Delay, opts.Timeout, opts.Modules)
	return l, nil
}

// MustNew is like New but panics on a configuration error. It suits
// package-level declarations.
func MustNew[T any](opts Options[T]) *Loadable[T] {
	l, err := New(opts)
	if err != nil {
		panic(err)
	}
	return l
}

// NewMap declares a Loadable over a named set of loaders, started together.
// It fails if Loading, Render or Loaders is missing.
func NewMap[V any](opts MapOptions[V]) (*Loadable[map[string]V], error) {
	if opts.Loading == nil {
		return nil, lerrors.New("L001").WithSuggestion("set MapOptions.Loading to a LoadingFunc")
	}
	if opts.Render == nil {
		return nil, lerrors.New("L002")
	}
	if opts.Loaders == nil {
		return nil, lerrors.New("L003").WithSuggestion("set MapOptions.Loaders")
	}

	loaders := opts.Loaders
	l := &Loadable[map[string]V]{
		start: func(ctx context.Context) Future[map[string]V] {
			return LoadMap(ctx, loaders)
		},
		loading:  opts.Loading,
		render:   opts.Render,
		registry: opts.Registry,
	}
	l.configure(opts.Delay, opts.Timeout, opts.Modules)
	return l, nil
}

// MustNewMap is like NewMap but panics on a configuration error.
func MustNewMap[V any](opts MapOptions[V]) *Loadable[map[string]V] {
	l, err := NewMap(opts)
	if err != nil {
		panic(err)
	}
	return l
}

func (l *Loadable[T]) configure(delay, timeout *time.Duration, modules func() []string) {
	l.delay = DefaultDelay
	if delay != nil {
		l.delay = *delay
	}
	if timeout != nil {
		l.timeout = *timeout
		l.hasTimeout = true
	}
	if modules != nil {
		l.name = CanonicalName(modules())
	}
	if l.registry == nil {
		l.registry = Default
	}
	l.registry.register(l.name, l.initializer, l.describe)
}

// Name returns the canonical name, or "" if the loadable has no Modules.
func (l *Loadable[T]) Name() string {
	return l.name
}

// Preload triggers the load if it has not started and returns the shared
// future. Repeated calls return the same future.
func (l *Loadable[T]) Preload(ctx context.Context) Future[T] {
	return l.init(ctx)
}

// Triggered reports whether the load has started.
func (l *Loadable[T]) Triggered() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.future != nil
}

func (l *Loadable[T]) init(ctx context.Context) Future[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.future == nil {
		l.future = l.begin(ctx)
	}
	return l.future
}

func (l *Loadable[T]) begin(ctx context.Context) Future[T] {
	if ctx == nil {
		ctx = context.Background()
	}
	_, obs, _ := l.registry.settings()
	label := l.label()

	ctx = obs.LoadStarted(ctx, label)
	started := time.Now()
	f := l.start(ctx)

	go func() {
		<-f.Done()
		obs.LoadFinished(ctx, label, time.Since(started), f.Snapshot().Err)
	}()
	return f
}

func (l *Loadable[T]) label() string {
	if l.name == "" {
		return "anonymous"
	}
	return l.name
}

func (l *Loadable[T]) initializer(ctx context.Context) error {
	_, err := l.init(ctx).Wait(ctx)
	return err
}

func (l *Loadable[T]) describe() EntryState {
	st := EntryState{Name: l.name}
	l.mu.Lock()
	f := l.future
	l.mu.Unlock()
	if f == nil {
		return st
	}
	snap := f.Snapshot()
	st.Triggered = true
	st.Loading = snap.Loading
	st.Err = snap.Err
	return st
}

// view renders a snapshot: not ready goes to the Loading view, loaded goes
// to Render, anything else renders nothing.
func (l *Loadable[T]) view(snap Snapshot[T], pastDelay, timedOut bool, props vdom.Props) *vdom.VNode {
	if snap.Loading || snap.Err != nil {
		return l.loading(LoadingProps{
			IsLoading: snap.Loading,
			PastDelay: pastDelay,
			TimedOut:  timedOut,
			Error:     snap.Err,
		})
	}
	if snap.HasLoaded && !isNil(any(snap.Loaded)) {
		return l.render(snap.Loaded, props)
	}
	return nil
}

// Node returns a component node for server rendering. Rendering it triggers
// the load, records the loadable in the pass's Capture, and renders the
// current state without timers: PastDelay and TimedOut are always false.
func (l *Loadable[T]) Node(props vdom.Props) *vdom.VNode {
	return vdom.Mount(&serverView[T]{l: l, props: props})
}

type serverView[T any] struct {
	l     *Loadable[T]
	props vdom.Props
}

func (s *serverView[T]) Render() *vdom.VNode {
	return s.RenderContext(context.Background())
}

func (s *serverView[T]) RenderContext(ctx context.Context) *vdom.VNode {
	f := s.l.init(ctx)
	if c, ok := CaptureFromContext(ctx); ok && s.l.name != "" {
		c.Record(s.l.name)
	}
	return s.l.view(f.Snapshot(), false, false, s.props)
}
