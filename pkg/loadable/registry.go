package loadable

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Initializer triggers a loadable's load and waits for it. Calling it again
// waits on the same load.
type Initializer func(ctx context.Context) error

// EntryState describes a registered loadable, for introspection.
type EntryState struct {
	Name      string `json:"name,omitempty"`
	Triggered bool   `json:"triggered"`
	Loading   bool   `json:"loading"`
	Err       error  `json:"-"`
}

type entry struct {
	name     string
	init     Initializer
	describe func() EntryState
}

// Registry records every declared Loadable: an append-only list of all of
// them and a by-name index of those with a canonical name.
type Registry struct {
	mu     sync.Mutex
	all    []*entry
	byName map[string]*entry

	logger   *slog.Logger
	observer Observer
	clock    Clock
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger used for load failures and preload warnings.
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithObserver sets the lifecycle observer.
func WithObserver(obs Observer) RegistryOption {
	return func(r *Registry) {
		if obs != nil {
			r.observer = obs
		}
	}
}

// WithClock sets the clock used for view timers.
func WithClock(c Clock) RegistryOption {
	return func(r *Registry) {
		if c != nil {
			r.clock = c
		}
	}
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		byName:   make(map[string]*entry),
		logger:   slog.Default(),
		observer: nopObserver{},
		clock:    realClock{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Default is the process-wide registry used by loadables declared without
// an explicit Registry.
var Default = NewRegistry()

// Configure applies options to an existing registry. It is meant for wiring
// Default at startup; loads and views already running keep the logger,
// observer and clock they started with.
func (r *Registry) Configure(opts ...RegistryOption) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, opt := range opts {
		opt(r)
	}
}

func (r *Registry) settings() (*slog.Logger, Observer, Clock) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.logger, r.observer, r.clock
}

func (r *Registry) register(name string, init Initializer, describe func() EntryState) {
	e := &entry{name: name, init: init, describe: describe}

	r.mu.Lock()
	r.all = append(r.all, e)
	if name != "" {
		if _, dup := r.byName[name]; dup {
			r.logger.Debug("loadable name re-registered", "loadable", name)
		}
		r.byName[name] = e
	}
	r.mu.Unlock()
}

// Len returns the number of registered loadables.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.all)
}

// Names returns the registered canonical names, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entries describes every registered loadable in registration order.
func (r *Registry) Entries() []EntryState {
	r.mu.Lock()
	entries := append([]*entry(nil), r.all...)
	r.mu.Unlock()

	out := make([]EntryState, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.describe())
	}
	return out
}

// PreloadAll loads every registered loadable, including any registered
// while the others load, and waits for all of them.
func (r *Registry) PreloadAll(ctx context.Context) error {
	started := time.Now()
	src := &registryCursor{r: r}
	err := FlushAll(ctx, src)
	_, obs, _ := r.settings()
	obs.Preloaded(ctx, PreloadModeAll, src.taken, time.Since(started), err)
	return err
}

// PreloadByNames loads exactly the loadables registered under names, as
// captured during a server render. Duplicate names load once. Names with no
// registered loadable are skipped and logged; they usually mean the page was
// rendered by a different build.
func (r *Registry) PreloadByNames(ctx context.Context, names []string) error {
	started := time.Now()

	r.mu.Lock()
	seen := make(map[string]bool, len(names))
	inits := make([]Initializer, 0, len(names))
	var missing []string
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		e, ok := r.byName[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		inits = append(inits, e.init)
	}
	r.mu.Unlock()

	logger, obs, _ := r.settings()
	for _, name := range missing {
		logger.Warn("preload skipped unknown loadable",
			"loadable", name,
			"error", ErrUnknownName,
		)
	}

	err := FlushAll(ctx, NewQueue(inits...))
	obs.Preloaded(ctx, PreloadModeNames, len(inits), time.Since(started), err)
	return err
}

// registryCursor hands out registry entries not yet taken, leaving the
// registry's list itself untouched.
type registryCursor struct {
	r     *Registry
	next  int
	taken int
}

func (c *registryCursor) Take() []Initializer {
	c.r.mu.Lock()
	defer c.r.mu.Unlock()
	pending := c.r.all[c.next:]
	c.next = len(c.r.all)
	inits := make([]Initializer, len(pending))
	for i, e := range pending {
		inits[i] = e.init
	}
	c.taken += len(inits)
	return inits
}
