package loadable

import (
	"context"
	"time"
)

// Observer receives load and preload lifecycle events, for metrics and
// tracing. Implementations must be safe for concurrent use.
type Observer interface {
	// LoadStarted is called when a loadable triggers its load. The returned
	// context is handed to the loader.
	LoadStarted(ctx context.Context, name string) context.Context

	// LoadFinished is called once the load settles.
	LoadFinished(ctx context.Context, name string, elapsed time.Duration, err error)

	// Preloaded is called after PreloadAll or PreloadByNames returns.
	Preloaded(ctx context.Context, mode string, count int, elapsed time.Duration, err error)
}

// Preload modes reported to Observer.Preloaded.
const (
	PreloadModeAll   = "all"
	PreloadModeNames = "names"
)

type nopObserver struct{}

func (nopObserver) LoadStarted(ctx context.Context, _ string) context.Context {
	return ctx
}

func (nopObserver) LoadFinished(context.Context, string, time.Duration, error) {}

func (nopObserver) Preloaded(context.Context, string, int, time.Duration, error) {}
