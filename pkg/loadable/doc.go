// Package loadable defers loading of view modules until they are first
// needed, and coordinates server rendering with client preloading.
//
// # Engine
//
// Load runs a Loader once and returns a *Status whose state moves from
// loading to either loaded or errored, exactly once. LoadMap fans out over a
// named set of loaders and aggregates them into one *MapStatus. Both
// implement Future: callers can Wait for the result, take a Snapshot, or
// Subscribe to be told when the load settles.
//
// # Loadables and views
//
// A Loadable is declared once, usually at package level, and shared by every
// place that renders it:
//
//	var Chart = loadable.MustNew(loadable.Options[*loaders.Fragment]{
//	    Loader:  loaders.File("fragments/chart.html"),
//	    Loading: Spinner,
//	    Modules: func() []string { return []string{"fragments/chart.html"} },
//	})
//
// The first trigger (Preload, Mount, or a server render) starts the load;
// every later trigger shares it. Each mounted View tracks its own delay and
// timeout timers and calls its update callback when something visible
// changes. While the module is loading, or if it failed, the Loading view
// renders with LoadingProps; afterwards the module renders with the view's
// props. Load errors are never retried.
//
// # Server rendering and preloading
//
// Loadables register themselves in a Registry. A server render threads a
// Capture through the context; every named loadable that renders under it
// records its canonical name. The capture is written into the page as a
// script payload, and the receiving side calls Registry.PreloadByNames with
// those names so its first render matches the server's output.
// Registry.PreloadAll loads everything, including loadables that register
// themselves while others load.
package loadable
