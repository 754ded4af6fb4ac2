// Package server serves server-rendered pages that use loadables, and the
// endpoints a client needs to hydrate them.
//
// Routes:
//
//   - Pages registered with Page are rendered per request under a fresh
//     loadable.Capture; the captured names are embedded in the page as the
//     preload payload.
//   - /_loadable/hydrate is a WebSocket handshake: the client sends the
//     payload it found, the server preloads exactly those loadables and
//     replies "ready" once they have settled.
//   - /_loadable/status lists registered loadables and their state.
//   - The metrics path serves Prometheus metrics.
//
// # Example Usage
//
//	srv := server.New(&server.ServerConfig{Address: ":8080"})
//	srv.Page("/", func(r *http.Request) (server.Page, error) {
//	    return server.Page{Title: "Home", Body: vdom.Main(chart.Node(nil))}, nil
//	})
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
