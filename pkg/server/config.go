package server

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/loadable/pkg/loadable"
	"github.com/vango-dev/loadable/pkg/render"
)

// Default route paths.
const (
	HydratePath = "/_loadable/hydrate"
	StatusPath  = "/_loadable/status"
)

// ServerConfig holds configuration for the server.
type ServerConfig struct {
	// Address is the address to listen on (e.g., ":8080").
	Address string

	// ReadBufferSize is the WebSocket read buffer size.
	ReadBufferSize int

	// WriteBufferSize is the WebSocket write buffer size.
	WriteBufferSize int

	// CheckOrigin is called to validate the WebSocket request origin.
	// Default: SameOriginCheck.
	CheckOrigin func(r *http.Request) bool

	// HandshakeTimeout bounds how long the hydrate socket waits for the
	// client's payload.
	HandshakeTimeout time.Duration

	// MaxMessageSize caps the hydrate payload frame, in bytes.
	// Default: 64 KiB.
	MaxMessageSize int64

	// ReadHeaderTimeout is passed to http.Server.
	ReadHeaderTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration

	// PayloadID is the element id of the preload payload.
	// Default: loadable.PayloadID.
	PayloadID string

	// MetricsPath is where Prometheus metrics are served. Empty disables
	// the route.
	MetricsPath string

	// Gatherer supplies the metrics. Default: prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer

	// Registry holds the loadables pages render. Default: loadable.Default.
	Registry *loadable.Registry

	// Renderer renders pages. Default: a compact renderer.
	Renderer *render.Renderer

	// StyleSheets and Scripts are added to every page.
	StyleSheets []string
	Scripts     []render.ScriptTag

	// Logger is the server logger. Default: slog.Default().
	Logger *slog.Logger
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Address:           ":8080",
		ReadBufferSize:    1024,
		WriteBufferSize:   1024,
		CheckOrigin:       SameOriginCheck,
		HandshakeTimeout:  10 * time.Second,
		MaxMessageSize:    64 << 10,
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   30 * time.Second,
		PayloadID:         loadable.PayloadID,
		MetricsPath:       "/metrics",
	}
}

// withDefaults returns a copy of c with unset fields filled in.
func (c *ServerConfig) withDefaults() *ServerConfig {
	defaults := DefaultServerConfig()
	if c == nil {
		c = defaults
	}
	out := *c
	if out.Address == "" {
		out.Address = defaults.Address
	}
	if out.ReadBufferSize == 0 {
		out.ReadBufferSize = defaults.ReadBufferSize
	}
	if out.WriteBufferSize == 0 {
		out.WriteBufferSize = defaults.WriteBufferSize
	}
	if out.CheckOrigin == nil {
		out.CheckOrigin = defaults.CheckOrigin
	}
	if out.HandshakeTimeout == 0 {
		out.HandshakeTimeout = defaults.HandshakeTimeout
	}
	if out.MaxMessageSize == 0 {
		out.MaxMessageSize = defaults.MaxMessageSize
	}
	if out.ReadHeaderTimeout == 0 {
		out.ReadHeaderTimeout = defaults.ReadHeaderTimeout
	}
	if out.ShutdownTimeout == 0 {
		out.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if out.PayloadID == "" {
		out.PayloadID = defaults.PayloadID
	}
	if out.Gatherer == nil {
		out.Gatherer = prometheus.DefaultGatherer
	}
	if out.Registry == nil {
		out.Registry = loadable.Default
	}
	if out.Renderer == nil {
		out.Renderer = render.NewRenderer(render.RendererConfig{})
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	return &out
}

// SameOriginCheck validates that the WebSocket request origin matches the
// host. Requests without an Origin header are allowed.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if r.Host == "" {
		return false
	}
	return originURL.Host == r.Host
}
