package server

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/loadable/pkg/loadable"
	"github.com/vango-dev/loadable/pkg/render"
	"github.com/vango-dev/loadable/pkg/vdom"
)

// Page is the content of one rendered page.
type Page struct {
	Title string
	Lang  string
	Body  *vdom.VNode
}

// PageFunc builds the page for a request. Returning an error wrapping
// ErrNotFound answers 404; any other error answers 500.
type PageFunc func(r *http.Request) (Page, error)

// ErrNotFound tells the server a page does not exist.
var ErrNotFound = errors.New("page not found")

// Server routes page, hydration, status and metrics requests.
type Server struct {
	config   *ServerConfig
	router   chi.Router
	upgrader websocket.Upgrader
	logger   *slog.Logger

	httpServer *http.Server
}

// New creates a Server. A nil config uses DefaultServerConfig.
func New(config *ServerConfig) *Server {
	config = config.withDefaults()

	s := &Server{
		config: config,
		router: chi.NewRouter(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		logger: config.Logger.With("component", "server"),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.logRequests)

	s.router.Get(HydratePath, s.handleHydrate)
	s.router.Get(StatusPath, s.handleStatus)
	if config.MetricsPath != "" {
		s.router.Method(http.MethodGet, config.MetricsPath,
			promhttp.HandlerFor(config.Gatherer, promhttp.HandlerOpts{}))
	}
	return s
}

// Router exposes the underlying router for extra routes.
func (s *Server) Router() chi.Router {
	return s.router
}

// Config returns the effective configuration.
func (s *Server) Config() *ServerConfig {
	return s.config
}

// Page registers a server-rendered page at pattern.
func (s *Server) Page(pattern string, fn PageFunc) {
	s.router.Get(pattern, func(w http.ResponseWriter, r *http.Request) {
		s.renderPage(w, r, fn)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, fn PageFunc) {
	page, err := fn(r)
	if errors.Is(err, ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.logger.Error("page failed", "path", r.URL.Path, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	capture := loadable.NewCapture(loadable.WithPayloadID(s.config.PayloadID))
	ctx := loadable.WithCapture(r.Context(), capture)

	var buf bytes.Buffer
	err = s.config.Renderer.RenderPage(ctx, &buf, render.PageData{
		Title:        page.Title,
		Lang:         page.Lang,
		Body:         page.Body,
		StyleSheets:  s.config.StyleSheets,
		Scripts:      s.config.Scripts,
		Preloadables: capture,
	})
	if err != nil {
		s.logger.Error("render failed", "path", r.URL.Path, "capture", capture.ID(), "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	s.logger.Debug("page rendered",
		"path", r.URL.Path,
		"capture", capture.ID(),
		"loadables", len(capture.Loadables()),
	)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String())
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.WithoutCancel(ctx))
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}
	s.logger.Info("server shutdown complete")
	return nil
}
