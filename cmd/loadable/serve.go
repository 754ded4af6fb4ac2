package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/loadable/internal/config"
	lerrors "github.com/vango-dev/loadable/internal/errors"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		port       int
		host       string
		preload    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve pages built from HTML fragments",
		Long: `Serve every fragment as a loadable.

Routes:
  /                   all fragments
  /f/{name}           one fragment
  /_loadable/hydrate  preload handshake (WebSocket)
  /_loadable/status   registered loadables
  /metrics            Prometheus metrics

Examples:
  loadable serve
  loadable serve --config ./site --port 9000 --preload`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if preload {
				cfg.Loadable.PreloadOnStart = true
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", ".", "Directory or file holding loadable.json")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from loadable.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from loadable.json)")
	cmd.Flags().BoolVar(&preload, "preload", false, "Preload every fragment before accepting requests")

	return cmd
}

// loadConfig reads loadable.json from a directory or file path. A missing
// file falls back to defaults.
func loadConfig(path string) (*config.Config, error) {
	load := config.LoadFile
	if st, err := os.Stat(path); err == nil && st.IsDir() {
		load = config.Load
	}
	cfg, err := load(path)
	if errors.Is(err, lerrors.New("L005")) {
		warn("no %s found, using defaults", config.ConfigFileName)
		return config.New(), nil
	}
	return cfg, err
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}

	if cfg.Loadable.PreloadOnStart {
		start := time.Now()
		if err := a.registry.PreloadAll(ctx); err != nil {
			return err
		}
		success("Preloaded %d loadables in %s", a.registry.Len(), time.Since(start).Round(time.Millisecond))
	}

	info("Listening on http://%s", cfg.Address())
	return a.server.Run(ctx)
}
