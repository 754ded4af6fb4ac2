package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/vango-dev/loadable/internal/config"
	"github.com/vango-dev/loadable/pkg/loadable"
	"github.com/vango-dev/loadable/pkg/loaders"
	"github.com/vango-dev/loadable/pkg/server"
	"github.com/vango-dev/loadable/pkg/telemetry"
	"github.com/vango-dev/loadable/pkg/vdom"
)

type fragment = loadable.Loadable[*loaders.Fragment]

// app wires configuration, fragment loadables and the HTTP server.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *loadable.Registry
	metrics  *prometheus.Registry
	server   *server.Server

	// fragments by short name, e.g. "chart" for fragment/chart.
	fragments map[string]*fragment
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, s3Client s3Client) (*app, error) {
	metrics := prometheus.NewRegistry()
	metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a := &app{
		cfg:    cfg,
		logger: logger,
		registry: loadable.NewRegistry(
			loadable.WithLogger(logger),
			loadable.WithObserver(telemetry.New(telemetry.WithRegistry(metrics))),
		),
		metrics:   metrics,
		fragments: make(map[string]*fragment),
	}

	if err := a.addLocalFragments(); err != nil {
		return nil, err
	}
	if cfg.S3.Enabled() {
		if s3Client == nil {
			s3Client = newS3Client(cfg.S3)
		}
		if err := a.addS3Fragments(ctx, s3Client); err != nil {
			return nil, err
		}
	}

	metricsPath := ""
	if cfg.MetricsEnabled() {
		metricsPath = cfg.Server.MetricsPath
	}
	a.server = server.New(&server.ServerConfig{
		Address:     cfg.Address(),
		PayloadID:   cfg.Loadable.PayloadID,
		MetricsPath: metricsPath,
		Gatherer:    metrics,
		Registry:    a.registry,
		Logger:      logger,
	})
	a.server.Page("/", a.indexPage)
	a.server.Page("/f/{name}", a.fragmentPage)
	return a, nil
}

func (a *app) addLocalFragments() error {
	dir := a.cfg.FragmentsPath()
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		a.logger.Warn("fragments directory missing", "dir", dir)
		return nil
	}
	fsys := os.DirFS(dir)
	names, err := loaders.Discover(fsys)
	if err != nil {
		return err
	}
	for _, name := range names {
		a.declare(name, loaders.FS(fsys, name))
	}
	a.logger.Info("local fragments", "dir", dir, "count", len(names))
	return nil
}

// s3Client is the bucket API the app needs.
type s3Client interface {
	loaders.ObjectGetter
	loaders.ObjectLister
}

func (a *app) addS3Fragments(ctx context.Context, client s3Client) error {
	bucket := a.cfg.S3.Bucket
	keys, err := loaders.ListS3(ctx, client, bucket, a.cfg.S3.Prefix)
	if err != nil {
		return err
	}
	for _, key := range keys {
		a.declare(key, loaders.S3(client, bucket, key))
	}
	a.logger.Info("s3 fragments", "bucket", bucket, "prefix", a.cfg.S3.Prefix, "count", len(keys))
	return nil
}

func (a *app) declare(source string, loader loadable.Loader[*loaders.Fragment]) {
	module := loaders.ModuleName(source)
	short := strings.TrimPrefix(module, "fragment/")
	if _, dup := a.fragments[short]; dup {
		a.logger.Warn("fragment shadowed", "fragment", short, "source", source)
	}
	delay := a.cfg.Loadable.Delay.Std()
	a.fragments[short] = loadable.MustNew(loadable.Options[*loaders.Fragment]{
		Loader:   loader,
		Loading:  fragmentLoading,
		Delay:    &delay,
		Timeout:  a.cfg.Timeout(),
		Modules:  func() []string { return []string{module} },
		Registry: a.registry,
	})
}

func (a *app) names() []string {
	names := make([]string, 0, len(a.fragments))
	for name := range a.fragments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (a *app) indexPage(r *http.Request) (server.Page, error) {
	return server.Page{
		Title: "Fragments",
		Body: vdom.Main(
			vdom.H1("Fragments"),
			vdom.Range(a.names(), func(_ int, name string) *vdom.VNode {
				return vdom.Section(
					vdom.H2(vdom.A(vdom.Href("/f/"+name), name)),
					a.fragments[name].Node(nil),
				)
			}),
		),
	}, nil
}

func (a *app) fragmentPage(r *http.Request) (server.Page, error) {
	name := chi.URLParam(r, "name")
	f, ok := a.fragments[name]
	if !ok {
		return server.Page{}, fmt.Errorf("fragment %q: %w", name, server.ErrNotFound)
	}
	return server.Page{
		Title: name,
		Body:  vdom.Main(f.Node(vdom.Props{"class": "fragment"})),
	}, nil
}

func fragmentLoading(p loadable.LoadingProps) *vdom.VNode {
	switch {
	case p.Error != nil:
		return vdom.Div(vdom.Class("loadable-error"), vdom.Role("alert"), "Failed to load.")
	case p.TimedOut:
		return vdom.Div(vdom.Class("loadable-loading"), vdom.AriaBusy(true), "Still loading…")
	case p.PastDelay:
		return vdom.Div(vdom.Class("loadable-loading"), vdom.AriaBusy(true), "Loading…")
	default:
		return vdom.Div(vdom.Class("loadable-loading"), vdom.AriaBusy(true))
	}
}

func newS3Client(cfg config.S3Config) *s3.Client {
	opts := s3.Options{
		Region:      cfg.Region,
		Credentials: aws.AnonymousCredentials{},
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}
	if cfg.AccessKeyEnv != "" {
		access, secret := os.Getenv(cfg.AccessKeyEnv), os.Getenv(cfg.SecretKeyEnv)
		opts.Credentials = aws.NewCredentialsCache(aws.CredentialsProviderFunc(
			func(context.Context) (aws.Credentials, error) {
				return aws.Credentials{AccessKeyID: access, SecretAccessKey: secret, Source: "loadable.json"}, nil
			}))
	}
	return s3.New(opts)
}
