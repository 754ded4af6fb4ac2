package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/vango-dev/loadable/internal/config"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFragments(t *testing.T, files map[string]string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	cfg := config.New()
	cfg.Fragments.Dir = dir
	return cfg
}

type bucket map[string]string

func (b bucket) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := b[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func (b bucket) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	out := &s3.ListObjectsV2Output{}
	for key := range b {
		if strings.HasPrefix(key, aws.ToString(in.Prefix)) {
			out.Contents = append(out.Contents, types.Object{Key: aws.String(key)})
		}
	}
	return out, nil
}

func TestAppServesFragments(t *testing.T) {
	cfg := writeFragments(t, map[string]string{
		"chart.html": "<svg></svg>",
		"notes.txt":  "ignored",
	})
	cfg.S3 = config.S3Config{Bucket: "assets", Prefix: "remote/"}
	client := bucket{"remote/map.html": "<canvas></canvas>"}

	a, err := newApp(context.Background(), cfg, discard(), client)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(a.registry.Names(), ","); got != "fragment/chart,fragment/map" {
		t.Fatalf("registered names = %q", got)
	}
	if err := a.registry.PreloadAll(context.Background()); err != nil {
		t.Fatal(err)
	}

	ts := httptest.NewServer(a.server)
	defer ts.Close()

	body := fetch(t, ts.URL+"/")
	for _, want := range []string{
		`<div data-loadable="chart"><svg></svg></div>`,
		`<div data-loadable="map"><canvas></canvas></div>`,
		`["fragment/chart","fragment/map"]`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("index missing %q:\n%s", want, body)
		}
	}

	body = fetch(t, ts.URL+"/f/map")
	if !strings.Contains(body, `<div class="fragment" data-loadable="map">`) || !strings.Contains(body, `["fragment/map"]`) {
		t.Errorf("fragment page:\n%s", body)
	}

	resp, err := http.Get(ts.URL + "/f/nope")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown fragment status = %d", resp.StatusCode)
	}

	if metrics := fetch(t, ts.URL+"/metrics"); !strings.Contains(metrics, "loadable_loads_in_flight") {
		t.Error("metrics should include load counters")
	}
}

func TestAppMissingFragmentsDir(t *testing.T) {
	cfg := config.New()
	cfg.Fragments.Dir = filepath.Join(t.TempDir(), "missing")
	a, err := newApp(context.Background(), cfg, discard(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if a.registry.Len() != 0 {
		t.Errorf("Len() = %d, want 0", a.registry.Len())
	}
}

func TestInspectCommand(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "page.html")
	html := `<html><body><main></main><script type="application/json" id="__preloadables__">["a","b,c"]</script></body></html>`
	if err := os.WriteFile(page, []byte(html), 0o644); err != nil {
		t.Fatal(err)
	}

	run := func(args ...string) (string, error) {
		var out bytes.Buffer
		cmd := rootCmd()
		cmd.SetOut(&out)
		cmd.SetErr(io.Discard)
		cmd.SetArgs(args)
		err := cmd.Execute()
		return out.String(), err
	}

	out, err := run("inspect", page)
	if err != nil || out != "a\nb,c\n" {
		t.Errorf("inspect = %q, %v", out, err)
	}

	out, err = run("inspect", page, "--json")
	if err != nil || !strings.Contains(out, `"b,c"`) {
		t.Errorf("inspect --json = %q, %v", out, err)
	}

	if _, err := run("inspect", page, "--id", "other"); err == nil {
		t.Error("missing payload should be an error")
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version", "--short"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out.String()) != version {
		t.Errorf("version = %q", out.String())
	}
}

func TestLoadConfigFallsBackToDefaults(t *testing.T) {
	cfg, err := loadConfig(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != config.DefaultPort {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
}

func fetch(t *testing.T, url string) string {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(body)
}
