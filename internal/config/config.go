package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vango-dev/loadable/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "loadable.json"

	// DefaultPort is the default server port.
	DefaultPort = 8080

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultMetricsPath is where Prometheus metrics are served.
	DefaultMetricsPath = "/metrics"

	// DefaultPayloadID is the element id of the preload payload.
	DefaultPayloadID = "__preloadables__"

	// DefaultDelay is the default delay before views report PastDelay.
	DefaultDelay = 200 * time.Millisecond

	// DefaultFragmentsDir is the default directory scanned for fragments.
	DefaultFragmentsDir = "fragments"
)

// Config represents the complete loadable.json configuration.
type Config struct {
	// Server contains HTTP server configuration.
	Server ServerConfig `json:"server,omitempty"`

	// Loadable contains loadable defaults.
	Loadable LoadableConfig `json:"loadable,omitempty"`

	// Fragments configures the local fragment source.
	Fragments FragmentsConfig `json:"fragments,omitempty"`

	// S3 configures the optional bucket fragment source.
	S3 S3Config `json:"s3,omitempty"`

	// Log contains logging configuration.
	Log LogConfig `json:"log,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty"`

	// MetricsPath is the Prometheus scrape path. "-" disables it.
	MetricsPath string `json:"metricsPath,omitempty"`
}

// LoadableConfig contains defaults applied to every declared loadable.
type LoadableConfig struct {
	// PayloadID is the element id of the preload payload script.
	PayloadID string `json:"payloadId,omitempty"`

	// Delay before views report PastDelay (e.g., "200ms").
	Delay Duration `json:"delay,omitempty"`

	// Timeout after which views report TimedOut. Zero disables it.
	Timeout Duration `json:"timeout,omitempty"`

	// PreloadOnStart runs PreloadAll before the server accepts requests.
	PreloadOnStart bool `json:"preloadOnStart,omitempty"`
}

// FragmentsConfig configures the local fragment directory.
type FragmentsConfig struct {
	// Dir is scanned for *.html files, one loadable each.
	Dir string `json:"dir,omitempty"`
}

// S3Config configures the bucket fragment source. It is disabled while
// Bucket is empty.
type S3Config struct {
	Bucket   string `json:"bucket,omitempty"`
	Prefix   string `json:"prefix,omitempty"`
	Region   string `json:"region,omitempty"`
	Endpoint string `json:"endpoint,omitempty"`

	// AccessKeyEnv and SecretKeyEnv name the environment variables holding
	// credentials. Empty means anonymous access.
	AccessKeyEnv string `json:"accessKeyEnv,omitempty"`
	SecretKeyEnv string `json:"secretKeyEnv,omitempty"`
}

// Enabled reports whether a bucket is configured.
func (s S3Config) Enabled() bool {
	return s.Bucket != ""
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty"`
}

// Duration is a time.Duration that reads and writes as a string such as
// "250ms".
type Duration time.Duration

// UnmarshalJSON accepts a duration string or a number of milliseconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var ms int64
		if err := json.Unmarshal(data, &ms); err != nil {
			return err
		}
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalJSON writes the duration as a string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        DefaultHost,
			Port:        DefaultPort,
			MetricsPath: DefaultMetricsPath,
		},
		Loadable: LoadableConfig{
			PayloadID: DefaultPayloadID,
			Delay:     Duration(DefaultDelay),
		},
		Fragments: FragmentsConfig{
			Dir: DefaultFragmentsDir,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for loadable.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("L005").
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path)).
				WithSuggestion("Create " + ConfigFileName + " or pass --config")
		}
		return nil, errors.New("L005").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("L006").
			WithDetail("Failed to parse " + path + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.MetricsPath == "" {
		c.Server.MetricsPath = DefaultMetricsPath
	}
	if c.Loadable.PayloadID == "" {
		c.Loadable.PayloadID = DefaultPayloadID
	}
	if c.Fragments.Dir == "" {
		c.Fragments.Dir = DefaultFragmentsDir
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("L004").
			WithDetail("server.port must be between 0 and 65535")
	}
	if c.Loadable.Delay < 0 || c.Loadable.Timeout < 0 {
		return errors.New("L004").
			WithDetail("loadable.delay and loadable.timeout must not be negative")
	}
	if p := c.Server.MetricsPath; p != "-" && !strings.HasPrefix(p, "/") {
		return errors.New("L004").
			WithDetailf("server.metricsPath %q must start with /", p).
			WithSuggestion(`use "-" to disable metrics`)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("L004").
			WithDetailf("log.format %q must be text or json", c.Log.Format)
	}
	return nil
}

// Address returns the listen address.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// MetricsEnabled reports whether metrics are served.
func (c *Config) MetricsEnabled() bool {
	return c.Server.MetricsPath != "-"
}

// Timeout returns the configured view timeout, or nil if none is set.
func (c *Config) Timeout() *time.Duration {
	if c.Loadable.Timeout == 0 {
		return nil
	}
	d := c.Loadable.Timeout.Std()
	return &d
}

// FragmentsPath returns the absolute path to the fragments directory.
func (c *Config) FragmentsPath() string {
	path := c.Fragments.Dir
	if path == "" {
		path = DefaultFragmentsDir
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, errors.New("L004").
			WithDetailf("log.level %q must be debug, info, warn or error", c.Log.Level)
	}
	return level, nil
}
