package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/vango-dev/fragment/internal/errors"
	"github.com/vango-dev/fragment/pkg/pattern"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "fragment.json"

	// DefaultPort is the default server port.
	DefaultPort = 3000

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultWSPath is where the bridge accepts WebSocket connections.
	DefaultWSPath = "/ws"

	// DefaultMetricsPath is where Prometheus metrics are served.
	DefaultMetricsPath = "/metrics"

	// DefaultClientPath is where the bridge client script is served.
	DefaultClientPath = "/fragment.js"

	// DefaultPartialTimeout bounds a single partial fetch.
	DefaultPartialTimeout = "10s"

	// DefaultTracerName is the OpenTelemetry tracer name.
	DefaultTracerName = "fragment"
)

// Config represents the complete fragment.json configuration.
type Config struct {
	// Server contains HTTP server configuration.
	Server ServerConfig `json:"server"`

	// Router contains routing behaviour.
	Router RouterConfig `json:"router"`

	// Partials configures where partial content comes from.
	Partials PartialsConfig `json:"partials"`

	// Routes are served by every bridge connection.
	Routes []RouteConfig `json:"routes,omitempty"`

	// Telemetry toggles metrics and tracing.
	Telemetry TelemetryConfig `json:"telemetry"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty"`

	// WSPath is the bridge endpoint.
	WSPath string `json:"wsPath,omitempty"`

	// MetricsPath is the Prometheus endpoint.
	MetricsPath string `json:"metricsPath,omitempty"`

	// ClientPath is where the client script is served.
	ClientPath string `json:"clientPath,omitempty"`

	// Static is a directory served at "/". Empty disables it.
	Static string `json:"static,omitempty"`

	// AllowedOrigins are extra hosts allowed to open bridge connections.
	AllowedOrigins []string `json:"allowedOrigins,omitempty"`
}

// RouterConfig contains routing settings.
type RouterConfig struct {
	// Strict disables the optional trailing slash.
	Strict bool `json:"strict,omitempty"`
}

// PartialsConfig contains partial loading settings.
type PartialsConfig struct {
	// BaseURL resolves relative partial URLs (e.g., "file:///" or
	// "https://cdn.example.com/partials/").
	BaseURL string `json:"baseURL,omitempty"`

	// Timeout bounds each fetch (e.g., "5s").
	Timeout string `json:"timeout,omitempty"`

	// Root is the directory file:// partials are read from.
	Root string `json:"root,omitempty"`

	// S3 enables s3:// partials when Region is set.
	S3 S3Config `json:"s3,omitempty"`
}

// S3Config configures the S3 partial source. Credentials are read from
// the standard AWS environment variables.
type S3Config struct {
	Region       string `json:"region,omitempty"`
	Endpoint     string `json:"endpoint,omitempty"`
	UsePathStyle bool   `json:"usePathStyle,omitempty"`
}

// RouteConfig binds a pattern to a partial.
type RouteConfig struct {
	Pattern string `json:"pattern"`
	Target  string `json:"target"`
	URL     string `json:"url"`
}

// TelemetryConfig toggles observability.
type TelemetryConfig struct {
	// Metrics enables Prometheus metrics and the metrics endpoint.
	Metrics bool `json:"metrics,omitempty"`

	// Tracing enables OpenTelemetry spans around route handlers.
	Tracing bool `json:"tracing,omitempty"`

	// TracerName names the tracer.
	TracerName string `json:"tracerName,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        DefaultHost,
			Port:        DefaultPort,
			WSPath:      DefaultWSPath,
			MetricsPath: DefaultMetricsPath,
			ClientPath:  DefaultClientPath,
		},
		Partials: PartialsConfig{
			Timeout: DefaultPartialTimeout,
			Root:    "partials",
		},
		Telemetry: TelemetryConfig{
			Metrics:    true,
			TracerName: DefaultTracerName,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for fragment.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E121").
				WithDetail("No fragment.json found in " + filepath.Dir(path)).
				WithSuggestion("Create fragment.json or pass --config")
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E120").
			WithDetail("Failed to parse fragment.json: " + err.Error()).
			WithSuggestion("Check that fragment.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E120").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E120").Wrap(err)
	}

	c.configPath = path
	return nil
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

// applyDefaults fills in default values for fields a file set to empty.
func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.WSPath == "" {
		c.Server.WSPath = DefaultWSPath
	}
	if c.Server.MetricsPath == "" {
		c.Server.MetricsPath = DefaultMetricsPath
	}
	if c.Server.ClientPath == "" {
		c.Server.ClientPath = DefaultClientPath
	}
	if c.Partials.Timeout == "" {
		c.Partials.Timeout = DefaultPartialTimeout
	}
	if c.Telemetry.TracerName == "" {
		c.Telemetry.TracerName = DefaultTracerName
	}
}

// Validate checks if the configuration is valid. Route patterns are
// compiled so that malformed ones are reported before serving.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("E122").
			WithDetail("Port must be between 0 and 65535")
	}
	if _, err := time.ParseDuration(c.Partials.Timeout); err != nil {
		return errors.New("E122").
			WithDetail("partials.timeout " + strconv.Quote(c.Partials.Timeout) + " is not a duration").
			WithSuggestion(`Use a Go duration such as "5s"`)
	}
	for i, r := range c.Routes {
		if _, err := pattern.Compile(r.Pattern, c.Router.Strict); err != nil {
			return errors.New("E122").
				WithDetail("routes[" + strconv.Itoa(i) + "]: " + err.Error()).
				Wrap(err)
		}
		if r.Target == "" || r.URL == "" {
			return errors.New("E122").
				WithDetail("routes[" + strconv.Itoa(i) + "] needs both target and url")
		}
	}
	return nil
}

// Address returns the listen address.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// URL returns the base URL of the server.
func (c *Config) URL() string {
	return "http://" + c.Address()
}

// PartialTimeout returns the parsed partial timeout, or the default when
// it does not parse.
func (c *Config) PartialTimeout() time.Duration {
	d, err := time.ParseDuration(c.Partials.Timeout)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultPartialTimeout)
	}
	return d
}

// PartialRoot returns the file partial root, relative to the config file.
func (c *Config) PartialRoot() string {
	if c.Partials.Root == "" || filepath.IsAbs(c.Partials.Root) {
		return c.Partials.Root
	}
	return filepath.Join(c.Dir(), c.Partials.Root)
}

// StaticDir returns the static directory, relative to the config file.
func (c *Config) StaticDir() string {
	if c.Server.Static == "" || filepath.IsAbs(c.Server.Static) {
		return c.Server.Static
	}
	return filepath.Join(c.Dir(), c.Server.Static)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the directory containing
// fragment.json.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E121").
				WithDetail("No fragment.json found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working
// directory or its nearest parent containing fragment.json.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
