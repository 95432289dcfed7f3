package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/museumsvictoria/nodel-sub003/internal/logging"
	"github.com/viant/afs"
	"github.com/viant/fluxor"
	mcp "github.com/viant/mcp"
	"github.com/viant/x"
	"gopkg.in/yaml.v3"
)

const (
	DefaultHTTPAddr        = ":8085"
	DefaultShutdownTimeout = 5 * time.Second
)

// DefaultBuiltins are the fluxor services enabled when Builtins is unset.
var DefaultBuiltins = []string{"nop", "printer"}

// Group holds items either inline or behind a URL.
type Group[T any] struct {
	URL   string `yaml:"url,omitempty" json:"url,omitempty" short:"u" long:"url" description:"url"`
	Items []T    `yaml:"items,omitempty" json:"items,omitempty" short:"i" long:"items" description:"items"`
}

type Config struct {
	HTTP  HTTP          `yaml:"http,omitempty" json:"http,omitempty"`
	Log   Log           `yaml:"log,omitempty" json:"log,omitempty"`
	MCP   MCP           `yaml:"mcp,omitempty" json:"mcp,omitempty"`
	Nodes *Group[*Node] `yaml:"nodes,omitempty" json:"nodes,omitempty"`

	// Builtins selects the fluxor built-in action services available to
	// workflows: "*" for all, "system/" style prefixes or exact names.
	Builtins []string `yaml:"builtins,omitempty" json:"builtins,omitempty" env:"NODEL_BUILTINS"`

	// DisableValidation turns off argument checks against binding schemas.
	DisableValidation bool `yaml:"disableValidation,omitempty" json:"disableValidation,omitempty" env:"NODEL_DISABLE_VALIDATION"`

	WorkflowOptions []fluxor.Option `yaml:"-" json:"-"`
	ExtensionTypes  []*x.Type       `yaml:"-" json:"-"`
}

type HTTP struct {
	Addr               string `yaml:"addr,omitempty" json:"addr,omitempty" env:"NODEL_HTTP_ADDR"`
	ShutdownTimeoutSec int    `yaml:"shutdownTimeoutSec,omitempty" json:"shutdownTimeoutSec,omitempty" env:"NODEL_HTTP_SHUTDOWN_TIMEOUT"`
}

// ShutdownTimeout returns the graceful shutdown budget.
func (h HTTP) ShutdownTimeout() time.Duration {
	if h.ShutdownTimeoutSec <= 0 {
		return DefaultShutdownTimeout
	}
	return time.Duration(h.ShutdownTimeoutSec) * time.Second
}

type Log struct {
	Level  string `yaml:"level,omitempty" json:"level,omitempty" env:"NODEL_LOG_LEVEL"`
	Format string `yaml:"format,omitempty" json:"format,omitempty" env:"NODEL_LOG_FORMAT"`
}

// MCP controls the MCP front end exposing actions as tools.
type MCP struct {
	Enabled bool               `yaml:"enabled,omitempty" json:"enabled,omitempty" env:"NODEL_MCP_ENABLED"`
	Server  *mcp.ServerOptions `yaml:"server,omitempty" json:"server,omitempty"`
}

// Load reads a YAML (or JSON) configuration from a local path or any URL
// supported by afs.
func Load(ctx context.Context, URL string) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", URL, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", URL, err)
	}
	return &cfg, nil
}

// ApplyEnv overrides fields from NODEL_* environment variables.
func (c *Config) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Init fills in defaults for unset fields.
func (c *Config) Init() {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = DefaultHTTPAddr
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = logging.FormatText
	}
	if c.Builtins == nil {
		c.Builtins = append([]string{}, DefaultBuiltins...)
	}
}

func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log config: %w", err)
	}
	switch c.Log.Format {
	case "", logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("invalid log config: unsupported format %q", c.Log.Format)
	}
	if c.HTTP.ShutdownTimeoutSec < 0 {
		return fmt.Errorf("invalid http config: negative shutdown timeout")
	}
	if c.Nodes != nil {
		if err := validateNodes(c.Nodes.Items); err != nil {
			return err
		}
	}
	return nil
}

// LoadNodes resolves node definitions either embedded directly in the config
// or referenced via URL.
func (c *Config) LoadNodes(ctx context.Context) ([]*Node, error) {
	if c.Nodes == nil {
		return nil, nil
	}
	if len(c.Nodes.Items) > 0 {
		return c.Nodes.Items, nil
	}
	if c.Nodes.URL == "" {
		return nil, nil
	}
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, c.Nodes.URL)
	if err != nil {
		return nil, fmt.Errorf("download nodes config %q: %w", c.Nodes.URL, err)
	}
	var out []*Node
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse nodes config %q: %w", c.Nodes.URL, err)
	}
	if err := validateNodes(out); err != nil {
		return nil, fmt.Errorf("nodes config %q: %w", c.Nodes.URL, err)
	}
	return out, nil
}
