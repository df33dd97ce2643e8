package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/spf13/afero"

	"github.com/hashicorp-forge/workflowy/pkg/workflowy"
)

const (
	// DefaultAddr is the default listen address of the proxy server.
	DefaultAddr = "127.0.0.1:8000"

	// DefaultBasePath is the default path prefix of the proxy routes.
	DefaultBasePath = "/WFAPI"

	// DefaultLogLevel is used when log_level is not set.
	DefaultLogLevel = "info"
)

// Environment variables that override the configuration file.
const (
	EnvAPIKey    = "WORKFLOWY_APIKEY"
	EnvBaseURL   = "WORKFLOWY_BASE_URL"
	EnvTimeout   = "WORKFLOWY_TIMEOUT"
	EnvTLSVerify = "WORKFLOWY_TLS_VERIFY"
	EnvAddr      = "WORKFLOWY_ADDR"
	EnvLogLevel  = "WORKFLOWY_LOG_LEVEL"
)

// Config contains the workflowy configuration.
type Config struct {
	// LogLevel is the level of the root logger (trace, debug, info, warn,
	// error).
	LogLevel string `hcl:"log_level,optional"`

	// Workflowy configures the API client.
	Workflowy *Workflowy `hcl:"workflowy,block"`

	// Server configures the proxy server.
	Server *Server `hcl:"server,block"`
}

// Workflowy configures the API client.
type Workflowy struct {
	// APIKey is the bearer token sent with every request.
	APIKey string `hcl:"api_key,optional"`

	// BaseURL is the API root, such as "https://workflowy.com/api/v1/".
	BaseURL string `hcl:"base_url,optional"`

	// Timeout is the per-request timeout as a duration string ("30s").
	Timeout string `hcl:"timeout,optional"`

	UserAgent string `hcl:"user_agent,optional"`

	// TLSVerify disables certificate verification when set to false.
	TLSVerify *bool `hcl:"tls_verify,optional"`
}

// Server configures the proxy server.
type Server struct {
	// Addr is the listen address.
	Addr string `hcl:"addr,optional"`

	// BasePath prefixes every proxy route.
	BasePath string `hcl:"base_path,optional"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the HCL configuration file at path from fs. An empty path
// returns the defaults. Environment overrides are not applied.
func Load(fs afero.Fs, path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, fmt.Errorf("error checking configuration file: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("configuration file not found: %s", path)
	}

	src, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("error reading configuration file: %w", err)
	}

	cfg := &Config{}
	// hclsimple picks the syntax from the file extension.
	if err := hclsimple.Decode(filepath.Base(path), src, nil, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}

	if c.Workflowy == nil {
		c.Workflowy = &Workflowy{}
	}
	if c.Workflowy.BaseURL == "" {
		c.Workflowy.BaseURL = workflowy.DefaultBaseURL
	}
	if c.Workflowy.Timeout == "" {
		c.Workflowy.Timeout = workflowy.DefaultTimeout.String()
	}
	if c.Workflowy.UserAgent == "" {
		c.Workflowy.UserAgent = workflowy.DefaultUserAgent
	}

	if c.Server == nil {
		c.Server = &Server{}
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.BasePath == "" {
		c.Server.BasePath = DefaultBasePath
	}
}

// ApplyEnv overrides configuration values with the WORKFLOWY_* environment
// variables that are set.
func (c *Config) ApplyEnv() error {
	c.applyDefaults()

	if val, ok := os.LookupEnv(EnvAPIKey); ok {
		c.Workflowy.APIKey = val
	}
	if val, ok := os.LookupEnv(EnvBaseURL); ok {
		c.Workflowy.BaseURL = val
	}
	if val, ok := os.LookupEnv(EnvTimeout); ok {
		c.Workflowy.Timeout = val
	}
	if val, ok := os.LookupEnv(EnvTLSVerify); ok {
		verify, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", EnvTLSVerify, err)
		}
		c.Workflowy.TLSVerify = &verify
	}
	if val, ok := os.LookupEnv(EnvAddr); ok {
		c.Server.Addr = val
	}
	if val, ok := os.LookupEnv(EnvLogLevel); ok {
		c.LogLevel = val
	}

	return nil
}

// Validate validates the configuration, reporting every problem found.
func (c *Config) Validate() error {
	c.applyDefaults()

	var result *multierror.Error

	if err := validation.Validate(c.LogLevel, validation.By(logLevel)); err != nil {
		result = multierror.Append(result, fmt.Errorf("log_level: %w", err))
	}

	if err := validation.ValidateStruct(c.Workflowy,
		validation.Field(&c.Workflowy.APIKey, validation.Required.Error(
			fmt.Sprintf("is required (set api_key or %s)", EnvAPIKey))),
		validation.Field(&c.Workflowy.BaseURL, validation.Required, is.URL),
		validation.Field(&c.Workflowy.Timeout, validation.Required, validation.By(duration)),
	); err != nil {
		result = multierror.Append(result, fmt.Errorf("workflowy: %w", err))
	}

	if err := validation.ValidateStruct(c.Server,
		validation.Field(&c.Server.Addr, validation.Required),
		validation.Field(&c.Server.BasePath, validation.By(basePath)),
	); err != nil {
		result = multierror.Append(result, fmt.Errorf("server: %w", err))
	}

	return result.ErrorOrNil()
}

// ClientConfig converts the workflowy block into a client configuration.
func (c *Config) ClientConfig(logger hclog.Logger) (*workflowy.Config, error) {
	c.applyDefaults()

	timeout, err := time.ParseDuration(c.Workflowy.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid workflowy timeout: %w", err)
	}

	return &workflowy.Config{
		APIKey:    c.Workflowy.APIKey,
		BaseURL:   c.Workflowy.BaseURL,
		UserAgent: c.Workflowy.UserAgent,
		Timeout:   timeout,
		TLSVerify: c.Workflowy.TLSVerify,
		Logger:    logger,
	}, nil
}

// NormalizedBasePath returns the server base path with a leading slash and no
// trailing slash. The root path is returned as "".
func (c *Config) NormalizedBasePath() string {
	c.applyDefaults()

	p := strings.Trim(strings.TrimSpace(c.Server.BasePath), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}

func logLevel(value any) error {
	s, _ := value.(string)
	if hclog.LevelFromString(s) == hclog.NoLevel {
		return fmt.Errorf("unknown log level %q", s)
	}
	return nil
}

func duration(value any) error {
	s, _ := value.(string)
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("must be a duration such as \"30s\"")
	}
	if d <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}

func basePath(value any) error {
	s, _ := value.(string)
	if strings.ContainsAny(s, " ?#{}") {
		return fmt.Errorf("must be a plain URL path")
	}
	return nil
}
