package base

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/spf13/afero"

	"github.com/hashicorp-forge/workflowy/internal/config"
	"github.com/hashicorp-forge/workflowy/pkg/workflowy"
)

// EnvConfig names the configuration file when -config is not set.
const EnvConfig = "WORKFLOWY_CONFIG"

// Command is embedded by every CLI command.
type Command struct {
	UI  cli.Ui
	Log hclog.Logger

	// Fs is the filesystem configuration files are read from.
	Fs afero.Fs
}

// NewCommand returns a Command reading from the OS filesystem.
func NewCommand(log hclog.Logger, ui cli.Ui) *Command {
	return &Command{
		UI:  ui,
		Log: log,
		Fs:  afero.NewOsFs(),
	}
}

// ConfigFlags are the flags shared by commands that call the API.
type ConfigFlags struct {
	ConfigPath string
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	LogLevel   string
}

// Register adds the flags to f.
func (cf *ConfigFlags) Register(f *FlagSet) {
	f.StringVar(
		&cf.ConfigPath, "config", "",
		"["+EnvConfig+"] Path to the HCL configuration file",
	)
	f.StringVar(
		&cf.APIKey, "api-key", "",
		fmt.Sprintf("[%s] Workflowy API key", config.EnvAPIKey),
	)
	f.StringVar(
		&cf.BaseURL, "base-url", "",
		fmt.Sprintf("[%s] Workflowy API base URL", config.EnvBaseURL),
	)
	f.DurationVar(
		&cf.Timeout, "timeout", 0,
		fmt.Sprintf("[%s] Per-request timeout", config.EnvTimeout),
	)
	f.StringVar(
		&cf.LogLevel, "log-level", "",
		fmt.Sprintf("[%s] Log level (trace, debug, info, warn, error)", config.EnvLogLevel),
	)
}

// LoadConfig loads the configuration file, then applies environment variables
// and finally flags, and validates the result.
func (c *Command) LoadConfig(cf *ConfigFlags) (*config.Config, error) {
	path := cf.ConfigPath
	if path == "" {
		path = os.Getenv(EnvConfig)
	}

	fs := c.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	cfg, err := config.Load(fs, path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if cf.APIKey != "" {
		cfg.Workflowy.APIKey = cf.APIKey
	}
	if cf.BaseURL != "" {
		cfg.Workflowy.BaseURL = cf.BaseURL
	}
	if cf.Timeout != 0 {
		cfg.Workflowy.Timeout = cf.Timeout.String()
	}
	if cf.LogLevel != "" {
		cfg.LogLevel = cf.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Log != nil {
		c.Log.SetLevel(hclog.LevelFromString(cfg.LogLevel))
	}
	return cfg, nil
}

// NewClient creates an API client from cfg.
func (c *Command) NewClient(cfg *config.Config) (*workflowy.Client, error) {
	clientCfg, err := cfg.ClientConfig(c.Log)
	if err != nil {
		return nil, err
	}

	client, err := workflowy.NewClient(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("error creating workflowy client: %w", err)
	}
	return client, nil
}
