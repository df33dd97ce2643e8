package workflowy

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/hashicorp/go-hclog"
)

const (
	// DefaultBaseURL is the Workflowy REST API root.
	DefaultBaseURL = "https://workflowy.com/api/v1/"

	// DefaultUserAgent is sent with every request.
	DefaultUserAgent = "workflowy-go/0.1"

	// DefaultTimeout bounds every request.
	DefaultTimeout = 30 * time.Second
)

// Config contains configuration for the Workflowy client.
//
// Example configuration (HCL):
//
//	workflowy {
//	  api_key    = env("WORKFLOWY_APIKEY")
//	  base_url   = "https://workflowy.com/api/v1/"
//	  timeout    = "30s"
//	  tls_verify = true
//	}
type Config struct {
	// APIKey is sent as a Bearer token.
	APIKey string `json:"-"` // Don't marshal the key to JSON

	// BaseURL is the API root. Default: DefaultBaseURL.
	BaseURL string `json:"baseUrl"`

	// UserAgent is the fixed user agent. Default: DefaultUserAgent.
	UserAgent string `json:"userAgent,omitempty"`

	// Timeout for API requests. Default: 30 seconds.
	Timeout time.Duration `json:"timeout,omitempty"`

	// TLSVerify controls TLS certificate verification.
	// Set to false only for development/testing with self-signed certs.
	TLSVerify *bool `json:"tlsVerify,omitempty"`

	// Logger is optional.
	Logger hclog.Logger `json:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	tlsVerify := true
	return &Config{
		BaseURL:   DefaultBaseURL,
		UserAgent: DefaultUserAgent,
		Timeout:   DefaultTimeout,
		TLSVerify: &tlsVerify,
	}
}

// applyDefaults fills unset fields from DefaultConfig.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.BaseURL == "" {
		c.BaseURL = defaults.BaseURL
	}
	if c.UserAgent == "" {
		c.UserAgent = defaults.UserAgent
	}
	if c.Timeout == 0 {
		c.Timeout = defaults.Timeout
	}
	if c.TLSVerify == nil {
		c.TLSVerify = defaults.TLSVerify
	}
	if c.Logger == nil {
		c.Logger = hclog.NewNullLogger()
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.APIKey, validation.Required),
		validation.Field(&c.BaseURL, validation.Required, is.URL,
			validation.By(httpScheme)),
		validation.Field(&c.Timeout, validation.Min(time.Millisecond)),
	)
	if err != nil {
		return fmt.Errorf("invalid workflowy config: %w", err)
	}
	return nil
}

func httpScheme(value interface{}) error {
	s, _ := value.(string)
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return fmt.Errorf("must use http or https scheme")
	}
	return nil
}

// NewHTTPClient creates a configured HTTP client for the API.
func (c *Config) NewHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	// Configure TLS verification
	if c.TLSVerify != nil && !*c.TLSVerify {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	return &http.Client{
		Timeout:   c.Timeout,
		Transport: transport,
	}
}
