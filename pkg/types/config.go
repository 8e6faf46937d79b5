package types

import (
	"errors"
	"net/url"
	"strings"
)

// Config holds the process-wide settings the client and composables are
// built from. It is resolved once at startup and passed by value.
type Config struct {
	Server        string `json:"server" yaml:"server"`
	APIBase       string `json:"api_base" yaml:"api_base"`
	DataDir       string `json:"data_dir" yaml:"data_dir"`
	LogLevel      string `json:"log_level" yaml:"log_level"`
	LogFormat     string `json:"log_format" yaml:"log_format"`
	SearchDelayMS int    `json:"search_delay_ms" yaml:"search_delay_ms"`
}

// Defaults applied when a key is absent from config.yaml and the environment.
const (
	DefaultAPIBase       = "/api"
	DefaultLogLevel      = "warn"
	DefaultLogFormat     = "text"
	DefaultSearchDelayMS = 300
)

// Config validation errors.
var (
	ErrServerEmpty      = errors.New("server must be set when api_base is a relative path")
	ErrServerInvalid    = errors.New("server must be an absolute http(s) URL")
	ErrLogFormatUnknown = errors.New("unknown log format")
)

// Validate checks that the Config can produce a usable base URL.
func (c Config) Validate() error {
	if _, err := c.BaseURL(); err != nil {
		return err
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return ErrLogFormatUnknown
	}
	return nil
}

// BaseURL returns the effective API base. An absolute api_base wins;
// otherwise the base path is appended to the server origin. The trailing
// slash is stripped so endpoint paths can be concatenated directly.
func (c Config) BaseURL() (string, error) {
	base := c.APIBase
	if base == "" {
		base = DefaultAPIBase
	}
	if isAbsoluteHTTP(base) {
		return strings.TrimRight(base, "/"), nil
	}
	if c.Server == "" {
		return "", ErrServerEmpty
	}
	if !isAbsoluteHTTP(c.Server) {
		return "", ErrServerInvalid
	}
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	return strings.TrimRight(strings.TrimRight(c.Server, "/")+base, "/"), nil
}

func isAbsoluteHTTP(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
