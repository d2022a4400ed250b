package types

import (
	"errors"
	"time"
)

// Upstream defaults, matching the public registry's v2 API limits.
const (
	DefaultBaseURL   = "https://clinicaltrials.gov/api/v2/studies"
	DefaultPageSize  = 1000
	DefaultPageDelay = 500 * time.Millisecond
	DefaultRetryWait = 60 * time.Second
	DefaultTimeout   = 30 * time.Second

	DefaultListenAddr = ":8080"
)

// Config validation errors.
var (
	ErrDataDirEmpty    = errors.New("data_dir must not be empty")
	ErrBaseURLEmpty    = errors.New("base_url must not be empty")
	ErrPageSizeInvalid = errors.New("page_size must be positive")
	ErrDelayNegative   = errors.New("delay intervals must not be negative")
	ErrTimeoutInvalid  = errors.New("timeout must be positive")
	ErrEmptyNCTID      = errors.New("trial identifier must not be empty")
)

// FetchConfig holds the upstream client parameters. It is passed explicitly
// to the registry client at construction; nothing reads it ambiently.
type FetchConfig struct {
	BaseURL   string        `json:"base_url" yaml:"base_url"`
	PageSize  int           `json:"page_size" yaml:"page_size"`
	PageDelay time.Duration `json:"page_delay" yaml:"page_delay"` // between successful pages
	RetryWait time.Duration `json:"retry_wait" yaml:"retry_wait"` // after a 429
	Timeout   time.Duration `json:"timeout" yaml:"timeout"`       // per-request HTTP timeout
}

// Config is the full process configuration: storage location, read API
// listen address, and upstream fetch parameters.
type Config struct {
	DataDir    string      `json:"data_dir" yaml:"data_dir"`
	ListenAddr string      `json:"listen_addr" yaml:"listen_addr"`
	Fetch      FetchConfig `json:"fetch" yaml:"fetch"`
}

// DefaultConfig returns a Config with upstream defaults filled in and an
// empty DataDir; callers resolve the data directory separately.
func DefaultConfig() Config {
	return Config{
		ListenAddr: DefaultListenAddr,
		Fetch: FetchConfig{
			BaseURL:   DefaultBaseURL,
			PageSize:  DefaultPageSize,
			PageDelay: DefaultPageDelay,
			RetryWait: DefaultRetryWait,
			Timeout:   DefaultTimeout,
		},
	}
}

// Validate checks that the Config is well-formed, returning a sentinel
// error from this package on the first failure found.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return ErrDataDirEmpty
	}
	return c.Fetch.Validate()
}

// Validate checks the upstream client parameters.
func (f FetchConfig) Validate() error {
	if f.BaseURL == "" {
		return ErrBaseURLEmpty
	}
	if f.PageSize <= 0 {
		return ErrPageSizeInvalid
	}
	if f.PageDelay < 0 || f.RetryWait < 0 {
		return ErrDelayNegative
	}
	if f.Timeout <= 0 {
		return ErrTimeoutInvalid
	}
	return nil
}
