package htmltree

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
)

// Output formats.
const (
	FormatText = "text"
	FormatTOML = "toml"
)

// Parse modes.
const (
	ParseModeLiteral = "literal"
	ParseModeHTML5   = "html5"
)

// Config holds application settings. Struct tags match the keys used in
// config files, env vars and flags.
type Config struct {
	// HTTP
	HTTPTimeout       time.Duration     `toml:"timeout" mapstructure:"timeout"`
	HTTPUserAgent     string            `toml:"user_agent" mapstructure:"user_agent"`
	HTTPMaxRetries    int               `toml:"max_retries" mapstructure:"max_retries"`
	HTTPRetryDelay    time.Duration     `toml:"retry_delay" mapstructure:"retry_delay"`
	HTTPCustomHeaders map[string]string `toml:"header" mapstructure:"header"`

	// Parsing and selection
	ParseMode string `toml:"parse_mode" mapstructure:"parse_mode"`
	Selector  string `toml:"select" mapstructure:"select"`
	XPath     string `toml:"xpath" mapstructure:"xpath"`

	// Rendering
	MaxDepth int    `toml:"max_depth" mapstructure:"max_depth"`
	Format   string `toml:"format" mapstructure:"format"`

	// Page cache
	CacheEnableCache bool   `toml:"enable_cache" mapstructure:"enable_cache"`
	CacheDir         string `toml:"cache_dir" mapstructure:"cache_dir"`
}

// NewDefaultConfig returns the built-in defaults.
func NewDefaultConfig() *Config {
	return &Config{
		HTTPTimeout:       30 * time.Second,
		HTTPUserAgent:     "Mozilla/5.0 (compatible; htmltree/1.0; +https://github.com/fdkevin0/htmltree)",
		HTTPMaxRetries:    2,
		HTTPRetryDelay:    2 * time.Second,
		HTTPCustomHeaders: make(map[string]string),
		ParseMode:         ParseModeLiteral,
		Format:            FormatText,
		CacheEnableCache:  true,
		CacheDir:          DefaultPageStoreDir(),
	}
}

// HTTPOptions converts the HTTP part of the config for the fetcher.
func (c *Config) HTTPOptions() *HTTPOptions {
	return &HTTPOptions{
		Timeout:       c.HTTPTimeout,
		UserAgent:     c.HTTPUserAgent,
		MaxRetries:    c.HTTPMaxRetries,
		RetryDelay:    c.HTTPRetryDelay,
		CustomHeaders: c.HTTPCustomHeaders,
	}
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if c.HTTPTimeout <= 0 {
		return NewValidationError("timeout must be greater than 0")
	}
	if c.HTTPMaxRetries < 0 {
		return NewValidationError("max-retries must not be negative")
	}
	if c.HTTPRetryDelay < 0 {
		return NewValidationError("retry-delay must not be negative")
	}
	if c.MaxDepth < 0 {
		return NewValidationError("max-depth must not be negative")
	}
	if !lo.Contains([]string{FormatText, FormatTOML}, c.Format) {
		return NewValidationError(fmt.Sprintf("unsupported format %q (want %s or %s)", c.Format, FormatText, FormatTOML))
	}
	if !lo.Contains([]string{ParseModeLiteral, ParseModeHTML5}, c.ParseMode) {
		return NewValidationError(fmt.Sprintf("unsupported parse mode %q (want %s or %s)", c.ParseMode, ParseModeLiteral, ParseModeHTML5))
	}
	if strings.TrimSpace(c.Selector) != "" && strings.TrimSpace(c.XPath) != "" {
		return NewValidationError("--select and --xpath cannot be used together")
	}
	return nil
}
