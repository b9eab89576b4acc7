package scanner

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sitesentry/sitesentry/internal/browser"
	"github.com/sitesentry/sitesentry/internal/inspect"
)

// Config holds scan configuration.
type Config struct {
	// Seed is the starting URL.
	Seed string `json:"seed" yaml:"seed"`

	// MaxDepth is the link depth ceiling from the seed.
	MaxDepth int `json:"max_depth" yaml:"max_depth"`

	// MaxPages is the hard page ceiling for a single scan.
	MaxPages int `json:"max_pages" yaml:"max_pages"`

	// MaxRetries bounds inspection attempts per page.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// RetryDelay is the fixed pause between inspection attempts.
	RetryDelay time.Duration `json:"retry_delay" yaml:"retry_delay"`

	// RateLimit is the maximum page inspections per second. Defaults
	// to one page per second; zero disables pacing.
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit"`

	// EvidenceDir is where screenshots are filed.
	EvidenceDir string `json:"evidence_dir" yaml:"evidence_dir"`

	// StateFile enables resumable scans when non-empty.
	StateFile string `json:"state_file" yaml:"state_file"`

	// Browser configures the headless browser.
	Browser browser.Config `json:"browser" yaml:"browser"`

	// Inspect configures per-page inspection.
	Inspect inspect.Config `json:"inspect" yaml:"inspect"`

	// Verbose enables info-level logging; Debug enables everything.
	Verbose bool `json:"verbose" yaml:"verbose"`
	Debug   bool `json:"debug" yaml:"debug"`
}

// DefaultConfig returns the scan defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxDepth:    3,
		MaxPages:    50,
		MaxRetries:  3,
		RetryDelay:  500 * time.Millisecond,
		RateLimit:   1,
		EvidenceDir: "evidence",
		Browser:     browser.DefaultConfig(),
		Inspect:     inspect.DefaultConfig(),
	}
}

// LoadFromFile reads configuration from a YAML or JSON file, layered
// over the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()

	if err := yaml.Unmarshal(data, config); err != nil {
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	return config, nil
}

// Validate checks the configuration for usability.
func (c *Config) Validate() error {
	if c.Seed == "" {
		return fmt.Errorf("seed URL is required")
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max depth must not be negative")
	}
	if c.MaxPages < 1 {
		return fmt.Errorf("max pages must be at least 1")
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max retries must be at least 1")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must not be negative")
	}
	return nil
}
