package scanner

import (
	"time"

	"github.com/sitesentry/sitesentry/internal/logger"
	"github.com/sitesentry/sitesentry/internal/metrics"
	"github.com/sitesentry/sitesentry/internal/ratelimit"
	"github.com/sitesentry/sitesentry/internal/state"
)

// Option is a functional option for configuring the Scanner.
type Option func(*Scanner) error

// WithSeed sets the starting URL.
func WithSeed(url string) Option {
	return func(s *Scanner) error {
		s.config.Seed = url
		return nil
	}
}

// WithMaxDepth sets the link depth ceiling.
func WithMaxDepth(depth int) Option {
	return func(s *Scanner) error {
		if depth < 0 {
			depth = 0
		}
		s.config.MaxDepth = depth
		return nil
	}
}

// WithMaxPages sets the page ceiling.
func WithMaxPages(n int) Option {
	return func(s *Scanner) error {
		if n < 1 {
			n = 1
		}
		s.config.MaxPages = n
		return nil
	}
}

// WithMaxRetries sets inspection attempts per page.
func WithMaxRetries(n int) Option {
	return func(s *Scanner) error {
		if n < 1 {
			n = 1
		}
		s.config.MaxRetries = n
		return nil
	}
}

// WithRetryDelay sets the pause between inspection attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(s *Scanner) error {
		s.config.RetryDelay = d
		return nil
	}
}

// WithInspector sets the page inspector. Required unless running
// against a config that builds the browser stack itself.
func WithInspector(ins PageInspector) Option {
	return func(s *Scanner) error {
		s.inspector = ins
		return nil
	}
}

// WithProgress sets the progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(s *Scanner) error {
		s.progress = fn
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(s *Scanner) error {
		s.log = log
		return nil
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(s *Scanner) error {
		s.metrics = m
		return nil
	}
}

// WithPacer sets the inter-page pacer.
func WithPacer(p *ratelimit.Pacer) Option {
	return func(s *Scanner) error {
		s.pacer = p
		return nil
	}
}

// WithStateStore enables periodic state persistence for resume.
func WithStateStore(store state.Store) Option {
	return func(s *Scanner) error {
		s.store = store
		return nil
	}
}

// WithConfig replaces the whole configuration.
func WithConfig(cfg *Config) Option {
	return func(s *Scanner) error {
		if cfg != nil {
			s.config = cfg
		}
		return nil
	}
}
