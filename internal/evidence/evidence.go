// Package evidence captures and files screenshot artifacts for findings.
package evidence

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sitesentry/sitesentry/internal/browser"
	"github.com/sitesentry/sitesentry/internal/logger"
	"github.com/sitesentry/sitesentry/pkg/findings"
)

// Collector writes screenshots into a per-scan evidence directory and
// keeps track of what it has written.
type Collector struct {
	dir string
	log *logger.Logger

	mu        sync.Mutex
	artifacts []string
}

// NewCollector creates the evidence directory if needed.
func NewCollector(dir string, log *logger.Logger) (*Collector, error) {
	if dir == "" {
		dir = "evidence"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create evidence dir %s: %w", dir, err)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Collector{dir: dir, log: log}, nil
}

// Dir returns the evidence directory path.
func (c *Collector) Dir() string {
	return c.dir
}

// Sub returns a collector rooted at a named subdirectory, used to keep
// each page's artifacts apart.
func (c *Collector) Sub(name string) (*Collector, error) {
	return NewCollector(filepath.Join(c.dir, sanitize(name)), c.log)
}

// CaptureBaseline screenshots the page as it first renders in a viewport.
// Failures are logged and reported as an empty path, never fatal.
func (c *Collector) CaptureBaseline(page browser.Page, viewport findings.Viewport) string {
	name := fmt.Sprintf("baseline_%s.png", sanitize(viewport.Name))
	return c.capture(page, name)
}

// CaptureForFinding screenshots the page state that produced a finding.
func (c *Collector) CaptureForFinding(page browser.Page, findingID string) string {
	name := fmt.Sprintf("%s.png", sanitize(findingID))
	return c.capture(page, name)
}

func (c *Collector) capture(page browser.Page, name string) string {
	data, err := page.Screenshot(true)
	if err != nil {
		c.log.Debugf("screenshot failed for %s: %v", name, err)
		return ""
	}

	path := filepath.Join(c.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		c.log.Debugf("write screenshot %s: %v", path, err)
		return ""
	}

	c.mu.Lock()
	c.artifacts = append(c.artifacts, path)
	c.mu.Unlock()

	return path
}

// Artifacts returns the paths written so far.
func (c *Collector) Artifacts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.artifacts))
	copy(out, c.artifacts)
	return out
}

// sanitize keeps file names shell and filesystem safe.
func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "artifact"
	}
	return b.String()
}
