// Package findings defines the data model shared by the inspector, the
// explorer, and the crawl report: findings, their evidence, and the
// reproduction trail that led to them.
package findings

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// Category classifies what kind of defect a finding describes.
type Category string

// Finding categories.
const (
	CategoryUI            Category = "UI"
	CategoryAccessibility Category = "Accessibility"
	CategoryLogic         Category = "Logic"
)

// Severity indicates how serious a finding is. Severity is assigned by the
// producing check or analyzer and never recomputed downstream.
type Severity string

// Finding severities.
const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ActionKind is the type of a recorded reproduction action.
type ActionKind string

// Reproduction action kinds.
const (
	ActionNavigate       ActionKind = "navigate"
	ActionClick          ActionKind = "click"
	ActionFill           ActionKind = "fill"
	ActionScroll         ActionKind = "scroll"
	ActionViewportChange ActionKind = "viewport-change"
	ActionWait           ActionKind = "wait"
)

// Evidence holds optional supporting material for a finding. Absence of any
// field is valid, never an error.
type Evidence struct {
	ScreenshotPath string   `json:"screenshotPath,omitempty"`
	ConsoleLog     string   `json:"consoleLog,omitempty"`
	WCAGRefs       []string `json:"wcagRefs,omitempty"`
	ViewportLabel  string   `json:"viewportLabel,omitempty"`
	ActionLog      string   `json:"actionLog,omitempty"`
}

// ReproStep is one entry in the append-only reproduction log. Index is
// monotonically increasing within one exploration session.
type ReproStep struct {
	Index         int        `json:"index"`
	ActionKind    ActionKind `json:"actionKind"`
	Target        string     `json:"target,omitempty"`
	Value         string     `json:"value,omitempty"`
	Description   string     `json:"description"`
	Timestamp     time.Time  `json:"timestamp"`
	ViewportLabel string     `json:"viewportLabel,omitempty"`
}

// Finding is a single detected defect. Every finding belongs to exactly one
// page.
type Finding struct {
	ID                string      `json:"id"`
	Category          Category    `json:"category"`
	Severity          Severity    `json:"severity"`
	PageURL           string      `json:"pageUrl"`
	Summary           string      `json:"summary"`
	SuggestedFix      string      `json:"suggestedFix,omitempty"`
	Evidence          Evidence    `json:"evidence"`
	ReproductionSteps []ReproStep `json:"reproductionSteps"`
}

// PageResult is produced once per inspected page. It is owned by the frontier
// manager after return and never mutated by the explorer afterward.
type PageResult struct {
	URL               string             `json:"url"`
	HTTPStatus        int                `json:"httpStatus"`
	Outlinks          []string           `json:"outlinks"`
	Findings          []Finding          `json:"findings"`
	Timings           map[string]float64 `json:"timings"`
	ViewportArtifacts []string           `json:"viewportArtifacts"`
}

// Viewport is a named screen-size configuration the page is resized to
// during exploration.
type Viewport struct {
	Name   string
	Width  int
	Height int
}

// Label returns the conventional "WxH" form used in evidence and step logs.
func (v Viewport) Label() string {
	return fmt.Sprintf("%dx%d", v.Width, v.Height)
}

// DefaultViewports returns the fixed exploration sequence: desktop,
// tablet, mobile, in that order. A fresh slice is returned so callers
// can truncate or reorder their copy safely.
func DefaultViewports() []Viewport {
	return []Viewport{
		{Name: "desktop", Width: 1280, Height: 800},
		{Name: "tablet", Width: 768, Height: 1024},
		{Name: "mobile", Width: 375, Height: 667},
	}
}

// NewID returns a random 16-byte hex identifier for a finding.
func NewID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		// Fall back to a timestamp-derived id; collisions are acceptable
		// in the degenerate no-entropy case.
		return hex.EncodeToString([]byte(time.Now().Format(time.RFC3339Nano)))[:32]
	}
	return hex.EncodeToString(b[:])
}
