// Package output writes scan reports as JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// JSONWriter serializes reports to an io.Writer.
type JSONWriter struct {
	mu     sync.Mutex
	writer io.Writer
	pretty bool
}

// NewJSONWriter creates a writer. pretty enables two-space indentation.
func NewJSONWriter(w io.Writer, pretty bool) *JSONWriter {
	return &JSONWriter{writer: w, pretty: pretty}
}

// WriteReport serializes report and writes it followed by a newline.
func (j *JSONWriter) WriteReport(report interface{}) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	var data []byte
	var err error
	if j.pretty {
		data, err = json.MarshalIndent(report, "", "  ")
	} else {
		data, err = json.Marshal(report)
	}
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if _, err := j.writer.Write(data); err != nil {
		return err
	}
	_, err = j.writer.Write([]byte("\n"))
	return err
}

// WriteReportFile writes the report to path via a temp file and rename,
// so a crash mid-write never leaves a truncated report behind.
func WriteReportFile(path string, report interface{}, pretty bool) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".report-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := NewJSONWriter(tmp, pretty).WriteReport(report); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}
