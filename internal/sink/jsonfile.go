// Package sink delivers harvest snapshots to their destinations. Every sink
// receives the same pre-stringified tabular snapshot and fails independently
// of the others.
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// rowObjects pairs each row with the header to produce JSON-ready objects.
func rowObjects(header []string, rows [][]string) []map[string]string {
	objects := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		obj := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(row) {
				obj[col] = row[i]
			}
		}
		objects = append(objects, obj)
	}
	return objects
}

// JSONFile writes the snapshot as an array of objects to a local file,
// replacing the previous snapshot atomically.
type JSONFile struct {
	path string
}

// NewJSONFile creates the sink, making the parent directory if needed.
func NewJSONFile(path string) (*JSONFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create json sink directory: %w", err)
	}
	return &JSONFile{path: path}, nil
}

// Name identifies the sink in status reports.
func (s *JSONFile) Name() string { return "jsonfile" }

// Path returns the destination file.
func (s *JSONFile) Path() string { return s.path }

// Publish writes the full snapshot. The temp-then-rename dance means a crash
// mid-write leaves the previous snapshot intact.
func (s *JSONFile) Publish(_ context.Context, header []string, rows [][]string) error {
	payload, err := json.MarshalIndent(rowObjects(header, rows), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".snapshot-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace json snapshot: %w", err)
	}
	return nil
}
