// Package export writes and reads thread exports as JSON files.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"forum-harvester/internal/domain"
	"forum-harvester/pkg/log"
)

// JSONWriter stores exports under {dir}/{thread_id}/thread_{thread_id}.json.
type JSONWriter struct {
	dir string
}

// NewJSONWriter creates a writer rooted at dir.
func NewJSONWriter(dir string) *JSONWriter {
	return &JSONWriter{dir: dir}
}

// Path returns the file an export with threadID is written to.
func (w *JSONWriter) Path(threadID string) string {
	return filepath.Join(w.dir, threadID, fmt.Sprintf("thread_%s.json", threadID))
}

// Save writes the export, replacing any previous file atomically.
func (w *JSONWriter) Save(ctx context.Context, thread *domain.ThreadExport) error {
	id := thread.ThreadID
	if id == "" {
		id = "unknown"
	}

	data, err := Marshal(thread)
	if err != nil {
		return err
	}

	path := w.Path(id)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write export: %w", err)
	}

	log.GlobalInfoCtx(ctx, "thread exported", "thread_id", id, "path", path, "posts", thread.TotalPosts)
	return nil
}

// Marshal encodes an export with two-space indentation and without HTML
// escaping, so post text and URLs stay readable.
func Marshal(thread *domain.ThreadExport) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(thread); err != nil {
		return nil, fmt.Errorf("encode thread: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadFile loads an export written by JSONWriter or any compatible tool.
func ReadFile(path string) (*domain.ThreadExport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var thread domain.ThreadExport
	if err := json.Unmarshal(data, &thread); err != nil {
		return nil, fmt.Errorf("parse export %s: %w", path, err)
	}
	return &thread, nil
}
