package jsonstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/Makepad-fr/tasktracker/internal/model"
)

// JSON-backed storage in a single human-readable file.
// Every save rewrites the whole document. No locking: the last writer wins.

// DefaultFileName is the backing file used when no path is configured.
const DefaultFileName = "tasks.json"

// MaxID is the largest task id the schema accepts. It fits an int on every
// platform, so the next id after any stored one never wraps.
const MaxID = math.MaxInt32

var (
	// ErrEmpty reports a backing file that exists but holds only whitespace.
	ErrEmpty = errors.New("backing file is empty")
	// ErrMalformed reports a backing file that is not a valid task document.
	ErrMalformed = errors.New("malformed task file")
)

// Document is the root object of the backing file.
type Document struct {
	Tasks []model.Task `json:"tasks" yaml:"tasks" toml:"tasks"`
}

// Load reads and decodes the document at path. A missing file yields an
// error wrapping os.ErrNotExist; a blank one yields ErrEmpty.
func Load(path string) (*Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, ErrEmpty
	}
	return Decode(b)
}

// Decode parses and validates a document.
func Decode(b []byte) (*Document, error) {
	if err := Validate(b); err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, &MalformedError{Problems: []Problem{{Message: err.Error()}}}
	}
	if doc.Tasks == nil {
		doc.Tasks = []model.Task{}
	}
	return &doc, nil
}

// Encode renders doc with 2-space indentation and a trailing newline.
// HTML escaping is off so titles read naturally in the file.
func Encode(doc *Document) ([]byte, error) {
	out := *doc
	if out.Tasks == nil {
		out.Tasks = []model.Task{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&out); err != nil {
		return nil, fmt.Errorf("json marshal: %w", err)
	}
	return buf.Bytes(), nil
}

// Save replaces the file at path with doc. The bytes go to a temp file in
// the same directory first and are renamed into place.
func Save(path string, doc *Document) error {
	b, err := Encode(doc)
	if err != nil {
		return err
	}
	return writeFile(path, b, 0o644)
}

func writeFile(path string, b []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("sync file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		cleanup()
		return fmt.Errorf("chmod file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return fmt.Errorf("replace file: %w", err)
	}
	return nil
}

// Backup copies the file at path to dst verbatim.
func Backup(path, dst string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	return writeFile(dst, b, 0o644)
}
