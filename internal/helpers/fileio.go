// Package helpers holds small file helpers shared by the fixture and storage
// code.
package helpers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Reasons reported by JSONLoadError.
const (
	ReasonNotFound = "file not found"
	ReasonRead     = "failed to read"
	ReasonParse    = "failed to parse JSON in"
)

// JSONLoadError reports a JSON file that could not be loaded.
type JSONLoadError struct {
	Path    string
	Reason  string
	Wrapped error
}

func (e *JSONLoadError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Reason, e.Path, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Path)
}

func (e *JSONLoadError) Unwrap() error {
	return e.Wrapped
}

// IsNotFound reports whether err is a JSONLoadError for a missing file.
func IsNotFound(err error) bool {
	var le *JSONLoadError
	return errors.As(err, &le) && le.Reason == ReasonNotFound
}

// LoadJSON decodes the JSON file at path.
func LoadJSON[T any](path string) (*T, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &JSONLoadError{Path: path, Reason: ReasonNotFound}
	}
	if err != nil {
		return nil, &JSONLoadError{Path: path, Reason: ReasonRead, Wrapped: err}
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, &JSONLoadError{Path: path, Reason: ReasonParse, Wrapped: err}
	}
	return &v, nil
}

// SaveJSON writes data as indented JSON. The file is written next to path and
// renamed into place, so readers never see a partial fixture.
func SaveJSON(path string, data any, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := EnsureDir(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	encoded = append(encoded, '\n')

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(encoded); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return os.Rename(tmp.Name(), path)
}

// FileExists reports whether path is an existing regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// EnsureDir creates path and its parents when missing. An existing
// non-directory at path is an error.
func EnsureDir(path string, perm os.FileMode) error {
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%s exists and is not a directory", path)
		}
		return nil
	}
	return os.MkdirAll(path, perm)
}
