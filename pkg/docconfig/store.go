package docconfig

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// maxFileSize is the maximum allowed config file size (1 MiB).
const maxFileSize = 1 << 20

// ErrFileTooLarge is returned when a config file exceeds maxFileSize.
var ErrFileTooLarge = errors.New("config file exceeds maximum allowed size (1 MiB)")

// ErrPathTraversal is returned when a config file path contains path traversal.
var ErrPathTraversal = errors.New("config file path contains path traversal")

// ErrVersionConflict is returned by Save when the file changed since it was loaded.
var ErrVersionConflict = errors.New("config file was modified since it was loaded")

// FileStore reads and writes a document config file. Versions are SHA-256
// digests of the file content and writes are atomic (temp file + rename).
type FileStore struct {
	path    string
	format  Format
	mu      sync.Mutex
	version string
}

// NewFileStore creates a FileStore for path. The file does not need to
// exist yet.
func NewFileStore(path string) (*FileStore, error) {
	if err := validatePath(path); err != nil {
		return nil, err
	}
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	return &FileStore{path: path, format: format}, nil
}

// validatePath rejects paths with ".." components.
func validatePath(path string) error {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return ErrPathTraversal
		}
	}
	return nil
}

// Path returns the managed file path.
func (s *FileStore) Path() string { return s.path }

// Format returns the file encoding.
func (s *FileStore) Format() Format { return s.format }

// Version returns the digest of the last loaded or saved content.
func (s *FileStore) Version() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Load reads and parses the file, returning it with its version.
func (s *FileStore) Load(_ context.Context) (*File, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := readLimited(s.path)
	if err != nil {
		return nil, "", fmt.Errorf("config store: %w", err)
	}

	version := hashBytes(data)
	f, err := Parse(data, s.path)
	if err != nil {
		return nil, "", fmt.Errorf("config store: failed to parse %s: %w", s.path, err)
	}
	s.version = version
	return f, version, nil
}

// Save writes f if the file still has the given version. An empty version
// means the file must not exist yet. It returns the new version.
func (s *FileStore) Save(_ context.Context, f *File, version string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if version != "" {
			return "", ErrVersionConflict
		}
	case err != nil:
		return "", fmt.Errorf("config store: failed to read current file for version check: %w", err)
	default:
		if hashBytes(current) != version {
			return "", ErrVersionConflict
		}
	}

	data, err := Marshal(f, s.format)
	if err != nil {
		return "", fmt.Errorf("config store: failed to marshal config: %w", err)
	}
	if len(data) > maxFileSize {
		return "", fmt.Errorf("config store: marshaled config: %w", ErrFileTooLarge)
	}

	if err := writeAtomic(s.path, data); err != nil {
		return "", fmt.Errorf("config store: %w", err)
	}

	s.version = hashBytes(data)
	return s.version, nil
}

func readLimited(path string) ([]byte, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	defer fh.Close()

	data, err := io.ReadAll(io.LimitReader(fh, maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(data) > maxFileSize {
		return nil, fmt.Errorf("%s: %w", path, ErrFileTooLarge)
	}
	return data, nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".llms-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if tmpName != "" {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	tmpName = ""
	return nil
}

// hashBytes returns the SHA-256 hex digest of data.
func hashBytes(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}
