package images

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Storage persists uploaded images under {basePath}/{subdir}/.
// Safe for concurrent use.
type Storage struct {
	dir    string
	subdir string
	mu     sync.RWMutex
}

// NewStorage creates image storage in a subdirectory of basePath,
// e.g. NewStorage("/data", "covers") stores under /data/covers/.
func NewStorage(basePath, subdir string) (*Storage, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	if subdir == "" {
		return nil, fmt.Errorf("subdirectory cannot be empty")
	}

	dir := filepath.Join(basePath, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s directory: %w", subdir, err)
	}
	return &Storage{dir: dir, subdir: subdir}, nil
}

// Save writes image bytes under the given filename and returns the
// public URL path the file is served at.
func (s *Storage) Save(filename string, data []byte) (string, error) {
	if err := validFilename(filename); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("image data cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(filepath.Join(s.dir, filename), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	return s.URLPath(filename), nil
}

// Get reads image bytes by filename.
func (s *Storage) Get(filename string) ([]byte, error) {
	if err := validFilename(filename); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(s.dir, filename))
	if err != nil {
		return nil, fmt.Errorf("failed to read image file: %w", err)
	}
	return data, nil
}

// Delete removes an image. Missing files are not an error.
func (s *Storage) Delete(filename string) error {
	if err := validFilename(filename); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(filepath.Join(s.dir, filename)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete image file: %w", err)
	}
	return nil
}

// Dir returns the directory files are stored in, for static serving.
func (s *Storage) Dir() string {
	return s.dir
}

// URLPath returns the public path an image is served at.
func (s *Storage) URLPath(filename string) string {
	return "/media/" + s.subdir + "/" + filename
}

// validFilename rejects names that could escape the storage directory.
func validFilename(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}
	if strings.Contains(filename, "/") || strings.Contains(filename, "\\") || strings.Contains(filename, "..") {
		return fmt.Errorf("invalid filename %q", filename)
	}
	return nil
}
