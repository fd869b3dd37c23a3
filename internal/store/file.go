package store

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// CacheDir returns the hush notification cache directory.
func CacheDir() string {
	return filepath.Join(xdg.CacheHome, "hush", "notifications")
}

// StatePath returns the default notification state file location.
func StatePath() string {
	return filepath.Join(CacheDir(), "notifications.json")
}

// FileStore reads and writes the notification state document and the
// per-notification icon images decoded from image hints.
type FileStore struct {
	path      string
	imagesDir string
	logger    *slog.Logger
}

// NewFileStore creates a FileStore rooted at path; icon images live in an
// "images" directory next to it. Both directories are created eagerly.
func NewFileStore(path string, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	imagesDir := filepath.Join(filepath.Dir(path), "images")
	for _, dir := range []string{filepath.Dir(path), imagesDir} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("create cache directory %s: %w", dir, err)
		}
	}

	return &FileStore{
		path:      path,
		imagesDir: imagesDir,
		logger:    logger,
	}, nil
}

// Path returns the state file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the persisted collection. A missing file is an empty store.
// A corrupt file is rewritten to the canonical empty form with an operator
// warning; the current session continues with no data. Malformed state is
// never fatal.
func (s *FileStore) Load() (uint32, []Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil, nil
		}
		return 0, nil, fmt.Errorf("read state file %s: %w", s.path, err)
	}

	nextID, records, err := Decode(data)
	if err != nil {
		if errors.Is(err, ErrCorrupt) {
			s.logger.Warn("notification state file is corrupt, resetting to empty store",
				"path", s.path, "error", err)
			if werr := s.writeAtomic(EncodeEmpty()); werr != nil {
				s.logger.Warn("failed to rewrite state file", "error", werr)
			}
			return 0, nil, nil
		}
		return 0, nil, err
	}

	return nextID, records, nil
}

// Save persists the full collection.
func (s *FileStore) Save(nextID uint32, records []Record) error {
	data, err := Encode(nextID, records)
	if err != nil {
		return err
	}
	return s.writeAtomic(data)
}

// writeAtomic writes the document via a temp file and rename.
func (s *FileStore) writeAtomic(data []byte) error {
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return os.Rename(tmpPath, s.path)
}

// ImagePath returns the icon image location for a notification id.
func (s *FileStore) ImagePath(id uint32) string {
	return filepath.Join(s.imagesDir, fmt.Sprintf("%d.png", id))
}

// WriteImage stores decoded icon bytes for a notification id and returns
// the resulting path.
func (s *FileStore) WriteImage(id uint32, data []byte) (string, error) {
	path := s.ImagePath(id)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("write image %s: %w", path, err)
	}
	return path, nil
}

// RemoveImage deletes the icon image for a notification id, if present.
func (s *FileStore) RemoveImage(id uint32) {
	if err := os.Remove(s.ImagePath(id)); err != nil && !os.IsNotExist(err) {
		s.logger.Debug("failed to remove image", "id", id, "error", err)
	}
}
