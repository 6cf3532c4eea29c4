package buffer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/natefinch/atomic"
)

const filePerms = 0o644

// LoadFile reads path into a Document.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(string(data)), nil
}

// SaveFile atomically replaces path with the document content. Existing
// files keep their mode; new files get 0644.
func SaveFile(path string, d *Document) error {
	_, statErr := os.Stat(path)
	isNew := errors.Is(statErr, fs.ErrNotExist)

	if err := atomic.WriteFile(path, strings.NewReader(d.String())); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	// atomic.WriteFile doesn't set permissions for new files
	if isNew {
		if err := os.Chmod(path, filePerms); err != nil {
			return fmt.Errorf("chmod %s: %w", path, err)
		}
	}
	return nil
}
