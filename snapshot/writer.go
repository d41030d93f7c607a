package snapshot

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
)

type Writer struct {
	Dir string
}

// Write replaces the snapshot in Dir. The file is written beside the
// old one and renamed into place, so a crash leaves either snapshot
// intact.
func (w *Writer) Write(s *Snapshot) error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return fmt.Errorf("snapshot: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(w.Dir, FileName+".*")
	if err != nil {
		return fmt.Errorf("snapshot: create: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(s); err != nil {
		tmp.Close()
		return fmt.Errorf("snapshot: encode: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("snapshot: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("snapshot: close: %w", err)
	}
	return os.Rename(tmp.Name(), w.Path())
}

func (w *Writer) Path() string {
	return filepath.Join(w.Dir, FileName)
}
