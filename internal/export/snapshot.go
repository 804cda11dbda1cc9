package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/abhisek/surveysim/internal/survey"
)

type snapshot struct {
	Personas []survey.Subject `json:"personas"`
}

// WriteSnapshot saves subjects as {"personas":[...]} at path, replacing
// any existing file atomically.
func WriteSnapshot(path string, subjects []survey.Subject) error {
	if subjects == nil {
		subjects = []survey.Subject{}
	}
	data, err := json.MarshalIndent(snapshot{Personas: subjects}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}
