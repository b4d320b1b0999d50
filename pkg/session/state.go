package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// StateFileName is the last-action file kept in the history directory.
const StateFileName = "last-action.yaml"

// Action identifies which operation produced the last action.
type Action string

const (
	ActionNone      Action = ""
	ActionClipboard Action = "clipboard"
	ActionPaste     Action = "paste"
	ActionZip       Action = "zip"
)

// LastAction is the single-slot record of the most recent successful run.
// Update replays Selection, not the files it produced.
type LastAction struct {
	Kind      Action    `yaml:"kind"`
	Selection []string  `yaml:"selection"`
	FileCount int       `yaml:"fileCount"`
	At        time.Time `yaml:"at"`
	RunID     string    `yaml:"runID"`
	Undone    bool      `yaml:"undone"`
}

// StateStore persists the last action between invocations.
type StateStore interface {
	Load() (LastAction, error)
	Save(LastAction) error
}

// FileStateStore keeps the last action as YAML at Path.
type FileStateStore struct {
	Path string
}

// Load returns the zero LastAction when the file does not exist.
func (s FileStateStore) Load() (LastAction, error) {
	var last LastAction
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return last, nil
		}
		return last, fmt.Errorf("failed to read state file: %w", err)
	}
	if err := yaml.Unmarshal(data, &last); err != nil {
		return LastAction{}, fmt.Errorf("failed to parse state file %s: %w", s.Path, err)
	}
	return last, nil
}

func (s FileStateStore) Save(last LastAction) error {
	data, err := yaml.Marshal(last)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	if err := os.WriteFile(s.Path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}

// MemoryStateStore keeps the last action in memory only.
type MemoryStateStore struct {
	last LastAction
}

func (m *MemoryStateStore) Load() (LastAction, error) { return m.last, nil }

func (m *MemoryStateStore) Save(last LastAction) error {
	m.last = last
	return nil
}
