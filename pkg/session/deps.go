package session

import (
	"github.com/google/uuid"
)

// Clipboard receives formatted output for clipboard runs.
type Clipboard interface {
	WriteAll(text string) error
}

// Confirmer is asked whether to proceed once a selection exceeds the soft
// thresholds.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// Opener shows a saved paste file to the user.
type Opener interface {
	Open(path string) error
}

// IDGenerator abstracts unique ID generation so tests are deterministic.
type IDGenerator interface {
	New() string
}

// UUIDGenerator produces random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.New().String() }

// AcceptAll confirms every prompt.
type AcceptAll struct{}

func (AcceptAll) Confirm(string) (bool, error) { return true, nil }
