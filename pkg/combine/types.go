package combine

import "errors"

// ErrCancelled is returned when the confirmation gate is declined.
var ErrCancelled = errors.New("cancelled by user")

// SniffSize is how many leading bytes are inspected for a NUL byte.
const SniffSize = 8192

// NoExtension is the ExtensionCounts bucket for files without an extension.
const NoExtension = "no extension"

// Kind is the file-system kind of a visited entry.
type Kind int

const (
	KindFile Kind = iota
	KindSymlink
)

// FileRecord describes one visited entry.
type FileRecord struct {
	AbsolutePath string // path as visited (a symlink keeps its own path)
	RelativePath string // workspace-relative, '/'-separated
	SizeBytes    int64
	Kind         Kind
}

// CollectedFile is an eligible file with its content.
type CollectedFile struct {
	FileRecord
	RawContent        []byte
	NormalizedContent string
	LanguageTag       string
}

// Verdict is the classifier's decision for one entry.
type Verdict int

const (
	Eligible Verdict = iota
	SkippedBinaryExt
	SkippedBinaryContent
	SkippedLarge
	SkippedExcludedName
	SkippedIgnored
)

// SkipReason explains why an entry is absent from the output.
type SkipReason string

const (
	ReasonBinaryExtension SkipReason = "binary extension"
	ReasonBinaryContent   SkipReason = "binary content"
	ReasonTooLarge        SkipReason = "too large"
	ReasonExcludedName    SkipReason = "excluded"
	ReasonIgnored         SkipReason = "gitignored"
	ReasonEmpty           SkipReason = "empty"
	ReasonReadError       SkipReason = "read error"
	ReasonSymlink         SkipReason = "symlink"
	ReasonDuplicate       SkipReason = "duplicate path"
)

// Reason maps a non-eligible verdict to its SkipReason.
func (v Verdict) Reason() SkipReason {
	switch v {
	case SkippedBinaryExt:
		return ReasonBinaryExtension
	case SkippedBinaryContent:
		return ReasonBinaryContent
	case SkippedLarge:
		return ReasonTooLarge
	case SkippedExcludedName:
		return ReasonExcludedName
	case SkippedIgnored:
		return ReasonIgnored
	}
	return ""
}

func (v Verdict) String() string {
	if v == Eligible {
		return "eligible"
	}
	return string(v.Reason())
}

// Skip records one entry left out of the output.
type Skip struct {
	Path   string
	Reason SkipReason
	Err    error
}

// Result is the outcome of one collection.
type Result struct {
	Files           []CollectedFile // sorted by RelativePath
	RelativePaths   []string        // parallel to Files
	ExtensionCounts map[string]int
	Skipped         []Skip
	TotalBytes      int64

	// ThresholdExceeded is set once the soft file or byte threshold is
	// crossed. Truncated is set when the hard limit stopped traversal early.
	ThresholdExceeded bool
	Truncated         bool
}

// SkipCounts tallies Skipped by reason.
func (r *Result) SkipCounts() map[SkipReason]int {
	counts := make(map[SkipReason]int)
	for _, s := range r.Skipped {
		counts[s.Reason]++
	}
	return counts
}

// Empty reports whether no eligible file was collected.
func (r *Result) Empty() bool {
	return r == nil || len(r.Files) == 0
}
