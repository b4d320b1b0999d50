package combine

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptySnippet is returned when the selected text is blank.
var ErrEmptySnippet = errors.New("selected text is empty")

// ExtractLines returns lines start..end (1-based, inclusive) of content.
// An end past the last line is clamped.
func ExtractLines(content string, start, end int) (string, error) {
	lines := strings.Split(content, "\n")
	if start < 1 || end < start || start > len(lines) {
		return "", fmt.Errorf("invalid line range %d-%d for %d lines", start, end, len(lines))
	}
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start-1:end], "\n"), nil
}

// FormatSnippet renders a selection of one file as
// "#### path (lines a-b)" followed by a fenced block.
func (f *Formatter) FormatSnippet(relPath, text string, start, end int) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptySnippet
	}
	return f.FormatBlock(relPath, text, fmt.Sprintf(" (lines %d-%d)", start, end)), nil
}
