// Package ignore implements a deliberately small subset of .gitignore
// matching. Negation ("!pattern") is not supported: such lines are logged
// and dropped.
package ignore

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// FileName is the ignore file read from the workspace root.
const FileName = ".gitignore"

// IgnorePattern encapsulates a compiled regular expression pattern
// and metadata about the pattern's origin.
type IgnorePattern struct {
	Pattern *regexp.Regexp // Compiled regular expression for the pattern.
	DirOnly bool           // Pattern ended in '/' and only matches directories.
	Line    string         // Original pattern line.
	LineNo  int            // Line number in the source (1-based).
}

// GitIgnore represents a collection of ignore patterns. A nil *GitIgnore
// matches nothing, which is how a disabled engine is represented.
type GitIgnore struct {
	Patterns []*IgnorePattern // List of compiled ignore patterns.
	logger   *zap.Logger
}

// NewGitIgnore initializes an empty GitIgnore.
func NewGitIgnore(logger *zap.Logger) *GitIgnore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GitIgnore{
		Patterns: []*IgnorePattern{},
		logger:   logger,
	}
}

// CompileLines builds a GitIgnore from in-memory pattern lines.
func CompileLines(logger *zap.Logger, lines ...string) *GitIgnore {
	gi := NewGitIgnore(logger)
	gi.CompileIgnoreLines(lines...)
	return gi
}

// Load compiles root/.gitignore followed by any extra pattern lines. A
// missing .gitignore yields a matcher holding only the extra lines.
func Load(root string, extra []string, logger *zap.Logger) (*GitIgnore, error) {
	gi := NewGitIgnore(logger)
	if err := gi.CompileIgnoreFile(filepath.Join(root, FileName)); err != nil {
		return nil, err
	}
	gi.CompileIgnoreLines(extra...)
	return gi, nil
}

// CompileIgnoreLines compiles a set of ignore pattern lines and adds them to the GitIgnore instance.
func (gi *GitIgnore) CompileIgnoreLines(lines ...string) {
	for i, line := range lines {
		ip := parsePatternLine(line, i+1, gi.logger)
		if ip == nil {
			continue
		}
		gi.Patterns = append(gi.Patterns, ip)
		gi.logger.Debug("Compiled ignore pattern",
			zap.Int("lineNo", ip.LineNo),
			zap.String("pattern", ip.Line),
			zap.Bool("dirOnly", ip.DirOnly))
	}
}

// CompileIgnoreFile reads an ignore file, parses its lines, and adds them to
// the GitIgnore instance. A file that does not exist is skipped.
func (gi *GitIgnore) CompileIgnoreFile(fpath string) error {
	content, err := os.ReadFile(fpath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			gi.logger.Debug("Ignore file does not exist and will be skipped", zap.String("filePath", fpath))
			return nil
		}
		gi.logger.Error("Failed to read ignore file", zap.String("filePath", fpath), zap.Error(err))
		return err
	}

	lines := strings.Split(string(content), "\n")
	gi.CompileIgnoreLines(lines...)
	gi.logger.Debug("Compiled ignore patterns", zap.String("filePath", fpath), zap.Int("lineCount", len(lines)))
	return nil
}

// MatchesPath reports whether a workspace-relative, '/'-separated path is
// ignored. A trailing '/' marks the path as a directory. The path is ignored
// when it or any of its parent directories matches a pattern.
func (gi *GitIgnore) MatchesPath(path string) bool {
	matches, _ := gi.MatchesPathWithPattern(path)
	return matches
}

// MatchesPathWithPattern is MatchesPath that also returns the pattern that
// matched.
func (gi *GitIgnore) MatchesPathWithPattern(path string) (bool, *IgnorePattern) {
	if gi == nil || len(gi.Patterns) == 0 {
		return false, nil
	}

	normalized := normalizePath(path)
	isDir := strings.HasSuffix(normalized, "/")
	normalized = strings.TrimSuffix(normalized, "/")
	if normalized == "" {
		return false, nil
	}

	segments := strings.Split(normalized, "/")
	for i := range segments {
		candidate := strings.Join(segments[:i+1], "/")
		candidateIsDir := i < len(segments)-1 || isDir
		for _, pattern := range gi.Patterns {
			if pattern.DirOnly && !candidateIsDir {
				continue
			}
			if pattern.Pattern.MatchString(candidate) {
				gi.logger.Debug("Path matches pattern",
					zap.String("path", normalized),
					zap.String("prefix", candidate),
					zap.String("pattern", pattern.Line))
				return true, pattern
			}
		}
	}
	return false, nil
}

// normalizePath converts OS-specific separators to forward slashes and drops
// any leading "./" or "/".
func normalizePath(path string) string {
	path = filepath.ToSlash(path)
	for strings.HasPrefix(path, "./") {
		path = path[2:]
	}
	return strings.TrimLeft(path, "/")
}

// parsePatternLine turns one ignore-file line into a compiled pattern.
// Returns nil for blank lines, comments, negations and invalid patterns.
func parsePatternLine(line string, lineNo int, logger *zap.Logger) *IgnorePattern {
	trimmedLine := strings.TrimSpace(line)

	// Ignore empty lines and comments.
	if trimmedLine == "" || strings.HasPrefix(trimmedLine, "#") {
		return nil
	}

	if strings.HasPrefix(trimmedLine, "!") {
		logger.Debug("Negated ignore patterns are not supported, skipping",
			zap.Int("lineNo", lineNo),
			zap.String("pattern", trimmedLine))
		return nil
	}

	// Handle escaped characters for `#` and `!`.
	if strings.HasPrefix(trimmedLine, `\#`) || strings.HasPrefix(trimmedLine, `\!`) {
		trimmedLine = trimmedLine[1:]
	}

	glob := trimmedLine
	dirOnly := strings.HasSuffix(glob, "/")
	glob = strings.TrimRight(glob, "/")

	anchored := strings.HasPrefix(glob, "/")
	glob = strings.TrimLeft(glob, "/")
	if strings.Contains(glob, "/") {
		anchored = true
	}
	if glob == "" {
		return nil
	}

	compiled, err := regexp.Compile(anchorPattern(globToRegex(glob), anchored))
	if err != nil {
		logger.Warn("Invalid ignore pattern",
			zap.String("pattern", trimmedLine),
			zap.Int("lineNo", lineNo),
			zap.Error(err))
		return nil
	}

	return &IgnorePattern{
		Pattern: compiled,
		DirOnly: dirOnly,
		Line:    trimmedLine,
		LineNo:  lineNo,
	}
}
