// File: pkg/combine/helpers.go
package combine

import (
	"io/fs"
	"path"
	"strings"

	"llmctx/pkg/config"
	"llmctx/pkg/ignore"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
)

// Classifier decides per entry whether it may be included. It performs no
// I/O; the caller supplies stat information and, for files, a content sample.
type Classifier struct {
	filtered map[string]bool
	maxSize  int64
	excluded []string
	ignore   *ignore.GitIgnore
	logger   *zap.Logger
}

// NewClassifier builds a Classifier from cfg. gi may be nil when gitignore
// support is disabled.
func NewClassifier(cfg config.Config, gi *ignore.GitIgnore, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{
		filtered: cfg.FilteredExtensionSet(),
		maxSize:  cfg.MaxFileSize,
		excluded: cfg.ExcludedPaths,
		ignore:   gi,
		logger:   logger,
	}
}

// Classify checks, in order: excluded name, gitignore, extension deny-list,
// size, and (when sample is non-nil) the NUL-byte sniff. Directories stop
// after the gitignore check. relPath is '/'-separated; a trailing '/' marks
// a directory.
func (c *Classifier) Classify(relPath string, info fs.FileInfo, sample []byte) Verdict {
	isDir := info != nil && info.IsDir()
	trimmed := strings.TrimSuffix(relPath, "/")

	if c.isExcludedName(trimmed) {
		c.logger.Debug("Path matches excluded name", zap.String("path", relPath))
		return SkippedExcludedName
	}

	ignorePath := trimmed
	if isDir {
		ignorePath += "/"
	}
	if c.ignore.MatchesPath(ignorePath) {
		c.logger.Debug("Path matches ignore pattern", zap.String("path", relPath))
		return SkippedIgnored
	}

	if isDir {
		return Eligible
	}

	if ext := extensionOf(trimmed); ext != "" && c.filtered[ext] {
		c.logger.Debug("File has filtered extension", zap.String("path", relPath), zap.String("extension", ext))
		return SkippedBinaryExt
	}

	if info != nil && info.Size() > c.maxSize {
		c.logger.Debug("File exceeds size limit",
			zap.String("path", relPath),
			zap.Int64("sizeBytes", info.Size()),
			zap.Int64("maxSizeBytes", c.maxSize))
		return SkippedLarge
	}

	if sample != nil && IsBinaryContent(sample) {
		c.logger.Debug("File is binary", zap.String("path", relPath))
		return SkippedBinaryContent
	}

	return Eligible
}

// isExcludedName matches the basename against each excluded entry, exactly
// or as a doublestar glob. Entries containing '/' are matched against the
// whole relative path instead.
func (c *Classifier) isExcludedName(relPath string) bool {
	name := path.Base(relPath)
	for _, pattern := range c.excluded {
		if pattern == "" {
			continue
		}
		if strings.Contains(pattern, "/") {
			pattern = strings.Trim(pattern, "/")
			if relPath == pattern || strings.HasSuffix(relPath, "/"+pattern) {
				return true
			}
			if ok, err := doublestar.Match(pattern, relPath); err == nil && ok {
				return true
			}
			continue
		}
		if name == pattern {
			return true
		}
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}
