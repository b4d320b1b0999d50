// File: pkg/combine/traversal.go
package combine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"llmctx/pkg/config"
	"llmctx/pkg/language"

	"go.uber.org/zap"
)

// Collector walks selection roots and gathers eligible files.
type Collector struct {
	opts       Options
	classifier *Classifier
	resolver   *language.Resolver
	logger     *zap.Logger
}

// NewCollector wires a Collector. resolver picks the language tag used for
// compression; it may be nil.
func NewCollector(opts Options, classifier *Classifier, resolver *language.Resolver, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{opts: opts, classifier: classifier, resolver: resolver, logger: logger}
}

type workItem struct {
	path string // absolute path as visited
	base string // fallback base for relative paths outside the workspace root
}

// collection is the mutable state of one Collect call.
type collection struct {
	result       *Result
	processed    map[string]bool // absolute visited paths
	realSeen     map[string]bool // resolved real paths, resolve mode only
	relSeen      map[string]bool
	excluded     map[string]bool
	fileCount    int
	limitReached bool
}

// Collect walks roots with an explicit stack and returns the eligible files
// sorted by relative path. Entry-level failures are recorded in
// Result.Skipped; only context cancellation is returned as an error.
func (c *Collector) Collect(ctx context.Context, roots []string) (*Result, error) {
	st := &collection{
		result:    &Result{ExtensionCounts: make(map[string]int)},
		processed: make(map[string]bool),
		realSeen:  make(map[string]bool),
		relSeen:   make(map[string]bool),
		excluded:  c.opts.excludedSet(),
	}

	stack := make([]workItem, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		abs, err := filepath.Abs(roots[i])
		if err != nil {
			c.logger.Warn("Failed to get absolute path", zap.String("path", roots[i]), zap.Error(err))
			st.skip(roots[i], ReasonReadError, err)
			continue
		}
		abs = filepath.Clean(abs)
		stack = append(stack, workItem{path: abs, base: filepath.Dir(abs)})
	}

	c.logger.Debug("Starting file collection", zap.Int("rootCount", len(roots)))

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("collection interrupted: %w", err)
		}
		if st.limitReached {
			st.result.Truncated = true
			c.logger.Warn("Hard limit reached, stopping traversal",
				zap.Int("files", st.fileCount),
				zap.Int64("bytes", st.result.TotalBytes),
				zap.Int("pending", len(stack)))
			break
		}

		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children := c.visit(item, st)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}

	c.finish(st.result)
	c.logger.Debug("Completed file collection",
		zap.Int("files", len(st.result.Files)),
		zap.Int("skipped", len(st.result.Skipped)),
		zap.Int64("bytes", st.result.TotalBytes))
	return st.result, nil
}

// visit processes one entry and returns the children to push, in order.
func (c *Collector) visit(item workItem, st *collection) []workItem {
	if st.processed[item.path] {
		return nil
	}
	st.processed[item.path] = true

	rel := c.relativePath(item)
	if st.excluded[item.path] {
		c.logger.Debug("Skipping output artifact", zap.String("path", item.path))
		st.skip(rel, ReasonExcludedName, nil)
		return nil
	}

	info, err := os.Lstat(item.path)
	if err != nil {
		c.logger.Warn("Path does not exist or cannot be accessed", zap.String("path", item.path), zap.Error(err))
		st.skip(rel, ReasonReadError, err)
		return nil
	}

	kind := KindFile
	readPath := item.path
	if info.Mode()&fs.ModeSymlink != 0 {
		kind = KindSymlink
		if c.opts.SymlinkHandling != config.SymlinkResolve {
			c.logger.Debug("Skipping symbolic link", zap.String("path", item.path))
			st.skip(rel, ReasonSymlink, nil)
			return nil
		}
		if readPath, err = filepath.EvalSymlinks(item.path); err == nil {
			info, err = os.Stat(readPath)
		}
		if err != nil {
			c.logger.Warn("Failed to resolve symbolic link", zap.String("path", item.path), zap.Error(err))
			st.skip(rel, ReasonReadError, err)
			return nil
		}
	}

	if c.opts.SymlinkHandling == config.SymlinkResolve {
		realPath, err := filepath.EvalSymlinks(item.path)
		if err != nil {
			realPath = readPath
		}
		if st.realSeen[realPath] {
			c.logger.Debug("Skipping already visited real path", zap.String("path", item.path), zap.String("real", realPath))
			return nil
		}
		st.realSeen[realPath] = true
	}

	if info.IsDir() {
		return c.visitDirectory(item, rel, readPath, info, st)
	}
	if !info.Mode().IsRegular() {
		st.skip(rel, ReasonReadError, fmt.Errorf("not a regular file: %s", info.Mode().Type()))
		return nil
	}
	c.visitFile(rel, readPath, item.path, kind, info, st)
	return nil
}

func (c *Collector) visitDirectory(item workItem, rel, readPath string, info fs.FileInfo, st *collection) []workItem {
	if verdict := c.classifier.Classify(rel+"/", info, nil); verdict != Eligible {
		st.skip(rel, verdict.Reason(), nil)
		return nil
	}

	entries, err := os.ReadDir(readPath)
	if err != nil {
		c.logger.Warn("Failed to read directory", zap.String("dir", item.path), zap.Error(err))
		st.skip(rel, ReasonReadError, err)
		return nil
	}

	children := make([]workItem, 0, len(entries))
	for _, entry := range entries {
		children = append(children, workItem{
			path: filepath.Join(item.path, entry.Name()),
			base: item.base,
		})
	}
	return children
}

func (c *Collector) visitFile(rel, readPath, visitedPath string, kind Kind, info fs.FileInfo, st *collection) {
	verdict := c.classifier.Classify(rel, info, nil)
	if verdict == Eligible {
		sample, err := sniffFile(readPath)
		if err != nil {
			c.logger.Warn("Failed to read file", zap.String("path", visitedPath), zap.Error(err))
			st.skip(rel, ReasonReadError, err)
			return
		}
		verdict = c.classifier.Classify(rel, info, sample)
	}
	if verdict != Eligible {
		st.skip(rel, verdict.Reason(), nil)
		return
	}

	if st.relSeen[rel] {
		c.logger.Debug("Skipping duplicate relative path", zap.String("path", rel))
		st.skip(rel, ReasonDuplicate, nil)
		return
	}

	record := FileRecord{
		AbsolutePath: visitedPath,
		RelativePath: rel,
		SizeBytes:    info.Size(),
		Kind:         kind,
	}
	file, err := ProcessSingleFile(record, readPath, c.resolver.ForFile(rel), c.opts.CompressContent, c.logger)
	if err != nil {
		if errors.Is(err, errEmptyContent) {
			c.logger.Debug("Skipping empty file", zap.String("path", rel))
			st.skip(rel, ReasonEmpty, nil)
			return
		}
		c.logger.Warn("Failed to process file", zap.String("path", rel), zap.Error(err))
		st.skip(rel, ReasonReadError, err)
		return
	}

	st.relSeen[rel] = true
	st.result.Files = append(st.result.Files, file)
	st.result.TotalBytes += file.SizeBytes
	st.fileCount++
	c.checkThresholds(st)
}

func (c *Collector) checkThresholds(st *collection) {
	res := st.result
	if !res.ThresholdExceeded &&
		((c.opts.WarnFileCount > 0 && st.fileCount > c.opts.WarnFileCount) ||
			(c.opts.WarnTotalBytes > 0 && res.TotalBytes > c.opts.WarnTotalBytes)) {
		res.ThresholdExceeded = true
		c.logger.Warn("Selection exceeds size threshold",
			zap.Int("files", st.fileCount),
			zap.Int64("bytes", res.TotalBytes))
	}
	if (c.opts.MaxFileCount > 0 && st.fileCount >= c.opts.MaxFileCount) ||
		(c.opts.MaxTotalBytes > 0 && res.TotalBytes >= c.opts.MaxTotalBytes) {
		st.limitReached = true
	}
}

// relativePath is the workspace-relative path of item, or the path relative
// to the selection root's parent when item lies outside the workspace.
func (c *Collector) relativePath(item workItem) string {
	if c.opts.Root != "" {
		if rel, err := filepath.Rel(c.opts.Root, item.path); err == nil && !isOutside(rel) {
			return filepath.ToSlash(rel)
		}
	}
	rel, err := filepath.Rel(item.base, item.path)
	if err != nil || isOutside(rel) {
		return filepath.ToSlash(item.path)
	}
	return filepath.ToSlash(rel)
}

func isOutside(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// finish sorts the files and fills the derived fields.
func (c *Collector) finish(res *Result) {
	sort.Slice(res.Files, func(i, j int) bool {
		return res.Files[i].RelativePath < res.Files[j].RelativePath
	})
	res.RelativePaths = make([]string, len(res.Files))
	for i, f := range res.Files {
		res.RelativePaths[i] = f.RelativePath
		ext := extensionOf(f.RelativePath)
		if ext == "" {
			ext = NoExtension
		}
		res.ExtensionCounts[ext]++
	}
}

func (st *collection) skip(path string, reason SkipReason, err error) {
	st.result.Skipped = append(st.result.Skipped, Skip{Path: path, Reason: reason, Err: err})
}
