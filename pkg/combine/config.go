// File: pkg/combine/config.go
package combine

import (
	"path/filepath"

	"llmctx/pkg/config"
)

// Options holds what the collector and formatter need for one run.
type Options struct {
	Root            string             // Absolute workspace root; relative paths are computed from it.
	SymlinkHandling config.SymlinkMode // skip or resolve.
	CompressContent bool               // Minify content after normalization.

	// ExcludedAbs are absolute paths never collected, such as the tool's own
	// output files and history directory.
	ExcludedAbs []string

	WarnFileCount  int   // Soft thresholds; zero disables.
	WarnTotalBytes int64 //
	MaxFileCount   int   // Hard limits; zero disables.
	MaxTotalBytes  int64 //
}

// NewOptions derives Options from cfg for a workspace rooted at root.
func NewOptions(cfg config.Config, root string) Options {
	return Options{
		Root:            root,
		SymlinkHandling: cfg.SymlinkHandling,
		CompressContent: cfg.CompressContent,
		ExcludedAbs: []string{
			cfg.OutputPath(root, cfg.OutputFileName),
			cfg.OutputPath(root, cfg.ZipFileName),
			cfg.HistoryDir(root),
		},
		WarnFileCount:  cfg.WarnFileCount,
		WarnTotalBytes: cfg.WarnTotalBytes,
		MaxFileCount:   cfg.MaxFileCount,
		MaxTotalBytes:  cfg.MaxTotalBytes,
	}
}

func (o Options) excludedSet() map[string]bool {
	set := make(map[string]bool, len(o.ExcludedAbs))
	for _, p := range o.ExcludedAbs {
		if abs, err := filepath.Abs(p); err == nil {
			set[filepath.Clean(abs)] = true
		}
	}
	return set
}
