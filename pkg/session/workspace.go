package session

import (
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"go.uber.org/zap"
)

// DetectWorkspaceRoot returns the root of the git worktree enclosing dir, or
// dir itself when dir is not inside a repository.
func DetectWorkspaceRoot(dir string, logger *zap.Logger) string {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}

	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		logger.Debug("No enclosing git repository, using directory as root",
			zap.String("dir", dir), zap.Error(err))
		return dir
	}
	wt, err := repo.Worktree()
	if err != nil {
		logger.Debug("Repository has no worktree, using directory as root",
			zap.String("dir", dir), zap.Error(err))
		return dir
	}
	return wt.Filesystem.Root()
}
