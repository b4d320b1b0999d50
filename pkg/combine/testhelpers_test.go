package combine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"llmctx/pkg/config"
	"llmctx/pkg/ignore"
	"llmctx/pkg/language"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func testConfig(mutate func(*config.Config)) config.Config {
	cfg := config.Default()
	cfg.IncludeTimestamp = false
	if mutate != nil {
		mutate(&cfg)
	}
	return cfg
}

func newTestCollector(t *testing.T, root string, cfg config.Config) *Collector {
	t.Helper()
	var gi *ignore.GitIgnore
	if cfg.UseGitignore {
		var err error
		gi, err = ignore.Load(root, cfg.IgnorePatterns, zap.NewNop())
		require.NoError(t, err)
	}
	return NewCollector(
		NewOptions(cfg, root),
		NewClassifier(cfg, gi, zap.NewNop()),
		language.NewResolver(cfg.MarkdownMapping),
		zap.NewNop(),
	)
}

func collect(t *testing.T, root string, cfg config.Config, roots ...string) *Result {
	t.Helper()
	res, err := newTestCollector(t, root, cfg).Collect(context.Background(), roots)
	require.NoError(t, err)
	return res
}

func skipFor(res *Result, rel string) (SkipReason, bool) {
	for _, s := range res.Skipped {
		if s.Path == rel {
			return s.Reason, true
		}
	}
	return "", false
}
