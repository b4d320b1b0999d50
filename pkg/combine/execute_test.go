package combine

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"llmctx/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWriteCombinedFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "paste.md")
	logger := zap.NewNop()

	require.NoError(t, WriteCombinedFile(out, "first", false, logger))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	require.NoError(t, WriteCombinedFile(out, "second", false, logger))
	data, _ = os.ReadFile(out)
	assert.Equal(t, "second", string(data))

	require.NoError(t, WriteCombinedFile(out, "third", true, logger))
	data, _ = os.ReadFile(out)
	assert.Equal(t, "second\n\nthird", string(data))
}

func TestWriteCombinedFileAppendToMissing(t *testing.T) {
	out := filepath.Join(t.TempDir(), "paste.md")
	require.NoError(t, WriteCombinedFile(out, "only", true, zap.NewNop()))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "only", string(data))
}

func TestWriteZip(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out", "context.zip")
	files := []CollectedFile{file("src/b.go", "package b"), file("a.txt", "hello")}

	require.NoError(t, WriteZip(files, out, zap.NewNop()))

	zr, err := zip.OpenReader(out)
	require.NoError(t, err)
	defer zr.Close()

	require.Len(t, zr.File, 2)
	got := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		got[f.Name] = string(b)
	}
	assert.Equal(t, map[string]string{"a.txt": "hello", "src/b.go": "package b"}, got)
	assert.Equal(t, "a.txt", zr.File[0].Name)

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(out), ".*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestWriteZipFailureLeavesNoArchive(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "context.zip")
	require.NoError(t, os.Mkdir(out, 0o755)) // rename onto a directory fails

	err := WriteZip([]CollectedFile{file("a.txt", "a")}, out, zap.NewNop())
	assert.Error(t, err)

	leftovers, _ := filepath.Glob(filepath.Join(dir, ".*.tmp"))
	assert.Empty(t, leftovers)
}

func TestSnippet(t *testing.T) {
	f := newTestFormatter(config.Default())

	text, err := ExtractLines("l1\nl2\nl3\nl4", 2, 3)
	require.NoError(t, err)
	assert.Equal(t, "l2\nl3", text)

	got, err := f.FormatSnippet("src/app.ts", text, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, "#### src/app.ts (lines 2-3)\n```typescript\nl2\nl3\n```", got)

	_, err = f.FormatSnippet("a.go", " \n ", 1, 2)
	assert.ErrorIs(t, err, ErrEmptySnippet)
}

func TestExtractLinesRange(t *testing.T) {
	text, err := ExtractLines("a\nb", 2, 10)
	require.NoError(t, err)
	assert.Equal(t, "b", text)

	for _, r := range [][2]int{{0, 1}, {3, 2}, {5, 6}} {
		_, err := ExtractLines("a\nb", r[0], r[1])
		assert.Error(t, err)
	}
}
