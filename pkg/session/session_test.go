package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"llmctx/pkg/combine"
	"llmctx/pkg/config"
	"llmctx/pkg/history"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) WriteAll(text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type seqIDs struct{ n int }

func (g *seqIDs) New() string {
	g.n++
	return fmt.Sprintf("run-%d", g.n)
}

type answer struct {
	ok     bool
	asked  int
	prompt string
}

func (a *answer) Confirm(prompt string) (bool, error) {
	a.asked++
	a.prompt = prompt
	return a.ok, nil
}

type recordingOpener struct{ opened []string }

func (o *recordingOpener) Open(path string) error {
	o.opened = append(o.opened, path)
	return nil
}

type fixture struct {
	root      string
	cfg       config.Config
	clipboard *fakeClipboard
	store     StateStore
	session   *Session
}

func newFixture(t *testing.T, mutate func(*config.Config)) *fixture {
	t.Helper()
	cfg := config.Default()
	cfg.IncludeTimestamp = false
	cfg.IncludeFileTree = false
	cfg.IncludeFileAnalysis = false
	if mutate != nil {
		mutate(&cfg)
	}
	f := &fixture{root: t.TempDir(), cfg: cfg, clipboard: &fakeClipboard{}}
	f.store = FileStateStore{Path: StatePath(cfg, f.root)}
	f.session = f.open(t, Deps{})
	return f
}

// open builds a fresh Session over the fixture's workspace, as a new CLI
// invocation would.
func (f *fixture) open(t *testing.T, deps Deps) *Session {
	t.Helper()
	if deps.Clipboard == nil {
		deps.Clipboard = f.clipboard
	}
	if deps.Store == nil {
		deps.Store = f.store
	}
	deps.Clock = fixedClock{t: time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)}
	deps.IDs = &seqIDs{}
	s, err := New(f.cfg, f.root, deps, zap.NewNop())
	require.NoError(t, err)
	return s
}

func (f *fixture) write(t *testing.T, rel, content string) string {
	t.Helper()
	p := filepath.Join(f.root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func (f *fixture) read(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.root, rel))
	require.NoError(t, err)
	return string(data)
}

func TestCopyToClipboard(t *testing.T) {
	f := newFixture(t, nil)
	p := f.write(t, "a.txt", "hello")

	report, err := f.session.CopyToClipboard(context.Background(), p, nil)
	require.NoError(t, err)
	assert.Equal(t, "#### a.txt\n```\nhello\n```\n\n---\n", f.clipboard.text)
	assert.Equal(t, ActionClipboard, report.Action)
	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, 1, report.Files)
	assert.Empty(t, report.Output)

	last := f.session.Last()
	assert.Equal(t, ActionClipboard, last.Kind)
	assert.Equal(t, []string{p}, last.Selection)
}

func TestCopyToClipboardFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.clipboard.err = errors.New("no display")
	p := f.write(t, "a.txt", "hello")

	_, err := f.session.CopyToClipboard(context.Background(), p, nil)
	assert.ErrorContains(t, err, "no display")
	assert.Equal(t, ActionNone, f.session.Last().Kind, "failed runs do not replace the last action")
}

func TestRunLevelErrors(t *testing.T) {
	f := newFixture(t, nil)
	f.write(t, "dir/empty.txt", "")

	_, err := f.session.SavePaste(context.Background(), "", nil)
	assert.ErrorIs(t, err, ErrNoSelection)

	report, err := f.session.SavePaste(context.Background(), filepath.Join(f.root, "dir"), nil)
	assert.ErrorIs(t, err, ErrNoEligibleFiles)
	require.NotNil(t, report)
	assert.Equal(t, 1, report.Skipped[combine.ReasonEmpty])
	_, statErr := os.Stat(filepath.Join(f.root, f.cfg.OutputFileName))
	assert.True(t, os.IsNotExist(statErr))

	_, err = f.session.UndoLastSave()
	assert.ErrorIs(t, err, ErrNoLastAction)
	_, err = f.session.UpdateLast(context.Background())
	assert.ErrorIs(t, err, ErrNoLastAction)
}

func TestSavePasteBackupUndoRoundTrip(t *testing.T) {
	f := newFixture(t, nil)
	src := f.write(t, "src/a.go", "package a\n")
	ctx := context.Background()

	_, err := f.session.SavePaste(ctx, src, nil)
	require.NoError(t, err)
	before := f.read(t, f.cfg.OutputFileName)

	f.write(t, "src/a.go", "package a\n\nvar X = 1\n")
	report, err := f.session.SavePaste(ctx, src, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, report.Backup)
	assert.NotEqual(t, before, f.read(t, f.cfg.OutputFileName))

	restored, err := f.session.UndoLastSave()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.root, f.cfg.OutputFileName), restored)
	assert.Equal(t, before, f.read(t, f.cfg.OutputFileName))

	_, err = f.session.UndoLastSave()
	assert.ErrorIs(t, err, history.ErrNothingToUndo)
	assert.Equal(t, before, f.read(t, f.cfg.OutputFileName))
}

func TestUndoAcrossInvocations(t *testing.T) {
	f := newFixture(t, nil)
	src := f.write(t, "a.txt", "one")
	ctx := context.Background()

	_, err := f.session.SavePaste(ctx, src, nil)
	require.NoError(t, err)
	first := f.read(t, f.cfg.OutputFileName)

	f.write(t, "a.txt", "two")
	_, err = f.open(t, Deps{}).SavePaste(ctx, src, nil)
	require.NoError(t, err)

	next := f.open(t, Deps{})
	assert.Equal(t, ActionPaste, next.Last().Kind)
	_, err = next.UndoLastSave()
	require.NoError(t, err)
	assert.Equal(t, first, f.read(t, f.cfg.OutputFileName))

	_, err = f.open(t, Deps{}).UndoLastSave()
	assert.ErrorIs(t, err, history.ErrNothingToUndo)
}

func TestUndoRefusedForClipboard(t *testing.T) {
	f := newFixture(t, nil)
	p := f.write(t, "a.txt", "hello")
	_, err := f.session.CopyToClipboard(context.Background(), p, nil)
	require.NoError(t, err)

	_, err = f.session.UndoLastSave()
	assert.ErrorIs(t, err, ErrUndoClipboard)
}

func TestUpdateLastPicksUpNewFiles(t *testing.T) {
	f := newFixture(t, nil)
	f.write(t, "docs/a.txt", "a")
	ctx := context.Background()

	report, err := f.session.SaveZip(ctx, "", []string{filepath.Join(f.root, "docs")})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Files)
	assert.Equal(t, filepath.Join(f.root, f.cfg.ZipFileName), report.Output)

	f.write(t, "docs/b.txt", "b")
	report, err = f.open(t, Deps{}).UpdateLast(ctx)
	require.NoError(t, err)
	assert.Equal(t, ActionZip, report.Action)
	assert.Equal(t, 2, report.Files)
	assert.NotEmpty(t, report.Backup, "the previous archive is kept in history")
}

func TestUpdateLastClipboard(t *testing.T) {
	f := newFixture(t, nil)
	a := f.write(t, "a.txt", "a")
	_, err := f.session.CopyToClipboard(context.Background(), a, nil)
	require.NoError(t, err)

	f.write(t, "a.txt", "changed")
	_, err = f.session.UpdateLast(context.Background())
	require.NoError(t, err)
	assert.Contains(t, f.clipboard.text, "changed")
}

func TestAppendMode(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.AppendMode = true })
	a := f.write(t, "a.txt", "a")
	ctx := context.Background()

	_, err := f.session.SavePaste(ctx, a, nil)
	require.NoError(t, err)
	_, err = f.session.SavePaste(ctx, a, nil)
	require.NoError(t, err)

	block := "#### a.txt\n```\na\n```\n\n---\n"
	assert.Equal(t, block+"\n\n"+block, f.read(t, f.cfg.OutputFileName))
}

func TestThresholdConfirmation(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.WarnFileCount = 1 })
	f.write(t, "a.txt", "a")
	f.write(t, "b.txt", "b")
	ctx := context.Background()

	declined := &answer{ok: false}
	s := f.open(t, Deps{Confirmer: declined})
	report, err := s.SavePaste(ctx, f.root, nil)
	assert.ErrorIs(t, err, combine.ErrCancelled)
	assert.True(t, report.ThresholdExceeded)
	assert.Equal(t, 1, declined.asked)
	assert.Contains(t, declined.prompt, "2 files")
	_, statErr := os.Stat(filepath.Join(f.root, f.cfg.OutputFileName))
	assert.True(t, os.IsNotExist(statErr), "nothing is written after a declined confirmation")

	accepted := &answer{ok: true}
	_, err = f.open(t, Deps{Confirmer: accepted}).SavePaste(ctx, f.root, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, accepted.asked)
}

func TestOpenAfterSave(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.OpenAfterSave = true })
	a := f.write(t, "a.txt", "a")
	opener := &recordingOpener{}

	_, err := f.open(t, Deps{Opener: opener}).SavePaste(context.Background(), a, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(f.root, f.cfg.OutputFileName)}, opener.opened)
}

func TestOutputSubfolder(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.OutputSubfolder = "artifacts/llm" })
	f.write(t, "a.txt", "a")

	report, err := f.session.SavePaste(context.Background(), f.root, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.root, "artifacts", "llm", "paste.md"), report.Output)

	// The previous output is not collected on the next run.
	report, err = f.session.SavePaste(context.Background(), f.root, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Files)
}

func TestReportSampleIsBounded(t *testing.T) {
	f := newFixture(t, nil)
	for i := 0; i < 7; i++ {
		f.write(t, fmt.Sprintf("d/e%d.txt", i), "")
	}
	f.write(t, "d/keep.txt", "keep")

	report, err := f.session.CopyToClipboard(context.Background(), filepath.Join(f.root, "d"), nil)
	require.NoError(t, err)
	assert.Equal(t, 7, report.Skipped[combine.ReasonEmpty])
	assert.Len(t, report.Sample, SampleSize)
	assert.Equal(t, 7, report.SkippedTotal())
	assert.Contains(t, report.Summary(), "skipped 7 (empty: 7)")
}

func TestSnippet(t *testing.T) {
	f := newFixture(t, nil)
	p := f.write(t, "src/app.py", "import os\r\nprint(1)\r\nprint(2)\r\n")

	got, err := f.session.Snippet(p, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, "#### src/app.py (lines 2-3)\n```python\nprint(1)\nprint(2)\n```", got)

	require.NoError(t, f.session.CopyText(got))
	assert.Equal(t, got, f.clipboard.text)
}

func TestSelection(t *testing.T) {
	assert.Equal(t, []string{"p"}, Selection("p", nil))
	assert.Equal(t, []string{"a", "b"}, Selection("p", []string{"a", "", "b"}))
	assert.Empty(t, Selection("", []string{""}))
}

func TestFileStateStore(t *testing.T) {
	store := FileStateStore{Path: filepath.Join(t.TempDir(), "nested", StateFileName)}

	last, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, ActionNone, last.Kind)

	want := LastAction{
		Kind:      ActionZip,
		Selection: []string{"/w/a", "/w/b"},
		FileCount: 3,
		At:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		RunID:     "run-1",
		Undone:    true,
	}
	require.NoError(t, store.Save(want))
	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, os.WriteFile(store.Path, []byte("kind: [unclosed"), 0o644))
	_, err = store.Load()
	assert.Error(t, err)
}

func TestCorruptStateStartsFresh(t *testing.T) {
	f := newFixture(t, nil)
	path := StatePath(f.cfg, f.root)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("kind: [unclosed"), 0o644))

	s := f.open(t, Deps{})
	assert.Equal(t, ActionNone, s.Last().Kind)
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.5 KiB", FormatBytes(1536))
	assert.Equal(t, "100.0 MiB", FormatBytes(100<<20))
}

func TestDetectWorkspaceRoot(t *testing.T) {
	logger := zap.NewNop()

	plain := t.TempDir()
	assert.Equal(t, plain, DetectWorkspaceRoot(plain, logger))

	repo := t.TempDir()
	_, err := git.PlainInit(repo, false)
	require.NoError(t, err)
	sub := filepath.Join(repo, "pkg", "deep")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	got := DetectWorkspaceRoot(sub, logger)
	want, err := filepath.EvalSymlinks(repo)
	require.NoError(t, err)
	resolved, err := filepath.EvalSymlinks(got)
	require.NoError(t, err)
	assert.Equal(t, want, resolved)
	assert.False(t, strings.HasSuffix(got, "deep"))
}
