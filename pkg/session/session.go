// Package session runs the collect, format and write pipeline for one
// workspace and tracks the last action for update and undo.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"llmctx/pkg/combine"
	"llmctx/pkg/config"
	"llmctx/pkg/history"
	"llmctx/pkg/ignore"
	"llmctx/pkg/language"
	"llmctx/pkg/normalize"

	"go.uber.org/zap"
)

var (
	ErrNoSelection      = errors.New("no files or folders selected")
	ErrNoEligibleFiles  = errors.New("no eligible files in selection")
	ErrUndoClipboard    = errors.New("undo is not supported for clipboard output")
	ErrNoLastAction     = errors.New("no previous action")
	ErrNoClipboard      = errors.New("clipboard is not available")
	errUnknownOperation = errors.New("unknown action")
)

// Deps are the collaborators a Session calls out to. Nil fields fall back
// to defaults: no clipboard, accept every confirmation, never open files,
// in-memory state, the real clock and random UUIDs.
type Deps struct {
	Clipboard Clipboard
	Confirmer Confirmer
	Opener    Opener
	Store     StateStore
	Clock     history.Clock
	IDs       IDGenerator
}

// Session holds the validated configuration, the workspace root and the
// last-action slot. Each CLI invocation builds one Session.
type Session struct {
	cfg     config.Config
	root    string
	logger  *zap.Logger
	deps    Deps
	history *history.Manager
	last    LastAction
}

// New builds a Session for root and loads the last action from the store.
// An unreadable state file is logged and treated as no previous action.
func New(cfg config.Config, root string, deps Deps, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace root: %w", err)
	}

	if deps.Confirmer == nil {
		deps.Confirmer = AcceptAll{}
	}
	if deps.Store == nil {
		deps.Store = &MemoryStateStore{}
	}
	if deps.Clock == nil {
		deps.Clock = history.RealClock{}
	}
	if deps.IDs == nil {
		deps.IDs = UUIDGenerator{}
	}

	s := &Session{
		cfg:     cfg,
		root:    abs,
		logger:  logger,
		deps:    deps,
		history: history.NewManager(cfg.HistoryDir(abs), deps.Clock, cfg.MaxBackups, logger),
	}

	last, err := deps.Store.Load()
	if err != nil {
		logger.Warn("Failed to load last action", zap.Error(err))
	} else {
		s.last = last
	}
	return s, nil
}

// StatePath is where a FileStateStore for this workspace keeps its file.
func StatePath(cfg config.Config, root string) string {
	return filepath.Join(cfg.HistoryDir(root), StateFileName)
}

// Root is the absolute workspace root.
func (s *Session) Root() string { return s.root }

// Last returns the recorded last action.
func (s *Session) Last() LastAction { return s.last }

// CopyToClipboard formats the selection as markdown and writes it to the
// clipboard.
func (s *Session) CopyToClipboard(ctx context.Context, primary string, selected []string) (*Report, error) {
	return s.runSelection(ctx, ActionClipboard, primary, selected)
}

// SavePaste formats the selection as markdown into the paste file, backing
// up any existing file first.
func (s *Session) SavePaste(ctx context.Context, primary string, selected []string) (*Report, error) {
	return s.runSelection(ctx, ActionPaste, primary, selected)
}

// SaveZip packs the selection into the ZIP file, backing up any existing
// archive first.
func (s *Session) SaveZip(ctx context.Context, primary string, selected []string) (*Report, error) {
	return s.runSelection(ctx, ActionZip, primary, selected)
}

// UpdateLast reruns the last action against its recorded selection, so files
// added or removed under a selected directory are picked up.
func (s *Session) UpdateLast(ctx context.Context) (*Report, error) {
	if s.last.Kind == ActionNone || len(s.last.Selection) == 0 {
		return nil, ErrNoLastAction
	}
	return s.run(ctx, s.last.Kind, s.last.Selection)
}

// UndoLastSave restores the newest backup of the last saved output and
// returns the restored path. A second undo without a new save reports
// history.ErrNothingToUndo.
func (s *Session) UndoLastSave() (string, error) {
	switch s.last.Kind {
	case ActionNone:
		return "", ErrNoLastAction
	case ActionClipboard:
		return "", ErrUndoClipboard
	}
	if s.last.Undone {
		return "", history.ErrNothingToUndo
	}

	output := s.outputPath(s.last.Kind)
	used, err := s.history.RestoreLatest(output)
	if err != nil {
		if !errors.Is(err, history.ErrNothingToUndo) {
			s.logger.Error("Failed to restore backup", zap.String("output", output), zap.Error(err))
		}
		return "", err
	}
	s.logger.Info("Restored previous output", zap.String("output", output), zap.String("backup", used))

	s.last.Undone = true
	s.saveState()
	return output, nil
}

// Snippet formats lines start..end of path as a single fenced block.
func (s *Session) Snippet(path string, start, end int) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	text, err := combine.ExtractLines(normalize.NormalizeLineEndings(string(data)), start, end)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(s.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		rel = filepath.Base(abs)
	}
	rel = filepath.ToSlash(rel)

	formatter := combine.NewFormatter(s.cfg, language.NewResolver(s.cfg.MarkdownMapping))
	return formatter.FormatSnippet(rel, text, start, end)
}

// CopyText writes text to the clipboard.
func (s *Session) CopyText(text string) error {
	if s.deps.Clipboard == nil {
		return ErrNoClipboard
	}
	if err := s.deps.Clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("failed to write to clipboard: %w", err)
	}
	return nil
}

func (s *Session) runSelection(ctx context.Context, action Action, primary string, selected []string) (*Report, error) {
	selection := Selection(primary, selected)
	if len(selection) == 0 {
		return nil, ErrNoSelection
	}
	// Stored absolute so update works from any directory.
	for i, p := range selection {
		if abs, err := filepath.Abs(p); err == nil {
			selection[i] = abs
		}
	}
	return s.run(ctx, action, selection)
}

// Selection is the paths a run traverses: all selected paths when any are
// given, otherwise the primary path alone. Blank entries are dropped.
func Selection(primary string, selected []string) []string {
	var out []string
	for _, p := range selected {
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 && primary != "" {
		out = append(out, primary)
	}
	return out
}

func (s *Session) run(ctx context.Context, action Action, selection []string) (*Report, error) {
	runID := s.deps.IDs.New()
	logger := s.logger.With(zap.String("runID", runID), zap.String("action", string(action)))

	res, err := s.collect(ctx, selection, logger)
	if err != nil {
		logger.Error("Failed to collect files", zap.Error(err))
		return nil, err
	}
	report := newReport(action, runID, res)
	if res.Empty() {
		logger.Warn("No eligible files", zap.Int("skipped", len(res.Skipped)))
		return report, ErrNoEligibleFiles
	}

	if res.ThresholdExceeded {
		prompt := fmt.Sprintf("Selection contains %d files (%s). Continue?", len(res.Files), FormatBytes(res.TotalBytes))
		ok, err := s.deps.Confirmer.Confirm(prompt)
		if err != nil {
			return report, fmt.Errorf("failed to confirm: %w", err)
		}
		if !ok {
			logger.Info("Run cancelled at confirmation")
			return report, combine.ErrCancelled
		}
	}

	now := s.deps.Clock.Now()
	formatter := combine.NewFormatter(s.cfg, language.NewResolver(s.cfg.MarkdownMapping))

	switch action {
	case ActionClipboard:
		if err := s.CopyText(formatter.FormatMarkdown(res, now)); err != nil {
			logger.Error("Failed to copy to clipboard", zap.Error(err))
			return report, err
		}

	case ActionPaste:
		report.Output = s.outputPath(action)
		report.Backup = s.backup(report.Output, logger)
		if err := combine.WriteCombinedFile(report.Output, formatter.FormatMarkdown(res, now), s.cfg.AppendMode, logger); err != nil {
			return report, err
		}
		if s.cfg.OpenAfterSave && s.deps.Opener != nil {
			if err := s.deps.Opener.Open(report.Output); err != nil {
				logger.Warn("Failed to open saved file", zap.String("file", report.Output), zap.Error(err))
			}
		}

	case ActionZip:
		report.Output = s.outputPath(action)
		report.Backup = s.backup(report.Output, logger)
		if err := combine.WriteZip(res.Files, report.Output, logger); err != nil {
			return report, err
		}

	default:
		return report, fmt.Errorf("%w: %q", errUnknownOperation, action)
	}

	s.last = LastAction{
		Kind:      action,
		Selection: append([]string(nil), selection...),
		FileCount: len(res.Files),
		At:        now,
		RunID:     runID,
	}
	s.saveState()

	logger.Info("Run completed",
		zap.Int("files", report.Files),
		zap.Int64("bytes", report.Bytes),
		zap.Int("skipped", report.SkippedTotal()))
	return report, nil
}

func (s *Session) collect(ctx context.Context, selection []string, logger *zap.Logger) (*combine.Result, error) {
	var gi *ignore.GitIgnore
	if s.cfg.UseGitignore {
		var err error
		gi, err = ignore.Load(s.root, s.cfg.IgnorePatterns, logger)
		if err != nil {
			logger.Warn("Failed to load .gitignore, using configured patterns only", zap.Error(err))
			gi = ignore.CompileLines(logger, s.cfg.IgnorePatterns...)
		}
	}

	collector := combine.NewCollector(
		combine.NewOptions(s.cfg, s.root),
		combine.NewClassifier(s.cfg, gi, logger),
		language.NewResolver(s.cfg.MarkdownMapping),
		logger,
	)
	return collector.Collect(ctx, selection)
}

// backup copies an existing output into history. Failures are logged and
// the save proceeds.
func (s *Session) backup(output string, logger *zap.Logger) string {
	dst, err := s.history.Backup(output)
	if err != nil {
		logger.Warn("Failed to back up output, continuing", zap.String("output", output), zap.Error(err))
		return ""
	}
	return dst
}

func (s *Session) outputPath(action Action) string {
	if action == ActionZip {
		return s.cfg.OutputPath(s.root, s.cfg.ZipFileName)
	}
	return s.cfg.OutputPath(s.root, s.cfg.OutputFileName)
}

func (s *Session) saveState() {
	if err := s.deps.Store.Save(s.last); err != nil {
		s.logger.Warn("Failed to save last action", zap.Error(err))
	}
}
