// Package history keeps timestamped copies of output artifacts and restores
// the most recent one on undo.
package history

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrNothingToUndo is returned when no backup exists for an output.
var ErrNothingToUndo = errors.New("nothing to undo")

// Clock abstracts time retrieval so backup names are deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

const (
	secondLayout  = "2006_01_02T15_04_05"
	undoMarker    = "before-undo"
	maxCollisions = 1000
)

// Timestamp formats t as a fixed-width, lexicographically sortable string
// with millisecond precision: 2006_01_02T15_04_05_000.
func Timestamp(t time.Time) string {
	return fmt.Sprintf("%s_%03d", t.Format(secondLayout), t.Nanosecond()/int(time.Millisecond))
}

// Manager owns one history directory.
type Manager struct {
	dir        string
	clock      Clock
	maxBackups int
	logger     *zap.Logger
}

// NewManager returns a Manager for dir. maxBackups bounds the backups kept
// per output; zero keeps all of them.
func NewManager(dir string, clock Clock, maxBackups int, logger *zap.Logger) *Manager {
	if clock == nil {
		clock = RealClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{dir: dir, clock: clock, maxBackups: maxBackups, logger: logger}
}

// Dir is the history directory.
func (m *Manager) Dir() string { return m.dir }

// Backup copies outputPath into the history directory as
// <base>.<timestamp><ext>. It returns "" without error when outputPath does
// not exist.
func (m *Manager) Backup(outputPath string) (string, error) {
	if _, err := os.Stat(outputPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to stat output: %w", err)
	}

	base, ext := splitName(outputPath)
	dst, err := m.copyTimestamped(outputPath, func(ts string) string {
		return base + "." + ts + ext
	})
	if err != nil {
		return "", err
	}
	m.logger.Debug("Backed up output", zap.String("output", outputPath), zap.String("backup", dst))

	m.prune(m.backupPattern(outputPath))
	m.prune(m.snapshotPattern(outputPath))
	return dst, nil
}

// Backups lists the restorable backups of outputPath, oldest first.
func (m *Manager) Backups(outputPath string) ([]string, error) {
	return m.list(m.backupPattern(outputPath))
}

// RestoreLatest copies the newest backup of outputPath over it and deletes
// that backup. The current output, if any, is first saved as a
// <base>.before-undo.<timestamp><ext> snapshot, which is never itself
// restored. Returns the consumed backup path, or ErrNothingToUndo.
func (m *Manager) RestoreLatest(outputPath string) (string, error) {
	backups, err := m.Backups(outputPath)
	if err != nil {
		return "", err
	}
	if len(backups) == 0 {
		return "", ErrNothingToUndo
	}
	latest := backups[len(backups)-1]

	if _, statErr := os.Stat(outputPath); statErr == nil {
		base, ext := splitName(outputPath)
		snapshot, err := m.copyTimestamped(outputPath, func(ts string) string {
			return base + "." + undoMarker + "." + ts + ext
		})
		if err != nil {
			m.logger.Warn("Failed to snapshot output before undo", zap.String("output", outputPath), zap.Error(err))
		} else {
			m.logger.Debug("Saved pre-undo snapshot", zap.String("snapshot", snapshot))
		}
	}

	if err := replaceFile(latest, outputPath); err != nil {
		return "", fmt.Errorf("failed to restore backup: %w", err)
	}
	if err := os.Remove(latest); err != nil {
		return "", fmt.Errorf("failed to remove consumed backup: %w", err)
	}
	m.logger.Debug("Restored backup", zap.String("output", outputPath), zap.String("backup", latest))
	return latest, nil
}

// copyTimestamped copies src into the history directory under name(ts),
// advancing the timestamp by a millisecond while the name is taken.
func (m *Manager) copyTimestamped(src string, name func(ts string) string) (string, error) {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create history directory: %w", err)
	}

	now := m.clock.Now()
	for i := 0; i < maxCollisions; i++ {
		dst := filepath.Join(m.dir, name(Timestamp(now)))
		err := copyFile(src, dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL)
		if err == nil {
			return dst, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("failed to copy %s to history: %w", src, err)
		}
		now = now.Add(time.Millisecond)
	}
	return "", fmt.Errorf("failed to find a free backup name for %s", src)
}

func (m *Manager) backupPattern(outputPath string) *regexp.Regexp {
	base, ext := splitName(outputPath)
	return regexp.MustCompile(`^` + regexp.QuoteMeta(base) + `\.` + timestampRegex + regexp.QuoteMeta(ext) + `$`)
}

func (m *Manager) snapshotPattern(outputPath string) *regexp.Regexp {
	base, ext := splitName(outputPath)
	return regexp.MustCompile(`^` + regexp.QuoteMeta(base) + `\.` + undoMarker + `\.` + timestampRegex + regexp.QuoteMeta(ext) + `$`)
}

const timestampRegex = `\d{4}_\d{2}_\d{2}T\d{2}_\d{2}_\d{2}_\d{3}`

// list returns the history entries matching pattern, sorted ascending. A
// missing directory yields no entries.
func (m *Manager) list(pattern *regexp.Regexp) ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read history directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.Type().IsRegular() && pattern.MatchString(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(m.dir, name)
	}
	return paths, nil
}

func (m *Manager) prune(pattern *regexp.Regexp) {
	if m.maxBackups <= 0 {
		return
	}
	paths, err := m.list(pattern)
	if err != nil || len(paths) <= m.maxBackups {
		return
	}
	for _, p := range paths[:len(paths)-m.maxBackups] {
		if err := os.Remove(p); err != nil {
			m.logger.Warn("Failed to prune backup", zap.String("backup", p), zap.Error(err))
		}
	}
}

// splitName splits the base name of p into stem and extension.
func splitName(p string) (string, string) {
	name := filepath.Base(p)
	ext := filepath.Ext(name)
	if ext == name {
		ext = ""
	}
	return strings.TrimSuffix(name, ext), ext
}

func copyFile(src, dst string, flags int) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, flags, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			_ = os.Remove(dst)
		}
	}()

	_, err = io.Copy(out, in)
	return err
}

// replaceFile copies src over dst through a temporary file in dst's directory.
func replaceFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := copyFile(src, tmpName, os.O_WRONLY|os.O_TRUNC); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, dst); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
