package combine

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// WriteZip writes one archive entry per file, named by its relative path and
// holding its normalized content. The archive is streamed to a temporary
// file in the target directory and renamed into place, so a failed write
// never leaves a partial archive at outputPath.
func WriteZip(files []CollectedFile, outputPath string, logger *zap.Logger) (err error) {
	dir := filepath.Dir(outputPath)
	if err := EnsureDirectory(dir, logger); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(outputPath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary archive: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			if removeErr := os.Remove(tmpName); removeErr != nil && !os.IsNotExist(removeErr) {
				logger.Warn("Failed to remove temporary archive", zap.String("file", tmpName), zap.Error(removeErr))
			}
		}
	}()

	zw := zip.NewWriter(tmp)
	for _, file := range sortedFiles(files) {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:   file.RelativePath,
			Method: zip.Deflate,
		})
		if err != nil {
			return fmt.Errorf("failed to add %s to archive: %w", file.RelativePath, err)
		}
		if _, err := w.Write([]byte(file.NormalizedContent)); err != nil {
			return fmt.Errorf("failed to write %s to archive: %w", file.RelativePath, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close archive: %w", err)
	}
	if err := os.Rename(tmpName, outputPath); err != nil {
		return fmt.Errorf("failed to move archive into place: %w", err)
	}

	logger.Debug("Wrote archive", zap.String("file", outputPath), zap.Int("entries", len(files)))
	return nil
}
