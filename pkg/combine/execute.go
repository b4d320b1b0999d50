// File: pkg/combine/execute.go
package combine

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// AppendSeparator is placed between an existing paste file and appended content.
const AppendSeparator = "\n\n"

// WriteCombinedFile writes content to outputPath. In append mode an existing
// file is extended with AppendSeparator followed by content; otherwise the
// file is replaced.
func WriteCombinedFile(outputPath, content string, appendMode bool, logger *zap.Logger) (err error) {
	logger.Debug("Writing combined content to output file",
		zap.String("combinedFile", outputPath),
		zap.Bool("append", appendMode))

	if err := EnsureDirectory(filepath.Dir(outputPath), logger); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	prefix := ""
	if appendMode {
		if _, statErr := os.Stat(outputPath); statErr == nil {
			flags = os.O_WRONLY | os.O_APPEND
			prefix = AppendSeparator
		} else if !errors.Is(statErr, fs.ErrNotExist) {
			return fmt.Errorf("failed to stat output file: %w", statErr)
		}
	}

	outFile, err := os.OpenFile(outputPath, flags, 0o644)
	if err != nil {
		logger.Error("Failed to create output file", zap.String("file", outputPath), zap.Error(err))
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := outFile.Close(); closeErr != nil {
			logger.Error("Failed to close output file", zap.String("file", outputPath), zap.Error(closeErr))
			if err == nil {
				err = fmt.Errorf("failed to close output file: %w", closeErr)
			}
		}
	}()

	writer := bufio.NewWriter(outFile)
	if _, err := writer.WriteString(prefix + content); err != nil {
		logger.Error("Failed to write content to combined file", zap.String("file", outputPath), zap.Error(err))
		return fmt.Errorf("failed to write content: %w", err)
	}
	if err := writer.Flush(); err != nil {
		logger.Error("Failed to flush output file", zap.String("file", outputPath), zap.Error(err))
		return fmt.Errorf("failed to flush output: %w", err)
	}
	return nil
}

// EnsureDirectory ensures a directory exists, creating it if necessary.
func EnsureDirectory(path string, logger *zap.Logger) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		logger.Error("Failed to create directory", zap.String("path", path), zap.Error(err))
		return err
	}
	logger.Debug("Ensured directory exists", zap.String("path", path))
	return nil
}
