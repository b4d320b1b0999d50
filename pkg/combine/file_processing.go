package combine

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"llmctx/pkg/normalize"

	"go.uber.org/zap"
)

// errEmptyContent marks a file whose normalized text is blank.
var errEmptyContent = errors.New("empty content")

// ProcessSingleFile reads an eligible file and normalizes its content. An
// empty or whitespace-only result is reported as errEmptyContent.
func ProcessSingleFile(record FileRecord, readPath, lang string, compress bool, logger *zap.Logger) (CollectedFile, error) {
	logger.Debug("Reading file content", zap.String("filePath", readPath))

	raw, err := os.ReadFile(readPath)
	if err != nil {
		return CollectedFile{}, fmt.Errorf("error reading file %s: %w", record.RelativePath, err)
	}

	content, err := normalize.Normalize(raw, lang, compress)
	if err != nil {
		return CollectedFile{}, fmt.Errorf("error decoding file %s: %w", record.RelativePath, err)
	}
	if strings.TrimSpace(content) == "" {
		return CollectedFile{}, errEmptyContent
	}

	logger.Debug("Successfully read file content",
		zap.String("filePath", readPath),
		zap.Int("contentSizeBytes", len(raw)))

	return CollectedFile{
		FileRecord:        record,
		RawContent:        raw,
		NormalizedContent: content,
		LanguageTag:       lang,
	}, nil
}
