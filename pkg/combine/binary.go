// File: pkg/combine/binary.go
package combine

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path"
	"strings"
)

// IsBinaryContent reports whether data holds a NUL byte within its first
// SniffSize bytes. Text encodings with embedded NULs (UTF-16) are
// misclassified, and binary formats without a NUL in the window slip through.
func IsBinaryContent(data []byte) bool {
	if len(data) > SniffSize {
		data = data[:SniffSize]
	}
	return bytes.IndexByte(data, 0) >= 0
}

// sniffFile reads at most SniffSize bytes from the start of filePath.
func sniffFile(filePath string) ([]byte, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	buffer := make([]byte, SniffSize)
	n, err := io.ReadFull(file, buffer)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}
	return buffer[:n], nil
}

// extensionOf returns the lowercased final extension of a '/'-separated path,
// including the leading dot, or "" when there is none.
func extensionOf(relPath string) string {
	return strings.ToLower(path.Ext(relPath))
}
