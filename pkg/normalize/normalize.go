// Package normalize turns raw file bytes into the text embedded in the
// output: control characters stripped, CRLF folded to LF, and optionally
// comments and redundant whitespace removed.
package normalize

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// ErrInvalidUTF8 is returned for content that is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("content is not valid UTF-8")

// Normalize decodes raw as UTF-8, strips control characters, normalizes line
// endings and, when compress is set, minifies according to lang.
func Normalize(raw []byte, lang string, compress bool) (string, error) {
	if !utf8.Valid(raw) {
		return "", ErrInvalidUTF8
	}
	text := NormalizeLineEndings(StripControlChars(string(raw)))
	if compress {
		text = Minify(text, lang)
	}
	return text, nil
}

// StripControlChars removes C0 and C1 control characters except tab, line
// feed and carriage return.
func StripControlChars(s string) string {
	if strings.IndexFunc(s, isStrippedControl) < 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if isStrippedControl(r) {
			return -1
		}
		return r
	}, s)
}

func isStrippedControl(r rune) bool {
	switch {
	case r <= 0x08:
		return true
	case r == 0x0B, r == 0x0C:
		return true
	case r >= 0x0E && r <= 0x1F:
		return true
	case r >= 0x7F && r <= 0x9F:
		return true
	}
	return false
}

// NormalizeLineEndings folds "\r\n" into "\n". Lone "\r" is kept.
func NormalizeLineEndings(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
