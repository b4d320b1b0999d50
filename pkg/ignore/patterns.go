package ignore

import (
	"strings"
)

// specialChars are regex metacharacters that a glob treats literally.
const specialChars = `\.+()|^$[]{}`

// Regex fragments produced for glob tokens.
const (
	anyDirsPrefix = `(?:.*/)?` // "**/" : zero or more leading directories
	anyRun        = `.*`       // "**" elsewhere
	segmentRun    = `[^/]*`    // "*"
	segmentChar   = `[^/]`     // "?"
)

// globToRegex converts a gitignore glob to an unanchored regex body. Every
// character other than '*' and '?' is matched literally, so bracket
// expressions are not supported.
func globToRegex(glob string) string {
	var b strings.Builder
	for i := 0; i < len(glob); i++ {
		c := glob[i]
		switch {
		case c == '*' && i+1 < len(glob) && glob[i+1] == '*':
			start := i
			i++
			if i+1 < len(glob) && glob[i+1] == '/' && (start == 0 || glob[start-1] == '/') {
				b.WriteString(anyDirsPrefix)
				i++
			} else {
				b.WriteString(anyRun)
			}
		case c == '*':
			b.WriteString(segmentRun)
		case c == '?':
			b.WriteString(segmentChar)
		default:
			if strings.IndexByte(specialChars, c) >= 0 {
				b.WriteByte('\\')
			}
			b.WriteByte(c)
		}
	}
	return b.String()
}

// anchorPattern anchors the regex body to match a whole path. Unanchored
// patterns may match after any directory prefix, i.e. at the basename.
func anchorPattern(pattern string, anchored bool) string {
	if anchored {
		return "^" + pattern + "$"
	}
	return "^" + anyDirsPrefix + pattern + "$"
}
