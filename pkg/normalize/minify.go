package normalize

import (
	"strings"
	"unicode"

	"llmctx/pkg/language"
)

// Minify strips comments for the languages that have a scanner, then trims
// every line and drops blank ones. Indentation-sensitive languages are only
// right-trimmed; everything else has whitespace runs collapsed to one space.
func Minify(content, lang string) string {
	if syn, ok := syntaxFor(language.FamilyOf(lang)); ok {
		content = StripComments(content, syn)
	}

	indent := language.IndentSensitive(lang)
	lines := strings.Split(content, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if indent {
			line = strings.TrimRightFunc(line, unicode.IsSpace)
		} else {
			line = strings.Join(strings.Fields(line), " ")
		}
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// Syntax describes the comment and string forms a scanner must recognise.
type Syntax struct {
	LineComment  string // "//", "#" or "" for none
	BlockComment bool   // "/* ... */"
	Quotes       string // single-character string delimiters
	MultiLine    string // quotes whose strings may span lines
	TripleQuotes bool   // Python """ and '''
	Regex        bool   // JavaScript regex literals
	CharLiterals bool   // Rust: ' starts a char literal or a lifetime
}

var (
	jsSyntax     = Syntax{LineComment: "//", BlockComment: true, Quotes: "\"'`", MultiLine: "`", Regex: true}
	cLikeSyntax  = Syntax{LineComment: "//", BlockComment: true, Quotes: "\"'`", MultiLine: "`"}
	rustSyntax   = Syntax{LineComment: "//", BlockComment: true, Quotes: "\"", MultiLine: "\"", CharLiterals: true}
	pythonSyntax = Syntax{LineComment: "#", Quotes: "\"'", TripleQuotes: true}
	cssSyntax    = Syntax{BlockComment: true, Quotes: "\"'"}
)

func syntaxFor(f language.Family) (Syntax, bool) {
	switch f {
	case language.FamilyJS:
		return jsSyntax, true
	case language.FamilyCLike:
		return cLikeSyntax, true
	case language.FamilyRust:
		return rustSyntax, true
	case language.FamilyPython:
		return pythonSyntax, true
	case language.FamilyCSS:
		return cssSyntax, true
	}
	return Syntax{}, false
}

type scanState int

const (
	stateNormal scanState = iota
	stateString
	stateLineComment
	stateBlockComment
	stateRegex
)

// StripComments removes comments from src in a single pass. String and regex
// literals are copied verbatim, so comment markers inside them survive. A
// block comment is replaced by one space so adjacent tokens stay apart. Line
// comments keep their terminating newline.
func StripComments(src string, syn Syntax) string {
	in := []rune(src)
	var out strings.Builder
	out.Grow(len(src))

	state := stateNormal
	var delim []rune // closing delimiter of the current string
	inClass := false // inside [...] of a regex literal
	var lastSignificant rune

	emit := func(r rune) {
		out.WriteRune(r)
		if !unicode.IsSpace(r) {
			lastSignificant = r
		}
	}

	for i := 0; i < len(in); i++ {
		r := in[i]
		var next rune
		if i+1 < len(in) {
			next = in[i+1]
		}

		switch state {
		case stateNormal:
			switch {
			case syn.TripleQuotes && (r == '"' || r == '\'') && hasRunAt(in, i, r, 3):
				delim = []rune{r, r, r}
				state = stateString
				emit(r)
				emit(r)
				emit(r)
				i += 2
			case syn.CharLiterals && r == '\'':
				// 'x' and '\n' are literals; anything else is a lifetime.
				n := charLiteralLen(in, i)
				for j := 0; j < n; j++ {
					emit(in[i+j])
				}
				i += n - 1
			case strings.ContainsRune(syn.Quotes, r):
				delim = []rune{r}
				state = stateString
				emit(r)
			case syn.BlockComment && r == '/' && next == '*':
				state = stateBlockComment
				i++
			case syn.LineComment == "//" && r == '/' && next == '/':
				state = stateLineComment
				i++
			case syn.LineComment == "#" && r == '#':
				state = stateLineComment
			case syn.Regex && r == '/' && regexAllowedAfter(lastSignificant):
				state = stateRegex
				inClass = false
				emit(r)
			default:
				emit(r)
			}

		case stateString:
			switch {
			case r == '\\' && i+1 < len(in):
				emit(r)
				emit(next)
				i++
			case hasDelimAt(in, i, delim):
				for _, d := range delim {
					emit(d)
				}
				i += len(delim) - 1
				state = stateNormal
			case r == '\n' && len(delim) == 1 && !strings.ContainsRune(syn.MultiLine, delim[0]):
				// unterminated single-line string
				emit(r)
				state = stateNormal
			default:
				emit(r)
			}

		case stateLineComment:
			if r == '\n' {
				emit(r)
				state = stateNormal
			}

		case stateBlockComment:
			if r == '*' && next == '/' {
				i++
				out.WriteRune(' ')
				state = stateNormal
			}

		case stateRegex:
			switch {
			case r == '\\' && i+1 < len(in):
				emit(r)
				emit(next)
				i++
			case r == '\n':
				emit(r)
				state = stateNormal
			case r == '[':
				inClass = true
				emit(r)
			case r == ']':
				inClass = false
				emit(r)
			case r == '/' && !inClass:
				emit(r)
				state = stateNormal
			default:
				emit(r)
			}
		}
	}
	return out.String()
}

// regexAllowedAfter reports whether a '/' following prev starts a regex
// literal rather than a division.
func regexAllowedAfter(prev rune) bool {
	if prev == 0 {
		return true
	}
	return strings.ContainsRune("(,=:[!&|?{};+-*%<>~^", prev)
}

// charLiteralLen returns the length of the char literal starting at in[i],
// or 1 when the quote introduces a lifetime.
func charLiteralLen(in []rune, i int) int {
	if i+1 < len(in) && in[i+1] == '\\' {
		for j := i + 2; j < len(in) && in[j] != '\n'; j++ {
			if in[j] == '\'' && j > i+2 {
				return j - i + 1
			}
		}
		return 1
	}
	if i+2 < len(in) && in[i+1] != '\n' && in[i+2] == '\'' {
		return 3
	}
	return 1
}

func hasRunAt(in []rune, i int, r rune, n int) bool {
	if i+n > len(in) {
		return false
	}
	for j := i; j < i+n; j++ {
		if in[j] != r {
			return false
		}
	}
	return true
}

func hasDelimAt(in []rune, i int, delim []rune) bool {
	if i+len(delim) > len(in) {
		return false
	}
	for j, d := range delim {
		if in[i+j] != d {
			return false
		}
	}
	return true
}
