package combine

import (
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"llmctx/pkg/config"
	"llmctx/pkg/language"
)

// TimestampLayout is used in section and file headers.
const TimestampLayout = "2006-01-02 15:04:05"

const (
	minFence         = 3
	minMarkdownFence = 6
)

// Formatter renders collected files as markdown.
type Formatter struct {
	separator        string
	includeTree      bool
	includeAnalysis  bool
	includeTimestamp bool
	resolver         *language.Resolver
}

// NewFormatter builds a Formatter from cfg.
func NewFormatter(cfg config.Config, resolver *language.Resolver) *Formatter {
	return &Formatter{
		separator:        cfg.Separator,
		includeTree:      cfg.IncludeFileTree,
		includeAnalysis:  cfg.IncludeFileAnalysis,
		includeTimestamp: cfg.IncludeTimestamp,
		resolver:         resolver,
	}
}

// FormatMarkdown renders res: optional file tree, optional analysis, then
// one fenced block per file in relative-path order. now is only used when
// timestamps are enabled.
func (f *Formatter) FormatMarkdown(res *Result, now time.Time) string {
	var b strings.Builder
	stamp := ""
	if f.includeTimestamp {
		stamp = " @ " + now.Format(TimestampLayout)
	}

	files := sortedFiles(res.Files)

	if f.includeTree {
		paths := make([]string, len(files))
		for i, file := range files {
			paths[i] = file.RelativePath
		}
		b.WriteString("## File Tree" + stamp + "\n```\n")
		b.WriteString(GenerateTree(paths))
		b.WriteString("\n```\n\n")
	}

	if f.includeAnalysis {
		b.WriteString("## File Analysis" + stamp + "\n")
		b.WriteString("- Total files: " + strconv.Itoa(len(files)) + "\n")
		counts := res.ExtensionCounts
		if counts == nil {
			counts = countExtensions(files)
		}
		exts := make([]string, 0, len(counts))
		for ext := range counts {
			exts = append(exts, ext)
		}
		sort.Strings(exts)
		for _, ext := range exts {
			b.WriteString("- " + ext + ": " + strconv.Itoa(counts[ext]) + "\n")
		}
		b.WriteString("\n" + f.separator)
	}

	for _, file := range files {
		b.WriteString(f.FormatBlock(file.RelativePath, file.NormalizedContent, stamp))
		b.WriteString("\n" + f.separator)
	}
	return b.String()
}

// FormatBlock renders one "#### path" header and fenced block without the
// trailing separator. Trailing whitespace of content is trimmed.
func (f *Formatter) FormatBlock(relPath, content, headerSuffix string) string {
	content = strings.TrimRightFunc(content, unicode.IsSpace)
	fence := BestFence(content, language.IsMarkdown(relPath))
	lang := f.resolver.ForFile(relPath)

	var b strings.Builder
	b.WriteString("#### ")
	b.WriteString(strings.ReplaceAll(relPath, "`", ""))
	b.WriteString(headerSuffix)
	b.WriteString("\n")
	b.WriteString(fence + lang + "\n")
	b.WriteString(content)
	b.WriteString("\n" + fence)
	return b.String()
}

// BestFence returns a backtick fence one longer than the longest backtick
// run in content, at least 3 (6 for markdown documents).
func BestFence(content string, markdown bool) string {
	longest, run := 0, 0
	for i := 0; i < len(content); i++ {
		if content[i] == '`' {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}

	n := longest + 1
	floor := minFence
	if markdown {
		floor = minMarkdownFence
	}
	if n < floor {
		n = floor
	}
	return strings.Repeat("`", n)
}

func sortedFiles(files []CollectedFile) []CollectedFile {
	if sort.SliceIsSorted(files, func(i, j int) bool { return files[i].RelativePath < files[j].RelativePath }) {
		return files
	}
	out := append([]CollectedFile(nil), files...)
	sort.Slice(out, func(i, j int) bool { return out[i].RelativePath < out[j].RelativePath })
	return out
}

func countExtensions(files []CollectedFile) map[string]int {
	counts := make(map[string]int)
	for _, file := range files {
		ext := extensionOf(file.RelativePath)
		if ext == "" {
			ext = NoExtension
		}
		counts[ext]++
	}
	return counts
}
