// Package language maps file names to the language tag written after an
// opening code fence.
package language

import (
	"path"
	"sort"
	"strings"
)

// Resolver resolves fence language tags. The zero value uses only the
// built-in tables.
type Resolver struct {
	mapping map[string]string
	keys    []string // mapping keys, longest first
}

// NewResolver builds a Resolver whose mapping (file-name suffix to tag) is
// consulted before the built-in tables. Suffixes match case-insensitively.
func NewResolver(mapping map[string]string) *Resolver {
	r := &Resolver{mapping: make(map[string]string, len(mapping))}
	for k, v := range mapping {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		r.mapping[k] = v
		r.keys = append(r.keys, k)
	}
	sort.Slice(r.keys, func(i, j int) bool {
		if len(r.keys[i]) != len(r.keys[j]) {
			return len(r.keys[i]) > len(r.keys[j])
		}
		return r.keys[i] < r.keys[j]
	})
	return r
}

// ForFile returns the tag for a '/'-separated path, or "" when nothing
// matches. Resolution order: configured suffix mapping, built-in extension
// table, special whole-file names.
func (r *Resolver) ForFile(relPath string) string {
	name := path.Base(relPath)
	lower := strings.ToLower(name)

	if r != nil {
		for _, suffix := range r.keys {
			if strings.HasSuffix(lower, suffix) {
				return r.mapping[suffix]
			}
		}
	}

	if ext := strings.ToLower(path.Ext(name)); ext != "" && ext != name {
		if tag, ok := extensionTags[ext]; ok {
			return tag
		}
	}

	if tag, ok := specialFilenames[name]; ok {
		return tag
	}
	if tag, ok := extensionTags[lower]; ok {
		// dotfiles such as ".gitignore" have no extension of their own
		return tag
	}
	return ""
}

// IsMarkdown reports whether relPath is a markdown document, which gets a
// wider fence.
func IsMarkdown(relPath string) bool {
	lower := strings.ToLower(relPath)
	return strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".markdown")
}

// Family groups languages by comment syntax for the minifier.
type Family int

const (
	FamilyNone Family = iota
	// C-like comments plus regex literals.
	FamilyJS
	// Line and block comments.
	FamilyCLike
	// Line and block comments; ' opens a char literal or a lifetime.
	FamilyRust
	// # comments and triple-quoted strings.
	FamilyPython
	// Block comments only.
	FamilyCSS
)

// FamilyOf classifies a language tag.
func FamilyOf(tag string) Family {
	switch strings.ToLower(tag) {
	case "javascript", "js", "jsx", "typescript", "ts", "tsx":
		return FamilyJS
	case "java", "kotlin", "c", "cpp", "csharp", "go", "swift", "dart", "scala", "groovy", "objectivec", "jsonc", "php":
		return FamilyCLike
	case "rust":
		return FamilyRust
	case "python":
		return FamilyPython
	case "css", "scss", "less":
		return FamilyCSS
	}
	return FamilyNone
}

// IndentSensitive reports whether leading whitespace is significant.
func IndentSensitive(tag string) bool {
	switch strings.ToLower(tag) {
	case "python", "yaml", "makefile":
		return true
	}
	return false
}
