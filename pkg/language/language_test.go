package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForFile(t *testing.T) {
	r := NewResolver(map[string]string{
		".foo":  "foobar",
		".ts":   "typescript",
		".d.ts": "dts",
	})
	tests := []struct {
		path string
		want string
	}{
		{"src/hello.foo", "foobar"},
		{"src/hello.FOO", "foobar"},
		{"types/index.d.ts", "dts"},
		{"app.ts", "typescript"},
		{"main.go", "go"},
		{"lib/x.RS", "rust"},
		{"a.txt", ""},
		{"notes", ""},
		{"build/Dockerfile", "dockerfile"},
		{"Makefile", "makefile"},
		{"CMakeLists.txt", "cmake"},
		{".gitignore", "git"},
		{".eslintrc", "json"},
		{"README.md", "markdown"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, r.ForFile(tt.path))
		})
	}
}

func TestForFileNilResolver(t *testing.T) {
	var r *Resolver
	assert.Equal(t, "python", r.ForFile("x.py"))
}

func TestIsMarkdown(t *testing.T) {
	assert.True(t, IsMarkdown("docs/README.md"))
	assert.True(t, IsMarkdown("a.MARKDOWN"))
	assert.False(t, IsMarkdown("a.mdx"))
}

func TestFamilyOf(t *testing.T) {
	assert.Equal(t, FamilyJS, FamilyOf("typescript"))
	assert.Equal(t, FamilyJS, FamilyOf("js"))
	assert.Equal(t, FamilyCLike, FamilyOf("go"))
	assert.Equal(t, FamilyCLike, FamilyOf("php"))
	assert.Equal(t, FamilyRust, FamilyOf("rust"))
	assert.Equal(t, FamilyPython, FamilyOf("python"))
	assert.Equal(t, FamilyCSS, FamilyOf("css"))
	assert.Equal(t, FamilyNone, FamilyOf(""))
	assert.Equal(t, FamilyNone, FamilyOf("bash"))
}

func TestIndentSensitive(t *testing.T) {
	assert.True(t, IndentSensitive("python"))
	assert.True(t, IndentSensitive("YAML"))
	assert.False(t, IndentSensitive("go"))
}
