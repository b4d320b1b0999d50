package language

// extensionTags is the built-in extension table. ".txt" is deliberately
// absent so plain text gets an empty tag.
var extensionTags = map[string]string{
	// JavaScript family
	".js":    "js",
	".jsx":   "jsx",
	".ts":    "ts",
	".tsx":   "tsx",
	".mjs":   "js",
	".cjs":   "js",
	".json":  "json",
	".jsonc": "jsonc",

	// Web
	".html": "html",
	".htm":  "html",
	".css":  "css",
	".scss": "scss",
	".sass": "scss",
	".less": "less",
	".svg":  "svg",

	// Markup
	".md":       "markdown",
	".markdown": "markdown",
	".xml":      "xml",
	".yaml":     "yaml",
	".yml":      "yaml",
	".toml":     "toml",

	// Shell
	".sh":   "bash",
	".bash": "bash",
	".zsh":  "bash",
	".fish": "fish",
	".ps1":  "powershell",
	".bat":  "batch",
	".cmd":  "batch",

	".py":    "python",
	".pyi":   "python",
	".ipynb": "python",
	".rb":    "ruby",
	".erb":   "erb",
	".php":   "php",
	".phtml": "php",

	// JVM
	".java":   "java",
	".kt":     "kotlin",
	".kts":    "kotlin",
	".scala":  "scala",
	".groovy": "groovy",
	".gradle": "gradle",

	// C family
	".c":     "c",
	".h":     "c",
	".cpp":   "cpp",
	".cc":    "cpp",
	".cxx":   "cpp",
	".hpp":   "cpp",
	".hxx":   "cpp",
	".cs":    "csharp",
	".m":     "objectivec",
	".mm":    "objectivec",
	".swift": "swift",
	".go":    "go",
	".rs":    "rust",

	// .NET
	".fs":  "fsharp",
	".fsx": "fsharp",
	".vb":  "vb",

	".sql":     "sql",
	".graphql": "graphql",
	".gql":     "graphql",

	// Config
	".ini":           "ini",
	".conf":          "conf",
	".cfg":           "ini",
	".env":           "dotenv",
	".properties":    "properties",
	".htaccess":      "apache",
	".nginx":         "nginx",
	".dockerignore":  "docker",
	".gitignore":     "git",
	".gitattributes": "git",

	".mk":       "makefile",
	".makefile": "makefile",
	".tf":       "terraform",
	".hcl":      "hcl",

	".tex":        "latex",
	".diff":       "diff",
	".patch":      "diff",
	".log":        "log",
	".csv":        "csv",
	".tsv":        "tsv",
	".sol":        "solidity",
	".elm":        "elm",
	".clj":        "clojure",
	".cljs":       "clojure",
	".edn":        "clojure",
	".lisp":       "lisp",
	".r":          "r",
	".rmd":        "r",
	".dart":       "dart",
	".ex":         "elixir",
	".exs":        "elixir",
	".erl":        "erlang",
	".hs":         "haskell",
	".lhs":        "haskell",
	".lua":        "lua",
	".ml":         "ocaml",
	".mli":        "ocaml",
	".pl":         "perl",
	".pm":         "perl",
	".raku":       "raku",
	".zig":        "zig",
	".dockerfile": "dockerfile",
}

// specialFilenames matches whole base names, case-sensitively.
var specialFilenames = map[string]string{
	".editorconfig":       "editorconfig",
	".eslintrc":           "json",
	".prettierrc":         "json",
	".stylelintrc":        "json",
	".babelrc":            "json",
	".gitconfig":          "git",
	"CMakeLists.txt":      "cmake",
	"CODEOWNERS":          "text",
	"LICENSE":             "text",
	"README":              "markdown",
	"CONTRIBUTING":        "markdown",
	"Jenkinsfile":         "groovy",
	"Dockerfile":          "dockerfile",
	"Makefile":            "makefile",
	"makefile":            "makefile",
	"GNUmakefile":         "makefile",
	"Rakefile":            "ruby",
	"Gemfile":             "ruby",
	"go.mod":              "go",
	"go.sum":              "text",
	"docker-compose.yml":  "yaml",
	"docker-compose.yaml": "yaml",
}
