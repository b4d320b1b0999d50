// Package config loads the per-run configuration through viper and turns it
// into a validated, read-only Config value.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// ErrInvalid is returned (wrapped) when a configuration value fails validation.
var ErrInvalid = errors.New("invalid configuration")

// SymlinkMode controls how the collector treats symbolic links.
type SymlinkMode string

const (
	SymlinkSkip    SymlinkMode = "skip"
	SymlinkResolve SymlinkMode = "resolve"
)

// Config keys. Extension mapping keys contain dots, so the viper instance
// returned by New uses KeyDelimiter instead of ".".
const (
	KeyDelimiter = "::"

	KeyFilteredExtensions  = "filteredExtensions"
	KeyMaxFileSize         = "maxFileSize"
	KeySeparator           = "separator"
	KeyUseGitignore        = "useGitignore"
	KeySymlinkHandling     = "symlinkHandling"
	KeyCompressContent     = "compressContent"
	KeyIncludeFileTree     = "includeFileTree"
	KeyIncludeFileAnalysis = "includeFileAnalysis"
	KeyIncludeTimestamp    = "includeTimestamp"
	KeyOutputFileName      = "outputFileName"
	KeyZipFileName         = "zipFileName"
	KeyOutputSubfolder     = "outputSubfolder"
	KeyHistoryFolder       = "historyFolder"
	KeyAppendMode          = "appendMode"
	KeyOpenAfterSave       = "openAfterSave"
	KeyMarkdownMapping     = "markdownMapping"
	KeyExcludedPaths       = "excludedPaths"
	KeyIgnorePatterns      = "ignorePatterns"
	KeyWarnFileCount       = "warnFileCount"
	KeyWarnTotalBytes      = "warnTotalBytes"
	KeyMaxFileCount        = "maxFileCount"
	KeyMaxTotalBytes       = "maxTotalBytes"
	KeyMaxBackups          = "maxBackups"

	EnvPrefix      = "LLMCTX"
	ConfigFileName = ".llmctx"
)

// Config is the complete set of options for one run.
type Config struct {
	FilteredExtensions  []string          `mapstructure:"filteredExtensions"`
	MaxFileSize         int64             `mapstructure:"maxFileSize"`
	Separator           string            `mapstructure:"separator"`
	UseGitignore        bool              `mapstructure:"useGitignore"`
	SymlinkHandling     SymlinkMode       `mapstructure:"symlinkHandling"`
	CompressContent     bool              `mapstructure:"compressContent"`
	IncludeFileTree     bool              `mapstructure:"includeFileTree"`
	IncludeFileAnalysis bool              `mapstructure:"includeFileAnalysis"`
	IncludeTimestamp    bool              `mapstructure:"includeTimestamp"`
	OutputFileName      string            `mapstructure:"outputFileName"`
	ZipFileName         string            `mapstructure:"zipFileName"`
	OutputSubfolder     string            `mapstructure:"outputSubfolder"`
	HistoryFolder       string            `mapstructure:"historyFolder"`
	AppendMode          bool              `mapstructure:"appendMode"`
	OpenAfterSave       bool              `mapstructure:"openAfterSave"`
	MarkdownMapping     map[string]string `mapstructure:"markdownMapping"`
	ExcludedPaths       []string          `mapstructure:"excludedPaths"`
	IgnorePatterns      []string          `mapstructure:"ignorePatterns"`

	// Soft thresholds trigger the confirmation gate; hard limits stop traversal.
	WarnFileCount  int   `mapstructure:"warnFileCount"`
	WarnTotalBytes int64 `mapstructure:"warnTotalBytes"`
	MaxFileCount   int   `mapstructure:"maxFileCount"`
	MaxTotalBytes  int64 `mapstructure:"maxTotalBytes"`

	MaxBackups int `mapstructure:"maxBackups"`
}

// DefaultExcludedPaths are never descended into or collected.
var DefaultExcludedPaths = []string{".git", "node_modules", "out", "dist", ".env", ".vercel", ".next", ".vscode-test"}

// DefaultFilteredExtensions are skipped without reading their content.
var DefaultFilteredExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".exe", ".dll", ".ico", ".svg", ".webp", ".bmp", ".tiff", ".zip", ".tar"}

// DefaultMarkdownMapping is consulted before the built-in language table.
var DefaultMarkdownMapping = map[string]string{
	".md":   "markdown",
	".js":   "javascript",
	".ts":   "typescript",
	".json": "json",
	".py":   "python",
	".css":  "css",
	".sh":   "bash",
	".yml":  "yaml",
	".yaml": "yaml",
	".dart": "dart",
	".java": "java",
	".kt":   "kotlin",
	".xml":  "xml",
	".html": "html",
	".php":  "php",
	".rb":   "ruby",
	".go":   "go",
	".rs":   "rust",
	".cpp":  "cpp",
	".c":    "c",
	".h":    "c",
	".hpp":  "cpp",
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	mapping := make(map[string]string, len(DefaultMarkdownMapping))
	for k, v := range DefaultMarkdownMapping {
		mapping[k] = v
	}
	return Config{
		FilteredExtensions:  append([]string(nil), DefaultFilteredExtensions...),
		MaxFileSize:         5 * 1024 * 1024,
		Separator:           "\n---\n",
		UseGitignore:        true,
		SymlinkHandling:     SymlinkSkip,
		CompressContent:     false,
		IncludeFileTree:     true,
		IncludeFileAnalysis: true,
		IncludeTimestamp:    true,
		OutputFileName:      "paste.md",
		ZipFileName:         "context.zip",
		OutputSubfolder:     "",
		HistoryFolder:       ".llm-context-history",
		AppendMode:          false,
		OpenAfterSave:       false,
		MarkdownMapping:     mapping,
		ExcludedPaths:       append([]string(nil), DefaultExcludedPaths...),
		IgnorePatterns:      nil,
		WarnFileCount:       500,
		WarnTotalBytes:      100 * 1024 * 1024,
		MaxFileCount:        5000,
		MaxTotalBytes:       1024 * 1024 * 1024,
		MaxBackups:          10,
	}
}

// New returns a viper instance with defaults registered and environment
// overrides (LLMCTX_*) enabled.
func New() *viper.Viper {
	v := viper.NewWithOptions(viper.KeyDelimiter(KeyDelimiter))
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(KeyDelimiter, "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// SetDefaults registers every default from Default on v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault(KeyFilteredExtensions, d.FilteredExtensions)
	v.SetDefault(KeyMaxFileSize, d.MaxFileSize)
	v.SetDefault(KeySeparator, d.Separator)
	v.SetDefault(KeyUseGitignore, d.UseGitignore)
	v.SetDefault(KeySymlinkHandling, string(d.SymlinkHandling))
	v.SetDefault(KeyCompressContent, d.CompressContent)
	v.SetDefault(KeyIncludeFileTree, d.IncludeFileTree)
	v.SetDefault(KeyIncludeFileAnalysis, d.IncludeFileAnalysis)
	v.SetDefault(KeyIncludeTimestamp, d.IncludeTimestamp)
	v.SetDefault(KeyOutputFileName, d.OutputFileName)
	v.SetDefault(KeyZipFileName, d.ZipFileName)
	v.SetDefault(KeyOutputSubfolder, d.OutputSubfolder)
	v.SetDefault(KeyHistoryFolder, d.HistoryFolder)
	v.SetDefault(KeyAppendMode, d.AppendMode)
	v.SetDefault(KeyOpenAfterSave, d.OpenAfterSave)
	mapping := make(map[string]interface{}, len(d.MarkdownMapping))
	for k, lang := range d.MarkdownMapping {
		mapping[k] = lang
	}
	v.SetDefault(KeyMarkdownMapping, mapping)
	v.SetDefault(KeyExcludedPaths, d.ExcludedPaths)
	v.SetDefault(KeyIgnorePatterns, []string{})
	v.SetDefault(KeyWarnFileCount, d.WarnFileCount)
	v.SetDefault(KeyWarnTotalBytes, d.WarnTotalBytes)
	v.SetDefault(KeyMaxFileCount, d.MaxFileCount)
	v.SetDefault(KeyMaxTotalBytes, d.MaxTotalBytes)
	v.SetDefault(KeyMaxBackups, d.MaxBackups)
}

// ReadFile reads an explicit config file, or looks for .llmctx.yaml in root
// when path is empty. A missing default file is not an error.
func ReadFile(v *viper.Viper, path, root string, logger *zap.Logger) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(root)
		v.SetConfigName(ConfigFileName)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			logger.Debug("No config file found, using defaults", zap.String("root", root))
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	logger.Debug("Using config file", zap.String("file", v.ConfigFileUsed()))
	return nil
}

// Load decodes v into a Config, normalizes it and validates it.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode configuration: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	exts := make([]string, 0, len(c.FilteredExtensions))
	for _, ext := range c.FilteredExtensions {
		if ext = NormalizeExtension(ext); ext != "" {
			exts = append(exts, ext)
		}
	}
	c.FilteredExtensions = exts

	mapping := make(map[string]string, len(c.MarkdownMapping))
	for k, v := range c.MarkdownMapping {
		mapping[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	c.MarkdownMapping = mapping

	c.SymlinkHandling = SymlinkMode(strings.ToLower(strings.TrimSpace(string(c.SymlinkHandling))))
	c.OutputSubfolder = filepath.Clean(filepath.FromSlash(strings.TrimSpace(c.OutputSubfolder)))
	if c.OutputSubfolder == "." {
		c.OutputSubfolder = ""
	}
}

// Validate reports the first invalid field, wrapped in ErrInvalid.
func (c Config) Validate() error {
	switch c.SymlinkHandling {
	case SymlinkSkip, SymlinkResolve:
	default:
		return fmt.Errorf("%w: symlinkHandling must be %q or %q, got %q", ErrInvalid, SymlinkSkip, SymlinkResolve, c.SymlinkHandling)
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("%w: maxFileSize must be positive, got %d", ErrInvalid, c.MaxFileSize)
	}
	for key, name := range map[string]string{
		KeyOutputFileName: c.OutputFileName,
		KeyZipFileName:    c.ZipFileName,
		KeyHistoryFolder:  c.HistoryFolder,
	} {
		if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
			return fmt.Errorf("%w: %s must be a plain file name, got %q", ErrInvalid, key, name)
		}
	}
	if filepath.IsAbs(c.OutputSubfolder) || strings.HasPrefix(filepath.ToSlash(c.OutputSubfolder), "../") || c.OutputSubfolder == ".." {
		return fmt.Errorf("%w: outputSubfolder must stay inside the workspace, got %q", ErrInvalid, c.OutputSubfolder)
	}
	if c.WarnFileCount < 0 || c.WarnTotalBytes < 0 || c.MaxFileCount < 0 || c.MaxTotalBytes < 0 || c.MaxBackups < 0 {
		return fmt.Errorf("%w: thresholds must not be negative", ErrInvalid)
	}
	return nil
}

// NormalizeExtension lowercases ext and ensures a leading dot. Blank input
// yields "".
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// FilteredExtensionSet returns the deny-list as a lookup set.
func (c Config) FilteredExtensionSet() map[string]bool {
	set := make(map[string]bool, len(c.FilteredExtensions))
	for _, ext := range c.FilteredExtensions {
		set[ext] = true
	}
	return set
}

// OutputDir is the directory that receives paste files, archives and history.
func (c Config) OutputDir(root string) string {
	return filepath.Join(root, c.OutputSubfolder)
}

// OutputPath joins name onto the output directory.
func (c Config) OutputPath(root, name string) string {
	return filepath.Join(c.OutputDir(root), name)
}

// HistoryDir is where backups and session state are kept.
func (c Config) HistoryDir(root string) string {
	return c.OutputPath(root, c.HistoryFolder)
}
