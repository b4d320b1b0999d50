package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"llmctx/pkg/config"
	"llmctx/pkg/logging"
	"llmctx/pkg/session"
	"llmctx/pkg/version"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile   string
	rootDir   string
	debug     bool
	assumeYes bool

	logger = zap.NewNop()
	v      *viper.Viper
)

// RootCmd is the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "llmctx",
	Short: "llmctx collects files into LLM-ready context",
	Long: `llmctx walks the selected files and folders, skips binary, oversized,
excluded and gitignored entries, and emits the rest as fenced markdown on the
clipboard, in a paste file, or as a ZIP archive. Saved outputs are backed up
so the last save can be undone.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if debug {
			if err := logging.Setup(true, version.AppName, version.Get().Version); err != nil {
				return fmt.Errorf("failed to initialize debug logger: %w", err)
			}
			logger = logging.Logger
		}
		return nil
	},
}

// Execute runs the root command with l as the process logger. Interrupts
// cancel the running collection.
func Execute(l *zap.Logger) error {
	logger = logging.OrNop(l)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	// Cobra only propagates the root context to subcommands without one, so
	// a context left from an earlier Execute would already be cancelled.
	setContext(RootCmd, ctx)
	return RootCmd.ExecuteContext(ctx)
}

func setContext(c *cobra.Command, ctx context.Context) {
	for _, sub := range c.Commands() {
		sub.SetContext(ctx)
		setContext(sub, ctx)
	}
}

func init() {
	v = config.New()

	pf := RootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is <root>/.llmctx.yaml)")
	pf.StringVar(&rootDir, "root", "", "workspace root (default is the enclosing git worktree or the current directory)")
	pf.BoolVar(&debug, "debug", false, "Enable debug logging")
	pf.BoolVarP(&assumeYes, "yes", "y", false, "Proceed without asking when the selection exceeds the size thresholds")

	pf.Bool("compress", false, "Strip comments and collapse whitespace")
	pf.Bool("append", false, "Append to the paste file instead of replacing it")
	pf.String("symlinks", string(config.SymlinkSkip), "Symlink handling: skip or resolve")
	pf.Int64("max-file-size", config.Default().MaxFileSize, "Skip files larger than this many bytes")

	bindFlag(config.KeyCompressContent, "compress")
	bindFlag(config.KeyAppendMode, "append")
	bindFlag(config.KeySymlinkHandling, "symlinks")
	bindFlag(config.KeyMaxFileSize, "max-file-size")
}

func bindFlag(key, flag string) {
	if err := v.BindPFlag(key, RootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(fmt.Sprintf("failed to bind flag %s: %v", flag, err))
	}
}

// newSession resolves the workspace root, loads configuration once and
// builds the session every subcommand runs against.
func newSession() (*session.Session, error) {
	root := rootDir
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		root = session.DetectWorkspaceRoot(cwd, logger)
	}
	logger.Debug("Using workspace root", zap.String("root", root))

	if err := config.ReadFile(v, cfgFile, root, logger); err != nil {
		return nil, err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}

	deps := session.Deps{
		Clipboard: systemClipboard{},
		Confirmer: &terminalConfirmer{assumeYes: assumeYes, in: os.Stdin, out: os.Stderr},
		Opener:    editorOpener{},
		Store:     session.FileStateStore{Path: session.StatePath(cfg, root)},
	}
	return session.New(cfg, root, deps, logger)
}
