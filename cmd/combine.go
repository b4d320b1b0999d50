package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"llmctx/pkg/session"

	"github.com/spf13/cobra"
)

type runFunc func(s *session.Session, ctx context.Context, primary string, selected []string) (*session.Report, error)

var copyCmd = &cobra.Command{
	Use:   "copy [paths...]",
	Short: "Copy the selected files to the clipboard as markdown",
	RunE:  selectionRunner((*session.Session).CopyToClipboard),
}

var saveCmd = &cobra.Command{
	Use:   "save [paths...]",
	Short: "Write the selected files to the paste file",
	Long: `Write the selected files as fenced markdown to the paste file in the
workspace output folder. An existing paste file is backed up first.`,
	RunE: selectionRunner((*session.Session).SavePaste),
}

var zipCmd = &cobra.Command{
	Use:   "zip [paths...]",
	Short: "Pack the selected files into the ZIP archive",
	RunE:  selectionRunner((*session.Session).SaveZip),
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Rerun the last copy, save or zip against its original selection",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		report, err := s.UpdateLast(cmd.Context())
		printReport(cmd.OutOrStdout(), report, err == nil)
		return err
	},
}

// selectionRunner adapts a session operation to a cobra handler. The first
// argument is the primary path and all arguments form the selection.
func selectionRunner(run runFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		primary := ""
		if len(args) > 0 {
			primary = args[0]
		}
		report, err := run(s, cmd.Context(), primary, args)
		printReport(cmd.OutOrStdout(), report, err == nil)
		if errors.Is(err, session.ErrNoEligibleFiles) {
			return fmt.Errorf("%w (%d skipped)", err, report.SkippedTotal())
		}
		return err
	}
}

// printReport prints the summary line for completed runs and the skipped
// sample for every run that got as far as collection.
func printReport(w io.Writer, r *session.Report, completed bool) {
	if r == nil {
		return
	}
	if completed {
		fmt.Fprintln(w, r.Summary())
	}
	for _, s := range r.Sample {
		fmt.Fprintf(w, "  skipped %s\n", s)
	}
	if r.SkippedTotal() > len(r.Sample) {
		fmt.Fprintf(w, "  ... and %d more\n", r.SkippedTotal()-len(r.Sample))
	}
}

func init() {
	RootCmd.AddCommand(copyCmd, saveCmd, zipCmd, updateCmd)
}
