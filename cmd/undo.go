package cmd

import (
	"errors"
	"fmt"

	"llmctx/pkg/history"
	"llmctx/pkg/session"

	"github.com/spf13/cobra"
)

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Restore the output of the last save from history",
	Long: `Restore the paste file or ZIP archive written by the last save to the
version it replaced. The current file is kept in history as a before-undo
snapshot. Clipboard runs cannot be undone.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		restored, err := s.UndoLastSave()
		switch {
		case errors.Is(err, history.ErrNothingToUndo):
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to undo.")
			return nil
		case errors.Is(err, session.ErrUndoClipboard):
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to undo: the last action copied to the clipboard.")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Restored %s\n", restored)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(undoCmd)
}
