package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var snippetCmd = &cobra.Command{
	Use:   "snippet FILE",
	Short: "Copy a line range of one file as a fenced markdown block",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lines, err := cmd.Flags().GetString("lines")
		if err != nil {
			return fmt.Errorf("error reading flags: %w", err)
		}
		toStdout, err := cmd.Flags().GetBool("stdout")
		if err != nil {
			return fmt.Errorf("error reading flags: %w", err)
		}
		start, end, err := parseLineRange(lines)
		if err != nil {
			return err
		}

		s, err := newSession()
		if err != nil {
			return err
		}
		text, err := s.Snippet(args[0], start, end)
		if err != nil {
			return err
		}

		if toStdout {
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		}
		if err := s.CopyText(text); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Copied lines %d-%d of %s to clipboard\n", start, end, args[0])
		return nil
	},
}

// parseLineRange parses "a-b" or a single line number "a" into a 1-based
// inclusive range.
func parseLineRange(s string) (int, int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, fmt.Errorf("--lines is required")
	}
	first, last, found := strings.Cut(s, "-")
	start, err := strconv.Atoi(strings.TrimSpace(first))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid line range %q: %w", s, err)
	}
	end := start
	if found {
		if end, err = strconv.Atoi(strings.TrimSpace(last)); err != nil {
			return 0, 0, fmt.Errorf("invalid line range %q: %w", s, err)
		}
	}
	if start < 1 || end < start {
		return 0, 0, fmt.Errorf("invalid line range %q", s)
	}
	return start, end, nil
}

func init() {
	snippetCmd.Flags().StringP("lines", "l", "", "Line range to copy, for example 10-24")
	snippetCmd.Flags().Bool("stdout", false, "Print the block instead of copying it")
	RootCmd.AddCommand(snippetCmd)
}
