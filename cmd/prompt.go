package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// terminalConfirmer asks on the terminal before large runs proceed. Without
// a terminal it declines unless --yes was given.
type terminalConfirmer struct {
	assumeYes bool
	in        *os.File
	out       io.Writer
}

func (c *terminalConfirmer) Confirm(prompt string) (bool, error) {
	if c.assumeYes {
		return true, nil
	}
	if !term.IsTerminal(int(c.in.Fd())) {
		logger.Warn("Selection exceeds thresholds and stdin is not a terminal; pass --yes to proceed")
		return false, nil
	}
	return promptUser(c.in, c.out, prompt+" (y/n): ")
}

// promptUser displays a message and waits for the user to enter 'y' or 'n'.
// Returns true if the user enters 'y' or 'yes' (case-insensitive).
func promptUser(in io.Reader, out io.Writer, message string) (bool, error) {
	fmt.Fprint(out, message)
	reader := bufio.NewReader(in)
	response, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && response != "") {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

type systemClipboard struct{}

func (systemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// editorOpener opens files with $VISUAL, falling back to $EDITOR.
type editorOpener struct{}

func (editorOpener) Open(path string) error {
	editor := editorCommand()
	if len(editor) == 0 {
		return errors.New("neither $VISUAL nor $EDITOR is set")
	}
	logger.Debug("Opening saved file", zap.Strings("editor", editor), zap.String("file", path))

	c := exec.Command(editor[0], append(editor[1:], path)...)
	c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("failed to run %s: %w", editor[0], err)
	}
	return nil
}

func editorCommand() []string {
	for _, key := range []string{"VISUAL", "EDITOR"} {
		if fields := strings.Fields(os.Getenv(key)); len(fields) > 0 {
			return fields
		}
	}
	return nil
}
