package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/oakwood-commons/treepick/pkg/settings"
)

// errNoInput means neither a file argument nor piped stdin was given.
var errNoInput = errors.New("no input provided")

// stdinIsPiped is replaceable in tests.
var stdinIsPiped = func() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice == 0
}

// readInput returns the document bytes named by args: a file path, "-" for
// stdin, or nothing with stdin piped.
func readInput(args []string, stdin io.Reader) ([]byte, settings.Source, error) {
	if len(args) > 0 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return nil, settings.Source{}, fmt.Errorf("failed to read file: %w", err)
		}
		return data, settings.Source{Kind: settings.SourceFile, Path: args[0]}, nil
	}
	if len(args) == 0 && !stdinIsPiped() {
		return nil, settings.Source{}, errNoInput
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, settings.Source{}, fmt.Errorf("failed to read from stdin: %w", err)
	}
	return data, settings.Source{Kind: settings.SourceStdin}, nil
}
