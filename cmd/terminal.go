package cmd

import (
	"context"
	"os"
	"runtime"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"
)

var stdoutIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// programOptions reopens the terminal for keyboard input when the document
// arrived on stdin. The returned cleanup closes it.
func programOptions(ctx context.Context) ([]tea.ProgramOption, func()) {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if !stdinIsPiped() {
		return opts, func() {}
	}
	ttyIn, ttyOut, err := openTerminalIO()
	if err != nil {
		// no controlling terminal (CI): keys will not reach the program
		return opts, func() {}
	}
	opts = append(opts, tea.WithInput(ttyIn))
	if ttyOut != nil {
		opts = append(opts, tea.WithOutput(ttyOut))
	}
	return opts, func() {
		_ = ttyIn.Close()
		if ttyOut != nil && ttyOut != ttyIn {
			_ = ttyOut.Close()
		}
	}
}

func openTerminalIO() (*os.File, *os.File, error) {
	in, out := terminalDeviceNames(runtime.GOOS)

	input, err := os.OpenFile(in, os.O_RDWR, 0)
	if err != nil {
		return nil, nil, err
	}
	if out == in {
		return input, input, nil
	}
	output, err := os.OpenFile(out, os.O_RDWR, 0)
	if err != nil {
		return input, nil, nil
	}
	return input, output, nil
}

func terminalDeviceNames(goos string) (input string, output string) {
	if goos == "windows" {
		return "CONIN$", "CONOUT$"
	}
	return "/dev/tty", "/dev/tty"
}
