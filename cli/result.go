package cli

import (
	"errors"
	"fmt"

	"github.com/robinvdvleuten/moneymanager/loader"
	"github.com/robinvdvleuten/moneymanager/session"
)

// CommandError signals a command failure with a specific exit code.
// Commands return this after handling all output (printing errors/warnings to stderr).
// Main centralizes exit handling instead of commands calling os.Exit directly.
type CommandError struct {
	exitCode int
}

// NewCommandError creates a new CommandError with the given exit code.
func NewCommandError(exitCode int) *CommandError {
	return &CommandError{exitCode: exitCode}
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	return "command failed"
}

// ExitCode returns the exit code associated with this error.
func (e *CommandError) ExitCode() int {
	return e.exitCode
}

// failLoad prints a load failure the way every command reports it and
// returns the exit error.
func failLoad(rt *runtime, file *FileOrStdin, err error) error {
	renderer := NewErrorRenderer(rt.stderr, file.GetSourceContent())
	_, _ = fmt.Fprintln(rt.stderr, renderer.Render(err))
	_, _ = fmt.Fprintln(rt.stderr)

	switch {
	case loader.IsNotFound(err):
		printError(rt.stderr, "file not found")
	case loader.IsSchemaMismatch(err):
		printError(rt.stderr, "unexpected file layout")
	case loader.IsParseError(err):
		printError(rt.stderr, "parse error")
	case errors.Is(err, session.ErrEmptyData):
		printError(rt.stderr, "nothing to display")
	default:
		printError(rt.stderr, "load failed")
	}

	return NewCommandError(1)
}
