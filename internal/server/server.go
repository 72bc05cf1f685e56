package server

import (
	"context"
	"fmt"
	"strings"
)

// Server is a host that accepts shell commands.
type Server interface {
	// ID returns a unique identifier for the server.
	ID() string
	// Address returns the connection address (IP or hostname).
	Address() string
	// Execute runs a command on the server and returns its standard output.
	// Standard error never ends up in the output; when the command fails it
	// is carried by the returned *CommandError.
	Execute(ctx context.Context, command string) (string, error)
}

// CommandError reports a command that failed or was aborted.
type CommandError struct {
	Command string
	Stderr  string
	Err     error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command %q failed: %v", e.Command, e.Err)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

func (e *CommandError) Unwrap() error { return e.Err }

func commandError(ctx context.Context, command, stderr string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = fmt.Errorf("aborted: %w", ctxErr)
	}
	return &CommandError{Command: command, Stderr: stderr, Err: err}
}
