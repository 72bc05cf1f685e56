package server

import (
	"bytes"
	"context"
	"os/exec"
	"time"
)

const (
	LocalID = "localhost"

	// Grace period for children that keep the output pipes open after the
	// shell was killed.
	localWaitDelay = 2 * time.Second
)

// LocalServer executes commands on the machine serverprep runs on.
type LocalServer struct {
	shell string
}

func NewLocalServer() *LocalServer {
	return &LocalServer{shell: "/bin/sh"}
}

func (s *LocalServer) ID() string      { return LocalID }
func (s *LocalServer) Address() string { return LocalID }

func (s *LocalServer) Execute(ctx context.Context, command string) (string, error) {
	cmd := exec.CommandContext(ctx, s.shell, "-c", command)
	// Keep the provisioning commands out of any shell history.
	cmd.Env = append(cmd.Environ(), "HISTFILE=/dev/null")
	cmd.WaitDelay = localWaitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stdout.String(), commandError(ctx, command, stderr.String(), err)
	}
	return stdout.String(), nil
}
