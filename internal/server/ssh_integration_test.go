//go:build integration

package server_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/tpodg/serverprep/internal/server"
	"github.com/tpodg/serverprep/internal/testutils"
)

func TestSSHServer_Integration(t *testing.T) {
	ctx := context.Background()
	sshC := testutils.SetupSSHContainer(t, ctx, testutils.SSHContainerOptions{})

	s := sshC.Server("test-container")

	// Wait a bit for the SSH server to be fully ready
	time.Sleep(2 * time.Second)

	output, err := s.Execute(ctx, "echo 'hello world'")
	if err != nil {
		t.Fatalf("Execute failed: %v\nOutput: %s", err, output)
	}
	if output != "hello world\n" {
		t.Errorf("expected %q, got %q", "hello world\n", output)
	}

	t.Run("cancelled context aborts command", func(t *testing.T) {
		cctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		defer cancel()

		_, err := s.Execute(cctx, "sleep 5")
		if err == nil {
			t.Fatal("expected error for aborted command")
		}
		if !strings.Contains(err.Error(), "sleep 5") {
			t.Errorf("expected error to mention the command, got %v", err)
		}
	})
}

func TestSSHServer_SudoPassword_Integration(t *testing.T) {
	ctx := context.Background()
	sshC := testutils.SetupSSHContainer(t, ctx, testutils.SSHContainerOptions{SudoAccess: true})
	useAgent := false

	s := server.NewSSHServer("sudo-container", sshC.Address,
		server.User{Name: sshC.User, SSHKey: sshC.KeyPath, SudoPassword: "unused"},
		sshC.KnownHostsPath, server.SSHOptions{UseAgent: &useAgent, HandshakeTimeout: 10 * time.Second})

	time.Sleep(2 * time.Second)

	output, err := s.Execute(ctx, "sudo -n id -u")
	if err != nil {
		t.Fatalf("Execute failed: %v\nOutput: %s", err, output)
	}
	if strings.TrimSpace(output) != "0" {
		t.Errorf("expected uid 0, got %q", output)
	}
}
