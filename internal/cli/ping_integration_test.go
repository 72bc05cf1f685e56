//go:build integration

package cli

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/tpodg/serverprep/internal/server"
	"github.com/tpodg/serverprep/internal/testutils"
)

func TestVerifyServers_Integration(t *testing.T) {
	ctx := context.Background()
	sshC := testutils.SetupSSHContainer(t, ctx, testutils.SSHContainerOptions{})

	// Wait a bit for the SSH server to be fully ready
	time.Sleep(2 * time.Second)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	servers := []server.Server{sshC.Server("integration-server")}

	if failed := verifyServers(ctx, logger, servers); failed != 0 {
		t.Errorf("expected no failures, got %d", failed)
	}

	output := buf.String()
	if !strings.Contains(output, "Verification successful") {
		t.Errorf("expected logs to contain 'Verification successful', got:\n%s", output)
	}
	if !strings.Contains(output, "server=integration-server") {
		t.Errorf("expected logs to contain 'server=integration-server', got:\n%s", output)
	}
}
