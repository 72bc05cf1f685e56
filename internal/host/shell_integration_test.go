//go:build integration

package host_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tpodg/serverprep/internal/host"
	"github.com/tpodg/serverprep/internal/testutils"
)

func TestShellHost_Integration(t *testing.T) {
	ctx := context.Background()

	t.Run("without sudo", func(t *testing.T) {
		sshC := testutils.SetupSSHContainer(t, ctx, testutils.SSHContainerOptions{})
		time.Sleep(2 * time.Second)

		h := host.NewShellHost(sshC.Server("no-sudo"))
		err := h.Privilege.Check(ctx)
		var privErr *host.PrivilegeError
		if !errors.As(err, &privErr) {
			t.Fatalf("expected PrivilegeError, got %v", err)
		}
		if privErr.User != sshC.User {
			t.Errorf("expected user %q, got %q", sshC.User, privErr.User)
		}
	})

	t.Run("with sudo", func(t *testing.T) {
		sshC := testutils.SetupSSHContainer(t, ctx, testutils.SSHContainerOptions{SudoAccess: true})
		time.Sleep(2 * time.Second)

		h := host.NewShellHost(sshC.Server("sudo"))
		if err := h.Privilege.Check(ctx); err != nil {
			t.Fatalf("privilege check failed: %v", err)
		}

		const path = "/etc/serverprep-test/settings.conf"
		if _, exists, err := h.Files.ReadFile(ctx, path); err != nil || exists {
			t.Fatalf("expected %s to be missing, exists=%v err=%v", path, exists, err)
		}
		if err := h.Files.WriteFile(ctx, path, "key = 'value'\n", 0o640); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
		if err := h.Files.AppendFile(ctx, path, "other = 1\n"); err != nil {
			t.Fatalf("AppendFile failed: %v", err)
		}
		content, exists, err := h.Files.ReadFile(ctx, path)
		if err != nil || !exists {
			t.Fatalf("ReadFile failed: exists=%v err=%v", exists, err)
		}
		if content != "key = 'value'\nother = 1\n" {
			t.Fatalf("unexpected content %q", content)
		}
		if err := h.Files.Truncate(ctx, path); err != nil {
			t.Fatalf("Truncate failed: %v", err)
		}
		if content, _, _ := h.Files.ReadFile(ctx, path); content != "" {
			t.Fatalf("expected empty file, got %q", content)
		}

		var writeErr *host.ConfigWriteError
		if err := h.Files.AppendFile(ctx, "/etc/serverprep-test/missing.conf", "x\n"); !errors.As(err, &writeErr) {
			t.Fatalf("expected ConfigWriteError, got %v", err)
		}
	})
}
