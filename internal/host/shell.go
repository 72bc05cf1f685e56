package host

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tpodg/serverprep/internal/server"
	"github.com/tpodg/serverprep/internal/strutil"
)

const sudoPrefix = "sudo -n "

// shell runs commands on a server, elevating through sudo when the session
// is not root.
type shell struct {
	srv      server.Server
	prefix   string
	user     string
	resolved bool
}

// NewShellHost returns a Host whose capabilities are implemented with shell
// commands on srv: apt for packages, systemd for services and coreutils for
// files.
func NewShellHost(srv server.Server) *Host {
	sh := &shell{srv: srv}
	return &Host{
		ID:        srv.ID(),
		Privilege: &shellPrivilege{sh: sh},
		Packages:  &aptPackages{sh: sh},
		Files:     &shellFiles{sh: sh},
		Services:  &systemdServices{sh: sh},
		Clock:     &shellClock{sh: sh},
		Accounts:  &passwdAccounts{sh: sh},
	}
}

// sudoPrefix returns the prefix needed for privileged commands. The answer is
// cached for the lifetime of the host.
func (s *shell) sudoPrefix(ctx context.Context) (string, error) {
	if s.resolved {
		return s.prefix, nil
	}
	output, err := s.srv.Execute(ctx, "id -u; id -un")
	if err != nil {
		return "", fmt.Errorf("check for root user: %w", err)
	}
	fields := strings.Fields(output)
	if len(fields) == 0 {
		return "", errors.New("check for root user: empty output")
	}
	if _, err := strconv.Atoi(fields[0]); err != nil {
		return "", fmt.Errorf("check for root user: unexpected uid %q", fields[0])
	}
	if len(fields) > 1 {
		s.user = fields[1]
	}
	if fields[0] != "0" {
		s.prefix = sudoPrefix
	}
	s.resolved = true
	return s.prefix, nil
}

// run executes a command without elevation.
func (s *shell) run(ctx context.Context, command string) (string, error) {
	return s.srv.Execute(ctx, command)
}

// runPrivileged executes a command with elevation when needed.
func (s *shell) runPrivileged(ctx context.Context, command string) (string, error) {
	prefix, err := s.sudoPrefix(ctx)
	if err != nil {
		return "", err
	}
	return s.srv.Execute(ctx, prefix+command)
}

// runScript executes script through sh -c with elevation when needed.
func (s *shell) runScript(ctx context.Context, script string) (string, error) {
	return s.runPrivileged(ctx, "sh -c "+strutil.ShellEscape(script))
}

type shellPrivilege struct {
	sh *shell
}

func (p *shellPrivilege) Check(ctx context.Context) error {
	prefix, err := p.sh.sudoPrefix(ctx)
	if err != nil {
		return &PrivilegeError{Err: err}
	}
	if prefix == "" {
		return nil
	}
	if _, err := p.sh.run(ctx, sudoPrefix+"true"); err != nil {
		var cmdErr *server.CommandError
		if errors.As(err, &cmdErr) {
			if reason := strings.TrimSpace(cmdErr.Stderr); reason != "" {
				return &PrivilegeError{User: p.sh.user, Err: errors.New(reason)}
			}
		}
		return &PrivilegeError{User: p.sh.user, Err: err}
	}
	return nil
}
