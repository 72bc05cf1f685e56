package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

const (
	defaultSSHPort             = "22"
	defaultSSHHandshakeTimeout = 15 * time.Second
	sudoNonInteractive         = "sudo -n "
)

// SSHServer executes commands on a remote host over SSH. A new connection is
// opened per command.
type SSHServer struct {
	name           string
	address        string
	user           User
	knownHostsPath string
	opts           SSHOptions
}

type SSHOptions struct {
	UseAgent         *bool
	HandshakeTimeout time.Duration
}

func NewSSHServer(name, address string, user User, knownHostsPath string, opts SSHOptions) *SSHServer {
	return &SSHServer{
		name:           name,
		address:        address,
		user:           user,
		knownHostsPath: knownHostsPath,
		opts:           opts,
	}
}

func (s *SSHServer) ID() string      { return s.name }
func (s *SSHServer) Address() string { return s.address }

func (s *SSHServer) Execute(ctx context.Context, command string) (string, error) {
	auth, closeAgent, err := s.authMethods()
	if err != nil {
		return "", err
	}
	defer closeAgent()

	client, err := s.dial(ctx, auth)
	if err != nil {
		return "", err
	}
	defer client.Close()

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			client.Close()
		case <-done:
		}
	}()
	defer close(done)

	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	defer session.Close()

	commandToRun, stdin := s.withSudoPassword(command)
	if stdin != nil {
		session.Stdin = stdin
	}

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	if err := session.Run(commandToRun); err != nil {
		return stdout.String(), commandError(ctx, commandToRun, stderr.String(), err)
	}
	return stdout.String(), nil
}

// withSudoPassword switches non-interactive sudo to reading the configured
// password from stdin.
func (s *SSHServer) withSudoPassword(command string) (string, io.Reader) {
	if s.user.SudoPassword == "" || !strings.HasPrefix(command, sudoNonInteractive) {
		return command, nil
	}
	return "sudo -S -p '' " + strings.TrimPrefix(command, sudoNonInteractive), strings.NewReader(s.user.SudoPassword + "\n")
}

func (s *SSHServer) authMethods() ([]ssh.AuthMethod, func(), error) {
	var methods []ssh.AuthMethod
	closeAgent := func() {}

	// Explicit key material goes first, the agent is the fallback.
	if s.user.SSHKey != "" {
		signer, err := loadSigner(s.user.SSHKey)
		if err != nil {
			return nil, closeAgent, err
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}

	if s.useAgent() {
		if sock := os.Getenv("SSH_AUTH_SOCK"); sock != "" {
			if conn, err := net.Dial("unix", sock); err == nil {
				methods = append(methods, ssh.PublicKeysCallback(agent.NewClient(conn).Signers))
				closeAgent = func() { conn.Close() }
			}
		}
	}

	if len(methods) == 0 {
		return nil, closeAgent, errors.New("no ssh authentication methods available")
	}
	return methods, closeAgent, nil
}

func (s *SSHServer) dial(ctx context.Context, auth []ssh.AuthMethod) (*ssh.Client, error) {
	addr := s.address
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, defaultSSHPort)
	}

	knownHostsPath, err := resolveKnownHostsPath(s.knownHostsPath)
	if err != nil {
		return nil, err
	}
	hostKeyCallback, err := knownhosts.New(knownHostsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load known_hosts file %q: %w", knownHostsPath, err)
	}

	config := &ssh.ClientConfig{
		User:            s.user.Name,
		Auth:            auth,
		HostKeyCallback: hostKeyCallback,
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}

	if deadline, ok := handshakeDeadline(ctx, s.handshakeTimeout()); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()
			return nil, fmt.Errorf("set ssh handshake deadline: %w", err)
		}
	}

	handshakeDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-handshakeDone:
		}
	}()

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	close(handshakeDone)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to establish ssh connection to %s: %w", addr, err)
	}
	if err := conn.SetDeadline(time.Time{}); err != nil {
		sshConn.Close()
		return nil, fmt.Errorf("clear ssh handshake deadline: %w", err)
	}
	return ssh.NewClient(sshConn, chans, reqs), nil
}

func (s *SSHServer) useAgent() bool {
	if s.opts.UseAgent == nil {
		return true
	}
	return *s.opts.UseAgent
}

func (s *SSHServer) handshakeTimeout() time.Duration {
	if s.opts.HandshakeTimeout > 0 {
		return s.opts.HandshakeTimeout
	}
	return defaultSSHHandshakeTimeout
}

func loadSigner(keyPath string) (ssh.Signer, error) {
	expanded, err := expandPath(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to expand ssh key path %q: %w", keyPath, err)
	}
	key, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to read ssh key %q: %w", expanded, err)
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ssh key %q: %w", expanded, err)
	}
	return signer, nil
}

// handshakeDeadline picks the earlier of the handshake timeout and the
// context deadline.
func handshakeDeadline(ctx context.Context, timeout time.Duration) (time.Time, bool) {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	if ctxDeadline, ok := ctx.Deadline(); ok {
		if deadline.IsZero() || ctxDeadline.Before(deadline) {
			deadline = ctxDeadline
		}
	}
	return deadline, !deadline.IsZero()
}

func resolveKnownHostsPath(path string) (string, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory for known_hosts: %w", err)
		}
		path = filepath.Join(home, ".ssh", "known_hosts")
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}
