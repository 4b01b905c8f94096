package adapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/user"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// NativeFetcher runs the neighbor command over an in-process SSH session
type NativeFetcher struct {
	cfg    SSHConfig
	logger *slog.Logger
}

// NewNativeFetcher creates a fetcher using golang.org/x/crypto/ssh
func NewNativeFetcher(cfg SSHConfig, logger *slog.Logger) *NativeFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &NativeFetcher{
		cfg:    cfg.withDefaults(),
		logger: logger.With("component", "fetcher", "transport", TransportNative),
	}
}

// Fetch implements Fetcher. switchAddr may carry a port ("10.0.0.1:2222").
func (f *NativeFetcher) Fetch(ctx context.Context, switchAddr string) ([]byte, error) {
	ctx, cancel := withTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	addr := f.address(switchAddr)

	client, err := f.connect(ctx, addr)
	if err != nil {
		return nil, &TransportError{Addr: addr, Err: err}
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return nil, &TransportError{Addr: addr, Err: fmt.Errorf("failed to create session: %w", err)}
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	f.logger.Debug("running remote command", "addr", addr, "command", f.cfg.Command)

	done := make(chan error, 1)
	go func() {
		done <- session.Run(f.cfg.Command)
	}()

	select {
	case err := <-done:
		if err != nil {
			var exitErr *ssh.ExitError
			if errors.As(err, &exitErr) {
				return nil, &RemoteCommandError{
					ExitCode: exitErr.ExitStatus(),
					Stderr:   strings.TrimSpace(stderr.String()),
				}
			}
			return nil, &TransportError{Addr: addr, Err: fmt.Errorf("command failed: %w", err)}
		}
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		return nil, &TransportError{Addr: addr, Err: ctx.Err()}
	}

	f.logger.Debug("remote command finished", "addr", addr, "bytes", stdout.Len())
	return stdout.Bytes(), nil
}

func (f *NativeFetcher) address(switchAddr string) string {
	if _, _, err := net.SplitHostPort(switchAddr); err == nil {
		return switchAddr
	}
	return net.JoinHostPort(switchAddr, strconv.Itoa(f.cfg.Port))
}

// connect dials the switch with context support and completes the handshake
func (f *NativeFetcher) connect(ctx context.Context, addr string) (*ssh.Client, error) {
	config, release, err := f.clientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to build SSH config: %w", err)
	}
	defer release()

	dialer := &net.Dialer{Timeout: f.cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial: %w", err)
	}

	// The handshake itself does not observe ctx
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to establish SSH connection: %w", err)
	}

	_ = conn.SetDeadline(time.Time{})
	return ssh.NewClient(sshConn, chans, reqs), nil
}

// clientConfig builds the SSH client config. release closes the agent
// connection, if one was opened, once the handshake is done.
func (f *NativeFetcher) clientConfig() (config *ssh.ClientConfig, release func(), err error) {
	release = func() {}

	username := f.cfg.User
	if username == "" {
		u, err := user.Current()
		if err != nil {
			return nil, release, fmt.Errorf("no user configured: %w", err)
		}
		username = u.Username
	}

	hostKeyCallback := ssh.InsecureIgnoreHostKey()
	if f.cfg.KnownHostsFile != "" {
		hostKeyCallback, err = knownhosts.New(f.cfg.KnownHostsFile)
		if err != nil {
			return nil, release, fmt.Errorf("failed to load known hosts: %w", err)
		}
	}

	auth, release, err := f.authMethods()
	if err != nil {
		return nil, release, err
	}

	return &ssh.ClientConfig{
		User:            username,
		Auth:            auth,
		HostKeyCallback: hostKeyCallback,
		Timeout:         f.cfg.Timeout,
	}, release, nil
}

// authMethods prefers the identity file and falls back to ssh-agent
func (f *NativeFetcher) authMethods() ([]ssh.AuthMethod, func(), error) {
	noop := func() {}

	if f.cfg.IdentityFile != "" {
		keyData, err := os.ReadFile(f.cfg.IdentityFile)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to read identity file: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(keyData)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to parse private key: %w", err)
		}
		return []ssh.AuthMethod{ssh.PublicKeys(signer)}, noop, nil
	}

	if sock := os.Getenv("SSH_AUTH_SOCK"); sock != "" {
		conn, err := net.Dial("unix", sock)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to connect to ssh-agent: %w", err)
		}
		release := func() { conn.Close() }
		return []ssh.AuthMethod{ssh.PublicKeysCallback(agent.NewClient(conn).Signers)}, release, nil
	}

	return nil, noop, errors.New("no identity file configured and SSH_AUTH_SOCK is not set")
}
