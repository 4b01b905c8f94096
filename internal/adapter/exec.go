package adapter

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// sshTransportExitCode is what OpenSSH returns for its own failures
// (connection refused, auth, host key), as opposed to the remote command's
const sshTransportExitCode = 255

// waitDelay bounds how long Fetch waits for ssh's pipes after cancellation
const waitDelay = 2 * time.Second

// ExecFetcher runs the neighbor command through the local ssh binary
type ExecFetcher struct {
	cfg    SSHConfig
	logger *slog.Logger
}

// NewExecFetcher creates a fetcher using the ssh client named in cfg.Binary
func NewExecFetcher(cfg SSHConfig, logger *slog.Logger) *ExecFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecFetcher{
		cfg:    cfg.withDefaults(),
		logger: logger.With("component", "fetcher", "transport", TransportExec),
	}
}

// Fetch implements Fetcher
func (f *ExecFetcher) Fetch(ctx context.Context, switchAddr string) ([]byte, error) {
	// Resolve the binary before touching the network
	path, err := exec.LookPath(f.cfg.Binary)
	if err != nil {
		return nil, &ExecutableNotFoundError{Name: f.cfg.Binary, Err: err}
	}

	ctx, cancel := withTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	args := f.args(switchAddr)
	f.logger.Debug("running remote command", "ssh", path, "addr", switchAddr, "command", f.cfg.Command)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, &TransportError{Addr: switchAddr, Err: ctx.Err()}
		}

		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, &TransportError{Addr: switchAddr, Err: err}
		}

		remoteErr := &RemoteCommandError{
			ExitCode: exitErr.ExitCode(),
			Stderr:   strings.TrimSpace(stderr.String()),
		}
		if remoteErr.ExitCode == sshTransportExitCode {
			return nil, &TransportError{Addr: switchAddr, Err: remoteErr}
		}
		return nil, remoteErr
	}

	f.logger.Debug("remote command finished", "addr", switchAddr, "bytes", stdout.Len())
	return stdout.Bytes(), nil
}

func (f *ExecFetcher) args(switchAddr string) []string {
	args := make([]string, 0, len(f.cfg.ExtraArgs)+8)
	args = append(args, f.cfg.ExtraArgs...)
	if f.cfg.Port != 22 {
		args = append(args, "-p", strconv.Itoa(f.cfg.Port))
	}
	if f.cfg.IdentityFile != "" {
		args = append(args, "-i", f.cfg.IdentityFile)
	}
	if f.cfg.User != "" {
		args = append(args, "-l", f.cfg.User)
	}
	return append(args, switchAddr, f.cfg.Command)
}
