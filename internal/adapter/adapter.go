package adapter

import (
	"context"
	"time"
)

// DefaultCommand requests the neighbor table in JSON form
const DefaultCommand = "sudo lldpctl -f json"

// TransportType selects a Fetcher implementation
type TransportType string

const (
	// TransportExec runs the local ssh binary
	TransportExec TransportType = "exec"
	// TransportNative uses the in-process SSH client
	TransportNative TransportType = "native"
)

// Fetcher retrieves the raw LLDP neighbor table from a switch
type Fetcher interface {
	// Fetch blocks until the remote command exits and returns its stdout
	Fetch(ctx context.Context, switchAddr string) ([]byte, error)
}

// SSHConfig holds connection settings shared by both transports
type SSHConfig struct {
	// Binary is the ssh client used by ExecFetcher (name or path)
	Binary string
	// User to log in as; empty uses the ssh client default
	User string
	// Port on the switch; 0 means 22
	Port int
	// IdentityFile is a private key path
	IdentityFile string
	// KnownHostsFile enables host key verification for NativeFetcher
	KnownHostsFile string
	// Timeout bounds connection plus command execution; 0 disables it
	Timeout time.Duration
	// Command overrides DefaultCommand
	Command string
	// ExtraArgs are passed to the ssh binary before the address
	ExtraArgs []string
}

// withDefaults fills in missing values
func (c SSHConfig) withDefaults() SSHConfig {
	if c.Binary == "" {
		c.Binary = "ssh"
	}
	if c.Port == 0 {
		c.Port = 22
	}
	if c.Command == "" {
		c.Command = DefaultCommand
	}
	return c
}

// withTimeout derives a context bounded by the configured timeout
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
