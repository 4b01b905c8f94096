package adapter

import "fmt"

// ExecutableNotFoundError means the local remote-execution tool is missing
type ExecutableNotFoundError struct {
	Name string
	Err  error
}

func (e *ExecutableNotFoundError) Error() string {
	return fmt.Sprintf("lldp inventory requires the %s cli tool to work: %v", e.Name, e.Err)
}

func (e *ExecutableNotFoundError) Unwrap() error { return e.Err }

// TransportError wraps failures launching or talking to the remote process
type TransportError struct {
	Addr string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport to %s failed: %v", e.Addr, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RemoteCommandError means the remote command ran and exited non-zero
type RemoteCommandError struct {
	ExitCode int
	Stderr   string
}

func (e *RemoteCommandError) Error() string {
	return fmt.Sprintf("remote command failed, rc=%d: %s", e.ExitCode, e.Stderr)
}
