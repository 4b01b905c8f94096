// Package adapter implements the remote side of LLDP discovery.
//
// # Neighbor Fetchers
//
// A Fetcher runs the neighbor report command (by default
// "sudo lldpctl -f json") on a switch and returns its raw standard output.
//
// ExecFetcher shells out to the local ssh client, relying on whatever key
// based, passwordless access the operator has already configured
// (~/.ssh/config, agent, known_hosts).
//
// NativeFetcher speaks SSH in-process using golang.org/x/crypto/ssh with an
// identity file or the running ssh-agent.
//
// Both fetchers run exactly one remote command per call and never retry.
//
// # Errors
//
// ExecutableNotFoundError, TransportError and RemoteCommandError classify
// fetch failures; callers inspect them with errors.As.
//
// # Reachability
//
// Reachability runs a single nmap ping sweep over discovered management
// addresses so the inventory can record which hosts answered.
package adapter
