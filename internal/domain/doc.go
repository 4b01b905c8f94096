// Package domain defines the core types of the LLDP inventory pipeline.
//
// # Core Types
//
// NeighborRecord is one LLDP neighbor observation reported by the switch:
// the local port, the remote chassis management address and the remote
// port MAC.
//
// MAC is a parsed, six-octet hardware address in canonical lowercase
// colon-separated form.
//
// DeviceDescriptor is a classified device (BMC or regular host) derived
// from exactly one NeighborRecord. Descriptors are immutable values and
// expose their inventory variables through Vars.
//
// # Design Principles
//
// - Immutable value objects
// - No I/O, no external dependencies
package domain
