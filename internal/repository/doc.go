// Package repository defines persistence for inventory snapshots.
//
// A run that completes successfully may store its inventory under the
// switch address it was discovered from. Later runs with caching enabled
// read it back instead of contacting the switch, as long as the entry is
// younger than the configured timeout. Failed runs never write.
//
// The sqlite subpackage provides the implementation.
package repository
