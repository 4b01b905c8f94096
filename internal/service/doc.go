// Package service runs the discovery pipeline.
//
// DiscoveryService fetches the neighbor table from a switch, parses it,
// classifies every neighbor as a BMC or a host and populates a fresh
// inventory, BMCs first. Each stage reports failures as a StageError so the
// CLI can name the stage that broke.
//
// # Caching
//
// When a repository.Cache is configured and caching is enabled for the run,
// a fresh snapshot for the switch address is returned without contacting
// the switch. Successful runs refresh the entry; failed runs leave it alone.
//
// # Event System
//
// Progress is published on an EventBus: discovery_started, host_added,
// discovery_completed and discovery_failed.
package service
