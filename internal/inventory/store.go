// Package inventory holds discovered hosts, their variables and group
// memberships, and populates them from classified devices.
//
// The Populator depends only on the Store and Grouper interfaces; Inventory
// and Constructor are the in-process implementations used by the CLI.
package inventory

import "lldpinventory/internal/domain"

// Store is the inventory capability the populator writes to
type Store interface {
	// AddHost registers a host; re-adding an existing name is a no-op
	AddHost(name string)
	// SetVariable sets a host variable; the host must exist
	SetVariable(host, key string, value any) error
	// HostVars returns a copy of the host's variables
	HostVars(host string) map[string]any
	// AddGroup creates a group if it does not exist
	AddGroup(name string)
	// AddHostToGroup creates the group if needed and adds the host to it
	AddHostToGroup(group, host string) error
	// AddChildGroup nests child under parent, creating both if needed
	AddChildGroup(parent, child string) error
}

// Grouper evaluates grouping rules for one host
type Grouper interface {
	SetComposedVariables(compose map[string]string, vars map[string]any, host string, strict bool) error
	AddHostToConditionalGroups(groups map[string]string, vars map[string]any, host string, strict bool) error
	AddHostToKeyedGroups(keyed []KeyedGroup, vars map[string]any, host string, strict bool) error
}

// KeyedGroup creates groups named after the value of Key
type KeyedGroup struct {
	Key               string  `yaml:"key" json:"key"`
	Prefix            string  `yaml:"prefix,omitempty" json:"prefix,omitempty"`
	Separator         *string `yaml:"separator,omitempty" json:"separator,omitempty"`
	ParentGroup       string  `yaml:"parent_group,omitempty" json:"parent_group,omitempty"`
	DefaultValue      *string `yaml:"default_value,omitempty" json:"default_value,omitempty"`
	TrailingSeparator *bool   `yaml:"trailing_separator,omitempty" json:"trailing_separator,omitempty"`
}

// GroupingConfig carries the rule options of the inventory source
type GroupingConfig struct {
	Compose     map[string]string `yaml:"compose,omitempty"`
	Groups      map[string]string `yaml:"groups,omitempty"`
	KeyedGroups []KeyedGroup      `yaml:"keyed_groups,omitempty"`
	Strict      bool              `yaml:"strict"`
}

// Implicit groups every inventory has
const (
	GroupAll       = "all"
	GroupUngrouped = "ungrouped"
)

// descriptorVars returns the variables a descriptor contributes, in a
// stable order
func descriptorVars(d domain.DeviceDescriptor) ([]string, map[string]any) {
	vars := d.Vars()
	keys := sortedKeys(vars)
	return keys, vars
}
