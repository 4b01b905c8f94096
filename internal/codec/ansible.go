package codec

import (
	"fmt"
	"io"

	"lldpinventory/internal/inventory"

	"gopkg.in/yaml.v3"
)

// AnsibleCodec writes a YAML inventory loadable by ansible's yaml plugin
type AnsibleCodec struct{}

// NewAnsibleCodec creates a new Ansible codec
func NewAnsibleCodec() *AnsibleCodec {
	return &AnsibleCodec{}
}

// Format returns the codec format identifier
func (c *AnsibleCodec) Format() string {
	return "yaml"
}

type ansibleInventory struct {
	All ansibleGroup `yaml:"all"`
}

type ansibleGroup struct {
	Hosts    map[string]map[string]any `yaml:"hosts,omitempty"`
	Children map[string]ansibleGroup   `yaml:"children,omitempty"`
}

// Export writes host variables under all.hosts and group membership under
// nested children
func (c *AnsibleCodec) Export(s inventory.Snapshot, w io.Writer) error {
	idx := indexSnapshot(s)

	inv := ansibleInventory{
		All: ansibleGroup{
			Hosts:    make(map[string]map[string]any, len(s.Hosts)),
			Children: make(map[string]ansibleGroup),
		},
	}
	for name, vars := range idx.hostVars {
		inv.All.Hosts[name] = vars
	}

	for _, name := range idx.topLevel() {
		if name == inventory.GroupUngrouped {
			continue
		}
		inv.All.Children[name] = c.group(idx, name, map[string]bool{})
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(&inv); err != nil {
		return fmt.Errorf("failed to encode Ansible inventory: %w", err)
	}

	return nil
}

func (c *AnsibleCodec) group(idx snapshotIndex, name string, seen map[string]bool) ansibleGroup {
	seen[name] = true
	g := idx.groups[name]

	out := ansibleGroup{}
	if len(g.Hosts) > 0 {
		out.Hosts = make(map[string]map[string]any, len(g.Hosts))
		for _, h := range g.Hosts {
			out.Hosts[h] = map[string]any{}
		}
	}
	for _, child := range g.Children {
		if seen[child] {
			continue
		}
		if out.Children == nil {
			out.Children = make(map[string]ansibleGroup)
		}
		out.Children[child] = c.group(idx, child, seen)
	}
	return out
}
