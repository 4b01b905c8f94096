package inventory

import (
	"bytes"
	"encoding/json"
)

// HostSnapshot is a host and its variables
type HostSnapshot struct {
	Name string         `json:"name"`
	Vars map[string]any `json:"vars"`
}

// GroupSnapshot is an explicit group
type GroupSnapshot struct {
	Name     string   `json:"name"`
	Hosts    []string `json:"hosts,omitempty"`
	Children []string `json:"children,omitempty"`
}

// Snapshot is a serializable copy of an inventory, used by the cache and
// the output codecs
type Snapshot struct {
	Hosts  []HostSnapshot  `json:"hosts"`
	Groups []GroupSnapshot `json:"groups"`
}

// Snapshot copies the inventory. Groups are emitted in GroupNames order;
// the computed "ungrouped" group is included.
func (inv *Inventory) Snapshot() Snapshot {
	var s Snapshot
	for _, h := range inv.Hosts() {
		s.Hosts = append(s.Hosts, HostSnapshot{Name: h, Vars: inv.HostVars(h)})
	}
	for _, name := range inv.GroupNames() {
		g, _ := inv.Group(name)
		s.Groups = append(s.Groups, GroupSnapshot{Name: g.Name, Hosts: g.Hosts, Children: g.Children})
	}
	return s
}

// Restore rebuilds an inventory from a snapshot
func Restore(s Snapshot) (*Inventory, error) {
	inv := New()
	for _, h := range s.Hosts {
		inv.AddHost(h.Name)
		for _, k := range sortedKeys(h.Vars) {
			if err := inv.SetVariable(h.Name, k, h.Vars[k]); err != nil {
				return nil, err
			}
		}
	}
	for _, g := range s.Groups {
		if g.Name == GroupAll || g.Name == GroupUngrouped {
			continue
		}
		inv.AddGroup(g.Name)
		for _, h := range g.Hosts {
			if err := inv.AddHostToGroup(g.Name, h); err != nil {
				return nil, err
			}
		}
	}
	for _, g := range s.Groups {
		if g.Name == GroupAll || g.Name == GroupUngrouped {
			continue
		}
		for _, c := range g.Children {
			if err := inv.AddChildGroup(g.Name, c); err != nil {
				return nil, err
			}
		}
	}
	return inv, nil
}

// UnmarshalJSON keeps integral variable values as int64 instead of float64
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	type plain Snapshot
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var p plain
	if err := dec.Decode(&p); err != nil {
		return err
	}
	for i := range p.Hosts {
		for k, v := range p.Hosts[i].Vars {
			p.Hosts[i].Vars[k] = normalize(v)
		}
	}
	*s = Snapshot(p)
	return nil
}
