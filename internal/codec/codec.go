// Package codec renders an inventory snapshot in the formats the CLI emits
package codec

import (
	"fmt"
	"io"
	"sort"

	"lldpinventory/internal/inventory"
)

// Exporter writes an inventory snapshot in one output format
type Exporter interface {
	Export(s inventory.Snapshot, w io.Writer) error
	Format() string
}

// New returns the exporter for a format name
func New(format string) (Exporter, error) {
	switch format {
	case "json", "":
		return NewJSONCodec(), nil
	case "yaml", "yml", "ansible":
		return NewAnsibleCodec(), nil
	case "graph":
		return NewGraphCodec(), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

// snapshotIndex gives name lookups over a snapshot
type snapshotIndex struct {
	hostVars map[string]map[string]any
	groups   map[string]inventory.GroupSnapshot
	order    []string
}

func indexSnapshot(s inventory.Snapshot) snapshotIndex {
	idx := snapshotIndex{
		hostVars: make(map[string]map[string]any, len(s.Hosts)),
		groups:   make(map[string]inventory.GroupSnapshot, len(s.Groups)),
	}
	for _, h := range s.Hosts {
		vars := h.Vars
		if vars == nil {
			vars = map[string]any{}
		}
		idx.hostVars[h.Name] = vars
	}
	for _, g := range s.Groups {
		idx.groups[g.Name] = g
		idx.order = append(idx.order, g.Name)
	}
	return idx
}

// topLevel returns the groups that are direct children of "all", sorted
// with "ungrouped" last
func (idx snapshotIndex) topLevel() []string {
	nested := map[string]bool{}
	for name, g := range idx.groups {
		if name == inventory.GroupAll {
			continue
		}
		for _, c := range g.Children {
			nested[c] = true
		}
	}

	var out []string
	for _, name := range idx.order {
		if name == inventory.GroupAll || name == inventory.GroupUngrouped || nested[name] {
			continue
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return append(out, inventory.GroupUngrouped)
}
