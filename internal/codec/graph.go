package codec

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"lldpinventory/internal/inventory"
)

// GraphCodec writes the group tree in the "--graph" text layout
type GraphCodec struct {
	// Vars also prints each host's variables
	Vars bool
}

// NewGraphCodec creates a new graph codec
func NewGraphCodec() *GraphCodec {
	return &GraphCodec{}
}

// Format returns the codec format identifier
func (c *GraphCodec) Format() string {
	return "graph"
}

// Export writes the tree rooted at "all"
func (c *GraphCodec) Export(s inventory.Snapshot, w io.Writer) error {
	idx := indexSnapshot(s)

	var b strings.Builder
	b.WriteString("@" + inventory.GroupAll + ":\n")
	for _, name := range idx.topLevel() {
		c.writeGroup(&b, idx, name, 1, map[string]bool{})
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write graph: %w", err)
	}
	return nil
}

func (c *GraphCodec) writeGroup(b *strings.Builder, idx snapshotIndex, name string, depth int, seen map[string]bool) {
	g, ok := idx.groups[name]
	if !ok || seen[name] {
		return
	}
	seen[name] = true

	prefix := strings.Repeat("  |", depth-1)
	fmt.Fprintf(b, "%s  |--@%s:\n", prefix, name)

	children := append([]string(nil), g.Children...)
	sort.Strings(children)
	for _, child := range children {
		c.writeGroup(b, idx, child, depth+1, seen)
	}

	hosts := append([]string(nil), g.Hosts...)
	sort.Strings(hosts)
	for _, h := range hosts {
		fmt.Fprintf(b, "%s  |  |--%s\n", prefix, h)
		if !c.Vars {
			continue
		}
		vars := idx.hostVars[h]
		keys := make([]string, 0, len(vars))
		for k := range vars {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(b, "%s  |  |  |{%s = %v}\n", prefix, k, vars[k])
		}
	}
}
