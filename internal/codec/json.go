package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"lldpinventory/internal/inventory"
)

// JSONCodec writes the dynamic inventory "--list" document
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

type jsonGroup struct {
	Hosts    []string `json:"hosts,omitempty"`
	Children []string `json:"children,omitempty"`
}

type jsonMeta struct {
	HostVars map[string]map[string]any `json:"hostvars"`
}

// Export writes every group keyed by name plus _meta.hostvars
func (c *JSONCodec) Export(s inventory.Snapshot, w io.Writer) error {
	idx := indexSnapshot(s)

	doc := make(map[string]any, len(s.Groups)+1)
	doc["_meta"] = jsonMeta{HostVars: idx.hostVars}

	for _, g := range s.Groups {
		jg := jsonGroup{Hosts: g.Hosts, Children: g.Children}
		if g.Name == inventory.GroupAll {
			// hosts reach "all" through their groups
			jg = jsonGroup{Children: idx.topLevel()}
		}
		doc[g.Name] = jg
	}

	return encode(doc, w)
}

// ExportHost writes the variables of a single host, as for "--host"
func (c *JSONCodec) ExportHost(s inventory.Snapshot, host string, w io.Writer) error {
	for _, h := range s.Hosts {
		if h.Name != host {
			continue
		}
		vars := h.Vars
		if vars == nil {
			vars = map[string]any{}
		}
		return encode(vars, w)
	}
	return fmt.Errorf("host %q not found in inventory", host)
}

func encode(v any, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
