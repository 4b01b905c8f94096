package lldp

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// payload mirrors `lldpctl -f json` output:
//
//	{"lldp": [{"interface": [{"name": ..., "port": [...], "chassis": [...]}]}]}
//
// lldpctl collapses single-element lists into objects and sometimes emits
// bare strings instead of {"value": ...}; oneOrMany and textValue accept both.
type payload struct {
	LLDP oneOrMany[lldpSection] `json:"lldp"`
}

type lldpSection struct {
	Interface oneOrMany[interfaceEntry] `json:"interface"`

	// hasInterface is false when the key is absent or null
	hasInterface bool
	// empty is set for "{}", which lldpctl prints when it has no neighbors
	empty bool
}

func (s *lldpSection) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	s.empty = len(fields) == 0

	raw, ok := fields["interface"]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	s.hasInterface = true
	return json.Unmarshal(raw, &s.Interface)
}

type interfaceEntry struct {
	Name    string                  `json:"name"`
	Port    oneOrMany[portEntry]    `json:"port"`
	Chassis oneOrMany[chassisEntry] `json:"chassis"`
}

type portEntry struct {
	ID oneOrMany[textValue] `json:"id"`
}

type chassisEntry struct {
	Name   oneOrMany[textValue] `json:"name"`
	MgmtIP oneOrMany[textValue] `json:"mgmt-ip"`
}

type oneOrMany[T any] []T

func (o *oneOrMany[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*o = nil
		return nil
	case len(data) > 0 && data[0] == '[':
		var many []T
		if err := json.Unmarshal(data, &many); err != nil {
			return err
		}
		*o = many
		return nil
	}

	var one T
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*o = oneOrMany[T]{one}
	return nil
}

type textValue struct {
	Value string `json:"value"`
}

func (v *textValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &v.Value)
	}

	var obj struct {
		Value *string `json:"value"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("expected string or {\"value\": string}: %w", err)
	}
	if obj.Value != nil {
		v.Value = *obj.Value
	}
	return nil
}

// first returns the first non-empty value
func first(values []textValue) string {
	for _, v := range values {
		if v.Value != "" {
			return v.Value
		}
	}
	return ""
}
