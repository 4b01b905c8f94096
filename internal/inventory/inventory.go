package inventory

import (
	"fmt"
	"sort"
	"sync"
)

// Group is a named set of hosts and child groups
type Group struct {
	Name     string
	Hosts    []string
	Children []string
}

// Inventory is an in-memory Store. Hosts keep insertion order.
type Inventory struct {
	mu       sync.RWMutex
	hosts    []string
	hostVars map[string]map[string]any
	groups   map[string]*Group
}

// New returns an empty inventory containing only the implicit groups
func New() *Inventory {
	inv := &Inventory{
		hostVars: make(map[string]map[string]any),
		groups:   make(map[string]*Group),
	}
	inv.groups[GroupAll] = &Group{Name: GroupAll}
	inv.groups[GroupUngrouped] = &Group{Name: GroupUngrouped}
	inv.groups[GroupAll].Children = []string{GroupUngrouped}
	return inv
}

// AddHost registers a host and makes it a member of "all"
func (inv *Inventory) AddHost(name string) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	if _, ok := inv.hostVars[name]; ok {
		return
	}
	inv.hosts = append(inv.hosts, name)
	inv.hostVars[name] = make(map[string]any)
	all := inv.groups[GroupAll]
	all.Hosts = append(all.Hosts, name)
}

func (inv *Inventory) SetVariable(host, key string, value any) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	vars, ok := inv.hostVars[host]
	if !ok {
		return fmt.Errorf("unknown host %q", host)
	}
	vars[key] = value
	return nil
}

func (inv *Inventory) HostVars(host string) map[string]any {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	vars, ok := inv.hostVars[host]
	if !ok {
		return nil
	}
	out := make(map[string]any, len(vars))
	for k, v := range vars {
		out[k] = v
	}
	return out
}

func (inv *Inventory) AddGroup(name string) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.ensureGroup(name)
}

func (inv *Inventory) AddHostToGroup(group, host string) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	if _, ok := inv.hostVars[host]; !ok {
		return fmt.Errorf("unknown host %q", host)
	}
	if group == GroupAll {
		return nil
	}
	g := inv.ensureGroup(group)
	if !contains(g.Hosts, host) {
		g.Hosts = append(g.Hosts, host)
	}
	return nil
}

func (inv *Inventory) AddChildGroup(parent, child string) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	if parent == child {
		return fmt.Errorf("group %q cannot be a child of itself", parent)
	}
	if child == GroupAll {
		return fmt.Errorf("group %q cannot be a child group", GroupAll)
	}
	p := inv.ensureGroup(parent)
	inv.ensureGroup(child)
	if contains(p.Children, child) {
		return nil
	}
	if inv.reachable(child, parent) {
		return fmt.Errorf("adding %q under %q would create a cycle", child, parent)
	}
	p.Children = append(p.Children, child)
	return nil
}

// Hosts returns host names in insertion order
func (inv *Inventory) Hosts() []string {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return append([]string(nil), inv.hosts...)
}

// HasHost reports whether the host has been added
func (inv *Inventory) HasHost(name string) bool {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	_, ok := inv.hostVars[name]
	return ok
}

// Group returns a copy of the named group. The "ungrouped" group is
// computed from hosts that belong to no explicit group.
func (inv *Inventory) Group(name string) (Group, bool) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	g, ok := inv.groups[name]
	if !ok {
		return Group{}, false
	}
	out := Group{
		Name:     g.Name,
		Hosts:    append([]string(nil), g.Hosts...),
		Children: append([]string(nil), g.Children...),
	}
	if name == GroupUngrouped {
		out.Hosts = inv.ungroupedLocked()
	}
	return out, true
}

// GroupNames returns all group names, "all" and "ungrouped" first and the
// rest sorted
func (inv *Inventory) GroupNames() []string {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	names := make([]string, 0, len(inv.groups))
	for name := range inv.groups {
		if name == GroupAll || name == GroupUngrouped {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return append([]string{GroupAll, GroupUngrouped}, names...)
}

// GroupsOf returns the explicit groups a host is a direct member of, sorted
func (inv *Inventory) GroupsOf(host string) []string {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	var out []string
	for name, g := range inv.groups {
		if name == GroupAll || name == GroupUngrouped {
			continue
		}
		if contains(g.Hosts, host) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func (inv *Inventory) ensureGroup(name string) *Group {
	g, ok := inv.groups[name]
	if !ok {
		g = &Group{Name: name}
		inv.groups[name] = g
		if name != GroupAll {
			all := inv.groups[GroupAll]
			if !contains(all.Children, name) {
				all.Children = append(all.Children, name)
			}
		}
	}
	return g
}

// reachable reports whether to is a descendant of (or equal to) from
func (inv *Inventory) reachable(from, to string) bool {
	seen := map[string]bool{}
	var walk func(string) bool
	walk = func(name string) bool {
		if name == to {
			return true
		}
		if seen[name] {
			return false
		}
		seen[name] = true
		g, ok := inv.groups[name]
		if !ok {
			return false
		}
		for _, c := range g.Children {
			if walk(c) {
				return true
			}
		}
		return false
	}
	return walk(from)
}

func (inv *Inventory) ungroupedLocked() []string {
	var out []string
	for _, h := range inv.hosts {
		grouped := false
		for name, g := range inv.groups {
			if name == GroupAll || name == GroupUngrouped {
				continue
			}
			if contains(g.Hosts, h) {
				grouped = true
				break
			}
		}
		if !grouped {
			out = append(out, h)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
