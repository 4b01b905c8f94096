package inventory

import (
	"encoding/json"
	"reflect"
	"testing"
)

func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func assertEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		t.Fatalf("expected %#v, got %#v", expected, actual)
	}
}

func mustGroup(t *testing.T, inv *Inventory, name string) Group {
	t.Helper()
	g, ok := inv.Group(name)
	if !ok {
		t.Fatalf("group %q does not exist", name)
	}
	return g
}

func TestInventoryAddHostIdempotent(t *testing.T) {
	inv := New()
	inv.AddHost("10.0.0.5")
	assertNoError(t, inv.SetVariable("10.0.0.5", "ip", "10.0.0.5"))
	inv.AddHost("10.0.0.5")

	assertEqual(t, []string{"10.0.0.5"}, inv.Hosts())
	assertEqual(t, map[string]any{"ip": "10.0.0.5"}, inv.HostVars("10.0.0.5"))
	assertEqual(t, []string{"10.0.0.5"}, mustGroup(t, inv, GroupAll).Hosts)
}

func TestInventoryHostOrder(t *testing.T) {
	inv := New()
	for _, h := range []string{"10.0.0.9", "10.0.0.1", "10.0.0.5"} {
		inv.AddHost(h)
	}
	assertEqual(t, []string{"10.0.0.9", "10.0.0.1", "10.0.0.5"}, inv.Hosts())
}

func TestInventorySetVariableUnknownHost(t *testing.T) {
	inv := New()
	if err := inv.SetVariable("nope", "ip", "1.2.3.4"); err == nil {
		t.Fatal("expected error for unknown host")
	}
	if inv.HostVars("nope") != nil {
		t.Fatal("expected nil vars for unknown host")
	}
}

func TestInventoryHostVarsIsCopy(t *testing.T) {
	inv := New()
	inv.AddHost("h")
	assertNoError(t, inv.SetVariable("h", "a", 1))

	vars := inv.HostVars("h")
	vars["a"] = 2
	assertEqual(t, 1, inv.HostVars("h")["a"])
}

func TestInventoryGroups(t *testing.T) {
	inv := New()
	inv.AddHost("a")
	inv.AddHost("b")

	assertNoError(t, inv.AddHostToGroup("bmcs", "a"))
	assertNoError(t, inv.AddHostToGroup("bmcs", "a"))

	assertEqual(t, []string{"a"}, mustGroup(t, inv, "bmcs").Hosts)
	assertEqual(t, []string{"b"}, mustGroup(t, inv, GroupUngrouped).Hosts)
	assertEqual(t, []string{"bmcs"}, inv.GroupsOf("a"))
	assertEqual(t, []string{GroupAll, GroupUngrouped, "bmcs"}, inv.GroupNames())

	if err := inv.AddHostToGroup("bmcs", "missing"); err == nil {
		t.Fatal("expected error adding unknown host to group")
	}
}

func TestInventoryAddHostToAllIsNoop(t *testing.T) {
	inv := New()
	inv.AddHost("a")
	assertNoError(t, inv.AddHostToGroup(GroupAll, "a"))
	assertEqual(t, []string{"a"}, mustGroup(t, inv, GroupAll).Hosts)
	assertEqual(t, []string{"a"}, mustGroup(t, inv, GroupUngrouped).Hosts)
}

func TestInventoryChildGroups(t *testing.T) {
	inv := New()

	assertNoError(t, inv.AddChildGroup("roles", "role_bmc"))
	assertNoError(t, inv.AddChildGroup("roles", "role_bmc"))
	assertEqual(t, []string{"role_bmc"}, mustGroup(t, inv, "roles").Children)

	tests := []struct {
		name          string
		parent, child string
	}{
		{"self", "roles", "roles"},
		{"cycle", "role_bmc", "roles"},
		{"all as child", "roles", GroupAll},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := inv.AddChildGroup(tt.parent, tt.child); err == nil {
				t.Fatalf("expected error adding %s under %s", tt.child, tt.parent)
			}
		})
	}
}

func TestSnapshotRestore(t *testing.T) {
	inv := New()
	inv.AddHost("10.0.0.5")
	inv.AddHost("10.0.0.6")
	assertNoError(t, inv.SetVariable("10.0.0.5", "is_bmc", true))
	assertNoError(t, inv.SetVariable("10.0.0.6", "is_host", true))
	assertNoError(t, inv.AddHostToGroup("role_bmc", "10.0.0.5"))
	assertNoError(t, inv.AddChildGroup("roles", "role_bmc"))

	restored, err := Restore(inv.Snapshot())
	assertNoError(t, err)

	assertEqual(t, inv.Hosts(), restored.Hosts())
	assertEqual(t, inv.HostVars("10.0.0.5"), restored.HostVars("10.0.0.5"))
	assertEqual(t, inv.GroupNames(), restored.GroupNames())
	assertEqual(t, mustGroup(t, inv, "role_bmc"), mustGroup(t, restored, "role_bmc"))
	assertEqual(t, mustGroup(t, inv, "roles"), mustGroup(t, restored, "roles"))
	assertEqual(t, []string{"10.0.0.6"}, mustGroup(t, restored, GroupUngrouped).Hosts)
}

func TestSnapshotJSONKeepsIntegers(t *testing.T) {
	inv := New()
	inv.AddHost("h")
	assertNoError(t, inv.SetVariable("h", "port", int64(623)))
	assertNoError(t, inv.SetVariable("h", "ratio", 0.5))

	data, err := json.Marshal(inv.Snapshot())
	assertNoError(t, err)

	var s Snapshot
	assertNoError(t, json.Unmarshal(data, &s))
	assertEqual(t, int64(623), s.Hosts[0].Vars["port"])
	assertEqual(t, 0.5, s.Hosts[0].Vars["ratio"])
}
