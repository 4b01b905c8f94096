package classify

import (
	"testing"

	"lldpinventory/internal/domain"
)

func TestRoleOfParityTable(t *testing.T) {
	hex := "0123456789abcdef"
	for i := 0; i < len(hex); i++ {
		digit := hex[i]
		mac := "1c:a0:ef:aa:bb:c" + string(digit)

		want := domain.RoleBMC
		if i%2 == 0 {
			want = domain.RoleHost
		}

		got, ok := RoleOf(mac)
		if !ok {
			t.Errorf("RoleOf(%s) not classified", mac)
			continue
		}
		if got != want {
			t.Errorf("RoleOf(%s) = %s, want %s", mac, got, want)
		}
	}
}

func TestRoleOfExamples(t *testing.T) {
	tests := []struct {
		mac    string
		want   domain.Role
		wantOK bool
	}{
		{mac: "1c:a0:ef:aa:bb:c0", want: domain.RoleHost, wantOK: true},
		{mac: "1c:a0:ef:aa:bb:c1", want: domain.RoleBMC, wantOK: true},
		{mac: "1C:A0:EF:AA:BB:CE", want: domain.RoleHost, wantOK: true},
		{mac: "1C:A0:EF:AA:BB:CF", want: domain.RoleBMC, wantOK: true},
		{mac: "00:11:22:33:44:55", wantOK: false},
		{mac: "1c:a0:ee:aa:bb:c0", wantOK: false},
		{mac: "1c:a0:ef:aa:bb", wantOK: false},
		{mac: "1c:a0:ef:aa:bb:c0:00", wantOK: false},
		{mac: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.mac, func(t *testing.T) {
			got, ok := RoleOf(tt.mac)
			if ok != tt.wantOK {
				t.Fatalf("RoleOf(%q) ok = %v, want %v", tt.mac, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("RoleOf(%q) = %s, want %s", tt.mac, got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	records := []domain.NeighborRecord{
		{InterfaceName: "eth0", ChassisManagementIP: "10.1.1.1", PortMAC: "1c:a0:ef:01:02:c0"},
		{InterfaceName: "eth1", ChassisManagementIP: "10.1.1.2", PortMAC: "1c:a0:ef:01:02:c1"},
		{InterfaceName: "eth2", ChassisManagementIP: "10.1.1.3", PortMAC: "00:11:22:33:44:55"},
		{InterfaceName: "eth3", ChassisManagementIP: "10.1.1.4", PortMAC: "1c:a0:ef:01:02:c4"},
		{InterfaceName: "eth4", ChassisManagementIP: "10.1.1.5", PortMAC: "1c:a0:ef:01:02:cb"},
	}

	res := Classify(records)

	assertNames(t, "hosts", res.Hosts, []string{"10.1.1.1", "10.1.1.4"})
	assertNames(t, "bmcs", res.BMCs, []string{"10.1.1.2", "10.1.1.5"})

	for _, d := range res.Hosts {
		if d.Role() != domain.RoleHost || d.IP() != d.Name() {
			t.Errorf("host descriptor %+v malformed", d)
		}
	}
	for _, d := range res.BMCs {
		if d.Role() != domain.RoleBMC || d.IP() != d.Name() {
			t.Errorf("bmc descriptor %+v malformed", d)
		}
	}
}

func TestClassifyKeepsDuplicates(t *testing.T) {
	records := []domain.NeighborRecord{
		{InterfaceName: "eth0", ChassisManagementIP: "10.1.1.1", PortMAC: "1c:a0:ef:01:02:c0"},
		{InterfaceName: "eth1", ChassisManagementIP: "10.1.1.1", PortMAC: "1c:a0:ef:01:02:c2"},
	}

	res := Classify(records)
	assertNames(t, "hosts", res.Hosts, []string{"10.1.1.1", "10.1.1.1"})
}

func TestClassifyDeterministic(t *testing.T) {
	records := []domain.NeighborRecord{
		{ChassisManagementIP: "10.0.0.1", PortMAC: "1c:a0:ef:00:00:01"},
		{ChassisManagementIP: "10.0.0.2", PortMAC: "1c:a0:ef:00:00:02"},
		{ChassisManagementIP: "10.0.0.3", PortMAC: "1c:a0:ef:00:00:03"},
	}

	first := Classify(records)
	for i := 0; i < 10; i++ {
		again := Classify(records)
		if len(again.BMCs) != len(first.BMCs) || len(again.Hosts) != len(first.Hosts) {
			t.Fatal("classification changed between runs")
		}
		for j := range first.BMCs {
			if again.BMCs[j] != first.BMCs[j] {
				t.Fatal("bmc ordering changed between runs")
			}
		}
	}
}

func TestClassifyEmpty(t *testing.T) {
	res := Classify(nil)
	if len(res.BMCs) != 0 || len(res.Hosts) != 0 {
		t.Errorf("Classify(nil) = %+v, want empty", res)
	}
}

func assertNames(t *testing.T, label string, got []domain.DeviceDescriptor, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: got %d descriptors, want %d", label, len(got), len(want))
	}
	for i := range want {
		if got[i].Name() != want[i] {
			t.Errorf("%s[%d] = %s, want %s", label, i, got[i].Name(), want[i])
		}
	}
}
