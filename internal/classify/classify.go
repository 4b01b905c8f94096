// Package classify splits LLDP neighbors into BMCs and regular hosts using
// the address allocation scheme of the managed fleet.
//
// Candidate ports carry the 1c:a0:ef OUI. Within that range the final hex
// digit of the address decides the role: an even digit is a host port, an
// odd digit is the BMC port. Ports outside the OUI are ignored.
package classify

import "lldpinventory/internal/domain"

// FleetOUI is the vendor prefix of classified ports
const FleetOUI = "1c:a0:ef"

// Result holds the partitioned descriptors in input order
type Result struct {
	BMCs  []domain.DeviceDescriptor
	Hosts []domain.DeviceDescriptor
}

// Classify partitions records into BMC and host descriptors.
// Records sharing a management IP are not merged.
func Classify(records []domain.NeighborRecord) Result {
	var res Result

	for _, rec := range records {
		role, ok := RoleOf(rec.PortMAC)
		if !ok {
			continue
		}

		d := domain.NewDeviceDescriptor(rec.ChassisManagementIP, role)
		if role == domain.RoleBMC {
			res.BMCs = append(res.BMCs, d)
		} else {
			res.Hosts = append(res.Hosts, d)
		}
	}

	return res
}

// RoleOf returns the role encoded in a port MAC, or false when the MAC is
// not a fleet address
func RoleOf(portMAC string) (domain.Role, bool) {
	mac, err := domain.ParseMAC(portMAC)
	if err != nil || mac.OUI() != FleetOUI {
		return "", false
	}

	switch mac.LastNibble() {
	case '0', '2', '4', '6', '8', 'a', 'c', 'e':
		return domain.RoleHost, true
	default:
		return domain.RoleBMC, true
	}
}
