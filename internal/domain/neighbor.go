package domain

// NeighborRecord is one LLDP neighbor observation
type NeighborRecord struct {
	// InterfaceName is the local port on the switch (e.g. "swp12")
	InterfaceName string `json:"interface_name" yaml:"interface_name"`
	// ChassisName is the remote system name, empty when not advertised
	ChassisName string `json:"chassis_name,omitempty" yaml:"chassis_name,omitempty"`
	// ChassisManagementIP is the management address of the remote chassis
	ChassisManagementIP string `json:"chassis_mgmt_ip" yaml:"chassis_mgmt_ip"`
	// PortMAC is the remote port MAC in canonical lowercase form
	PortMAC string `json:"port_mac" yaml:"port_mac"`
}
