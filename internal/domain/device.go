package domain

// Role classifies a discovered device
type Role string

const (
	RoleBMC  Role = "bmc"
	RoleHost Role = "host"
)

// Variable names set on every inventory host
const (
	VarName   = "name"
	VarIP     = "ip"
	VarRole   = "role"
	VarIsBMC  = "is_bmc"
	VarIsHost = "is_host"
)

// DeviceDescriptor is a classified device derived from one NeighborRecord
type DeviceDescriptor struct {
	name string
	ip   string
	role Role
}

// NewDeviceDescriptor creates a descriptor named after the management IP
func NewDeviceDescriptor(mgmtIP string, role Role) DeviceDescriptor {
	return DeviceDescriptor{name: mgmtIP, ip: mgmtIP, role: role}
}

// Name returns the inventory hostname
func (d DeviceDescriptor) Name() string { return d.name }

// IP returns the management address
func (d DeviceDescriptor) IP() string { return d.ip }

// Role returns BMC or host
func (d DeviceDescriptor) Role() Role { return d.role }

// IsBMC reports whether the device is a baseboard management controller
func (d DeviceDescriptor) IsBMC() bool { return d.role == RoleBMC }

// Vars returns the host variables for the descriptor.
// The role flag is is_bmc for BMCs and is_host for regular hosts.
func (d DeviceDescriptor) Vars() map[string]any {
	vars := map[string]any{
		VarName: d.name,
		VarIP:   d.ip,
		VarRole: string(d.role),
	}
	if d.IsBMC() {
		vars[VarIsBMC] = true
	} else {
		vars[VarIsHost] = true
	}
	return vars
}
