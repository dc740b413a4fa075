package models

type DeviceRole string

const (
	RoleCamera  DeviceRole = "camera"
	RoleFeeder  DeviceRole = "feeder"
	RoleUnknown DeviceRole = "unknown"
)

// ProbeResult is one responding host from a LAN sweep. Results are ephemeral:
// they exist only between a scan and the pairing pass.
type ProbeResult struct {
	Address              string
	Role                 DeviceRole
	Hostname             string
	Connected            bool
	ContainerWeightGrams float64
}

// PairedDevice is a camera/feeder-brain pair grouped into one feeder slot.
// Either address may be empty when only half of the pair responded.
type PairedDevice struct {
	DisplayName          string
	Core                 string
	SlotID               int
	CameraAddress        string
	FeederAddress        string
	Online               bool
	ContainerWeightGrams float64
}
