package tailwind

import "strings"

// DoorState is the reported position of a garage door.
type DoorState string

const (
	DoorStateOpen   DoorState = "open"
	DoorStateClosed DoorState = "close"
)

// DoorOperation is a command to move a garage door.
type DoorOperation string

const (
	DoorOperationOpen  DoorOperation = "open"
	DoorOperationClose DoorOperation = "close"
)

// targetState returns the door state this operation moves the door towards.
func (op DoorOperation) targetState() DoorState {
	if op == DoorOperationClose {
		return DoorStateClosed
	}
	return DoorStateOpen
}

// Door holds the status of a single Tailwind connected garage door.
type Door struct {
	DoorID    string
	Index     int
	Disabled  bool
	LockedOut bool
	State     DoorState
}

// DeviceStatus holds the status of a Tailwind device and its doors, keyed
// by door ID.
type DeviceStatus struct {
	DeviceID         string
	Product          string
	FirmwareVersion  string
	ProtocolVersion  string
	LEDBrightness    int
	NightModeEnabled bool
	NumberOfDoors    int
	Doors            map[string]Door
}

// MACAddress returns the device MAC address derived from the device ID.
func (s *DeviceStatus) MACAddress() string {
	return DeviceIDToMACAddress(s.DeviceID)
}

// DeviceIDToMACAddress converts a Tailwind device ID, an underscore
// delimited string like "_3c_e9_e_6d_21_84", to a MAC address. Each segment
// is zero padded to two digits.
func DeviceIDToMACAddress(deviceID string) string {
	parts := strings.Split(strings.Trim(deviceID, "_"), "_")
	for i, part := range parts {
		if len(part) < 2 {
			parts[i] = strings.Repeat("0", 2-len(part)) + part
		}
	}
	return strings.Join(parts, ":")
}
