package tailwind

import (
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-version"
)

const (
	protocolVersion = "0.1"

	requestTypeGet = "get"
	requestTypeSet = "set"

	resultOK        = "OK"
	resultAuthError = "token fail"
)

// minFirmwareVersion is the lowest firmware the local control protocol is
// supported on.
const minFirmwareVersion = "10.10"

var minFirmware = version.Must(version.NewVersion(minFirmwareVersion))

// requestSpec binds a request payload to the decoder for its paired
// response, so a request variant can only ever produce the one response
// type the protocol defines for it.
type requestSpec[T any] struct {
	data   requestData
	decode func(body []byte) (T, error)
}

// requestEnvelope is the outer JSON structure of every request.
type requestEnvelope struct {
	Version string      `json:"version"`
	Data    requestData `json:"data"`
	Product string      `json:"product,omitempty"`
}

type requestData struct {
	Type  string `json:"type"`
	Name  string `json:"name"`
	Value any    `json:"value,omitempty"`
}

func deviceStatusRequest() requestSpec[*DeviceStatus] {
	return requestSpec[*DeviceStatus]{
		data:   requestData{Type: requestTypeGet, Name: "dev_st"},
		decode: decodeDeviceStatus,
	}
}

func identifyRequest() requestSpec[struct{}] {
	return requestSpec[struct{}]{
		data:   requestData{Type: requestTypeSet, Name: "identify"},
		decode: decodeAckResponse,
	}
}

type doorOperationValue struct {
	Index     int           `json:"door_idx"`
	Operation DoorOperation `json:"cmd"`
}

func doorOperationRequest(index int, operation DoorOperation) requestSpec[struct{}] {
	return requestSpec[struct{}]{
		data: requestData{
			Type:  requestTypeSet,
			Name:  "door_op",
			Value: doorOperationValue{Index: index, Operation: operation},
		},
		decode: decodeAckResponse,
	}
}

type ledBrightnessValue struct {
	Brightness int `json:"brightness"`
}

func ledBrightnessRequest(brightness int) requestSpec[struct{}] {
	return requestSpec[struct{}]{
		data: requestData{
			Type:  requestTypeSet,
			Name:  "status_led",
			Value: ledBrightnessValue{Brightness: brightness},
		},
		decode: decodeAckResponse,
	}
}

// intBool is a boolean that is wire encoded as the integer 0 or 1.
type intBool bool

func (b intBool) MarshalJSON() ([]byte, error) {
	if b {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

func (b *intBool) UnmarshalJSON(data []byte) error {
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*b = v != 0
	return nil
}

// responseEnvelope carries the fields shared by every response: the result
// discriminator and, on failure, an error message.
type responseEnvelope struct {
	Result  string `json:"result"`
	Message string `json:"message"`
	Info    string `json:"Info"`
}

// gate inspects the result discriminator. OK passes, the authentication
// sentinel maps to ErrAuthentication and anything else to ErrResponse with
// the device-provided message.
func (e responseEnvelope) gate() error {
	switch e.Result {
	case resultOK:
		return nil
	case resultAuthError:
		return ErrAuthentication
	}
	msg := e.Message
	if msg == "" {
		msg = e.Info
	}
	if msg == "" {
		msg = "Unknown error"
	}
	return fmt.Errorf("%w: %s", ErrResponse, msg)
}

// decodeAckResponse adapts decodeAck to the requestSpec decoder shape for
// operations whose responses carry no payload beyond the result gate.
func decodeAckResponse(body []byte) (struct{}, error) {
	return struct{}{}, decodeAck(body)
}

func decodeAck(body []byte) error {
	var env responseEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("%w: decoding response: %w", ErrResponse, err)
	}
	return env.gate()
}

type doorEnvelope struct {
	Index     int       `json:"index"`
	Disabled  intBool   `json:"disabled"`
	LockedOut intBool   `json:"lockup"`
	State     DoorState `json:"status"`
}

type deviceStatusEnvelope struct {
	responseEnvelope

	DeviceID         string                  `json:"dev_id"`
	Product          string                  `json:"product"`
	FirmwareVersion  string                  `json:"fw_ver"`
	ProtocolVersion  string                  `json:"proto_ver"`
	LEDBrightness    int                     `json:"led_brightness"`
	NightModeEnabled intBool                 `json:"night_mode_en"`
	NumberOfDoors    int                     `json:"door_num"`
	Doors            map[string]doorEnvelope `json:"data"`
}

func decodeDeviceStatus(body []byte) (*DeviceStatus, error) {
	var env deviceStatusEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %w", ErrResponse, err)
	}

	// The firmware gate runs before anything else in the response is
	// interpreted, including the result discriminator.
	if env.FirmwareVersion != "" {
		if v, err := version.NewVersion(env.FirmwareVersion); err == nil && v.LessThan(minFirmware) {
			return nil, fmt.Errorf(
				"%w %s, minimum required version is %s",
				ErrUnsupportedFirmwareVersion, env.FirmwareVersion, minFirmwareVersion,
			)
		}
	}

	if err := env.gate(); err != nil {
		return nil, err
	}

	status := &DeviceStatus{
		DeviceID:         env.DeviceID,
		Product:          env.Product,
		FirmwareVersion:  env.FirmwareVersion,
		ProtocolVersion:  env.ProtocolVersion,
		LEDBrightness:    env.LEDBrightness,
		NightModeEnabled: bool(env.NightModeEnabled),
		NumberOfDoors:    env.NumberOfDoors,
		Doors:            make(map[string]Door, len(env.Doors)),
	}

	// The wire keys of the door mapping are the door IDs; each door is
	// stamped with its own key.
	for doorID, door := range env.Doors {
		status.Doors[doorID] = Door{
			DoorID:    doorID,
			Index:     door.Index,
			Disabled:  bool(door.Disabled),
			LockedOut: bool(door.LockedOut),
			State:     door.State,
		}
	}

	return status, nil
}
