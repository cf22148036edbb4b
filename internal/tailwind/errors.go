package tailwind

import (
	"errors"
	"fmt"
)

// Error taxonomy for the Tailwind local control protocol. The sentinels are
// composed with %w so that errors.Is walks the same hierarchy the device
// protocol implies: a timeout is a connection error, an authentication
// failure is a response error, and every door precondition failure is a
// door operation error.
var (
	// ErrConnection covers transport-level failures: dial, DNS, broken
	// HTTP exchanges and non-2xx statuses.
	ErrConnection = errors.New("error communicating with the Tailwind device")

	// ErrConnectionTimeout is raised when a request exceeds the configured
	// request timeout.
	ErrConnectionTimeout = fmt.Errorf("timeout: %w", ErrConnection)

	// ErrResponse is returned when the device answered with a non-OK
	// result.
	ErrResponse = errors.New("unexpected response from the Tailwind device")

	// ErrAuthentication means the device rejected the local access token.
	ErrAuthentication = fmt.Errorf("invalid local access token: %w", ErrResponse)

	// ErrUnsupportedFirmwareVersion means the device runs a firmware below
	// the minimum this client speaks.
	ErrUnsupportedFirmwareVersion = errors.New("unsupported firmware version")

	// ErrDoorUnknown means no door matched the requested selector.
	ErrDoorUnknown = errors.New("door not found")

	// ErrDoorOperation is the base kind for door operation precondition
	// failures.
	ErrDoorOperation = errors.New("door operation failed")

	// ErrDoorLockedOut means the door is locked out and cannot be operated.
	ErrDoorLockedOut = fmt.Errorf("door is locked out: %w", ErrDoorOperation)

	// ErrDoorDisabled means the door is disabled and cannot be operated.
	ErrDoorDisabled = fmt.Errorf("door is disabled: %w", ErrDoorOperation)

	// ErrDoorAlreadyInState means the door is already in the state the
	// operation would move it to.
	ErrDoorAlreadyInState = fmt.Errorf("door is already in the requested state: %w", ErrDoorOperation)
)
