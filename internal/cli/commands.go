package cli

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"gotailwind/internal/tailwind"
)

// Status fetches the device status and renders the device and door tables.
func (a *App) Status(ctx context.Context) error {
	client, err := a.newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	status, err := client.Status(ctx)
	if err != nil {
		return err
	}

	device := newTable("Property", "Value").Rows(
		[]string{"Product", status.Product},
		[]string{"Device ID", status.DeviceID},
		[]string{"MAC address", status.MACAddress()},
		[]string{"Protocol version", status.ProtocolVersion},
		[]string{"Firmware version", status.FirmwareVersion},
		[]string{"Number of doors", strconv.Itoa(status.NumberOfDoors)},
		[]string{"Night mode enabled", boolWord(status.NightModeEnabled)},
		[]string{"LED brightness", fmt.Sprintf("%d%%", status.LEDBrightness)},
	)

	fmt.Fprintln(a.out, titleStyle.Render("Tailwind device status"))
	fmt.Fprintln(a.out, device)

	doors := newTable("Door", "State", "Locked out", "Disabled")
	for _, door := range sortedDoors(status) {
		state := successStyle.Render("Closed")
		if door.State == tailwind.DoorStateOpen {
			state = warnStyle.Render("Open")
		}
		doors.Row(strconv.Itoa(door.Index+1), state, yesNo(door.LockedOut), yesNo(door.Disabled))
	}

	fmt.Fprintln(a.out, titleStyle.Render("Garage doors"))
	fmt.Fprintln(a.out, doors)

	return nil
}

// Identify flashes the device LED so it can be spotted in the garage.
func (a *App) Identify(ctx context.Context) error {
	client, err := a.newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	fmt.Fprintln(a.out, dimStyle.Render("Identifying..."))
	if err := client.Identify(ctx); err != nil {
		return err
	}

	fmt.Fprintln(a.out, successStyle.Render("✅ Success!"))
	return nil
}

// SetLED changes the brightness of the device status LED.
func (a *App) SetLED(ctx context.Context, brightness int) error {
	if brightness < 0 || brightness > 100 {
		return fmt.Errorf("brightness must be a number between 0 and 100, got %d", brightness)
	}

	client, err := a.newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	fmt.Fprintln(a.out, dimStyle.Render(fmt.Sprintf("Setting status LED brightness to %d%%...", brightness)))
	if err := client.SetStatusLED(ctx, brightness); err != nil {
		return err
	}

	fmt.Fprintln(a.out, successStyle.Render(fmt.Sprintf("✅ Success! Status LED brightness set to %d%%", brightness)))
	return nil
}

// OpenDoor opens a garage door. The door number is 1-based at this
// boundary.
func (a *App) OpenDoor(ctx context.Context, doorNumber int) error {
	return a.operateDoor(ctx, doorNumber, tailwind.DoorOperationOpen)
}

// CloseDoor closes a garage door. The door number is 1-based at this
// boundary.
func (a *App) CloseDoor(ctx context.Context, doorNumber int) error {
	return a.operateDoor(ctx, doorNumber, tailwind.DoorOperationClose)
}

func (a *App) operateDoor(ctx context.Context, doorNumber int, operation tailwind.DoorOperation) error {
	if doorNumber < 1 || doorNumber > 3 {
		return fmt.Errorf("door must be a number between 1 and 3, got %d", doorNumber)
	}

	verb, progressive, past := "open", "Opening", "opened"
	target := tailwind.DoorStateOpen
	if operation == tailwind.DoorOperationClose {
		verb, progressive, past = "close", "Closing", "closed"
		target = tailwind.DoorStateClosed
	}

	client, err := a.newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	status, err := client.Status(ctx)
	if err != nil {
		return err
	}
	if status.NumberOfDoors < doorNumber {
		return fmt.Errorf("door %d does not exist on this Tailwind device", doorNumber)
	}

	selector := tailwind.DoorByIndex(doorNumber - 1)
	door, err := client.DoorStatus(ctx, selector)
	if err != nil {
		return err
	}
	if door.State == target {
		return fmt.Errorf("🤔 door %d is already %s", doorNumber, stateWord(target))
	}

	fmt.Fprintln(a.out, dimStyle.Render(fmt.Sprintf("%s door %d...", progressive, doorNumber)))

	door, err = client.Operate(ctx, selector, operation)
	if err != nil {
		return err
	}
	if door.State != target {
		return fmt.Errorf("😭 door %d did not %s", doorNumber, verb)
	}

	fmt.Fprintln(a.out, successStyle.Render(fmt.Sprintf("✅ Success! Door %d has been %s!", doorNumber, past)))
	return nil
}

func sortedDoors(status *tailwind.DeviceStatus) []tailwind.Door {
	doors := make([]tailwind.Door, 0, len(status.Doors))
	for _, door := range status.Doors {
		doors = append(doors, door)
	}
	sort.Slice(doors, func(i, j int) bool { return doors[i].Index < doors[j].Index })
	return doors
}

func stateWord(state tailwind.DoorState) string {
	if state == tailwind.DoorStateOpen {
		return "open"
	}
	return "closed"
}

func boolWord(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
