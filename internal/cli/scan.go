package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"gotailwind/internal/discovery"
)

// Scan browses the local network for Tailwind devices and renders them in a
// live-updating table until the user quits.
func (a *App) Scan(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	found := make(chan discovery.Device)
	scanErr := make(chan error, 1)

	scanner := discovery.NewScanner(a.logger)
	go func() {
		scanErr <- scanner.Scan(ctx, found)
	}()

	program := tea.NewProgram(newScanModel(found), tea.WithContext(ctx), tea.WithOutput(a.out))
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		cancel()
		<-scanErr
		return fmt.Errorf("running scan view: %w", err)
	}

	cancel()
	return <-scanErr
}

type deviceFoundMsg discovery.Device

type scanStoppedMsg struct{}

type scanTickMsg time.Time

type scanModel struct {
	found   <-chan discovery.Device
	devices []discovery.Device
	frame   int
	done    bool
}

func newScanModel(found <-chan discovery.Device) scanModel {
	return scanModel{found: found}
}

func (m scanModel) Init() tea.Cmd {
	return tea.Batch(waitForDevice(m.found), scanTick())
}

// waitForDevice blocks on the discovery channel and reports the next device
// as a message.
func waitForDevice(found <-chan discovery.Device) tea.Cmd {
	return func() tea.Msg {
		device, ok := <-found
		if !ok {
			return scanStoppedMsg{}
		}
		return deviceFoundMsg(device)
	}
}

func scanTick() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return scanTickMsg(t)
	})
}

func (m scanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case deviceFoundMsg:
		m.devices = append(m.devices, discovery.Device(msg))
		return m, waitForDevice(m.found)

	case scanStoppedMsg:
		m.done = true
		return m, tea.Quit

	case scanTickMsg:
		m.frame++
		return m, scanTick()
	}

	return m, nil
}

func (m scanModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder

	dots := strings.Repeat(".", m.frame%4)
	b.WriteString(titleStyle.Render("Scanning for Tailwind devices" + dots))
	b.WriteString("\n")

	if len(m.devices) == 0 {
		b.WriteString(dimStyle.Render("No devices found yet"))
	} else {
		devices := newTable("Addresses", "Product", "Device ID", "Hardware version", "Software version")
		for _, device := range m.devices {
			addresses := device.Host
			if len(device.Addresses) > 0 {
				addresses += "\n" + strings.Join(device.Addresses, ", ")
			}
			devices.Row(addresses, device.Product, device.DeviceID, device.HardwareVersion, device.SoftwareVersion)
		}
		b.WriteString(devices.String())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press q to stop scanning"))
	b.WriteString("\n")

	return b.String()
}
