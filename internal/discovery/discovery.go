package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/grandcat/zeroconf"
)

const (
	serviceType   = "_http._tcp"
	serviceDomain = "local."

	// Tailwind devices announce themselves with a hostname like
	// "tailwind-3ce90e6d2184.local.".
	hostPrefix = "tailwind-"
)

// Device is a Tailwind device found on the local network.
type Device struct {
	Host            string
	Addresses       []string
	Product         string
	DeviceID        string
	HardwareVersion string
	SoftwareVersion string
}

// Scanner browses mDNS for Tailwind devices.
type Scanner struct {
	logger *slog.Logger
}

func NewScanner(logger *slog.Logger) *Scanner {
	return &Scanner{logger: logger}
}

// Scan browses the local network until ctx is done, sending every Tailwind
// device found on the found channel. The channel is closed when the scan
// ends.
func (s *Scanner) Scan(ctx context.Context, found chan<- Device) error {
	defer close(found)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return fmt.Errorf("creating mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	if err := resolver.Browse(ctx, serviceType, serviceDomain, entries); err != nil {
		return fmt.Errorf("browsing %s: %w", serviceType, err)
	}
	for entry := range entries {
		device, ok := deviceFromEntry(entry)
		if !ok {
			s.logger.Debug("ignoring service", "host", entry.HostName)
			continue
		}
		s.logger.Debug("found Tailwind device", "host", device.Host, "device_id", device.DeviceID)

		select {
		case found <- device:
		case <-ctx.Done():
		}
	}
	return nil
}

// deviceFromEntry converts an mDNS service entry into a Device. Services
// whose hostname does not carry the Tailwind prefix are not Tailwind
// devices.
func deviceFromEntry(entry *zeroconf.ServiceEntry) (Device, bool) {
	if !strings.HasPrefix(entry.HostName, hostPrefix) {
		return Device{}, false
	}

	var addresses []string
	for _, ip := range entry.AddrIPv4 {
		addresses = append(addresses, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addresses = append(addresses, ip.String())
	}

	props := parseTXT(entry.Text)

	return Device{
		Host:            strings.TrimSuffix(entry.HostName, "."),
		Addresses:       addresses,
		Product:         props["product"],
		DeviceID:        props["device_id"],
		HardwareVersion: props["HW ver"],
		SoftwareVersion: props["SW ver"],
	}, true
}

// parseTXT splits mDNS TXT records of the form "key=value" into a map.
// Records without a value are kept with an empty one.
func parseTXT(records []string) map[string]string {
	props := make(map[string]string, len(records))
	for _, record := range records {
		key, value, _ := strings.Cut(record, "=")
		if key == "" {
			continue
		}
		props[key] = value
	}
	return props
}
