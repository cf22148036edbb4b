package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"gotailwind/config"
	"gotailwind/internal/tailwind"
)

// App wires the CLI commands to a Tailwind device client.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	out    io.Writer
}

func NewApp(cfg *config.Config, logger *slog.Logger, out io.Writer) *App {
	return &App{cfg: cfg, logger: logger, out: out}
}

// newClient builds a device client from the resolved configuration.
func (a *App) newClient() (*tailwind.Client, error) {
	if a.cfg.Device.Host == "" {
		return nil, errors.New("no device host configured, pass -host, set TAILWIND_HOST or use a config file")
	}
	if a.cfg.Device.Token == "" {
		return nil, errors.New("no access token configured, pass -token, set TAILWIND_TOKEN or use a config file")
	}

	return tailwind.NewClient(tailwind.Config{
		Host:         a.cfg.Device.Host,
		Token:        a.cfg.Device.Token,
		Product:      a.cfg.Device.Product,
		Timeout:      a.duration(a.cfg.Device.RequestTimeout, 8*time.Second),
		PollInterval: a.duration(a.cfg.Device.PollInterval, 500*time.Millisecond),
		PollCycles:   a.cfg.Device.PollCycles,
		Logger:       a.logger,
	}), nil
}

func (a *App) duration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		a.logger.Warn("invalid duration in config, using default", "value", value, "default", fallback)
		return fallback
	}
	return d
}

// Exit codes per error kind, so scripts can tell failures apart.
const (
	exitOK                  = 0
	exitFailure             = 1
	exitAuthentication      = 2
	exitConnection          = 3
	exitUnsupportedFirmware = 4
	exitDoorLockedOut       = 5
	exitDoorDisabled        = 6
)

// ExitCode maps a command error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, tailwind.ErrAuthentication):
		return exitAuthentication
	case errors.Is(err, tailwind.ErrUnsupportedFirmwareVersion):
		return exitUnsupportedFirmware
	case errors.Is(err, tailwind.ErrConnection):
		return exitConnection
	case errors.Is(err, tailwind.ErrDoorLockedOut):
		return exitDoorLockedOut
	case errors.Is(err, tailwind.ErrDoorDisabled):
		return exitDoorDisabled
	default:
		return exitFailure
	}
}

const authenticationHelp = `The provided Tailwind device local access token is invalid.

To find your Tailwind device's access token, surf to the following URL
in your browser:

https://web.gotailwind.com/client/integration/local-control-key

You will be prompted to log in to your Tailwind account. After logging in,
you will be presented with a 6 digit code. This code is your Tailwind
device's local access token.`

const connectionHelp = `Could not connect to the specified Tailwind device. Please make sure that
the device is powered on, connected to the network and that you have
specified the correct IP address or hostname.

If you are not sure what the IP address or hostname of your Tailwind device
is, you can use the scan command to find it:

tailwind scan`

const firmwareHelp = `The specified Tailwind device is running an unsupported firmware version.

The tooling currently only supports firmware versions 10.10 and higher.`

// RenderError formats a command error for the terminal.
func RenderError(err error) string {
	switch {
	case errors.Is(err, tailwind.ErrAuthentication):
		return errorPanel("Authentication error", authenticationHelp)
	case errors.Is(err, tailwind.ErrUnsupportedFirmwareVersion):
		return errorPanel("Unsupported firmware version", firmwareHelp)
	case errors.Is(err, tailwind.ErrConnection):
		return errorPanel("Connection error", connectionHelp)
	case errors.Is(err, tailwind.ErrDoorLockedOut):
		return errorPanel("Door operation error", "🔒 Door is locked out and cannot be operated")
	case errors.Is(err, tailwind.ErrDoorDisabled):
		return errorPanel("Door operation error", "🛑 Door is disabled and can not be operated")
	default:
		return errorStyle.Render(fmt.Sprintf("Error: %s", err))
	}
}
