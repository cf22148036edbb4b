package cli_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"gotailwind/config"
	"gotailwind/internal/cli"
	"gotailwind/internal/tailwind"
)

const deviceStatusClosed = `{
	"result": "OK",
	"product": "iQ3",
	"dev_id": "_3c_e9_e_6d_21_84",
	"proto_ver": "0.1",
	"fw_ver": "10.10",
	"led_brightness": 100,
	"night_mode_en": 0,
	"door_num": 1,
	"data": {
		"door1": {"index": 0, "status": "close", "lockup": 0, "disabled": 0}
	}
}`

const deviceStatusOpen = `{
	"result": "OK",
	"product": "iQ3",
	"dev_id": "_3c_e9_e_6d_21_84",
	"proto_ver": "0.1",
	"fw_ver": "10.10",
	"led_brightness": 100,
	"night_mode_en": 0,
	"door_num": 1,
	"data": {
		"door1": {"index": 0, "status": "open", "lockup": 0, "disabled": 0}
	}
}`

const okResponse = `{"result": "OK"}`

func newTestApp(t *testing.T, responses ...string) (*cli.App, *bytes.Buffer) {
	t.Helper()

	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		resp := responses[0]
		if len(responses) > 1 {
			responses = responses[1:]
		}
		w.Write([]byte(resp))
	}))
	t.Cleanup(server.Close)

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	cfg.Device.Host = strings.TrimPrefix(server.URL, "http://")
	cfg.Device.Token = "123456"
	cfg.Device.PollInterval = "1ms"

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	out := &bytes.Buffer{}
	return cli.NewApp(cfg, logger, out), out
}

func TestApp_Status(t *testing.T) {
	app, out := newTestApp(t, deviceStatusClosed)

	if err := app.Status(context.Background()); err != nil {
		t.Fatalf("Status error: %v", err)
	}

	for _, want := range []string{"iQ3", "3c:e9:0e:6d:21:84", "Closed"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("status output missing %q:\n%s", want, out.String())
		}
	}
}

func TestApp_OpenDoor(t *testing.T) {
	app, out := newTestApp(t,
		deviceStatusClosed, // status
		deviceStatusClosed, // door lookup
		deviceStatusClosed, // operate's own lookup
		okResponse,         // door_op
		deviceStatusOpen,   // poll
	)

	if err := app.OpenDoor(context.Background(), 1); err != nil {
		t.Fatalf("OpenDoor error: %v", err)
	}
	if !strings.Contains(out.String(), "Door 1 has been opened") {
		t.Errorf("output missing success message:\n%s", out.String())
	}
}

func TestApp_OpenDoor_AlreadyOpen(t *testing.T) {
	app, _ := newTestApp(t, deviceStatusOpen)

	err := app.OpenDoor(context.Background(), 1)
	if err == nil || !strings.Contains(err.Error(), "already open") {
		t.Fatalf("error: got %v, want already-open failure", err)
	}
}

func TestApp_OpenDoor_DoorDoesNotExist(t *testing.T) {
	app, _ := newTestApp(t, deviceStatusClosed)

	err := app.OpenDoor(context.Background(), 3)
	if err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Fatalf("error: got %v, want does-not-exist failure", err)
	}
}

func TestApp_OpenDoor_InvalidNumber(t *testing.T) {
	app, _ := newTestApp(t, deviceStatusClosed)

	for _, door := range []int{0, 4} {
		if err := app.OpenDoor(context.Background(), door); err == nil {
			t.Errorf("door %d: expected a validation error", door)
		}
	}
}

func TestApp_SetLED_InvalidBrightness(t *testing.T) {
	app, _ := newTestApp(t, okResponse)

	for _, brightness := range []int{-1, 101} {
		if err := app.SetLED(context.Background(), brightness); err == nil {
			t.Errorf("brightness %d: expected a validation error", brightness)
		}
	}
}

func TestApp_MissingHost(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	cfg.Device.Host = ""
	cfg.Device.Token = ""

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app := cli.NewApp(cfg, logger, io.Discard)

	if err := app.Identify(context.Background()); err == nil {
		t.Error("expected an error when no host is configured")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"no error", nil, 0},
		{"generic", errors.New("boom"), 1},
		{"authentication", tailwind.ErrAuthentication, 2},
		{"connection", tailwind.ErrConnection, 3},
		{"timeout", tailwind.ErrConnectionTimeout, 3},
		{"firmware", tailwind.ErrUnsupportedFirmwareVersion, 4},
		{"locked out", tailwind.ErrDoorLockedOut, 5},
		{"disabled", tailwind.ErrDoorDisabled, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cli.ExitCode(tt.err); got != tt.want {
				t.Errorf("exit code: got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRenderError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{tailwind.ErrAuthentication, "Authentication error"},
		{tailwind.ErrConnection, "Connection error"},
		{tailwind.ErrUnsupportedFirmwareVersion, "Unsupported firmware version"},
		{tailwind.ErrDoorLockedOut, "locked out"},
		{tailwind.ErrDoorDisabled, "disabled"},
		{errors.New("boom"), "boom"},
	}

	for _, tt := range tests {
		if got := cli.RenderError(tt.err); !strings.Contains(got, tt.want) {
			t.Errorf("RenderError(%v) missing %q:\n%s", tt.err, tt.want, got)
		}
	}
}
