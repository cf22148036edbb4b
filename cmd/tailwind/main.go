package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"gotailwind/config"
	"gotailwind/internal/cli"
)

const usage = `Tailwind CLI - control Tailwind garage door openers

Usage:
  tailwind <command> [flags]

Commands:
  status     Get the status of a Tailwind device
  identify   Flash the Tailwind LED to identify the device
  open       Open a garage door
  close      Close a garage door
  led        Change the brightness of the status LED
  scan       Scan for Tailwind devices on the network

Flags:
  -host       Tailwind device IP address or hostname (or TAILWIND_HOST)
  -token      Tailwind device access token (or TAILWIND_TOKEN)
  -config     Path to a yaml config file
  -door       Door number, 1-3 (open and close, default 1)
  -brightness Status LED brightness in % (led, default 100)
`

func main() {
	// A .env file next to the binary is a convenient place for the host
	// and token.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	command := os.Args[1]

	fs := flag.NewFlagSet(command, flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	host := fs.String("host", "", "Tailwind device IP address or hostname")
	token := fs.String("token", "", "Tailwind device access token")
	door := fs.Int("door", 1, "door number (1-3)")
	brightness := fs.Int("brightness", 100, "status LED brightness in %")
	if err := fs.Parse(os.Args[2:]); err != nil {
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}
	if *host != "" {
		cfg.Device.Host = *host
	}
	if *token != "" {
		cfg.Device.Token = *token
	}

	logger := setupLogger(cfg.Log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	app := cli.NewApp(cfg, logger, os.Stdout)

	var cmdErr error
	switch command {
	case "status":
		cmdErr = app.Status(ctx)
	case "identify":
		cmdErr = app.Identify(ctx)
	case "open":
		cmdErr = app.OpenDoor(ctx, *door)
	case "close":
		cmdErr = app.CloseDoor(ctx, *door)
	case "led":
		cmdErr = app.SetLED(ctx, *brightness)
	case "scan":
		cmdErr = app.Scan(ctx)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", command, usage)
		os.Exit(2)
	}

	if cmdErr != nil {
		fmt.Fprintln(os.Stderr, cli.RenderError(cmdErr))
		os.Exit(cli.ExitCode(cmdErr))
	}
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
