package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Device DeviceConfig `yaml:"device"`
	Log    LogConfig    `yaml:"log"`
}

type DeviceConfig struct {
	Host           string `yaml:"host"`
	Token          string `yaml:"token"`
	Product        string `yaml:"product"`
	RequestTimeout string `yaml:"request_timeout"`
	PollInterval   string `yaml:"poll_interval"`
	PollCycles     int    `yaml:"poll_cycles"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a yaml config file. Environment variable references in the
// file are expanded before parsing. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		expanded := os.ExpandEnv(string(data))

		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Device.Host == "" {
		c.Device.Host = os.Getenv("TAILWIND_HOST")
	}
	if c.Device.Token == "" {
		c.Device.Token = os.Getenv("TAILWIND_TOKEN")
	}
	if c.Device.Product == "" {
		c.Device.Product = "iQ3"
	}
	if c.Device.RequestTimeout == "" {
		c.Device.RequestTimeout = "8s"
	}
	if c.Device.PollInterval == "" {
		c.Device.PollInterval = "500ms"
	}
	if c.Device.PollCycles == 0 {
		c.Device.PollCycles = 120
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}
