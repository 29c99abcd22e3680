// Package config handles configuration for the CLI client.
package config

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/velotrans/tms/internal/flagx"
)

// Config holds runtime settings for the TMS CLI.
type Config struct {
	ServerURL   string
	SessionFile string
}

func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	c.SessionFile = filepath.Join(home, ".tmsctl", "session.json")
}

// LoadConfig applies defaults, then environment variables, then flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}

func parseEnv(config *Config) {
	if v := os.Getenv("TMS_SERVER_URL"); v != "" {
		config.ServerURL = v
	}
	if v := os.Getenv("TMS_SESSION_FILE"); v != "" {
		config.SessionFile = v
	}
}

func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-s", "-f"})

	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.StringVar(&config.ServerURL, "s", config.ServerURL, "server base URL")
	fs.StringVar(&config.SessionFile, "f", config.SessionFile, "session file path")
	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
