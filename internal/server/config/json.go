package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/velotrans/tms/internal/flagx"
	"github.com/velotrans/tms/internal/timex"
)

// jsonConfig is the DTO for the optional JSON config file. Durations accept
// either "1h" strings or integer nanoseconds via timex.Duration.
type jsonConfig struct {
	EndpointAddr         string         `json:"endpoint_addr"`
	DatabaseDSN          string         `json:"database_dsn"`
	SecretKey            string         `json:"secret_key"`
	Env                  string         `json:"env"`
	AccessTokenValidity  timex.Duration `json:"access_token_validity"`
	RefreshTokenLifetime string         `json:"refresh_token_lifetime"`
	SweepInterval        timex.Duration `json:"sweep_interval"`
}

// parseJSON overlays values from the JSON file named by -c/-config, if any.
// An unreadable or malformed file is a startup failure.
func parseJSON(config *Config) {
	path := flagx.JSONConfigPath()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &jsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.Env != "" {
		config.Env = c.Env
	}
	if c.AccessTokenValidity.Duration != 0 {
		config.AccessTokenValidity = time.Duration(c.AccessTokenValidity.Duration)
	}
	if c.RefreshTokenLifetime != "" {
		config.RefreshTokenLifetime = c.RefreshTokenLifetime
	}
	if c.SweepInterval.Duration != 0 {
		config.SweepInterval = time.Duration(c.SweepInterval.Duration)
	}
}
