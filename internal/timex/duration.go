// Package timex holds duration helpers shared by server and client config:
// a JSON-friendly Duration and the lifetime parser for token validity values.
package timex

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"
)

// Duration wraps time.Duration so JSON config files can specify either a
// string such as "15m" or an integer number of nanoseconds.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
	default:
		return errors.New("invalid duration")
	}
	return nil
}

// DefaultLifetime is the fallback refresh-token validity applied when a
// configured lifetime string cannot be parsed.
const DefaultLifetime = 7 * 24 * time.Hour

// ParseLifetime converts a compact lifetime string ("7d", "12h", "30m",
// "45s") into a time.Duration. Malformed values fail soft to DefaultLifetime
// rather than refusing to start; sessions degrade to a week instead.
func ParseLifetime(s string) time.Duration {
	if len(s) < 2 {
		return DefaultLifetime
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n <= 0 {
		return DefaultLifetime
	}
	switch s[len(s)-1] {
	case 'd':
		return time.Duration(n) * 24 * time.Hour
	case 'h':
		return time.Duration(n) * time.Hour
	case 'm':
		return time.Duration(n) * time.Minute
	case 's':
		return time.Duration(n) * time.Second
	default:
		return DefaultLifetime
	}
}
