package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Lifetime is a token lifetime read from the environment. Besides Go
// durations ("24h", "90m") it accepts the jsonwebtoken forms: a day or week
// suffix ("7d", "2w") and a bare number of seconds ("3600").
type Lifetime time.Duration

var lifetimeUnits = map[string]time.Duration{
	"d": 24 * time.Hour,
	"w": 7 * 24 * time.Hour,
}

// UnmarshalText implements encoding.TextUnmarshaler for caarlos0/env.
func (l *Lifetime) UnmarshalText(text []byte) error {
	d, err := parseLifetime(string(text))
	if err != nil {
		return err
	}
	*l = Lifetime(d)
	return nil
}

// Duration returns l as a time.Duration.
func (l Lifetime) Duration() time.Duration {
	return time.Duration(l)
}

func parseLifetime(raw string) (time.Duration, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return 0, fmt.Errorf("empty lifetime")
	}

	var d time.Duration
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		d = time.Duration(secs) * time.Second
	} else if unit, ok := lifetimeUnits[s[len(s)-1:]]; ok {
		n, err := strconv.ParseFloat(s[:len(s)-1], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid lifetime %q", raw)
		}
		d = time.Duration(n * float64(unit))
	} else {
		d, err = time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("invalid lifetime %q", raw)
		}
	}

	if d <= 0 {
		return 0, fmt.Errorf("lifetime must be positive, got %q", raw)
	}
	return d, nil
}
