package helpers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ParseTTL parses Go durations plus a whole-day suffix ("3d"), the form session lifetimes are usually written in.
func ParseTTL(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid day count %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

// ParseDuration is ParseTTL with a fallback for values that fail to parse.
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	duration, err := ParseTTL(durationStr)
	if err != nil {
		// the global logger; this runs before the configured one exists
		log.Warn().Err(err).Str("durationStr", durationStr).Dur("defaultDuration", defaultDuration).Msg("Failed to parse duration string, using default")
		return defaultDuration
	}
	return duration
}
