package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTTL(t *testing.T) {
	cases := map[string]time.Duration{
		"3d":     72 * time.Hour,
		"0d":     0,
		"90m":    90 * time.Minute,
		" 1h30m": 90 * time.Minute,
	}
	for in, want := range cases {
		got, err := ParseTTL(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "d", "-1d", "1.5d", "soon"} {
		_, err := ParseTTL(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, 30*24*time.Hour, ParseDuration("30d", time.Hour))
	assert.Equal(t, time.Hour, ParseDuration("later", time.Hour))
}
