package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	cases := []struct {
		spec string
		want time.Duration
		ok   bool
	}{
		{"1m", time.Minute, true},
		{"30m", 30 * time.Minute, true},
		{"1h", time.Hour, true},
		{"12h", 12 * time.Hour, true},
		{"2d", 48 * time.Hour, true},
		{"1w", 7 * 24 * time.Hour, true},
		{"", 0, false},
		{"h", 0, false},
		{"10", 0, false},
		{"10s", 0, false},
		{"1H", 0, false},
		{"-5m", 0, false},
		{"1.5h", 0, false},
		{"1h30m", 0, false},
		{"0m", 0, false},
	}

	for _, tc := range cases {
		got, ok := ParseDuration(tc.spec)
		assert.Equal(t, tc.ok, ok, "spec %q", tc.spec)
		assert.Equal(t, tc.want, got, "spec %q", tc.spec)
	}
}

func TestParseDurationMillisecondTable(t *testing.T) {
	// Unit multipliers pinned against the wire values the bot has always used.
	require.Equal(t, int64(60000), mustParse(t, "1m").Milliseconds())
	require.Equal(t, int64(3600000), mustParse(t, "1h").Milliseconds())
	require.Equal(t, int64(86400000), mustParse(t, "1d").Milliseconds())
	require.Equal(t, int64(604800000), mustParse(t, "1w").Milliseconds())
}

func mustParse(t *testing.T, spec string) time.Duration {
	t.Helper()
	d, ok := ParseDuration(spec)
	require.True(t, ok)
	return d
}

func TestClampWinners(t *testing.T) {
	assert.Equal(t, 1, ClampWinners(0))
	assert.Equal(t, 1, ClampWinners(-3))
	assert.Equal(t, 1, ClampWinners(1))
	assert.Equal(t, 5, ClampWinners(5))
	assert.Equal(t, 20, ClampWinners(20))
	assert.Equal(t, 20, ClampWinners(100))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "1 minute", FormatDuration(time.Minute))
	assert.Equal(t, "30 minutes", FormatDuration(30*time.Minute))
	assert.Equal(t, "1 hour", FormatDuration(time.Hour))
	assert.Equal(t, "2 hours", FormatDuration(2*time.Hour+10*time.Minute))
	assert.Equal(t, "1 day", FormatDuration(24*time.Hour))
	assert.Equal(t, "7 days", FormatDuration(7*24*time.Hour))
}

func TestHasEntrant(t *testing.T) {
	g := &Giveaway{Entrants: []string{"1", "2"}}
	assert.True(t, g.HasEntrant("1"))
	assert.False(t, g.HasEntrant("3"))
}
