package timespec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	now := time.Date(2025, 10, 29, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		spec string
		want time.Time
	}{
		{"hours", "1h", now.Add(-time.Hour)},
		{"compound duration", "1h30m", now.Add(-90 * time.Minute)},
		{"days", "7d", now.Add(-7 * 24 * time.Hour)},
		{"days and hours", "2d12h", now.Add(-60 * time.Hour)},
		{"rfc3339", "2025-10-01T08:00:00Z", time.Date(2025, 10, 1, 8, 0, 0, 0, time.UTC)},
		{"date", "2025-10-01", time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.spec, now)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
		})
	}

	for _, bad := range []string{"", "yesterday", "xd", "-1d"} {
		_, err := Parse(bad, now)
		assert.Error(t, err, bad)
	}
}

func TestParseRange(t *testing.T) {
	now := time.Date(2025, 10, 29, 12, 0, 0, 0, time.UTC)

	r, err := ParseRange("", "", now)
	require.NoError(t, err)
	assert.True(t, r.IsZero())
	assert.True(t, r.Contains(now))

	r, err = ParseRange("7d", "1d", now)
	require.NoError(t, err)
	assert.True(t, r.Contains(now.Add(-3*24*time.Hour)))
	assert.False(t, r.Contains(now))
	assert.False(t, r.Contains(now.Add(-8*24*time.Hour)))

	_, err = ParseRange("1d", "7d", now)
	assert.ErrorContains(t, err, "--since must be before --until")

	_, err = ParseRange("bogus", "", now)
	assert.ErrorContains(t, err, "invalid --since")
}
