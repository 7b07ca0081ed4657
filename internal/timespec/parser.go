// Package timespec parses the --since/--until flags of the orders command.
package timespec

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Parse parses a time specification relative to now.
// Supports three formats:
//   - Go duration format, plus a day suffix: "1h", "90m", "7d", "2d12h"
//   - RFC3339 timestamps: "2025-10-29T13:00:00Z"
//   - calendar dates in local time: "2025-10-29"
//
// Durations count back from now: "7d" means seven days ago.
func Parse(spec string, now time.Time) (time.Time, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return time.Time{}, fmt.Errorf("empty time specification")
	}

	if t, err := time.Parse(time.RFC3339, spec); err == nil {
		return t, nil
	}

	if t, err := time.ParseInLocation("2006-01-02", spec, now.Location()); err == nil {
		return t, nil
	}

	if d, err := parseDuration(spec); err == nil {
		return now.Add(-d), nil
	}

	return time.Time{}, fmt.Errorf("invalid time specification: %s (use a duration like '7d' or '1h30m', a date like '2025-10-29', or RFC3339)", spec)
}

// parseDuration extends time.ParseDuration with a leading "<n>d" day count.
func parseDuration(spec string) (time.Duration, error) {
	days := time.Duration(0)
	if i := strings.IndexByte(spec, 'd'); i > 0 {
		n, err := strconv.Atoi(spec[:i])
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid day count in %q", spec)
		}
		days = time.Duration(n) * 24 * time.Hour
		spec = spec[i+1:]
		if spec == "" {
			return days, nil
		}
	}

	d, err := time.ParseDuration(spec)
	if err != nil {
		return 0, err
	}
	return days + d, nil
}

// Range is a half-open time window. Zero bounds are unbounded.
type Range struct {
	Since time.Time
	Until time.Time
}

// Contains reports whether t lies in [Since, Until).
func (r Range) Contains(t time.Time) bool {
	if !r.Since.IsZero() && t.Before(r.Since) {
		return false
	}
	if !r.Until.IsZero() && !t.Before(r.Until) {
		return false
	}
	return true
}

// IsZero returns true if neither bound is set.
func (r Range) IsZero() bool {
	return r.Since.IsZero() && r.Until.IsZero()
}

// ParseRange parses both --since and --until flags into a Range.
// Validates that since is before until if both are specified.
func ParseRange(since, until string, now time.Time) (Range, error) {
	var r Range
	var err error

	if since != "" {
		r.Since, err = Parse(since, now)
		if err != nil {
			return Range{}, fmt.Errorf("invalid --since: %w", err)
		}
	}

	if until != "" {
		r.Until, err = Parse(until, now)
		if err != nil {
			return Range{}, fmt.Errorf("invalid --until: %w", err)
		}
	}

	if !r.Since.IsZero() && !r.Until.IsZero() && !r.Since.Before(r.Until) {
		return Range{}, fmt.Errorf("--since must be before --until")
	}

	return r, nil
}
