package config

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var periodPattern = regexp.MustCompile(`^(\d+)([smh]?)$`)

// ParsePeriod reads a task period: a count followed by s, m or h. A bare
// count is in seconds.
func ParsePeriod(s string) (time.Duration, error) {
	m := periodPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid period %q: want <n>[s|m|h]", s)
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid period %q: %w", s, err)
	}

	unit := time.Second
	switch m[2] {
	case "h":
		unit = time.Hour
	case "m":
		unit = time.Minute
	}
	return time.Duration(n) * unit, nil
}

// Interval returns how long the task waits between runs.
func (t Task) Interval() (time.Duration, error) {
	return ParsePeriod(t.Period)
}
