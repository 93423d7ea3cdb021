package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var durationUnits = map[string]time.Duration{
	"d": 24 * time.Hour,
	"w": 7 * 24 * time.Hour,
}

// ParseDuration parses a Go duration, plus whole days ("30d") and weeks
// ("2w"). An empty string or "0" is zero.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}

	for suffix, unit := range durationUnits {
		n, found := strings.CutSuffix(s, suffix)
		if !found {
			continue
		}
		count, err := strconv.Atoi(n)
		if err != nil || count < 0 {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		return time.Duration(count) * unit, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration: %s", s)
	}
	return d, nil
}
