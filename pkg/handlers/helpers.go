package handlers

import (
	"strings"
	"time"
)

// findIndex returns the index of the first header matching any of the
// candidates, case-insensitively, or -1.
func findIndex(header []string, candidates ...string) int {
	for _, candidate := range candidates {
		for i, item := range header {
			if strings.EqualFold(strings.TrimSpace(item), candidate) {
				return i
			}
		}
	}
	return -1
}

// backdate shifts base into the past by offset periods. The period is
// the spacing between uploaded snapshot files: "hour", "day" or
// "month".
func backdate(base time.Time, period string, offset int) time.Time {
	switch period {
	case "hour":
		return base.Add(-time.Duration(offset) * time.Hour)
	case "month":
		return base.AddDate(0, -offset, 0)
	default:
		return base.AddDate(0, 0, -offset)
	}
}
