package gtfs

import (
	"fmt"
	"regexp"
)

var clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)

// CanonicalTime normalises a GTFS wall-clock value to HH:MM:SS. Hours over 24
// are valid (service-day rollover) and pass straight through with padding.
// Anything that doesn't look like a clock value is returned unchanged rather
// than being treated as an error, and empty stays empty.
func CanonicalTime(value string) string {
	if value == "" {
		return ""
	}

	matches := clockPattern.FindStringSubmatch(value)
	if matches == nil {
		return value
	}

	hour := matches[1]
	if len(hour) == 1 {
		hour = "0" + hour
	}

	second := matches[3]
	if second == "" {
		second = "00"
	}

	return fmt.Sprintf("%s:%s:%s", hour, matches[2], second)
}
