package format

import (
	"fmt"
	"strings"
	"time"
)

var roMonths = [...]string{"ian.", "feb.", "mar.", "apr.", "mai", "iun.", "iul.", "aug.", "sept.", "oct.", "nov.", "dec."}

// Layouts with an explicit offset are converted into the display location.
var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	time.RubyDate,
	time.RFC1123Z,
	time.RFC1123,
}

// Layouts without an offset are read as wall-clock time in the display location.
var localLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp reads the upstream created_at formats.
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	value = strings.TrimSpace(value)
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.In(loc), nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", value)
}

// Date renders t the way ro-RO short dates read, e.g. "15 ian. 2024, 14:30".
func Date(t time.Time) string {
	return fmt.Sprintf("%d %s %d, %02d:%02d", t.Day(), roMonths[t.Month()-1], t.Year(), t.Hour(), t.Minute())
}

// Timestamp parses an upstream timestamp and renders it in loc. Unparseable
// values are returned unchanged.
func Timestamp(value string, loc *time.Location) string {
	t, err := ParseTimestamp(value, loc)
	if err != nil {
		return value
	}
	return Date(t)
}
