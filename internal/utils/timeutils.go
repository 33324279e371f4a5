package utils

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and form format of filter dates.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD filter date.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date value")
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date: %w", err)
	}
	return t, nil
}

// DefaultWindow returns the [now-days, now] range formatted as filter dates.
// Dates are taken in UTC, matching what a browser's toISOString produces.
func DefaultWindow(now time.Time, days int) (start, end string) {
	now = now.UTC()
	return now.AddDate(0, 0, -days).Format(DateLayout), now.Format(DateLayout)
}
