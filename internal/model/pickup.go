package model

import (
	"strconv"
	"strings"
	"time"
)

// absoluteLayouts are tried in order. Layouts without a zone are UTC.
var absoluteLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParsePickupTime resolves a pickup window bound to an instant.
//
// Absolute timestamps are canonical. A bare "HH:MM" clock time is placed on
// the UTC calendar day of day (the donation's creation time), so claim
// validation, listings and the expiry sweep all read the same instant.
// ok is false for empty or unparseable input.
func ParsePickupTime(raw string, day time.Time) (t time.Time, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}

	hour, minute, ok := parseClock(raw)
	if !ok {
		return time.Time{}, false
	}
	d := day.UTC()
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, time.UTC), true
}

// parseClock parses "HH:MM" with hour in [0,23] and minute in [0,59].
func parseClock(s string) (hour, minute int, ok bool) {
	hs, ms, found := strings.Cut(s, ":")
	if !found {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(hs)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, false
	}
	minute, err = strconv.Atoi(ms)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}
