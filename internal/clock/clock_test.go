package clock

import (
	"testing"
	"time"
)

func TestFixed(t *testing.T) {
	start := time.Date(2026, 3, 10, 23, 30, 0, 0, time.FixedZone("CET", 3600))
	c := NewFixed(start)

	if got := c.Now(); !got.Equal(start) || got.Location() != time.UTC {
		t.Errorf("expected %v in UTC, got %v", start, got)
	}

	c.Advance(time.Hour)
	if got := c.Now(); !got.Equal(start.Add(time.Hour)) {
		t.Errorf("expected advanced clock, got %v", got)
	}

	later := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	c.Set(later)
	if got := c.Now(); !got.Equal(later) {
		t.Errorf("expected %v, got %v", later, got)
	}
}

func TestRealIsUTC(t *testing.T) {
	if loc := (Real{}).Now().Location(); loc != time.UTC {
		t.Errorf("expected UTC, got %v", loc)
	}
}
