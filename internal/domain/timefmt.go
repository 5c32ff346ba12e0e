package domain

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout renders date and time to the second.
const TimestampLayout = "2006-01-02 15:04:05"

// TimeFormat renders every timestamp of a deployment in one location.
type TimeFormat struct {
	Location *time.Location
}

// ParseTimeFormat accepts "local", "utc" or an IANA zone name.
func ParseTimeFormat(zone string) (TimeFormat, error) {
	switch strings.ToLower(strings.TrimSpace(zone)) {
	case "", "local":
		return TimeFormat{Location: time.Local}, nil
	case "utc":
		return TimeFormat{Location: time.UTC}, nil
	}
	loc, err := time.LoadLocation(strings.TrimSpace(zone))
	if err != nil {
		return TimeFormat{}, fmt.Errorf("invalid timezone %q: %w", zone, err)
	}
	return TimeFormat{Location: loc}, nil
}

// Format renders t in the configured location.
func (f TimeFormat) Format(t time.Time) string {
	loc := f.Location
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(TimestampLayout)
}
