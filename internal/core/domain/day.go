package domain

import (
	"encoding/json"
	"time"
)

const (
	dayLayout = "2006-01-02"
	// browser Date.toDateString(), e.g. "Mon Oct 19 2026"
	legacyDayLayout = "Mon Jan 02 2006"
)

// Day is a calendar-day label. Two instants are the same day when their
// labels match, regardless of the time between them.
type Day string

// DayOf labels t using t's own location.
func DayOf(t time.Time) Day {
	return Day(t.Format(dayLayout))
}

func (d Day) String() string {
	return string(d)
}

func (d Day) Time(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(dayLayout, string(d), loc)
}

// UnmarshalJSON accepts both day formats found in stored habits and keeps
// the canonical one. Unrecognised labels are kept as they are.
func (d *Day) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if t, err := time.Parse(legacyDayLayout, s); err == nil {
		*d = DayOf(t)
		return nil
	}
	*d = Day(s)
	return nil
}
